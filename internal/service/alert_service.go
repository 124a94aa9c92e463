package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/pradiptars/clan-storage-bot/internal/notify"
	"github.com/pradiptars/clan-storage-bot/pkg/metrics"
)

// AlertService runs the daily expiry check: select expiring items, batch
// them into payload pages and deliver the sequence.
type AlertService struct {
	items   *ItemService
	batcher *notify.Batcher
	sender  *notify.WebhookClient
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewAlertService wires the expiry-check pipeline.
func NewAlertService(items *ItemService, batcher *notify.Batcher, sender *notify.WebhookClient, m *metrics.Metrics, logger *zap.Logger) *AlertService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertService{
		items:   items,
		batcher: batcher,
		sender:  sender,
		metrics: m,
		logger:  logger,
	}
}

// RunExpiryCheck performs one scan and returns the number of expiring items.
// Zero expiring items sends nothing at all. Delivery failures are logged per
// page and never abort the remaining pages.
func (a *AlertService) RunExpiryCheck(ctx context.Context) (int, error) {
	items, err := a.items.ExpiringItems(ctx)
	if err != nil {
		a.logger.Error("expiry check: storage query failed", zap.Error(err))
		return 0, err
	}

	if a.metrics != nil {
		a.metrics.ExpiringItems.Set(float64(len(items)))
	}

	payloads := a.batcher.BuildAlert(a.items.Now(), items)
	if len(payloads) == 0 {
		a.logger.Info("expiry check: nothing to report")
		return 0, nil
	}

	delivered := a.sender.DeliverAll(ctx, payloads)
	if a.metrics != nil {
		a.metrics.AlertsSent.Add(float64(delivered))
		a.metrics.DeliveryFailures.Add(float64(len(payloads) - delivered))
	}

	a.logger.Info("expiry alert sent",
		zap.Int("items", len(items)),
		zap.Int("pages", len(payloads)),
		zap.Int("delivered", delivered),
	)
	return len(items), nil
}
