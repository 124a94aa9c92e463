package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pradiptars/clan-storage-bot/internal/expiry"
	"github.com/pradiptars/clan-storage-bot/internal/models"
	"github.com/pradiptars/clan-storage-bot/internal/notify"
	"github.com/pradiptars/clan-storage-bot/internal/repository"
	"github.com/pradiptars/clan-storage-bot/pkg/cache"
	appErrors "github.com/pradiptars/clan-storage-bot/pkg/errors"
	"github.com/pradiptars/clan-storage-bot/pkg/metrics"
)

const itemsCacheKey = "items:all"

type itemStore interface {
	AddItem(ctx context.Context, item models.Item) error
	ListItems(ctx context.Context) ([]models.Item, error)
	ListExpiring(ctx context.Context, deadline time.Time) ([]models.Item, error)
	NextSeq(ctx context.Context) (int, error)
	Connected() bool
}

// ItemService owns the item lifecycle: validated creation, listings, expiry
// queries and CSV export.
type ItemService struct {
	store     itemStore
	transport notify.Transport
	validator *validator.Validate
	cache     *cache.TTLCache
	metrics   *metrics.Metrics
	logger    *zap.Logger

	retentionDays int
	horizonDays   int
	loc           *time.Location
	now           func() time.Time
	startedAt     time.Time
}

// ItemServiceParams collects the service dependencies.
type ItemServiceParams struct {
	Store         itemStore
	Transport     notify.Transport
	Validator     *validator.Validate
	Cache         *cache.TTLCache
	Metrics       *metrics.Metrics
	Logger        *zap.Logger
	RetentionDays int
	HorizonDays   int
	Location      *time.Location
}

// NewItemService constructs the service.
func NewItemService(p ItemServiceParams) *ItemService {
	if p.Validator == nil {
		p.Validator = validator.New()
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	if p.Location == nil {
		p.Location = time.UTC
	}
	if p.RetentionDays <= 0 {
		p.RetentionDays = expiry.DefaultRetentionDays
	}
	if p.HorizonDays <= 0 {
		p.HorizonDays = expiry.DefaultHorizonDays
	}

	loc := p.Location
	svc := &ItemService{
		store:         p.Store,
		transport:     p.Transport,
		validator:     p.Validator,
		cache:         p.Cache,
		metrics:       p.Metrics,
		logger:        p.Logger,
		retentionDays: p.RetentionDays,
		horizonDays:   p.HorizonDays,
		loc:           loc,
		now:           func() time.Time { return time.Now().In(loc) },
	}
	svc.startedAt = svc.now()
	return svc
}

// AddItemRequest describes the add-item payload.
type AddItemRequest struct {
	Name         string `validate:"required"`
	Type         string `validate:"required"`
	Participants string `validate:"required"`
	CreatedDate  string
	AddedBy      string
}

// AddItem validates the request, allocates a sequence number and appends the
// record. The item-added notification is best-effort.
func (s *ItemService) AddItem(ctx context.Context, req AddItemRequest) (*models.Item, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, "missing required fields")
	}

	itemType, err := models.ParseItemType(req.Type)
	if err != nil {
		return nil, err
	}

	participants := models.NormalizeParticipants(req.Participants)
	if len(participants) == 0 {
		return nil, appErrors.New(appErrors.ErrValidation.Code, "at least one participant is required")
	}

	now := s.now()
	createdAt := now
	if req.CreatedDate != "" {
		createdAt, err = expiry.ParseDateInput(req.CreatedDate, now)
		if err != nil {
			return nil, err
		}
	}

	seq, err := s.store.NextSeq(ctx)
	if err != nil {
		return nil, err
	}

	item := models.Item{
		Seq:          seq,
		Name:         req.Name,
		Type:         itemType,
		Participants: participants,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
		ExpireAt:     expiry.ComputeExpireAt(createdAt, s.retentionDays),
	}

	if err := s.store.AddItem(ctx, item); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Delete(itemsCacheKey)
	}
	if s.metrics != nil {
		s.metrics.ItemsAdded.Inc()
	}
	s.logger.Info("item added",
		zap.Int("seq", item.Seq),
		zap.String("name", item.Name),
		zap.String("type", string(item.Type)),
	)

	if s.transport != nil {
		if err := s.transport.Deliver(ctx, notify.ItemAddedPayload(now, item, s.retentionDays, req.AddedBy)); err != nil {
			s.logger.Warn("item-added notification failed", zap.Error(err))
		}
	}

	return &item, nil
}

// ListItems returns the full record set, cached for the configured TTL.
func (s *ItemService) ListItems(ctx context.Context) ([]models.Item, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(itemsCacheKey); ok {
			if items, ok := cached.([]models.Item); ok {
				return items, nil
			}
		}
	}

	items, err := s.store.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(itemsCacheKey, items)
	}
	return items, nil
}

// ExpiringItems returns the records inside the notification horizon, most
// urgent first.
func (s *ItemService) ExpiringItems(ctx context.Context) ([]models.Item, error) {
	now := s.now()
	deadline := now.Add(time.Duration(s.horizonDays) * 24 * time.Hour)

	rows, err := s.store.ListExpiring(ctx, deadline)
	if err != nil {
		return nil, err
	}

	return expiry.SelectExpiring(now, rows, s.horizonDays), nil
}

// Now returns the current time in the bot timezone.
func (s *ItemService) Now() time.Time {
	return s.now()
}

// HorizonDays exposes the notification lookahead window.
func (s *ItemService) HorizonDays() int {
	return s.horizonDays
}

// ServiceStatus is a point-in-time health snapshot.
type ServiceStatus struct {
	StorageConnected bool
	TotalItems       int
	ExpiringItems    int
	Uptime           time.Duration
}

// Status summarises storage connectivity and item counts. Count failures
// degrade to zero rather than erroring; the connectivity flag carries the
// signal.
func (s *ItemService) Status(ctx context.Context) ServiceStatus {
	status := ServiceStatus{
		StorageConnected: s.store.Connected(),
		Uptime:           s.now().Sub(s.startedAt),
	}

	if items, err := s.ListItems(ctx); err == nil {
		status.TotalItems = len(items)
	} else {
		s.logger.Warn("status: listing items failed", zap.Error(err))
	}
	if expiring, err := s.ExpiringItems(ctx); err == nil {
		status.ExpiringItems = len(expiring)
	} else {
		s.logger.Warn("status: listing expiring items failed", zap.Error(err))
	}

	return status
}

// ExportCSV renders the full record set in the spreadsheet column order.
func (s *ItemService) ExportCSV(ctx context.Context) ([]byte, error) {
	items, err := s.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(repository.Header); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "write csv header")
	}
	for _, item := range items {
		record := []string{
			strconv.Itoa(item.Seq),
			item.Name,
			string(item.Type),
			item.ParticipantList(),
			item.CreatedAt.Format(repository.TimestampLayout),
			item.UpdatedAt.Format(repository.TimestampLayout),
			item.ExpireAt.Format(repository.TimestampLayout),
		}
		if err := w.Write(record); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "write csv record")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, "flush csv")
	}
	return buf.Bytes(), nil
}
