package bot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/pradiptars/clan-storage-bot/internal/notify"
)

// runScheduler fires the expiry check once immediately and then on a fixed
// interval. Ticks that would have fired while the process was down are not
// replayed; a missed tick is simply skipped.
func (b *Bot) runScheduler(ctx context.Context) {
	b.logger.Info("expiry scheduler started", zap.Duration("interval", b.checkInterval))

	b.runCheck(ctx)

	ticker := time.NewTicker(b.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("expiry scheduler stopped")
			return
		case <-ticker.C:
			b.runCheck(ctx)
		}
	}
}

func (b *Bot) runCheck(ctx context.Context) {
	count, err := b.alerts.RunExpiryCheck(ctx)
	if err != nil {
		b.logger.Error("scheduled expiry check failed", zap.Error(err))
		// Best-effort ops notification; a second failure is only logged.
		if derr := b.sender.Deliver(ctx, notify.ErrorPayload(b.items.Now(), err.Error(), "scheduled expiry check")); derr != nil {
			b.logger.Warn("error notification failed", zap.Error(derr))
		}
		return
	}
	if count > 0 {
		b.logger.Info("scheduled expiry check complete", zap.Int("expiring_items", count))
	}
}
