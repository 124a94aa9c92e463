package repository

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/pradiptars/clan-storage-bot/internal/models"
	appErrors "github.com/pradiptars/clan-storage-bot/pkg/errors"
	"github.com/pradiptars/clan-storage-bot/pkg/retry"
)

// FallbackStore routes every operation to the primary backend while it is
// connected and to the secondary otherwise. Callers never learn which
// backend answered. An optional retry policy wraps each call; the zero
// policy performs a single attempt.
type FallbackStore struct {
	primary   ItemStore
	secondary ItemStore
	policy    retry.Policy
	logger    *zap.Logger
	fallbacks prometheus.Counter
}

// NewFallbackStore wires the two backends. Either may be nil when not
// configured; at least one must be present.
func NewFallbackStore(primary, secondary ItemStore, policy retry.Policy, logger *zap.Logger, fallbacks prometheus.Counter) *FallbackStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackStore{
		primary:   primary,
		secondary: secondary,
		policy:    policy,
		logger:    logger,
		fallbacks: fallbacks,
	}
}

func (f *FallbackStore) pick() ItemStore {
	if f.primary != nil && f.primary.Connected() {
		return f.primary
	}
	if f.secondary != nil {
		if f.primary != nil {
			f.logger.Warn("primary storage unavailable, using fallback")
			if f.fallbacks != nil {
				f.fallbacks.Inc()
			}
		}
		return f.secondary
	}
	return f.primary
}

// AddItem appends a record via the active backend.
func (f *FallbackStore) AddItem(ctx context.Context, item models.Item) error {
	store := f.pick()
	if store == nil {
		return appErrors.ErrStorageUnavailable
	}
	return retry.Do(ctx, f.policy, f.logger, "storage.add_item", func(ctx context.Context) error {
		return store.AddItem(ctx, item)
	})
}

// ListItems lists records via the active backend.
func (f *FallbackStore) ListItems(ctx context.Context) ([]models.Item, error) {
	store := f.pick()
	if store == nil {
		return nil, appErrors.ErrStorageUnavailable
	}

	var items []models.Item
	err := retry.Do(ctx, f.policy, f.logger, "storage.list_items", func(ctx context.Context) error {
		var inner error
		items, inner = store.ListItems(ctx)
		return inner
	})
	return items, err
}

// ListExpiring lists records inside the deadline via the active backend.
func (f *FallbackStore) ListExpiring(ctx context.Context, deadline time.Time) ([]models.Item, error) {
	store := f.pick()
	if store == nil {
		return nil, appErrors.ErrStorageUnavailable
	}

	var items []models.Item
	err := retry.Do(ctx, f.policy, f.logger, "storage.list_expiring", func(ctx context.Context) error {
		var inner error
		items, inner = store.ListExpiring(ctx, deadline)
		return inner
	})
	return items, err
}

// NextSeq allocates the next sequence number via the active backend.
func (f *FallbackStore) NextSeq(ctx context.Context) (int, error) {
	store := f.pick()
	if store == nil {
		return 0, appErrors.ErrStorageUnavailable
	}

	var next int
	err := retry.Do(ctx, f.policy, f.logger, "storage.next_seq", func(ctx context.Context) error {
		var inner error
		next, inner = store.NextSeq(ctx)
		return inner
	})
	return next, err
}

// Connected reports whether any backend is reachable.
func (f *FallbackStore) Connected() bool {
	if f.primary != nil && f.primary.Connected() {
		return true
	}
	return f.secondary != nil && f.secondary.Connected()
}
