package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pradiptars/clan-storage-bot/internal/models"
	appErrors "github.com/pradiptars/clan-storage-bot/pkg/errors"
	"github.com/pradiptars/clan-storage-bot/pkg/retry"
)

type stubStore struct {
	connected bool
	items     []models.Item
	nextSeq   int
	addCalls  int
	listCalls int
	addErr    error
}

func (s *stubStore) AddItem(ctx context.Context, item models.Item) error {
	s.addCalls++
	if s.addErr != nil {
		return s.addErr
	}
	s.items = append(s.items, item)
	return nil
}

func (s *stubStore) ListItems(ctx context.Context) ([]models.Item, error) {
	s.listCalls++
	return s.items, nil
}

func (s *stubStore) ListExpiring(ctx context.Context, deadline time.Time) ([]models.Item, error) {
	var out []models.Item
	for _, item := range s.items {
		if !item.ExpireAt.After(deadline) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *stubStore) NextSeq(ctx context.Context) (int, error) {
	return s.nextSeq, nil
}

func (s *stubStore) Connected() bool {
	return s.connected
}

func TestFallbackPrefersPrimary(t *testing.T) {
	primary := &stubStore{connected: true, nextSeq: 5}
	secondary := &stubStore{connected: true, nextSeq: 99}

	store := NewFallbackStore(primary, secondary, retry.Policy{}, nil, nil)

	next, err := store.NextSeq(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, next)
}

func TestFallbackRoutesWhenPrimaryDown(t *testing.T) {
	primary := &stubStore{connected: false}
	secondary := &stubStore{connected: true}

	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_fallbacks_total"})
	store := NewFallbackStore(primary, secondary, retry.Policy{}, nil, counter)

	require.NoError(t, store.AddItem(context.Background(), models.Item{Seq: 1, Name: "Sword"}))

	assert.Equal(t, 0, primary.addCalls)
	assert.Equal(t, 1, secondary.addCalls)
	require.Len(t, secondary.items, 1)
}

func TestFallbackSecondaryOnly(t *testing.T) {
	secondary := &stubStore{connected: true, nextSeq: 1}
	store := NewFallbackStore(nil, secondary, retry.Policy{}, nil, nil)

	next, err := store.NextSeq(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, next)
	assert.True(t, store.Connected())
}

func TestFallbackNoBackend(t *testing.T) {
	store := NewFallbackStore(nil, nil, retry.Policy{}, nil, nil)

	err := store.AddItem(context.Background(), models.Item{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrStorageUnavailable))
	assert.False(t, store.Connected())
}

func TestFallbackRetriesWithPolicy(t *testing.T) {
	primary := &stubStore{connected: true, addErr: errors.New("transient write failure")}
	store := NewFallbackStore(primary, nil, retry.Policy{Attempts: 3, Delay: time.Millisecond}, nil, nil)

	err := store.AddItem(context.Background(), models.Item{Seq: 1})
	require.Error(t, err)
	assert.Equal(t, 3, primary.addCalls)
}

func TestFallbackConnected(t *testing.T) {
	assert.True(t, NewFallbackStore(&stubStore{connected: true}, nil, retry.Policy{}, nil, nil).Connected())
	assert.False(t, NewFallbackStore(&stubStore{connected: false}, nil, retry.Policy{}, nil, nil).Connected())
	assert.True(t, NewFallbackStore(&stubStore{connected: false}, &stubStore{connected: true}, retry.Policy{}, nil, nil).Connected())
}
