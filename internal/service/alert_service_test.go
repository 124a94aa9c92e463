package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pradiptars/clan-storage-bot/internal/models"
	"github.com/pradiptars/clan-storage-bot/internal/notify"
)

type webhookRecorder struct {
	mu     sync.Mutex
	bodies []map[string]interface{}
}

func (r *webhookRecorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(req.Body).Decode(&body)
		r.mu.Lock()
		r.bodies = append(r.bodies, body)
		r.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}
}

func (r *webhookRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.bodies)
}

func TestRunExpiryCheckSendsNothingWhenEmpty(t *testing.T) {
	recorder := &webhookRecorder{}
	server := httptest.NewServer(recorder.handler())
	t.Cleanup(server.Close)

	now := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{connected: true, items: []models.Item{
		{Seq: 1, Name: "Fresh", ExpireAt: now.Add(20 * 24 * time.Hour)},
	}}
	items := newTestService(store, nil)

	alerts := NewAlertService(
		items,
		notify.NewBatcher(10, 7),
		notify.NewWebhookClient(server.URL, time.Millisecond, nil),
		nil,
		nil,
	)

	count, err := alerts.RunExpiryCheck(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, recorder.count(), "no webhook call for an empty scan")
}

func TestRunExpiryCheckDeliversPages(t *testing.T) {
	recorder := &webhookRecorder{}
	server := httptest.NewServer(recorder.handler())
	t.Cleanup(server.Close)

	now := time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC)
	store := &fakeStore{connected: true}
	for i := 0; i < 11; i++ {
		store.items = append(store.items, models.Item{
			Seq:          i + 1,
			Name:         "Item",
			Type:         models.ItemTypeConsumable,
			Participants: []string{"Alice"},
			ExpireAt:     now.Add(time.Duration(i+1) * time.Hour),
		})
	}
	items := newTestService(store, nil)

	alerts := NewAlertService(
		items,
		notify.NewBatcher(10, 7),
		notify.NewWebhookClient(server.URL, time.Millisecond, nil),
		nil,
		nil,
	)

	count, err := alerts.RunExpiryCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 11, count)
	assert.Equal(t, 2, recorder.count(), "eleven items span two pages")

	// Only the first page mentions the channel.
	first, _ := recorder.bodies[0]["content"].(string)
	assert.Contains(t, first, "@here")
	_, hasContent := recorder.bodies[1]["content"]
	assert.False(t, hasContent)
}

func TestRunExpiryCheckStorageFailure(t *testing.T) {
	store := &fakeStore{connected: false, listErr: assertError("storage down")}
	items := newTestService(store, nil)

	alerts := NewAlertService(items, notify.NewBatcher(10, 7), notify.NewWebhookClient("http://127.0.0.1:0", time.Millisecond, nil), nil, nil)

	_, err := alerts.RunExpiryCheck(context.Background())
	require.Error(t, err)
}

type assertError string

func (e assertError) Error() string { return string(e) }
