package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors for the bot. It owns a private
// registry so tests can build isolated instances.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	CommandsTotal    *prometheus.CounterVec
	ItemsAdded       prometheus.Counter
	AlertsSent       prometheus.Counter
	DeliveryFailures prometheus.Counter
	ExpiringItems    prometheus.Gauge
	StorageFallbacks prometheus.Counter
}

// New registers the bot collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	commandsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_commands_total",
		Help: "Total slash command invocations",
	}, []string{"command"})

	itemsAdded := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_items_added_total",
		Help: "Total items added to storage",
	})

	alertsSent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_alerts_sent_total",
		Help: "Total expiry alert payloads delivered",
	})

	deliveryFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_delivery_failures_total",
		Help: "Total webhook deliveries that failed",
	})

	expiringItems := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bot_expiring_items",
		Help: "Items inside the notification horizon at last check",
	})

	storageFallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_storage_fallbacks_total",
		Help: "Operations answered by the secondary storage backend",
	})

	registry.MustRegister(commandsTotal, itemsAdded, alertsSent, deliveryFailures, expiringItems, storageFallbacks)

	return &Metrics{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CommandsTotal:    commandsTotal,
		ItemsAdded:       itemsAdded,
		AlertsSent:       alertsSent,
		DeliveryFailures: deliveryFailures,
		ExpiringItems:    expiringItems,
		StorageFallbacks: storageFallbacks,
	}
}

// Handler exposes the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}
