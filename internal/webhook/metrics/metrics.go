package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry
	// Events counts handled deliveries by event kind and response outcome.
	Events *prometheus.CounterVec
	// Transitions counts applied order status changes.
	Transitions   *prometheus.CounterVec
	Notifications *prometheus.CounterVec
	LatencySec    prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	events := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhook_events_total",
			Help: "Webhook deliveries by event kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
	transitions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhook_order_transitions_total",
			Help: "Applied order status transitions.",
		},
		[]string{"from", "to"},
	)
	notifications := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhook_notifications_total",
			Help: "Customer notification attempts by outcome.",
		},
		[]string{"outcome"},
	)
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_webhook_latency_seconds",
		Help:    "Time spent handling a webhook delivery.",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(events, transitions, notifications, latency)
	return &Registry{
		reg:           r,
		Events:        events,
		Transitions:   transitions,
		Notifications: notifications,
		LatencySec:    latency,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
