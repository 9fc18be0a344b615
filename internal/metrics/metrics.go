package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collectors groups the service's Prometheus instruments. Each instance owns
// its registry so tests can build as many as they like.
type Collectors struct {
	registry *prometheus.Registry

	WebhookDeliveries *prometheus.CounterVec
	CreditsGranted    prometheus.Counter
	CreditAdjustments *prometheus.CounterVec
}

func New() *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		WebhookDeliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "imaginify",
			Name:      "webhook_deliveries_total",
			Help:      "Webhook deliveries by provider, event type and outcome.",
		}, []string{"provider", "event", "outcome"}),
		CreditsGranted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "imaginify",
			Name:      "credits_granted_total",
			Help:      "Credits granted by completed purchases.",
		}),
		CreditAdjustments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "imaginify",
			Name:      "credit_adjustments_total",
			Help:      "Direct credit adjustments by direction.",
		}, []string{"direction"}),
	}

	c.registry.MustRegister(
		c.WebhookDeliveries,
		c.CreditsGranted,
		c.CreditAdjustments,
		collectors.NewGoCollector(),
	)
	return c
}

// ObserveDelivery counts one processed webhook delivery.
func (c *Collectors) ObserveDelivery(provider, event, outcome string) {
	if c == nil {
		return
	}
	c.WebhookDeliveries.WithLabelValues(provider, event, outcome).Inc()
}

func (c *Collectors) ObserveCreditsGranted(credits int) {
	if c == nil || credits <= 0 {
		return
	}
	c.CreditsGranted.Add(float64(credits))
}

func (c *Collectors) ObserveAdjustment(delta int) {
	if c == nil {
		return
	}
	direction := "credit"
	if delta < 0 {
		direction = "debit"
	}
	c.CreditAdjustments.WithLabelValues(direction).Inc()
}

// Handler exposes the registry for scraping.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
