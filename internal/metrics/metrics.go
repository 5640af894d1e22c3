// Package metrics exposes conversation activity as Prometheus collectors
// fed by engine lifecycle hooks.
package metrics

import (
	"context"
	"net/http"

	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "leadchat"

// Collector holds the conversation metrics.
type Collector struct {
	sessions   prometheus.Counter
	resets     prometheus.Counter
	nodeVisits *prometheus.CounterVec
	choices    *prometheus.CounterVec
	leads      *prometheus.CounterVec
	delivery   *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Conversations started, including restarts.",
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resets_total",
			Help:      "Conversations reset by the user.",
		}),
		nodeVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "node_visits_total",
			Help:      "Total number of node visits.",
		}, []string{"node_id"}),
		choices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "choices_total",
			Help:      "Options chosen, by source node and value.",
		}, []string{"node_id", "value"}),
		leads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "leads_total",
			Help:      "Lead events by outcome (captured, delivered, failed) and lead context.",
		}, []string{"outcome", "lead_context"}),
		delivery: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lead_delivery_duration_seconds",
			Help:      "Time from submission to delivery outcome.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		}, []string{"outcome"}),
	}
	reg.MustRegister(c.sessions, c.resets, c.nodeVisits, c.choices, c.leads, c.delivery)
	return c
}

// Hooks returns lifecycle hooks that record into the collectors.
func (c *Collector) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStart: func(context.Context, *domain.NodeEvent) {
			c.sessions.Inc()
		},
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			c.nodeVisits.WithLabelValues(e.NodeID).Inc()
		},
		OnChoice: func(_ context.Context, e *domain.ChoiceEvent) {
			c.choices.WithLabelValues(e.FromNodeID, e.Value).Inc()
		},
		OnLeadCapture: func(_ context.Context, e *domain.LeadEvent) {
			c.leads.WithLabelValues("captured", e.LeadContext).Inc()
		},
		OnLeadDelivered: func(_ context.Context, e *domain.LeadEvent) {
			c.leads.WithLabelValues("delivered", e.LeadContext).Inc()
			c.delivery.WithLabelValues("delivered").Observe(e.Duration.Seconds())
		},
		OnLeadFailed: func(_ context.Context, e *domain.LeadEvent) {
			c.leads.WithLabelValues("failed", e.LeadContext).Inc()
			c.delivery.WithLabelValues("failed").Observe(e.Duration.Seconds())
		},
		OnReset: func(context.Context, *domain.EventBase) {
			c.resets.Inc()
		},
	}
}

// Handler serves the gathered metrics in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
