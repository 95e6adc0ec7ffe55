// Package metrics exposes the engine's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles every collector the domain engine records.
type Metrics struct {
	registry *prometheus.Registry

	GatewayCallsTotal    *prometheus.CounterVec
	GatewayFailuresTotal *prometheus.CounterVec
	GatewayCallDuration  prometheus.Histogram

	MutationsTotal  *prometheus.CounterVec
	RefreshesTotal  prometheus.Counter
	RefreshFailures prometheus.Counter

	NotificationsTotal prometheus.Counter
	ActivitiesTotal    prometheus.Counter
	TasksEnqueued      prometheus.Counter
	TasksDropped       prometheus.Counter
	SMSTotal           prometheus.Counter
	SMSFailuresTotal   prometheus.Counter

	ApplicationsAdvanced prometheus.Counter
	LoansFundedTotal     prometheus.Counter
	PaymentsTotal        prometheus.Counter
}

// New builds and registers the collectors on a private registry.
func New(serviceName string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		GatewayCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jbcapital",
			Subsystem: serviceName,
			Name:      "gateway_calls_total",
			Help:      "Remote gateway calls by entity and operation",
		}, []string{"entity", "op"}),
		GatewayFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jbcapital",
			Subsystem: serviceName,
			Name:      "gateway_failures_total",
			Help:      "Remote gateway failures by entity and operation",
		}, []string{"entity", "op"}),
		GatewayCallDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "jbcapital",
			Subsystem: serviceName,
			Name:      "gateway_call_duration_seconds",
			Help:      "Remote gateway round-trip duration",
			Buckets:   prometheus.DefBuckets,
		}),
		MutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jbcapital",
			Subsystem: serviceName,
			Name:      "store_mutations_total",
			Help:      "Write-confirmed store mutations by entity",
		}, []string{"entity"}),
		RefreshesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jbcapital",
			Subsystem: serviceName,
			Name:      "store_refreshes_total",
			Help:      "Wholesale store refreshes",
		}),
		RefreshFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jbcapital",
			Subsystem: serviceName,
			Name:      "store_refresh_failures_total",
			Help:      "Failed wholesale store refreshes",
		}),
		NotificationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jbcapital",
			Subsystem: serviceName,
			Name:      "notifications_total",
			Help:      "Notifications recorded",
		}),
		ActivitiesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jbcapital",
			Subsystem: serviceName,
			Name:      "activities_total",
			Help:      "Activity log entries recorded",
		}),
		TasksEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jbcapital",
			Subsystem: serviceName,
			Name:      "side_effect_tasks_enqueued_total",
			Help:      "Side-effect tasks enqueued",
		}),
		TasksDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jbcapital",
			Subsystem: serviceName,
			Name:      "side_effect_tasks_dropped_total",
			Help:      "Side-effect tasks dropped because the queue was full",
		}),
		SMSTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jbcapital",
			Subsystem: serviceName,
			Name:      "sms_sent_total",
			Help:      "SMS dispatch attempts",
		}),
		SMSFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jbcapital",
			Subsystem: serviceName,
			Name:      "sms_failures_total",
			Help:      "SMS dispatch failures (non-fatal)",
		}),
		ApplicationsAdvanced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jbcapital",
			Subsystem: serviceName,
			Name:      "applications_advanced_total",
			Help:      "Guided workflow advances",
		}),
		LoansFundedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jbcapital",
			Subsystem: serviceName,
			Name:      "loans_funded_total",
			Help:      "Loans created from approved applications",
		}),
		PaymentsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "jbcapital",
			Subsystem: serviceName,
			Name:      "payments_total",
			Help:      "Loan payments recorded",
		}),
	}

	m.registry.MustRegister(
		m.GatewayCallsTotal,
		m.GatewayFailuresTotal,
		m.GatewayCallDuration,
		m.MutationsTotal,
		m.RefreshesTotal,
		m.RefreshFailures,
		m.NotificationsTotal,
		m.ActivitiesTotal,
		m.TasksEnqueued,
		m.TasksDropped,
		m.SMSTotal,
		m.SMSFailuresTotal,
		m.ApplicationsAdvanced,
		m.LoansFundedTotal,
		m.PaymentsTotal,
	)
	return m
}

// Handler serves the registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
