// Package metrics exposes prometheus counters for the settlement core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

type Metrics struct {
	Registry *prometheus.Registry

	QuotesTotal           prometheus.Counter
	OrdersCreatedTotal    prometheus.Counter
	OrdersCancelledTotal  prometheus.Counter
	OrdersPaidTotal       prometheus.Counter
	OrdersCompletedTotal  prometheus.Counter
	RatingRecomputesTotal prometheus.Counter
	CompletionTaskErrors  *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		QuotesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "escortcare_quotes_total",
			Help: "Number of price quotes served.",
		}),
		OrdersCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "escortcare_orders_created_total",
			Help: "Number of orders created.",
		}),
		OrdersCancelledTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "escortcare_orders_cancelled_total",
			Help: "Number of orders cancelled.",
		}),
		OrdersPaidTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "escortcare_orders_paid_total",
			Help: "Number of orders marked paid by the payment callback.",
		}),
		OrdersCompletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "escortcare_orders_completed_total",
			Help: "Number of orders completed.",
		}),
		RatingRecomputesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "escortcare_rating_recomputes_total",
			Help: "Number of escort rating recomputations.",
		}),
		CompletionTaskErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "escortcare_completion_task_errors_total",
			Help: "Post-completion side effects that failed, by task.",
		}, []string{"task"}),
	}

	registry.MustRegister(
		m.QuotesTotal,
		m.OrdersCreatedTotal,
		m.OrdersCancelledTotal,
		m.OrdersPaidTotal,
		m.OrdersCompletedTotal,
		m.RatingRecomputesTotal,
		m.CompletionTaskErrors,
	)

	return m
}

var Module = fx.Module("metrics",
	fx.Provide(New),
)
