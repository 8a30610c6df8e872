package router

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dispatch results reported in the requests counter.
const (
	resultMatched    = "matched"
	resultNotFound   = "not_found"
	resultUnknownKey = "unknown_key"
	resultPanic      = "panic"
)

// dispatchMetrics contains Prometheus metrics for the dispatcher.
type dispatchMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// newDispatchMetrics creates the dispatcher metrics on reg. A nil reg
// creates working collectors that are not registered anywhere.
func newDispatchMetrics(reg prometheus.Registerer, router *Router) *dispatchMetrics {
	factory := promauto.With(reg)

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "picoroute",
			Name:      "routes",
			Help:      "Number of registered routes",
		},
		func() float64 { return float64(router.Len()) },
	)

	return &dispatchMetrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "picoroute",
				Name:      "requests_total",
				Help:      "Total number of dispatched requests by result",
			},
			[]string{"result"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "picoroute",
				Name:      "handler_duration_seconds",
				Help:      "Time spent in route handlers",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}
