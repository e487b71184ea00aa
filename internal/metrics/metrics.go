package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	DispatchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clinic_dispatch_total",
		Help: "Dispatch attempts by channel and outcome",
	}, []string{"channel", "outcome"})
	DispatchFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clinic_dispatch_failures_total",
		Help: "Failed dispatch attempts by channel and error category",
	}, []string{"channel", "category"})
	DispatchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clinic_dispatch_seconds",
		Help:    "Time spent in the vendor call for one dispatch",
		Buckets: prometheus.DefBuckets,
	}, []string{"channel"})
	DeliveryLogFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "clinic_delivery_log_failures_total",
		Help: "Delivery log writes that failed and were dropped",
	})
	ContentGenerations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clinic_content_generations_total",
		Help: "Language model content generations by kind and outcome",
	}, []string{"kind", "outcome"})
)

func init() {
	prometheus.MustRegister(
		DispatchTotal,
		DispatchFailures,
		DispatchDuration,
		DeliveryLogFailures,
		ContentGenerations,
	)
}
