package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(sinkErrorsTotal) }

var sinkErrorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inference_sink_errors_total",
		Help: "Failures publishing finished jobs, labeled by sink.",
	},
	[]string{"sink"}, // e.g., sink="redis"
)

func IncSinkError(sink string) {
	sinkErrorsTotal.WithLabelValues(norm(sink)).Inc()
}
