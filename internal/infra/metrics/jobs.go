package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(predictionsTotal, predictionDuration, predictRejectedTotal, jobStatus)
}

var predictionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inference_predictions_total",
		Help: "Total number of prediction jobs finished, labeled by status.",
	},
	[]string{"status"}, // 'completed', 'failed'
)

var predictionDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "inference_prediction_duration_seconds",
		Help:    "Model evaluation time per job.",
		Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30, 120},
	},
	[]string{"status"},
)

var predictRejectedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "inference_predict_rejected_total",
		Help: "Predict requests refused before a job was admitted.",
	},
	[]string{"reason"}, // 'busy', 'invalid', 'queue'
)

var jobStatus = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "inference_job_status",
		Help: "Status code of the current prediction job (0 idle .. 4 failed).",
	},
)

func ObservePrediction(status string, d time.Duration) {
	predictionsTotal.WithLabelValues(norm(status)).Inc()
	predictionDuration.WithLabelValues(norm(status)).Observe(d.Seconds())
}

func IncPredictRejected(reason string) {
	predictRejectedTotal.WithLabelValues(norm(reason)).Inc()
}

func SetJobStatus(code int) {
	jobStatus.Set(float64(code))
}
