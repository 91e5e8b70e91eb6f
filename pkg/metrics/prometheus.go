package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain repository.Metrics using Prometheus.
type Recorder struct {
	messagesSent *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastAQI      *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		messagesSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aircast_messages_sent_total",
				Help: "Total number of readings sent to backend",
			},
			[]string{"backend", "area"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aircast_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastAQI: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "aircast_last_aqi",
				Help: "Last recorded AQI for an area",
			},
			[]string{"area"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aircast_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordMessageSent records a reading sent to a backend.
func (r *Recorder) RecordMessageSent(backend, area string) {
	r.messagesSent.WithLabelValues(backend, area).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLastAQI records the last AQI seen for an area.
func (r *Recorder) RecordLastAQI(area string, aqi float64) {
	r.lastAQI.WithLabelValues(area).Set(aqi)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
