package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the platform.
type Metrics struct {
	donationsRecorded *prometheus.CounterVec
	donationsRejected *prometheus.CounterVec
	issuerFundings    *prometheus.CounterVec
	imageJobs         *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
}

// NewMetrics creates and registers all platform metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		donationsRecorded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "donations_recorded_total",
				Help: "Total number of donation receipts recorded",
			},
			[]string{"network", "asset"},
		),
		donationsRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "donations_rejected_total",
				Help: "Total number of donation submissions rejected by validation",
			},
			[]string{"reason"},
		),
		issuerFundings: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "issuer_fundings_total",
				Help: "Total number of issuer account funding attempts",
			},
			[]string{"outcome"},
		),
		imageJobs: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "image_jobs_total",
				Help: "Total number of benefit image generation jobs",
			},
			[]string{"status"},
		),
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_ms",
				Help:    "HTTP request latency in milliseconds",
				Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
			},
			[]string{"method", "status"},
		),
	}
}

func (m *Metrics) DonationRecorded(network, asset string) {
	m.donationsRecorded.WithLabelValues(network, asset).Inc()
}

func (m *Metrics) DonationRejected(reason string) {
	m.donationsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) IssuerFunding(outcome string) {
	m.issuerFundings.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ImageJob(status string) {
	m.imageJobs.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveRequest(method, status string, ms float64) {
	m.requestDuration.WithLabelValues(method, status).Observe(ms)
}
