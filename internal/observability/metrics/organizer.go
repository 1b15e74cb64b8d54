package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kirillkom/destination-organizer/internal/core/domain"
)

const namespace = "dorg"

// OrganizerMetrics counts organized documents and placement outcomes. It is
// shared by the batch command and the worker.
type OrganizerMetrics struct {
	service  string
	registry *prometheus.Registry

	documentsTotal   *prometheus.CounterVec
	documentDuration *prometheus.HistogramVec
	placementsTotal  *prometheus.CounterVec
	inFlight         prometheus.Gauge
	queueLag         *prometheus.HistogramVec
	sweepsTotal      *prometheus.CounterVec
}

func NewOrganizerMetrics(service string) *OrganizerMetrics {
	registry := prometheus.NewRegistry()

	documentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "organizer",
			Name:      "documents_total",
			Help:      "Total documents handled by final status.",
		},
		[]string{"service", "status"},
	)
	documentDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "organizer",
			Name:      "document_duration_seconds",
			Help:      "Time spent extracting, classifying and placing one document.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120, 300},
		},
		[]string{"service", "status"},
	)
	placementsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "organizer",
			Name:      "placements_total",
			Help:      "Total destination records by outcome.",
		},
		[]string{"service", "status"},
	)
	inFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "documents_in_flight",
			Help:      "Number of documents being organized.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between upload and processing start.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	sweepsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "organizer",
			Name:      "sweeps_total",
			Help:      "Total source directory sweeps by result.",
		},
		[]string{"service", "result"},
	)

	registry.MustRegister(documentsTotal, documentDuration, placementsTotal, inFlight, queueLag, sweepsTotal)

	return &OrganizerMetrics{
		service:          service,
		registry:         registry,
		documentsTotal:   documentsTotal,
		documentDuration: documentDuration,
		placementsTotal:  placementsTotal,
		inFlight:         inFlight,
		queueLag:         queueLag,
		sweepsTotal:      sweepsTotal,
	}
}

func (m *OrganizerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *OrganizerMetrics) ObserveDocument(status domain.DocumentStatus, seconds float64) {
	m.documentsTotal.WithLabelValues(m.service, string(status)).Inc()
	m.documentDuration.WithLabelValues(m.service, string(status)).Observe(seconds)
}

func (m *OrganizerMetrics) ObserveOutcome(status domain.OutcomeStatus) {
	m.placementsTotal.WithLabelValues(m.service, string(status)).Inc()
}

func (m *OrganizerMetrics) StartDocument() {
	m.inFlight.Inc()
}

func (m *OrganizerMetrics) FinishDocument() {
	m.inFlight.Dec()
}

func (m *OrganizerMetrics) ObserveQueueLag(lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(m.service).Observe(lag.Seconds())
}

func (m *OrganizerMetrics) ObserveSweep(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.sweepsTotal.WithLabelValues(m.service, result).Inc()
}
