package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldex_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fieldex_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Extraction metrics
	extractionRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldex_extraction_requests_total",
			Help: "Total number of extraction requests",
		},
		[]string{"type", "status"}, // type: image, regions, pdf, websocket
	)

	extractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fieldex_extraction_duration_seconds",
			Help:    "Extraction processing duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"type"},
	)

	fieldsExtracted = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fieldex_fields_extracted",
			Help:    "Number of valid fields per document",
			Buckets: []float64{0, 1, 2, 5, 10, 15, 25},
		},
		[]string{"type"},
	)

	documentConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fieldex_document_confidence",
			Help:    "Fused document-level confidence scores",
			Buckets: prometheus.LinearBuckets(0.0, 0.1, 11),
		},
	)

	correctionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldex_corrections_total",
			Help: "Total number of region corrections",
		},
		[]string{"status"},
	)

	// File upload metrics
	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fieldex_upload_size_bytes",
			Help:    "Size of uploaded files in bytes",
			Buckets: []float64{1024, 10 * 1024, 100 * 1024, 1024 * 1024, 10 * 1024 * 1024, 50 * 1024 * 1024},
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fieldex_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldex_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)

// observeExtraction records the shared per-request extraction metrics.
func observeExtraction(kind string, seconds float64, fieldCount int, confidence float64) {
	extractionRequestsTotal.WithLabelValues(kind, "success").Inc()
	extractionDuration.WithLabelValues(kind).Observe(seconds)
	fieldsExtracted.WithLabelValues(kind).Observe(float64(fieldCount))
	documentConfidence.Observe(confidence)
}
