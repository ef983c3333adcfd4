package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineMetrics covers the ingestion and conversation pipeline: documents
// by logical type and status, failed extraction units, OCR outcomes, and
// prompt budget utilization.
type PipelineMetrics struct {
	registry *prometheus.Registry
	service  string

	documentsTotal  *prometheus.CounterVec
	ingestDuration  *prometheus.HistogramVec
	failedUnits     *prometheus.CounterVec
	ocrTotal        *prometheus.CounterVec
	ocrDuration     prometheus.Histogram
	converseTotal   *prometheus.CounterVec
	promptCost      *prometheus.HistogramVec
	truncationTotal prometheus.Counter
}

func NewPipelineMetrics(service string) *PipelineMetrics {
	registry := prometheus.NewRegistry()

	documentsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "ingest",
			Name:      "documents_total",
			Help:      "Ingested documents by logical type and record status.",
		},
		[]string{"service", "type", "status"},
	)
	ingestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docchat",
			Subsystem: "ingest",
			Name:      "duration_seconds",
			Help:      "Ingestion duration in seconds by logical type.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "type"},
	)
	failedUnits := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "ingest",
			Name:      "failed_units_total",
			Help:      "Extraction units (pages, sheets, slides) recovered as markers.",
		},
		[]string{"service", "type"},
	)
	ocrTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "ocr",
			Name:      "requests_total",
			Help:      "OCR recognitions by outcome.",
		},
		[]string{"service", "outcome"},
	)
	ocrDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace:   "docchat",
			Subsystem:   "ocr",
			Name:        "duration_seconds",
			Help:        "OCR recognition duration in seconds.",
			Buckets:     []float64{0.5, 1, 2, 5, 10, 20, 40, 80, 120},
			ConstLabels: prometheus.Labels{"service": service},
		},
	)
	converseTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docchat",
			Subsystem: "converse",
			Name:      "requests_total",
			Help:      "Conversation turns by outcome.",
		},
		[]string{"service", "status"},
	)
	promptCost := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docchat",
			Subsystem: "converse",
			Name:      "prompt_cost",
			Help:      "Budgeted prompt cost by segment, in budget units.",
			Buckets:   []float64{64, 256, 1024, 2048, 4096, 8192, 16384, 32768},
		},
		[]string{"service", "segment"},
	)
	truncationTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace:   "docchat",
			Subsystem:   "converse",
			Name:        "block_truncations_total",
			Help:        "Document blocks truncated at a boundary to fit the budget.",
			ConstLabels: prometheus.Labels{"service": service},
		},
	)

	registry.MustRegister(
		documentsTotal,
		ingestDuration,
		failedUnits,
		ocrTotal,
		ocrDuration,
		converseTotal,
		promptCost,
		truncationTotal,
	)

	return &PipelineMetrics{
		registry:        registry,
		service:         service,
		documentsTotal:  documentsTotal,
		ingestDuration:  ingestDuration,
		failedUnits:     failedUnits,
		ocrTotal:        ocrTotal,
		ocrDuration:     ocrDuration,
		converseTotal:   converseTotal,
		promptCost:      promptCost,
		truncationTotal: truncationTotal,
	}
}

func (m *PipelineMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *PipelineMetrics) RecordIngest(logicalType, status string, duration time.Duration, failedUnits int) {
	m.documentsTotal.WithLabelValues(m.service, logicalType, status).Inc()
	m.ingestDuration.WithLabelValues(m.service, logicalType).Observe(duration.Seconds())
	if failedUnits > 0 {
		m.failedUnits.WithLabelValues(m.service, logicalType).Add(float64(failedUnits))
	}
}

func (m *PipelineMetrics) RecordOCR(outcome string, duration time.Duration) {
	m.ocrTotal.WithLabelValues(m.service, outcome).Inc()
	m.ocrDuration.Observe(duration.Seconds())
}

func (m *PipelineMetrics) RecordConverse(status string, fixed, document, history int) {
	m.converseTotal.WithLabelValues(m.service, status).Inc()
	if status != "success" {
		return
	}
	m.promptCost.WithLabelValues(m.service, "fixed").Observe(float64(fixed))
	m.promptCost.WithLabelValues(m.service, "documents").Observe(float64(document))
	m.promptCost.WithLabelValues(m.service, "history").Observe(float64(history))
}

func (m *PipelineMetrics) RecordTruncation() {
	m.truncationTotal.Inc()
}
