package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the bot's Prometheus collectors. All methods are safe on a
// nil receiver so components can run without instrumentation.
type Metrics struct {
	registry    *prometheus.Registry
	handler     http.Handler
	messages    *prometheus.CounterVec
	extractions *prometheus.CounterVec
	llmErrors   *prometheus.CounterVec
	llmLatency  *prometheus.HistogramVec
	sent        *prometheus.CounterVec
	swept       *prometheus.CounterVec
}

// New registers all collectors on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	messages := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "alfred_messages_total",
		Help: "Inbound messages by handling route",
	}, []string{"route"})

	extractions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "alfred_schedule_extractions_total",
		Help: "Schedule extraction attempts by outcome",
	}, []string{"outcome"})

	llmErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "alfred_llm_errors_total",
		Help: "LLM call failures by kind",
	}, []string{"kind"})

	llmLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "alfred_llm_request_duration_seconds",
		Help:    "Duration of LLM calls",
		Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"purpose"})

	sent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "alfred_replies_total",
		Help: "Outbound replies by delivery mode",
	}, []string{"mode"})

	swept := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "alfred_retention_deleted_total",
		Help: "Rows removed by the retention sweeper",
	}, []string{"table"})

	registry.MustRegister(messages, extractions, llmErrors, llmLatency, sent, swept)

	return &Metrics{
		registry:    registry,
		handler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		messages:    messages,
		extractions: extractions,
		llmErrors:   llmErrors,
		llmLatency:  llmLatency,
		sent:        sent,
		swept:       swept,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// MessageRouted counts an inbound message by route (schedule, chat, dropped).
func (m *Metrics) MessageRouted(route string) {
	if m == nil {
		return
	}
	m.messages.WithLabelValues(route).Inc()
}

// ExtractionFinished counts one extraction outcome.
func (m *Metrics) ExtractionFinished(outcome string) {
	if m == nil {
		return
	}
	m.extractions.WithLabelValues(outcome).Inc()
}

// LLMCall records the duration of an LLM call and, on failure, its kind.
func (m *Metrics) LLMCall(purpose string, started time.Time, errKind string) {
	if m == nil {
		return
	}
	m.llmLatency.WithLabelValues(purpose).Observe(time.Since(started).Seconds())
	if errKind != "" {
		m.llmErrors.WithLabelValues(errKind).Inc()
	}
}

// ReplySent counts one delivery by mode (reply or push).
func (m *Metrics) ReplySent(mode string) {
	if m == nil {
		return
	}
	m.sent.WithLabelValues(mode).Inc()
}

// RowsSwept counts rows deleted by retention.
func (m *Metrics) RowsSwept(table string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.swept.WithLabelValues(table).Add(float64(n))
}
