package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	searchRequestsTotal *prometheus.CounterVec
	searchDuration      *prometheus.HistogramVec
	citationsTotal      *prometheus.CounterVec
	llmTokensTotal      *prometheus.CounterVec
	indexLoadDuration   *prometheus.HistogramVec
	indexLoadFailures   *prometheus.CounterVec
	referenceHitsTotal  *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "graphrag",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "graphrag",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "graphrag",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	searchRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "graphrag",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total completed search requests by index, engine and status.",
		},
		[]string{"service", "index", "engine", "status"},
	)
	searchDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "graphrag",
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Search execution duration in seconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"service", "index", "engine"},
	)
	citationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "graphrag",
			Subsystem: "search",
			Name:      "citations_total",
			Help:      "Total citation markers extracted from answers by dataset.",
		},
		[]string{"service", "dataset"},
	)
	llmTokensTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "graphrag",
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Token usage by direction.",
		},
		[]string{"service", "engine", "direction"},
	)
	indexLoadDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "graphrag",
			Subsystem: "index",
			Name:      "load_duration_seconds",
			Help:      "Artifact load duration per index.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"service", "index"},
	)
	indexLoadFailures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "graphrag",
			Subsystem: "index",
			Name:      "load_failures_total",
			Help:      "Total failed artifact load attempts per index.",
		},
		[]string{"service", "index"},
	)
	referenceHitsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "graphrag",
			Subsystem: "references",
			Name:      "hits_total",
			Help:      "Total reference page lookups by datatype and status.",
		},
		[]string{"service", "datatype", "status"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		searchRequestsTotal,
		searchDuration,
		citationsTotal,
		llmTokensTotal,
		indexLoadDuration,
		indexLoadFailures,
		referenceHitsTotal,
	)

	return &HTTPServerMetrics{
		registry:            registry,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		searchRequestsTotal: searchRequestsTotal,
		searchDuration:      searchDuration,
		citationsTotal:      citationsTotal,
		llmTokensTotal:      llmTokensTotal,
		indexLoadDuration:   indexLoadDuration,
		indexLoadFailures:   indexLoadFailures,
		referenceHitsTotal:  referenceHitsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/references/"):
		return "/v1/references/{index}/{datatype}/{id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordSearch(service, index, engine string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.searchRequestsTotal.WithLabelValues(service, index, engine, status).Inc()
	m.searchDuration.WithLabelValues(service, index, engine).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordCitations(service string, byDataset map[string]int) {
	for dataset, count := range byDataset {
		if count <= 0 {
			continue
		}
		m.citationsTotal.WithLabelValues(service, dataset).Add(float64(count))
	}
}

func (m *HTTPServerMetrics) RecordTokenUsage(service, engine string, promptTokens, completionTokens int) {
	if engine == "" {
		engine = "unknown"
	}
	if promptTokens > 0 {
		m.llmTokensTotal.WithLabelValues(service, engine, "in").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		m.llmTokensTotal.WithLabelValues(service, engine, "out").Add(float64(completionTokens))
	}
}

func (m *HTTPServerMetrics) RecordIndexLoad(service, index string, duration time.Duration, err error) {
	if err != nil {
		m.indexLoadFailures.WithLabelValues(service, index).Inc()
		return
	}
	m.indexLoadDuration.WithLabelValues(service, index).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordReferenceLookup(service, datatype string, err error) {
	status := "hit"
	if err != nil {
		status = "miss"
	}
	m.referenceHitsTotal.WithLabelValues(service, datatype, status).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
