package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vitals"

// Metrics groups the Prometheus collectors used by the ingestion server and
// its query transports. A nil *Metrics is a valid no-op recorder.
type Metrics struct {
	registry *prometheus.Registry

	ConnectionsActive   prometheus.Gauge
	ConnectionsTotal    prometheus.Counter
	ConnectionsRejected prometheus.Counter
	ReadingsTotal       prometheus.Counter
	DecodeErrorsTotal   prometheus.Counter
	ConnectionErrors    prometheus.Counter
	BindAttemptsTotal   prometheus.Counter
	StoreDevices        prometheus.Gauge

	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestErrorsTotal *prometheus.CounterVec
	HTTPDurationSeconds    *prometheus.HistogramVec
}

// New creates the collectors and registers them on a dedicated registry that
// also carries the Go runtime and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		ConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "connections_active",
			Help:      "Number of device connections currently being handled",
		}),
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "connections_total",
			Help:      "Total number of accepted device connections",
		}),
		ConnectionsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "connections_rejected_total",
			Help:      "Connections closed because the active set was full",
		}),
		ReadingsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "readings_total",
			Help:      "Total number of readings merged into the store",
		}),
		DecodeErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "decode_errors_total",
			Help:      "Frames rejected by the wire decoder",
		}),
		ConnectionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "connection_errors_total",
			Help:      "Device connections terminated by a read error",
		}),
		BindAttemptsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingest",
			Name:      "bind_attempts_total",
			Help:      "Attempts made to bind the ingestion listener",
		}),
		StoreDevices: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "devices",
			Help:      "Number of distinct devices held in the store",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"route", "code"}),
		HTTPRequestErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_request_errors_total",
			Help:      "Total number of HTTP requests answered with a 4xx or 5xx status",
		}, []string{"route"}),
		HTTPDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP request processing in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	registry.MustRegister(
		m.ConnectionsActive,
		m.ConnectionsTotal,
		m.ConnectionsRejected,
		m.ReadingsTotal,
		m.DecodeErrorsTotal,
		m.ConnectionErrors,
		m.BindAttemptsTotal,
		m.StoreDevices,
		m.HTTPRequestsTotal,
		m.HTTPRequestErrorsTotal,
		m.HTTPDurationSeconds,
	)

	return m
}

// Registerer exposes the registry so other collectors (gRPC) can join it.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

// Handler returns an HTTP handler that exposes the registered metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.ConnectionsTotal.Inc()
	m.ConnectionsActive.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.ConnectionsActive.Dec()
}

func (m *Metrics) ConnectionRejected() {
	if m == nil {
		return
	}
	m.ConnectionsRejected.Inc()
}

func (m *Metrics) ReadingStored(devices int) {
	if m == nil {
		return
	}
	m.ReadingsTotal.Inc()
	m.StoreDevices.Set(float64(devices))
}

func (m *Metrics) DecodeFailed() {
	if m == nil {
		return
	}
	m.DecodeErrorsTotal.Inc()
}

func (m *Metrics) ConnectionFailed() {
	if m == nil {
		return
	}
	m.ConnectionErrors.Inc()
}

func (m *Metrics) BindAttempted() {
	if m == nil {
		return
	}
	m.BindAttemptsTotal.Inc()
}

// HTTPMiddleware instruments HTTP handlers with request/latency metrics.
func (m *Metrics) HTTPMiddleware(pathResolver func(*http.Request) string) func(http.Handler) http.Handler {
	if pathResolver == nil {
		pathResolver = func(r *http.Request) string { return r.URL.Path }
	}

	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			next.ServeHTTP(recorder, r)

			route := pathResolver(r)
			m.HTTPDurationSeconds.WithLabelValues(route).Observe(time.Since(start).Seconds())
			m.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			if recorder.status >= http.StatusBadRequest {
				m.HTTPRequestErrorsTotal.WithLabelValues(route).Inc()
			}
		})
	}
}

// statusRecorder captures the response status code for instrumentation.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
