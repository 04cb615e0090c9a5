package metrics

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dose_stream"

type Metrics struct {
	registry *prometheus.Registry

	sessionsActive    prometheus.Gauge
	sessionsCreated   prometheus.Counter
	sessionsEvicted   prometheus.Counter
	sessionRestarts   *prometheus.CounterVec
	encoderFailures   prometheus.Counter
	segmentsServed    prometheus.Counter
	httpRequestsTotal *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of registered transcoding sessions",
		}),
		sessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Total number of transcoding sessions created",
		}),
		sessionsEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_evicted_total",
			Help:      "Total number of sessions removed for being idle",
		}),
		sessionRestarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_restarts_total",
			Help:      "Total number of encoder restarts by reason",
		}, []string{"reason"}),
		encoderFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "encoder_failures_total",
			Help:      "Total number of encoder processes that exited with an error",
		}),
		segmentsServed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_served_total",
			Help:      "Total number of segments sent to clients",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method and status",
		}, []string{"method", "status"}),
	}

	m.registry.MustRegister(
		m.sessionsActive,
		m.sessionsCreated,
		m.sessionsEvicted,
		m.sessionRestarts,
		m.encoderFailures,
		m.segmentsServed,
		m.httpRequestsTotal,
	)

	return m
}

func (m *Metrics) SetSessionsActive(n int) {
	m.sessionsActive.Set(float64(n))
}

func (m *Metrics) IncSessionsCreated() {
	m.sessionsCreated.Inc()
}

func (m *Metrics) IncSessionsEvicted() {
	m.sessionsEvicted.Inc()
}

func (m *Metrics) IncRestarts(reason string) {
	m.sessionRestarts.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncEncoderFailures() {
	m.encoderFailures.Inc()
}

func (m *Metrics) IncSegmentsServed() {
	m.segmentsServed.Inc()
}

// Handler serves the registry. updateGauges runs before every scrape.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	handler := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		handler.ServeHTTP(w, r)
	})
}

// RequestMiddleware counts requests by method and response status.
func (m *Metrics) RequestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(status)).Inc()
	})
}
