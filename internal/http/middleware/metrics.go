package middleware

// Prometheus instrumentation for the HTTP layer. Labels are bounded: the
// route template (never the raw URL), the method, the status code and, for
// failures, the apperr kind name.

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tbourn/go-qa-backend/internal/apperr"
)

// unmatchedRoute labels requests no route matched.
const unmatchedRoute = "unmatched"

// sizeBuckets cover JSON payloads from a bare envelope up to the body cap.
var sizeBuckets = prometheus.ExponentialBuckets(128, 4, 8) // 128B .. 2MiB

type httpMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	inflight prometheus.Gauge
	size     *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

func newHTTPMetrics(reg prometheus.Registerer) *httpMetrics {
	f := promauto.With(reg)
	return &httpMetrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qa", Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests served, by route, method and status.",
		}, []string{"route", "method", "status"}),
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "qa", Subsystem: "http", Name: "request_duration_seconds",
			Help:    "Time spent serving HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		inflight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "qa", Subsystem: "http", Name: "requests_inflight",
			Help: "HTTP requests currently being served.",
		}),
		size: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "qa", Subsystem: "http", Name: "response_size_bytes",
			Help:    "Response body sizes.",
			Buckets: sizeBuckets,
		}, []string{"route", "method"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "qa", Subsystem: "http", Name: "failures_total",
			Help: "Requests that ended in an error envelope, by error kind.",
		}, []string{"kind"}),
	}
}

// Collectors on the default registry, served by promhttp.Handler.
var defaultHTTPMetrics = newHTTPMetrics(prometheus.DefaultRegisterer)

// Metrics records request count, latency, in-flight gauge, response size and
// failure kind for every request. Install it outside the error renderer so
// it observes the final status.
func Metrics() gin.HandlerFunc {
	return defaultHTTPMetrics.handler()
}

func (m *httpMetrics) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.inflight.Inc()
		start := time.Now()

		c.Next()

		m.inflight.Dec()
		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request.Method

		m.requests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
		if n := c.Writer.Size(); n >= 0 {
			m.size.WithLabelValues(route, method).Observe(float64(n))
		}
		if last := c.Errors.Last(); last != nil {
			m.failures.WithLabelValues(apperr.KindOf(last.Err).String()).Inc()
		}
	}
}
