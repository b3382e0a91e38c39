package obs

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	scansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qr_scans_total",
			Help: "Recorded QR scan attempts by type and outcome.",
		},
		[]string{"qr_type", "outcome"},
	)

	registerOnce sync.Once
)

// Init registers the metrics with the default registry. Safe to call more
// than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpInFlight, httpRequestsTotal, httpRequestDuration, scansTotal)
	})
}

// Handler exposes the Prometheus scrape endpoint as a fiber handler.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

// Instrument measures request rate, latency and in-flight count. The route
// pattern is used as the path label so parameterized routes do not explode
// cardinality.
func Instrument() fiber.Handler {
	return func(c *fiber.Ctx) error {
		httpInFlight.Inc()
		start := time.Now()

		err := c.Next()

		path := c.Route().Path
		method := c.Method()
		status := strconv.Itoa(c.Response().StatusCode())

		httpRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()

		return err
	}
}

// ObserveScan counts a recorded scan attempt.
func ObserveScan(qrType string, success bool) {
	outcome := "denied"
	if success {
		outcome = "authorized"
	}
	scansTotal.WithLabelValues(qrType, outcome).Inc()
}

// RegisterAuditDropped exposes a monotonic dropped-record count, typically
// the audit pipeline's own counter.
func RegisterAuditDropped(read func() float64) {
	prometheus.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: "audit_records_dropped_total",
		Help: "Audit records dropped due to pipeline back-pressure.",
	}, read))
}
