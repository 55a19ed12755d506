package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	backendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shop_api_requests_total",
			Help: "Total number of calls made to the shop API",
		},
		[]string{"method", "endpoint", "outcome"},
	)

	backendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shop_api_request_duration_seconds",
			Help:    "Shop API call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	orderActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "order_actions_total",
			Help: "Total number of order actions issued",
		},
		[]string{"action", "outcome"},
	)

	importNotesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "import_notes_total",
			Help: "Total number of import note submissions by outcome",
		},
		[]string{"outcome"},
	)

	checkoutsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkouts_total",
			Help: "Total number of checkouts by payment method and outcome",
		},
		[]string{"payment_method", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(backendRequestsTotal)
	prometheus.MustRegister(backendRequestDuration)
	prometheus.MustRegister(orderActionsTotal)
	prometheus.MustRegister(importNotesTotal)
	prometheus.MustRegister(checkoutsTotal)
}

func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		duration := time.Since(start).Seconds()

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// RecordBackendCall counts a shop API call. Numeric path segments are folded
// into ":id" to keep label cardinality bounded.
func RecordBackendCall(method, path, outcome string, duration time.Duration) {
	endpoint := EndpointLabel(path)
	backendRequestsTotal.WithLabelValues(method, endpoint, outcome).Inc()
	backendRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func RecordOrderAction(action, outcome string) {
	orderActionsTotal.WithLabelValues(action, outcome).Inc()
}

func RecordImportNote(outcome string) {
	importNotesTotal.WithLabelValues(outcome).Inc()
}

func RecordCheckout(paymentMethod, outcome string) {
	checkoutsTotal.WithLabelValues(paymentMethod, outcome).Inc()
}

// EndpointLabel turns /orders/42/cancel/ into /orders/:id/cancel/
func EndpointLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(path, "/")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if _, err := strconv.ParseInt(p, 10, 64); err == nil {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}
