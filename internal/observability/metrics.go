package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Conversion operations reported by the codec.
const (
	OpMarshal        = "marshal"
	OpUnmarshal      = "unmarshal"
	OpMarshalArray   = "marshal_array"
	OpUnmarshalArray = "unmarshal_array"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docwire",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests, by document schema where the route names one.",
		},
		[]string{"method", "path", "schema", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docwire",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "schema", "status"},
	)
	codecConversions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docwire",
			Subsystem: "codec",
			Name:      "conversions_total",
			Help:      "Document conversions by operation and outcome.",
		},
		[]string{"op", "success"},
	)
	codecDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docwire",
			Subsystem: "codec",
			Name:      "conversion_duration_seconds",
			Help:      "Document conversion duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
		[]string{"op"},
	)
	codecBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docwire",
			Subsystem: "codec",
			Name:      "wire_bytes",
			Help:      "Size of encoded or decoded wire payloads.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 12),
		},
		[]string{"op"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, codecConversions, codecDuration, codecBytes)
	})
}

// RecordHTTPRequest counts one request. schema is empty for routes that do
// not carry a document.
func RecordHTTPRequest(method, path, schema string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, schema, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, schema, statusLabel).Observe(duration.Seconds())
}

// RecordConversion counts one codec call. size is only observed on success.
func RecordConversion(op string, size int, duration time.Duration, success bool) {
	RegisterMetrics()
	codecConversions.WithLabelValues(op, strconv.FormatBool(success)).Inc()
	codecDuration.WithLabelValues(op).Observe(duration.Seconds())
	if success {
		codecBytes.WithLabelValues(op).Observe(float64(size))
	}
}
