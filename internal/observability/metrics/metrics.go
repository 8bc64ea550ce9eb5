package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ImageUploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_uploads_total",
			Help: "Image metadata writes by outcome.",
		},
		[]string{"status"},
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Webhook deliveries by platform and outcome.",
		},
		[]string{"platform", "status"},
	)
)

// MustRegister attaches the collectors to the default registry with a fixed
// service label. Collectors stay usable when it is never called, which keeps
// tests free of registry setup.
func MustRegister(serviceName string) {
	prometheus.WrapRegistererWith(
		prometheus.Labels{"service": serviceName},
		prometheus.DefaultRegisterer,
	).MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDurationSeconds,
		ImageUploadsTotal,
		NotificationsTotal,
	)
}
