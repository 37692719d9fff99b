package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtbooking_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "courtbooking_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtbooking_booking_commands_total",
			Help: "Booking commands by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	BookingTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtbooking_booking_transitions_total",
			Help: "Booking status transitions by target status",
		},
		[]string{"to"},
	)

	AvailabilityQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtbooking_availability_queries_total",
			Help: "Availability queries by cache result",
		},
		[]string{"cache"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordBookingCommand counts a booking command. outcome is "ok" or an error kind.
func RecordBookingCommand(operation, outcome string) {
	BookingCommandsTotal.WithLabelValues(operation, outcome).Inc()
}

func RecordTransition(to string) {
	BookingTransitionsTotal.WithLabelValues(to).Inc()
}

// RecordAvailabilityQuery counts a query; cache is "hit", "miss" or "off".
func RecordAvailabilityQuery(cache string) {
	AvailabilityQueriesTotal.WithLabelValues(cache).Inc()
}
