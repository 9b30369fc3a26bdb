package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "halawa"

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_submissions_total",
			Help:      "Booking submissions by outcome (confirmed or rejection reason).",
		},
		[]string{"outcome"},
	)

	seatsBooked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seats_booked_total",
			Help:      "Seats committed by confirmed bookings.",
		},
	)

	persistenceFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_failures_total",
			Help:      "Booking store persistence failures by stage.",
		},
		[]string{"stage"},
	)

	storeReloads = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_reloads_total",
			Help:      "Booking store reloads triggered by remote changes.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingOutcomes, seatsBooked, persistenceFailures, storeReloads)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBookingOutcome counts a submission by outcome label.
func IncBookingOutcome(outcome string) {
	bookingOutcomes.WithLabelValues(outcome).Inc()
}

func AddSeats(n int) {
	if n > 0 {
		seatsBooked.Add(float64(n))
	}
}

// IncPersistenceFailure counts a failed read or write; stage is read, primary or session.
func IncPersistenceFailure(stage string) {
	persistenceFailures.WithLabelValues(stage).Inc()
}

func IncReload() {
	storeReloads.Inc()
}
