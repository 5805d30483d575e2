package metrics

import (
	"encoding/json"
	"sync"

	"fomeninja/internal/events"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fomeninja",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	reservationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fomeninja",
			Name:      "reservations_created_total",
			Help:      "Reservations created since start.",
		},
	)

	statusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fomeninja",
			Name:      "reservation_transitions_total",
			Help:      "Reservation status transitions by target status.",
		},
		[]string{"to"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, reservationsCreated, statusTransitions)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncCreated counts a created reservation.
func IncCreated() {
	reservationsCreated.Inc()
}

// IncTransition counts a status transition into the given status.
func IncTransition(to string) {
	statusTransitions.WithLabelValues(to).Inc()
}

// SubscribeReservationEvents drives the reservation counters from the bus.
func SubscribeReservationEvents(bus *events.EventBus) {
	if bus == nil {
		return
	}

	bus.Subscribe(events.EventReservationCreated, func(ev *events.Event) error {
		IncCreated()
		return nil
	})

	transitionHandler := func(ev *events.Event) error {
		var payload events.ReservationEventPayload
		if err := json.Unmarshal(ev.Payload, &payload); err != nil {
			return err
		}
		IncTransition(payload.Status)
		return nil
	}
	bus.Subscribe(events.EventReservationConfirmed, transitionHandler)
	bus.Subscribe(events.EventReservationCancelled, transitionHandler)
	bus.Subscribe(events.EventReservationCompleted, transitionHandler)
}
