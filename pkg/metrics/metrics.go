// Package metrics exposes the engine's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CheckInsAdmitted counts admitted check-ins by verification method.
	CheckInsAdmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendly_checkins_admitted_total",
		Help: "Admitted check-ins by verification method",
	}, []string{"method"})

	// CheckInsDenied counts denied check-ins by reason code.
	CheckInsDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendly_checkins_denied_total",
		Help: "Denied check-ins by reason code",
	}, []string{"reason"})

	// BookingsAccepted counts accepted reservations by resource type.
	BookingsAccepted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendly_bookings_accepted_total",
		Help: "Accepted reservations by resource type",
	}, []string{"resource_type"})

	// BookingConflicts counts rejected reservations by resource type.
	BookingConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendly_booking_conflicts_total",
		Help: "Reservations rejected for overlap or exclusion conflicts",
	}, []string{"resource_type"})

	// ReservationsReleased counts no-show releases performed by the sweep.
	ReservationsReleased = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "attendly_reservations_released_total",
		Help: "Reservations auto-released after a no-show",
	}, []string{"resource_type"})

	// SweepDuration records the duration of the last auto-release sweep.
	SweepDuration = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "attendly_autorelease_sweep_duration_seconds",
		Help: "Duration of the last auto-release sweep",
	})
)
