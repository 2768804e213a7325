// Package notify defines the outbound notification boundary. The engine only
// builds event payloads; delivery belongs to an external collaborator.
package notify

import (
	"context"
	"time"

	"go.uber.org/zap"

	"attendly/pkg/logger"
)

// EventType labels an outbound notification.
type EventType string

const (
	EventBookingConfirmed    EventType = "booking-confirmed"
	EventReservationReleased EventType = "reservation-released"
	EventWFHQuotaWarning     EventType = "wfh-quota-warning"
)

// Event is a discrete notification payload.
type Event struct {
	Type    EventType              `json:"type"`
	UserID  string                 `json:"user_id"`
	At      time.Time              `json:"at"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// Notifier delivers events. Implementations must not block the caller beyond
// a bounded enqueue.
type Notifier interface {
	Publish(ctx context.Context, event Event)
}

// LogNotifier writes events to the structured log. The default collaborator
// when no push delivery is wired.
type LogNotifier struct{}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Publish logs the event.
func (n *LogNotifier) Publish(_ context.Context, event Event) {
	logger.Get().Info("notification event",
		zap.String("type", string(event.Type)),
		zap.String("user_id", event.UserID),
		zap.Time("at", event.At),
		zap.Any("payload", event.Payload))
}
