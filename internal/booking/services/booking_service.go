package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"attendly/internal/booking/conflict"
	"attendly/internal/booking/models"
	"attendly/internal/booking/repository"
	"attendly/internal/common/clock"
	"attendly/internal/common/errors"
	"attendly/internal/common/retry"
	"attendly/internal/notify"
	"attendly/pkg/logger"
	"attendly/pkg/metrics"
)

// RoomBookingRequest is a proposed room reservation.
type RoomBookingRequest struct {
	RoomID      string `json:"room_id" binding:"required"`
	Date        string `json:"date" binding:"required"` // "2006-01-02"
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
}

// ParkingRequest is a proposed full-day parking claim.
type ParkingRequest struct {
	SpotID string `json:"spot_id" binding:"required"`
	Date   string `json:"date" binding:"required"`
}

// BookingService accepts or rejects reservation requests. The conflict check
// and the insert run atomically in the store, so two concurrent requests for
// the same slot cannot both commit.
type BookingService struct {
	reservations repository.Store
	resources    repository.ResourceStore
	notifier     notify.Notifier
	clock        clock.Clock
	policy       retry.Policy
}

// NewBookingService creates the booking service.
func NewBookingService(
	reservations repository.Store,
	resources repository.ResourceStore,
	notifier notify.Notifier,
	clk clock.Clock,
) *BookingService {
	return &BookingService{
		reservations: reservations,
		resources:    resources,
		notifier:     notifier,
		clock:        clk,
		policy:       retry.DefaultPolicy(),
	}
}

// BookRoom validates and persists a room reservation, rejecting overlaps with
// a conflict descriptor naming the colliding reservations.
func (s *BookingService) BookRoom(ctx context.Context, userID string, req RoomBookingRequest) (*models.Reservation, error) {
	if err := validateDate(req.Date); err != nil {
		return nil, err
	}
	if req.StartMinute < 0 || req.EndMinute > 24*60 || req.StartMinute >= req.EndMinute {
		return nil, errors.Validation("invalid interval", "start must precede end within a single day")
	}

	room, err := s.loadRoom(ctx, req.RoomID)
	if err != nil {
		return nil, err
	}

	reservation := &models.Reservation{
		ID:           uuid.NewString(),
		ResourceID:   room.ID,
		ResourceType: models.ResourceRoom,
		UserID:       userID,
		Date:         req.Date,
		StartMinute:  req.StartMinute,
		EndMinute:    req.EndMinute,
		Status:       models.StatusConfirmed,
	}

	descriptor, err := s.create(ctx, reservation)
	if err != nil {
		return nil, err
	}
	if descriptor != nil {
		metrics.BookingConflicts.WithLabelValues(string(models.ResourceRoom)).Inc()
		return nil, errors.BookingConflict(
			fmt.Sprintf("room %s is already reserved %s-%s on %s", room.Name,
				models.FormatMinute(descriptor.Colliding[0].StartMinute),
				models.FormatMinute(descriptor.Colliding[0].EndMinute),
				req.Date),
			descriptor.IDs())
	}

	s.confirmed(ctx, reservation)
	return reservation, nil
}

// ReserveParking validates and persists a full-day parking claim. One
// confirmed reservation per user per date, one per spot per date.
func (s *BookingService) ReserveParking(ctx context.Context, userID string, req ParkingRequest) (*models.Reservation, error) {
	if err := validateDate(req.Date); err != nil {
		return nil, err
	}

	spot, err := s.loadSpot(ctx, req.SpotID)
	if err != nil {
		return nil, err
	}

	reservation := &models.Reservation{
		ID:           uuid.NewString(),
		ResourceID:   spot.ID,
		ResourceType: models.ResourceParking,
		UserID:       userID,
		Date:         req.Date,
		StartMinute:  0,
		EndMinute:    24 * 60,
		Status:       models.StatusConfirmed,
	}

	descriptor, err := s.create(ctx, reservation)
	if err != nil {
		return nil, err
	}
	if descriptor != nil {
		metrics.BookingConflicts.WithLabelValues(string(models.ResourceParking)).Inc()
		msg := "spot " + spot.Label + " is already reserved on " + req.Date
		if descriptor.Colliding[0].UserID == userID {
			msg = "you already hold a parking reservation on " + req.Date
		}
		return nil, errors.BookingConflict(msg, descriptor.IDs())
	}

	s.confirmed(ctx, reservation)
	return reservation, nil
}

// Cancel transitions a reservation to cancelled by explicit owner action.
// Terminal states stay terminal.
func (s *BookingService) Cancel(ctx context.Context, userID, reservationID string) error {
	reservation, err := s.load(ctx, reservationID)
	if err != nil {
		return err
	}
	if reservation.UserID != userID {
		return errors.Forbidden("reservation belongs to another user")
	}
	if reservation.Status.Terminal() {
		return errors.Conflict("reservation is already " + string(reservation.Status))
	}

	for _, from := range []models.ReservationStatus{models.StatusConfirmed, models.StatusPendingRelease} {
		var ok bool
		err = s.policy.Do(ctx, func(ctx context.Context) error {
			var err error
			ok, err = s.reservations.TransitionStatus(ctx, reservationID, from, models.StatusCancelled)
			return err
		})
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	// Lost the race with a sweep or another cancel.
	return errors.Conflict("reservation state changed concurrently")
}

// Occupy records an occupancy signal ("I'm here") for a reservation, clearing
// its no-show state.
func (s *BookingService) Occupy(ctx context.Context, userID, reservationID string) error {
	reservation, err := s.load(ctx, reservationID)
	if err != nil {
		return err
	}
	if reservation.UserID != userID {
		return errors.Forbidden("reservation belongs to another user")
	}
	return s.policy.Do(ctx, func(ctx context.Context) error {
		return s.reservations.MarkCheckedIn(ctx, reservationID)
	})
}

// ListForUser returns a user's reservations, most recent first.
func (s *BookingService) ListForUser(ctx context.Context, userID string, limit int) ([]models.Reservation, error) {
	var reservations []models.Reservation
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		reservations, err = s.reservations.ListByUser(ctx, userID, limit)
		return err
	})
	return reservations, err
}

// Timeline returns the confirmed reservations for a resource and date.
func (s *BookingService) Timeline(ctx context.Context, resourceID, date string) ([]models.Reservation, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	var reservations []models.Reservation
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		reservations, err = s.reservations.ListConfirmed(ctx, resourceID, date)
		return err
	})
	return reservations, err
}

func (s *BookingService) create(ctx context.Context, reservation *models.Reservation) (descriptor *conflict.Descriptor, err error) {
	err = s.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		descriptor, err = s.reservations.CreateIfNoConflict(ctx, reservation)
		return err
	})
	return descriptor, err
}

func (s *BookingService) confirmed(ctx context.Context, reservation *models.Reservation) {
	metrics.BookingsAccepted.WithLabelValues(string(reservation.ResourceType)).Inc()
	logger.Get().Info("reservation confirmed",
		zap.String("reservation_id", reservation.ID),
		zap.String("resource_id", reservation.ResourceID),
		zap.String("date", reservation.Date))
	s.notifier.Publish(ctx, notify.Event{
		Type:   notify.EventBookingConfirmed,
		UserID: reservation.UserID,
		At:     s.clock.Now(),
		Payload: map[string]interface{}{
			"reservation_id": reservation.ID,
			"resource_id":    reservation.ResourceID,
			"resource_type":  reservation.ResourceType,
			"date":           reservation.Date,
		},
	})
}

func (s *BookingService) load(ctx context.Context, id string) (*models.Reservation, error) {
	var reservation *models.Reservation
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		reservation, err = s.reservations.GetByID(ctx, id)
		return err
	})
	return reservation, err
}

func (s *BookingService) loadRoom(ctx context.Context, id string) (*models.Room, error) {
	var room *models.Room
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		room, err = s.resources.GetRoom(ctx, id)
		return err
	})
	return room, err
}

func (s *BookingService) loadSpot(ctx context.Context, id string) (*models.ParkingSpot, error) {
	var spot *models.ParkingSpot
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		spot, err = s.resources.GetSpot(ctx, id)
		return err
	})
	return spot, err
}

func validateDate(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return errors.Validation("invalid date", "date must be formatted 2006-01-02")
	}
	return nil
}
