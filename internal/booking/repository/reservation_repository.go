package repository

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"attendly/internal/booking/conflict"
	"attendly/internal/booking/models"
	"attendly/internal/common/errors"
	"attendly/internal/common/lock"
)

// Store is the reservation persistence collaborator. CreateIfNoConflict runs
// the conflict check and the insert atomically; TransitionStatus is a
// conditional update that fails when the current status does not match.
type Store interface {
	GetByID(ctx context.Context, id string) (*models.Reservation, error)
	ListConfirmed(ctx context.Context, resourceID, date string) ([]models.Reservation, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Reservation, error)
	CreateIfNoConflict(ctx context.Context, reservation *models.Reservation) (*conflict.Descriptor, error)
	TransitionStatus(ctx context.Context, id string, from, to models.ReservationStatus) (bool, error)
	MarkCheckedIn(ctx context.Context, id string) error
	// ListReleaseCandidates returns reservations on the given date still in a
	// confirmed or pending-release state with no occupancy signal.
	ListReleaseCandidates(ctx context.Context, date string) ([]models.Reservation, error)
	CountConfirmedInWindow(ctx context.Context, resourceID string, dates []string) (int64, error)
}

type gormStore struct {
	db *gorm.DB
	// locks serializes check-then-insert per resource+date (and per
	// user+date for parking) within this process. The transaction is the
	// cross-process backstop.
	locks *lock.Keyed
}

// NewStore creates the gorm-backed reservation store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db, locks: lock.NewKeyed()}
}

func (s *gormStore) GetByID(ctx context.Context, id string) (*models.Reservation, error) {
	var reservation models.Reservation
	result := s.db.WithContext(ctx).First(&reservation, "id = ?", id)
	if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, errors.NotFound("reservation")
	}
	if result.Error != nil {
		return nil, errors.StoreUnavailable("failed to load reservation", result.Error.Error())
	}
	return &reservation, nil
}

func (s *gormStore) ListConfirmed(ctx context.Context, resourceID, date string) ([]models.Reservation, error) {
	var reservations []models.Reservation
	result := s.db.WithContext(ctx).
		Where("resource_id = ? AND date = ? AND status IN ?", resourceID, date,
			[]models.ReservationStatus{models.StatusConfirmed, models.StatusPendingRelease}).
		Order("start_minute asc").
		Find(&reservations)
	if result.Error != nil {
		return nil, errors.StoreUnavailable("failed to list reservations", result.Error.Error())
	}
	return reservations, nil
}

func (s *gormStore) ListByUser(ctx context.Context, userID string, limit int) ([]models.Reservation, error) {
	var reservations []models.Reservation
	query := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date desc, start_minute desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	result := query.Find(&reservations)
	if result.Error != nil {
		return nil, errors.StoreUnavailable("failed to list reservations", result.Error.Error())
	}
	return reservations, nil
}

// CreateIfNoConflict checks the proposal against the confirmed timeline and
// inserts it in one atomic step. A non-nil descriptor means the proposal was
// rejected; the reservation is persisted only when the descriptor is nil.
func (s *gormStore) CreateIfNoConflict(ctx context.Context, reservation *models.Reservation) (*conflict.Descriptor, error) {
	key := reservation.ResourceID + "|" + reservation.Date
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	if reservation.ResourceType == models.ResourceParking {
		userKey := "parking-user|" + reservation.UserID + "|" + reservation.Date
		s.locks.Lock(userKey)
		defer s.locks.Unlock(userKey)
	}

	var descriptor *conflict.Descriptor
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if reservation.ResourceType == models.ResourceRoom {
			var existing []models.Reservation
			if err := tx.Where("resource_id = ? AND date = ? AND status IN ?",
				reservation.ResourceID, reservation.Date,
				[]models.ReservationStatus{models.StatusConfirmed, models.StatusPendingRelease}).
				Find(&existing).Error; err != nil {
				return err
			}
			descriptor = conflict.CheckRoom(existing, models.Interval{
				StartMinute: reservation.StartMinute,
				EndMinute:   reservation.EndMinute,
			})
		} else {
			var userHeld []models.Reservation
			if err := tx.Where("user_id = ? AND date = ? AND resource_type = ? AND status IN ?",
				reservation.UserID, reservation.Date, models.ResourceParking,
				[]models.ReservationStatus{models.StatusConfirmed, models.StatusPendingRelease}).
				Find(&userHeld).Error; err != nil {
				return err
			}
			var spotHeld []models.Reservation
			if err := tx.Where("resource_id = ? AND date = ? AND status IN ?",
				reservation.ResourceID, reservation.Date,
				[]models.ReservationStatus{models.StatusConfirmed, models.StatusPendingRelease}).
				Find(&spotHeld).Error; err != nil {
				return err
			}
			descriptor = conflict.CheckParking(userHeld, spotHeld)
		}

		if descriptor != nil {
			// Nothing to persist; roll the transaction back cleanly.
			return nil
		}
		return tx.Create(reservation).Error
	})
	if err != nil {
		return nil, errors.StoreUnavailable("failed to create reservation", err.Error())
	}
	return descriptor, nil
}

// TransitionStatus performs an optimistic, conditional status update. Returns
// false when the reservation is no longer in the expected status, which lets
// a sweep and a concurrent cancellation race safely.
func (s *gormStore) TransitionStatus(ctx context.Context, id string, from, to models.ReservationStatus) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":  to,
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, errors.StoreUnavailable("failed to transition reservation", result.Error.Error())
	}
	return result.RowsAffected == 1, nil
}

func (s *gormStore) MarkCheckedIn(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ? AND status IN ?", id,
			[]models.ReservationStatus{models.StatusConfirmed, models.StatusPendingRelease}).
		Updates(map[string]interface{}{
			"checked_in_at": gorm.Expr("CURRENT_TIMESTAMP"),
			"status":        models.StatusConfirmed,
			"version":       gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return errors.StoreUnavailable("failed to mark reservation checked in", result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return errors.Conflict("reservation is not in an occupiable state")
	}
	return nil
}

func (s *gormStore) ListReleaseCandidates(ctx context.Context, date string) ([]models.Reservation, error) {
	var reservations []models.Reservation
	result := s.db.WithContext(ctx).
		Where("date = ? AND status IN ? AND checked_in_at IS NULL", date,
			[]models.ReservationStatus{models.StatusConfirmed, models.StatusPendingRelease}).
		Find(&reservations)
	if result.Error != nil {
		return nil, errors.StoreUnavailable("failed to list release candidates", result.Error.Error())
	}
	return reservations, nil
}

func (s *gormStore) CountConfirmedInWindow(ctx context.Context, resourceID string, dates []string) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("resource_id = ? AND date IN ? AND status IN ?", resourceID, dates,
			[]models.ReservationStatus{models.StatusConfirmed, models.StatusCompleted}).
		Count(&count)
	if result.Error != nil {
		return 0, errors.StoreUnavailable("failed to count reservations", result.Error.Error())
	}
	return count, nil
}
