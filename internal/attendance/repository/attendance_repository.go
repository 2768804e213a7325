package repository

import (
	"context"
	stderrors "errors"
	"strings"

	"gorm.io/gorm"

	"attendly/internal/attendance/models"
	"attendly/internal/common/errors"
)

// Store is the attendance persistence collaborator. Insert fails with a
// conflict when a record for (user, date) already exists.
type Store interface {
	FindByUserAndDate(ctx context.Context, userID, date string) (*models.AttendanceRecord, error)
	CountByUserStatusMonth(ctx context.Context, userID string, status models.WorkStatus, yearMonth string) (int64, error)
	Insert(ctx context.Context, record *models.AttendanceRecord) error
	Update(ctx context.Context, record *models.AttendanceRecord) error
	ListByUserMonth(ctx context.Context, userID, yearMonth string) ([]models.AttendanceRecord, error)
}

// ProfileStore serves user work-mode configuration.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*models.UserWorkProfile, error)
	SaveProfile(ctx context.Context, profile *models.UserWorkProfile) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates the gorm-backed attendance store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) FindByUserAndDate(ctx context.Context, userID, date string) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).
		First(&record)
	if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, errors.StoreUnavailable("failed to load attendance record", result.Error.Error())
	}
	return &record, nil
}

func (s *gormStore) CountByUserStatusMonth(ctx context.Context, userID string, status models.WorkStatus, yearMonth string) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).
		Model(&models.AttendanceRecord{}).
		Where("user_id = ? AND status = ? AND date LIKE ?", userID, status, yearMonth+"%").
		Count(&count)
	if result.Error != nil {
		return 0, errors.StoreUnavailable("failed to count attendance records", result.Error.Error())
	}
	return count, nil
}

func (s *gormStore) Insert(ctx context.Context, record *models.AttendanceRecord) error {
	result := s.db.WithContext(ctx).Create(record)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return errors.Conflict("an attendance record already exists for this user and date")
		}
		return errors.StoreUnavailable("failed to insert attendance record", result.Error.Error())
	}
	return nil
}

func (s *gormStore) Update(ctx context.Context, record *models.AttendanceRecord) error {
	result := s.db.WithContext(ctx).Save(record)
	if result.Error != nil {
		return errors.StoreUnavailable("failed to update attendance record", result.Error.Error())
	}
	return nil
}

func (s *gormStore) ListByUserMonth(ctx context.Context, userID, yearMonth string) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND date LIKE ?", userID, yearMonth+"%").
		Order("date asc").
		Find(&records)
	if result.Error != nil {
		return nil, errors.StoreUnavailable("failed to list attendance records", result.Error.Error())
	}
	return records, nil
}

type gormProfileStore struct {
	db *gorm.DB
}

// NewProfileStore creates the gorm-backed work-profile store.
func NewProfileStore(db *gorm.DB) ProfileStore {
	return &gormProfileStore{db: db}
}

func (s *gormProfileStore) GetProfile(ctx context.Context, userID string) (*models.UserWorkProfile, error) {
	var profile models.UserWorkProfile
	result := s.db.WithContext(ctx).First(&profile, "user_id = ?", userID)
	if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, errors.NotFound("work profile")
	}
	if result.Error != nil {
		return nil, errors.StoreUnavailable("failed to load work profile", result.Error.Error())
	}
	return &profile, nil
}

func (s *gormProfileStore) SaveProfile(ctx context.Context, profile *models.UserWorkProfile) error {
	result := s.db.WithContext(ctx).Save(profile)
	if result.Error != nil {
		return errors.StoreUnavailable("failed to save work profile", result.Error.Error())
	}
	return nil
}

func isDuplicateKey(err error) bool {
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
