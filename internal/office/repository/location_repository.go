package repository

import (
	"context"
	stderrors "errors"
	"time"

	"gorm.io/gorm"

	"attendly/internal/common/errors"
	"attendly/internal/office/models"
)

// LocationStore serves office locations with their networks and token
// registry preloaded. Administered elsewhere; the engine reads.
type LocationStore interface {
	Get(ctx context.Context, id string) (*models.OfficeLocation, error)
	List(ctx context.Context) ([]models.OfficeLocation, error)
	Save(ctx context.Context, office *models.OfficeLocation) error
	Delete(ctx context.Context, id string) error
}

// TokenStore manages the check-in token registry and its usage audit trail.
type TokenStore interface {
	GetToken(ctx context.Context, id string) (*models.CheckInToken, error)
	SaveToken(ctx context.Context, token *models.CheckInToken) error
	DeleteToken(ctx context.Context, id string) error
	// RecordUse satisfies verify.TokenUsageRecorder. Best-effort audit.
	RecordUse(ctx context.Context, tokenID string, deactivate bool) error
}

type gormLocationStore struct {
	db *gorm.DB
}

// NewLocationStore creates the gorm-backed office location store.
func NewLocationStore(db *gorm.DB) LocationStore {
	return &gormLocationStore{db: db}
}

func (s *gormLocationStore) Get(ctx context.Context, id string) (*models.OfficeLocation, error) {
	var office models.OfficeLocation
	result := s.db.WithContext(ctx).
		Preload("Networks").
		Preload("Tokens").
		First(&office, "id = ?", id)
	if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, errors.NotFound("office location")
	}
	if result.Error != nil {
		return nil, errors.StoreUnavailable("failed to load office location", result.Error.Error())
	}
	return &office, nil
}

func (s *gormLocationStore) List(ctx context.Context) ([]models.OfficeLocation, error) {
	var offices []models.OfficeLocation
	result := s.db.WithContext(ctx).Preload("Networks").Find(&offices)
	if result.Error != nil {
		return nil, errors.StoreUnavailable("failed to list office locations", result.Error.Error())
	}
	return offices, nil
}

func (s *gormLocationStore) Save(ctx context.Context, office *models.OfficeLocation) error {
	result := s.db.WithContext(ctx).Save(office)
	if result.Error != nil {
		return errors.StoreUnavailable("failed to save office location", result.Error.Error())
	}
	return nil
}

func (s *gormLocationStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.OfficeLocation{}, "id = ?", id)
	if result.Error != nil {
		return errors.StoreUnavailable("failed to delete office location", result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return errors.NotFound("office location")
	}
	return nil
}

type gormTokenStore struct {
	db *gorm.DB
}

// NewTokenStore creates the gorm-backed token store.
func NewTokenStore(db *gorm.DB) TokenStore {
	return &gormTokenStore{db: db}
}

func (s *gormTokenStore) GetToken(ctx context.Context, id string) (*models.CheckInToken, error) {
	var token models.CheckInToken
	result := s.db.WithContext(ctx).First(&token, "id = ?", id)
	if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, errors.NotFound("check-in token")
	}
	if result.Error != nil {
		return nil, errors.StoreUnavailable("failed to load check-in token", result.Error.Error())
	}
	return &token, nil
}

func (s *gormTokenStore) SaveToken(ctx context.Context, token *models.CheckInToken) error {
	result := s.db.WithContext(ctx).Save(token)
	if result.Error != nil {
		return errors.StoreUnavailable("failed to save check-in token", result.Error.Error())
	}
	return nil
}

func (s *gormTokenStore) DeleteToken(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&models.CheckInToken{}, "id = ?", id)
	if result.Error != nil {
		return errors.StoreUnavailable("failed to delete check-in token", result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return errors.NotFound("check-in token")
	}
	return nil
}

func (s *gormTokenStore) RecordUse(ctx context.Context, tokenID string, deactivate bool) error {
	updates := map[string]interface{}{
		"use_count":    gorm.Expr("use_count + 1"),
		"last_used_at": time.Now(),
	}
	if deactivate {
		updates["active"] = false
	}
	result := s.db.WithContext(ctx).
		Model(&models.CheckInToken{}).
		Where("id = ?", tokenID).
		Updates(updates)
	return result.Error
}
