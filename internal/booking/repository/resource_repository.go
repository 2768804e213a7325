package repository

import (
	"context"
	stderrors "errors"

	"gorm.io/gorm"

	"attendly/internal/booking/models"
	"attendly/internal/common/errors"
)

// ResourceStore serves the bookable resource catalog.
type ResourceStore interface {
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
	SaveRoom(ctx context.Context, room *models.Room) error
	GetSpot(ctx context.Context, id string) (*models.ParkingSpot, error)
	ListSpots(ctx context.Context) ([]models.ParkingSpot, error)
	SaveSpot(ctx context.Context, spot *models.ParkingSpot) error
}

type gormResourceStore struct {
	db *gorm.DB
}

// NewResourceStore creates the gorm-backed resource catalog store.
func NewResourceStore(db *gorm.DB) ResourceStore {
	return &gormResourceStore{db: db}
}

func (s *gormResourceStore) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	result := s.db.WithContext(ctx).First(&room, "id = ?", id)
	if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, errors.NotFound("room")
	}
	if result.Error != nil {
		return nil, errors.StoreUnavailable("failed to load room", result.Error.Error())
	}
	return &room, nil
}

func (s *gormResourceStore) ListRooms(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	result := s.db.WithContext(ctx).Order("name asc").Find(&rooms)
	if result.Error != nil {
		return nil, errors.StoreUnavailable("failed to list rooms", result.Error.Error())
	}
	return rooms, nil
}

func (s *gormResourceStore) SaveRoom(ctx context.Context, room *models.Room) error {
	result := s.db.WithContext(ctx).Save(room)
	if result.Error != nil {
		return errors.StoreUnavailable("failed to save room", result.Error.Error())
	}
	return nil
}

func (s *gormResourceStore) GetSpot(ctx context.Context, id string) (*models.ParkingSpot, error) {
	var spot models.ParkingSpot
	result := s.db.WithContext(ctx).First(&spot, "id = ?", id)
	if stderrors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, errors.NotFound("parking spot")
	}
	if result.Error != nil {
		return nil, errors.StoreUnavailable("failed to load parking spot", result.Error.Error())
	}
	return &spot, nil
}

func (s *gormResourceStore) ListSpots(ctx context.Context) ([]models.ParkingSpot, error) {
	var spots []models.ParkingSpot
	result := s.db.WithContext(ctx).Order("label asc").Find(&spots)
	if result.Error != nil {
		return nil, errors.StoreUnavailable("failed to list parking spots", result.Error.Error())
	}
	return spots, nil
}

func (s *gormResourceStore) SaveSpot(ctx context.Context, spot *models.ParkingSpot) error {
	result := s.db.WithContext(ctx).Save(spot)
	if result.Error != nil {
		return errors.StoreUnavailable("failed to save parking spot", result.Error.Error())
	}
	return nil
}
