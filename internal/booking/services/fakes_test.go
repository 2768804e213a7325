package services

import (
	"context"
	"sync"
	"time"

	"attendly/internal/booking/conflict"
	"attendly/internal/booking/models"
	"attendly/internal/common/errors"
	"attendly/internal/notify"
	officemodels "attendly/internal/office/models"
)

// reservationStoreFake is an in-memory reservation store preserving the real
// store's atomicity contract: CreateIfNoConflict checks and inserts under one
// lock, TransitionStatus is a conditional compare-and-set.
type reservationStoreFake struct {
	mu           sync.Mutex
	reservations map[string]*models.Reservation
	failing      bool
}

func newReservationStoreFake() *reservationStoreFake {
	return &reservationStoreFake{reservations: make(map[string]*models.Reservation)}
}

func (f *reservationStoreFake) GetByID(_ context.Context, id string) (*models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.reservations[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, errors.NotFound("reservation")
}

func (f *reservationStoreFake) ListConfirmed(_ context.Context, resourceID, date string) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reservation
	for _, r := range f.reservations {
		if r.ResourceID == resourceID && r.Date == date &&
			(r.Status == models.StatusConfirmed || r.Status == models.StatusPendingRelease) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *reservationStoreFake) ListByUser(_ context.Context, userID string, limit int) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reservation
	for _, r := range f.reservations {
		if r.UserID == userID {
			out = append(out, *r)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (f *reservationStoreFake) CreateIfNoConflict(_ context.Context, reservation *models.Reservation) (*conflict.Descriptor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errors.StoreUnavailable("store down", "")
	}

	var descriptor *conflict.Descriptor
	if reservation.ResourceType == models.ResourceParking {
		var userHeld, spotHeld []models.Reservation
		for _, r := range f.reservations {
			if r.Date != reservation.Date || r.ResourceType != models.ResourceParking {
				continue
			}
			if r.UserID == reservation.UserID {
				userHeld = append(userHeld, *r)
			}
			if r.ResourceID == reservation.ResourceID {
				spotHeld = append(spotHeld, *r)
			}
		}
		descriptor = conflict.CheckParking(userHeld, spotHeld)
	} else {
		var existing []models.Reservation
		for _, r := range f.reservations {
			if r.ResourceID == reservation.ResourceID && r.Date == reservation.Date {
				existing = append(existing, *r)
			}
		}
		descriptor = conflict.CheckRoom(existing, models.Interval{
			StartMinute: reservation.StartMinute,
			EndMinute:   reservation.EndMinute,
		})
	}
	if descriptor != nil {
		return descriptor, nil
	}

	copied := *reservation
	f.reservations[reservation.ID] = &copied
	return nil, nil
}

func (f *reservationStoreFake) TransitionStatus(_ context.Context, id string, from, to models.ReservationStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return false, errors.StoreUnavailable("store down", "")
	}
	r, ok := f.reservations[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	r.Version++
	return true, nil
}

func (f *reservationStoreFake) MarkCheckedIn(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[id]
	if !ok {
		return errors.NotFound("reservation")
	}
	now := time.Now()
	r.CheckedInAt = &now
	return nil
}

func (f *reservationStoreFake) ListReleaseCandidates(_ context.Context, date string) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reservation
	for _, r := range f.reservations {
		if r.Date == date && r.CheckedInAt == nil &&
			(r.Status == models.StatusConfirmed || r.Status == models.StatusPendingRelease) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *reservationStoreFake) CountConfirmedInWindow(_ context.Context, resourceID string, dates []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	inWindow := make(map[string]bool, len(dates))
	for _, d := range dates {
		inWindow[d] = true
	}
	var count int64
	for _, r := range f.reservations {
		if r.ResourceID == resourceID && inWindow[r.Date] && r.Status == models.StatusConfirmed {
			count++
		}
	}
	return count, nil
}

func (f *reservationStoreFake) add(r *models.Reservation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *r
	f.reservations[r.ID] = &copied
}

func (f *reservationStoreFake) get(id string) models.Reservation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.reservations[id]
}

type resourceStoreFake struct {
	rooms map[string]*models.Room
	spots map[string]*models.ParkingSpot
}

func newResourceStoreFake() *resourceStoreFake {
	return &resourceStoreFake{
		rooms: make(map[string]*models.Room),
		spots: make(map[string]*models.ParkingSpot),
	}
}

func (f *resourceStoreFake) GetRoom(_ context.Context, id string) (*models.Room, error) {
	if r, ok := f.rooms[id]; ok {
		return r, nil
	}
	return nil, errors.NotFound("room")
}

func (f *resourceStoreFake) ListRooms(_ context.Context) ([]models.Room, error) {
	var out []models.Room
	for _, r := range f.rooms {
		out = append(out, *r)
	}
	return out, nil
}

func (f *resourceStoreFake) SaveRoom(_ context.Context, room *models.Room) error {
	f.rooms[room.ID] = room
	return nil
}

func (f *resourceStoreFake) GetSpot(_ context.Context, id string) (*models.ParkingSpot, error) {
	if s, ok := f.spots[id]; ok {
		return s, nil
	}
	return nil, errors.NotFound("parking spot")
}

func (f *resourceStoreFake) ListSpots(_ context.Context) ([]models.ParkingSpot, error) {
	var out []models.ParkingSpot
	for _, s := range f.spots {
		out = append(out, *s)
	}
	return out, nil
}

func (f *resourceStoreFake) SaveSpot(_ context.Context, spot *models.ParkingSpot) error {
	f.spots[spot.ID] = spot
	return nil
}

type locationStoreFake struct {
	offices map[string]*officemodels.OfficeLocation
}

func (f *locationStoreFake) Get(_ context.Context, id string) (*officemodels.OfficeLocation, error) {
	if o, ok := f.offices[id]; ok {
		return o, nil
	}
	return nil, errors.NotFound("office location")
}

func (f *locationStoreFake) List(_ context.Context) ([]officemodels.OfficeLocation, error) {
	var out []officemodels.OfficeLocation
	for _, o := range f.offices {
		out = append(out, *o)
	}
	return out, nil
}

func (f *locationStoreFake) Save(_ context.Context, office *officemodels.OfficeLocation) error {
	f.offices[office.ID] = office
	return nil
}

func (f *locationStoreFake) Delete(_ context.Context, id string) error {
	delete(f.offices, id)
	return nil
}

type notifierFake struct {
	mu     sync.Mutex
	events []notify.Event
}

func (f *notifierFake) Publish(_ context.Context, event notify.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *notifierFake) byType(t notify.EventType) []notify.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []notify.Event
	for _, e := range f.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
