package services

import (
	"context"
	"sync"

	"attendly/internal/attendance/models"
	"attendly/internal/common/errors"
	"attendly/internal/notify"
	officemodels "attendly/internal/office/models"
)

// recordStoreFake is an in-memory attendance store enforcing the (user, date)
// uniqueness invariant.
type recordStoreFake struct {
	mu      sync.Mutex
	records map[string]*models.AttendanceRecord // key user|date
	failing bool
}

func newRecordStoreFake() *recordStoreFake {
	return &recordStoreFake{records: make(map[string]*models.AttendanceRecord)}
}

func (f *recordStoreFake) key(userID, date string) string { return userID + "|" + date }

func (f *recordStoreFake) FindByUserAndDate(_ context.Context, userID, date string) (*models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errors.StoreUnavailable("store down", "")
	}
	if r, ok := f.records[f.key(userID, date)]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, nil
}

func (f *recordStoreFake) CountByUserStatusMonth(_ context.Context, userID string, status models.WorkStatus, yearMonth string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return 0, errors.StoreUnavailable("store down", "")
	}
	var count int64
	for _, r := range f.records {
		if r.UserID == userID && r.Status == status && models.MonthKey(r.Date) == yearMonth {
			count++
		}
	}
	return count, nil
}

func (f *recordStoreFake) Insert(_ context.Context, record *models.AttendanceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.StoreUnavailable("store down", "")
	}
	key := f.key(record.UserID, record.Date)
	if _, exists := f.records[key]; exists {
		return errors.Conflict("an attendance record already exists for this user and date")
	}
	copied := *record
	f.records[key] = &copied
	return nil
}

func (f *recordStoreFake) Update(_ context.Context, record *models.AttendanceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *record
	f.records[f.key(record.UserID, record.Date)] = &copied
	return nil
}

func (f *recordStoreFake) ListByUserMonth(_ context.Context, userID, yearMonth string) ([]models.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AttendanceRecord
	for _, r := range f.records {
		if r.UserID == userID && models.MonthKey(r.Date) == yearMonth {
			out = append(out, *r)
		}
	}
	return out, nil
}

type profileStoreFake struct {
	profiles map[string]*models.UserWorkProfile
}

func (f *profileStoreFake) GetProfile(_ context.Context, userID string) (*models.UserWorkProfile, error) {
	if p, ok := f.profiles[userID]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, errors.NotFound("work profile")
}

func (f *profileStoreFake) SaveProfile(_ context.Context, profile *models.UserWorkProfile) error {
	f.profiles[profile.UserID] = profile
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
