package models

import (
	"fmt"
	"time"
)

// ResourceType distinguishes bookable resources.
type ResourceType string

const (
	ResourceRoom    ResourceType = "room"
	ResourceParking ResourceType = "parking"
)

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	StatusConfirmed      ReservationStatus = "confirmed"
	StatusPendingRelease ReservationStatus = "pending_release"
	StatusReleased       ReservationStatus = "released"
	StatusCancelled      ReservationStatus = "cancelled"
	StatusCompleted      ReservationStatus = "completed"
)

// Terminal reports whether no further transition is allowed out of s.
func (s ReservationStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted || s == StatusReleased
}

// Room is a bookable meeting room.
type Room struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Capacity  int       `gorm:"not null" json:"capacity"`
	Amenities string    `json:"amenities"` // comma-separated
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ParkingSpot is a bookable parking space.
type ParkingSpot struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Label     string    `gorm:"not null" json:"label"`
	Type      string    `json:"type"` // standard, accessible, ev
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Reservation is a room booking or a parking reservation. Room reservations
// carry a half-open [StartMinute, EndMinute) interval in minutes since
// midnight; parking reservations claim the whole day. Version guards
// optimistic status transitions against concurrent sweeps and cancellations.
type Reservation struct {
	ID           string            `gorm:"primaryKey" json:"id"`
	ResourceID   string            `gorm:"index:idx_resource_date;not null" json:"resource_id"`
	ResourceType ResourceType      `gorm:"not null" json:"resource_type"`
	UserID       string            `gorm:"index;not null" json:"user_id"`
	Date         string            `gorm:"index:idx_resource_date;not null" json:"date"` // "2006-01-02"
	StartMinute  int               `json:"start_minute"`
	EndMinute    int               `json:"end_minute"`
	Status       ReservationStatus `gorm:"not null" json:"status"`
	Version      int               `gorm:"not null;default:0" json:"version"`
	CheckedInAt  *time.Time        `json:"checked_in_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// StartTime resolves the reservation's start on its date, in loc.
func (r *Reservation) StartTime(loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation("2006-01-02", r.Date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid reservation date %q: %w", r.Date, err)
	}
	return day.Add(time.Duration(r.StartMinute) * time.Minute), nil
}

// Interval is a half-open time interval on a resource's daily timeline.
type Interval struct {
	StartMinute int `json:"start_minute"`
	EndMinute   int `json:"end_minute"`
}

// Overlaps reports whether two half-open intervals intersect.
func (i Interval) Overlaps(other Interval) bool {
	return i.StartMinute < other.EndMinute && other.StartMinute < i.EndMinute
}

// FormatMinute renders minutes since midnight as "HH:MM" for conflict
// descriptors.
func FormatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
