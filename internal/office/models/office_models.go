package models

import (
	"strings"
	"time"
)

// OfficeLocation is an office site with a geofence, its authorized WiFi
// networks and its check-in token registry. Administered elsewhere; the
// verification engine treats it as read-only.
type OfficeLocation struct {
	ID           string          `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"not null" json:"name"`
	Latitude     float64         `gorm:"not null" json:"latitude"`
	Longitude    float64         `gorm:"not null" json:"longitude"`
	RadiusMeters float64         `gorm:"not null" json:"radius_meters"`
	OpensAt      string          `json:"opens_at"`  // "HH:MM"
	ClosesAt     string          `json:"closes_at"` // "HH:MM"
	Networks     []OfficeNetwork `gorm:"foreignKey:OfficeID" json:"networks,omitempty"`
	Tokens       []CheckInToken  `gorm:"foreignKey:OfficeID" json:"tokens,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// OfficeNetwork is an authorized WiFi network identifier for an office.
type OfficeNetwork struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	OfficeID string `gorm:"index;not null" json:"office_id"`
	SSID     string `gorm:"not null" json:"ssid"`
}

// CheckInToken is a scannable code in an office's token registry. Tokens are
// reusable within their validity window unless marked single-use.
type CheckInToken struct {
	ID         string     `gorm:"primaryKey" json:"id"`
	OfficeID   string     `gorm:"index;not null" json:"office_id"`
	Code       string     `gorm:"uniqueIndex;not null" json:"code"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	Active     bool       `gorm:"not null;default:true" json:"active"`
	SingleUse  bool       `gorm:"not null;default:false" json:"single_use"`
	UseCount   int        `gorm:"not null;default:0" json:"use_count"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// OpeningTime resolves the office's opening hour on the given date. Returns
// false if no operating-hours window is configured.
func (o *OfficeLocation) OpeningTime(date time.Time) (time.Time, bool) {
	return atClockTime(o.OpensAt, date)
}

// ClosingTime resolves the office's closing hour on the given date.
func (o *OfficeLocation) ClosingTime(date time.Time) (time.Time, bool) {
	return atClockTime(o.ClosesAt, date)
}

// HasNetwork reports whether ssid matches an authorized network, ignoring
// case. Exact match only: partial or prefix matches would let a similarly
// named rogue access point pass.
func (o *OfficeLocation) HasNetwork(ssid string) (OfficeNetwork, bool) {
	for _, n := range o.Networks {
		if strings.EqualFold(n.SSID, ssid) {
			return n, true
		}
	}
	return OfficeNetwork{}, false
}

func atClockTime(hhmm string, date time.Time) (time.Time, bool) {
	parsed, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), true
}
