package models

import (
	"time"
)

// WorkStatus is the requested status of a check-in.
type WorkStatus string

const (
	StatusOffice WorkStatus = "office"
	StatusWFH    WorkStatus = "wfh"
	StatusLeave  WorkStatus = "leave"
)

// VerificationMethod identifies how a check-in was verified.
type VerificationMethod string

const (
	MethodGPS    VerificationMethod = "gps"
	MethodWiFi   VerificationMethod = "wifi"
	MethodQR     VerificationMethod = "qr"
	MethodManual VerificationMethod = "manual"
	// MethodSelf marks self-declared statuses (wfh, leave) that carry no
	// office proximity proof.
	MethodSelf VerificationMethod = "self"
)

// WorkMode is a user's configured working arrangement.
type WorkMode string

const (
	ModeInOffice WorkMode = "in-office"
	ModeHybrid   WorkMode = "hybrid"
	ModeRemote   WorkMode = "remote"
)

// AttendanceRecord is the persisted outcome of an admitted check-in. At most
// one record exists per user per calendar date; the verification decision is
// never changed after creation, only the checkout timestamp is added.
type AttendanceRecord struct {
	ID         string             `gorm:"primaryKey" json:"id"`
	UserID     string             `gorm:"not null;uniqueIndex:idx_user_date" json:"user_id"`
	Date       string             `gorm:"not null;uniqueIndex:idx_user_date" json:"date"` // "2006-01-02"
	Status     WorkStatus         `gorm:"not null" json:"status"`
	Method     VerificationMethod `gorm:"not null" json:"method"`
	Confidence float64            `gorm:"not null" json:"confidence"`
	OfficeID   string             `json:"office_id,omitempty"`
	CheckInAt  time.Time          `gorm:"not null" json:"check_in_at"`
	CheckOutAt *time.Time         `json:"check_out_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// UserWorkProfile is a user's work-mode configuration consumed by the WFH
// eligibility rules.
type UserWorkProfile struct {
	UserID        string    `gorm:"primaryKey" json:"user_id"`
	WorkMode      WorkMode  `gorm:"not null;default:hybrid" json:"work_mode"`
	WFHEnabled    bool      `gorm:"not null;default:false" json:"wfh_enabled"`
	WFHMonthlyMax int       `gorm:"not null;default:0" json:"wfh_monthly_max"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// GPSPayload is a claimed device position.
type GPSPayload struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AccuracyMeters float64 `json:"accuracy_meters"`
}

// WiFiPayload is an observed network identifier.
type WiFiPayload struct {
	SSID string `json:"ssid" binding:"required"`
}

// QRPayload is a scanned token code.
type QRPayload struct {
	Code string `json:"code" binding:"required"`
}

// ManualPayload is a manual override supplied by an authorized party.
type ManualPayload struct {
	AuthorizerID  string `json:"authorizer_id" binding:"required"`
	Justification string `json:"justification" binding:"required"`
}

// CheckInAttempt is an ephemeral check-in request. Exactly one payload must be
// set; it exists only for the duration of arbitration and its outcome is
// persisted as an AttendanceRecord.
type CheckInAttempt struct {
	UserID   string         `json:"user_id"`
	OfficeID string         `json:"office_id"`
	Status   WorkStatus     `json:"status" binding:"required,oneof=office wfh leave"`
	At       time.Time      `json:"at"`
	GPS      *GPSPayload    `json:"gps,omitempty"`
	WiFi     *WiFiPayload   `json:"wifi,omitempty"`
	QR       *QRPayload     `json:"qr,omitempty"`
	Manual   *ManualPayload `json:"manual,omitempty"`
}

// PayloadCount returns how many verification payloads are set.
func (a *CheckInAttempt) PayloadCount() int {
	count := 0
	if a.GPS != nil {
		count++
	}
	if a.WiFi != nil {
		count++
	}
	if a.QR != nil {
		count++
	}
	if a.Manual != nil {
		count++
	}
	return count
}

// MonthKey returns the "2006-01" month bucket of a calendar date string.
func MonthKey(date string) string {
	if len(date) >= 7 {
		return date[:7]
	}
	return date
}
