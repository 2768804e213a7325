// Package conflict decides whether a proposed reservation collides with the
// confirmed reservations already on a resource's timeline. The decision is
// pure; callers are responsible for running it atomically with the insert.
package conflict

import (
	"attendly/internal/booking/models"
)

// Descriptor names the reservations a proposal collides with, so the caller
// can surface them and suggest alternatives.
type Descriptor struct {
	Colliding []models.Reservation `json:"colliding"`
}

// IDs returns the identifiers of the colliding reservations.
func (d *Descriptor) IDs() []string {
	ids := make([]string, 0, len(d.Colliding))
	for _, r := range d.Colliding {
		ids = append(ids, r.ID)
	}
	return ids
}

// CheckRoom rejects a proposed room interval that overlaps any confirmed
// reservation on the same resource and date. Intervals are half-open, so
// back-to-back bookings (10:00-11:00, 11:00-12:00) do not collide. Returns
// nil when the proposal is acceptable.
func CheckRoom(existing []models.Reservation, proposed models.Interval) *Descriptor {
	var colliding []models.Reservation
	for _, r := range existing {
		if r.Status != models.StatusConfirmed && r.Status != models.StatusPendingRelease {
			continue
		}
		if proposed.Overlaps(models.Interval{StartMinute: r.StartMinute, EndMinute: r.EndMinute}) {
			colliding = append(colliding, r)
		}
	}
	if len(colliding) == 0 {
		return nil
	}
	return &Descriptor{Colliding: colliding}
}

// CheckParking rejects a full-day parking claim when the user already holds a
// confirmed reservation for that date (on any spot) or the target spot is
// already taken. userHeld are the user's confirmed parking reservations for
// the date; spotHeld are the target spot's.
func CheckParking(userHeld, spotHeld []models.Reservation) *Descriptor {
	var colliding []models.Reservation
	for _, r := range userHeld {
		if r.Status == models.StatusConfirmed || r.Status == models.StatusPendingRelease {
			colliding = append(colliding, r)
		}
	}
	for _, r := range spotHeld {
		if r.Status == models.StatusConfirmed || r.Status == models.StatusPendingRelease {
			colliding = append(colliding, r)
		}
	}
	if len(colliding) == 0 {
		return nil
	}
	return &Descriptor{Colliding: dedupe(colliding)}
}

func dedupe(rs []models.Reservation) []models.Reservation {
	seen := make(map[string]bool, len(rs))
	out := rs[:0]
	for _, r := range rs {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out = append(out, r)
	}
	return out
}
