// Package recommend ranks candidate rooms for a requested meeting using a
// user's booking history. Advisory only: scores never gate a booking and
// nothing here persists state.
package recommend

import (
	"sort"
	"strings"

	"attendly/internal/booking/models"
)

// Weights of the scoring terms. They sum to 1 so scores stay within [0,1].
const (
	weightPastPreference     = 0.40
	weightCapacityEfficiency = 0.30
	weightAvailability       = 0.20
	weightAmenityMatch       = 0.10
)

// Request describes the meeting a room is wanted for.
type Request struct {
	AttendeeCount int      `json:"attendee_count"`
	Amenities     []string `json:"amenities,omitempty"`
}

// Candidate pairs a room with its observed utilization over the trailing
// window, as a fraction of bookable slots already reserved.
type Candidate struct {
	Room        models.Room
	Utilization float64
}

// Scored is a ranked candidate with its component terms retained for
// explainability.
type Scored struct {
	Room               models.Room `json:"room"`
	Score              float64     `json:"score"`
	PastPreference     float64     `json:"past_preference"`
	CapacityEfficiency float64     `json:"capacity_efficiency"`
	Availability       float64     `json:"availability"`
	AmenityMatch       float64     `json:"amenity_match"`
}

// Rank scores each candidate against the request and the user's booking
// history and returns them best first. Ties break by room name ascending for
// determinism.
func Rank(req Request, history []models.Reservation, candidates []Candidate) []Scored {
	counts := bookingCounts(history)

	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		s := Scored{
			Room:               c.Room,
			PastPreference:     pastPreference(counts, c.Room.ID),
			CapacityEfficiency: CapacityEfficiency(req.AttendeeCount, c.Room.Capacity),
			Availability:       clamp01(1 - c.Utilization),
			AmenityMatch:       AmenityMatch(req.Amenities, c.Room.Amenities),
		}
		s.Score = weightPastPreference*s.PastPreference +
			weightCapacityEfficiency*s.CapacityEfficiency +
			weightAvailability*s.Availability +
			weightAmenityMatch*s.AmenityMatch
		scored = append(scored, s)
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Room.Name < scored[j].Room.Name
	})
	return scored
}

// CapacityEfficiency rewards rooms sized close to the request. A room smaller
// than the request is penalized by how far short it falls rather than scored
// on fit.
func CapacityEfficiency(requested, capacity int) float64 {
	if requested <= 0 || capacity <= 0 {
		return 0
	}
	if requested <= capacity {
		return float64(requested) / float64(capacity)
	}
	// Penalty curve for undersized rooms.
	return clamp01(float64(capacity) / float64(requested) * 0.5)
}

// AmenityMatch is the fraction of wanted amenities the room offers. No wanted
// amenities means a full match.
func AmenityMatch(wanted []string, available string) float64 {
	if len(wanted) == 0 {
		return 1
	}
	have := make(map[string]bool)
	for _, a := range strings.Split(available, ",") {
		if a = strings.TrimSpace(strings.ToLower(a)); a != "" {
			have[a] = true
		}
	}
	matched := 0
	for _, w := range wanted {
		if have[strings.TrimSpace(strings.ToLower(w))] {
			matched++
		}
	}
	return float64(matched) / float64(len(wanted))
}

func bookingCounts(history []models.Reservation) map[string]int {
	counts := make(map[string]int)
	for _, r := range history {
		if r.ResourceType != models.ResourceRoom {
			continue
		}
		if r.Status == models.StatusCancelled || r.Status == models.StatusReleased {
			continue
		}
		counts[r.ResourceID]++
	}
	return counts
}

// pastPreference is the share of the user's kept room bookings that chose
// this room.
func pastPreference(counts map[string]int, roomID string) float64 {
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return 0
	}
	return float64(counts[roomID]) / float64(total)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
