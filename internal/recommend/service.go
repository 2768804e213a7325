package recommend

import (
	"context"
	"time"

	attendanceModels "attendly/internal/attendance/models"
	attendanceRepo "attendly/internal/attendance/repository"
	bookingModels "attendly/internal/booking/models"
	bookingRepo "attendly/internal/booking/repository"
	"attendly/internal/common/clock"
	"attendly/internal/common/retry"
)

// trailingWindowDays is the utilization observation window.
const trailingWindowDays = 14

// slotsPerDay approximates the bookable slots on a room's daily timeline
// (hour-granularity working day).
const slotsPerDay = 10

// Service assembles scorer inputs from stored history.
type Service struct {
	reservations bookingRepo.Store
	resources    bookingRepo.ResourceStore
	attendance   attendanceRepo.Store
	clock        clock.Clock
	policy       retry.Policy
}

// NewService creates the recommendation service.
func NewService(
	reservations bookingRepo.Store,
	resources bookingRepo.ResourceStore,
	attendance attendanceRepo.Store,
	clk clock.Clock,
) *Service {
	return &Service{
		reservations: reservations,
		resources:    resources,
		attendance:   attendance,
		clock:        clk,
		policy:       retry.DefaultPolicy(),
	}
}

// RankRooms scores every room against the request for the given user.
func (s *Service) RankRooms(ctx context.Context, userID string, req Request) ([]Scored, error) {
	var rooms []bookingModels.Room
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		rooms, err = s.resources.ListRooms(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	var history []bookingModels.Reservation
	err = s.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		history, err = s.reservations.ListByUser(ctx, userID, 200)
		return err
	})
	if err != nil {
		return nil, err
	}

	dates := s.trailingDates()
	candidates := make([]Candidate, 0, len(rooms))
	for _, room := range rooms {
		var used int64
		err := s.policy.Do(ctx, func(ctx context.Context) error {
			var err error
			used, err = s.reservations.CountConfirmedInWindow(ctx, room.ID, dates)
			return err
		})
		if err != nil {
			return nil, err
		}
		utilization := float64(used) / float64(len(dates)*slotsPerDay)
		candidates = append(candidates, Candidate{Room: room, Utilization: utilization})
	}

	return Rank(req, history, candidates), nil
}

// PredictAttendance guesses a user's likely status for each weekday from
// their attendance history this month and last. Advisory; shares the same
// stored inputs as room ranking.
func (s *Service) PredictAttendance(ctx context.Context, userID string) (map[string]string, error) {
	now := s.clock.Now()
	months := []string{
		now.Format("2006-01"),
		now.AddDate(0, -1, 0).Format("2006-01"),
	}

	// weekday -> status -> count
	tallies := make(map[time.Weekday]map[attendanceModels.WorkStatus]int)
	for _, month := range months {
		var records []attendanceModels.AttendanceRecord
		err := s.policy.Do(ctx, func(ctx context.Context) error {
			var err error
			records, err = s.attendance.ListByUserMonth(ctx, userID, month)
			return err
		})
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			day, err := time.Parse("2006-01-02", r.Date)
			if err != nil {
				continue
			}
			if tallies[day.Weekday()] == nil {
				tallies[day.Weekday()] = make(map[attendanceModels.WorkStatus]int)
			}
			tallies[day.Weekday()][r.Status]++
		}
	}

	prediction := make(map[string]string, len(tallies))
	for weekday, statuses := range tallies {
		best := attendanceModels.StatusOffice
		bestCount := -1
		for status, count := range statuses {
			if count > bestCount || (count == bestCount && status < best) {
				best = status
				bestCount = count
			}
		}
		prediction[weekday.String()] = string(best)
	}
	return prediction, nil
}

func (s *Service) trailingDates() []string {
	now := s.clock.Now()
	dates := make([]string, 0, trailingWindowDays)
	for i := 0; i < trailingWindowDays; i++ {
		dates = append(dates, now.AddDate(0, 0, -i).Format("2006-01-02"))
	}
	return dates
}
