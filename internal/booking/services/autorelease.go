package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"attendly/internal/booking/models"
	"attendly/internal/booking/repository"
	"attendly/internal/common/clock"
	"attendly/internal/common/errors"
	"attendly/internal/common/retry"
	"attendly/internal/notify"
	officerepo "attendly/internal/office/repository"
	"attendly/pkg/logger"
	"attendly/pkg/metrics"
)

// AutoReleaseConfig tunes the no-show sweep thresholds.
type AutoReleaseConfig struct {
	// SweepInterval is how often the scan runs.
	SweepInterval time.Duration
	// GracePeriod past the start time before a reservation becomes a
	// pending-release candidate.
	GracePeriod time.Duration
	// ReleaseThreshold past the start time before an unconfirmed reservation
	// is released and its resource freed.
	ReleaseThreshold time.Duration
	// DefaultOfficeID locates the operating-hours window parking release is
	// measured from.
	DefaultOfficeID string
}

// DefaultAutoReleaseConfig returns the standard thresholds.
func DefaultAutoReleaseConfig() AutoReleaseConfig {
	return AutoReleaseConfig{
		SweepInterval:    5 * time.Minute,
		GracePeriod:      15 * time.Minute,
		ReleaseThreshold: 30 * time.Minute,
	}
}

// Candidate is a reservation the sweep would act on, and how.
type Candidate struct {
	Reservation models.Reservation       `json:"reservation"`
	From        models.ReservationStatus `json:"from"`
	To          models.ReservationStatus `json:"to"`
	OverdueBy   time.Duration            `json:"overdue_by"`
}

// AutoReleaseScheduler scans active reservations for no-shows and transitions
// them through pending-release to released. The scan is idempotent: status
// transitions are conditional, so re-running it or racing an owner's
// cancellation never double-releases.
type AutoReleaseScheduler struct {
	reservations repository.Store
	offices      officerepo.LocationStore
	notifier     notify.Notifier
	clock        clock.Clock
	config       AutoReleaseConfig
	policy       retry.Policy

	done chan struct{}
}

// NewAutoReleaseScheduler creates the scheduler.
func NewAutoReleaseScheduler(
	reservations repository.Store,
	offices officerepo.LocationStore,
	notifier notify.Notifier,
	clk clock.Clock,
	config AutoReleaseConfig,
) *AutoReleaseScheduler {
	return &AutoReleaseScheduler{
		reservations: reservations,
		offices:      offices,
		notifier:     notifier,
		clock:        clk,
		config:       config,
		policy:       retry.DefaultPolicy(),
		done:         make(chan struct{}),
	}
}

// Start launches the periodic sweep until the context is cancelled or Stop is
// called.
func (s *AutoReleaseScheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.config.SweepInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-s.done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.Sweep(ctx); err != nil {
					logger.Get().Error("auto-release sweep failed", zap.Error(err))
				}
			}
		}
	}()
}

// Stop halts the periodic sweep.
func (s *AutoReleaseScheduler) Stop() {
	close(s.done)
}

// Sweep scans today's active reservations and applies the due transitions.
// Per-item failures are logged and skipped so one bad row cannot stall the
// rest of the scan. Returns the number of reservations released.
func (s *AutoReleaseScheduler) Sweep(ctx context.Context) (int, error) {
	started := s.clock.Now()
	defer func() {
		metrics.SweepDuration.Set(time.Since(started).Seconds())
	}()

	candidates, err := s.Candidates(ctx)
	if err != nil {
		return 0, err
	}

	released := 0
	for _, c := range candidates {
		ok, err := s.transition(ctx, c)
		if err != nil {
			logger.Get().Warn("auto-release transition failed",
				zap.String("reservation_id", c.Reservation.ID),
				zap.Error(err))
			continue
		}
		if !ok {
			// Lost the race with a cancel or an earlier sweep; nothing to do.
			continue
		}
		if c.To == models.StatusReleased {
			released++
			metrics.ReservationsReleased.WithLabelValues(string(c.Reservation.ResourceType)).Inc()
			s.notifier.Publish(ctx, notify.Event{
				Type:   notify.EventReservationReleased,
				UserID: c.Reservation.UserID,
				At:     s.clock.Now(),
				Payload: map[string]interface{}{
					"reservation_id": c.Reservation.ID,
					"resource_id":    c.Reservation.ResourceID,
					"resource_type":  c.Reservation.ResourceType,
					"overdue_by":     c.OverdueBy.String(),
				},
			})
		}
	}
	return released, nil
}

// Candidates reports what a sweep would do right now without mutating state.
// Operator tooling uses this as a dry run.
func (s *AutoReleaseScheduler) Candidates(ctx context.Context) ([]Candidate, error) {
	now := s.clock.Now()
	date := now.Format("2006-01-02")

	var active []models.Reservation
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		active, err = s.reservations.ListReleaseCandidates(ctx, date)
		return err
	})
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, r := range active {
		start, err := s.measureFrom(ctx, &r, now)
		if err != nil {
			logger.Get().Warn("skipping reservation with unresolvable start",
				zap.String("reservation_id", r.ID),
				zap.Error(err))
			continue
		}
		overdue := now.Sub(start)

		switch {
		case overdue > s.config.ReleaseThreshold:
			from := r.Status // confirmed or pending_release
			candidates = append(candidates, Candidate{
				Reservation: r, From: from, To: models.StatusReleased, OverdueBy: overdue,
			})
		case overdue > s.config.GracePeriod && r.Status == models.StatusConfirmed:
			candidates = append(candidates, Candidate{
				Reservation: r, From: models.StatusConfirmed, To: models.StatusPendingRelease, OverdueBy: overdue,
			})
		}
	}
	return candidates, nil
}

// ReleaseNow immediately releases a specific reservation, the manual operator
// trigger. Returns false when the reservation was not in a releasable state.
func (s *AutoReleaseScheduler) ReleaseNow(ctx context.Context, reservationID string) (bool, error) {
	for _, from := range []models.ReservationStatus{models.StatusConfirmed, models.StatusPendingRelease} {
		var ok bool
		err := s.policy.Do(ctx, func(ctx context.Context) error {
			var err error
			ok, err = s.reservations.TransitionStatus(ctx, reservationID, from, models.StatusReleased)
			return err
		})
		if err != nil {
			return false, err
		}
		if ok {
			metrics.ReservationsReleased.WithLabelValues("manual").Inc()
			return true, nil
		}
	}
	return false, nil
}

func (s *AutoReleaseScheduler) transition(ctx context.Context, c Candidate) (bool, error) {
	var ok bool
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		ok, err = s.reservations.TransitionStatus(ctx, c.Reservation.ID, c.From, c.To)
		return err
	})
	return ok, err
}

// measureFrom resolves the instant no-show thresholds are measured from:
// the start time for rooms, the office opening hour for parking.
func (s *AutoReleaseScheduler) measureFrom(ctx context.Context, r *models.Reservation, now time.Time) (time.Time, error) {
	if r.ResourceType == models.ResourceRoom {
		return r.StartTime(now.Location())
	}

	day, err := time.ParseInLocation("2006-01-02", r.Date, now.Location())
	if err != nil {
		return time.Time{}, err
	}
	if s.config.DefaultOfficeID != "" {
		var opening time.Time
		var found bool
		err := s.policy.Do(ctx, func(ctx context.Context) error {
			office, err := s.offices.Get(ctx, s.config.DefaultOfficeID)
			if err != nil {
				return err
			}
			opening, found = office.OpeningTime(day)
			return nil
		})
		if err == nil && found {
			return opening, nil
		}
		if err != nil && !isNotFound(err) {
			return time.Time{}, err
		}
	}
	// No operating-hours window configured; fall back to 09:00.
	return day.Add(9 * time.Hour), nil
}

func isNotFound(err error) bool {
	appErr, ok := err.(*errors.AppError)
	return ok && appErr.Code == errors.CodeNotFound
}
