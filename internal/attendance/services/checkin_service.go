package services

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"attendly/internal/attendance/models"
	"attendly/internal/attendance/repository"
	"attendly/internal/attendance/verify"
	"attendly/internal/common/clock"
	"attendly/internal/common/errors"
	"attendly/internal/common/lock"
	"attendly/internal/common/retry"
	"attendly/internal/notify"
	officemodels "attendly/internal/office/models"
	officerepo "attendly/internal/office/repository"
	"attendly/pkg/logger"
	"attendly/pkg/metrics"
)

// CheckInService arbitrates check-in attempts and persists their outcomes.
// Nothing is persisted until the atomic decision point, so an abandoned
// request has no side effects.
type CheckInService struct {
	offices  officerepo.LocationStore
	arbiter  *verify.Arbiter
	tracker  *WFHTracker
	records  repository.Store
	notifier notify.Notifier
	clock    clock.Clock
	policy   retry.Policy
	// locks serializes the quota-count-then-insert sequence per user+month.
	locks *lock.Keyed
	// quotaWarningAt triggers a quota-warning event when remaining WFH days
	// fall to this value or below after an accepted WFH check-in.
	quotaWarningAt int
}

// NewCheckInService creates the check-in service.
func NewCheckInService(
	offices officerepo.LocationStore,
	arbiter *verify.Arbiter,
	tracker *WFHTracker,
	records repository.Store,
	notifier notify.Notifier,
	clk clock.Clock,
	quotaWarningAt int,
) *CheckInService {
	return &CheckInService{
		offices:        offices,
		arbiter:        arbiter,
		tracker:        tracker,
		records:        records,
		notifier:       notifier,
		clock:          clk,
		policy:         retry.DefaultPolicy(),
		locks:          lock.NewKeyed(),
		quotaWarningAt: quotaWarningAt,
	}
}

// CheckIn arbitrates the attempt and, if admitted, persists the attendance
// record. Office check-ins are verified against the office; WFH check-ins run
// the authoritative eligibility check; leave check-ins are recorded as
// declared. On any failure no record is created.
func (s *CheckInService) CheckIn(ctx context.Context, attempt *models.CheckInAttempt) (*models.AttendanceRecord, error) {
	if attempt.UserID == "" {
		return nil, errors.Validation("missing user", "user_id is required")
	}

	now := s.clock.Now()
	at := attempt.At
	if at.IsZero() {
		at = now
	}
	date := at.Format("2006-01-02")

	record := &models.AttendanceRecord{
		ID:         uuid.NewString(),
		UserID:     attempt.UserID,
		Date:       date,
		Status:     attempt.Status,
		Method:     models.MethodSelf,
		Confidence: 1.0,
		CheckInAt:  at,
	}
	var wfhDecision *WFHDecision

	switch attempt.Status {
	case models.StatusOffice:
		if attempt.OfficeID == "" {
			return nil, errors.Validation("missing office", "office_id is required for office check-ins")
		}
		office, err := s.loadOffice(ctx, attempt.OfficeID)
		if err != nil {
			return nil, err
		}
		decision, err := s.arbiter.Decide(ctx, attempt, office)
		if err != nil {
			s.countDenial(err)
			return nil, err
		}
		record.OfficeID = office.ID
		record.Method = decision.Method
		record.Confidence = decision.Confidence

	case models.StatusWFH:
		// Serialize count-then-insert per user and month so two devices
		// cannot both pass the quota check before either commits.
		key := attempt.UserID + "|" + models.MonthKey(date)
		s.locks.Lock(key)
		defer s.locks.Unlock(key)

		decision, err := s.tracker.Evaluate(ctx, attempt.UserID, date)
		if err != nil {
			return nil, err
		}
		if !decision.Allowed {
			denial := decision.Denial()
			s.countDenial(denial)
			return nil, denial
		}
		wfhDecision = decision

	case models.StatusLeave:
		// Recorded as declared; leave approval is an external concern.

	default:
		return nil, errors.Validation("unknown status", "status must be office, wfh or leave")
	}

	err := s.policy.Do(ctx, func(ctx context.Context) error {
		return s.records.Insert(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	if wfhDecision != nil {
		s.maybeWarnQuota(ctx, attempt.UserID, wfhDecision)
	}
	metrics.CheckInsAdmitted.WithLabelValues(string(record.Method)).Inc()
	logger.Get().Info("check-in admitted",
		zap.String("user_id", record.UserID),
		zap.String("date", record.Date),
		zap.String("status", string(record.Status)),
		zap.String("method", string(record.Method)),
		zap.Float64("confidence", record.Confidence))
	return record, nil
}

// CheckOut stamps the checkout time on today's record. The verification
// decision itself is immutable; only the checkout timestamp is added, once.
func (s *CheckInService) CheckOut(ctx context.Context, userID string) (*models.AttendanceRecord, error) {
	now := s.clock.Now()
	date := now.Format("2006-01-02")

	var record *models.AttendanceRecord
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		record, err = s.records.FindByUserAndDate(ctx, userID, date)
		return err
	})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errors.NotFound("attendance record for today")
	}
	if record.CheckOutAt != nil {
		return nil, errors.Conflict("already checked out")
	}

	checkedOut := now
	record.CheckOutAt = &checkedOut
	err = s.policy.Do(ctx, func(ctx context.Context) error {
		return s.records.Update(ctx, record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// WFHEligibility is the advisory check exposed to the UI. Its result must
// never be trusted to enforce the quota; the authoritative check runs inside
// CheckIn.
func (s *CheckInService) WFHEligibility(ctx context.Context, userID string) (*WFHDecision, error) {
	date := s.clock.Now().Format("2006-01-02")
	return s.tracker.Evaluate(ctx, userID, date)
}

// MonthHistory lists a user's attendance records for a "2006-01" month.
func (s *CheckInService) MonthHistory(ctx context.Context, userID, yearMonth string) ([]models.AttendanceRecord, error) {
	var records []models.AttendanceRecord
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		records, err = s.records.ListByUserMonth(ctx, userID, yearMonth)
		return err
	})
	return records, err
}

func (s *CheckInService) loadOffice(ctx context.Context, id string) (*officemodels.OfficeLocation, error) {
	var office *officemodels.OfficeLocation
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		office, err = s.offices.Get(ctx, id)
		return err
	})
	return office, err
}

func (s *CheckInService) countDenial(err error) {
	if appErr, ok := err.(*errors.AppError); ok && appErr.Reason != "" {
		metrics.CheckInsDenied.WithLabelValues(appErr.Reason).Inc()
	}
}

func (s *CheckInService) maybeWarnQuota(ctx context.Context, userID string, decision *WFHDecision) {
	remaining := decision.Max - decision.Used - 1 // the accepted day counts
	if remaining > s.quotaWarningAt {
		return
	}
	s.notifier.Publish(ctx, notify.Event{
		Type:   notify.EventWFHQuotaWarning,
		UserID: userID,
		At:     s.clock.Now(),
		Payload: map[string]interface{}{
			"used":        decision.Used + 1,
			"monthly_max": decision.Max,
			"remaining":   remaining,
		},
	})
}
