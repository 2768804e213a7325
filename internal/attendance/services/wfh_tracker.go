package services

import (
	"context"
	"fmt"

	"attendly/internal/attendance/models"
	"attendly/internal/attendance/repository"
	"attendly/internal/common/errors"
	"attendly/internal/common/retry"
)

// WFHDecision is the outcome of an eligibility evaluation. Used and Max are
// populated whenever quota counting was reached, so the caller can display
// remaining allowance either way.
type WFHDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Used    int    `json:"used_days"`
	Max     int    `json:"monthly_max"`
}

// WFHTracker evaluates work-from-home eligibility against a user's work-mode
// configuration and their approved WFH days in the current month. Usage is
// recomputed from attendance history on every evaluation; there is no
// separate counter to drift.
//
// The same evaluation backs both the advisory check (before the UI offers the
// option) and the authoritative check at commit time. Only the authoritative
// one, run under the check-in service's per-user serialization, enforces the
// rule.
type WFHTracker struct {
	records  repository.Store
	profiles repository.ProfileStore
	policy   retry.Policy
}

// NewWFHTracker creates a tracker.
func NewWFHTracker(records repository.Store, profiles repository.ProfileStore) *WFHTracker {
	return &WFHTracker{
		records:  records,
		profiles: profiles,
		policy:   retry.DefaultPolicy(),
	}
}

// Evaluate applies the eligibility rules in order for a WFH check-in on the
// given date ("2006-01-02"). Rules: in-office work mode denies regardless of
// quota; a disabled WFH flag denies; a used-up monthly quota denies with the
// counts attached.
func (t *WFHTracker) Evaluate(ctx context.Context, userID, date string) (*WFHDecision, error) {
	var profile *models.UserWorkProfile
	err := t.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		profile, err = t.profiles.GetProfile(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if profile.WorkMode == models.ModeInOffice {
		return &WFHDecision{Allowed: false, Reason: errors.ReasonModeRestricted, Max: profile.WFHMonthlyMax}, nil
	}
	if !profile.WFHEnabled {
		return &WFHDecision{Allowed: false, Reason: errors.ReasonNotEnabled, Max: profile.WFHMonthlyMax}, nil
	}

	var used int64
	err = t.policy.Do(ctx, func(ctx context.Context) error {
		var err error
		used, err = t.records.CountByUserStatusMonth(ctx, userID, models.StatusWFH, models.MonthKey(date))
		return err
	})
	if err != nil {
		return nil, err
	}

	decision := &WFHDecision{Used: int(used), Max: profile.WFHMonthlyMax}
	if used >= int64(profile.WFHMonthlyMax) {
		decision.Reason = errors.ReasonQuotaExceeded
		return decision, nil
	}
	decision.Allowed = true
	return decision, nil
}

// Denial converts a disallowed decision into its reason-coded error.
func (d *WFHDecision) Denial() *errors.AppError {
	switch d.Reason {
	case errors.ReasonModeRestricted:
		return errors.Denied(errors.ReasonModeRestricted, "work mode does not permit working from home")
	case errors.ReasonNotEnabled:
		return errors.Denied(errors.ReasonNotEnabled, "work-from-home is not enabled for this user")
	default:
		appErr := errors.Denied(errors.ReasonQuotaExceeded, "monthly work-from-home quota exhausted")
		appErr.Details = fmt.Sprintf("used %d of %d days this month", d.Used, d.Max)
		return appErr
	}
}
