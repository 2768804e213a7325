package verify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"attendly/internal/common/clock"
	officemodels "attendly/internal/office/models"
)

type usageRecorderFake struct {
	calls       []string
	deactivated []string
	err         error
}

func (f *usageRecorderFake) RecordUse(_ context.Context, tokenID string, deactivate bool) error {
	f.calls = append(f.calls, tokenID)
	if deactivate {
		f.deactivated = append(f.deactivated, tokenID)
	}
	return f.err
}

func officeWithToken(token officemodels.CheckInToken) *officemodels.OfficeLocation {
	o := office(37.7749, -122.4194, 100)
	o.Tokens = append(o.Tokens, token)
	return o
}

func TestTokenVerify_ValidToken(t *testing.T) {
	now := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	usage := &usageRecorderFake{}
	v := NewTokenVerifier(clock.NewFake(now), usage)
	o := officeWithToken(officemodels.CheckInToken{
		ID: "tok-1", Code: "LOBBY-42", Active: true,
		ExpiresAt: now.Add(time.Hour),
	})

	result := v.Verify(context.Background(), "LOBBY-42", o)

	assert.True(t, result.Passed)
	assert.Equal(t, "tok-1", result.TokenID)
	assert.Equal(t, []string{"tok-1"}, usage.calls)
	assert.Empty(t, usage.deactivated)
}

func TestTokenVerify_ExpiredToken(t *testing.T) {
	now := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	v := NewTokenVerifier(clock.NewFake(now), nil)
	o := officeWithToken(officemodels.CheckInToken{
		ID: "tok-1", Code: "LOBBY-42", Active: true,
		ExpiresAt: now.Add(-time.Minute),
	})

	assert.False(t, v.Verify(context.Background(), "LOBBY-42", o).Passed)
}

func TestTokenVerify_ExpiryBoundaryInclusive(t *testing.T) {
	now := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	v := NewTokenVerifier(clock.NewFake(now), nil)
	// now == expiry is still valid.
	o := officeWithToken(officemodels.CheckInToken{
		ID: "tok-1", Code: "LOBBY-42", Active: true, ExpiresAt: now,
	})

	assert.True(t, v.Verify(context.Background(), "LOBBY-42", o).Passed)
}

func TestTokenVerify_InactiveToken(t *testing.T) {
	now := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	v := NewTokenVerifier(clock.NewFake(now), nil)
	o := officeWithToken(officemodels.CheckInToken{
		ID: "tok-1", Code: "LOBBY-42", Active: false,
		ExpiresAt: now.Add(time.Hour),
	})

	assert.False(t, v.Verify(context.Background(), "LOBBY-42", o).Passed)
}

func TestTokenVerify_UnknownCode(t *testing.T) {
	now := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	v := NewTokenVerifier(clock.NewFake(now), nil)
	o := officeWithToken(officemodels.CheckInToken{
		ID: "tok-1", Code: "LOBBY-42", Active: true,
		ExpiresAt: now.Add(time.Hour),
	})

	assert.False(t, v.Verify(context.Background(), "GARAGE-7", o).Passed)
}

func TestTokenVerify_SingleUseDeactivates(t *testing.T) {
	now := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	usage := &usageRecorderFake{}
	v := NewTokenVerifier(clock.NewFake(now), usage)
	o := officeWithToken(officemodels.CheckInToken{
		ID: "tok-1", Code: "ONE-SHOT", Active: true, SingleUse: true,
		ExpiresAt: now.Add(time.Hour),
	})

	result := v.Verify(context.Background(), "ONE-SHOT", o)

	assert.True(t, result.Passed)
	assert.Equal(t, []string{"tok-1"}, usage.deactivated)
}

// Reusable tokens accept concurrent scans; usage recording is audit only.
func TestTokenVerify_ReusableWithinWindow(t *testing.T) {
	now := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	usage := &usageRecorderFake{}
	v := NewTokenVerifier(clock.NewFake(now), usage)
	o := officeWithToken(officemodels.CheckInToken{
		ID: "tok-1", Code: "LOBBY-42", Active: true,
		ExpiresAt: now.Add(time.Hour),
	})

	assert.True(t, v.Verify(context.Background(), "LOBBY-42", o).Passed)
	assert.True(t, v.Verify(context.Background(), "LOBBY-42", o).Passed)
	assert.Len(t, usage.calls, 2)
}

// A failing usage recorder must not fail the verification.
func TestTokenVerify_UsageFailureDoesNotGate(t *testing.T) {
	now := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	usage := &usageRecorderFake{err: assert.AnError}
	v := NewTokenVerifier(clock.NewFake(now), usage)
	o := officeWithToken(officemodels.CheckInToken{
		ID: "tok-1", Code: "LOBBY-42", Active: true,
		ExpiresAt: now.Add(time.Hour),
	})

	assert.True(t, v.Verify(context.Background(), "LOBBY-42", o).Passed)
}
