package verify

import (
	"context"

	"go.uber.org/zap"

	"attendly/internal/common/clock"
	officemodels "attendly/internal/office/models"
	"attendly/pkg/logger"
)

// TokenUsageRecorder records best-effort usage audit data for a token. It is
// an audit signal, not a correctness gate: failures are logged and never fail
// the verification.
type TokenUsageRecorder interface {
	// RecordUse increments the token's usage counter and stamps the last-used
	// time. When deactivate is true the token is also marked inactive
	// (single-use tokens).
	RecordUse(ctx context.Context, tokenID string, deactivate bool) error
}

// TokenResult is the outcome of a token check.
type TokenResult struct {
	Passed  bool   `json:"passed"`
	TokenID string `json:"token_id,omitempty"`
}

// TokenVerifier validates scanned codes against an office's token registry.
type TokenVerifier struct {
	clock clock.Clock
	usage TokenUsageRecorder
}

// NewTokenVerifier creates a token verifier. usage may be nil, in which case
// no audit data is recorded.
func NewTokenVerifier(clk clock.Clock, usage TokenUsageRecorder) *TokenVerifier {
	return &TokenVerifier{clock: clk, usage: usage}
}

// Verify checks that code exists in the office registry, is active and not
// expired. On a pass it records usage as a side effect.
func (v *TokenVerifier) Verify(ctx context.Context, code string, office *officemodels.OfficeLocation) TokenResult {
	if code == "" {
		return TokenResult{Passed: false}
	}

	now := v.clock.Now()
	for i := range office.Tokens {
		token := &office.Tokens[i]
		if token.Code != code {
			continue
		}
		if !token.Active || now.After(token.ExpiresAt) {
			return TokenResult{Passed: false}
		}

		if v.usage != nil {
			if err := v.usage.RecordUse(ctx, token.ID, token.SingleUse); err != nil {
				logger.Get().Warn("token usage recording failed",
					zap.String("token_id", token.ID),
					zap.Error(err))
			}
		}
		return TokenResult{Passed: true, TokenID: token.ID}
	}

	return TokenResult{Passed: false}
}
