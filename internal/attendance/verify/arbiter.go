package verify

import (
	"context"
	"fmt"

	"attendly/internal/attendance/models"
	"attendly/internal/common/errors"
	officemodels "attendly/internal/office/models"
)

// Decision is the arbiter's verdict on a check-in attempt. Confidence is 1.0
// for a verifier pass, the configured override value for manual overrides.
type Decision struct {
	Method     models.VerificationMethod `json:"method"`
	Confidence float64                   `json:"confidence"`
	Geo        *GeoResult                `json:"geo,omitempty"`
	Network    *NetworkResult            `json:"network,omitempty"`
	Token      *TokenResult              `json:"token,omitempty"`
}

// Arbiter combines the sub-verifiers into a single admitted/denied decision.
// Exactly one verifier runs per attempt, selected by the attempt's payload;
// a manual override bypasses all three but requires an authorizer identity
// and a justification.
type Arbiter struct {
	geo                *GeoVerifier
	network            *NetworkVerifier
	token              *TokenVerifier
	overrideConfidence float64
}

// NewArbiter creates a verification arbiter.
func NewArbiter(geo *GeoVerifier, network *NetworkVerifier, token *TokenVerifier, overrideConfidence float64) *Arbiter {
	return &Arbiter{
		geo:                geo,
		network:            network,
		token:              token,
		overrideConfidence: overrideConfidence,
	}
}

// Decide arbitrates a check-in attempt against the target office. A denial is
// returned as a reason-coded error; nothing is persisted on failure.
func (a *Arbiter) Decide(ctx context.Context, attempt *models.CheckInAttempt, office *officemodels.OfficeLocation) (*Decision, error) {
	switch attempt.PayloadCount() {
	case 0:
		return nil, errors.Validation("missing verification payload", "one of gps, wifi, qr or manual is required")
	case 1:
	default:
		return nil, errors.Validation("ambiguous verification payload", "exactly one of gps, wifi, qr or manual is allowed")
	}

	switch {
	case attempt.GPS != nil:
		result, err := a.geo.Verify(attempt.GPS.Latitude, attempt.GPS.Longitude, attempt.GPS.AccuracyMeters, office)
		if err != nil {
			return nil, err
		}
		if !result.Passed {
			return nil, errors.Denied(errors.ReasonOutOfRange,
				fmt.Sprintf("position is %.0fm from %s, allowed radius %.0fm", result.DistanceMeters, office.Name, result.UsedRadius))
		}
		return &Decision{Method: models.MethodGPS, Confidence: 1.0, Geo: &result}, nil

	case attempt.WiFi != nil:
		result := a.network.Verify(attempt.WiFi.SSID, office)
		if !result.Passed {
			return nil, errors.Denied(errors.ReasonNetworkMismatch,
				fmt.Sprintf("network %q is not authorized for %s", attempt.WiFi.SSID, office.Name))
		}
		return &Decision{Method: models.MethodWiFi, Confidence: 1.0, Network: &result}, nil

	case attempt.QR != nil:
		result := a.token.Verify(ctx, attempt.QR.Code, office)
		if !result.Passed {
			return nil, errors.Denied(errors.ReasonTokenInvalid, "token is unknown, inactive or expired")
		}
		return &Decision{Method: models.MethodQR, Confidence: 1.0, Token: &result}, nil

	default:
		if attempt.Manual.AuthorizerID == "" || attempt.Manual.Justification == "" {
			return nil, errors.Validation("incomplete manual override", "authorizer_id and justification are required")
		}
		return &Decision{Method: models.MethodManual, Confidence: a.overrideConfidence}, nil
	}
}
