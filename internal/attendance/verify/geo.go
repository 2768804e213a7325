// Package verify implements the check-in verification engine: geofence,
// network and token verifiers plus the arbiter that combines them into a
// single admitted/denied decision.
package verify

import (
	"math"

	"attendly/internal/common/errors"
	officemodels "attendly/internal/office/models"
)

// earthRadiusMeters is the mean Earth radius used by the haversine formula.
const earthRadiusMeters = 6371000.0

// GeoResult is the outcome of a geofence check.
type GeoResult struct {
	Passed         bool    `json:"passed"`
	DistanceMeters float64 `json:"distance_meters"`
	UsedRadius     float64 `json:"used_radius"`
}

// GeoVerifier decides geofence pass/fail for claimed device positions.
type GeoVerifier struct {
	// accuracyCeiling caps the reported accuracy added to the geofence
	// radius. A claimed accuracy above the ceiling would otherwise let the
	// client expand the effective radius arbitrarily.
	accuracyCeiling float64
}

// NewGeoVerifier creates a geofence verifier with the given accuracy ceiling
// in meters.
func NewGeoVerifier(accuracyCeilingMeters float64) *GeoVerifier {
	return &GeoVerifier{accuracyCeiling: accuracyCeilingMeters}
}

// Verify computes the great-circle distance between the claimed position and
// the office and checks it against the geofence radius widened by the capped
// accuracy margin. Malformed coordinates are a validation error, not a
// distance failure.
func (v *GeoVerifier) Verify(lat, lon, accuracyMeters float64, office *officemodels.OfficeLocation) (GeoResult, error) {
	if math.Abs(lat) > 90 || math.Abs(lon) > 180 {
		return GeoResult{}, errors.Validation("malformed coordinates", "latitude must be within [-90,90] and longitude within [-180,180]")
	}
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return GeoResult{}, errors.Validation("malformed coordinates", "latitude and longitude must be numbers")
	}

	margin := accuracyMeters
	if margin < 0 {
		margin = 0
	}
	if margin > v.accuracyCeiling {
		margin = v.accuracyCeiling
	}

	distance := Haversine(lat, lon, office.Latitude, office.Longitude)
	usedRadius := office.RadiusMeters + margin

	return GeoResult{
		Passed:         distance <= usedRadius,
		DistanceMeters: distance,
		UsedRadius:     usedRadius,
	}, nil
}

// Haversine returns the great-circle distance in meters between two points
// given in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}
