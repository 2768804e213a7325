package verify

import (
	officemodels "attendly/internal/office/models"
)

// NetworkResult is the outcome of a WiFi network check. MatchedSSID names the
// authorized entry that matched, for audit.
type NetworkResult struct {
	Passed      bool   `json:"passed"`
	MatchedSSID string `json:"matched_ssid,omitempty"`
}

// NetworkVerifier matches observed network identifiers against an office's
// authorized list.
type NetworkVerifier struct{}

// NewNetworkVerifier creates a network verifier.
func NewNetworkVerifier() *NetworkVerifier {
	return &NetworkVerifier{}
}

// Verify performs a case-insensitive exact match of ssid against the office's
// authorized networks.
func (v *NetworkVerifier) Verify(ssid string, office *officemodels.OfficeLocation) NetworkResult {
	if ssid == "" {
		return NetworkResult{Passed: false}
	}
	if entry, ok := office.HasNetwork(ssid); ok {
		return NetworkResult{Passed: true, MatchedSSID: entry.SSID}
	}
	return NetworkResult{Passed: false}
}
