package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	officemodels "attendly/internal/office/models"
)

func officeWithNetworks(ssids ...string) *officemodels.OfficeLocation {
	o := office(37.7749, -122.4194, 100)
	for _, s := range ssids {
		o.Networks = append(o.Networks, officemodels.OfficeNetwork{SSID: s})
	}
	return o
}

func TestNetworkVerify_ExactMatch(t *testing.T) {
	v := NewNetworkVerifier()
	o := officeWithNetworks("Corp-WiFi", "Corp-Guest")

	result := v.Verify("Corp-WiFi", o)

	assert.True(t, result.Passed)
	assert.Equal(t, "Corp-WiFi", result.MatchedSSID)
}

func TestNetworkVerify_CaseInsensitive(t *testing.T) {
	v := NewNetworkVerifier()
	o := officeWithNetworks("Corp-WiFi")

	result := v.Verify("corp-wifi", o)

	assert.True(t, result.Passed)
	// The matched entry reports the authorized spelling for audit.
	assert.Equal(t, "Corp-WiFi", result.MatchedSSID)
}

// Prefix or substring names must not match: a rogue access point named
// "Corp-WiFi-5G" is not the authorized network.
func TestNetworkVerify_NoPartialMatch(t *testing.T) {
	v := NewNetworkVerifier()
	o := officeWithNetworks("Corp-WiFi")

	assert.False(t, v.Verify("Corp-WiFi-5G", o).Passed)
	assert.False(t, v.Verify("Corp", o).Passed)
}

func TestNetworkVerify_Unknown(t *testing.T) {
	v := NewNetworkVerifier()
	o := officeWithNetworks("Corp-WiFi")

	result := v.Verify("CoffeeShop", o)

	assert.False(t, result.Passed)
	assert.Empty(t, result.MatchedSSID)
}

func TestNetworkVerify_EmptySSID(t *testing.T) {
	v := NewNetworkVerifier()
	o := officeWithNetworks("Corp-WiFi")

	assert.False(t, v.Verify("", o).Passed)
}
