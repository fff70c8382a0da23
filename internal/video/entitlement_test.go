package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidai-app/vidai-golang/internal/models"
)

func freePlan() *models.SubscriptionPlan {
	return &models.SubscriptionPlan{
		Name:            "Free",
		DailyVideoLimit: 2,
		DurationLimit:   60,
		Resolution:      "720p",
		HasWatermark:    true,
		CustomAiModels:  false,
	}
}

func businessPlan() *models.SubscriptionPlan {
	return &models.SubscriptionPlan{
		Name:            "Business",
		DailyVideoLimit: 50,
		DurationLimit:   300,
		Resolution:      "4K",
		CustomAiModels:  true,
	}
}

func TestCheckEntitlement_Allows(t *testing.T) {
	err := CheckEntitlement(freePlan(), 0, EntitlementRequest{Duration: 60, Resolution: "720p"})
	assert.NoError(t, err)

	err = CheckEntitlement(businessPlan(), 49, EntitlementRequest{Duration: 300, Resolution: "4K", CustomAiModels: true})
	assert.NoError(t, err)
}

func TestCheckEntitlement_DailyLimit(t *testing.T) {
	err := CheckEntitlement(freePlan(), 2, EntitlementRequest{Duration: 30, Resolution: "720p"})

	var denial *EntitlementError
	require.ErrorAs(t, err, &denial)
	assert.Equal(t, ReasonDailyLimitExceeded, denial.Reason)
	assert.Equal(t, 2, denial.Limit)
}

func TestCheckEntitlement_DurationRejectedNotClamped(t *testing.T) {
	err := CheckEntitlement(freePlan(), 0, EntitlementRequest{Duration: 61, Resolution: "720p"})

	var denial *EntitlementError
	require.ErrorAs(t, err, &denial)
	assert.Equal(t, ReasonDurationExceeded, denial.Reason)
	assert.Equal(t, 60, denial.Limit)
}

func TestCheckEntitlement_ResolutionCeiling(t *testing.T) {
	for _, requested := range []string{"1080p", "4K"} {
		err := CheckEntitlement(freePlan(), 0, EntitlementRequest{Duration: 30, Resolution: requested})

		var denial *EntitlementError
		require.ErrorAs(t, err, &denial, "resolution %s", requested)
		assert.Equal(t, ReasonResolutionNotAllowed, denial.Reason)
		assert.Equal(t, "720p", denial.Allowed)
	}

	// Lower resolutions than the plan maximum are always fine.
	err := CheckEntitlement(businessPlan(), 0, EntitlementRequest{Duration: 30, Resolution: "720p"})
	assert.NoError(t, err)
}

func TestCheckEntitlement_CustomModelsFeature(t *testing.T) {
	err := CheckEntitlement(freePlan(), 0, EntitlementRequest{Duration: 30, Resolution: "720p", CustomAiModels: true})

	var denial *EntitlementError
	require.ErrorAs(t, err, &denial)
	assert.Equal(t, ReasonFeatureRequiresUpgrade, denial.Reason)
}

func TestCheckEntitlement_FirstFailingRuleWins(t *testing.T) {
	// Everything about this request is wrong; the daily limit is
	// checked first and is the reason reported.
	err := CheckEntitlement(freePlan(), 2, EntitlementRequest{Duration: 500, Resolution: "4K", CustomAiModels: true})

	var denial *EntitlementError
	require.ErrorAs(t, err, &denial)
	assert.Equal(t, ReasonDailyLimitExceeded, denial.Reason)
}

func TestValidResolution(t *testing.T) {
	assert.True(t, ValidResolution("720p"))
	assert.True(t, ValidResolution("1080p"))
	assert.True(t, ValidResolution("4K"))
	assert.False(t, ValidResolution("8K"))
	assert.False(t, ValidResolution(""))
}

func TestEntitlementError_Messages(t *testing.T) {
	cases := []struct {
		err  *EntitlementError
		want string
	}{
		{&EntitlementError{Reason: ReasonDailyLimitExceeded, Limit: 2}, "daily video limit reached (2 per day)"},
		{&EntitlementError{Reason: ReasonDurationExceeded, Limit: 60}, "requested duration exceeds the plan limit of 60 seconds"},
		{&EntitlementError{Reason: ReasonResolutionNotAllowed, Allowed: "720p"}, "requested resolution is not available on this plan (maximum 720p)"},
		{&EntitlementError{Reason: ReasonFeatureRequiresUpgrade}, "this feature requires a plan with custom AI models"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.err.Error())
	}
}
