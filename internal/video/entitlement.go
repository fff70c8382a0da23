package video

import (
	"fmt"

	"github.com/vidai-app/vidai-golang/internal/models"
)

// Denial reasons for entitlement checks. The specific reason and
// limiting value go back to the client so the UI can offer an upgrade
// path.
const (
	ReasonDailyLimitExceeded     = "DailyLimitExceeded"
	ReasonDurationExceeded       = "DurationExceeded"
	ReasonResolutionNotAllowed   = "ResolutionNotAllowed"
	ReasonFeatureRequiresUpgrade = "FeatureRequiresUpgrade"
)

// EntitlementError is a plan-gating denial. It is not a bug and is
// never retried; handlers surface it as a 403.
type EntitlementError struct {
	Reason  string
	Limit   int    // limiting count or seconds, when applicable
	Allowed string // allowed resolution, for ReasonResolutionNotAllowed
}

func (e *EntitlementError) Error() string {
	switch e.Reason {
	case ReasonDailyLimitExceeded:
		return fmt.Sprintf("daily video limit reached (%d per day)", e.Limit)
	case ReasonDurationExceeded:
		return fmt.Sprintf("requested duration exceeds the plan limit of %d seconds", e.Limit)
	case ReasonResolutionNotAllowed:
		return fmt.Sprintf("requested resolution is not available on this plan (maximum %s)", e.Allowed)
	case ReasonFeatureRequiresUpgrade:
		return "this feature requires a plan with custom AI models"
	}
	return "request not permitted by subscription plan"
}

// EntitlementRequest describes what the user is asking for.
type EntitlementRequest struct {
	Duration       int    // seconds
	Resolution     string // 720p, 1080p or 4K
	CustomAiModels bool   // premium enhancement / non-default model requested
}

// resolutionRank orders resolutions so a plan's resolution acts as a
// ceiling: 720p < 1080p < 4K.
func resolutionRank(resolution string) int {
	switch resolution {
	case "720p":
		return 1
	case "1080p":
		return 2
	case "4K":
		return 3
	}
	return 0
}

// ValidResolution reports whether r names a known resolution tier.
func ValidResolution(r string) bool {
	return resolutionRank(r) > 0
}

// CheckEntitlement decides whether a requested video is permitted
// under plan, given the user's usage so far today. Rules apply in
// order and the first failing rule wins. Pure function, no side
// effects.
//
// An over-limit duration is rejected outright, never silently clamped
// - trimming a video behind the user's back surprises them more than
// a clear denial.
func CheckEntitlement(plan *models.SubscriptionPlan, usageToday int, req EntitlementRequest) error {
	if usageToday >= plan.DailyVideoLimit {
		return &EntitlementError{Reason: ReasonDailyLimitExceeded, Limit: plan.DailyVideoLimit}
	}
	if req.Duration > plan.DurationLimit {
		return &EntitlementError{Reason: ReasonDurationExceeded, Limit: plan.DurationLimit}
	}
	if resolutionRank(req.Resolution) > resolutionRank(plan.Resolution) {
		return &EntitlementError{Reason: ReasonResolutionNotAllowed, Allowed: plan.Resolution}
	}
	if req.CustomAiModels && !plan.CustomAiModels {
		return &EntitlementError{Reason: ReasonFeatureRequiresUpgrade}
	}
	return nil
}
