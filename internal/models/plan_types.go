package models

// SubscriptionPlan defines the model for the 'subscription_plans' table.
// Plans are seeded at bootstrap and are read-only afterwards; many users
// reference the same plan row.
type SubscriptionPlan struct {
	ID              int64  `json:"id" db:"id"`
	Name            string `json:"name" db:"name"`
	PriceMonthly    int    `json:"priceMonthly" db:"price_monthly"`
	DailyVideoLimit int    `json:"dailyVideoLimit" db:"daily_video_limit"`
	DurationLimit   int    `json:"durationLimit" db:"duration_limit"` // in seconds
	Resolution      string `json:"resolution" db:"resolution"`        // maximum allowed: 720p, 1080p or 4K
	HasWatermark    bool   `json:"hasWatermark" db:"has_watermark"`
	CustomAiModels  bool   `json:"customAiModels" db:"custom_ai_models"`
}
