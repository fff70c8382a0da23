package models

// DailyUsage defines the model for the 'daily_usage' table: how many
// videos a user has created on a given calendar day. Rows are created
// lazily on the first video of the day; the date key gives us the
// implicit daily reset.
type DailyUsage struct {
	ID            int64  `json:"id" db:"id"`
	UserID        int64  `json:"userId" db:"user_id"`
	Date          string `json:"date" db:"usage_date"` // YYYY-MM-DD
	VideosCreated int    `json:"videosCreated" db:"videos_created"`
}
