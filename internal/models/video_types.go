package models

import "time"

// Video formats supported by the generator.
const (
	FormatStandard16x9  = "standard_16_9"
	FormatYouTubeShorts = "youtube_shorts"
	FormatTikTok        = "tiktok"
	FormatInstagram     = "instagram"
)

// Video processing statuses. Transitions are one-directional:
// processing -> completed or processing -> failed. Terminal statuses
// never change again.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// ValidFormat reports whether f is one of the supported video formats.
func ValidFormat(f string) bool {
	switch f {
	case FormatStandard16x9, FormatYouTubeShorts, FormatTikTok, FormatInstagram:
		return true
	}
	return false
}

// Scene is one timed segment of a generated video. Scenes are not
// persisted on their own; they live inside a Video's 'sections' JSON
// column once the video record is written.
//
// Field names on the wire match what the AI backends produce
// (snake_case for the description fields).
type Scene struct {
	Index               int    `json:"index"`
	TextSegment         string `json:"text_segment"`
	VisualDescription   string `json:"visual_description"`
	EnhancedDescription string `json:"enhanced_description,omitempty"`
	ImageURL            string `json:"imageUrl,omitempty"`
	StartTime           int    `json:"startTime"` // seconds
	EndTime             int    `json:"endTime"`   // seconds
}

// Prompt returns the description to feed the image backend: the
// enhanced description when present, the original otherwise.
func (s *Scene) Prompt() string {
	if s.EnhancedDescription != "" {
		return s.EnhancedDescription
	}
	return s.VisualDescription
}

// Video defines the model for the 'videos' table.
type Video struct {
	ID           int64     `json:"id" db:"id"`
	UserID       int64     `json:"userId" db:"user_id"`
	Title        string    `json:"title" db:"title"`
	OriginalText string    `json:"originalText" db:"original_text"`
	Format       string    `json:"format" db:"format"`
	Duration     int       `json:"duration" db:"duration"` // in seconds
	Resolution   string    `json:"resolution" db:"resolution"`
	Status       string    `json:"status" db:"status"`
	AiModel      *string   `json:"aiModel,omitempty" db:"ai_model"`
	VideoURL     *string   `json:"videoUrl" db:"video_url"`
	ThumbnailURL *string   `json:"thumbnailUrl" db:"thumbnail_url"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	Sections     []Scene   `json:"sections" db:"sections"` // stored as JSON
}
