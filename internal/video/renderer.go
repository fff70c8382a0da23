package video

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/vidai-app/vidai-golang/internal/ai"
	"github.com/vidai-app/vidai-golang/internal/models"
)

// RenderResult is what a renderer hands back for a finished video.
type RenderResult struct {
	VideoURL     string
	ThumbnailURL string // may be empty; the orchestrator falls back to the first scene image
	Summary      string // human-readable processing result, may be empty
}

// Renderer turns assembled scenes into a final video file and
// thumbnail. The production implementation is a remote encoding
// service; the simulated one below stands in for it until that
// exists, behind the same interface.
type Renderer interface {
	Render(ctx context.Context, video *models.Video, scenes []models.Scene) (*RenderResult, error)
}

// SimulatedRenderer fakes the encoding step: it waits a fixed delay,
// fabricates asset URLs from the video title, and asks Gemini for a
// short processing summary when a key is configured.
type SimulatedRenderer struct {
	Gemini  *ai.GeminiClient
	Delay   time.Duration
	BaseURL string
}

func NewSimulatedRenderer(gemini *ai.GeminiClient) *SimulatedRenderer {
	return &SimulatedRenderer{
		Gemini:  gemini,
		Delay:   3 * time.Second,
		BaseURL: "https://cdn.vidai.app",
	}
}

func (r *SimulatedRenderer) Render(ctx context.Context, video *models.Video, scenes []models.Scene) (*RenderResult, error) {
	select {
	case <-time.After(r.Delay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	name := fmt.Sprintf("%s-%s", slug.Make(video.Title), uuid.NewString()[:8])
	result := &RenderResult{
		VideoURL: fmt.Sprintf("%s/videos/%s.mp4", r.BaseURL, name),
	}

	// The summary is decoration on top of the render; losing it never
	// fails the job.
	if r.Gemini != nil && r.Gemini.Ready(ctx) {
		prompt := fmt.Sprintf(
			"Video rendering finished. Summarize the result for the user in 2-3 sentences. Format: %s, resolution: %s, duration: %d seconds, %d scenes.",
			video.Format, video.Resolution, video.Duration, len(scenes))
		summary, err := r.Gemini.GenerateText(ctx, ai.GeminiTextModel, prompt, 0.2, 200)
		if err != nil {
			log.Printf("Render summary generation failed for video %d: %v", video.ID, err)
		} else {
			result.Summary = summary
		}
	}

	return result, nil
}
