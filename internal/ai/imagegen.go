package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/vidai-app/vidai-golang/internal/config"
	"github.com/vidai-app/vidai-golang/internal/models"
)

// HuggingFace inference endpoint for the text-to-image model.
const (
	HuggingFaceBaseURL = "https://api-inference.huggingface.co/models/"
	ImageModel         = "stabilityai/stable-diffusion-xl-base-1.0"
)

// Image synthesis is slower than text generation and gets a longer
// budget.
const imageTimeout = 60 * time.Second

// ErrImageSynthesisFailed wraps backend failures during image
// generation. The caller decides whether to retry the scene or
// continue without an image (a scene without an image is valid; the
// UI shows a placeholder).
var ErrImageSynthesisFailed = errors.New("ai: image synthesis failed")

// Style hints appended to image prompts per target format.
const (
	StyleVertical  = "vibrant, vertical composition"
	StyleSquare    = "square aesthetic, social media ready"
	StyleCinematic = "realistic, cinematic"
)

// StyleForFormat derives the style hint from the target video format:
// vertical social formats get a vertical hint, Instagram a square
// one, everything else defaults to cinematic.
func StyleForFormat(format string) string {
	switch format {
	case models.FormatTikTok, models.FormatYouTubeShorts:
		return StyleVertical
	case models.FormatInstagram:
		return StyleSquare
	default:
		return StyleCinematic
	}
}

type imageRequest struct {
	Inputs     string          `json:"inputs"`
	Parameters imageParameters `json:"parameters"`
}

type imageParameters struct {
	NegativePrompt string `json:"negative_prompt"`
}

// ImageSynthesizer produces a still image per scene through the
// HuggingFace inference API.
type ImageSynthesizer struct {
	BaseURL string
	Model   string
	Config  *config.Provider
	HTTP    *http.Client
}

func NewImageSynthesizer(cfg *config.Provider) *ImageSynthesizer {
	return &ImageSynthesizer{
		BaseURL: HuggingFaceBaseURL,
		Model:   ImageModel,
		Config:  cfg,
		HTTP:    &http.Client{Timeout: imageTimeout},
	}
}

// Synthesize generates one image for a description + style pair and
// returns it as a base64 data URL. The final prompt adds fixed
// quality qualifiers; the negative prompt excludes the usual
// diffusion artifacts.
func (s *ImageSynthesizer) Synthesize(ctx context.Context, description, style string) (string, error) {
	if style == "" {
		style = StyleCinematic
	}

	payload, err := json.Marshal(imageRequest{
		Inputs: fmt.Sprintf("%s, %s, photorealistic, high quality, 16:9 aspect ratio", description, style),
		Parameters: imageParameters{
			NegativePrompt: "blurry, low quality, distorted, deformed",
		},
	})
	if err != nil {
		return "", err
	}

	apiKey := s.Config.Secret(ctx, "HUGGINGFACE_API_KEY")
	body, err := postJSONWithRetry(ctx, s.HTTP, s.BaseURL+s.Model, apiKey, payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageSynthesisFailed, err)
	}

	encoded := base64.StdEncoding.EncodeToString(body)
	return "data:image/jpeg;base64," + encoded, nil
}
