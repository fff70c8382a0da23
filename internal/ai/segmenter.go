package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vidai-app/vidai-golang/internal/config"
	"github.com/vidai-app/vidai-golang/internal/models"
)

// MinInputLength is the minimum effective input size for
// segmentation, measured after trimming.
const MinInputLength = 10

// Scene count bounds for the derivation heuristic.
const (
	MinSceneCount = 3
	MaxSceneCount = 10
)

var (
	// ErrInsufficientInput means the source text is too short to
	// split into scenes. Surfaced as a 400.
	ErrInsufficientInput = errors.New("ai: input text is too short to segment")

	// ErrSceneGenerationFailed wraps any backend or parse failure
	// during segmentation. There is no usable partial result, so the
	// whole request fails.
	ErrSceneGenerationFailed = errors.New("ai: scene generation failed")
)

// SceneCountForText derives how many scenes a text should produce:
// roughly one scene per 500 characters, clamped to [3, 10].
func SceneCountForText(text string) int {
	count := (len(text) + 499) / 500
	if count < MinSceneCount {
		return MinSceneCount
	}
	if count > MaxSceneCount {
		return MaxSceneCount
	}
	return count
}

// Segmenter splits raw input text into ordered scenes using the
// Deepseek chat backend.
type Segmenter struct {
	Client *ChatClient
	Config *config.Provider
}

func NewSegmenter(cfg *config.Provider) *Segmenter {
	return &Segmenter{
		Client: NewChatClient(DeepseekBaseURL),
		Config: cfg,
	}
}

const segmentSystemPrompt = "You are a video content planner. You turn text into a sequence of video scenes."

// Segment asks the backend to partition text into exactly sceneCount
// scenes and returns them in source order.
func (s *Segmenter) Segment(ctx context.Context, text string, sceneCount int) ([]models.Scene, error) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < MinInputLength {
		return nil, ErrInsufficientInput
	}
	if sceneCount < MinSceneCount {
		sceneCount = MinSceneCount
	}
	if sceneCount > MaxSceneCount {
		sceneCount = MaxSceneCount
	}

	prompt := fmt.Sprintf(
		`Split this text into %d visual scenes, in the order the material appears in the text. For each scene provide a visual description and the matching text segment. Respond with JSON only, in the form [{"visual_description": "...", "text_segment": "..."}]. Here is the text: %s`,
		sceneCount, trimmed)

	apiKey := s.Config.Secret(ctx, "DEEPSEEK_API_KEY")
	content, err := s.Client.Complete(ctx, apiKey, DeepseekChatModel, []ChatMessage{
		{Role: "system", Content: segmentSystemPrompt},
		{Role: "user", Content: prompt},
	}, 0.7, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSceneGenerationFailed, err)
	}

	scenes, err := parseScenes(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSceneGenerationFailed, err)
	}
	return scenes, nil
}

// parseScenes decodes the backend's scene array. A strict parse of
// the full payload is attempted first; models that wrap the JSON in
// prose fall through to the first-'['/last-']' span. Every scene is
// validated before use, and the ordinal index is stamped from
// position.
func parseScenes(content string) ([]models.Scene, error) {
	var scenes []models.Scene
	if err := json.Unmarshal([]byte(content), &scenes); err != nil {
		span, ok := jsonArraySpan(content)
		if !ok {
			return nil, fmt.Errorf("no JSON array in response")
		}
		scenes = nil
		if err := json.Unmarshal([]byte(span), &scenes); err != nil {
			return nil, fmt.Errorf("unparsable scene JSON: %w", err)
		}
	}

	if len(scenes) == 0 {
		return nil, fmt.Errorf("backend returned no scenes")
	}
	for i := range scenes {
		if strings.TrimSpace(scenes[i].VisualDescription) == "" {
			return nil, fmt.Errorf("scene %d is missing a visual description", i)
		}
		scenes[i].Index = i
	}
	return scenes, nil
}

func jsonArraySpan(content string) (string, bool) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return "", false
	}
	return content[start : end+1], true
}
