package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/vidai-app/vidai-golang/internal/config"
	"github.com/vidai-app/vidai-golang/internal/models"
)

// TextBackend is one of the language models the enhancer can write
// scene descriptions with.
type TextBackend interface {
	// Name identifies the backend in API responses and logs.
	Name() string
	// Ready reports whether the backend has a usable credential.
	Ready(ctx context.Context) bool
	// Generate runs a single-prompt completion.
	Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)
}

// Enhancer rewrites scene descriptions into richer image prompts. The
// premium Grok backend sits behind a runtime flag; when it is
// disabled or missing its credential the default backend takes over
// transparently - callers never see a configuration error.
type Enhancer struct {
	Default TextBackend
	Premium TextBackend
	Config  *config.Provider
}

func NewEnhancer(cfg *config.Provider) *Enhancer {
	return &Enhancer{
		Default: &geminiBackend{client: NewGeminiClient(cfg)},
		Premium: &grokBackend{client: NewChatClient(XAIBaseURL), cfg: cfg},
		Config:  cfg,
	}
}

// Enhance rewrites every scene's visual description and returns the
// scenes in their original order, plus the name of the backend used.
// A scene whose backend call fails is passed through unmodified; the
// original description stays authoritative.
func (e *Enhancer) Enhance(ctx context.Context, scenes []models.Scene, usePremium bool) ([]models.Scene, string) {
	backend := e.pickBackend(ctx, usePremium)

	enhanced := make([]models.Scene, len(scenes))
	for i, scene := range scenes {
		enhanced[i] = scene

		prompt := enhancePrompt(scene)
		text, err := backend.Generate(ctx, prompt, 0.7, 256)
		if err != nil {
			log.Printf("Scene %d enhancement failed, keeping original description: %v", scene.Index, err)
			continue
		}
		enhanced[i].EnhancedDescription = text
	}
	return enhanced, backend.Name()
}

func (e *Enhancer) pickBackend(ctx context.Context, usePremium bool) TextBackend {
	if !usePremium {
		return e.Default
	}
	if !e.Config.Flag(ctx, "GROK_ENHANCEMENT_ENABLED") {
		log.Printf("Premium enhancement requested but disabled by config, falling back to %s", e.Default.Name())
		return e.Default
	}
	if !e.Premium.Ready(ctx) {
		log.Printf("Premium enhancement requested but no credential configured, falling back to %s", e.Default.Name())
		return e.Default
	}
	return e.Premium
}

func enhancePrompt(scene models.Scene) string {
	return fmt.Sprintf(`Write a high-quality visual description for this video scene. Produce a more vivid, striking and visually rich version of the original.

Original visual description: %q

Related text: %q

The new description must cover:
1. The visual elements in detail
2. Color, light and perspective
3. The emotional or dramatic effect of the scene

Limit your answer to 100-150 words.`, scene.VisualDescription, scene.TextSegment)
}

//
// --- Backends ---
//

type grokBackend struct {
	client *ChatClient
	cfg    *config.Provider
}

func (b *grokBackend) Name() string { return GrokModel }

func (b *grokBackend) Ready(ctx context.Context) bool {
	return b.cfg.Secret(ctx, "XAI_API_KEY") != ""
}

func (b *grokBackend) Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	apiKey := b.cfg.Secret(ctx, "XAI_API_KEY")
	return b.client.Complete(ctx, apiKey, GrokModel, []ChatMessage{
		{Role: "user", Content: prompt},
	}, temperature, maxTokens)
}

type geminiBackend struct {
	client *GeminiClient
}

func (b *geminiBackend) Name() string { return GeminiTextModel }

func (b *geminiBackend) Ready(ctx context.Context) bool {
	return b.client.Ready(ctx)
}

func (b *geminiBackend) Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	return b.client.GenerateText(ctx, GeminiTextModel, prompt, float32(temperature), int32(maxTokens))
}
