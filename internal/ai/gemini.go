package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/vidai-app/vidai-golang/internal/config"
)

// GeminiTextModel is the default text model for enhancement and
// render summaries.
const GeminiTextModel = "gemini-1.5-flash"

// ErrGeminiNotConfigured means no Gemini API key is available from
// either the config table or the environment.
var ErrGeminiNotConfigured = errors.New("ai: gemini api key not configured")

// GeminiClient wraps the Gemini SDK. The underlying client is built
// lazily from the runtime-resolved API key and rebuilt whenever an
// admin rotates the key, so config updates apply without a restart.
type GeminiClient struct {
	Config *config.Provider

	mu     sync.Mutex
	client *genai.Client
	key    string
}

func NewGeminiClient(cfg *config.Provider) *GeminiClient {
	return &GeminiClient{Config: cfg}
}

func (g *GeminiClient) generativeModel(ctx context.Context, name string) (*genai.GenerativeModel, error) {
	key := g.Config.Secret(ctx, "GEMINI_API_KEY")
	if key == "" {
		return nil, ErrGeminiNotConfigured
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil || g.key != key {
		client, err := genai.NewClient(ctx, option.WithAPIKey(key))
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		if g.client != nil {
			g.client.Close()
		}
		g.client = client
		g.key = key
	}
	return g.client.GenerativeModel(name), nil
}

// Ready reports whether the client has a usable credential.
func (g *GeminiClient) Ready(ctx context.Context) bool {
	return g.Config.Secret(ctx, "GEMINI_API_KEY") != ""
}

// GenerateText runs a single-prompt completion. The lock above only
// guards client construction; the network call itself runs unlocked.
func (g *GeminiClient) GenerateText(ctx context.Context, modelName, prompt string, temperature float32, maxTokens int32) (string, error) {
	model, err := g.generativeModel(ctx, modelName)
	if err != nil {
		return "", err
	}
	model.SetTemperature(temperature)
	if maxTokens > 0 {
		model.SetMaxOutputTokens(maxTokens)
	}

	res, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini returned no content")
	}

	var sb strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("gemini returned no text parts")
	}
	return strings.TrimSpace(sb.String()), nil
}
