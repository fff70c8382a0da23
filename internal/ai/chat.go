package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Default endpoints for the OpenAI-compatible chat backends.
const (
	DeepseekBaseURL = "https://api.deepseek.com/v1"
	XAIBaseURL      = "https://api.x.ai/v1"

	DeepseekChatModel = "deepseek-chat"
	GrokModel         = "grok-2-1212"
)

// Timeout for text-generation calls. Image synthesis gets its own,
// longer budget in imagegen.go.
const textTimeout = 30 * time.Second

// ChatMessage is one turn of an OpenAI-compatible conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
}

// ChatClient is a minimal client for OpenAI-compatible chat
// completion endpoints (Deepseek, xAI). There is no official Go SDK
// for either, so we speak the wire format directly.
type ChatClient struct {
	BaseURL string
	HTTP    *http.Client
}

func NewChatClient(baseURL string) *ChatClient {
	return &ChatClient{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: textTimeout},
	}
}

// Complete sends a chat completion request and returns the assistant
// message content. Transient failures (network errors, 5xx) get a
// single retry; client errors do not.
func (c *ChatClient) Complete(ctx context.Context, apiKey, model string, messages []ChatMessage, temperature float64, maxTokens int) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", err
	}

	body, err := postJSONWithRetry(ctx, c.HTTP, c.BaseURL+"/chat/completions", apiKey, payload)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("malformed completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// postJSONWithRetry performs an authenticated JSON POST with one
// retry on transient failure. 4xx responses are returned immediately:
// retrying a rejected request only burns quota.
func postJSONWithRetry(ctx context.Context, client *http.Client, url, apiKey string, payload []byte) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		body, retryable, err := postJSON(ctx, client, url, apiKey, payload)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

func postJSON(ctx context.Context, client *http.Client, url, apiKey string, payload []byte) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, true, err // network failure: worth one retry
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}

	if resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("backend returned %d: %s", resp.StatusCode, truncate(body, 200))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("backend returned %d: %s", resp.StatusCode, truncate(body, 200))
	}
	return body, false, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
