package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/BerylCAtieno/document-chat-api/internal/utils"
)

// Completer is the upstream LLM collaborator: an ordered message list in,
// generated text out.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

type CompletionRequest struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
	// JSONMode asks the provider for a strict JSON object response.
	JSONMode bool
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionsClient struct {
	apiKey  string
	model   string
	baseURL string
	logger  *utils.Logger
	client  *http.Client
}

type ChatCompletionsRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type ChatCompletionsResponse struct {
	Choices []Choice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

type Choice struct {
	Message Message `json:"message"`
}

// NewChatCompletionsClient talks to any OpenAI-compatible /chat/completions
// endpoint (Groq, OpenRouter, OpenAI).
func NewChatCompletionsClient(apiKey, model, baseURL string, timeout time.Duration, logger *utils.Logger) Completer {
	return &chatCompletionsClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		logger:  logger,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Complete returns the first choice's content. An empty string with a nil
// error means the provider answered without any content.
func (c *chatCompletionsClient) Complete(ctx context.Context, in CompletionRequest) (string, error) {
	reqBody := ChatCompletionsRequest{
		Model:       c.model,
		Messages:    in.Messages,
		Temperature: in.Temperature,
		MaxTokens:   in.MaxTokens,
	}
	if in.JSONMode {
		reqBody.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("Chat completion finished",
		"model", c.model,
		"status", resp.StatusCode,
		"json_mode", in.JSONMode,
		"duration_ms", time.Since(start).Milliseconds())

	var parsed ChatCompletionsResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("LLM API error", "status", resp.StatusCode, "body", string(body))
		if decodeErr == nil && parsed.Error != nil {
			return "", fmt.Errorf("LLM API returned status %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("LLM API returned status %d", resp.StatusCode)
	}

	if decodeErr != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", decodeErr)
	}

	if parsed.Error != nil {
		return "", fmt.Errorf("LLM API error: %s", parsed.Error.Message)
	}

	if len(parsed.Choices) == 0 {
		return "", nil
	}

	return parsed.Choices[0].Message.Content, nil
}
