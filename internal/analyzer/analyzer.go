package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/BerylCAtieno/document-chat-api/internal/models"
	"github.com/BerylCAtieno/document-chat-api/internal/utils"
)

// ErrEmptyCompletion is returned by Analyze when the model sends no content.
var ErrEmptyCompletion = errors.New("empty completion")

// DocumentAnalyzer builds the analysis and chat prompts and forwards them to
// a Completer. It holds no per-document state.
type DocumentAnalyzer struct {
	llm    Completer
	logger *utils.Logger
}

func NewDocumentAnalyzer(llm Completer, logger *utils.Logger) *DocumentAnalyzer {
	return &DocumentAnalyzer{llm: llm, logger: logger}
}

// Analyze sends the first 15,000 characters of text in strict JSON mode and
// decodes the result. Malformed output is an error; it is not repaired.
func (a *DocumentAnalyzer) Analyze(ctx context.Context, text string) (*models.LLMAnalysisResult, error) {
	content, err := a.llm.Complete(ctx, CompletionRequest{
		Messages: []Message{
			{Role: models.RoleSystem, Content: analysisSystemPrompt},
			{Role: models.RoleUser, Content: analysisUserPrefix + utils.Truncate(text, analysisMaxChars)},
		},
		Temperature: analysisTemperature,
		MaxTokens:   analysisMaxTokens,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("analysis completion: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyCompletion
	}

	var result models.LLMAnalysisResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		a.logger.Error("Failed to parse LLM response", "content_length", len(content), "error", err)
		return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
	}

	if result.Suggestions == nil {
		result.Suggestions = []string{}
	}

	return &result, nil
}

// Chat answers the conversation about documentText. Image fields on the
// messages are not forwarded.
func (a *DocumentAnalyzer) Chat(ctx context.Context, documentText string, history []models.ChatMessage) (string, error) {
	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, Message{
		Role:    models.RoleSystem,
		Content: fmt.Sprintf(chatSystemPromptTemplate, utils.Truncate(documentText, chatMaxChars)),
	})
	for _, m := range history {
		messages = append(messages, Message{Role: m.Role, Content: m.Content})
	}

	content, err := a.llm.Complete(ctx, CompletionRequest{
		Messages:    messages,
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if content == "" {
		return ChatFallbackResponse, nil
	}

	return content, nil
}
