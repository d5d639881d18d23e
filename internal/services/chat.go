package services

import (
	"context"

	"github.com/BerylCAtieno/document-chat-api/internal/analyzer"
	"github.com/BerylCAtieno/document-chat-api/internal/imagegen"
	"github.com/BerylCAtieno/document-chat-api/internal/models"
	"github.com/BerylCAtieno/document-chat-api/internal/utils"
)

type ChatService interface {
	Chat(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error)
}

type chatService struct {
	analyzer *analyzer.DocumentAnalyzer
	images   *imagegen.Builder
	logger   *utils.Logger
}

func NewChatService(docAnalyzer *analyzer.DocumentAnalyzer, images *imagegen.Builder, logger *utils.Logger) ChatService {
	return &chatService{
		analyzer: docAnalyzer,
		images:   images,
		logger:   logger,
	}
}

// Chat answers the latest message. Image requests are answered with a URL for
// the image endpoint and never reach the LLM; the image itself is not fetched.
func (s *chatService) Chat(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error) {
	if err := validateChatRequest(req); err != nil {
		return nil, err
	}

	last := req.Messages[len(req.Messages)-1]

	if last.Role == models.RoleUser && imagegen.IsImageRequest(last.Content) {
		prompt := imagegen.ExtractPrompt(last.Content, req.DocumentText)
		imageURL := s.images.URL(prompt)

		s.logger.Info("Image request detected", "prompt_length", len(prompt))

		return &models.ChatResponse{
			Response: imagegen.ConfirmationMessage(imageURL, prompt),
			ImageURL: imageURL,
		}, nil
	}

	response, err := s.analyzer.Chat(ctx, req.DocumentText, req.Messages)
	if err != nil {
		s.logger.Error("Failed to get chat response", "error", err, "messages", len(req.Messages))
		return nil, utils.WrapInternalError("Chat failed", err)
	}

	return &models.ChatResponse{Response: response}, nil
}

func validateChatRequest(req *models.ChatRequest) error {
	invalid := utils.NewBadRequestError("Invalid request format")

	if req == nil || req.DocumentText == "" || len(req.Messages) == 0 {
		return invalid
	}

	for _, m := range req.Messages {
		if m.Role != models.RoleUser && m.Role != models.RoleAssistant {
			return invalid
		}
	}

	return nil
}
