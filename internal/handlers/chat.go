package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/BerylCAtieno/document-chat-api/internal/models"
	"github.com/BerylCAtieno/document-chat-api/internal/services"
	"github.com/BerylCAtieno/document-chat-api/internal/utils"
)

// chat bodies carry the whole document text plus the transcript
const maxChatBodySize = 8 << 20

type ChatHandler struct {
	service services.ChatService
	logger  *utils.Logger
}

func NewChatHandler(service services.ChatService, logger *utils.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		logger:  logger,
	}
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodySize)

	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, h.logger, utils.NewBadRequestError("Invalid request format"))
		return
	}

	resp, err := h.service.Chat(r.Context(), &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, resp)
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}
