package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/BerylCAtieno/document-chat-api/internal/models"
	"github.com/BerylCAtieno/document-chat-api/internal/utils"
)

func respondJSON(w http.ResponseWriter, logger *utils.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError writes {"error": message}. AppErrors keep their status and
// message; anything else becomes a generic 500.
func respondError(w http.ResponseWriter, r *http.Request, logger *utils.Logger, err error) {
	var appErr *utils.AppError
	if !errors.As(err, &appErr) {
		appErr = utils.NewInternalError("Internal server error")
	}
	status := appErr.StatusCode
	message := appErr.Message

	logger.Error("Request error",
		"status", status,
		"error", err.Error(),
		"method", r.Method,
		"path", r.URL.Path)

	respondJSON(w, logger, status, models.ErrorResponse{Error: message})
}

// NotFound answers unknown routes with a JSON 404.
func NotFound(logger *utils.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, logger, utils.NewNotFoundError("Not found"))
	}
}
