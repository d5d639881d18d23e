package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/BerylCAtieno/document-chat-api/internal/extractor"
	"github.com/BerylCAtieno/document-chat-api/internal/models"
	"github.com/BerylCAtieno/document-chat-api/internal/services"
	"github.com/BerylCAtieno/document-chat-api/internal/utils"
)

// multipart overhead allowed on top of the file itself
const formOverhead = 1 << 20

type DocumentHandler struct {
	service     services.DocumentService
	logger      *utils.Logger
	maxFileSize int64
}

func NewDocumentHandler(service services.DocumentService, maxFileSize int64, logger *utils.Logger) *DocumentHandler {
	return &DocumentHandler{
		service:     service,
		logger:      logger,
		maxFileSize: maxFileSize,
	}
}

func (h *DocumentHandler) AnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	limit := h.maxFileSize + formOverhead
	tooLarge := utils.NewBadRequestError(fmt.Sprintf("File size exceeds %dMB limit", h.maxFileSize>>20))

	// Check Content-Length header first to reject oversized requests early
	if r.ContentLength > limit {
		respondError(w, r, h.logger, tooLarge)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			respondError(w, r, h.logger, tooLarge)
			return
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			respondError(w, r, h.logger, utils.NewBadRequestError("No file provided"))
			return
		}
		respondError(w, r, h.logger, utils.NewBadRequestError("Invalid form data"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, h.logger, utils.NewBadRequestError("No file provided"))
		return
	}
	defer file.Close()

	contentType := declaredContentType(header.Filename, header.Header.Get("Content-Type"))

	h.logger.Info("File upload attempt",
		"filename", header.Filename,
		"reported_content_type", header.Header.Get("Content-Type"),
		"content_type", contentType,
		"size", header.Size)

	// Read file data with size limit
	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		respondError(w, r, h.logger, utils.WrapInternalError("Failed to read file", err))
		return
	}

	if int64(len(data)) > h.maxFileSize {
		respondError(w, r, h.logger, tooLarge)
		return
	}

	if len(data) == 0 {
		respondError(w, r, h.logger, utils.NewBadRequestError("Uploaded file is empty"))
		return
	}

	resp, err := h.service.AnalyzeDocument(r.Context(), &models.UploadRequest{
		File:        data,
		Filename:    header.Filename,
		ContentType: contentType,
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, resp)
}

// declaredContentType returns the part's declared type. Only when the client
// sent no useful type is the file extension consulted.
func declaredContentType(filename, headerContentType string) string {
	declared := strings.TrimSpace(headerContentType)
	if declared != "" && !strings.EqualFold(declared, "application/octet-stream") {
		return declared
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return extractor.MIMEPDF
	case ".docx":
		return extractor.MIMEDOCX
	}

	return declared
}
