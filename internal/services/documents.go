package services

import (
	"context"
	"strings"

	"github.com/BerylCAtieno/document-chat-api/internal/analyzer"
	"github.com/BerylCAtieno/document-chat-api/internal/extractor"
	"github.com/BerylCAtieno/document-chat-api/internal/models"
	"github.com/BerylCAtieno/document-chat-api/internal/utils"
)

type DocumentService interface {
	AnalyzeDocument(ctx context.Context, req *models.UploadRequest) (*models.AnalysisResult, error)
}

type documentService struct {
	extractors *extractor.Registry
	analyzer   *analyzer.DocumentAnalyzer
	logger     *utils.Logger
}

func NewDocumentService(extractors *extractor.Registry, docAnalyzer *analyzer.DocumentAnalyzer, logger *utils.Logger) DocumentService {
	return &documentService{
		extractors: extractors,
		analyzer:   docAnalyzer,
		logger:     logger,
	}
}

// AnalyzeDocument extracts the upload's text and asks the LLM for a summary and
// suggestions. Nothing about the document outlives the call.
func (s *documentService) AnalyzeDocument(ctx context.Context, req *models.UploadRequest) (*models.AnalysisResult, error) {
	format, ok := s.extractors.Lookup(req.ContentType)
	if !ok {
		s.logger.Warn("Unsupported content type", "content_type", req.ContentType, "filename", req.Filename)
		return nil, utils.NewBadRequestError("Unsupported file type")
	}

	extractedText, err := format.Extractor.Extract(req.File)
	if err != nil {
		s.logger.Error("Failed to extract text", "error", err, "format", format.Name, "filename", req.Filename)
		return nil, utils.WrapInternalError("Failed to extract text from "+format.Name, err)
	}

	if strings.TrimSpace(extractedText) == "" {
		s.logger.Warn("No text extracted from document", "filename", req.Filename)
		return nil, utils.NewBadRequestError("Could not extract text from document")
	}

	// Counted on the full text; the model only sees a truncated prefix.
	wordCount := utils.WordCount(extractedText)

	s.logger.Info("Starting document analysis",
		"filename", req.Filename,
		"format", format.Name,
		"text_length", len(extractedText),
		"word_count", wordCount)

	result, err := s.analyzer.Analyze(ctx, extractedText)
	if err != nil {
		s.logger.Error("Failed to analyze document", "error", err, "filename", req.Filename)
		return nil, utils.WrapInternalError("Analysis failed", err)
	}

	s.logger.Info("Document analyzed successfully",
		"filename", req.Filename,
		"summary_length", len(result.Summary),
		"suggestions", len(result.Suggestions))

	return &models.AnalysisResult{
		Text:        extractedText,
		Analysis:    result.Summary,
		WordCount:   wordCount,
		Suggestions: result.Suggestions,
	}, nil
}
