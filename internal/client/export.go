package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"path"
	"time"

	"github.com/BerylCAtieno/document-chat-api/internal/models"
	"github.com/BerylCAtieno/document-chat-api/internal/storage"
	"github.com/BerylCAtieno/document-chat-api/internal/utils"
)

// ImageFetcher loads a generated image by URL.
type ImageFetcher interface {
	FetchImage(ctx context.Context, url string) ([]byte, string, error)
}

type Report struct {
	FileName    string               `json:"fileName"`
	ExportedAt  time.Time            `json:"exportedAt"`
	WordCount   int                  `json:"wordCount"`
	Analysis    string               `json:"analysis"`
	Suggestions []string             `json:"suggestions"`
	Transcript  []models.ChatMessage `json:"transcript"`
	Images      []ExportedImage      `json:"images"`
}

type ExportedImage struct {
	URL   string `json:"url"`
	Key   string `json:"key,omitempty"`
	Error string `json:"error,omitempty"`
}

// Export writes the current analysis and transcript to store under
// exports/<id>/report.json, together with every generated image that loads.
// The report is read back to confirm the write. If the report cannot be
// stored, the images already uploaded are removed. It returns the key prefix used.
func (s *Session) Export(ctx context.Context, store storage.Storage, images ImageFetcher) (string, error) {
	result, ok := s.Result()
	if !ok {
		return "", ErrNoDocument
	}

	fileName := ""
	if file, ok := s.File(); ok {
		fileName = file.Name
	}

	prefix := path.Join("exports", utils.GenerateID())
	report := Report{
		FileName:    fileName,
		ExportedAt:  s.now().UTC(),
		WordCount:   result.WordCount,
		Analysis:    result.Analysis,
		Suggestions: result.Suggestions,
		Transcript:  s.Transcript(),
		Images:      []ExportedImage{},
	}

	for _, msg := range report.Transcript {
		if msg.ImageURL == "" {
			continue
		}
		report.Images = append(report.Images, s.exportImage(ctx, store, images, prefix, len(report.Images)+1, msg.ImageURL))
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	reportKey := path.Join(prefix, "report.json")
	if err := s.storeReport(ctx, store, reportKey, data); err != nil {
		s.removeImages(ctx, store, report.Images)
		return "", err
	}

	s.logger.Info("Session exported", "prefix", prefix, "images", len(report.Images))
	return prefix, nil
}

func (s *Session) storeReport(ctx context.Context, store storage.Storage, key string, data []byte) error {
	if err := store.Upload(ctx, key, data, "application/json"); err != nil {
		return fmt.Errorf("failed to upload report: %w", err)
	}

	stored, err := store.Download(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to verify report: %w", err)
	}
	if !bytes.Equal(stored, data) {
		return fmt.Errorf("failed to verify report: stored %d bytes, wrote %d", len(stored), len(data))
	}

	return nil
}

func (s *Session) removeImages(ctx context.Context, store storage.Storage, images []ExportedImage) {
	for _, img := range images {
		if img.Key == "" {
			continue
		}
		if err := store.Delete(ctx, img.Key); err != nil {
			s.logger.Warn("Failed to remove exported image", "key", img.Key, "error", err)
		}
	}
}

func (s *Session) exportImage(ctx context.Context, store storage.Storage, images ImageFetcher, prefix string, n int, url string) ExportedImage {
	exported := ExportedImage{URL: url}

	data, contentType, err := images.FetchImage(ctx, url)
	if err != nil {
		s.logger.Warn("Image did not load", "url", url, "error", err)
		exported.Error = err.Error()
		return exported
	}

	key := path.Join(prefix, fmt.Sprintf("image-%d%s", n, imageExtension(contentType)))
	if err := store.Upload(ctx, key, data, contentType); err != nil {
		s.logger.Warn("Failed to upload image", "key", key, "error", err)
		exported.Error = err.Error()
		return exported
	}

	exported.Key = key
	return exported
}

func imageExtension(contentType string) string {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	}
	return ".img"
}
