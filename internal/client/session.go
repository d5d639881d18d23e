package client

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BerylCAtieno/document-chat-api/internal/extractor"
	"github.com/BerylCAtieno/document-chat-api/internal/models"
	"github.com/BerylCAtieno/document-chat-api/internal/utils"
)

var (
	ErrUnsupportedFile = errors.New("Please upload a PDF or DOCX file")
	ErrNoFile          = errors.New("no file selected")
	ErrNoDocument      = errors.New("no analyzed document")
	ErrEmptyMessage    = errors.New("message is empty")
	ErrBusy            = errors.New("a request is already in progress")
)

// API is the server surface the session needs.
type API interface {
	Analyze(ctx context.Context, fileName, contentType string, data []byte) (*models.AnalysisResult, error)
	Chat(ctx context.Context, documentText string, messages []models.ChatMessage) (*models.ChatResponse, error)
}

// HistoryStore keeps past analyses on the user's machine.
type HistoryStore interface {
	List(ctx context.Context) ([]models.HistoryItem, error)
	Create(ctx context.Context, item *models.HistoryItem) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

type SelectedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Session is the client-side state of one user. The server is stateless, so
// every chat turn resends the document text and the whole transcript.
type Session struct {
	api     API
	history HistoryStore
	logger  *utils.Logger
	now     func() time.Time

	mu         sync.Mutex
	file       *SelectedFile
	analyzing  bool
	chatting   bool
	result     *models.AnalysisResult
	transcript []models.ChatMessage
	err        string
}

// NewSession builds a session. history may be nil to disable history.
func NewSession(api API, history HistoryStore, logger *utils.Logger) *Session {
	return &Session{
		api:     api,
		history: history,
		logger:  logger,
		now:     time.Now,
	}
}

// ContentTypeFor maps a file name to the MIME type a browser would declare.
func ContentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return extractor.MIMEPDF
	case ".docx":
		return extractor.MIMEDOCX
	}
	return "application/octet-stream"
}

// SelectFile validates the type locally before anything is sent.
func (s *Session) SelectFile(name, contentType string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contentType = extractor.NormalizeContentType(contentType)
	if contentType != extractor.MIMEPDF && contentType != extractor.MIMEDOCX {
		s.file = nil
		s.err = ErrUnsupportedFile.Error()
		return ErrUnsupportedFile
	}

	s.file = &SelectedFile{Name: name, ContentType: contentType, Data: data}
	s.err = ""
	s.result = nil
	return nil
}

// Analyze submits the selected file. On success the previous result is
// replaced and a history item is recorded.
func (s *Session) Analyze(ctx context.Context) error {
	s.mu.Lock()
	if s.file == nil {
		s.mu.Unlock()
		return ErrNoFile
	}
	if s.analyzing {
		s.mu.Unlock()
		return ErrBusy
	}
	file := *s.file
	s.analyzing = true
	s.err = ""
	s.mu.Unlock()

	result, err := s.api.Analyze(ctx, file.Name, file.ContentType, file.Data)

	s.mu.Lock()
	s.analyzing = false
	if err != nil {
		s.err = errorMessage(err)
		s.mu.Unlock()
		return err
	}
	s.result = result
	s.mu.Unlock()

	s.recordHistory(ctx, file.Name, result)
	return nil
}

func (s *Session) recordHistory(ctx context.Context, fileName string, result *models.AnalysisResult) {
	if s.history == nil {
		return
	}

	item := &models.HistoryItem{
		ID:        utils.GenerateID(),
		FileName:  fileName,
		Timestamp: s.now(),
		WordCount: result.WordCount,
		Analysis:  result.Analysis,
	}
	if err := s.history.Create(ctx, item); err != nil {
		s.logger.Warn("Failed to save history item", "error", err, "filename", fileName)
	}
}

// SendMessage appends the user message right away, then the assistant reply.
// On failure the user message stays in the transcript.
func (s *Session) SendMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	switch {
	case text == "":
		s.mu.Unlock()
		return ErrEmptyMessage
	case s.result == nil:
		s.mu.Unlock()
		return ErrNoDocument
	case s.chatting:
		s.mu.Unlock()
		return ErrBusy
	}

	s.transcript = append(s.transcript, models.ChatMessage{Role: models.RoleUser, Content: text})
	messages := append([]models.ChatMessage(nil), s.transcript...)
	documentText := s.result.Text
	s.chatting = true
	s.mu.Unlock()

	resp, err := s.api.Chat(ctx, documentText, messages)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chatting = false
	if err != nil {
		s.err = errorMessage(err)
		return err
	}

	s.transcript = append(s.transcript, models.ChatMessage{
		Role:     models.RoleAssistant,
		Content:  resp.Response,
		ImageURL: resp.ImageURL,
	})
	return nil
}

// Reset drops the file, result, transcript and error.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.file = nil
	s.result = nil
	s.transcript = nil
	s.err = ""
}

func (s *Session) DismissError() {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()
}

func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) File() (SelectedFile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return SelectedFile{}, false
	}
	return *s.file, true
}

func (s *Session) Result() (models.AnalysisResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return models.AnalysisResult{}, false
	}
	res := *s.result
	res.Suggestions = append([]string(nil), s.result.Suggestions...)
	return res, true
}

func (s *Session) Transcript() []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatMessage(nil), s.transcript...)
}

func (s *Session) Analyzing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.analyzing
}

func (s *Session) Chatting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chatting
}

func (s *Session) History(ctx context.Context) ([]models.HistoryItem, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.List(ctx)
}

func (s *Session) DeleteHistoryItem(ctx context.Context, id string) error {
	if s.history == nil {
		return nil
	}
	return s.history.Delete(ctx, id)
}

func (s *Session) ClearHistory(ctx context.Context) error {
	if s.history == nil {
		return nil
	}
	return s.history.Clear(ctx)
}

func errorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err == nil || err.Error() == "" {
		return "An error occurred"
	}
	return err.Error()
}
