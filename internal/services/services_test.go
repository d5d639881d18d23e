package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/document-chat-api/internal/analyzer"
	"github.com/BerylCAtieno/document-chat-api/internal/extractor"
	"github.com/BerylCAtieno/document-chat-api/internal/imagegen"
	"github.com/BerylCAtieno/document-chat-api/internal/models"
	"github.com/BerylCAtieno/document-chat-api/internal/utils"
)

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, req analyzer.CompletionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// countingExtractor records calls and returns a fixed text.
type countingExtractor struct {
	text  string
	err   error
	calls int
}

func (e *countingExtractor) Extract([]byte) (string, error) {
	e.calls++
	return e.text, e.err
}

func testLogger() *utils.Logger {
	return utils.NewLoggerTo(io.Discard, "error")
}

func newDocumentService(pdf, docx extractor.Extractor, llm analyzer.Completer) DocumentService {
	reg := extractor.NewRegistry()
	reg.Register(extractor.Format{Name: "PDF", MIMEType: extractor.MIMEPDF, Extractor: pdf})
	reg.Register(extractor.Format{Name: "DOCX", MIMEType: extractor.MIMEDOCX, Extractor: docx})
	logger := testLogger()
	return NewDocumentService(reg, analyzer.NewDocumentAnalyzer(llm, logger), logger)
}

func newChatService(llm analyzer.Completer) ChatService {
	logger := testLogger()
	return NewChatService(
		analyzer.NewDocumentAnalyzer(llm, logger),
		imagegen.NewBuilder("https://image.test", 1024, 1024),
		logger,
	)
}

func requireAppError(t *testing.T, err error, status int, message string) {
	t.Helper()
	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, status, appErr.StatusCode)
	assert.Equal(t, message, appErr.Message)
}

func TestAnalyzeDocumentUnsupportedTypeSkipsExtraction(t *testing.T) {
	pdf := &countingExtractor{text: "text"}
	docx := &countingExtractor{text: "text"}
	llm := new(mockCompleter)
	svc := newDocumentService(pdf, docx, llm)

	for _, ct := range []string{"text/plain", "image/png", "application/msword", ""} {
		_, err := svc.AnalyzeDocument(context.Background(), &models.UploadRequest{File: []byte("x"), Filename: "f", ContentType: ct})
		requireAppError(t, err, http.StatusBadRequest, "Unsupported file type")
	}

	assert.Zero(t, pdf.calls)
	assert.Zero(t, docx.calls)
	llm.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestAnalyzeDocumentWhitespaceText(t *testing.T) {
	pdf := &countingExtractor{text: " \n\t "}
	llm := new(mockCompleter)
	svc := newDocumentService(pdf, &countingExtractor{}, llm)

	_, err := svc.AnalyzeDocument(context.Background(), &models.UploadRequest{File: []byte("x"), ContentType: "application/pdf"})
	requireAppError(t, err, http.StatusBadRequest, "Could not extract text from document")
	llm.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestAnalyzeDocumentExtractionFailure(t *testing.T) {
	docx := &countingExtractor{err: errors.New("zip: not a valid zip file")}
	svc := newDocumentService(&countingExtractor{}, docx, new(mockCompleter))

	_, err := svc.AnalyzeDocument(context.Background(), &models.UploadRequest{File: []byte("x"), ContentType: extractor.MIMEDOCX})
	requireAppError(t, err, http.StatusInternalServerError, "Failed to extract text from DOCX")
}

func TestAnalyzeDocumentMapsLLMResult(t *testing.T) {
	// 16,000 words: longer than what is sent to the model.
	fullText := strings.TrimSpace(strings.Repeat("word ", 16000))
	pdf := &countingExtractor{text: fullText}
	llm := new(mockCompleter)
	suggestions := []string{
		"Add a table of contents so readers can navigate the longer sections quickly.",
		"Replace passive constructions in the introduction with direct active statements.",
	}
	llm.On("Complete", mock.Anything, mock.Anything).
		Return(`{"summary":"A short summary.","themes":["growth"],"suggestions":["`+suggestions[0]+`","`+suggestions[1]+`"]}`, nil).
		Once()

	svc := newDocumentService(pdf, &countingExtractor{}, llm)
	result, err := svc.AnalyzeDocument(context.Background(), &models.UploadRequest{File: []byte("x"), ContentType: "application/pdf"})
	require.NoError(t, err)

	assert.Equal(t, fullText, result.Text)
	assert.Equal(t, "A short summary.", result.Analysis)
	assert.Equal(t, 16000, result.WordCount)
	assert.Equal(t, suggestions, result.Suggestions)

	req := llm.Calls[0].Arguments.Get(1).(analyzer.CompletionRequest)
	userContent := req.Messages[1].Content
	assert.Less(t, len(userContent), len(fullText))
	assert.True(t, req.JSONMode)
}

func TestAnalyzeDocumentMalformedModelOutput(t *testing.T) {
	llm := new(mockCompleter)
	llm.On("Complete", mock.Anything, mock.Anything).Return("Here is your analysis: {", nil).Once()

	svc := newDocumentService(&countingExtractor{text: "some text"}, &countingExtractor{}, llm)
	_, err := svc.AnalyzeDocument(context.Background(), &models.UploadRequest{File: []byte("x"), ContentType: "application/pdf"})

	requireAppError(t, err, http.StatusInternalServerError, "Analysis failed")
	llm.AssertNumberOfCalls(t, "Complete", 1)
}

func TestAnalyzeDocumentIsNotCached(t *testing.T) {
	pdf := &countingExtractor{text: "same document"}
	llm := new(mockCompleter)
	llm.On("Complete", mock.Anything, mock.Anything).Return(`{"summary":"first","suggestions":[]}`, nil).Once()
	llm.On("Complete", mock.Anything, mock.Anything).Return(`{"summary":"second","suggestions":[]}`, nil).Once()

	svc := newDocumentService(pdf, &countingExtractor{}, llm)
	req := &models.UploadRequest{File: []byte("x"), ContentType: "application/pdf"}

	first, err := svc.AnalyzeDocument(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.AnalyzeDocument(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "first", first.Analysis)
	assert.Equal(t, "second", second.Analysis)
	assert.Equal(t, 2, pdf.calls)
	llm.AssertNumberOfCalls(t, "Complete", 2)
}

func TestChatImageRequestSkipsLLM(t *testing.T) {
	llm := new(mockCompleter)
	svc := newChatService(llm)

	resp, err := svc.Chat(context.Background(), &models.ChatRequest{
		DocumentText: "Annual report",
		Messages: []models.ChatMessage{
			{Role: models.RoleUser, Content: "Please draw a lighthouse at dusk"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "https://image.test/prompt/please%20%20a%20lighthouse%20at%20dusk?width=1024&height=1024&nologo=true", resp.ImageURL)
	assert.Contains(t, resp.Response, resp.ImageURL)
	llm.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestChatQuestionCallsLLMOnce(t *testing.T) {
	llm := new(mockCompleter)
	doc := strings.Repeat("0123456789", 1500)
	llm.On("Complete", mock.Anything, mock.Anything).Return("It is a report.", nil).Once()

	svc := newChatService(llm)
	resp, err := svc.Chat(context.Background(), &models.ChatRequest{
		DocumentText: doc,
		Messages: []models.ChatMessage{
			{Role: models.RoleUser, Content: "What is this document?"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "It is a report.", resp.Response)
	assert.Empty(t, resp.ImageURL)
	llm.AssertNumberOfCalls(t, "Complete", 1)

	req := llm.Calls[0].Arguments.Get(1).(analyzer.CompletionRequest)
	require.Equal(t, models.RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, doc[:10000])
	assert.NotContains(t, req.Messages[0].Content, doc[:10001])
	assert.Equal(t, "What is this document?", req.Messages[len(req.Messages)-1].Content)
}

func TestChatImageKeywordFromAssistantIsIgnored(t *testing.T) {
	llm := new(mockCompleter)
	llm.On("Complete", mock.Anything, mock.Anything).Return("ok", nil).Once()

	svc := newChatService(llm)
	resp, err := svc.Chat(context.Background(), &models.ChatRequest{
		DocumentText: "doc",
		Messages: []models.ChatMessage{
			{Role: models.RoleUser, Content: "hello"},
			{Role: models.RoleAssistant, Content: "I can draw things"},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, resp.ImageURL)
	llm.AssertNumberOfCalls(t, "Complete", 1)
}

func TestChatValidation(t *testing.T) {
	svc := newChatService(new(mockCompleter))

	cases := []*models.ChatRequest{
		nil,
		{DocumentText: "", Messages: []models.ChatMessage{{Role: models.RoleUser, Content: "hi"}}},
		{DocumentText: "doc"},
		{DocumentText: "doc", Messages: []models.ChatMessage{{Role: "system", Content: "hi"}}},
	}

	for _, c := range cases {
		_, err := svc.Chat(context.Background(), c)
		requireAppError(t, err, http.StatusBadRequest, "Invalid request format")
	}
}

func TestChatAcceptsWhitespaceDocumentText(t *testing.T) {
	llm := new(mockCompleter)
	llm.On("Complete", mock.Anything, mock.Anything).Return("ok", nil).Once()

	svc := newChatService(llm)
	resp, err := svc.Chat(context.Background(), &models.ChatRequest{
		DocumentText: "   ",
		Messages:     []models.ChatMessage{{Role: models.RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Response)
}

func TestChatLLMFailure(t *testing.T) {
	llm := new(mockCompleter)
	llm.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("timeout")).Once()

	svc := newChatService(llm)
	_, err := svc.Chat(context.Background(), &models.ChatRequest{
		DocumentText: "doc",
		Messages:     []models.ChatMessage{{Role: models.RoleUser, Content: "summarize"}},
	})
	requireAppError(t, err, http.StatusInternalServerError, "Chat failed")
}
