package router

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerylCAtieno/document-chat-api/internal/models"
	"github.com/BerylCAtieno/document-chat-api/internal/utils"
)

type stubDocumentService struct{}

func (stubDocumentService) AnalyzeDocument(context.Context, *models.UploadRequest) (*models.AnalysisResult, error) {
	return &models.AnalysisResult{}, nil
}

type stubChatService struct{}

func (stubChatService) Chat(context.Context, *models.ChatRequest) (*models.ChatResponse, error) {
	return &models.ChatResponse{Response: "pong"}, nil
}

func newTestRouter() http.Handler {
	return NewRouter(stubDocumentService{}, stubChatService{}, Options{
		MaxFileSize:        1 << 20,
		CORSAllowedOrigins: []string{"*"},
	}, utils.NewLoggerTo(io.Discard, "error"))
}

func TestRoutes(t *testing.T) {
	r := newTestRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"documentText":"d","messages":[{"role":"user","content":"q"}]}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"response":"pong"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/chat", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPreflight(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/analyze", nil)
	req.Header.Set("Origin", "http://app.test")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	r := newTestRouter()

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
}
