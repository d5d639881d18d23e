package router

import (
	"net/http"

	"github.com/BerylCAtieno/document-chat-api/internal/handlers"
	"github.com/BerylCAtieno/document-chat-api/internal/middleware"
	"github.com/BerylCAtieno/document-chat-api/internal/services"
	"github.com/BerylCAtieno/document-chat-api/internal/utils"

	"github.com/gorilla/mux"
)

type Options struct {
	MaxFileSize        int64
	CORSAllowedOrigins []string
}

func NewRouter(docService services.DocumentService, chatService services.ChatService, opts Options, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = handlers.NotFound(logger)

	// Middlewares
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(opts.CORSAllowedOrigins))
	r.Use(middleware.Recovery(logger))

	docHandler := handlers.NewDocumentHandler(docService, opts.MaxFileSize, logger)
	chatHandler := handlers.NewChatHandler(chatService, logger)

	api := r.PathPrefix("/api").Subrouter()

	// OPTIONS is listed so preflight requests reach the CORS middleware.
	api.HandleFunc("/health", handlers.Health).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/analyze", docHandler.AnalyzeDocument).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/chat", chatHandler.Chat).Methods(http.MethodPost, http.MethodOptions)

	return r
}
