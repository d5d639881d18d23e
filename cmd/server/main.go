package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/BerylCAtieno/document-chat-api/internal/analyzer"
	"github.com/BerylCAtieno/document-chat-api/internal/config"
	"github.com/BerylCAtieno/document-chat-api/internal/extractor"
	"github.com/BerylCAtieno/document-chat-api/internal/imagegen"
	"github.com/BerylCAtieno/document-chat-api/internal/router"
	"github.com/BerylCAtieno/document-chat-api/internal/services"
	"github.com/BerylCAtieno/document-chat-api/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel)

	// LLM collaborator
	llm := analyzer.NewChatCompletionsClient(cfg.GroqAPIKey, cfg.GroqModel, cfg.GroqBaseURL, cfg.LLMTimeout, logger)
	docAnalyzer := analyzer.NewDocumentAnalyzer(llm, logger)

	docService := services.NewDocumentService(extractor.NewRegistry(), docAnalyzer, logger)
	chatService := services.NewChatService(docAnalyzer, imagegen.NewBuilder(cfg.ImageEndpoint, cfg.ImageWidth, cfg.ImageHeight), logger)

	// Setup HTTP router
	handler := router.NewRouter(docService, chatService, router.Options{
		MaxFileSize:        cfg.MaxFileSize,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}, logger)

	// Write timeout covers the outbound LLM call.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.LLMTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "model", cfg.GroqModel)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
