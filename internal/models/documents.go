package models

import (
	"time"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// UploadRequest is the transient uploaded document. It lives for a single
// request and is never stored.
type UploadRequest struct {
	File        []byte
	Filename    string
	ContentType string
}

type AnalysisResult struct {
	Text        string   `json:"text"`
	Analysis    string   `json:"analysis"`
	WordCount   int      `json:"wordCount"`
	Suggestions []string `json:"suggestions"`
}

// LLMAnalysisResult is the JSON object the model is instructed to return.
type LLMAnalysisResult struct {
	Summary     string   `json:"summary"`
	Themes      []string `json:"themes"`
	Suggestions []string `json:"suggestions"`
}

type ChatMessage struct {
	Role     string `json:"role"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type ChatRequest struct {
	DocumentText string        `json:"documentText"`
	Messages     []ChatMessage `json:"messages"`
}

type ChatResponse struct {
	Response string `json:"response"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// HistoryItem is a client-local record of a past analysis.
type HistoryItem struct {
	ID        string    `json:"id"`
	FileName  string    `json:"fileName"`
	Timestamp time.Time `json:"timestamp"`
	WordCount int       `json:"wordCount"`
	Analysis  string    `json:"analysis"`
}
