package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port     string
	LogLevel string

	// Groq (OpenAI-compatible chat completions)
	GroqAPIKey  string
	GroqModel   string
	GroqBaseURL string
	LLMTimeout  time.Duration

	// Image generation
	ImageEndpoint string
	ImageWidth    int
	ImageHeight   int

	// Upload limits
	MaxFileSize int64

	CORSAllowedOrigins []string
}

// ClientConfig configures the docchat terminal client.
type ClientConfig struct {
	ServerURL   string
	HistoryDB   string
	ExportDir   string
	HTTPTimeout time.Duration

	// S3-compatible export target; used when S3Endpoint is set.
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3Region          string
	S3UseSSL          bool
}

func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		GroqAPIKey:         getEnv("GROQ_API_KEY", ""),
		GroqModel:          getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		GroqBaseURL:        strings.TrimSuffix(getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"), "/"),
		LLMTimeout:         time.Duration(getEnvInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second,
		ImageEndpoint:      strings.TrimSuffix(getEnv("IMAGE_ENDPOINT", "https://image.pollinations.ai"), "/"),
		ImageWidth:         getEnvInt("IMAGE_WIDTH", 1024),
		ImageHeight:        getEnvInt("IMAGE_HEIGHT", 1024),
		MaxFileSize:        int64(getEnvInt("MAX_FILE_SIZE_MB", 10)) << 20,
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	if cfg.GroqAPIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY is required")
	}
	if cfg.MaxFileSize <= 0 {
		return nil, fmt.Errorf("MAX_FILE_SIZE_MB must be positive")
	}
	if cfg.ImageWidth <= 0 || cfg.ImageHeight <= 0 {
		return nil, fmt.Errorf("IMAGE_WIDTH and IMAGE_HEIGHT must be positive")
	}

	return cfg, nil
}

func LoadClient() (*ClientConfig, error) {
	loadDotEnv()

	dataDir, err := defaultDataDir()
	if err != nil {
		return nil, err
	}

	cfg := &ClientConfig{
		ServerURL:         strings.TrimSuffix(getEnv("DOCCHAT_SERVER_URL", "http://localhost:8080"), "/"),
		HistoryDB:         getEnv("DOCCHAT_HISTORY_DB", filepath.Join(dataDir, "history.db")),
		ExportDir:         getEnv("DOCCHAT_EXPORT_DIR", filepath.Join(dataDir, "exports")),
		HTTPTimeout:       time.Duration(getEnvInt("DOCCHAT_HTTP_TIMEOUT_SECONDS", 120)) * time.Second,
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3BucketName:      getEnv("S3_BUCKET_NAME", "docchat-exports"),
		S3Region:          getEnv("S3_REGION", ""),
		S3UseSSL:          getEnv("S3_USE_SSL", "false") == "true",
	}

	if cfg.S3Endpoint != "" && (cfg.S3AccessKeyID == "" || cfg.S3SecretAccessKey == "") {
		return nil, fmt.Errorf("S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY are required when S3_ENDPOINT is set")
	}

	return cfg, nil
}

// loadDotEnv reads .env from the working directory when present. Variables
// already set in the environment win.
func loadDotEnv() {
	_ = godotenv.Load()
}

func defaultDataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(base, "docchat"), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
