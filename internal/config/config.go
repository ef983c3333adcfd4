package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort  string
	LogLevel string

	ChatBaseURL     string
	ChatAPIKey      string
	ChatAppName     string
	ChatReferer     string
	ChatMaxTokens   int
	ChatTemperature float64
	DefaultModel    string
	ModelCatalog    []string

	OCRBaseURL       string
	OCRModel         string
	OCRMinTextLength int

	SystemInstructions string

	PromptBudget    int
	DocumentShare   float64
	MessageOverhead int

	SessionIdleTTL     time.Duration
	IngestTimeout      time.Duration
	ExtractionWorkers  int
	PDFMinTextDensity  int
	MaxUploadBytes     int64
	RateLimitPerSecond float64
	RateLimitBurst     int
}

const defaultSystemInstructions = `You are a document assistant. You help users understand the documents they upload, analyze data, draft and reply to emails, and answer questions grounded in the uploaded content. Prefer the provided document context over general knowledge when they conflict, and say so when the context is insufficient.`

// Load reads configuration from the environment, after loading an optional
// .env file. Missing keys fall back to usable defaults.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIPort:  envStr("API_PORT", "8080"),
		LogLevel: envStr("LOG_LEVEL", "info"),

		ChatBaseURL:     envStr("CHAT_BASE_URL", "https://openrouter.ai/api/v1"),
		ChatAPIKey:      envStr("CHAT_API_KEY", ""),
		ChatAppName:     envStr("CHAT_APP_NAME", "docchat"),
		ChatReferer:     envStr("CHAT_REFERER", "http://localhost:8080"),
		ChatMaxTokens:   envInt("CHAT_MAX_TOKENS", 2000),
		ChatTemperature: envFloat("CHAT_TEMPERATURE", 0.7),
		DefaultModel:    envStr("DEFAULT_MODEL", "anthropic/claude-3-haiku"),
		ModelCatalog: envList("MODEL_CATALOG", []string{
			"anthropic/claude-3-haiku",
			"anthropic/claude-3-sonnet",
			"openai/gpt-4-turbo-preview",
			"openai/gpt-3.5-turbo",
			"meta-llama/llama-2-70b-chat",
			"google/gemini-pro",
		}),

		OCRBaseURL:       envStr("OCR_BASE_URL", "http://localhost:11434"),
		OCRModel:         envStr("OCR_MODEL", "llava:13b"),
		OCRMinTextLength: envInt("OCR_MIN_TEXT_LENGTH", 2),

		SystemInstructions: envStr("SYSTEM_INSTRUCTIONS", defaultSystemInstructions),

		PromptBudget:    envInt("PROMPT_BUDGET", 8000),
		DocumentShare:   envFloat("BUDGET_DOCUMENT_SHARE", 0.65),
		MessageOverhead: envInt("BUDGET_MESSAGE_OVERHEAD", 4),

		SessionIdleTTL:     envDuration("SESSION_IDLE_TTL", 30*time.Minute),
		IngestTimeout:      envDuration("INGEST_TIMEOUT", 2*time.Minute),
		ExtractionWorkers:  envInt("EXTRACTION_WORKERS", 4),
		PDFMinTextDensity:  envInt("PDF_MIN_TEXT_DENSITY", 32),
		MaxUploadBytes:     envInt64("MAX_UPLOAD_BYTES", 50*1024*1024),
		RateLimitPerSecond: envFloat("RATE_LIMIT_PER_SECOND", 10),
		RateLimitBurst:     envInt("RATE_LIMIT_BURST", 20),
	}
}

func envStr(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
