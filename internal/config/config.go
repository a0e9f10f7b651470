package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Keys       APIKeys
	Transcript TranscriptConfig
	Ai         AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	TurnGuard          string // "memory" or "redis"
	OtelEnabled        bool
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	SessionKeySecret string
	JWTSecret        string
	HuggingFace      string
}

type TranscriptConfig struct {
	Dir           string
	EtlTopic      string
	EtlTrigger    string // "gochannel" or "nats"
	SweepSchedule string
}

type AIConfig struct {
	LLMProvider   string // "ollama" or "huggingface"
	LLMModel      string // e.g. "llama3", "qwen2.5"
	LLMBaseURL    string
	OllamaBaseURL string
	SystemPrompt  string
	TopK          int
	Temperature   float64
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			TurnGuard:          getEnv("TURN_GUARD", "memory"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			SessionKeySecret: getEnv("SESSION_KEY_SECRET", ""),
			JWTSecret:        getEnv("JWT_SECRET", ""),
			HuggingFace:      getEnv("HUGGINGFACE_API_KEY", ""),
		},
		Transcript: TranscriptConfig{
			Dir:           getEnv("TRANSCRIPT_DIR", "transcripts"),
			EtlTopic:      getEnv("ETL_TOPIC", "TRANSCRIPT_COMPLETED"),
			EtlTrigger:    getEnv("ETL_TRIGGER", "gochannel"),
			SweepSchedule: getEnv("ETL_SWEEP_SCHEDULE", "@every 10m"),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:      getEnv("LLM_MODEL", "llama3"),
			LLMBaseURL:    getEnv("LLM_BASE_URL", ""),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			SystemPrompt:  getEnv("SYSTEM_PROMPT", DefaultSystemPrompt),
			TopK:          getEnvAsInt("TOP_K", 3),
			Temperature:   getEnvAsFloat("LLM_TEMPERATURE", 0.1),
		},
	}
}

// IsProduction reports whether the service runs with GO_ENV=production.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// LLMURL returns the endpoint of the configured provider.
func (c *Config) LLMURL() string {
	if c.Ai.LLMBaseURL != "" {
		return c.Ai.LLMBaseURL
	}
	if c.Ai.LLMProvider == "ollama" {
		return c.Ai.OllamaBaseURL
	}
	return ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
