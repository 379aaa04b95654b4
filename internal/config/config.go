package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Store    StoreConfig
	Ai       AIConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	TitleTopicName     string
}

type DatabaseConfig struct {
	Connection string
}

// StoreConfig selects where sessions live. "postgres" and "redis" survive
// restarts, "memory" does not.
type StoreConfig struct {
	Driver          string // "postgres", "redis" or "memory"
	RedisURL        string
	SessionTTLHours int
}

type AIConfig struct {
	LLMProvider       string // "gemini", "ollama" or "huggingface"
	LLMModel          string // e.g. "gemini-1.5-flash", "llama3"
	OllamaBaseURL     string
	GoogleGeminiKey   string
	HuggingFaceAPIKey string
	AuditLogPath      string
}

// Load reads the .env file when present and falls back to the process
// environment. Every knob has a default except the Postgres DSN.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: no .env file, reading the process environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			TitleTopicName:     getEnv("SESSION_TITLE_TOPIC_NAME", "DERIVE_SESSION_TITLE"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Store: StoreConfig{
			Driver:          getEnv("SESSION_STORE", "postgres"),
			RedisURL:        getEnv("REDIS_URL", "redis://localhost:6379"),
			SessionTTLHours: getEnvAsInt("SESSION_TTL_HOURS", 24),
		},
		Ai: AIConfig{
			LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:          getEnv("LLM_MODEL", ""),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			GoogleGeminiKey:   getEnv("GOOGLE_GEMINI_API_KEY", ""),
			HuggingFaceAPIKey: getEnv("HUGGINGFACE_API_KEY", ""),
			AuditLogPath:      getEnv("LLM_AUDIT_LOG_PATH", "logs/llm.log"),
		},
	}
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
