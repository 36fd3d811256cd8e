package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	GroqAPIKey  string
	GroqModel   string
	DatabaseURL string
	HTTPPort    string
	LogLevel    string
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		GroqAPIKey:  getEnv("GROQ_API_KEY", ""),
		GroqModel:   getEnv("GROQ_MODEL", "llama3-8b-8192"),
		DatabaseURL: getEnv("DATABASE_URL", "support_chat.db"),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),
	}

	// A missing key is not fatal: the responder falls back to its rule-based
	// answers instead of refusing to start.
	if AppConfig.GroqAPIKey == "" {
		log.Println("GROQ_API_KEY not set, LLM completions disabled; rule-based fallback will answer all chats")
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
