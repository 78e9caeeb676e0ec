// Package config provides configuration for the triage assistant.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the assistant configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Conversation log database
	DatabaseURL string

	// Session handling
	SessionTimeout time.Duration

	// Optional LLM delegation for open-ended intents
	OpenAIAPIKey string
	OpenAIModel  string

	// Logging
	LogLevel string
}

// Load loads configuration from the environment, reading a .env file first
// when one is present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		HTTPPort:       getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:    getEnv("DATABASE_URL", "file:conversations.db?cache=shared&mode=rwc"),
		SessionTimeout: time.Duration(getEnvInt("SESSION_TIMEOUT_MINUTES", 120)) * time.Minute,
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
