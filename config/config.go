package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	ServerPort string

	// AI scoring
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Headless browser
	Headless     bool
	ChromePath   string
	FetchTimeout time.Duration

	// Rate limiting
	DailySearchLimit  int
	SearchesPerSecond float64
	SearchBurst       int
}

// Load loads configuration from environment variables
func Load() *Config {
	// Try to load .env file (optional for local development)
	_ = godotenv.Load()

	config := &Config{
		ServerPort: getEnv("SERVER_PORT", "3001"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),

		Headless:     getEnvBool("HEADLESS", true),
		ChromePath:   os.Getenv("CHROME_PATH"),
		FetchTimeout: getEnvDuration("FETCH_TIMEOUT", 90*time.Second),

		DailySearchLimit:  getEnvInt("DAILY_SEARCH_LIMIT", 200),
		SearchesPerSecond: getEnvFloat("SEARCHES_PER_SECOND", 1),
		SearchBurst:       getEnvInt("SEARCH_BURST", 3),
	}

	if config.OpenAIAPIKey == "" {
		log.Println("WARNING: OPENAI_API_KEY not set, AI scoring will fall back to the default result")
	}

	return config
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("WARNING: invalid %s value %q, using default", key, value)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("WARNING: invalid %s value %q, using default", key, value)
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("WARNING: invalid %s value %q, using default", key, value)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("WARNING: invalid %s value %q, using default", key, value)
		return defaultValue
	}
	return parsed
}
