package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseURL       string
	JustTCGAPIKey     string
	TCGCodexAPIKey    string
	CardTraderAPIKey  string
	SquareAccessToken string
	SquareLocationID  string
	LookupInterval    time.Duration
	Port              string
	Environment       string
}

func Load() *Config {
	return &Config{
		DatabaseURL:       getEnv("DATABASE_URL", "cardshop.db"),
		JustTCGAPIKey:     getEnv("JUSTTCG_API_KEY", ""),
		TCGCodexAPIKey:    getEnv("TCGCODEX_API_KEY", ""),
		CardTraderAPIKey:  getEnv("CARDTRADER_API_KEY", ""),
		SquareAccessToken: getEnv("SQUARE_ACCESS_TOKEN", ""),
		SquareLocationID:  getEnv("SQUARE_LOCATION_ID", ""),
		LookupInterval:    getDurationEnv("LOOKUP_INTERVAL_SECONDS", 6*time.Second),
		Port:              getEnv("PORT", "8080"),
		Environment:       getEnv("ENVIRONMENT", "development"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv reads a whole number of seconds and returns the
// scaled duration.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return defaultValue
}
