package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	AppName     = "relist"
	EnvFileName = "config.env"
)

// Config holds the service configuration read from the environment.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string
	// Production switches the HTTP framework to release mode.
	Production bool
	// DBPath is the SQLite database file path.
	DBPath string
	// GeminiAPIKey enables the AI analysis tiers. When empty the service
	// still runs, producing template-default listings only.
	GeminiAPIKey string
	// PriceSearchURL is the comparable-listing search API base URL. When
	// empty, price search is disabled and category baselines are used.
	PriceSearchURL string
	// VisionRPS throttles outbound AI requests per second.
	VisionRPS float64
	// VisionBurst is the AI request burst allowance.
	VisionBurst int
}

// LoadEnvFile loads environment variables from the config file in the user's
// config directory. Errors are ignored since the file may not exist.
func LoadEnvFile() {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return
	}
	configPath := filepath.Join(configBase, AppName, EnvFileName)
	_ = godotenv.Load(configPath)
}

// Load reads the configuration from the environment, applying defaults.
func Load() Config {
	cfg := Config{
		Addr:           getenvDefault("RELIST_ADDR", ":8080"),
		Production:     os.Getenv("RELIST_ENV") == "production",
		DBPath:         getenvDefault("RELIST_DB_PATH", "relist.db"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		PriceSearchURL: os.Getenv("PRICE_SEARCH_URL"),
		VisionRPS:      getenvFloat("VISION_RPS", 1),
		VisionBurst:    getenvInt("VISION_BURST", 2),
	}
	return cfg
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
