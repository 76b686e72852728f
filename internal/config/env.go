package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// envConfig holds the environment-driven settings of the application. The
// generation engine itself takes everything through explicit arguments; these
// values only seed the CLI defaults and the HTTP service.
type envConfig struct {
	APP_PORT            string
	LOG_FILE_PATH       string
	LOG_LEVEL           string
	TEMPLATE_DIR        string
	MAPPING_CONFIG_PATH string
	STRICT_MAPPINGS     bool
}

// DefaultEnvConfig is populated by LoadEnvConfig and read by bootstrap and
// the CLI.
var DefaultEnvConfig envConfig

// LoadEnvConfig loads a .env file when present and fills DefaultEnvConfig
// from the process environment. A missing .env file is not an error.
func LoadEnvConfig() error {
	// .env is optional; explicit environment variables always win.
	_ = godotenv.Load()

	DefaultEnvConfig = envConfig{
		APP_PORT:            getEnv("APP_PORT", "8080"),
		LOG_FILE_PATH:       getEnv("LOG_FILE_PATH", ""),
		LOG_LEVEL:           getEnv("LOG_LEVEL", "info"),
		TEMPLATE_DIR:        getEnv("TEMPLATE_DIR", "."),
		MAPPING_CONFIG_PATH: getEnv("MAPPING_CONFIG_PATH", "mapping_config.json"),
		STRICT_MAPPINGS:     getEnvBool("STRICT_MAPPINGS", false),
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
