package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"course_miniapp/initdata"
)

type Config struct {
	Environment string
	ServerPort  string

	APIBaseURL     string
	UseMocks       bool
	RequestTimeout time.Duration
	AllowedOrigins []string

	StorageDir      string
	StorageInMemory bool

	TelegramInitData  string
	TelegramLaunchURL string

	// TelegramInitDataUnsafe is the structured init data, serialized only
	// when neither the launch URL nor the raw value carries any.
	TelegramInitDataUnsafe *initdata.WebAppInitData

	LogLevel  string
	LogFormat string

	MockAPIPort      string
	MockJWTSecret    string
	TelegramBotToken string
}

func Load() (*Config, error) {
	useMocks, err := getEnvBool("USE_MOCKS", false)
	if err != nil {
		return nil, err
	}
	inMemory, err := getEnvBool("STORAGE_IN_MEMORY", false)
	if err != nil {
		return nil, err
	}
	timeout, err := getEnvDuration("REQUEST_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}
	var structured *initdata.WebAppInitData
	if err := getEnvJSON("TELEGRAM_INIT_DATA_UNSAFE", &structured); err != nil {
		return nil, err
	}

	return &Config{
		Environment:            getEnv("ENVIRONMENT", "development"),
		ServerPort:             getEnv("PORT", "8080"),
		APIBaseURL:             strings.TrimSuffix(getEnv("API_BASE_URL", "http://localhost:8000/api"), "/"),
		UseMocks:               useMocks,
		RequestTimeout:         timeout,
		AllowedOrigins:         splitList(getEnv("ALLOWED_ORIGINS", "*")),
		StorageDir:             getEnv("STORAGE_DIR", ".miniapp-data"),
		StorageInMemory:        inMemory,
		TelegramInitData:       os.Getenv("TELEGRAM_INIT_DATA"),
		TelegramLaunchURL:      os.Getenv("TELEGRAM_LAUNCH_URL"),
		TelegramInitDataUnsafe: structured,
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		LogFormat:              getEnv("LOG_FORMAT", "text"),
		MockAPIPort:            getEnv("MOCK_API_PORT", "8000"),
		MockJWTSecret:          getEnv("MOCK_JWT_SECRET", "dev-secret"),
		TelegramBotToken:       os.Getenv("TELEGRAM_BOT_TOKEN"),
	}, nil
}

// IsProduction reports whether gin should run in release mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

// getEnvJSON decodes the variable into dst and leaves dst untouched when it
// is unset.
func getEnvJSON(key string, dst any) error {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(value), dst); err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
