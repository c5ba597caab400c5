package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"ENVIRONMENT", "PORT", "API_BASE_URL", "USE_MOCKS", "REQUEST_TIMEOUT",
		"ALLOWED_ORIGINS", "STORAGE_DIR", "STORAGE_IN_MEMORY", "LOG_LEVEL",
		"TELEGRAM_INIT_DATA_UNSAFE",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "http://localhost:8000/api", cfg.APIBaseURL)
	assert.False(t, cfg.UseMocks)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, ".miniapp-data", cfg.StorageDir)
	assert.False(t, cfg.IsProduction())
	assert.Nil(t, cfg.TelegramInitDataUnsafe)
}

func TestLoadStructuredInitData(t *testing.T) {
	t.Setenv("TELEGRAM_INIT_DATA_UNSAFE", `{"query_id":"AAH","user":{"id":42,"first_name":"Ada","username":"ada"},"auth_date":1700000000,"hash":"abc"}`)

	cfg, err := Load()
	require.NoError(t, err)

	require.NotNil(t, cfg.TelegramInitDataUnsafe)
	assert.Equal(t, "AAH", cfg.TelegramInitDataUnsafe.QueryID)
	require.NotNil(t, cfg.TelegramInitDataUnsafe.User)
	assert.Equal(t, int64(42), cfg.TelegramInitDataUnsafe.User.ID)
	assert.Equal(t, int64(1700000000), cfg.TelegramInitDataUnsafe.AuthDate)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("API_BASE_URL", "https://api.example.com/v1/")
	t.Setenv("USE_MOCKS", "true")
	t.Setenv("REQUEST_TIMEOUT", "5s")
	t.Setenv("ALLOWED_ORIGINS", "https://web.telegram.org, https://example.com ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "https://api.example.com/v1", cfg.APIBaseURL)
	assert.True(t, cfg.UseMocks)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"https://web.telegram.org", "https://example.com"}, cfg.AllowedOrigins)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("bool", func(t *testing.T) {
		t.Setenv("USE_MOCKS", "maybe")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "USE_MOCKS")
	})
	t.Run("unsafe init data", func(t *testing.T) {
		t.Setenv("TELEGRAM_INIT_DATA_UNSAFE", "{not json")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TELEGRAM_INIT_DATA_UNSAFE")
	})
	t.Run("duration", func(t *testing.T) {
		t.Setenv("REQUEST_TIMEOUT", "soon")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "REQUEST_TIMEOUT")
	})
}
