package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key-123456")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Server.ImportTimeout)
	assert.Equal(t, ProviderGemini, cfg.Model.Provider)
	assert.Equal(t, "test-key-123456", cfg.Model.APIKey)
	assert.Equal(t, "gemini-1.5-flash", cfg.Model.Name)
	assert.Equal(t, 15*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, int64(5*1024*1024), cfg.Fetch.MaxBodyBytes)
	assert.Equal(t, "", cfg.Database.URL)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, uint(800), cfg.Media.Width)
	assert.Equal(t, 2, cfg.Import.DefaultServings)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestFromViper_EnvOverrides(t *testing.T) {
	t.Setenv("APP_MODEL_PROVIDER", "local")
	t.Setenv("APP_LOCAL_LLM_BASE_URL", "http://llm:1234/v1")
	t.Setenv("DATABASE_URL", "postgres://localhost/recipes")
	t.Setenv("APP_CACHE_ENABLED", "true")
	t.Setenv("APP_CACHE_TTL", "10m")
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_MODE", "json")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ProviderLocal, cfg.Model.Provider)
	assert.Equal(t, "http://llm:1234/v1", cfg.LocalLLM.BaseURL)
	assert.Equal(t, "postgres://localhost/recipes", cfg.Database.URL)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "json", cfg.LogMode)
}

func TestFromViper_Validation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"gemini without key", map[string]string{"GEMINI_API_KEY": ""}},
		{"unknown provider", map[string]string{"APP_MODEL_PROVIDER": "openai"}},
		{"bad port", map[string]string{"GEMINI_API_KEY": "k", "PORT": "0"}},
		{"zero servings", map[string]string{"GEMINI_API_KEY": "k", "APP_IMPORT_DEFAULT_SERVINGS": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromViper(viper.New())
			assert.Error(t, err)
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", MaskAPIKey("short"))
	assert.Equal(t, "abcd...6789", MaskAPIKey("abcdef0123456789"))
}
