// Package config loads application settings from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Model providers.
const (
	ProviderGemini = "gemini"
	ProviderLocal  = "local"
)

// Config is the application configuration.
type Config struct {
	App        AppConfig      `mapstructure:"app"`
	Server     ServerConfig   `mapstructure:"server"`
	LogLevel   string         `mapstructure:"log_level"`
	LogMode    string         `mapstructure:"log_mode"`
	Model      ModelConfig    `mapstructure:"model"`
	LocalLLM   LocalLLMConfig `mapstructure:"local_llm"`
	Fetch      FetchConfig    `mapstructure:"fetch"`
	Database   DatabaseConfig `mapstructure:"database"`
	Cache      CacheConfig    `mapstructure:"cache"`
	Media      MediaConfig    `mapstructure:"media"`
	Heuristics string         `mapstructure:"heuristics"`
	Import     ImportConfig   `mapstructure:"import"`
}

// AppConfig describes the running application.
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	ImportTimeout  time.Duration `mapstructure:"import_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// ModelConfig selects and configures the generative model.
type ModelConfig struct {
	Provider string        `mapstructure:"provider"`
	APIKey   string        `mapstructure:"api_key"`
	Name     string        `mapstructure:"name"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// LocalLLMConfig points at an OpenAI-compatible server.
type LocalLLMConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// FetchConfig configures page downloads.
type FetchConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// DatabaseConfig configures persistence. An empty URL selects the in-memory store.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

// CacheConfig configures the Redis recipe cache.
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// MediaConfig configures thumbnails.
type MediaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
	Width   uint   `mapstructure:"width"`
}

// ImportConfig tunes the parse pipeline.
type ImportConfig struct {
	DefaultServings int `mapstructure:"default_servings"`
}

// Load reads .env (if present) and the environment into a validated Config.
func Load() (*Config, error) {
	// A missing .env is fine; a malformed one is not.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromViper(viper.New())
}

// FromViper resolves the configuration from v after applying defaults and
// environment bindings.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("model.api_key", "GEMINI_API_KEY", "APP_MODEL_API_KEY")
	v.BindEnv("database.url", "DATABASE_URL", "APP_DATABASE_URL")
	v.BindEnv("cache.addr", "REDIS_ADDR", "APP_CACHE_ADDR")
	v.BindEnv("log_level", "LOG_LEVEL", "APP_LOG_LEVEL")
	v.BindEnv("log_mode", "LOG_MODE", "APP_LOG_MODE")
	v.BindEnv("server.port", "PORT", "APP_SERVER_PORT")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "recipebox")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.import_timeout", "45s")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:8081"})

	v.SetDefault("log_level", "info")
	v.SetDefault("log_mode", "console")

	v.SetDefault("model.provider", ProviderGemini)
	v.SetDefault("model.name", "gemini-1.5-flash")
	v.SetDefault("model.timeout", "40s")

	v.SetDefault("local_llm.base_url", "http://localhost:1234/v1")
	v.SetDefault("local_llm.model", "gemma-3-12b-it")

	v.SetDefault("fetch.timeout", "15s")
	v.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; recipebox/1.0)")
	v.SetDefault("fetch.max_body_bytes", 5*1024*1024)

	v.SetDefault("database.url", "")

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("media.enabled", false)
	v.SetDefault("media.dir", "images")
	v.SetDefault("media.width", 800)

	v.SetDefault("heuristics", "")
	v.SetDefault("import.default_servings", 2)
}

func validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port is required")
	}
	if cfg.Server.ImportTimeout <= 0 {
		return fmt.Errorf("invalid import timeout")
	}

	switch cfg.Model.Provider {
	case ProviderGemini:
		if cfg.Model.APIKey == "" {
			return fmt.Errorf("model api key is required for the gemini provider")
		}
	case ProviderLocal:
		if cfg.LocalLLM.BaseURL == "" {
			return fmt.Errorf("local llm base url is required")
		}
	default:
		return fmt.Errorf("unknown model provider %q", cfg.Model.Provider)
	}
	if cfg.Model.Timeout <= 0 {
		return fmt.Errorf("invalid model timeout")
	}
	if cfg.Fetch.Timeout <= 0 {
		return fmt.Errorf("invalid fetch timeout")
	}
	if cfg.Cache.Enabled && cfg.Cache.TTL <= 0 {
		return fmt.Errorf("invalid cache ttl")
	}
	if cfg.Import.DefaultServings < 1 {
		return fmt.Errorf("invalid default servings")
	}
	return nil
}

// MaskAPIKey hides all but the first and last four characters of key.
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
