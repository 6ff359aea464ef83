package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Session store backends
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Triage requests per minute per client IP
const defaultTriageRateLimit = 30

type Config struct {
	App       AppConfig
	Session   SessionConfig
	Redis     RedisConfig
	Reasoning ReasoningConfig
	Triage    TriageConfig
	Metrics   MetricsConfig
	CORS      CORSConfig
}

type AppConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type SessionConfig struct {
	Store  string
	TTL    time.Duration
	Secret string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// ReasoningConfig points at the chat-completions backend
type ReasoningConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

type TriageConfig struct {
	RateLimit int // requests per minute per client IP
}

type MetricsConfig struct {
	Namespace string
}

type CORSConfig struct {
	AllowedOrigins []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SESSION_STORE", SessionStoreMemory)
	v.SetDefault("SESSION_TTL", "4h")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("OPENAI_TEMPERATURE", 0.2)
	v.SetDefault("OPENAI_TIMEOUT", "60s")
	v.SetDefault("TRIAGE_RATE_LIMIT", defaultTriageRateLimit)
	v.SetDefault("METRICS_NAMESPACE", "ae_triage")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
}

// LoadConfig reads .env when present, then the environment.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	sessionTTL, err := time.ParseDuration(v.GetString("SESSION_TTL"))
	if err != nil {
		sessionTTL = 4 * time.Hour
	}

	timeout, err := time.ParseDuration(v.GetString("OPENAI_TIMEOUT"))
	if err != nil {
		timeout = 60 * time.Second
	}

	rateLimit := v.GetInt("TRIAGE_RATE_LIMIT")
	if rateLimit <= 0 {
		rateLimit = defaultTriageRateLimit
	}

	config := &Config{
		App: AppConfig{
			Port:     v.GetString("APP_PORT"),
			Env:      v.GetString("APP_ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Session: SessionConfig{
			Store:  v.GetString("SESSION_STORE"),
			TTL:    sessionTTL,
			Secret: v.GetString("SESSION_SECRET"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Reasoning: ReasoningConfig{
			APIKey:      v.GetString("OPENAI_API_KEY"),
			BaseURL:     v.GetString("OPENAI_BASE_URL"),
			Model:       v.GetString("OPENAI_MODEL"),
			Temperature: v.GetFloat64("OPENAI_TEMPERATURE"),
			Timeout:     timeout,
		},
		Triage: TriageConfig{
			RateLimit: rateLimit,
		},
		Metrics: MetricsConfig{
			Namespace: v.GetString("METRICS_NAMESPACE"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
	}

	if config.Session.Store != SessionStoreMemory && config.Session.Store != SessionStoreRedis {
		return nil, ErrUnknownSessionStore
	}
	if config.Session.Secret == "" && config.App.Env == "production" {
		return nil, ErrMissingSessionSecret
	}

	return config, nil
}

var (
	ErrUnknownSessionStore  = errors.New("SESSION_STORE must be memory or redis")
	ErrMissingSessionSecret = errors.New("SESSION_SECRET is required in production")
)

// splitList parses a comma separated env value, dropping empty items.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
