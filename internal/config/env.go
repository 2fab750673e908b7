package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func init() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()
}

type Config struct {
	// Required
	LineChannelSecret string
	LineChannelToken  string
	LLMAPIKey         string

	// Optional with defaults
	AllowedIDs       []string
	LLMProvider      string
	LLMModel         string
	LLMBaseURL       string
	LLMTemperature   float64
	LLMMaxTokens     int
	LineAPIEndpoint  string
	DBPath           string
	HTTPPort         int
	PublicBaseURL    string
	HistorySize      int
	HistoryRetention time.Duration
	CalendarFileTTL  time.Duration
	SweepSchedule    string
	MaxMessageChars  int
	WorkerCount      int
	RedisAddr        string
	RedisPassword    string
	RedisDB          int
	LogLevel         string
	DevMode          bool
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ALFRED_LLM_PROVIDER", "anthropic")
	v.SetDefault("ALFRED_LLM_TEMPERATURE", 0.7)
	v.SetDefault("ALFRED_LLM_MAX_TOKENS", 4096)
	v.SetDefault("ALFRED_DB_PATH", "./alfred.db")
	v.SetDefault("ALFRED_HTTP_PORT", 8080)
	v.SetDefault("ALFRED_HISTORY_SIZE", 20)
	v.SetDefault("ALFRED_HISTORY_RETENTION", "720h")
	v.SetDefault("ALFRED_CALENDAR_FILE_TTL", "24h")
	v.SetDefault("ALFRED_SWEEP_SCHEDULE", "@every 1h")
	v.SetDefault("ALFRED_MAX_MESSAGE_CHARS", 4500)
	v.SetDefault("ALFRED_WORKER_COUNT", 2)
	v.SetDefault("ALFRED_REDIS_DB", 0)
	v.SetDefault("ALFRED_LOG_LEVEL", "info")
	v.SetDefault("ALFRED_DEV_MODE", false)
	return v
}

func LoadFromEnv() *Config {
	v := newViper()
	provider := strings.ToLower(strings.TrimSpace(v.GetString("ALFRED_LLM_PROVIDER")))
	port := v.GetInt("ALFRED_HTTP_PORT")

	cfg := &Config{
		// Required
		LineChannelSecret: v.GetString("LINE_CHANNEL_SECRET"),
		LineChannelToken:  v.GetString("LINE_CHANNEL_ACCESS_TOKEN"),
		LLMAPIKey:         apiKeyFor(v, provider),

		// Optional with defaults
		AllowedIDs:       splitList(v.GetString("ALFRED_ALLOWED_IDS")),
		LLMProvider:      provider,
		LLMModel:         v.GetString("ALFRED_LLM_MODEL"),
		LLMBaseURL:       v.GetString("ALFRED_LLM_BASE_URL"),
		LLMTemperature:   v.GetFloat64("ALFRED_LLM_TEMPERATURE"),
		LLMMaxTokens:     v.GetInt("ALFRED_LLM_MAX_TOKENS"),
		LineAPIEndpoint:  v.GetString("LINE_API_ENDPOINT"),
		DBPath:           v.GetString("ALFRED_DB_PATH"),
		HTTPPort:         port,
		PublicBaseURL:    strings.TrimRight(v.GetString("ALFRED_PUBLIC_BASE_URL"), "/"),
		HistorySize:      v.GetInt("ALFRED_HISTORY_SIZE"),
		HistoryRetention: v.GetDuration("ALFRED_HISTORY_RETENTION"),
		CalendarFileTTL:  v.GetDuration("ALFRED_CALENDAR_FILE_TTL"),
		SweepSchedule:    v.GetString("ALFRED_SWEEP_SCHEDULE"),
		MaxMessageChars:  v.GetInt("ALFRED_MAX_MESSAGE_CHARS"),
		WorkerCount:      v.GetInt("ALFRED_WORKER_COUNT"),
		RedisAddr:        v.GetString("ALFRED_REDIS_ADDR"),
		RedisPassword:    v.GetString("ALFRED_REDIS_PASSWORD"),
		RedisDB:          v.GetInt("ALFRED_REDIS_DB"),
		LogLevel:         v.GetString("ALFRED_LOG_LEVEL"),
		DevMode:          v.GetBool("ALFRED_DEV_MODE"),
	}

	if cfg.PublicBaseURL == "" {
		cfg.PublicBaseURL = fmt.Sprintf("http://localhost:%d", port)
	}

	return cfg
}

// Validate reports missing required settings.
func (c *Config) Validate() error {
	var errs []error
	if c.LineChannelSecret == "" {
		errs = append(errs, errors.New("LINE_CHANNEL_SECRET is required"))
	}
	if c.LineChannelToken == "" {
		errs = append(errs, errors.New("LINE_CHANNEL_ACCESS_TOKEN is required"))
	}
	if c.LLMAPIKey == "" {
		errs = append(errs, fmt.Errorf("an API key for LLM provider %q is required", c.LLMProvider))
	}
	if c.HTTPPort <= 0 {
		errs = append(errs, fmt.Errorf("invalid ALFRED_HTTP_PORT %d", c.HTTPPort))
	}
	return errors.Join(errs...)
}

func apiKeyFor(v *viper.Viper, provider string) string {
	switch provider {
	case "openai":
		return v.GetString("OPENAI_API_KEY")
	case "gemini":
		return v.GetString("GEMINI_API_KEY")
	default:
		return v.GetString("ANTHROPIC_API_KEY")
	}
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
