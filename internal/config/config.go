package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Analyzer modes selectable through ANALYZER_MODE.
const (
	AnalyzerLocal  = "local"
	AnalyzerRemote = "remote"
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	AppEnv        string `env:"APP_ENV" default:"development"`
	Port          string `env:"PORT" default:"8080"`
	DatabaseURL   string `env:"DATABASE_URL"`
	SQLitePath    string `env:"SQLITE_PATH" default:"mindwell.db"`
	LocalTimezone string `env:"LOCAL_TIMEZONE" default:"Local"`
	LogLevel      string `env:"LOG_LEVEL" default:"info"`
	LogFormat     string `env:"LOG_FORMAT" default:"text"`

	// JWTSecret verifies access tokens issued by the identity provider.
	JWTSecret string `env:"JWT_SECRET"`

	AnalyzerMode      string        `env:"ANALYZER_MODE" default:"local"`
	LexiconFile       string        `env:"LEXICON_FILE"`
	ChatResponsesFile string        `env:"CHAT_RESPONSES_FILE"`
	AIGatewayURL      string        `env:"AI_GATEWAY_URL" default:"https://ai.gateway.lovable.dev/v1"`
	AIGatewayAPIKey   string        `env:"AI_GATEWAY_API_KEY"`
	AIModel           string        `env:"AI_MODEL" default:"google/gemini-3-flash-preview"`
	AITimeout         time.Duration `env:"AI_TIMEOUT" default:"30s"`

	PredictionURL     string        `env:"PREDICTION_URL"`
	PredictionTimeout time.Duration `env:"PREDICTION_TIMEOUT" default:"15s"`

	TwilioAccountSID     string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken      string `env:"TWILIO_AUTH_TOKEN"`
	TwilioWhatsAppNumber string `env:"TWILIO_WHATSAPP_NUMBER"`

	SMTPHost     string        `env:"SMTP_HOST"`
	SMTPPort     int           `env:"SMTP_PORT" default:"587"`
	SMTPUsername string        `env:"SMTP_USERNAME"`
	SMTPPassword string        `env:"SMTP_PASSWORD"`
	SMTPFrom     string        `env:"SMTP_FROM"`
	SMTPTimeout  time.Duration `env:"SMTP_TIMEOUT" default:"15s"`

	RedisURL         string `env:"REDIS_URL"`
	ReminderSchedule string `env:"REMINDER_SCHEDULE" default:"@every 1m"`

	RateLimitPerSecond float64 `env:"RATE_LIMIT_PER_SECOND" default:"5"`
	RateLimitBurst     int     `env:"RATE_LIMIT_BURST" default:"10"`
}

// Load reads configuration values and prepares defaults where applicable.
func Load() (*Config, error) {
	cfg, err := Parse()
	if err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse reads configuration without validating it. Offline commands that only
// touch the database use it.
func Parse() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("config: no .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}

	switch cfg.AnalyzerMode {
	case AnalyzerLocal:
	case AnalyzerRemote:
		if cfg.AIGatewayAPIKey == "" {
			return errors.New("AI_GATEWAY_API_KEY is required when ANALYZER_MODE=remote")
		}
	default:
		return fmt.Errorf("ANALYZER_MODE must be %q or %q, got %q", AnalyzerLocal, AnalyzerRemote, cfg.AnalyzerMode)
	}

	if cfg.RateLimitPerSecond <= 0 || cfg.RateLimitBurst <= 0 {
		return errors.New("RATE_LIMIT_PER_SECOND and RATE_LIMIT_BURST must be positive")
	}
	return nil
}

// Location resolves LOCAL_TIMEZONE, falling back to the system zone when it is invalid.
func (c *Config) Location() *time.Location {
	location, err := time.LoadLocation(c.LocalTimezone)
	if err != nil {
		slog.Warn("config: invalid LOCAL_TIMEZONE, defaulting to system local", "timezone", c.LocalTimezone, "error", err)
		return time.Local
	}
	return location
}

// WhatsAppEnabled reports whether Twilio credentials are present.
func (c *Config) WhatsAppEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioWhatsAppNumber != ""
}

// EmailEnabled reports whether an SMTP relay is configured.
func (c *Config) EmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}
