package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve in minimal containers

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	TelegramToken       string  `env:"TELEGRAM_TOKEN,notEmpty"`
	DatabaseURL         string  `env:"DATABASE_URL,notEmpty"`
	OperatorTelegramIDs []int64 `env:"OPERATOR_TELEGRAM_IDS,notEmpty" envSeparator:","`
	LogLevel            string  `env:"LOG_LEVEL" envDefault:"info"`
	Environment         string  `env:"ENVIRONMENT" envDefault:"development"`
	Timezone            string  `env:"TIMEZONE" envDefault:"Asia/Baghdad"`

	CronSpecDailyReminders    string `env:"CRON_SPEC_DAILY_REMINDERS" envDefault:"0 10 * * *"`
	ScheduledRemindersEnabled bool   `env:"SCHEDULED_REMINDERS_ENABLED" envDefault:"false"`

	// Bulk pacing
	InterMessageDelay time.Duration `env:"INTER_MESSAGE_DELAY" envDefault:"15s"`
	RateLimitCooldown time.Duration `env:"RATE_LIMIT_COOLDOWN" envDefault:"60s"`
	RateLimitRetries  int           `env:"RATE_LIMIT_RETRIES" envDefault:"1"`
	TransientCooldown time.Duration `env:"TRANSIENT_COOLDOWN" envDefault:"2s"`

	// Gateway client
	GatewayRetryCooldown time.Duration `env:"GATEWAY_RETRY_COOLDOWN" envDefault:"5s"`
	GatewayRetryAttempts int           `env:"GATEWAY_RETRY_ATTEMPTS" envDefault:"2"`
	GatewayTimeout       time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"30s"`
	GatewayMaxRPS        float64       `env:"GATEWAY_MAX_RPS" envDefault:"0"`
	GatewayQueryKeyHosts []string      `env:"GATEWAY_QUERY_KEY_HOSTS" envDefault:"wasenderapi.com" envSeparator:","`
	DefaultCountryCode   string        `env:"DEFAULT_COUNTRY_CODE" envDefault:"964"`
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load does not override variables that are already set.
	_ = godotenv.Load()
	return parse(env.ToMap(os.Environ()))
}

func parse(environ map[string]string) (*AppConfig, error) {
	cfg := &AppConfig{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.Environment = strings.ToLower(cfg.Environment)
	for _, id := range cfg.OperatorTelegramIDs {
		if id <= 0 {
			return nil, fmt.Errorf("invalid OPERATOR_TELEGRAM_IDS entry: %d", id)
		}
	}
	if cfg.RateLimitRetries < 0 || cfg.GatewayRetryAttempts < 0 {
		return nil, fmt.Errorf("retry counts must not be negative")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	return cfg, nil
}

// Location returns the configured timezone.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsOperator reports whether the Telegram user may operate the bot.
func (c *AppConfig) IsOperator(telegramID int64) bool {
	for _, id := range c.OperatorTelegramIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}
