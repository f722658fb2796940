// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds every knob the server reads at startup.
type Config struct {
	HTTPAddr string `env:"EVENTHIVE_HTTP_ADDR" envDefault:":8080"`

	DBHost     string `env:"EVENTHIVE_DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"EVENTHIVE_DB_PORT" envDefault:"5432"`
	DBUser     string `env:"EVENTHIVE_DB_USER" envDefault:"postgres"`
	DBPassword string `env:"EVENTHIVE_DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"EVENTHIVE_DB_NAME" envDefault:"eventhive"`
	DBSSLMode  string `env:"EVENTHIVE_DB_SSLMODE" envDefault:"disable"`

	TokenSecret string `env:"EVENTHIVE_TOKEN_SECRET,required,notEmpty"`

	TickInterval   time.Duration `env:"EVENTHIVE_TICK_INTERVAL" envDefault:"1m"`
	ReminderWindow time.Duration `env:"EVENTHIVE_REMINDER_WINDOW" envDefault:"30m"`

	SMTPHost string `env:"EVENTHIVE_SMTP_HOST"`
	SMTPPort string `env:"EVENTHIVE_SMTP_PORT" envDefault:"587"`
	SMTPUser string `env:"EVENTHIVE_SMTP_USER"`
	SMTPPass string `env:"EVENTHIVE_SMTP_PASS"`
	SMTPFrom string `env:"EVENTHIVE_SMTP_FROM"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.TickInterval <= 0 {
		return Config{}, fmt.Errorf("EVENTHIVE_TICK_INTERVAL must be positive")
	}
	if cfg.ReminderWindow <= 0 {
		return Config{}, fmt.Errorf("EVENTHIVE_REMINDER_WINDOW must be positive")
	}
	return cfg, nil
}

// DSN builds a libpq-compatible connection string.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}
