// Package config loads process configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const DefaultEnvFile = ".env"

const (
	EnvironmentProduction  = "production"
	EnvironmentDevelopment = "development"

	MailTransportSMTP     = "smtp"
	MailTransportSendGrid = "sendgrid"
)

// Config holds every setting the binaries read.
type Config struct {
	Environment string `mapstructure:"ENVIRONMENT"`
	Port        string `mapstructure:"PORT"`

	DatabaseURL       string        `mapstructure:"DB_CONNECTION_STRING"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME"`

	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	TokenTTL       time.Duration `mapstructure:"TOKEN_TTL"`
	BcryptCost     int           `mapstructure:"BCRYPT_COST"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogFile  string `mapstructure:"LOG_FILE"`

	MailTransport  string `mapstructure:"MAIL_TRANSPORT"`
	SMTPHost       string `mapstructure:"SMTP_HOST"`
	SMTPPort       int    `mapstructure:"SMTP_PORT"`
	SMTPUsername   string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword   string `mapstructure:"SMTP_PASSWORD"`
	MailFromEmail  string `mapstructure:"MAIL_FROM_EMAIL"`
	MailFromName   string `mapstructure:"MAIL_FROM_NAME"`
	SendGridAPIKey string `mapstructure:"SENDGRID_API_KEY"`

	NotifyTimezone string        `mapstructure:"NOTIFY_TIMEZONE"`
	SendTimeout    time.Duration `mapstructure:"SEND_TIMEOUT"`
	SchedulerToken string        `mapstructure:"SCHEDULER_TOKEN"`
}

var defaults = map[string]any{
	"ENVIRONMENT":          EnvironmentProduction,
	"PORT":                 "8080",
	"DB_CONNECTION_STRING": "",
	"DB_MAX_OPEN_CONNS":    25,
	"DB_MAX_IDLE_CONNS":    25,
	"DB_CONN_MAX_LIFETIME": "5m",
	"JWT_SECRET":           "",
	"TOKEN_TTL":            "30m",
	"BCRYPT_COST":          bcrypt.DefaultCost,
	"REQUEST_TIMEOUT":      "30s",
	"LOG_LEVEL":            "info",
	"LOG_FILE":             "",
	"MAIL_TRANSPORT":       MailTransportSMTP,
	"SMTP_HOST":            "",
	"SMTP_PORT":            587,
	"SMTP_USERNAME":        "",
	"SMTP_PASSWORD":        "",
	"MAIL_FROM_EMAIL":      "",
	"MAIL_FROM_NAME":       "MyList",
	"SENDGRID_API_KEY":     "",
	"NOTIFY_TIMEZONE":      "UTC",
	"SEND_TIMEOUT":         "30s",
	"SCHEDULER_TOKEN":      "",
}

// Load reads envFile into the process environment when it exists, then
// resolves every key from the environment with defaults. Variables already
// set in the environment win over the file.
func Load(envFile string) (Config, error) {
	var cfg Config

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to decode configuration: %w", err)
	}
	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	cfg.MailTransport = strings.ToLower(strings.TrimSpace(cfg.MailTransport))
	return cfg, nil
}

// IsDevelopment reports whether ENVIRONMENT is development.
func (c Config) IsDevelopment() bool {
	return c.Environment == EnvironmentDevelopment
}

// Location resolves NOTIFY_TIMEZONE.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.NotifyTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_TIMEZONE %q: %w", c.NotifyTimezone, err)
	}
	return loc, nil
}

// ValidateServer checks the settings the HTTP API needs.
func (c Config) ValidateServer() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DB_CONNECTION_STRING is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", c.TokenTTL))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d",
			bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout))
	}
	return errors.Join(errs...)
}

// ValidateNotifier checks the settings the reminder job needs.
func (c Config) ValidateNotifier() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DB_CONNECTION_STRING is required"))
	}
	if c.MailFromEmail == "" {
		errs = append(errs, errors.New("MAIL_FROM_EMAIL is required"))
	}
	switch c.MailTransport {
	case MailTransportSMTP:
		if c.SMTPHost == "" {
			errs = append(errs, errors.New("SMTP_HOST is required when MAIL_TRANSPORT is smtp"))
		}
		if c.SMTPPort <= 0 {
			errs = append(errs, fmt.Errorf("SMTP_PORT must be positive, got %d", c.SMTPPort))
		}
	case MailTransportSendGrid:
		if c.SendGridAPIKey == "" {
			errs = append(errs, errors.New("SENDGRID_API_KEY is required when MAIL_TRANSPORT is sendgrid"))
		}
	default:
		errs = append(errs, fmt.Errorf("MAIL_TRANSPORT must be %q or %q, got %q",
			MailTransportSMTP, MailTransportSendGrid, c.MailTransport))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if c.SendTimeout <= 0 {
		errs = append(errs, fmt.Errorf("SEND_TIMEOUT must be positive, got %s", c.SendTimeout))
	}
	return errors.Join(errs...)
}
