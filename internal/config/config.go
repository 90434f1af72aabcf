package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the server
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Tutor    TutorConfig    `yaml:"tutor"`
	Logging  LoggingConfig  `yaml:"logging"`
	Seed     SeedConfig     `yaml:"seed"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	SecureCookies  bool     `yaml:"secure_cookies"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// PublicURL prefixes links in verification and reset mails.
	PublicURL string `yaml:"public_url"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, postgres
	DSN    string `yaml:"dsn"`
}

type AuthConfig struct {
	SessionTTL      time.Duration `yaml:"session_ttl"`
	TokenTTL        time.Duration `yaml:"token_ttl"`
	BcryptCost      int           `yaml:"bcrypt_cost"`
	ResendPerMinute int           `yaml:"resend_per_minute"`
}

type TutorConfig struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"api_key"`
	Model          string        `yaml:"model"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxQuestionLen int           `yaml:"max_question_len"`
	MaxHistory     int           `yaml:"max_history"`
	PerMinute      int           `yaml:"per_minute"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

type SeedConfig struct {
	// ExercisesPath overrides the embedded exercise catalog.
	ExercisesPath string `yaml:"exercises_path"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:*"},
			PublicURL:      "http://localhost:8080",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "numlab.db",
		},
		Auth: AuthConfig{
			SessionTTL:      30 * 24 * time.Hour,
			TokenTTL:        24 * time.Hour,
			BcryptCost:      10,
			ResendPerMinute: 1,
		},
		Tutor: TutorConfig{
			BaseURL:        "https://api.openai.com",
			Model:          "gpt-4o-mini",
			Timeout:        30 * time.Second,
			MaxQuestionLen: 250,
			MaxHistory:     20,
			PerMinute:      6,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path (if non-empty) over the defaults, then applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnvInt("PORT", c.Server.Port)
	c.Server.SecureCookies = getEnvBool("SECURE_COOKIES", c.Server.SecureCookies)
	c.Server.PublicURL = getEnv("PUBLIC_URL", c.Server.PublicURL)
	c.Database.Driver = getEnv("DATABASE_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("DATABASE_DSN", c.Database.DSN)
	c.Tutor.BaseURL = getEnv("TUTOR_BASE_URL", c.Tutor.BaseURL)
	c.Tutor.APIKey = getEnv("TUTOR_API_KEY", c.Tutor.APIKey)
	c.Tutor.Model = getEnv("TUTOR_MODEL", c.Tutor.Model)
	c.Logging.Level = getEnv("LOG_LEVEL", c.Logging.Level)
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost must be 4..31, got %d", c.Auth.BcryptCost))
	}
	if c.Tutor.MaxQuestionLen <= 0 || c.Tutor.MaxHistory < 0 {
		errs = append(errs, errors.New("tutor limits must be positive"))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	return errors.Join(errs...)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
