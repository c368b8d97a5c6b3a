package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Pennywise"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"pennywise"`
	}

	Auth struct {
		Secret   string        `envconfig:"JWT_SECRET" default:"dev-secret"`
		TokenTTL time.Duration `envconfig:"JWT_TTL" default:"24h"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AllowedOrigins []string      `envconfig:"CORS_ORIGINS" default:"*"`
	}

	Sweep struct {
		Interval time.Duration `envconfig:"GOAL_SWEEP_INTERVAL" default:"1h"`
	}

	// TUI holds settings for the local terminal client, which talks to the
	// database directly as a single user.
	TUI struct {
		UserID string `envconfig:"TUI_USER_ID"`
	}

	Forex struct {
		BaseURL string `envconfig:"FOREX_BASE_URL" default:"https://api.forexrateapi.com/v1/latest"`
		APIKey  string `envconfig:"FOREX_API_KEY"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
