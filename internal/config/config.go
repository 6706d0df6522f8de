package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds process configuration, sourced from the environment with
// an optional .env file for local development.
type Config struct {
	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`
	Workers  int    `envconfig:"WORKERS" default:"0"`

	// DataDir is the root the extraction layer resolves evidence file
	// paths against.
	DataDir string `envconfig:"DATA_DIR" default:"./data"`

	OllamaURL     string `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`
	PrimaryModel  string `envconfig:"PRIMARY_MODEL" default:"llama2"`
	FallbackModel string `envconfig:"FALLBACK_MODEL" default:"mistral"`

	AlertWebhookURL string `envconfig:"ALERT_WEBHOOK_URL"`

	DBUsername string `envconfig:"DB_USERNAME"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBName     string `envconfig:"DB_NAME" default:"esgflow"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// Load reads .env if present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConnString builds the postgres connection string.
func (c *Config) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUsername, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}
