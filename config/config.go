// Package config loads process configuration from the environment
// (and an optional .env file), grounded on the teacher pack's
// caarlos0/env + joho/godotenv convention.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the top-level process configuration (spec.md §6: repo
// connection, LLM provider, and server listen address).
type Config struct {
	TruthStorePath  string `env:"TTA_TRUTH_STORE_PATH" envDefault:"./data/truth.db"`
	GraphStorePath  string `env:"TTA_GRAPH_STORE_PATH" envDefault:"./data/graph.db"`
	LLMProvider     string `env:"TTA_LLM_PROVIDER" envDefault:""`
	LLMModel        string `env:"TTA_LLM_MODEL" envDefault:""`
	LLMAPIKey       string `env:"TTA_LLM_API_KEY" envDefault:""`
	ListenAddr      string `env:"TTA_LISTEN_ADDR" envDefault:":8080"`
	MaxSessions     int    `env:"TTA_MAX_SESSIONS" envDefault:"64"`
	LLMTimeoutMS    int    `env:"TTA_LLM_TIMEOUT_MS" envDefault:"5000"`
	LogLevel        string `env:"TTA_LOG_LEVEL" envDefault:"info"`
	LogJSON         bool   `env:"TTA_LOG_JSON" envDefault:"true"`
	PhysicsOverlayDir string `env:"TTA_PHYSICS_OVERLAY_DIR" envDefault:"./physics"`
}

// Load reads a .env file if present (missing is not an error) and then
// parses the process environment into a Config.
func Load(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: load env file: %w", err)
		}
	}
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}
	return cfg, nil
}
