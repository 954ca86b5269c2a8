// Package config содержит логику чтения конфигурации панели прачечной.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации панели прачечной.
type Config struct {
	RunAddress     string        `env:"RUN_ADDRESS"`
	BackendAddress string        `env:"BACKEND_ADDRESS"`
	SessionFile    string        `env:"SESSION_FILE"`
	SessionSecret  string        `env:"SESSION_SECRET"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Parse считывает конфигурацию из флагов командной строки и переменных
// окружения. Переменные окружения имеют приоритет над флагами.
func Parse() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envBackendAddress := cfg.BackendAddress
	envSessionFile := cfg.SessionFile
	envSessionSecret := cfg.SessionSecret
	envRequestTimeout := cfg.RequestTimeout

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.BackendAddress, "b", "http://localhost:8000/api", "laundry backend base URL")
	flag.StringVar(&cfg.SessionFile, "f", "washerman-session.json", "path to local session file")
	flag.StringVar(&cfg.SessionSecret, "s", "", "secret key for panel session cookies")
	flag.DurationVar(&cfg.RequestTimeout, "t", 10*time.Second, "backend request timeout")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envBackendAddress != "" {
		cfg.BackendAddress = envBackendAddress
	}
	if envSessionFile != "" {
		cfg.SessionFile = envSessionFile
	}
	if envSessionSecret != "" {
		cfg.SessionSecret = envSessionSecret
	}
	if envRequestTimeout != 0 {
		cfg.RequestTimeout = envRequestTimeout
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = "localhost:8080"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}

	return cfg, nil
}
