package config

import (
	"fmt"
	"sync"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration, loaded from environment
// variables.
type Config struct {
	// Database configuration
	DatabaseURL string `envconfig:"DATABASE_URL"`

	// Principals the singleton rows are initialized with on first use.
	// Ownership can later be transferred through the admin operations.
	OwnerAccount    string `envconfig:"OWNER_ACCOUNT" default:"owner"`
	PlatformAccount string `envconfig:"PLATFORM_ACCOUNT" default:"platform"`
	BonusAdmin      string `envconfig:"BONUS_ADMIN" default:"bonusadmin"`

	// Upstream platform services
	PlatformAPIURL string `envconfig:"PLATFORM_API_URL"`
	TreasuryAPIURL string `envconfig:"TREASURY_API_URL"`
	PlatformAPIKey string `envconfig:"PLATFORM_API_KEY"`
	SignupAccounts string `envconfig:"SIGNUP_ACCOUNTS"`

	// Environment
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = Load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if cfg.Environment != "test" && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return &cfg, nil
}
