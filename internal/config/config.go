package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"receipt-portal/internal/models"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port    int  `yaml:"port"`
		Verbose bool `yaml:"verbose"`
	} `yaml:"server"`

	// StandaloneMode swaps the webhook store for an in-memory one so the
	// portal runs without a spreadsheet deployment.
	StandaloneMode bool `yaml:"standalone_mode"`

	Admin struct {
		Email        string `yaml:"email"`
		PasswordHash string `yaml:"password_hash"`
	} `yaml:"admin"`

	Sheet struct {
		WebhookURL string `yaml:"webhook_url"`
		Timeout    string `yaml:"timeout"`
	} `yaml:"sheet"`

	Auth struct {
		DBPath           string `yaml:"db_path"`
		AdminTimeout     string `yaml:"admin_session_timeout"`
		RecipientTimeout string `yaml:"recipient_session_timeout"`
		MaxLoginAttempts int    `yaml:"max_login_attempts"`
		LockoutDuration  string `yaml:"lockout_duration"`
	} `yaml:"auth"`
}

// ParsedConfig contains parsed time.Duration values for easier use
type ParsedConfig struct {
	Config
	SheetTimeout     time.Duration
	AdminTimeout     time.Duration
	RecipientTimeout time.Duration
	LockoutDuration  time.Duration
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*ParsedConfig, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %v", err)
	}

	if cfg.Sheet.Timeout == "" {
		cfg.Sheet.Timeout = "10s"
	}
	sheetTimeout, err := time.ParseDuration(cfg.Sheet.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid sheet timeout: %v", err)
	}

	adminTimeout, err := time.ParseDuration(cfg.Auth.AdminTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid admin_session_timeout: %v", err)
	}

	recipientTimeout, err := time.ParseDuration(cfg.Auth.RecipientTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient_session_timeout: %v", err)
	}

	lockoutDuration, err := time.ParseDuration(cfg.Auth.LockoutDuration)
	if err != nil {
		return nil, fmt.Errorf("invalid lockout_duration: %v", err)
	}

	parsed := &ParsedConfig{
		Config:           cfg,
		SheetTimeout:     sheetTimeout,
		AdminTimeout:     adminTimeout,
		RecipientTimeout: recipientTimeout,
		LockoutDuration:  lockoutDuration,
	}

	if err := validateConfig(parsed); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v", err)
	}

	return parsed, nil
}

// validateConfig validates the configuration values
func validateConfig(cfg *ParsedConfig) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	if cfg.Admin.Email == "" || !models.ValidEmail(cfg.Admin.Email) {
		return fmt.Errorf("admin email must be a valid email address")
	}

	if cfg.Admin.PasswordHash == "" {
		return fmt.Errorf("admin password_hash is required")
	}

	if !cfg.StandaloneMode && cfg.Sheet.WebhookURL == "" {
		return fmt.Errorf("sheet webhook_url is required unless standalone_mode is set")
	}

	// admin sessions carry more privilege, so they must expire first
	if cfg.AdminTimeout >= cfg.RecipientTimeout {
		return fmt.Errorf("admin_session_timeout must be strictly shorter than recipient_session_timeout")
	}

	if cfg.Auth.MaxLoginAttempts < 1 {
		return fmt.Errorf("max_login_attempts must be at least 1")
	}

	if cfg.LockoutDuration <= 0 {
		return fmt.Errorf("lockout_duration must be positive")
	}

	if cfg.Auth.DBPath == "" {
		return fmt.Errorf("auth db_path is required")
	}

	return nil
}
