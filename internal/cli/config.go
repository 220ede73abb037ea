package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration
type Config struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".hwpolicy", "config.yaml"), nil
}

// LoadConfig loads the configuration from file. A missing file yields a
// localhost default.
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{BaseURL: "http://localhost:8080"}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// SaveConfig saves the configuration to file
func SaveConfig(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// ResolveConfig merges configuration sources for a command invocation.
// Priority: command flags > environment variables > config file.
func ResolveConfig(baseURLFlag, apiKeyFlag string) (*Config, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	if envURL := os.Getenv("HWPOLICY_BASE_URL"); envURL != "" {
		cfg.BaseURL = envURL
	}
	if envKey := os.Getenv("HWPOLICY_API_KEY"); envKey != "" {
		cfg.APIKey = envKey
	}
	if baseURLFlag != "" {
		cfg.BaseURL = baseURLFlag
	}
	if apiKeyFlag != "" {
		cfg.APIKey = apiKeyFlag
	}

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is not configured (use --base-url, HWPOLICY_BASE_URL, or the config file)")
	}
	return cfg, nil
}
