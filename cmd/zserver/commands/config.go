package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okoye/zabuza/pkg/zabuza"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the persisted CLI state at ~/.zabuza/config.yml.
type Config struct {
	AuthURL      string     `yaml:"auth_url,omitempty"`
	Username     string     `yaml:"username,omitempty"`
	TenantName   string     `yaml:"tenant_name,omitempty"`
	Token        string     `yaml:"token,omitempty"`
	TokenExpires *time.Time `yaml:"token_expires,omitempty"`
	Output       string     `yaml:"output,omitempty"`
}

// loadConfig reads current settings from viper (flags, env, config file).
func loadConfig() *Config {
	config := &Config{
		AuthURL:    viper.GetString("auth_url"),
		Username:   viper.GetString("username"),
		TenantName: viper.GetString("tenant_name"),
		Token:      viper.GetString("token"),
		Output:     viper.GetString("output"),
	}

	if expires := viper.GetString("token_expires"); expires != "" {
		if parsed, err := zabuza.ParseTimestamp(expires); err == nil {
			config.TokenExpires = &parsed
		}
	}

	return config
}

// saveSession persists the authenticated session for later invocations.
func saveSession(authURL, username, tenantName string, token *zabuza.Token) error {
	config := loadConfig()
	config.AuthURL = authURL
	config.Username = username
	config.TenantName = tenantName

	if token != nil {
		config.Token = token.ID
		expires := token.Expires
		config.TokenExpires = &expires
	}

	return saveConfigStruct(config)
}

// saveConfigStruct writes the config to disk.
func saveConfigStruct(config *Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func configPath() (string, error) {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		return cfgFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}

	configDir := filepath.Join(home, ".zabuza")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.yml"), nil
}
