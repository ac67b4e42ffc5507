package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the client configuration
type Config struct {
	Backend struct {
		BaseURL string        `yaml:"base_url" env:"CLUBHUB_BASE_URL"`
		Timeout time.Duration `yaml:"timeout" env:"CLUBHUB_TIMEOUT"`
	} `yaml:"backend"`

	Session struct {
		// Path is where the serialized session lives. Absence or a parse
		// failure of this file is always treated as "logged out".
		Path string `yaml:"path" env:"CLUBHUB_SESSION_PATH"`
	} `yaml:"session"`

	Inbox struct {
		PollInterval time.Duration `yaml:"poll_interval" env:"CLUBHUB_POLL_INTERVAL"`
		ThreadPage   int           `yaml:"thread_page" env:"CLUBHUB_THREAD_PAGE"`
		MessagePage  int           `yaml:"message_page" env:"CLUBHUB_MESSAGE_PAGE"`
	} `yaml:"inbox"`

	Notifications struct {
		PageSize int `yaml:"page_size" env:"CLUBHUB_NOTIFICATION_PAGE"`
	} `yaml:"notifications"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// Try to read config file if it exists
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		err = yaml.Unmarshal(file, config)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	// Backend defaults match the development stub server
	config.Backend.BaseURL = "http://localhost:9999"
	config.Backend.Timeout = 15 * time.Second

	config.Session.Path = defaultSessionPath()

	// Inbox defaults: the poll loop and fixed page sizes
	config.Inbox.PollInterval = 8 * time.Second
	config.Inbox.ThreadPage = 20
	config.Inbox.MessagePage = 20

	config.Notifications.PageSize = 10

	config.Logging.Level = "info"
	config.Logging.Format = "pretty"
}

// defaultSessionPath places the session file under the user config dir,
// falling back to the working directory when none is resolvable.
func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "userinfo.json"
	}
	return filepath.Join(dir, "clubhub", "userinfo.json")
}

// loadFromEnv overrides configuration with environment variables
func loadFromEnv(config *Config) error {
	return processStructFields(config)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Backend.BaseURL == "" {
		return fmt.Errorf("backend base URL is required")
	}

	if config.Session.Path == "" {
		return fmt.Errorf("session path is required")
	}

	if config.Inbox.PollInterval <= 0 {
		return fmt.Errorf("inbox poll interval must be positive")
	}

	if config.Inbox.ThreadPage <= 0 || config.Inbox.MessagePage <= 0 {
		return fmt.Errorf("inbox page sizes must be positive")
	}

	if config.Notifications.PageSize <= 0 {
		return fmt.Errorf("notification page size must be positive")
	}

	return nil
}

// GetEnv gets an environment variable or returns a default value
func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// GetEnvAsDuration gets an environment variable as a duration or returns a default value
func GetEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := GetEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
