package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	AppName                    = "mailview"
	DefaultEmailBin            = "/opt/qtemail/bin/email.pl"
	DefaultPageInitial         = 600
	DefaultPageInitialNoUnread = 200
	DefaultPageMore            = 200
	DefaultLogLines            = 500
	DefaultLogLevel            = "info"
)

// PageConfig holds header page sizes
type PageConfig struct {
	Initial              int `yaml:"initial"`
	InitialWithoutUnread int `yaml:"initial_without_unread"`
	More                 int `yaml:"more"`
}

// Config holds the application configuration
type Config struct {
	// Mail tool settings
	EmailDir string `yaml:"email_dir"`
	EmailBin string `yaml:"email_bin"`

	// Body archive; empty keeps bodies in memory only
	BodyCachePath string `yaml:"body_cache_path"`

	LogLevel string     `yaml:"log_level"`
	LogLines int        `yaml:"log_lines"`
	Page     PageConfig `yaml:"page"`

	// Filter buttons for accounts whose tool config defines none
	Filters       map[string]string `yaml:"filters"`
	FilterButtons []string          `yaml:"filter_buttons"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		EmailDir: defaultEmailDir(),
		EmailBin: DefaultEmailBin,
		LogLevel: DefaultLogLevel,
		LogLines: DefaultLogLines,
		Page: PageConfig{
			Initial:              DefaultPageInitial,
			InitialWithoutUnread: DefaultPageInitialNoUnread,
			More:                 DefaultPageMore,
		},
	}
}

func defaultEmailDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = getEnv("HOME", "")
	}
	return filepath.Join(home, ".cache", "email")
}

// ConfigPath returns the default config file location
func ConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get config directory: %w", err)
	}
	return filepath.Join(dir, AppName, "config.yaml"), nil
}

// LoadConfig loads configuration from the YAML file at path, then applies
// environment overrides. An empty path uses MAILVIEW_CONFIG or ConfigPath;
// a missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = getEnv("MAILVIEW_CONFIG", "")
		explicit = path != ""
	}
	if path == "" {
		var err error
		if path, err = ConfigPath(); err != nil {
			path = ""
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case os.IsNotExist(err) && !explicit:
			// defaults only
		default:
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides file values with environment variables
func (c *Config) applyEnv() {
	c.EmailDir = getEnv("MAILVIEW_EMAIL_DIR", c.EmailDir)
	c.EmailBin = getEnv("MAILVIEW_EMAIL_BIN", c.EmailBin)
	c.BodyCachePath = getEnv("MAILVIEW_BODY_CACHE", c.BodyCachePath)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogLines = getEnvInt("MAILVIEW_LOG_LINES", c.LogLines)
	c.Page.Initial = getEnvInt("MAILVIEW_PAGE_INITIAL", c.Page.Initial)
	c.Page.InitialWithoutUnread = getEnvInt("MAILVIEW_PAGE_INITIAL_WITHOUT_UNREAD", c.Page.InitialWithoutUnread)
	c.Page.More = getEnvInt("MAILVIEW_PAGE_MORE", c.Page.More)
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.EmailDir == "" {
		return fmt.Errorf("email_dir is required")
	}

	if c.EmailBin == "" {
		return fmt.Errorf("email_bin is required")
	}

	if c.Page.Initial < 1 || c.Page.InitialWithoutUnread < 1 || c.Page.More < 1 {
		return fmt.Errorf("page sizes must be positive")
	}

	if c.Page.InitialWithoutUnread > c.Page.Initial {
		return fmt.Errorf("page.initial_without_unread (%d) must not exceed page.initial (%d)",
			c.Page.InitialWithoutUnread, c.Page.Initial)
	}

	if c.LogLines < 1 {
		return fmt.Errorf("log_lines must be positive")
	}

	for _, name := range c.FilterButtons {
		if _, ok := c.Filters[name]; !ok {
			return fmt.Errorf("filter button %s has no filter", name)
		}
	}

	return nil
}

// DefaultButtonConfig renders the configured filters as account config
// values (filter.<name> and filterButtons)
func (c *Config) DefaultButtonConfig() map[string]string {
	values := make(map[string]string, len(c.Filters)+1)
	for name, query := range c.Filters {
		values["filter."+name] = query
	}
	if len(c.FilterButtons) > 0 {
		values["filterButtons"] = strings.Join(c.FilterButtons, ",")
	}
	return values
}
