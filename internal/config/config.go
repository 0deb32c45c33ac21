package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"ai-nutricare/internal/intake"
	"ai-nutricare/internal/nutrition"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// DefaultAPIBaseURL is the analysis service address used when none is configured.
const DefaultAPIBaseURL = "http://127.0.0.1:8000"

// TelegramConfig holds the chat front end settings.
type TelegramConfig struct {
	BotToken       string  `yaml:"bot_token"`
	WebhookURL     string  `yaml:"webhook_url"`
	AllowedUserIDs []int64 `yaml:"allowed_user_ids"`
}

// Config holds the configuration for the application.
type Config struct {
	APIBaseURL      string `yaml:"api_base_url"`
	DatabasePath    string `yaml:"database_path"`
	ReportDir       string `yaml:"report_dir"`
	DefaultDietType string `yaml:"default_diet_type"`
	DefaultRegion   string `yaml:"default_region"`
	LogLevel        string `yaml:"log_level"`
	Port            string `yaml:"port"`

	Telegram TelegramConfig `yaml:"telegram"`
}

// Default returns a Config with every optional key filled in.
func Default() *Config {
	return &Config{
		APIBaseURL:      DefaultAPIBaseURL,
		DatabasePath:    "data/nutricare.db",
		ReportDir:       ".",
		DefaultDietType: string(nutrition.DietBoth),
		LogLevel:        "info",
		Port:            "8080",
	}
}

// NewFromEnv creates a new Config object from environment variables.
func NewFromEnv() (*Config, error) {
	return Load("")
}

// Load builds the configuration from defaults, an optional .env file, an
// optional YAML file at path and finally the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	// A missing .env is normal outside development.
	_ = godotenv.Load()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	overrides := []struct {
		env string
		dst *string
	}{
		{"NUTRICARE_API_URL", &c.APIBaseURL},
		{"NUTRICARE_DB_PATH", &c.DatabasePath},
		{"NUTRICARE_REPORT_DIR", &c.ReportDir},
		{"NUTRICARE_DIET_TYPE", &c.DefaultDietType},
		{"NUTRICARE_REGION", &c.DefaultRegion},
		{"NUTRICARE_LOG_LEVEL", &c.LogLevel},
		{"PORT", &c.Port},
		{"TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken},
		{"TELEGRAM_WEBHOOK_URL", &c.Telegram.WebhookURL},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.env); ok && v != "" {
			*o.dst = v
		}
	}

	if raw := os.Getenv("TELEGRAM_ALLOW_USER_IDS"); raw != "" {
		ids, err := parseUserIDs(raw)
		if err != nil {
			return fmt.Errorf("TELEGRAM_ALLOW_USER_IDS is invalid: %w", err)
		}
		c.Telegram.AllowedUserIDs = ids
	}
	return nil
}

func parseUserIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad user id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Validate checks the values that have a fixed shape.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("NUTRICARE_API_URL is invalid: %q is not an http(s) URL", c.APIBaseURL)
	}
	if c.DatabasePath == "" {
		return errors.New("NUTRICARE_DB_PATH is invalid: empty path")
	}
	if _, err := intake.ParseDietType(c.DefaultDietType); err != nil {
		return fmt.Errorf("NUTRICARE_DIET_TYPE is invalid: %w", err)
	}
	if _, err := intake.ParseRegion(c.DefaultRegion); err != nil {
		return fmt.Errorf("NUTRICARE_REGION is invalid: %w", err)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("NUTRICARE_LOG_LEVEL is invalid: %w", err)
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("PORT is invalid: %q", c.Port)
	}
	return nil
}

// Preferences returns the configured default dietary preferences.
func (c *Config) Preferences() nutrition.DietaryPreferences {
	prefs := nutrition.DefaultPreferences()
	if d, err := intake.ParseDietType(c.DefaultDietType); err == nil {
		prefs.DietType = d
	}
	if r, err := intake.ParseRegion(c.DefaultRegion); err == nil {
		prefs.Region = r
	}
	return prefs
}

// RequireTelegram reports whether the bot can be started.
func (c *Config) RequireTelegram() error {
	if c.Telegram.BotToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	return nil
}

// IsAllowed reports whether a Telegram user may use the bot. An empty
// allow-list admits everyone.
func (c *Config) IsAllowed(userID int64) bool {
	if len(c.Telegram.AllowedUserIDs) == 0 {
		return true
	}
	for _, id := range c.Telegram.AllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
