package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ScopeOwner  = "owner"
	ScopeShared = "shared"
)

type SMTPConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Username string        `yaml:"username"`
	Password string        `yaml:"password"`
	From     string        `yaml:"from"`
	Timeout  time.Duration `yaml:"timeout"`
}

// SeedUser is an account inserted (or refreshed) when the database is initialized.
type SeedUser struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// CategoryRule tags an event whose category contains any of Keywords.
// Rules are evaluated in file order.
type CategoryRule struct {
	Tag      string   `yaml:"tag"`
	Keywords []string `yaml:"keywords"`
}

type Config struct {
	Listen        string        `yaml:"listen"`
	DBPath        string        `yaml:"db_path"`
	SessionSecret string        `yaml:"session_secret"`
	PasswordSalt  string        `yaml:"password_salt"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	Timezone      string        `yaml:"timezone"`
	LogLevel      string        `yaml:"log_level"`

	// MutationScope is "owner" (only the creator may edit or delete an
	// event) or "shared" (any signed-in user may).
	MutationScope string `yaml:"mutation_scope"`

	SMTP       SMTPConfig `yaml:"smtp"`
	Recipients []string   `yaml:"recipients"`
	RecapCron  string     `yaml:"recap_cron"`

	SeedUsers     []SeedUser     `yaml:"seed_users"`
	CategoryRules []CategoryRule `yaml:"category_rules"`
	FallbackTag   string         `yaml:"fallback_tag"`
}

func Default() Config {
	return Config{
		Listen:        "127.0.0.1:5000",
		SessionTTL:    12 * time.Hour,
		Timezone:      "Europe/Paris",
		LogLevel:      "info",
		MutationScope: ScopeOwner,
		SMTP:          SMTPConfig{Port: 587, Timeout: 10 * time.Second},
		CategoryRules: DefaultCategoryRules(),
		FallbackTag:   "autre",
	}
}

func DefaultCategoryRules() []CategoryRule {
	return []CategoryRule{
		{Tag: "rdv", Keywords: []string{"rendez", "client", "fournisseur"}},
		{Tag: "reunion", Keywords: []string{"réunion", "reunion", "meeting"}},
		{Tag: "admin", Keywords: []string{"admin"}},
		{Tag: "urgence", Keywords: []string{"urgence", "urgent"}},
		{Tag: "formation", Keywords: []string{"forma"}},
	}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "calendrier", "config.yaml"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// Load reads the YAML file at path (a missing file yields defaults), then
// applies .env files and environment overrides.
func Load(path string) (Config, error) {
	config := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return Config{}, err
	}

	// A missing .env is the common case.
	_ = godotenv.Load()

	if err := applyEnv(&config, os.Getenv); err != nil {
		return Config{}, err
	}
	config.Normalize()
	return config, nil
}

func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Normalize fills zero values left by partial config files.
func (c *Config) Normalize() {
	def := Default()
	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.SessionTTL <= 0 {
		c.SessionTTL = def.SessionTTL
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	switch strings.ToLower(strings.TrimSpace(c.MutationScope)) {
	case ScopeShared:
		c.MutationScope = ScopeShared
	default:
		c.MutationScope = ScopeOwner
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = def.SMTP.Port
	}
	if c.SMTP.Timeout <= 0 {
		c.SMTP.Timeout = def.SMTP.Timeout
	}
	if c.SMTP.From == "" {
		c.SMTP.From = c.SMTP.Username
	}
	if len(c.CategoryRules) == 0 {
		c.CategoryRules = def.CategoryRules
	}
	if c.FallbackTag == "" {
		c.FallbackTag = def.FallbackTag
	}
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	var problems []string
	if c.DBPath == "" {
		problems = append(problems, "db_path is required")
	}
	if c.SessionSecret == "" {
		problems = append(problems, "session_secret is required")
	}
	if c.PasswordSalt == "" {
		problems = append(problems, "password_salt is required")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		problems = append(problems, fmt.Sprintf("timezone %q: %v", c.Timezone, err))
	}
	for i, rule := range c.CategoryRules {
		if strings.TrimSpace(rule.Tag) == "" {
			problems = append(problems, fmt.Sprintf("category_rules[%d]: tag is required", i))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	setString := func(key string, dst *string) {
		if value := strings.TrimSpace(getenv(key)); value != "" {
			*dst = value
		}
	}

	setString("CALENDRIER_LISTEN", &cfg.Listen)
	setString("CALENDRIER_DB_PATH", &cfg.DBPath)
	setString("CALENDRIER_SESSION_SECRET", &cfg.SessionSecret)
	setString("CALENDRIER_PASSWORD_SALT", &cfg.PasswordSalt)
	setString("CALENDRIER_TIMEZONE", &cfg.Timezone)
	setString("CALENDRIER_MUTATION_SCOPE", &cfg.MutationScope)
	setString("CALENDRIER_RECAP_CRON", &cfg.RecapCron)
	setString("LOG_LEVEL", &cfg.LogLevel)
	setString("SMTP_HOST", &cfg.SMTP.Host)
	setString("SMTP_USER", &cfg.SMTP.Username)
	setString("SMTP_PASSWORD", &cfg.SMTP.Password)
	setString("SMTP_FROM", &cfg.SMTP.From)

	if value := strings.TrimSpace(getenv("SMTP_PORT")); value != "" {
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("SMTP_PORT: %w", err)
		}
		cfg.SMTP.Port = port
	}

	if value := strings.TrimSpace(getenv("CALENDRIER_RECIPIENTS")); value != "" {
		cfg.Recipients = nil
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				cfg.Recipients = append(cfg.Recipients, trimmed)
			}
		}
	}

	return nil
}
