package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != "127.0.0.1:5000" {
		t.Fatalf("expected default listen, got %q", cfg.Listen)
	}
	if cfg.MutationScope != ScopeOwner {
		t.Fatalf("expected owner scope, got %q", cfg.MutationScope)
	}
	if len(cfg.CategoryRules) != len(DefaultCategoryRules()) {
		t.Fatalf("expected default category rules, got %d", len(cfg.CategoryRules))
	}
	if cfg.FallbackTag != "autre" {
		t.Fatalf("expected fallback 'autre', got %q", cfg.FallbackTag)
	}
}

func TestLoadYAMLAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := strings.Join([]string{
		"db_path: /var/lib/calendrier/events.db",
		"session_secret: from-file",
		"password_salt: pepper",
		"mutation_scope: SHARED",
		"smtp:",
		"  host: smtp.example.com",
		"  username: agenda@example.com",
		"  timeout: 3s",
		"recipients:",
		"  - a@example.com",
		"category_rules:",
		"  - tag: visite",
		"    keywords: [visite]",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CALENDRIER_SESSION_SECRET", "from-env")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("CALENDRIER_RECIPIENTS", "x@example.com, y@example.com")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SessionSecret != "from-env" {
		t.Fatalf("expected env secret to win, got %q", cfg.SessionSecret)
	}
	if cfg.MutationScope != ScopeShared {
		t.Fatalf("expected shared scope, got %q", cfg.MutationScope)
	}
	if cfg.SMTP.Port != 2525 {
		t.Fatalf("expected smtp port 2525, got %d", cfg.SMTP.Port)
	}
	if cfg.SMTP.Timeout != 3*time.Second {
		t.Fatalf("expected smtp timeout 3s, got %v", cfg.SMTP.Timeout)
	}
	if cfg.SMTP.From != "agenda@example.com" {
		t.Fatalf("expected from to default to username, got %q", cfg.SMTP.From)
	}
	if len(cfg.Recipients) != 2 || cfg.Recipients[1] != "y@example.com" {
		t.Fatalf("unexpected recipients: %v", cfg.Recipients)
	}
	if len(cfg.CategoryRules) != 1 || cfg.CategoryRules[0].Tag != "visite" {
		t.Fatalf("expected file category rules, got %+v", cfg.CategoryRules)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLoadRejectsBadSMTPPort(t *testing.T) {
	t.Setenv("SMTP_PORT", "not-a-port")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for invalid SMTP_PORT")
	}
}

func TestValidateReportsMissingSecrets(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"db_path", "session_secret", "password_salt"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %q", want, err.Error())
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.DBPath = "events.db"
	cfg.SeedUsers = []SeedUser{{Email: "staff@example.com", Password: "secret"}}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.DBPath != "events.db" {
		t.Fatalf("expected db path to persist, got %q", loaded.DBPath)
	}
	if len(loaded.SeedUsers) != 1 || loaded.SeedUsers[0].Email != "staff@example.com" {
		t.Fatalf("unexpected seed users: %+v", loaded.SeedUsers)
	}
	if loaded.SMTP.Timeout != 10*time.Second {
		t.Fatalf("expected timeout to persist, got %v", loaded.SMTP.Timeout)
	}
}
