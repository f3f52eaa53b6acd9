package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitDBKeepsEnvironmentSecretsOutOfConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	dbPath := filepath.Join(dir, "calendrier.db")

	t.Setenv("CALENDRIER_SESSION_SECRET", "session-secret-from-env")
	t.Setenv("CALENDRIER_PASSWORD_SALT", "salt-from-env")
	t.Setenv("SMTP_PASSWORD", "smtp-password-from-env")

	if err := newApp().Run([]string{"calendrier", "init-db", "--config", cfgPath, "--db", dbPath}); err != nil {
		t.Fatalf("init-db: %v", err)
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected database file: %v", err)
	}

	data, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	content := string(data)
	for _, secret := range []string{"session-secret-from-env", "salt-from-env", "smtp-password-from-env"} {
		if strings.Contains(content, secret) {
			t.Fatalf("config file leaks %q:\n%s", secret, content)
		}
	}
	if !strings.Contains(content, dbPath) {
		t.Fatalf("expected db path in config file:\n%s", content)
	}
}

func TestInitDBLeavesExistingConfigUntouched(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	original := "password_salt: file-salt\nlog_level: warn\n"
	if err := os.WriteFile(cfgPath, []byte(original), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := newApp().Run([]string{"calendrier", "init-db", "--config", cfgPath, "--db", filepath.Join(dir, "c.db")}); err != nil {
		t.Fatalf("init-db: %v", err)
	}

	data, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(data) != original {
		t.Fatalf("expected config file to be left as is, got:\n%s", data)
	}
}
