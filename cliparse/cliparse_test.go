// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{
	"PORT", "DATABASE_URL", "DATABASE_TYPE", "SESSION_SECRET",
	"SESSION_TTL", "RESET_TTL", "USE_EMULATORS",
}

// clearEnv blanks every variable ParseFlags reads and restores them afterwards
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func noEnvFile(t *testing.T) string {
	return "-env-file=" + filepath.Join(t.TempDir(), "missing.env")
}

func TestParseFlags_EnvVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("SESSION_SECRET", "test-secret")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("USE_EMULATORS", "true")

	cfg, err := ParseFlags([]string{noEnvFile(t)})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Port)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("expected default database type sqlite, got %q", cfg.DatabaseType)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("expected session ttl 2h, got %v", cfg.SessionTTL)
	}
	if cfg.ResetTTL != time.Hour {
		t.Errorf("expected default reset ttl 1h, got %v", cfg.ResetTTL)
	}
	if !cfg.UseEmulators {
		t.Error("expected emulators enabled from env")
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")

	cfg, err := ParseFlags([]string{noEnvFile(t), "-p", "8080", "-d", "file:test.db", "-session-secret", "s1"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.Port != 8080 {
		t.Errorf("CLI should override env: expected 8080, got %d", cfg.Port)
	}
	if cfg.SessionSecret != "s1" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestParseFlags_DotEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET", "from-env")

	path := filepath.Join(t.TempDir(), "test.env")
	content := "DATABASE_URL=postgres://localhost/scorecards\nDATABASE_TYPE=postgres\nSESSION_SECRET=from-file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := ParseFlags([]string{"-env-file", path})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.DatabaseURL != "postgres://localhost/scorecards" || cfg.DatabaseType != "postgres" {
		t.Errorf("expected database settings from file, got %+v", cfg)
	}
	// Existing environment is not overwritten by the file
	if cfg.SessionSecret != "from-env" {
		t.Errorf("expected env to win over file, got %q", cfg.SessionSecret)
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing database url", map[string]string{"SESSION_SECRET": "s"}},
		{"missing session secret", map[string]string{"DATABASE_URL": "file:test.db"}},
		{"bad port", map[string]string{"PORT": "abc", "DATABASE_URL": "file:test.db", "SESSION_SECRET": "s"}},
		{"bad database type", map[string]string{"DATABASE_TYPE": "mysql", "DATABASE_URL": "x", "SESSION_SECRET": "s"}},
		{"bad ttl", map[string]string{"DATABASE_URL": "x", "SESSION_SECRET": "s", "RESET_TTL": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := ParseFlags([]string{noEnvFile(t)}); err == nil {
				t.Error("expected error")
			}
		})
	}
}
