package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"PORT", "DATABASE_TYPE", "STATE_STORE", "REFERENCE_NOTE_DELAY", "REDIS_DB"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("DatabaseType = %q, want sqlite", cfg.DatabaseType)
	}
	if cfg.StateStore != "sql" {
		t.Errorf("StateStore = %q, want sql", cfg.StateStore)
	}
	if cfg.ReferenceNoteDelay != 1200*time.Millisecond {
		t.Errorf("ReferenceNoteDelay = %s, want 1.2s", cfg.ReferenceNoteDelay)
	}
	if cfg.RedisDB != 0 {
		t.Errorf("RedisDB = %d, want 0", cfg.RedisDB)
	}
}

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"unset", "", 5 * time.Second},
		{"go duration", "1500ms", 1500 * time.Millisecond},
		{"seconds", "30", 30 * time.Second},
		{"garbage", "soon", 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.value)
			if got := getEnvDuration("TEST_DURATION", 5*time.Second); got != tt.want {
				t.Errorf("getEnvDuration() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("TEST_INT", "7")
	if got := getEnvInt("TEST_INT", 1); got != 7 {
		t.Errorf("getEnvInt() = %d, want 7", got)
	}
	t.Setenv("TEST_INT", "seven")
	if got := getEnvInt("TEST_INT", 1); got != 1 {
		t.Errorf("getEnvInt() with garbage = %d, want 1", got)
	}
}
