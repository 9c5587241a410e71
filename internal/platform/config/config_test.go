package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("SHORTS_TEST_STR", "value")
	if got := GetEnv("SHORTS_TEST_STR", "fallback"); got != "value" {
		t.Errorf("GetEnv = %q, want value", got)
	}
	if got := GetEnv("SHORTS_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("GetEnv unset = %q, want fallback", got)
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("SHORTS_TEST_INT", "42")
	t.Setenv("SHORTS_TEST_BAD_INT", "forty")
	if got := GetEnvInt("SHORTS_TEST_INT", 1); got != 42 {
		t.Errorf("GetEnvInt = %d, want 42", got)
	}
	if got := GetEnvInt("SHORTS_TEST_BAD_INT", 7); got != 7 {
		t.Errorf("GetEnvInt invalid = %d, want fallback 7", got)
	}
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("SHORTS_TEST_FLOAT", "2.5")
	if got := GetEnvFloat("SHORTS_TEST_FLOAT", 0); got != 2.5 {
		t.Errorf("GetEnvFloat = %v, want 2.5", got)
	}
	if got := GetEnvFloat("SHORTS_TEST_UNSET", 1.5); got != 1.5 {
		t.Errorf("GetEnvFloat unset = %v, want 1.5", got)
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("SHORTS_TEST_DUR", "45s")
	t.Setenv("SHORTS_TEST_NEG_DUR", "-1s")
	if got := GetEnvDuration("SHORTS_TEST_DUR", time.Second); got != 45*time.Second {
		t.Errorf("GetEnvDuration = %v, want 45s", got)
	}
	if got := GetEnvDuration("SHORTS_TEST_NEG_DUR", time.Second); got != time.Second {
		t.Errorf("GetEnvDuration negative = %v, want fallback", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("SHORTS_TEST_FROM_FILE=loaded\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("SHORTS_TEST_FROM_FILE") })

	if err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := GetEnv("SHORTS_TEST_FROM_FILE", ""); got != "loaded" {
		t.Errorf("value from env file = %q, want loaded", got)
	}
	if err := Load(filepath.Join(dir, "missing.env")); err == nil {
		t.Error("expected error for missing env file")
	}
}
