package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := writeConfig(t, "server:\n  port: \"9090\"\n")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("port = %q", cfg.Server.Port)
	}
	if cfg.Analysis.MaxRangeDays != 366 || cfg.Analysis.ParallelDays != 8 || !cfg.Analysis.InsightsEnabled {
		t.Fatalf("unexpected analysis defaults %+v", cfg.Analysis)
	}
	if cfg.Analysis.CacheTTL() != 10*time.Minute {
		t.Fatalf("cache ttl = %v", cfg.Analysis.CacheTTL())
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("log level = %q", cfg.Log.Level)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := writeConfig(t, "log:\n  level: info\n")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("NUTRITRACK_ANALYSIS_MAX_RANGE_DAYS", "31")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("log level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Analysis.MaxRangeDays != 31 {
		t.Fatalf("max range = %d, want 31", cfg.Analysis.MaxRangeDays)
	}
}

func TestValidateReleaseSecret(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Mode: "release"},
		JWT:      JWTConfig{Secret: "short"},
		Analysis: AnalysisConfig{MaxRangeDays: 30, ParallelDays: 4},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected short secret to be rejected")
	}

	cfg.Server.Mode = "debug"
	cfg.Analysis.ParallelDays = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Analysis.ParallelDays != 1 {
		t.Fatalf("parallel days should fall back to 1, got %d", cfg.Analysis.ParallelDays)
	}
}

func TestServerLocation(t *testing.T) {
	if loc := (ServerConfig{}).Location(); loc != time.Local {
		t.Fatalf("expected local timezone")
	}
	if loc := (ServerConfig{Timezone: "UTC"}).Location(); loc.String() != "UTC" {
		t.Fatalf("loc = %s", loc)
	}
	if loc := (ServerConfig{Timezone: "Not/AZone"}).Location(); loc != time.Local {
		t.Fatalf("invalid zone should fall back to local")
	}
}
