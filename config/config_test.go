package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"pgregory.net/rapid"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte("{nope"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); err == nil {
		t.Error("expected parse error")
	}
}

func TestApplyDefaultsFillsZeroLimits(t *testing.T) {
	cfg := Config{APIKey: "k", MaxRows: 5}
	cfg.ApplyDefaults()
	if cfg.MaxRows != 5 {
		t.Error("explicit values must be kept")
	}
	if cfg.MaxSessions != Default().MaxSessions || cfg.MaxToolDepth != Default().MaxToolDepth {
		t.Errorf("zero limits must be filled: %+v", cfg)
	}
	if cfg.APIKey != "k" {
		t.Error("credentials must be kept")
	}
}

func TestDurationHelpers(t *testing.T) {
	cfg := Config{SessionTTLMinutes: 2, SweepIntervalSeconds: 5, RetryBaseMillis: 250}
	if cfg.SessionTTL() != 2*time.Minute {
		t.Errorf("ttl: %v", cfg.SessionTTL())
	}
	if cfg.SweepInterval() != 5*time.Second {
		t.Errorf("sweep: %v", cfg.SweepInterval())
	}
	if cfg.RetryBase() != 250*time.Millisecond {
		t.Errorf("retry base: %v", cfg.RetryBase())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cfg := Default()
		cfg.APIKey = rapid.StringMatching(`[a-zA-Z0-9]{0,32}`).Draw(rt, "apiKey")
		cfg.BaseURL = rapid.SampledFrom([]string{"", "https://api.example.com/v1", "http://localhost:8080"}).Draw(rt, "baseUrl")
		cfg.ModelName = rapid.StringMatching(`[a-z0-9.-]{1,24}`).Draw(rt, "model")
		cfg.MaxRows = rapid.IntRange(1, 1000000).Draw(rt, "maxRows")
		cfg.MaxSessions = rapid.IntRange(1, 500).Draw(rt, "maxSessions")
		cfg.MaxToolDepth = rapid.IntRange(1, 32).Draw(rt, "maxToolDepth")
		cfg.DetailedLog = rapid.Bool().Draw(rt, "detailedLog")

		dir := t.TempDir()
		if err := Save(dir, cfg); err != nil {
			rt.Fatalf("Save failed: %v", err)
		}
		loaded, err := Load(dir)
		if err != nil {
			rt.Fatalf("Load failed: %v", err)
		}
		if loaded != cfg {
			rt.Fatalf("round trip mismatch:\nsaved:  %+v\nloaded: %+v", cfg, loaded)
		}
	})
}
