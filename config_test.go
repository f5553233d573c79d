package ocigo

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_MissingFileReturnsZeroValue(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Format != (FormatConfig{}) || cfg.Pool != (PoolConfig{}) {
		t.Fatalf("expected a zero-value Config, got %+v", cfg)
	}
}

func TestLoadConfig_ParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ocigo.yaml")
	contents := "format:\n  timestamp: \"YYYY-MM-DD\"\npool:\n  min: 2\n  max: 10\n  increment: 2\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Format.Timestamp != "YYYY-MM-DD" {
		t.Fatalf("expected overridden timestamp format, got %q", cfg.Format.Timestamp)
	}
	if cfg.Pool.Min != 2 || cfg.Pool.Max != 10 || cfg.Pool.Increment != 2 {
		t.Fatalf("unexpected pool config: %+v", cfg.Pool)
	}
}

func TestFormatConfig_ApplyFormatsOnlySetsNonEmptyFields(t *testing.T) {
	env := &Environment{}
	env.formats[0] = "unchanged-date"
	fc := FormatConfig{Numeric: "FM999"}

	fc.ApplyFormats(env)

	if env.Format(0) != "unchanged-date" {
		t.Fatalf("expected date format left untouched, got %q", env.Format(0))
	}
	if env.Format(3) != "FM999" {
		t.Fatalf("expected numeric format applied, got %q", env.Format(3))
	}
}
