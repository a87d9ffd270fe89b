package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.OutputNameFormat != "{name}.xml" || cfg.MaxConcurrency != 4 || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.Conversion.MaxGenericDepth != 2 || cfg.Conversion.LineEnding != "crlf" {
		t.Fatalf("unexpected conversion defaults %+v", cfg.Conversion)
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
input_dir: ./drawings
max_concurrency: 8
archive_processed: true
archive_timestamp_subdirs: true
conversion:
  max_generic_depth: 3
  line_ending: lf
  indent: "\t"
  strict: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.InputDir != "./drawings" || cfg.MaxConcurrency != 8 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.OutputDir != "./output" {
		t.Fatalf("expected default output dir, got %s", cfg.OutputDir)
	}
	if !cfg.ArchiveProcessed || !cfg.ArchiveTimestampSubdirs {
		t.Fatalf("expected archiving into dated directories, got %+v", cfg)
	}
	if cfg.Conversion.MaxGenericDepth != 3 || !cfg.Conversion.Strict || cfg.Conversion.Indent != "\t" {
		t.Fatalf("unexpected conversion config %+v", cfg.Conversion)
	}
	if cfg.Conversion.LineEndingString() != "\n" {
		t.Fatalf("unexpected line ending %q", cfg.Conversion.LineEndingString())
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"yaml":        "input_dir: [",
		"log level":   "log_level: loud\n",
		"concurrency": "max_concurrency: -1\n",
		"depth":       "conversion:\n  max_generic_depth: -2\n",
		"line ending": "conversion:\n  line_ending: cr\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, content)); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if cfg.MaxConcurrency != 4 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}

	_, err = LoadOrDefault(writeConfig(t, "log_level: loud\n"))
	if err == nil || !strings.Contains(err.Error(), "log_level") {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLineEndingString(t *testing.T) {
	cases := map[string]string{"crlf": "\r\n", "lf": "\n", "none": ""}
	for name, want := range cases {
		if got := (ConversionConfig{LineEnding: name}).LineEndingString(); got != want {
			t.Fatalf("%s: got %q, want %q", name, got, want)
		}
	}
}
