package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFileJSON(t *testing.T) {
	path := writeConfig(t, "verilog_lint.json", `{
  "lint": {
    "rules": {"unused-port": "off"},
    "ignorePatterns": ["*_tb.v"]
  },
  "policy": {"disabled": true}
}`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.IsRuleEnabled("unused-port") {
		t.Fatal("expected unused-port to be disabled")
	}
	if !cfg.Policy.Disabled {
		t.Fatal("expected policy disabled")
	}
	if !cfg.ShouldIgnoreFile("bench/top_tb.v") {
		t.Fatal("expected *_tb.v to be ignored")
	}
}

func TestLoadFileYAML(t *testing.T) {
	path := writeConfig(t, "verilog_lint.yaml", `lint:
  rules:
    blocking-in-seq: warning
analysis:
  maxParallelFiles: 4
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := cfg.GetRuleSeverity("blocking-in-seq", "error"); got != "warning" {
		t.Fatalf("expected warning, got %q", got)
	}
	if cfg.Analysis.MaxParallelFiles != 4 {
		t.Fatalf("expected maxParallelFiles 4, got %d", cfg.Analysis.MaxParallelFiles)
	}
}

func TestLoadFileAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "verilog_lint.json", `{}`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Lint.Rules == nil {
		t.Fatal("expected rules map to be initialized")
	}
	if cfg.Watch.DebounceMs != 300 {
		t.Fatalf("expected default debounce 300, got %d", cfg.Watch.DebounceMs)
	}
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Watch.DebounceMs != 300 {
		t.Fatalf("expected default config, got %+v", cfg)
	}
}

func TestGetRuleSeverityFallsBack(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.GetRuleSeverity("unused-port", DefaultSeverities["unused-port"]); got != "warning" {
		t.Fatalf("expected warning, got %q", got)
	}
}

func TestSaveRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verilog_lint.json")

	cfg := DefaultConfig()
	cfg.Lint.Rules["unused-port"] = "error"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := loaded.GetRuleSeverity("unused-port", "warning"); got != "error" {
		t.Fatalf("expected error, got %q", got)
	}
}
