package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for vlint.
type Config struct {
	// Lint contains rule configuration
	Lint LintConfig `json:"lint,omitempty" yaml:"lint,omitempty"`

	// Policy contains Rego policy configuration
	Policy PolicyConfig `json:"policy,omitempty" yaml:"policy,omitempty"`

	// Analysis contains analysis options
	Analysis AnalysisConfig `json:"analysis,omitempty" yaml:"analysis,omitempty"`

	// Watch contains watch-mode options
	Watch WatchConfig `json:"watch,omitempty" yaml:"watch,omitempty"`
}

// LintConfig contains rule configuration.
type LintConfig struct {
	// Rules maps rule names to severity: "off", "warning", "error"
	Rules map[string]string `json:"rules,omitempty" yaml:"rules,omitempty"`

	// IgnorePatterns is a list of file patterns to skip entirely
	IgnorePatterns []string `json:"ignorePatterns,omitempty" yaml:"ignorePatterns,omitempty"`
}

// PolicyConfig contains Rego policy configuration.
type PolicyConfig struct {
	// Dir points at a directory of .rego files replacing the built-in rules
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// Disabled turns policy evaluation off entirely
	Disabled bool `json:"disabled,omitempty" yaml:"disabled,omitempty"`
}

// AnalysisConfig contains analysis options.
type AnalysisConfig struct {
	// MaxParallelFiles limits concurrent file processing (0 = unbounded)
	MaxParallelFiles int `json:"maxParallelFiles,omitempty" yaml:"maxParallelFiles,omitempty"`
}

// WatchConfig contains watch-mode options.
type WatchConfig struct {
	// DebounceMs is the rebuild debounce in milliseconds
	DebounceMs int `json:"debounceMs,omitempty" yaml:"debounceMs,omitempty"`
}

// DefaultSeverities maps each built-in rule to its default severity.
// Policy rules carry their own severities and are only overridden when
// named explicitly in Lint.Rules.
var DefaultSeverities = map[string]string{
	"unused-port":          "warning",
	"nonblocking-in-comb":  "error",
	"blocking-in-seq":      "error",
	"undeclared-reg":       "error",
	"mismatched-begin-end": "error",
	"mismatched-module":    "error",
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		Lint: LintConfig{
			Rules:          map[string]string{},
			IgnorePatterns: []string{},
		},
		Analysis: AnalysisConfig{
			MaxParallelFiles: 0, // unbounded
		},
		Watch: WatchConfig{
			DebounceMs: 300,
		},
	}
}

// Load finds and loads the configuration file.
// Search order:
//  1. ./verilog_lint.json (current working directory)
//  2. ./.verilog_lint.json
//  3. ./verilog_lint.yaml
//  4. <rootPath>/verilog_lint.json, .json/.yaml variants (if different from cwd)
//  5. ~/.config/verilog_lint/config.json
//
// Returns DefaultConfig if no config file is found.
func Load(rootPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	searchPaths := []string{
		filepath.Join(cwd, "verilog_lint.json"),
		filepath.Join(cwd, ".verilog_lint.json"),
		filepath.Join(cwd, "verilog_lint.yaml"),
	}

	if info, err := os.Stat(rootPath); err == nil && info.IsDir() {
		absRoot, _ := filepath.Abs(rootPath)
		if absRoot != cwd {
			searchPaths = append(searchPaths,
				filepath.Join(rootPath, "verilog_lint.json"),
				filepath.Join(rootPath, ".verilog_lint.json"),
				filepath.Join(rootPath, "verilog_lint.yaml"),
			)
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "verilog_lint", "config.json"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	return DefaultConfig(), nil
}

// LoadFile loads configuration from a specific file. YAML is detected by
// extension; everything else is parsed as JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// applyDefaults fills in missing configuration with defaults.
func (c *Config) applyDefaults() {
	if c.Lint.Rules == nil {
		c.Lint.Rules = make(map[string]string)
	}
	if c.Watch.DebounceMs == 0 {
		c.Watch.DebounceMs = 300
	}
}

// Save writes the configuration to a file as JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// GetRuleSeverity returns the configured severity for a rule, or the given
// default when the rule is not configured.
func (c *Config) GetRuleSeverity(rule string, defaultSeverity string) string {
	if severity, ok := c.Lint.Rules[rule]; ok {
		return severity
	}
	return defaultSeverity
}

// IsRuleEnabled returns true if the rule is not set to "off".
func (c *Config) IsRuleEnabled(rule string) bool {
	if severity, ok := c.Lint.Rules[rule]; ok {
		return severity != "off"
	}
	return true
}

// ShouldIgnoreFile checks if a file should be skipped entirely.
func (c *Config) ShouldIgnoreFile(filePath string) bool {
	for _, pattern := range c.Lint.IgnorePatterns {
		if matched, _ := filepath.Match(pattern, filePath); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, filepath.Base(filePath)); matched {
			return true
		}
	}
	return false
}
