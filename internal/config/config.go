package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// FileName is the configuration file yostat looks for.
const FileName = "yostat.json"

// Config is the top-level configuration for yostat
type Config struct {
	// Top is the root module used when no module in the report is marked top
	Top string `json:"top,omitempty"`

	// Reports is a list of glob patterns used to find the report when a
	// directory is given instead of a file
	Reports []string `json:"reports,omitempty"`

	// Budgets maps a module name pattern to per-primitive limits
	Budgets map[string]map[string]int `json:"budgets,omitempty"`

	// Policy contains budget rule configuration
	Policy PolicyConfig `json:"policy,omitempty"`

	// Cache controls the parsed report cache
	Cache CacheConfig `json:"cache,omitempty"`

	// Watch controls live reload
	Watch WatchConfig `json:"watch,omitempty"`

	// TimingPath, when set, receives one JSON line per pipeline stage
	TimingPath string `json:"timingPath,omitempty"`

	// LogLevel is a logrus level name: "debug", "info", "warning", "error"
	LogLevel string `json:"logLevel,omitempty"`
}

// PolicyConfig contains budget rule configuration
type PolicyConfig struct {
	// Dir holds extra .rego files evaluated next to the built-in rules
	Dir string `json:"dir,omitempty"`

	// Rules maps rule names to severity: "off", "info", "warning", "error"
	Rules map[string]string `json:"rules,omitempty"`
}

// CacheConfig controls the parsed report cache
type CacheConfig struct {
	// Enabled turns on caching of parsed reports by content hash
	Enabled *bool `json:"enabled,omitempty"`

	// Size is the number of parsed reports kept
	Size int `json:"size,omitempty"`
}

// WatchConfig controls live reload
type WatchConfig struct {
	// DebounceMs is how long a burst of file writes must settle before reload
	DebounceMs int `json:"debounceMs,omitempty"`
}

// envOverrides are read from the environment (and a .env file) after the
// config file, and win over it.
type envOverrides struct {
	Top        string `env:"YOSTAT_TOP"`
	PolicyDir  string `env:"YOSTAT_POLICY_DIR"`
	CacheSize  int    `env:"YOSTAT_CACHE_SIZE"`
	TimingPath string `env:"YOSTAT_TIMING_JSONL"`
	LogLevel   string `env:"YOSTAT_LOG_LEVEL"`
}

// DefaultConfig returns a sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		Top:     "top",
		Reports: []string{"*.json", "build/*.json", "**/*.yosys.json"},
		Budgets: map[string]map[string]int{},
		Policy: PolicyConfig{
			Rules: map[string]string{},
		},
		Cache: CacheConfig{
			Enabled: boolPtr(true),
			Size:    8,
		},
		Watch: WatchConfig{
			DebounceMs: 200,
		},
		LogLevel: "info",
	}
}

func boolPtr(v bool) *bool {
	return &v
}

// Load finds and loads the configuration file
// Search order:
//  1. ./yostat.json (current working directory)
//  2. ./.yostat.json (current working directory)
//  3. <reportPath dir>/yostat.json (if different from cwd)
//  4. ~/.config/yostat/config.json
//
// Returns DefaultConfig if no config file is found. Environment overrides
// are applied in every case.
func Load(reportPath string) (*Config, error) {
	cwd, _ := os.Getwd()

	searchPaths := []string{
		filepath.Join(cwd, FileName),
		filepath.Join(cwd, "."+FileName),
	}

	// The report's directory, or the directory itself when one was given
	if reportPath != "" {
		dir := reportPath
		if info, err := os.Stat(reportPath); err == nil && !info.IsDir() {
			dir = filepath.Dir(reportPath)
		}
		absDir, _ := filepath.Abs(dir)
		if absDir != cwd {
			searchPaths = append(searchPaths,
				filepath.Join(dir, FileName),
				filepath.Join(dir, "."+FileName),
			)
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".config", "yostat", "config.json"))
	}

	for _, path := range searchPaths {
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads configuration from a specific file
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Top == "" {
		c.Top = def.Top
	}
	if len(c.Reports) == 0 {
		c.Reports = def.Reports
	}
	if c.Budgets == nil {
		c.Budgets = map[string]map[string]int{}
	}
	if c.Policy.Rules == nil {
		c.Policy.Rules = make(map[string]string)
	}
	if c.Cache.Enabled == nil {
		c.Cache.Enabled = boolPtr(true)
	}
	if c.Cache.Size <= 0 {
		c.Cache.Size = def.Cache.Size
	}
	if c.Watch.DebounceMs <= 0 {
		c.Watch.DebounceMs = def.Watch.DebounceMs
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// ApplyEnv overlays YOSTAT_* environment variables. A .env file in the
// working directory is read first; variables already set win over it.
func (c *Config) ApplyEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("reading .env: %w", err)
		}
	}

	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}

	if ov.Top != "" {
		c.Top = ov.Top
	}
	if ov.PolicyDir != "" {
		c.Policy.Dir = ov.PolicyDir
	}
	if ov.CacheSize > 0 {
		c.Cache.Size = ov.CacheSize
	}
	if ov.TimingPath != "" {
		c.TimingPath = ov.TimingPath
	}
	if ov.LogLevel != "" {
		c.LogLevel = ov.LogLevel
	}
	return nil
}

// Save writes the configuration to a file
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

// CacheEnabled reports whether parsed reports should be cached
func (c *Config) CacheEnabled() bool {
	if c == nil || c.Cache.Enabled == nil {
		return false
	}
	return *c.Cache.Enabled
}

// GetRuleSeverity returns the severity for a rule, or the default if not configured
func (c *Config) GetRuleSeverity(rule string, defaultSeverity string) string {
	if severity, ok := c.Policy.Rules[rule]; ok {
		return severity
	}
	return defaultSeverity
}

// IsRuleEnabled returns true if the rule is not set to "off"
func (c *Config) IsRuleEnabled(rule string) bool {
	if severity, ok := c.Policy.Rules[rule]; ok {
		return severity != "off"
	}
	return true // enabled by default
}
