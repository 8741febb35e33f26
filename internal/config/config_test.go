package config

import (
	"path/filepath"
	"testing"
)

func TestLoadFileAppliesDefaults(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), FileName), `{
  "top": "soc",
  "budgets": {"alu*": {"LUT4": 100}},
  "policy": {"rules": {"budget_exceeded": "warning"}}
}`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Top != "soc" {
		t.Fatalf("expected top soc, got %q", cfg.Top)
	}
	if cfg.Budgets["alu*"]["LUT4"] != 100 {
		t.Fatalf("budgets not loaded: %v", cfg.Budgets)
	}
	if !cfg.CacheEnabled() || cfg.Cache.Size != 8 {
		t.Fatalf("expected cache defaults, got %+v", cfg.Cache)
	}
	if cfg.Watch.DebounceMs != 200 {
		t.Fatalf("expected default debounce, got %d", cfg.Watch.DebounceMs)
	}
	if len(cfg.Reports) == 0 {
		t.Fatalf("expected default report patterns")
	}
	if got := cfg.GetRuleSeverity("budget_exceeded", "error"); got != "warning" {
		t.Fatalf("expected configured severity, got %q", got)
	}
	if got := cfg.GetRuleSeverity("unknown", "error"); got != "error" {
		t.Fatalf("expected default severity, got %q", got)
	}
}

func TestLoadFileRejectsBadJSON(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), FileName), `{"top": `)
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("YOSTAT_TOP", "chip")
	t.Setenv("YOSTAT_CACHE_SIZE", "32")
	t.Setenv("YOSTAT_TIMING_JSONL", "/tmp/timing.jsonl")

	path := writeFile(t, filepath.Join(t.TempDir(), FileName), `{"top": "soc"}`)
	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Top != "chip" {
		t.Fatalf("expected env top, got %q", cfg.Top)
	}
	if cfg.Cache.Size != 32 {
		t.Fatalf("expected env cache size, got %d", cfg.Cache.Size)
	}
	if cfg.TimingPath != "/tmp/timing.jsonl" {
		t.Fatalf("expected env timing path, got %q", cfg.TimingPath)
	}
}

func TestEnvRejectsBadNumber(t *testing.T) {
	t.Setenv("YOSTAT_CACHE_SIZE", "lots")
	if err := DefaultConfig().ApplyEnv(); err == nil {
		t.Fatalf("expected error for non-numeric cache size")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	cfg := DefaultConfig()
	cfg.Budgets["core"] = map[string]int{"DP16KD": 4}
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded.Budgets["core"]["DP16KD"] != 4 {
		t.Fatalf("budget lost in round trip: %v", loaded.Budgets)
	}
	if !loaded.IsRuleEnabled("budget_exceeded") {
		t.Fatalf("rules are enabled by default")
	}
}
