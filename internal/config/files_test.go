package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestResolveReportFile(t *testing.T) {
	root := t.TempDir()
	report := writeFile(t, filepath.Join(root, "design.json"), "{}")

	cfg := DefaultConfig()
	got, err := cfg.ResolveReport(report)
	if err != nil {
		t.Fatalf("ResolveReport: %v", err)
	}
	if got != report {
		t.Fatalf("expected %s, got %s", report, got)
	}
}

func TestResolveReportDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), "{}")
	writeFile(t, filepath.Join(root, "notes.txt"), "")
	report := writeFile(t, filepath.Join(root, "build", "soc.json"), "{}")

	cfg := DefaultConfig()
	got, err := cfg.ResolveReport(root)
	if err != nil {
		t.Fatalf("ResolveReport: %v", err)
	}
	if filepath.Clean(got) != filepath.Clean(report) {
		t.Fatalf("expected %s, got %s", report, got)
	}
}

func TestResolveReportDoubleStar(t *testing.T) {
	root := t.TempDir()
	report := writeFile(t, filepath.Join(root, "out", "ecp5", "soc.yosys.json"), "{}")
	writeFile(t, filepath.Join(root, "out", "ecp5", "soc.pnr.json"), "{}")

	cfg := DefaultConfig()
	cfg.Reports = []string{"**/*.yosys.json"}
	got, err := cfg.ResolveReport(root)
	if err != nil {
		t.Fatalf("ResolveReport: %v", err)
	}
	if filepath.Clean(got) != filepath.Clean(report) {
		t.Fatalf("expected %s, got %s", report, got)
	}
}

func TestResolveReportAmbiguousAndMissing(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()

	if _, err := cfg.ResolveReport(root); err == nil || !strings.Contains(err.Error(), "no report") {
		t.Fatalf("expected missing report error, got %v", err)
	}

	writeFile(t, filepath.Join(root, "a.json"), "{}")
	writeFile(t, filepath.Join(root, "b.json"), "{}")
	if _, err := cfg.ResolveReport(root); err == nil || !strings.Contains(err.Error(), "2 reports") {
		t.Fatalf("expected ambiguity error, got %v", err)
	}

	if _, err := cfg.ResolveReport(filepath.Join(root, "nope.json")); err == nil {
		t.Fatalf("expected error for missing path")
	}
}
