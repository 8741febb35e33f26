package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ResolveReport turns a CLI argument into a report file. A file is used as
// is; for a directory the Reports patterns are expanded under it and
// exactly one JSON file must match.
func (c *Config) ResolveReport(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("report path: %w", err)
	}
	if !info.IsDir() {
		return path, nil
	}

	matches, err := c.FindReports(path)
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no report in %s matches %s", path, strings.Join(c.Reports, ", "))
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%d reports in %s, pick one: %s", len(matches), path, strings.Join(matches, ", "))
	}
}

// FindReports expands the Reports patterns under rootPath and returns the
// matching JSON files, sorted and without duplicates.
func (c *Config) FindReports(rootPath string) ([]string, error) {
	fileSet := make(map[string]bool)
	for _, pattern := range c.Reports {
		// Make pattern absolute if relative
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(rootPath, pattern)
		}

		matches, err := expandGlob(pattern)
		if err != nil {
			// Silently skip invalid patterns
			continue
		}

		for _, match := range matches {
			if strings.ToLower(filepath.Ext(match)) == ".json" && !isConfigFile(match) {
				fileSet[match] = true
			}
		}
	}

	result := make([]string, 0, len(fileSet))
	for f := range fileSet {
		result = append(result, f)
	}
	sort.Strings(result)
	return result, nil
}

func isConfigFile(path string) bool {
	base := filepath.Base(path)
	return base == FileName || base == "."+FileName
}

// expandGlob expands a glob pattern, handling ** for recursive matching
func expandGlob(pattern string) ([]string, error) {
	if strings.Contains(pattern, "**") {
		return expandDoubleStarGlob(pattern)
	}
	return filepath.Glob(pattern)
}

// expandDoubleStarGlob handles ** patterns by walking the directory tree
func expandDoubleStarGlob(pattern string) ([]string, error) {
	var results []string

	parts := strings.SplitN(pattern, "**", 2)
	if len(parts) != 2 {
		return filepath.Glob(pattern)
	}

	baseDir := filepath.Clean(parts[0])
	if baseDir == "" {
		baseDir = "."
	}
	suffix := strings.TrimPrefix(parts[1], string(filepath.Separator))

	err := filepath.Walk(baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors, continue walking
		}
		if info.IsDir() {
			return nil
		}
		if suffix == "" {
			results = append(results, path)
			return nil
		}

		relPath, err := filepath.Rel(baseDir, path)
		if err != nil {
			return nil
		}
		if matchSuffix(relPath, suffix) {
			results = append(results, path)
		}
		return nil
	})

	return results, err
}

// matchSuffix checks if a path matches a suffix pattern (after **)
func matchSuffix(path, pattern string) bool {
	// No directory component: match against the file name
	if !strings.Contains(pattern, string(filepath.Separator)) {
		matched, _ := filepath.Match(pattern, filepath.Base(path))
		return matched
	}

	matched, _ := filepath.Match(pattern, path)
	if matched {
		return true
	}

	// Also try matching just the tail of the path
	if len(path) > len(pattern) {
		matched, _ = filepath.Match(pattern, path[len(path)-len(pattern):])
		return matched
	}

	return false
}
