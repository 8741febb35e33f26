package policy

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yostat/yostat/internal/design"
	"github.com/yostat/yostat/internal/facts"
)

const socReport = `{
  "modules": {
    "LUT4": {"attributes": {"blackbox": "1"}},
    "FF":   {"attributes": {"blackbox": "1"}},
    "adder": {"cells": {"l0": {"type": "LUT4"}, "l1": {"type": "LUT4"}, "f": {"type": "FF"}}},
    "soc": {
      "attributes": {"top": "1"},
      "cells": {"a0": {"type": "adder"}, "a1": {"type": "adder"}, "l0": {"type": "LUT4"}}
    }
  }
}`

func socInput(t *testing.T, budgets map[string]map[string]int) Input {
	t.Helper()
	d, err := design.Parse(strings.NewReader(socReport), design.Options{})
	require.NoError(t, err)
	return InputFromTables(d.Top, facts.BuildTables(d), budgets)
}

type ruleMap map[string]string

func (m ruleMap) IsRuleEnabled(rule string) bool { return m[rule] != SeverityOff }

func (m ruleMap) GetRuleSeverity(rule, def string) string {
	if s, ok := m[rule]; ok {
		return s
	}
	return def
}

func rules(vs []Violation) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Rule)
	}
	return out
}

func TestInputFromTables(t *testing.T) {
	input := socInput(t, nil)

	assert.Equal(t, "soc", input.Top)
	assert.Equal(t, []string{"FF", "LUT4"}, input.Primitives)
	assert.NotNil(t, input.Budgets)
	require.NotEmpty(t, input.Nodes)
	assert.Equal(t, "soc", input.Nodes[0].Path)
	assert.Equal(t, map[string]int{"FF": 2, "LUT4": 5}, input.Nodes[0].Counts)
}

func TestBudgetExceeded(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)

	result, err := engine.Evaluate(context.Background(), socInput(t, map[string]map[string]int{
		"adder": {"LUT4": 1, "FF": 1},
		"so*":   {"LUT4": 10},
	}))
	require.NoError(t, err)

	require.Len(t, result.Violations, 2)
	for _, v := range result.Violations {
		assert.Equal(t, "budget_exceeded", v.Rule)
		assert.Equal(t, SeverityError, v.Severity)
		assert.Equal(t, "LUT4", v.Primitive)
		assert.Equal(t, 2, v.Count)
		assert.Equal(t, 1, v.Limit)
	}
	assert.Equal(t, "soc/[2x] adder/adder#0", result.Violations[0].Path)
	assert.Equal(t, "soc/[2x] adder/adder#1", result.Violations[1].Path)
	assert.Equal(t, Summary{TotalViolations: 2, Errors: 2}, result.Summary)
	assert.True(t, result.HasErrors())
}

func TestBudgetPatternSpansDots(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)

	d, err := design.Parse(strings.NewReader(`{
  "modules": {
    "LUT4": {"attributes": {"blackbox": "1"}},
    "cpu.alu": {"cells": {"l0": {"type": "LUT4"}, "l1": {"type": "LUT4"}}},
    "soc": {"attributes": {"top": "1"}, "cells": {"alu": {"type": "cpu.alu"}}}
  }
}`), design.Options{})
	require.NoError(t, err)
	input := InputFromTables(d.Top, facts.BuildTables(d), map[string]map[string]int{
		"cpu*": {"LUT4": 1},
	})

	result, err := engine.Evaluate(context.Background(), input)
	require.NoError(t, err)

	require.Equal(t, []string{"budget_exceeded"}, rules(result.Violations))
	assert.Equal(t, "soc/cpu.alu", result.Violations[0].Path)
	assert.Equal(t, 2, result.Violations[0].Count)
}

func TestBudgetHygieneRules(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)

	result, err := engine.Evaluate(context.Background(), socInput(t, map[string]map[string]int{
		"dsp_*": {"LUT4": 100},
		"soc":   {"MULT18X18D": 4},
	}))
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"budget_unmatched", "budget_unused_primitive"}, rules(result.Violations))
	assert.False(t, result.HasErrors())
	assert.Equal(t, 1, result.Summary.Warnings)
	assert.Equal(t, 1, result.Summary.Info)
}

func TestApplyRuleConfig(t *testing.T) {
	engine, err := New()
	require.NoError(t, err)

	result, err := engine.Evaluate(context.Background(), socInput(t, map[string]map[string]int{
		"adder": {"LUT4": 1},
		"dsp_*": {"LUT4": 1},
	}))
	require.NoError(t, err)
	require.True(t, result.HasErrors())

	result.Apply(ruleMap{"budget_exceeded": SeverityWarning, "budget_unmatched": SeverityOff})

	assert.Equal(t, []string{"budget_exceeded", "budget_exceeded"}, rules(result.Violations))
	assert.False(t, result.HasErrors())
	assert.Equal(t, Summary{TotalViolations: 2, Warnings: 2}, result.Summary)
}

func TestCustomPolicyDir(t *testing.T) {
	dir := t.TempDir()
	custom := `package yostat.rules.flops

import rego.v1

violations contains v if {
	some node in input.nodes
	node.kind == "holder"
	node.instances > 1
	v := {
		"rule": "replicated_module",
		"severity": "info",
		"path": node.path,
		"count": node.instances,
		"limit": 1,
		"message": sprintf("%s is instantiated %d times", [node.module, node.instances]),
	}
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "flops.rego"), []byte(custom), 0o644))

	engine, err := New("", dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "flops.rego")}, engine.Files())

	result, err := engine.Evaluate(context.Background(), socInput(t, nil))
	require.NoError(t, err)
	require.Len(t, result.Violations, 1)
	assert.Equal(t, "replicated_module", result.Violations[0].Rule)
	assert.Equal(t, "soc/[2x] adder", result.Violations[0].Path)
	assert.Equal(t, 2, result.Violations[0].Count)
}

func TestNewRejectsBadPolicy(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.rego"), []byte("package yostat.rules.broken\nviolations contains"), 0o644))
	_, err = New(dir)
	assert.Error(t, err)
}
