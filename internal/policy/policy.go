package policy

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	jsoniter "github.com/json-iterator/go"
	"github.com/open-policy-agent/opa/rego"

	"github.com/yostat/yostat/internal/facts"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//go:embed budget.rego
var budgetRego string

// Every rule module contributes to data.yostat.rules.<name>.violations.
const violationsQuery = "v := data.yostat.rules[_].violations[_]"

// Severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
	SeverityOff     = "off"
)

// Engine evaluates resource budget policies against a design's fact tables.
type Engine struct {
	queries map[string]rego.PreparedEvalQuery
	files   []string
}

// Violation represents a policy violation
type Violation struct {
	Rule      string `json:"rule"`
	Severity  string `json:"severity"`
	Path      string `json:"path"`
	Primitive string `json:"primitive,omitempty"`
	Count     int    `json:"count"`
	Limit     int    `json:"limit"`
	Message   string `json:"message"`
}

// Result contains the evaluation results
type Result struct {
	Violations []Violation `json:"violations"`
	Summary    Summary     `json:"summary"`
}

// Summary provides aggregate counts
type Summary struct {
	TotalViolations int `json:"total_violations"`
	Errors          int `json:"errors"`
	Warnings        int `json:"warnings"`
	Info            int `json:"info"`
}

// Input is the data structure passed to OPA
type Input struct {
	Top        string                    `json:"top"`
	Primitives []string                  `json:"primitives"`
	Nodes      []Node                    `json:"nodes"`
	Budgets    map[string]map[string]int `json:"budgets"`
}

// Node is one row of the design tree with its per-primitive counts.
type Node struct {
	Path      string         `json:"path"`
	Kind      string         `json:"kind"`
	Module    string         `json:"module"`
	Instances int            `json:"instances"`
	Counts    map[string]int `json:"counts"`
}

// RuleConfig decides whether a rule runs and at which severity.
// *config.Config implements it.
type RuleConfig interface {
	IsRuleEnabled(rule string) bool
	GetRuleSeverity(rule string, defaultSeverity string) string
}

// New creates a policy engine from the built-in budget rules plus every
// .rego file found in dirs. Empty entries in dirs are ignored.
func New(dirs ...string) (*Engine, error) {
	engine := &Engine{
		queries: make(map[string]rego.PreparedEvalQuery),
	}

	modules := []func(*rego.Rego){rego.Module("budget.rego", budgetRego)}
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("policy dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("policy dir %s is not a directory", dir)
		}
		files, err := filepath.Glob(filepath.Join(dir, "*.rego"))
		if err != nil {
			return nil, fmt.Errorf("finding policy files: %w", err)
		}
		sort.Strings(files)
		for _, f := range files {
			content, err := os.ReadFile(f)
			if err != nil {
				return nil, fmt.Errorf("reading %s: %w", f, err)
			}
			modules = append(modules, rego.Module(f, string(content)))
			engine.files = append(engine.files, f)
		}
	}

	opts := append(modules, rego.Query(violationsQuery))
	query, err := rego.New(opts...).PrepareForEval(context.Background())
	if err != nil {
		return nil, fmt.Errorf("preparing violations query: %w", err)
	}
	engine.queries["violations"] = query

	return engine, nil
}

// Files lists the extra policy files the engine loaded.
func (e *Engine) Files() []string {
	return append([]string(nil), e.files...)
}

// Evaluate runs the policies against the input data. Violations are sorted
// by path, rule and primitive.
func (e *Engine) Evaluate(ctx context.Context, input Input) (*Result, error) {
	inputMap, err := structToMap(input)
	if err != nil {
		return nil, fmt.Errorf("converting input: %w", err)
	}

	rs, err := e.queries["violations"].Eval(ctx, rego.EvalInput(inputMap))
	if err != nil {
		return nil, fmt.Errorf("evaluating violations: %w", err)
	}

	result := &Result{Violations: []Violation{}}
	for _, r := range rs {
		vmap, ok := r.Bindings["v"].(map[string]interface{})
		if !ok {
			continue
		}
		result.Violations = append(result.Violations, Violation{
			Rule:      getString(vmap, "rule"),
			Severity:  getString(vmap, "severity"),
			Path:      getString(vmap, "path"),
			Primitive: getString(vmap, "primitive"),
			Count:     getInt(vmap, "count"),
			Limit:     getInt(vmap, "limit"),
			Message:   getString(vmap, "message"),
		})
	}
	sortViolations(result.Violations)
	result.Summary = summarize(result.Violations)
	return result, nil
}

// Apply drops disabled rules and rewrites severities from cfg, then
// recomputes the summary.
func (r *Result) Apply(cfg RuleConfig) {
	if cfg == nil {
		return
	}
	kept := r.Violations[:0]
	for _, v := range r.Violations {
		if !cfg.IsRuleEnabled(v.Rule) {
			continue
		}
		v.Severity = cfg.GetRuleSeverity(v.Rule, v.Severity)
		kept = append(kept, v)
	}
	r.Violations = kept
	r.Summary = summarize(kept)
}

// HasErrors reports whether any violation has error severity.
func (r *Result) HasErrors() bool {
	return r.Summary.Errors > 0
}

// InputFromTables builds policy input from a design's fact tables.
func InputFromTables(top string, tables facts.Tables, budgets map[string]map[string]int) Input {
	input := Input{
		Top:        top,
		Primitives: make([]string, 0, len(tables.Primitives)),
		Nodes:      make([]Node, 0, len(tables.Nodes)),
		Budgets:    budgets,
	}
	if input.Budgets == nil {
		input.Budgets = map[string]map[string]int{}
	}
	for _, p := range tables.Primitives {
		input.Primitives = append(input.Primitives, p.Name)
	}

	index := make(map[string]int, len(tables.Nodes))
	for _, row := range tables.Nodes {
		index[row.Path] = len(input.Nodes)
		input.Nodes = append(input.Nodes, Node{
			Path:      row.Path,
			Kind:      row.Kind,
			Module:    row.Module,
			Instances: row.Instances,
			Counts:    map[string]int{},
		})
	}
	for _, u := range tables.Usage {
		if i, ok := index[u.Path]; ok {
			input.Nodes[i].Counts[u.Primitive] = u.Count
		}
	}
	return input
}

func summarize(violations []Violation) Summary {
	s := Summary{TotalViolations: len(violations)}
	for _, v := range violations {
		switch v.Severity {
		case SeverityError:
			s.Errors++
		case SeverityWarning:
			s.Warnings++
		case SeverityInfo:
			s.Info++
		}
	}
	return s
}

func sortViolations(vs []Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		if vs[i].Path != vs[j].Path {
			return vs[i].Path < vs[j].Path
		}
		if vs[i].Rule != vs[j].Rule {
			return vs[i].Rule < vs[j].Rule
		}
		return vs[i].Primitive < vs[j].Primitive
	})
}

// Helper functions
func structToMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var result map[string]interface{}
	err = json.Unmarshal(data, &result)
	return result, err
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getInt(m map[string]interface{}, key string) int {
	if v, ok := m[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case interface{ Int64() (int64, error) }:
			i, _ := n.Int64()
			return int(i)
		}
	}
	return 0
}
