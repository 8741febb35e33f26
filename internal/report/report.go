package report

import (
	"sort"
	"strings"
)

// Attribute keys Yosys writes on module definitions.
const (
	AttrTop      = "top"
	AttrBlackbox = "blackbox"
	AttrWhitebox = "whitebox"
)

// DefaultTop is the module name used when no module carries the top attribute.
const DefaultTop = "top"

// Module is one module type defined in the report.
type Module struct {
	Name string

	// Cells maps a cell type to the number of instances of it in this module.
	Cells map[string]int

	Top      bool
	Blackbox bool
	Whitebox bool
}

// Report is the parsed form of a Yosys JSON netlist, keyed by module type.
type Report struct {
	Modules map[string]*Module
}

// New returns an empty report.
func New() *Report {
	return &Report{Modules: make(map[string]*Module)}
}

// Add registers m, replacing any module with the same name.
func (r *Report) Add(m *Module) {
	if m.Cells == nil {
		m.Cells = make(map[string]int)
	}
	r.Modules[m.Name] = m
}

// Lookup returns the module type called name.
func (r *Report) Lookup(name string) (*Module, bool) {
	if r == nil {
		return nil, false
	}
	m, ok := r.Modules[name]
	return m, ok
}

// Names returns all module type names in ascending order.
func (r *Report) Names() []string {
	names := make([]string, 0, len(r.Modules))
	for name := range r.Modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TopCandidates returns the names of every module marked top, sorted.
func (r *Report) TopCandidates() []string {
	var tops []string
	for _, name := range r.Names() {
		if r.Modules[name].Top {
			tops = append(tops, name)
		}
	}
	return tops
}

// Top returns the design root: the first module marked top, or fallback
// when none is marked.
func (r *Report) Top(fallback string) string {
	if tops := r.TopCandidates(); len(tops) > 0 {
		return tops[0]
	}
	if fallback == "" {
		return DefaultTop
	}
	return fallback
}

// AddCell counts one more instance of cellType.
func (m *Module) AddCell(cellType string) {
	if m.Cells == nil {
		m.Cells = make(map[string]int)
	}
	m.Cells[cellType]++
}

// SortedCellTypes returns the cell types of m in ascending order. Tree
// children are built in this order.
func (m *Module) SortedCellTypes() []string {
	types := make([]string, 0, len(m.Cells))
	for t := range m.Cells {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// IsPrimitive reports whether the module is a leaf resource.
func (m *Module) IsPrimitive() bool {
	return m.Blackbox || m.Whitebox
}

// AllCellsArePrimitive is true iff every cell type of m is in primitives.
// A module without cells satisfies it.
func (m *Module) AllCellsArePrimitive(primitives map[string]bool) bool {
	for t := range m.Cells {
		if !primitives[t] {
			return false
		}
	}
	return true
}

// attrTrue interprets a Yosys attribute value. Yosys encodes integer
// attributes as strings of binary digits.
func attrTrue(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case int:
		return val != 0
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return false
		}
		if strings.Trim(s, "01xzXZ") == "" {
			return strings.Contains(s, "1")
		}
		return true
	default:
		return true
	}
}
