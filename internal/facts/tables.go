package facts

import (
	"sort"
	"strconv"
	"strings"

	"github.com/yostat/yostat/internal/design"
)

// Tables is the relational form of a design: one flat row per node, per
// node and primitive, and per primitive in the catalog.
type Tables struct {
	Nodes      []NodeRow      `json:"nodes"`
	Usage      []UsageRow     `json:"usage"`
	Primitives []PrimitiveRow `json:"primitives"`
}

// Node kinds.
const (
	KindModule = "module"
	KindHolder = "holder"
	KindSelf   = "self"
)

type NodeRow struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	Parent    string `json:"parent"`
	Depth     int    `json:"depth"`
	Kind      string `json:"kind"`
	Module    string `json:"module"`
	Instances int    `json:"instances"`
}

type UsageRow struct {
	Path      string `json:"path"`
	Primitive string `json:"primitive"`
	Count     int    `json:"count"`
}

type PrimitiveRow struct {
	Name  string `json:"name"`
	Total int    `json:"total"`
}

// BuildTables flattens d. Sibling instances of the same module share a
// name, so their path segments get a "#<n>" occurrence suffix to keep
// paths unique. Segments are escaped first (see EscapeSegment), so a
// suffix never collides with a real name and "/" only separates segments.
func BuildTables(d *design.Design) Tables {
	out := emptyTables()
	if d == nil || d.Root == nil {
		return out
	}

	var visit func(n *design.Node, segment, parentPath string, depth int)
	visit = func(n *design.Node, segment, parentPath string, depth int) {
		path := segment
		if parentPath != "" {
			path = parentPath + "/" + segment
		}
		out.Nodes = append(out.Nodes, nodeRow(n, path, parentPath, depth))
		for _, prim := range n.Primitives() {
			if n.Counts[prim] == 0 {
				continue
			}
			out.Usage = append(out.Usage, UsageRow{Path: path, Primitive: prim, Count: n.Counts[prim]})
		}

		segments := childSegments(n.Children)
		for i, c := range n.Children {
			visit(c, segments[i], path, depth+1)
		}
	}
	visit(d.Root, EscapeSegment(d.Root.Name), "", 0)

	for _, prim := range d.Primitives {
		out.Primitives = append(out.Primitives, PrimitiveRow{Name: prim, Total: d.Root.Count(prim)})
	}
	return out
}

func nodeRow(n *design.Node, path, parentPath string, depth int) NodeRow {
	row := NodeRow{
		Path:      path,
		Name:      n.Name,
		Parent:    parentPath,
		Depth:     depth,
		Kind:      KindModule,
		Module:    n.Name,
		Instances: 1,
	}
	switch {
	case n.IsSelf():
		row.Kind = KindSelf
		row.Module = ""
		if n.Parent != nil {
			row.Module = n.Parent.Name
		}
	case n.IsHolder():
		count, module, _ := design.ParseHolderName(n.Name)
		row.Kind = KindHolder
		row.Module = module
		row.Instances = count
	}
	return row
}

func childSegments(children []*design.Node) []string {
	total := make(map[string]int, len(children))
	for _, c := range children {
		total[c.Name]++
	}
	seen := make(map[string]int, len(children))
	segments := make([]string, len(children))
	for i, c := range children {
		segment := EscapeSegment(c.Name)
		if total[c.Name] == 1 {
			segments[i] = segment
			continue
		}
		segments[i] = segment + "#" + strconv.Itoa(seen[c.Name])
		seen[c.Name]++
	}
	return segments
}

var segmentEscaper = strings.NewReplacer("%", "%25", "/", "%2F", "#", "%23")

// EscapeSegment makes a node name safe to use as one path segment.
func EscapeSegment(name string) string {
	return segmentEscaper.Replace(name)
}

// Paths returns every node path in the tables, sorted.
func Paths(tables Tables) []string {
	paths := make([]string, 0, len(tables.Nodes))
	for _, row := range tables.Nodes {
		paths = append(paths, row.Path)
	}
	sort.Strings(paths)
	return paths
}
