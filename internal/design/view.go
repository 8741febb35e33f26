package design

// Read-only queries a tree display needs. Column 0 is the node name; column
// i > 0 is the count of Primitives[i-1].

// ColumnKind is the value type of a display column.
type ColumnKind int

const (
	ColumnName ColumnKind = iota
	ColumnCount
)

// IsContainer reports whether n can be expanded. A nil node stands for the
// invisible root above the design and always is.
func IsContainer(n *Node) bool {
	if n == nil {
		return true
	}
	return len(n.Children) > 0
}

// Children returns the rows under n; under the invisible root that is the
// design's root node.
func (d *Design) Children(n *Node) []*Node {
	if n == nil {
		if d.Root == nil {
			return nil
		}
		return []*Node{d.Root}
	}
	return n.Children
}

// ColumnCount is the number of display columns: the name plus one per
// primitive in the catalog.
func (d *Design) ColumnCount() int {
	return len(d.Primitives) + 1
}

// ColumnType returns the kind of column col.
func ColumnType(col int) ColumnKind {
	if col == 0 {
		return ColumnName
	}
	return ColumnCount
}

// ColumnTitle returns the header of column col.
func (d *Design) ColumnTitle(col int) string {
	if col == 0 {
		return "Module Name"
	}
	if col-1 < len(d.Primitives) {
		return d.Primitives[col-1]
	}
	return ""
}

// ColumnIndex returns the column showing prim, or -1.
func (d *Design) ColumnIndex(prim string) int {
	for i, p := range d.Primitives {
		if p == prim {
			return i + 1
		}
	}
	return -1
}

// Value returns the cell at column col for n: the name as a string or the
// primitive count as an int. The invisible root (nil) has an empty name and
// zero counts.
func (d *Design) Value(n *Node, col int) any {
	if col == 0 {
		if n == nil {
			return ""
		}
		return n.Name
	}
	if n == nil {
		return 0
	}
	if col-1 >= len(d.Primitives) {
		return 0
	}
	return n.Count(d.Primitives[col-1])
}
