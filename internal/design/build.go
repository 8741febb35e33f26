package design

import "github.com/yostat/yostat/internal/report"

// Build expands module into a tree of instances under parent and returns
// the node created for it. Counts are rolled up bottom-up, so on return
// every node's Counts equals its own primitives plus its children's Counts.
//
// A module the report does not define becomes a leaf with no counts: Yosys
// often references library cells it never writes out.
func Build(rep *report.Report, primitives map[string]bool, parent *Node, module string) *Node {
	node := NewNode(parent, module)

	mod, ok := rep.Lookup(module)
	if !ok {
		return node
	}

	// Any module with submodules gets a self row for its own primitives,
	// even when it has none.
	self := node
	if !mod.AllCellsArePrimitive(primitives) {
		self = NewNode(node, SelfName)
	}

	for _, cellType := range mod.SortedCellTypes() {
		count := mod.Cells[cellType]
		switch {
		case primitives[cellType]:
			self.SetCount(cellType, count)
		case count == 1:
			Build(rep, primitives, node, cellType)
		default:
			holder := NewNode(node, HolderName(count, cellType))
			for i := 0; i < count; i++ {
				Build(rep, primitives, holder, cellType)
			}
			rollUp(holder)
		}
	}

	rollUp(node)
	return node
}

// rollUp adds every child's counts into n.
func rollUp(n *Node) {
	for _, c := range n.Children {
		for prim, count := range c.Counts {
			n.AddCount(prim, count)
		}
	}
}
