package design

// ExportNode is the JSON form of a Node.
type ExportNode struct {
	Name     string         `json:"name"`
	Counts   map[string]int `json:"counts"`
	Children []ExportNode   `json:"children"`
}

// ExportDesign is the JSON form of a Design.
type ExportDesign struct {
	Top        string     `json:"top"`
	Primitives []string   `json:"primitives"`
	Root       ExportNode `json:"root"`
}

// Export converts d into plain values for serialization.
func Export(d *Design) ExportDesign {
	out := ExportDesign{
		Top:        d.Top,
		Primitives: append([]string{}, d.Primitives...),
	}
	if d.Root != nil {
		out.Root = exportNode(d.Root)
	}
	return out
}

func exportNode(n *Node) ExportNode {
	out := ExportNode{
		Name:     n.Name,
		Counts:   copyCounts(n.Counts),
		Children: make([]ExportNode, 0, len(n.Children)),
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, exportNode(c))
	}
	return out
}
