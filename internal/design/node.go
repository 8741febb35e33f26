package design

import (
	"sort"
	"strconv"
	"strings"
)

// SelfName labels the child that holds a composite module's own primitives.
const SelfName = " (self)"

// Node is one row of the design tree: a module instance, a holder grouping
// repeated instances, or a self node.
//
// Children are owned by their parent. Parent is a back-reference for upward
// navigation only and is nil for the root and for released nodes.
type Node struct {
	Name     string
	Counts   map[string]int
	Parent   *Node
	Children []*Node
}

// NewNode allocates a node and, when parent is non-nil, appends it as the
// parent's last child.
func NewNode(parent *Node, name string) *Node {
	n := &Node{
		Name:   name,
		Counts: make(map[string]int),
	}
	if parent != nil {
		parent.AddChild(n)
	}
	return n
}

// AddChild appends c to n's children and points c back at n.
func (n *Node) AddChild(c *Node) {
	c.Parent = n
	n.Children = append(n.Children, c)
}

// SetCount stores count for prim, replacing any previous value.
func (n *Node) SetCount(prim string, count int) {
	if n.Counts == nil {
		n.Counts = make(map[string]int)
	}
	n.Counts[prim] = count
}

// AddCount adds count to the current value for prim.
func (n *Node) AddCount(prim string, count int) {
	if n.Counts == nil {
		n.Counts = make(map[string]int)
	}
	n.Counts[prim] += count
}

// Count returns how many prim this node uses, including all descendants.
func (n *Node) Count(prim string) int {
	if n == nil {
		return 0
	}
	return n.Counts[prim]
}

// IsSelf reports whether n is a self node.
func (n *Node) IsSelf() bool {
	return n.Name == SelfName
}

// IsHolder reports whether n groups repeated instances of one module type.
func (n *Node) IsHolder() bool {
	_, _, ok := ParseHolderName(n.Name)
	return ok
}

// Depth is the number of ancestors of n.
func (n *Node) Depth() int {
	d := 0
	for p := n.Parent; p != nil; p = p.Parent {
		d++
	}
	return d
}

// Path joins the names from the root down to n with "/".
func (n *Node) Path() string {
	var parts []string
	for p := n; p != nil; p = p.Parent {
		parts = append(parts, p.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

// Primitives returns the keys of n.Counts in ascending order.
func (n *Node) Primitives() []string {
	prims := make([]string, 0, len(n.Counts))
	for p := range n.Counts {
		prims = append(prims, p)
	}
	sort.Strings(prims)
	return prims
}

// Walk visits n and every descendant depth first, parents before children.
// Returning false from fn skips the node's subtree.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// Len counts the nodes in the subtree rooted at n.
func Len(n *Node) int {
	total := 0
	Walk(n, func(*Node) bool {
		total++
		return true
	})
	return total
}

// detach removes c from n's children. It reports whether c was found.
func (n *Node) detach(c *Node) bool {
	for i, child := range n.Children {
		if child == c {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			c.Parent = nil
			return true
		}
	}
	return false
}

// release tears the subtree down: every node loses its parent link and its
// children. Handles kept by a viewer stay valid Go values but can no longer
// reach the live tree.
func release(n *Node) {
	if n == nil {
		return
	}
	for _, c := range n.Children {
		release(c)
	}
	n.Children = nil
	n.Parent = nil
}

// HolderName formats the label of a holder node.
func HolderName(count int, moduleType string) string {
	return "[" + strconv.Itoa(count) + "x] " + moduleType
}

// ParseHolderName splits a holder label back into its count and module type.
func ParseHolderName(name string) (int, string, bool) {
	if !strings.HasPrefix(name, "[") {
		return 0, "", false
	}
	end := strings.Index(name, "x] ")
	if end < 2 {
		return 0, "", false
	}
	count, err := strconv.Atoi(name[1:end])
	if err != nil || count < 2 {
		return 0, "", false
	}
	return count, name[end+3:], true
}

func copyCounts(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
