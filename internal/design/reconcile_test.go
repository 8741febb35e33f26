package design

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaf(parent *Node, name string, counts map[string]int) *Node {
	n := NewNode(parent, name)
	for p, v := range counts {
		n.SetCount(p, v)
	}
	return n
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Kind)
	}
	return out
}

func TestReconcileAddsRemovesAndUpdates(t *testing.T) {
	old := leaf(nil, "top", map[string]int{"LUT4": 3})
	oldA := leaf(old, "A", map[string]int{"LUT4": 1})
	oldB := leaf(old, "B", map[string]int{"LUT4": 2})

	next := leaf(nil, "top", map[string]int{"LUT4": 9})
	leaf(next, "B", map[string]int{"LUT4": 4})
	newC := leaf(next, "C", map[string]int{"LUT4": 5})

	events := Reconcile(old, next)

	require.Equal(t, []EventKind{Updated, Updated, Added, Removed}, kinds(events))
	assert.Same(t, old, events[0].Node)
	assert.Same(t, oldB, events[1].Node)
	assert.Same(t, old, events[2].Parent)
	assert.Same(t, newC, events[2].Node)
	assert.Same(t, old, events[3].Parent)
	assert.Same(t, oldA, events[3].Node)

	require.Len(t, old.Children, 2)
	assert.Same(t, oldB, old.Children[0], "matched child keeps its identity")
	assert.Same(t, newC, old.Children[1], "unmatched new child is moved, not copied")
	assert.Same(t, old, newC.Parent)
	assert.Equal(t, map[string]int{"LUT4": 4}, oldB.Counts)
	assert.Equal(t, map[string]int{"LUT4": 9}, old.Counts)

	assert.Nil(t, oldA.Parent, "removed subtree is released")
	assert.Equal(t, []string{"B"}, childNames(next), "moved child is detached from the new tree")
}

func TestReconcileIdenticalTreesOnlyUpdates(t *testing.T) {
	build := func() *Design {
		return newReport().
			primitive("LUT4", "FF").
			module("adder", map[string]int{"LUT4": 1, "FF": 1}).
			module("ctrl", map[string]int{"LUT4": 7, "adder": 1}).
			top("top", map[string]int{"adder": 3, "ctrl": 1, "FF": 2}).
			design()
	}
	old := build()
	before := map[*Node]bool{}
	Walk(old.Root, func(n *Node) bool {
		before[n] = true
		return true
	})

	events := old.Reload(build())

	s := Summarize(events)
	assert.Equal(t, 0, s.Added)
	assert.Equal(t, 0, s.Removed)
	assert.Equal(t, Len(old.Root), s.Updated)
	assert.False(t, s.Changed())

	seen := map[*Node]bool{}
	for _, ev := range events {
		assert.True(t, before[ev.Node], "event for a node outside the old tree: %s", ev.Node.Path())
		seen[ev.Node] = true
	}
	assert.Len(t, seen, len(before), "every node gets exactly one update")
	assertRollUp(t, old.Root)
}

func TestReconcileResultMatchesNewTree(t *testing.T) {
	old := newReport().
		primitive("LUT4", "FF").
		module("adder", map[string]int{"LUT4": 1, "FF": 1}).
		module("mul", map[string]int{"LUT4": 20}).
		top("top", map[string]int{"adder": 3, "mul": 1}).
		design()

	next := newReport().
		primitive("LUT4", "FF", "CCU2C").
		module("adder", map[string]int{"LUT4": 1, "CCU2C": 2}).
		module("div", map[string]int{"LUT4": 40}).
		top("top", map[string]int{"adder": 4, "div": 1, "FF": 8}).
		design()
	want := Export(next)

	keptRoot := old.Root
	events := old.Reload(next)

	assert.Same(t, keptRoot, old.Root)
	assert.Equal(t, want, Export(old))
	assert.Equal(t, []string{"CCU2C", "FF", "LUT4"}, old.Primitives)
	assertRollUp(t, old.Root)

	s := Summarize(events)
	// root and " (self)" match; "[4x] adder" and "div" are new; "[3x] adder"
	// and "mul" are gone.
	assert.Equal(t, 2, s.Added)
	assert.Equal(t, 2, s.Removed)
	assert.Equal(t, 2, s.Updated)
	assert.Nil(t, next.Root, "reloaded design is released")
}

func TestReconcileDuplicateSiblingNames(t *testing.T) {
	old := leaf(nil, "[3x] adder", nil)
	first := leaf(old, "adder", map[string]int{"LUT4": 1})
	second := leaf(old, "adder", map[string]int{"LUT4": 1})
	third := leaf(old, "adder", map[string]int{"LUT4": 1})

	next := leaf(nil, "[3x] adder", nil)
	leaf(next, "adder", map[string]int{"LUT4": 2})
	leaf(next, "adder", map[string]int{"LUT4": 3})

	events := Reconcile(old, next)

	require.Equal(t, []*Node{first, second}, old.Children)
	assert.Equal(t, 2, first.Count("LUT4"))
	assert.Equal(t, 3, second.Count("LUT4"))
	last := events[len(events)-1]
	assert.Equal(t, Removed, last.Kind)
	assert.Same(t, third, last.Node)
}

func TestReconcileRenamesAreNotMoves(t *testing.T) {
	old := leaf(nil, "top", nil)
	x := leaf(old, "x", nil)
	leaf(x, "deep", map[string]int{"FF": 1})

	next := leaf(nil, "top", nil)
	y := leaf(next, "y", nil)
	leaf(y, "deep", map[string]int{"FF": 1})

	events := Reconcile(old, next)

	assert.Equal(t, []EventKind{Updated, Added, Removed}, kinds(events))
	assert.Same(t, y, old.Children[0])
	assert.Empty(t, x.Children, "removed subtree is torn down")
}

type orderObserver struct {
	log []string
}

func (o *orderObserver) NodeUpdated(n *Node) { o.log = append(o.log, "U "+n.Name) }
func (o *orderObserver) NodeAdded(parent, n *Node) {
	o.log = append(o.log, "A "+parent.Name+"/"+n.Name)
}
func (o *orderObserver) NodeRemoved(parent, n *Node) {
	o.log = append(o.log, "R "+parent.Name+"/"+n.Name)
}

func TestReconcileIntoObserver(t *testing.T) {
	old := leaf(nil, "top", nil)
	a := leaf(old, "a", nil)
	leaf(a, "a1", nil)
	leaf(old, "b", nil)

	next := leaf(nil, "top", nil)
	na := leaf(next, "a", nil)
	leaf(na, "a2", nil)
	leaf(next, "c", nil)

	var obs orderObserver
	ReconcileInto(old, next, &obs)

	assert.Equal(t, []string{
		"U top",
		"U a",
		"A a/a2",
		"R a/a1",
		"A top/c",
		"R top/b",
	}, obs.log)
}
