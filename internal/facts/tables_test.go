package facts

import (
	"strings"
	"testing"

	"github.com/yostat/yostat/internal/design"
)

const socJSON = `{
  "modules": {
    "LUT4": {"attributes": {"blackbox": "1"}},
    "FF":   {"attributes": {"blackbox": "1"}},
    "adder": {"cells": {"l": {"type": "LUT4"}, "f": {"type": "FF"}}},
    "soc": {
      "attributes": {"top": "1"},
      "cells": {"a0": {"type": "adder"}, "a1": {"type": "adder"}, "l0": {"type": "LUT4"}}
    }
  }
}`

func parseDesign(t *testing.T, src string) *design.Design {
	t.Helper()
	d, err := design.Parse(strings.NewReader(src), design.Options{})
	if err != nil {
		t.Fatalf("parse design: %v", err)
	}
	return d
}

func TestBuildTablesPopulatesRelations(t *testing.T) {
	tables := BuildTables(parseDesign(t, socJSON))

	wantPaths := []string{
		"soc",
		"soc/ (self)",
		"soc/[2x] adder",
		"soc/[2x] adder/adder#0",
		"soc/[2x] adder/adder#1",
	}
	if len(tables.Nodes) != len(wantPaths) {
		t.Fatalf("expected %d node rows, got %d: %+v", len(wantPaths), len(tables.Nodes), tables.Nodes)
	}
	for i, want := range wantPaths {
		if tables.Nodes[i].Path != want {
			t.Fatalf("node %d: expected path %q, got %q", i, want, tables.Nodes[i].Path)
		}
	}

	holder := tables.Nodes[2]
	if holder.Kind != KindHolder || holder.Module != "adder" || holder.Instances != 2 {
		t.Fatalf("unexpected holder row %+v", holder)
	}
	self := tables.Nodes[1]
	if self.Kind != KindSelf || self.Module != "soc" || self.Depth != 1 {
		t.Fatalf("unexpected self row %+v", self)
	}

	if len(tables.Primitives) != 2 {
		t.Fatalf("expected 2 primitive rows, got %+v", tables.Primitives)
	}
	for _, row := range tables.Primitives {
		want := map[string]int{"FF": 2, "LUT4": 3}[row.Name]
		if row.Total != want {
			t.Fatalf("primitive %s: expected total %d, got %d", row.Name, want, row.Total)
		}
	}

	// soc: FF, LUT4; self: LUT4; holder: FF, LUT4; two instances: FF, LUT4 each
	if len(tables.Usage) != 2+1+2+2+2 {
		t.Fatalf("unexpected usage rows %+v", tables.Usage)
	}
}

func TestBuildTablesNilDesign(t *testing.T) {
	tables := BuildTables(nil)
	if tables.Nodes == nil || len(tables.Nodes) != 0 {
		t.Fatalf("expected empty non-nil node rows, got %#v", tables.Nodes)
	}
}

func TestBuildTablesPathsStayUnique(t *testing.T) {
	root := design.NewNode(nil, "top")
	design.NewNode(root, "x")
	design.NewNode(root, "x")
	design.NewNode(root, "x#0")
	split := design.NewNode(root, "a/b")
	design.NewNode(split, "100%")

	tables := BuildTables(&design.Design{Top: "top", Root: root})

	want := []string{"top", "top/x#0", "top/x#1", "top/x%230", "top/a%2Fb", "top/a%2Fb/100%25"}
	if len(tables.Nodes) != len(want) {
		t.Fatalf("expected %d rows, got %+v", len(want), tables.Nodes)
	}
	for i, row := range tables.Nodes {
		if row.Path != want[i] {
			t.Fatalf("row %d: expected path %q, got %q", i, want[i], row.Path)
		}
	}
	if tables.Nodes[3].Name != "x#0" {
		t.Fatalf("names are kept unescaped, got %q", tables.Nodes[3].Name)
	}
	if tables.Nodes[5].Parent != "top/a%2Fb" {
		t.Fatalf("unexpected parent %q", tables.Nodes[5].Parent)
	}

	filtered := FilterTablesBySubtree(tables, []string{"top/a"})
	if len(filtered.Nodes) != 0 {
		t.Fatalf("a name containing / must not look like a subtree: %+v", filtered.Nodes)
	}
}
