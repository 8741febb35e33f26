package facts

import "strconv"

// Delta captures added and removed fact rows between two snapshots.
type Delta struct {
	Added   Tables `json:"added"`
	Removed Tables `json:"removed"`
}

// ComputeDelta computes row-level additions and removals between two snapshots.
// A node whose counts changed shows up as a removed and an added usage row.
func ComputeDelta(prev, next Tables) Delta {
	return Delta{
		Added:   diffTables(prev, next),
		Removed: diffTables(next, prev),
	}
}

// Empty reports whether the delta has no rows at all.
func (d Delta) Empty() bool {
	return tablesEmpty(d.Added) && tablesEmpty(d.Removed)
}

func tablesEmpty(t Tables) bool {
	return len(t.Nodes) == 0 && len(t.Usage) == 0 && len(t.Primitives) == 0
}

func diffTables(from, to Tables) Tables {
	out := emptyTables()

	out.Nodes = diffNodeRows(from.Nodes, to.Nodes)
	out.Usage = diffUsageRows(from.Usage, to.Usage)
	out.Primitives = diffPrimitiveRows(from.Primitives, to.Primitives)

	return out
}

func emptyTables() Tables {
	return Tables{
		Nodes:      []NodeRow{},
		Usage:      []UsageRow{},
		Primitives: []PrimitiveRow{},
	}
}

func diffNodeRows(from, to []NodeRow) []NodeRow {
	return diffRows(from, to, func(r NodeRow) string {
		return r.Path + "|" + r.Kind + "|" + r.Module + "|" + strconv.Itoa(r.Instances)
	})
}

func diffUsageRows(from, to []UsageRow) []UsageRow {
	return diffRows(from, to, func(r UsageRow) string {
		return r.Path + "|" + r.Primitive + "|" + strconv.Itoa(r.Count)
	})
}

func diffPrimitiveRows(from, to []PrimitiveRow) []PrimitiveRow {
	return diffRows(from, to, func(r PrimitiveRow) string {
		return r.Name + "|" + strconv.Itoa(r.Total)
	})
}

func diffRows[T any](from, to []T, key func(T) string) []T {
	fromSet := make(map[string]struct{}, len(from))
	for _, row := range from {
		fromSet[key(row)] = struct{}{}
	}
	var diff []T
	for _, row := range to {
		if _, ok := fromSet[key(row)]; !ok {
			diff = append(diff, row)
		}
	}
	if diff == nil {
		diff = []T{}
	}
	return diff
}
