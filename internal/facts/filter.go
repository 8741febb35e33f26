package facts

import "strings"

// FilterTablesBySubtree returns a new Tables object containing only rows for
// nodes at or below one of the given paths. The primitive catalog is kept
// as is.
func FilterTablesBySubtree(tables Tables, roots []string) Tables {
	if len(roots) == 0 {
		return emptyTables()
	}
	out := emptyTables()

	for _, row := range tables.Nodes {
		if underAny(row.Path, roots) {
			out.Nodes = append(out.Nodes, row)
		}
	}
	for _, row := range tables.Usage {
		if underAny(row.Path, roots) {
			out.Usage = append(out.Usage, row)
		}
	}
	out.Primitives = append(out.Primitives, tables.Primitives...)

	return out
}

// FilterDeltaBySubtree returns a new Delta containing only rows under the given paths.
func FilterDeltaBySubtree(delta Delta, roots []string) Delta {
	if len(roots) == 0 {
		return Delta{
			Added:   emptyTables(),
			Removed: emptyTables(),
		}
	}
	return Delta{
		Added:   FilterTablesBySubtree(delta.Added, roots),
		Removed: FilterTablesBySubtree(delta.Removed, roots),
	}
}

func underAny(path string, roots []string) bool {
	for _, root := range roots {
		if path == root || strings.HasPrefix(path, root+"/") {
			return true
		}
	}
	return false
}
