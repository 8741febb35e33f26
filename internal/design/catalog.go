package design

import "sort"

// Catalog returns every primitive used anywhere under root, once each, in
// ascending order. It becomes the list of numeric columns a viewer shows, so
// the result must not depend on traversal order.
func Catalog(root *Node) []string {
	seen := make(map[string]bool)
	Walk(root, func(n *Node) bool {
		for prim, count := range n.Counts {
			if count > 0 {
				seen[prim] = true
			}
		}
		return true
	})

	prims := make([]string, 0, len(seen))
	for prim := range seen {
		prims = append(prims, prim)
	}
	sort.Strings(prims)
	return prims
}
