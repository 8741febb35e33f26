package design

// EventKind names the structural change a reconcile step made.
type EventKind int

const (
	// Updated: Node kept its identity and took the new name and counts.
	Updated EventKind = iota
	// Added: Node was moved from the new tree under Parent.
	Added
	// Removed: Node was taken out of Parent and released.
	Removed
)

func (k EventKind) String() string {
	switch k {
	case Updated:
		return "updated"
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is one change applied to the displayed tree. Parent is nil for
// Updated events.
type Event struct {
	Kind   EventKind
	Parent *Node
	Node   *Node
}

// Observer receives reconcile changes as they are applied, in the same
// order Reconcile would return them.
type Observer interface {
	NodeUpdated(n *Node)
	NodeAdded(parent, n *Node)
	NodeRemoved(parent, n *Node)
}

// Reconcile mutates old in place until it matches next and returns the
// changes made. Children are paired by name, level by level; the first
// unmatched old child with an equal name wins. Unmatched new children are
// moved over (not copied) and unmatched old children are released.
//
// Both trees must be quiescent for the duration of the call. Afterwards old
// has the same shape, names and counts as next had, and next only holds
// nodes that were merged into old; the caller should drop it.
func Reconcile(old, next *Node) []Event {
	var rec recorder
	ReconcileInto(old, next, &rec)
	return rec.events
}

// ReconcileInto is Reconcile reporting to obs instead of building a slice.
func ReconcileInto(old, next *Node, obs Observer) {
	old.Name = next.Name
	old.Counts = copyCounts(next.Counts)
	obs.NodeUpdated(old)

	remaining := old.Children
	kept := make([]*Node, 0, len(next.Children))

	for _, nc := range append([]*Node(nil), next.Children...) {
		idx := indexByName(remaining, nc.Name)
		if idx < 0 {
			next.detach(nc)
			nc.Parent = old
			kept = append(kept, nc)
			obs.NodeAdded(old, nc)
			continue
		}
		oc := remaining[idx]
		remaining = append(remaining[:idx:idx], remaining[idx+1:]...)
		kept = append(kept, oc)
		ReconcileInto(oc, nc, obs)
	}

	old.Children = kept
	for _, oc := range remaining {
		obs.NodeRemoved(old, oc)
		release(oc)
	}
}

func indexByName(nodes []*Node, name string) int {
	for i, n := range nodes {
		if n.Name == name {
			return i
		}
	}
	return -1
}

type recorder struct {
	events []Event
}

func (r *recorder) NodeUpdated(n *Node) {
	r.events = append(r.events, Event{Kind: Updated, Node: n})
}

func (r *recorder) NodeAdded(parent, n *Node) {
	r.events = append(r.events, Event{Kind: Added, Parent: parent, Node: n})
}

func (r *recorder) NodeRemoved(parent, n *Node) {
	r.events = append(r.events, Event{Kind: Removed, Parent: parent, Node: n})
}

// Summary counts events by kind.
type Summary struct {
	Updated int `json:"updated"`
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// Summarize tallies events.
func Summarize(events []Event) Summary {
	var s Summary
	for _, ev := range events {
		switch ev.Kind {
		case Updated:
			s.Updated++
		case Added:
			s.Added++
		case Removed:
			s.Removed++
		}
	}
	return s
}

// Changed reports whether any event altered the tree's shape.
func (s Summary) Changed() bool {
	return s.Added > 0 || s.Removed > 0
}
