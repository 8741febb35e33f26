package design

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/yostat/yostat/internal/report"
)

// Design is a built module tree plus the primitive columns it uses.
// It owns Root and everything below it.
type Design struct {
	// Top is the module type the tree was built from.
	Top string

	// Primitives is the sorted primitive catalog of the tree.
	Primitives []string

	Root *Node
}

// Options control how a report is turned into a Design.
type Options struct {
	// Top is the fallback root module when no module carries the top
	// attribute. Empty means report.DefaultTop.
	Top string

	// Logger receives warnings about ambiguous reports. Nil discards them.
	Logger logrus.FieldLogger
}

// New classifies the report's modules, builds the tree from the top module
// and extracts the catalog.
func New(rep *report.Report, opts Options) *Design {
	log := opts.Logger
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}

	if tops := rep.TopCandidates(); len(tops) > 1 {
		log.WithFields(logrus.Fields{
			"candidates": tops,
			"chosen":     tops[0],
		}).Warn("several modules are marked top")
	}
	top := rep.Top(opts.Top)
	if _, ok := rep.Lookup(top); !ok {
		log.WithField("top", top).Warn("top module is not defined in the report")
	}

	root := Build(rep, rep.Primitives(), nil, top)
	return &Design{
		Top:        top,
		Primitives: Catalog(root),
		Root:       root,
	}
}

// Load parses the report at path and builds its design. On failure no
// Design is returned; the error is a *report.ParseError.
func Load(path string, opts Options) (*Design, error) {
	rep, err := report.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return New(rep, opts), nil
}

// Parse reads a report from r and builds its design.
func Parse(r io.Reader, opts Options) (*Design, error) {
	rep, err := report.Parse(r)
	if err != nil {
		return nil, err
	}
	return New(rep, opts), nil
}

// Reload merges next into d in place: node identities of unchanged subtrees
// survive, the catalog is replaced by next's, and whatever is left of next
// is released. next must not be used afterwards.
func (d *Design) Reload(next *Design) []Event {
	events := Reconcile(d.Root, next.Root)
	d.Top = next.Top
	d.Primitives = append([]string(nil), next.Primitives...)
	next.Release()
	return events
}

// Release tears down the tree. The Design is empty afterwards.
func (d *Design) Release() {
	if d == nil {
		return
	}
	release(d.Root)
	d.Root = nil
	d.Primitives = nil
}
