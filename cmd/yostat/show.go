package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yostat/yostat/internal/design"
)

type showOptions struct {
	sortBy string
	depth  int
}

func newShowCmd(root *rootOptions) *cobra.Command {
	opts := &showOptions{}
	cmd := &cobra.Command{
		Use:   "show <report>",
		Short: "Print the instance tree with one column per primitive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := openDesign(root, args[0])
			if err != nil {
				return err
			}
			return printTree(cmd.OutOrStdout(), d, *opts)
		},
	}
	cmd.Flags().StringVar(&opts.sortBy, "sort", "", `order siblings by "name" or by descending count of a primitive`)
	cmd.Flags().IntVar(&opts.depth, "depth", -1, "maximum depth to print (-1 for all)")
	return cmd
}

func printTree(w io.Writer, d *design.Design, opts showOptions) error {
	order, err := siblingOrder(d, opts.sortBy)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	titles := make([]string, 0, d.ColumnCount())
	for col := 0; col < d.ColumnCount(); col++ {
		titles = append(titles, d.ColumnTitle(col))
	}
	fmt.Fprintln(tw, strings.Join(titles, "\t")+"\t")

	var visit func(n *design.Node, depth int)
	visit = func(n *design.Node, depth int) {
		cells := make([]string, 0, d.ColumnCount())
		for col := 0; col < d.ColumnCount(); col++ {
			v := d.Value(n, col)
			if design.ColumnType(col) == design.ColumnName {
				v = strings.Repeat("  ", depth) + n.Name
			}
			cells = append(cells, fmt.Sprint(v))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")

		if opts.depth >= 0 && depth >= opts.depth {
			return
		}
		for _, c := range order(d.Children(n)) {
			visit(c, depth+1)
		}
	}
	for _, top := range d.Children(nil) {
		visit(top, 0)
	}
	return tw.Flush()
}

// siblingOrder returns a function that orders a copy of a child list.
func siblingOrder(d *design.Design, key string) (func([]*design.Node) []*design.Node, error) {
	var less func(a, b *design.Node) bool
	switch {
	case key == "":
	case key == "name":
		less = func(a, b *design.Node) bool { return a.Name < b.Name }
	case d.ColumnIndex(key) > 0:
		less = func(a, b *design.Node) bool { return a.Count(key) > b.Count(key) }
	default:
		return nil, fmt.Errorf("unknown sort column %q (primitives: %s)", key, strings.Join(d.Primitives, ", "))
	}

	return func(nodes []*design.Node) []*design.Node {
		out := append([]*design.Node(nil), nodes...)
		if less != nil {
			sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
		}
		return out
	}, nil
}
