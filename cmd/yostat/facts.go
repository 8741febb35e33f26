package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yostat/yostat/internal/facts"
	"github.com/yostat/yostat/internal/validator"
)

type factsOptions struct {
	output    string
	deltaFrom string
	deltaOut  string
	subtree   []string
}

func newFactsCmd(root *rootOptions) *cobra.Command {
	opts := &factsOptions{}
	cmd := &cobra.Command{
		Use:   "facts <report>",
		Short: "Write the design as relational fact tables, optionally with a delta",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (opts.deltaFrom == "") != (opts.deltaOut == "") {
				return fmt.Errorf("--delta-from and --delta-out must be used together")
			}

			d, _, err := openDesign(root, args[0])
			if err != nil {
				return err
			}
			v, err := validator.NewFactsValidator()
			if err != nil {
				return err
			}

			tables := facts.BuildTables(d)
			if len(opts.subtree) > 0 {
				tables = facts.FilterTablesBySubtree(tables, opts.subtree)
			}
			if err := v.Validate(tables); err != nil {
				return err
			}

			if opts.output != "" {
				if err := writeJSON(opts.output, tables); err != nil {
					return fmt.Errorf("writing facts: %w", err)
				}
			} else if err := encodeJSON(cmd.OutOrStdout(), tables); err != nil {
				return fmt.Errorf("encoding facts: %w", err)
			}

			if opts.deltaFrom == "" {
				return nil
			}
			prev, err := readTables(opts.deltaFrom)
			if err != nil {
				return fmt.Errorf("reading delta-from: %w", err)
			}
			delta := facts.ComputeDelta(prev, tables)
			if len(opts.subtree) > 0 {
				delta = facts.FilterDeltaBySubtree(delta, opts.subtree)
			}
			if err := v.ValidateDelta(delta); err != nil {
				return err
			}
			if err := writeJSON(opts.deltaOut, delta); err != nil {
				return fmt.Errorf("writing delta: %w", err)
			}
			log.WithFields(log.Fields{
				"added":   len(delta.Added.Nodes) + len(delta.Added.Usage),
				"removed": len(delta.Removed.Nodes) + len(delta.Removed.Usage),
			}).Info("delta written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write facts JSON to file (default: stdout)")
	cmd.Flags().StringVar(&opts.deltaFrom, "delta-from", "", "previous facts JSON to compute delta from")
	cmd.Flags().StringVar(&opts.deltaOut, "delta-out", "", "write delta JSON to file (requires --delta-from)")
	cmd.Flags().StringSliceVar(&opts.subtree, "subtree", nil, "keep only rows at or below these node paths")
	return cmd
}

func readTables(path string) (facts.Tables, error) {
	f, err := os.Open(path)
	if err != nil {
		return facts.Tables{}, err
	}
	defer func() { _ = f.Close() }()

	var tables facts.Tables
	if err := json.NewDecoder(f).Decode(&tables); err != nil {
		return facts.Tables{}, err
	}
	return tables, nil
}
