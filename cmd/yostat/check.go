package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/yostat/yostat/internal/facts"
	"github.com/yostat/yostat/internal/policy"
)

func newCheckCmd(root *rootOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "check <report>",
		Short: "Evaluate resource budgets; exits non-zero on errors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, cfg, err := openDesign(root, args[0])
			if err != nil {
				return err
			}

			engine, err := policy.New(cfg.Policy.Dir)
			if err != nil {
				return err
			}
			input := policy.InputFromTables(d.Top, facts.BuildTables(d), cfg.Budgets)
			result, err := engine.Evaluate(cmd.Context(), input)
			if err != nil {
				return err
			}
			result.Apply(cfg)

			if jsonOut {
				if err := encodeJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			} else if err := printViolations(cmd.OutOrStdout(), result); err != nil {
				return err
			}

			if result.HasErrors() {
				return fmt.Errorf("%d budget error(s)", result.Summary.Errors)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the result as JSON")
	return cmd
}

func printViolations(w io.Writer, result *policy.Result) error {
	if len(result.Violations) == 0 {
		_, err := fmt.Fprintln(w, "No budget violations.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, v := range result.Violations {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Severity, v.Rule, v.Path, v.Message)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d violation(s): %d error(s), %d warning(s), %d info\n",
		result.Summary.TotalViolations, result.Summary.Errors, result.Summary.Warnings, result.Summary.Info)
	return err
}
