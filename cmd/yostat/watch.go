package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yostat/yostat/internal/design"
	"github.com/yostat/yostat/internal/session"
)

func newWatchCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <report>",
		Short: "Reload the report whenever it changes and print what moved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(root, args[0])
			if err != nil {
				return err
			}
			path, err := cfg.ResolveReport(args[0])
			if err != nil {
				return err
			}

			s, err := session.Open(path, cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			s.View(func(d *design.Design) {
				fmt.Fprintf(out, "%s: top %s, columns %s\n", s.Path(), d.Top, strings.Join(d.Primitives, ", "))
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return s.Watch(ctx, func(result session.Result, err error) {
				if err != nil {
					log.WithError(err).Error("reload failed")
					return
				}
				printReload(out, result)
			})
		},
	}
}

func printReload(w io.Writer, result session.Result) {
	if result.Unchanged {
		return
	}
	fmt.Fprintf(w, "reloaded: %d updated, %d added, %d removed\n",
		result.Summary.Updated, result.Summary.Added, result.Summary.Removed)
	if result.CatalogChanged {
		fmt.Fprintf(w, "columns: %s\n", strings.Join(result.Primitives, ", "))
	}
}
