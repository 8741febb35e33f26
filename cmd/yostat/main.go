// =============================================================================
// yostat - resource usage of a synthesized design, per module instance
// =============================================================================
//
// yostat reads the JSON netlist that Yosys writes (`write_json`) and turns
// the module/cell graph into a tree of module instances annotated with how
// many of each primitive cell (LUT4, FF, DSP, BRAM...) they use.
//
// THE PIPELINE:
//   1. report:  decode the JSON into per-module cell-type histograms
//   2. design:  classify primitives, build the instance tree, roll counts up
//   3. facts:   flatten the tree into rows (path, kind, usage)
//   4. policy:  evaluate resource budgets (OPA) against those rows
//   5. session: reload on change and reconcile the tree in place
//
// Commands: show, export, facts, check, watch, init.
// =============================================================================

package main

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yostat/yostat/internal/config"
	"github.com/yostat/yostat/internal/design"
)

var version = "dev"

type rootOptions struct {
	configPath string
	verbose    bool
	logJSON    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:          "yostat",
		Short:        "Per-instance primitive usage of a Yosys JSON netlist",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(cmd.ErrOrStderr(), opts.verbose, opts.logJSON)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default: search for "+config.FileName+")")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	flags.BoolVar(&opts.logJSON, "log-json", false, "log as JSON lines")

	root.AddCommand(
		newShowCmd(opts),
		newExportCmd(opts),
		newFactsCmd(opts),
		newCheckCmd(opts),
		newWatchCmd(opts),
		newInitCmd(),
	)
	return root
}

func setupLogging(w io.Writer, verbose, jsonOut bool) {
	log.SetOutput(w)
	if jsonOut {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	}
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

// loadConfig reads the explicit --config file or searches next to the report.
func loadConfig(opts *rootOptions, reportPath string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath)
	} else {
		cfg, err = config.Load(reportPath)
	}
	if err != nil {
		return nil, err
	}

	if !opts.verbose {
		level, err := log.ParseLevel(cfg.LogLevel)
		if err != nil {
			log.WithError(err).Warn("ignoring configured log level")
		} else {
			log.SetLevel(level)
		}
	}
	return cfg, nil
}

// openDesign resolves arg to a report and builds its design.
func openDesign(opts *rootOptions, arg string) (*design.Design, *config.Config, error) {
	cfg, err := loadConfig(opts, arg)
	if err != nil {
		return nil, nil, err
	}
	path, err := cfg.ResolveReport(arg)
	if err != nil {
		return nil, nil, err
	}

	logger := log.WithField("report", path)
	d, err := design.Load(path, design.Options{Top: cfg.Top, Logger: logger})
	if err != nil {
		return nil, nil, err
	}
	logger.WithFields(log.Fields{
		"top":        d.Top,
		"primitives": len(d.Primitives),
		"nodes":      design.Len(d.Root),
	}).Debug("design built")
	return d, cfg, nil
}
