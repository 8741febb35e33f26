package main

import (
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yostat/yostat/internal/design"
	"github.com/yostat/yostat/internal/validator"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func newExportCmd(root *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export <report>",
		Short: "Write the instance tree as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := openDesign(root, args[0])
			if err != nil {
				return err
			}

			v, err := validator.NewExportValidator()
			if err != nil {
				return err
			}
			out := design.Export(d)
			if err := v.Validate(out); err != nil {
				for _, msg := range v.ValidationErrors(out) {
					log.Error(msg)
				}
				return err
			}

			if output == "" {
				return encodeJSON(cmd.OutOrStdout(), out)
			}
			if err := writeJSON(output, out); err != nil {
				return err
			}
			log.WithField("output", output).Info("export written")
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write JSON to file (default: stdout)")
	return cmd
}

func encodeJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func writeJSON(path string, data interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return encodeJSON(f, data)
}
