// Package cli implements the deltadb command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/hupe1980/deltadb"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the deltadb CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "deltadb",
		Short: "deltadb - in-memory transactional tables",
		Long:  "Run workloads against an embedded deltadb database built from snapshot-isolated delta chains.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewBenchCommand(opts))
	cmd.AddCommand(NewDemoCommand(opts))

	return cmd
}

// logger returns the database logger for the global flags. Logs go to
// stderr so JSON output stays parseable.
func (o *RootOptions) logger(w io.Writer) *deltadb.Logger {
	if !o.Verbose {
		return deltadb.NoopLogger()
	}
	return deltadb.NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// write renders v as JSON or calls text.
func (o *RootOptions) write(w io.Writer, v any, text func(io.Writer) error) error {
	if o.Format == "json" {
		enc := gojson.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return text(w)
}
