package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/confkit/pkg/config"
	"mercator-hq/confkit/pkg/provenance"
)

var sourceFlags struct {
	format string
	all    bool
}

var sourceCmd = &cobra.Command{
	Use:   "source [path]",
	Short: "Show which source supplied a value",
	Long: `Show the source that supplied the value at a dot path, or with --all the
origin of every value.

A path that was supplied as a whole object reports the object's source.

Examples:
  confkit source server.port
  confkit source --all --format json`,
	Args: func(cmd *cobra.Command, args []string) error {
		if sourceFlags.all {
			return exactArgs(0)(cmd, args)
		}
		return exactArgs(1)(cmd, args)
	},
	RunE: runSource,
}

func init() {
	rootCmd.AddCommand(sourceCmd)

	sourceCmd.Flags().StringVarP(&sourceFlags.format, "format", "f", "text", "output format: text, json, yaml")
	sourceCmd.Flags().BoolVar(&sourceFlags.all, "all", false, "list the origin of every value")
}

type origin struct {
	Path   string `json:"path" yaml:"path"`
	Source string `json:"source" yaml:"source"`
	Loader string `json:"loader" yaml:"loader"`
}

func toOrigin(e provenance.Entry) origin {
	return origin{Path: e.Path, Source: e.Source, Loader: e.Loader}
}

func runSource(cmd *cobra.Command, args []string) error {
	formatter, err := outputFormatter(sourceFlags.format)
	if err != nil {
		return err
	}

	a, err := newApp(cmd, false, false)
	if err != nil {
		return err
	}
	defer a.close()
	cfg, err := a.load()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if sourceFlags.all {
		entries := cfg.Origins()
		if sourceFlags.format == "text" {
			for _, e := range entries {
				fmt.Fprintf(out, "%s\t%s\n", e.Path, e.Source)
			}
			return nil
		}
		origins := make([]origin, len(entries))
		for i, e := range entries {
			origins[i] = toOrigin(e)
		}
		return formatter.FormatTo(out, origins)
	}

	entry, ok := cfg.Provenance(args[0])
	if !ok {
		if !cfg.Has(args[0]) {
			return fmt.Errorf("%w: %s", config.ErrPathNotFound, args[0])
		}
		// Present only through schema defaults.
		entry = provenance.Entry{Path: args[0], Source: "default", Loader: "schema"}
	}
	if sourceFlags.format == "text" {
		fmt.Fprintln(out, entry.Source)
		return nil
	}
	return formatter.FormatTo(out, toOrigin(entry))
}
