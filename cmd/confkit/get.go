package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/confkit/pkg/cli"
	"mercator-hq/confkit/pkg/config"
)

var getFlags struct {
	format string
	unmask bool
}

var getCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Print the value at a dot path",
	Long: `Print the value at a dot path such as server.port.

Secrets are masked unless --unmask is given. Objects and arrays are
printed as JSON in text mode.

Examples:
  confkit get server.port
  confkit get database --format yaml
  confkit get database.password --unmask`,
	Args: exactArgs(1),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().StringVarP(&getFlags.format, "format", "f", "text", "output format: text, json, yaml")
	getCmd.Flags().BoolVar(&getFlags.unmask, "unmask", false, "print secret values in clear text")
}

func runGet(cmd *cobra.Command, args []string) error {
	formatter, err := outputFormatter(getFlags.format)
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

	view := cfg.Masked()
	if getFlags.unmask {
		view = cfg.All()
	}
	value, ok := view.Get(args[0])
	if !ok {
		return fmt.Errorf("%w: %s", config.ErrPathNotFound, args[0])
	}
	if text, ok := formatter.(*cli.TextFormatter); ok {
		return text.FormatValueTo(cmd.OutOrStdout(), value)
	}
	return formatter.FormatTo(cmd.OutOrStdout(), value)
}
