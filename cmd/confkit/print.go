package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mercator-hq/confkit/pkg/source"
)

const formatDotenv = "dotenv"

var printFlags struct {
	format    string
	unmask    bool
	envPrefix string
}

var printCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the whole configuration",
	Long: `Print the validated configuration for the active profile.

Secrets are masked unless --unmask is given: values under sensitive keys
(password, token, secret, ...), values that were decrypted, and strings that
look like credentials.

With --format dotenv every leaf is printed as an environment assignment
that an env source with the same prefix reads back.

Examples:
  confkit print
  confkit print --format json --profile production
  confkit print --format dotenv --env-prefix APP_ --unmask > .env`,
	Args: exactArgs(0),
	RunE: runPrint,
}

func init() {
	rootCmd.AddCommand(printCmd)

	printCmd.Flags().StringVarP(&printFlags.format, "format", "f", "yaml", "output format: json, yaml, text, dotenv")
	printCmd.Flags().StringVar(&printFlags.envPrefix, "env-prefix", "", "key prefix for dotenv output")
	printCmd.Flags().BoolVar(&printFlags.unmask, "unmask", false, "print secret values in clear text")
}

func runPrint(cmd *cobra.Command, _ []string) error {
	dotenv := strings.EqualFold(printFlags.format, formatDotenv)
	format := printFlags.format
	if dotenv {
		format = "text"
	}
	formatter, err := outputFormatter(format)
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
	if printFlags.unmask {
		view = cfg.All()
	}
	if dotenv {
		out, err := source.MarshalDotenv(view.Leaves(), printFlags.envPrefix)
		if err != nil {
			return fmt.Errorf("failed to render dotenv: %w", err)
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	}
	if printFlags.format == "text" {
		return formatter.FormatTo(cmd.OutOrStdout(), view.Leaves())
	}
	return formatter.FormatTo(cmd.OutOrStdout(), view.Map())
}
