package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/confkit/pkg/config"
)

var validateFlags struct {
	format string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load and validate the configuration",
	Long: `Run the full loading pipeline for the active profile and report whether
the result satisfies the schema.

Each schema violation is listed with the source that supplied the value.
The command exits with status 3 when validation fails.

Examples:
  # Validate the default profile
  confkit validate

  # Validate production and print violations as JSON
  confkit validate --profile production --format json`,
	Args: exactArgs(0),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.format, "format", "f", "text", "output format: text, json, yaml")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	formatter, err := outputFormatter(validateFlags.format)
	if err != nil {
		return err
	}

	a, err := newApp(cmd, false, false)
	if err != nil {
		return err
	}
	defer a.close()

	cfg, err := a.load()
	out := cmd.OutOrStdout()

	var ve *config.ValidationError
	if errors.As(err, &ve) {
		if validateFlags.format == "text" {
			fmt.Fprintf(out, "✗ configuration invalid (%d errors)\n", len(ve.Details))
			for _, d := range ve.Details {
				fmt.Fprintf(out, "  - %s\n", d.Error())
			}
		} else if ferr := formatter.FormatTo(out, map[string]any{"valid": false, "errors": ve.Details}); ferr != nil {
			return ferr
		}
		return err
	}
	if err != nil {
		return err
	}

	leaves := len(cfg.All().Leaves())
	if validateFlags.format == "text" {
		fmt.Fprintf(out, "✓ configuration valid (profile %s, %d values)\n", cfg.Profile(), leaves)
		return nil
	}
	return formatter.FormatTo(out, map[string]any{
		"valid":   true,
		"profile": cfg.Profile(),
		"values":  leaves,
	})
}
