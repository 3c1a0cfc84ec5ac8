package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/confkit/pkg/cli"
	"mercator-hq/confkit/pkg/config"
)

// Exit codes.
const (
	exitOK         = 0
	exitError      = 1
	exitUsage      = 2
	exitValidation = 3
)

var (
	// Global flags
	manifestPath string
	profile      string
	logLevel     string
	logFormat    string
)

var rootCmd = &cobra.Command{
	Use:   "confkit",
	Short: "confkit - typed configuration loader",
	Long: `confkit loads configuration from ordered sources (files, environment
variables, plugins), interpolates ${...} placeholders, decrypts ENC[...]
values and validates the result against a schema.

Sources and options are read from a confkit.yaml manifest. The manifest path
defaults to $CONFKIT_MANIFEST, then ./confkit.yaml.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return exitOK
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return exitCode(err)
}

func exitCode(err error) int {
	var ve *config.ValidationError
	switch {
	case err == nil:
		return exitOK
	case cli.IsUsageError(err):
		return exitUsage
	case errors.As(err, &ve):
		return exitValidation
	default:
		return exitError
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&manifestPath, "manifest", "m", "", "manifest file path (default $CONFKIT_MANIFEST or confkit.yaml)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "active profile (default $CONFKIT_PROFILE or the manifest profile)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text, json")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return cli.NewUsageError("%v", err)
	})
}
