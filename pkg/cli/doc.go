/*
Package cli provides command-line helpers shared by the confkit command.

Output Formatting:

Configuration trees and values can be rendered as text, JSON or YAML:

	formatter, err := cli.NewFormatter(cli.FormatYAML)
	if err != nil {
		return err
	}
	if err := formatter.FormatTo(os.Stdout, cfg.Masked()); err != nil {
		return err
	}

Errors:

UsageError marks bad flags or arguments; CommandError wraps a failure with
the command name. The command maps them to exit codes.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
