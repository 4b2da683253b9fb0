// Package commands implements the reikningar command line.
package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"reikningar/internal/buildinfo"
	"reikningar/internal/cli"
	"reikningar/internal/log"
	"reikningar/internal/report"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "reikningar",
		Short:   "Bills, bank statements and spending analysis",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newIngestCommand(),
		newEnqueueCommand(),
		newImportSheetCommand(),
		newBillsCommand(),
		newTransactionsCommand(),
		newReportCommand(),
		newAskCommand(),
		newServeCommand(),
		NewWorkerCommand(),
	)

	return rootCmd
}

// withApp loads configuration, opens the application and runs fn. The app
// is closed when fn returns.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *cli.App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger(cmd.ErrOrStderr()).WithComponent(log.ComponentCLI)
	cfg, err := cli.LoadAndValidateConfig(logger)
	if err != nil {
		return err
	}

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("starting: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("Close failed", log.FieldError, err.Error())
		}
	}()

	return fn(ctx, app)
}

func addFormatFlag(cmd *cobra.Command, format *string) {
	cmd.Flags().StringVarP(format, "format", "f", string(report.FormatTable), fmt.Sprintf("output format %v", report.Formats()))
}

func render(cmd *cobra.Command, format report.Format, f report.Frame) error {
	return report.Write(cmd.OutOrStdout(), format, f)
}
