package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"reikningar/internal/amqp"
	"reikningar/internal/cli"
	"reikningar/internal/log"
	"reikningar/internal/report"
	"reikningar/internal/services"
)

func newIngestCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "ingest <file>...",
		Short: "Extract bills from PDFs and import xlsx statements",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ft, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				results, err := ingestFiles(ctx, app, args)
				if rerr := render(cmd, ft, report.FromIngestResults(results)); rerr != nil {
					return rerr
				}
				return err
			})
		},
	}
	addFormatFlag(cmd, &format)

	return cmd
}

// ingestFiles ingests every path, continuing past failures. The returned
// error joins the failures.
func ingestFiles(ctx context.Context, app *cli.App, paths []string) ([]services.IngestResult, error) {
	var (
		results []services.IngestResult
		errs    []error
	)
	for _, path := range paths {
		res, err := app.Ingest.IngestFile(ctx, path)
		if err != nil {
			app.Logger.Error("Ingest failed", log.FieldDocument, path, log.FieldError, err.Error())
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

func newEnqueueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "enqueue <file>...",
		Short: "Queue documents for the ingest worker",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				queue, err := app.Queue()
				if err != nil {
					return err
				}
				for _, path := range args {
					id, err := enqueue(ctx, queue, path)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, path)
				}
				return nil
			})
		},
	}
}

// enqueue publishes an ingest job for the absolute form of path.
func enqueue(ctx context.Context, queue amqp.Publisher, path string) (uuid.UUID, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolving path: %w", err)
	}
	msg := amqp.NewIngestJobMessage(abs)
	if err := msg.Validate(); err != nil {
		return uuid.Nil, err
	}
	if err := queue.PublishIngestJob(ctx, msg); err != nil {
		return uuid.Nil, err
	}
	return msg.JobID, nil
}

func newImportSheetCommand() *cobra.Command {
	var (
		spreadsheetID string
		sheetName     string
		format        string
	)

	cmd := &cobra.Command{
		Use:   "import-sheet",
		Short: "Import a bank statement from Google Sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ft, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				src, err := app.SheetSource(ctx, spreadsheetID, sheetName)
				if err != nil {
					return err
				}
				name := "sheets:" + app.Config.GoogleSpreadsheetID
				if spreadsheetID != "" {
					name = "sheets:" + spreadsheetID
				}
				res, err := app.Ingest.IngestStatement(ctx, name, src)
				if err != nil {
					return err
				}
				return render(cmd, ft, report.FromIngestResults([]services.IngestResult{res}))
			})
		},
	}
	cmd.Flags().StringVar(&spreadsheetID, "spreadsheet", "", "spreadsheet id (default GOOGLE_SPREADSHEET_ID)")
	cmd.Flags().StringVar(&sheetName, "sheet", "", "sheet name (default GOOGLE_SHEET_NAME or the first sheet)")
	addFormatFlag(cmd, &format)

	return cmd
}
