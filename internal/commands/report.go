package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reikningar/internal/cli"
	"reikningar/internal/report"
)

func newReportCommand() *cobra.Command {
	var (
		format string
		asOf   string
	)

	cmd := &cobra.Command{
		Use:   "report [view]",
		Short: "Show an analytics view",
		Long:  "Show an analytics view. Without a view name the available views are listed.\n\nViews: " + strings.Join(report.ViewNames(), ", "),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, name := range report.ViewNames() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}
			ft, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			now := time.Now()
			if asOf != "" {
				if now, err = time.Parse(time.DateOnly, asOf); err != nil {
					return fmt.Errorf("--as-of: %w", err)
				}
			}
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				frame, err := report.BuildView(args[0], app.State.Snapshot(), now)
				if err != nil {
					return err
				}
				return render(cmd, ft, frame)
			})
		},
	}
	addFormatFlag(cmd, &format)
	cmd.Flags().StringVar(&asOf, "as-of", "", "evaluate time-relative views at this date (YYYY-MM-DD)")

	return cmd
}
