package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reikningar/internal/cli"
	"reikningar/internal/report"
	"reikningar/internal/services"
)

func newBillsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bills",
		Short: "List and edit stored bills",
	}
	cmd.AddCommand(
		newBillsListCommand(),
		newBillsAddCommand(),
		newBillsRecurringCommand(),
		newBillsDeleteCommand(),
	)
	return cmd
}

func newBillsListCommand() *cobra.Command {
	var (
		query     services.BillQuery
		recurring string
		format    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ft, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			if recurring != "" {
				v, err := strconv.ParseBool(recurring)
				if err != nil {
					return fmt.Errorf("--recurring: %w", err)
				}
				query.Recurring = &v
			}
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				bills, err := query.Apply(app.State.Snapshot().Bills)
				if err != nil {
					return err
				}
				return render(cmd, ft, report.FromBills(bills))
			})
		},
	}
	cmd.Flags().StringVar(&query.Creditor, "creditor", "", "only creditors containing this text")
	cmd.Flags().StringVar(&recurring, "recurring", "", "only recurring (true) or one-time (false) bills")
	cmd.Flags().StringVar(&query.SortBy, "sort", "", "sort by date, creditor or amount")
	cmd.Flags().BoolVar(&query.Desc, "desc", false, "sort descending")
	addFormatFlag(cmd, &format)

	return cmd
}

func newBillsAddCommand() *cobra.Command {
	var in services.ManualBill

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a bill by hand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				bill, inserted, err := app.Ingest.AddManualBill(ctx, in)
				if err != nil {
					return err
				}
				if !inserted {
					fmt.Fprintf(cmd.OutOrStdout(), "already stored: %s\n", bill.ID)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added: %s\n", bill.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Creditor, "creditor", "", "creditor (required)")
	cmd.Flags().StringVar(&in.Date, "date", "", "due date, DD.MM.YYYY (required)")
	cmd.Flags().StringVar(&in.Amount, "amount", "", "amount in krónur (required)")
	cmd.Flags().BoolVar(&in.Recurring, "recurring", false, "mark as recurring")
	_ = cmd.MarkFlagRequired("creditor")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newBillsRecurringCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recurring <id> <true|false>",
		Short: "Set the recurring flag of a bill",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recurring, err := strconv.ParseBool(args[1])
			if err != nil {
				return fmt.Errorf("recurring flag: %w", err)
			}
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				id, err := services.ResolveBillID(app.State.Snapshot().Bills, args[0])
				if err != nil {
					return err
				}
				return app.Ingest.SetRecurring(ctx, id, recurring)
			})
		},
	}
}

func newBillsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				id, err := services.ResolveBillID(app.State.Snapshot().Bills, args[0])
				if err != nil {
					return err
				}
				if err := app.Ingest.DeleteBill(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted: %s\n", id)
				return nil
			})
		},
	}
}

func newTransactionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Inspect imported statement transactions",
	}

	var (
		format string
		limit  int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ft, err := report.ParseFormat(format)
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				txs := app.State.Snapshot().Transactions
				if limit > 0 && len(txs) > limit {
					txs = txs[:limit]
				}
				return render(cmd, ft, report.FromTransactions(txs))
			})
		},
	}
	list.Flags().IntVar(&limit, "limit", 0, "show at most this many (0 for all)")
	addFormatFlag(list, &format)
	cmd.AddCommand(list)

	return cmd
}
