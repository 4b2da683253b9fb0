package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"reikningar/internal/assistant"
	"reikningar/internal/cli"
	"reikningar/internal/services"
)

func newAskCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the assistant about your finances",
		Long:  "Ask a single question, or start a conversation on stdin when no question is given. An empty line or EOF ends the conversation.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				if app.Assistant == nil {
					return errors.New("assistant not configured")
				}
				if len(args) > 0 {
					return askOnce(ctx, cmd.OutOrStdout(), app.Assistant, app.State, strings.Join(args, " "))
				}
				return converse(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), app.Assistant, app.State)
			})
		},
	}
}

func askOnce(ctx context.Context, out io.Writer, a *assistant.Assistant, state *services.State, question string) error {
	snap := state.Snapshot()
	answer, err := a.Ask(ctx, question, snap.Bills, snap.Transactions)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, answer)
	return nil
}

// converse reads one question per line, keeping the history between turns.
func converse(ctx context.Context, in io.Reader, out io.Writer, a *assistant.Assistant, state *services.State) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			return nil
		}
		if err := askOnce(ctx, out, a, state, question); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}
