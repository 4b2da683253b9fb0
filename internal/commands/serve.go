package commands

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"reikningar/internal/cli"
	"reikningar/internal/http"
	"reikningar/internal/log"
	"reikningar/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand() *cobra.Command {
	var (
		addr       string
		withWorker bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				if addr == "" {
					addr = ":" + app.Config.Port
				}
				return serve(ctx, app, addr, withWorker)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :$PORT)")
	cmd.Flags().BoolVar(&withWorker, "worker", false, "also consume the ingest queue")

	return cmd
}

// serve runs the API, and optionally the queue worker, until a shutdown
// signal or the first failure.
func serve(ctx context.Context, app *cli.App, addr string, withWorker bool) error {
	srv := http.NewServer(addr, http.Options{
		Ingest:    app.Ingest,
		Assistant: app.Assistant,
		Logger:    app.Logger,
	})

	ctx = cli.GracefulShutdown(ctx, app.Logger, shutdownTimeout, nil)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		app.Logger.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error("HTTP shutdown failed", log.FieldOperation, log.OpShutdown, log.FieldError, err.Error())
			return err
		}
		return nil
	})
	if withWorker {
		g.Go(func() error {
			return runWorker(ctx, app)
		})
	}
	return g.Wait()
}

// NewWorkerCommand returns the queue consumer command. It is also the whole
// of the reikningar-worker binary.
func NewWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Ingest documents queued with enqueue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App) error {
				ctx = cli.GracefulShutdown(ctx, app.Logger, shutdownTimeout, nil)
				return runWorker(ctx, app)
			})
		},
	}
}

func runWorker(ctx context.Context, app *cli.App) error {
	queue, err := app.Queue()
	if err != nil {
		return err
	}
	w := worker.NewIngestWorker(app.Ingest, app.Logger)
	app.Logger.Info("Ingest worker started", "queue", app.Config.AMQPQueue)
	if err := w.Run(ctx, queue); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("ingest worker: %w", err)
	}
	return nil
}
