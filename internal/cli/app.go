package cli

import (
	"context"
	"errors"
	"fmt"

	"reikningar/internal/amqp"
	"reikningar/internal/assistant"
	"reikningar/internal/backend"
	"reikningar/internal/config"
	"reikningar/internal/log"
	"reikningar/internal/services"
	"reikningar/internal/tabular/google"
)

// ErrQueueDisabled is returned by App.Queue when AMQP_URL is empty.
var ErrQueueDisabled = errors.New("ingest queue disabled: AMQP_URL is not set")

// ErrSheetsNotConfigured is returned by App.SheetSource when no spreadsheet
// or no service account is configured.
var ErrSheetsNotConfigured = errors.New("google sheets not configured: set GOOGLE_SPREADSHEET_ID (or --spreadsheet) and GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE")

// App is the wired application shared by every command: one gateway, one
// State and the services built on it.
type App struct {
	Config    *config.Config
	Logger    *log.Logger
	State     *services.State
	Ingest    *services.IngestService
	Assistant *assistant.Assistant

	cleanup func() error
	queue   *amqp.Client
}

// NewApp opens the configured backend and loads the first snapshot. A
// completion backend that cannot be built leaves Assistant nil.
func NewApp(ctx context.Context, cfg *config.Config, logger *log.Logger) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).Open(ctx, bcfg)
	if err != nil {
		return nil, err
	}

	state := services.NewState(res.Gateway)
	if err := state.Refresh(ctx); err != nil {
		_ = res.Close()
		return nil, fmt.Errorf("initial load: %w", err)
	}

	app := &App{
		Config: cfg,
		Logger: logger,
		State:  state,
		Ingest: services.NewIngestService(state, services.IngestOptions{
			HeaderRow: cfg.StatementHeaderRow,
			Logger:    logger,
		}),
		cleanup: res.Close,
	}

	completer, err := NewCompleter(ctx, cfg)
	if err != nil {
		logger.Warn("Assistant disabled", "backend", cfg.AssistantBackend, log.FieldError, err.Error())
	} else {
		app.Assistant = assistant.New(completer, logger)
		app.Assistant.MaxTurns = cfg.AssistantMaxTurns
		app.Assistant.MaxRecords = cfg.ContextMaxRecords
	}

	snap := state.Snapshot()
	logger.Info("Application ready",
		log.FieldOperation, log.OpStartup,
		"backend", cfg.DataBackend,
		"bills", len(snap.Bills),
		"transactions", len(snap.Transactions),
	)
	return app, nil
}

// NewCompleter builds the completion backend named by cfg.AssistantBackend.
func NewCompleter(ctx context.Context, cfg *config.Config) (assistant.Completer, error) {
	switch cfg.AssistantBackend {
	case config.AssistantOllama:
		return assistant.NewOllamaCompleter(cfg.OllamaURL, cfg.OllamaModel, cfg.AssistantTimeout), nil
	case config.AssistantGemini:
		if cfg.GeminiAPIKey == "" {
			return nil, errors.New("GEMINI_API_KEY is not set")
		}
		g, err := assistant.NewGeminiCompleter(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return assistant.WithTimeout(g, cfg.AssistantTimeout), nil
	default:
		return nil, fmt.Errorf("unknown assistant backend %q", cfg.AssistantBackend)
	}
}

// Queue connects to the ingest queue on first use.
func (a *App) Queue() (*amqp.Client, error) {
	if a.queue != nil {
		return a.queue, nil
	}
	if a.Config.AMQPURL == "" {
		return nil, ErrQueueDisabled
	}
	client, err := amqp.NewClient(a.Config.AMQPURL, a.Config.AMQPExchange, a.Config.AMQPQueue, a.Logger)
	if err != nil {
		return nil, fmt.Errorf("connect ingest queue: %w", err)
	}
	a.queue = client
	return client, nil
}

// SheetSource builds the configured Google Sheets statement source.
func (a *App) SheetSource(ctx context.Context, spreadsheetID, sheetName string) (*google.Source, error) {
	cfg := *a.Config
	if spreadsheetID != "" {
		cfg.GoogleSpreadsheetID = spreadsheetID
	}
	if !cfg.SheetsConfigured() {
		return nil, ErrSheetsNotConfigured
	}
	spreadsheetID = cfg.GoogleSpreadsheetID
	if sheetName == "" {
		sheetName = a.Config.GoogleSheetName
	}
	src, err := google.New(ctx, spreadsheetID, sheetName, google.Credentials{
		JSON: a.Config.GoogleServiceAccountJSON,
		File: a.Config.GoogleServiceAccountFile,
	})
	if err != nil {
		return nil, err
	}
	return src.WithHeaderRow(a.Config.StatementHeaderRow), nil
}

// Close releases the queue connection and the backend.
func (a *App) Close() error {
	var errs []error
	if a.queue != nil {
		errs = append(errs, a.queue.Close())
	}
	if a.cleanup != nil {
		errs = append(errs, a.cleanup())
	}
	return errors.Join(errs...)
}
