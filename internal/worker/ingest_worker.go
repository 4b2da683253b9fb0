// Package worker processes queued document ingest jobs.
package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"reikningar/internal/amqp"
	"reikningar/internal/core"
	"reikningar/internal/log"
	"reikningar/internal/services"
)

// Ingester is the part of services.IngestService the worker needs.
type Ingester interface {
	IngestFile(ctx context.Context, path string) (services.IngestResult, error)
}

// IngestWorker ingests the document named by each job.
type IngestWorker struct {
	ingester Ingester
	logger   *log.Logger
}

func NewIngestWorker(ingester Ingester, logger *log.Logger) *IngestWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &IngestWorker{
		ingester: ingester,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// Handle processes one job. A document that is missing or cannot be parsed
// will not improve on retry, so the error is marked amqp.ErrDiscard; other
// failures are returned as is and the job is requeued.
func (w *IngestWorker) Handle(ctx context.Context, msg *amqp.IngestJobMessage) error {
	start := time.Now()
	logger := w.logger.With(log.FieldJobID, msg.JobID.String(), log.FieldDocument, msg.Path)
	logger.InfoContext(ctx, "Processing ingest job", "queued_for", start.Sub(msg.SubmittedAt).Round(time.Millisecond))

	res, err := w.ingester.IngestFile(ctx, msg.Path)
	if err != nil {
		if permanent(err) {
			logger.WarnContext(ctx, "Dropping ingest job", log.FieldError, err.Error())
			return fmt.Errorf("%w: %w", amqp.ErrDiscard, err)
		}
		return fmt.Errorf("ingest %s: %w", msg.Path, err)
	}

	logger.InfoContext(ctx, "Ingest job done",
		log.FieldInserted, res.Inserted,
		"duplicates", res.Duplicates,
		"discarded", res.Discarded,
		"rejected", res.Rejected,
		log.FieldDuration, time.Since(start).Milliseconds(),
	)
	return nil
}

// Run consumes jobs from client until ctx is done.
func (w *IngestWorker) Run(ctx context.Context, client *amqp.Client) error {
	return client.ConsumeIngestJobs(ctx, w.Handle)
}

func permanent(err error) bool {
	return errors.Is(err, core.ErrMalformedInput) || errors.Is(err, os.ErrNotExist)
}
