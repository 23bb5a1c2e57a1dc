package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/hibiken/asynq"

	"github.com/dvhalloran/cartload/internal/importer"
	"github.com/dvhalloran/cartload/internal/model"
	"github.com/dvhalloran/cartload/internal/queue"
)

// Ledger is the slice of the job repository the worker writes to. After a
// claim the worker is the only writer for that job id.
type Ledger interface {
	MarkProcessing(ctx context.Context, jobID string) error
	SetTotalRows(ctx context.Context, jobID string, total int) error
	MarkCompleted(ctx context.Context, jobID string, processed, failed int, errs []model.JobError) error
	MarkFailed(ctx context.Context, jobID string, errs []model.JobError) error
}

// Processor is plugged into the asynq worker loop. Each delivery runs the
// full pipeline from the top: ingest, batch persist, ledger finalize.
type Processor struct {
	ledger Ledger
	batch  *importer.BatchWriter
}

// NewProcessor constructs a worker processor.
func NewProcessor(ledger Ledger, products importer.ProductCreator) *Processor {
	return &Processor{
		ledger: ledger,
		batch:  importer.NewBatchWriter(products),
	}
}

// Handler registers the bulk-import job handler.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.ProductImportTask, p.handleImport)
	return mux
}

func (p *Processor) handleImport(ctx context.Context, task *asynq.Task) error {
	var payload queue.ImportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	// The staged file is removed on every exit path. A redelivery after a
	// mid-pipeline crash may find it already gone; that is tolerated.
	defer removeUpload(payload.FilePath)

	failure := func(err error) error {
		log.Printf("import %s failed: %v", payload.JobID, err)
		_ = p.ledger.MarkFailed(ctx, payload.JobID, []model.JobError{
			{Messages: []string{err.Error()}},
		})
		return err
	}

	if err := p.ledger.MarkProcessing(ctx, payload.JobID); err != nil {
		return failure(err)
	}
	res, err := importer.File(payload.FilePath)
	if err != nil {
		// Stream-level fault. Returning the error hands the job back to the
		// queue's retry policy.
		return failure(err)
	}
	total := len(res.Valid) + len(res.Errors)
	if err := p.ledger.SetTotalRows(ctx, payload.JobID, total); err != nil {
		return failure(err)
	}

	batch := p.batch.Write(ctx, res.Valid)

	// Ingest errors first in line order, then persistence failures in batch
	// order.
	jobErrs := make([]model.JobError, 0, len(res.Errors)+len(batch.Failed))
	for _, rowErr := range res.Errors {
		jobErrs = append(jobErrs, model.JobError{
			Line:     rowErr.Line,
			Messages: rowErr.Messages,
			Row:      rowErr.Raw,
		})
	}
	for _, failed := range batch.Failed {
		rec := failed.Record
		jobErrs = append(jobErrs, model.JobError{
			Messages: []string{failed.Message},
			Record:   &rec,
		})
	}

	if err := p.ledger.MarkCompleted(ctx, payload.JobID, len(batch.Successful), len(jobErrs), jobErrs); err != nil {
		return failure(err)
	}
	log.Printf("import %s completed: %d of %d rows persisted, %d failed",
		payload.JobID, len(batch.Successful), total, len(jobErrs))
	return nil
}

func removeUpload(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("remove upload %s: %v", path, err)
	}
}
