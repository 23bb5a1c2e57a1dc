package importer

import (
	"context"

	"github.com/dvhalloran/cartload/internal/model"
)

// DefaultBatchSize bounds how many rows are in flight between ledger
// checkpoints; it is not a transaction boundary.
const DefaultBatchSize = 100

// ProductCreator is the slice of the product store the batch writer needs.
// Tests inject fakes; production wires *repository.ProductRepository.
type ProductCreator interface {
	CreateProduct(ctx context.Context, p *model.Product) error
}

// FailedRecord pairs a validated record with the message explaining why the
// store rejected it.
type FailedRecord struct {
	Record  model.Product
	Message string
}

// BatchResult partitions the persisted rows. Order follows submission order:
// batch by batch, row by row within a batch.
type BatchResult struct {
	Successful []model.Product
	Failed     []FailedRecord
}

// BatchWriter persists validated rows in fixed-size batches. A single row's
// failure (typically a duplicate name) is recorded without aborting the batch
// or the job; one bad row must not sink hundreds of good ones.
type BatchWriter struct {
	creator ProductCreator
	size    int
}

// NewBatchWriter constructs a writer with the default batch size.
func NewBatchWriter(creator ProductCreator) *BatchWriter {
	return &BatchWriter{creator: creator, size: DefaultBatchSize}
}

// Write persists records sequentially and returns the success/failure
// partition. It never fails as a whole; row-level errors are data, not
// control flow.
func (w *BatchWriter) Write(ctx context.Context, records []model.Product) *BatchResult {
	res := &BatchResult{}
	for start := 0; start < len(records); start += w.size {
		end := start + w.size
		if end > len(records) {
			end = len(records)
		}
		for _, rec := range records[start:end] {
			p := rec
			if err := w.creator.CreateProduct(ctx, &p); err != nil {
				res.Failed = append(res.Failed, FailedRecord{Record: rec, Message: err.Error()})
				continue
			}
			res.Successful = append(res.Successful, p)
		}
	}
	return res
}
