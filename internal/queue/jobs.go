package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// ProductImportTask is scheduled each time a CSV is uploaded.
	ProductImportTask = "product:bulk_import"

	// maxRetries allows three delivery attempts in total: the initial one
	// plus two retries.
	maxRetries = 2

	// completedRetention keeps finished tasks visible to asynq tooling. The
	// ledger, not the queue, is the durable record.
	completedRetention = 24 * time.Hour
)

// ImportPayload is serialized into the task payload so the worker knows which
// staged file to ingest and which ledger row to update.
type ImportPayload struct {
	FilePath string `json:"filePath"`
	FileName string `json:"fileName"`
	JobID    string `json:"jobId"`
}

// Client wraps the asynq producer so HTTP handlers depend on a narrow
// interface instead of the asynq API.
type Client struct {
	client *asynq.Client
}

// NewClient constructs a Client.
func NewClient(client *asynq.Client) *Client {
	return &Client{client: client}
}

// EnqueueImport schedules a bulk-import job. The task id is the ledger's
// jobId, so a queue entry and its ledger row are always correlatable.
func (c *Client) EnqueueImport(ctx context.Context, payload ImportPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	task := asynq.NewTask(ProductImportTask, data)
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.TaskID(payload.JobID),
		asynq.MaxRetry(maxRetries),
		asynq.Retention(completedRetention),
	)
	if err != nil {
		return fmt.Errorf("enqueue import task: %w", err)
	}
	return nil
}

// RetryDelay implements exponential backoff starting at 2 seconds
// (2s, 4s, ...). Wired into asynq.Config.RetryDelayFunc on the worker;
// asynq passes the task's prior retry count, so n is 0 when the first
// delivery fails.
func RetryDelay(n int, _ error, _ *asynq.Task) time.Duration {
	if n < 0 {
		n = 0
	}
	return time.Duration(1<<uint(n)) * 2 * time.Second
}
