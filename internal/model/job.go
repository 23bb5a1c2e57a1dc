// Package model contains simple struct definitions shared across packages.
package model

import (
	"time"
)

// JobStatus describes the bulk-upload lifecycle. A job is created pending,
// moves to processing when a worker claims it, and ends completed or failed.
// Queue redeliveries may move a failed job back to processing before the
// final attempt settles it.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// JobError is one entry in a job's error list. Ingest-time failures carry
// Line (1-indexed, header counted as line 1), Messages, and the raw Row;
// persistence-time failures carry Messages and the validated Record.
type JobError struct {
	Line     int               `json:"line,omitempty"`
	Messages []string          `json:"errors"`
	Row      map[string]string `json:"data,omitempty"`
	Record   *Product          `json:"product,omitempty"`
}

// UploadJob is the ledger row tracking one bulk-upload attempt. JobID is the
// external handle clients poll with; it doubles as the queue task id.
type UploadJob struct {
	JobID         string     `json:"jobId"`
	FileName      string     `json:"fileName"`
	Status        JobStatus  `json:"status"`
	TotalRows     int        `json:"totalRows"`
	ProcessedRows int        `json:"processedRows"`
	FailedRows    int        `json:"failedRows"`
	Errors        []JobError `json:"errors"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}
