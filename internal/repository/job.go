package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dvhalloran/cartload/internal/model"
)

var (
	// ErrNotFound is returned when a lookup matches no row. Callers compare
	// with errors.Is rather than inspecting SQL errors.
	ErrNotFound = errors.New("not found")
)

// JobRepository wraps all SQL touching the bulk-upload ledger. The API server
// creates and reads ledger rows; the claiming worker is the only writer after
// that.
type JobRepository struct {
	pool *pgxpool.Pool
}

// NewJobRepository constructs a repository.
func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

// CreateJob inserts a pending ledger row before the job is enqueued.
func (r *JobRepository) CreateJob(ctx context.Context, job *model.UploadJob) error {
	now := time.Now().UTC()
	job.Status = model.JobPending
	job.CreatedAt = now
	job.UpdatedAt = now
	_, err := r.pool.Exec(ctx, `
		INSERT INTO bulk_upload_jobs (job_id, file_name, status, errors, created_at, updated_at)
		VALUES ($1,$2,$3,'[]',$4,$5)
	`, job.JobID, job.FileName, job.Status, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert upload job: %w", err)
	}
	return nil
}

// GetJob returns a ledger row by job id.
func (r *JobRepository) GetJob(ctx context.Context, jobID string) (*model.UploadJob, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT job_id, file_name, status, total_rows, processed_rows, failed_rows, errors, created_at, updated_at
		FROM bulk_upload_jobs WHERE job_id=$1
	`, jobID)
	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select upload job: %w", err)
	}
	return job, nil
}

// ListJobs returns every ledger row, newest first.
func (r *JobRepository) ListJobs(ctx context.Context) ([]*model.UploadJob, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT job_id, file_name, status, total_rows, processed_rows, failed_rows, errors, created_at, updated_at
		FROM bulk_upload_jobs ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list upload jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*model.UploadJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan upload job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// MarkProcessing records that a worker has claimed the job. A queue
// redelivery may move a previously failed attempt back to processing.
func (r *JobRepository) MarkProcessing(ctx context.Context, jobID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE bulk_upload_jobs SET status=$1, updated_at=$2 WHERE job_id=$3
	`, model.JobProcessing, time.Now().UTC(), jobID)
	if err != nil {
		return fmt.Errorf("mark job processing: %w", err)
	}
	return nil
}

// SetTotalRows stores the row count once CSV ingest has finished.
func (r *JobRepository) SetTotalRows(ctx context.Context, jobID string, total int) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE bulk_upload_jobs SET total_rows=$1, updated_at=$2 WHERE job_id=$3
	`, total, time.Now().UTC(), jobID)
	if err != nil {
		return fmt.Errorf("set job total rows: %w", err)
	}
	return nil
}

// MarkCompleted finalizes a job with its counters and aggregated error list.
func (r *JobRepository) MarkCompleted(ctx context.Context, jobID string, processed, failed int, jobErrs []model.JobError) error {
	data, err := marshalErrors(jobErrs)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		UPDATE bulk_upload_jobs
		SET status=$1, processed_rows=$2, failed_rows=$3, errors=$4, updated_at=$5
		WHERE job_id=$6
	`, model.JobCompleted, processed, failed, data, time.Now().UTC(), jobID)
	if err != nil {
		return fmt.Errorf("mark job completed: %w", err)
	}
	return nil
}

// MarkFailed records a fatal attempt. The queue may still redeliver.
func (r *JobRepository) MarkFailed(ctx context.Context, jobID string, jobErrs []model.JobError) error {
	data, err := marshalErrors(jobErrs)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		UPDATE bulk_upload_jobs SET status=$1, errors=$2, updated_at=$3 WHERE job_id=$4
	`, model.JobFailed, data, time.Now().UTC(), jobID)
	if err != nil {
		return fmt.Errorf("mark job failed: %w", err)
	}
	return nil
}

func marshalErrors(jobErrs []model.JobError) ([]byte, error) {
	if jobErrs == nil {
		jobErrs = []model.JobError{}
	}
	data, err := json.Marshal(jobErrs)
	if err != nil {
		return nil, fmt.Errorf("marshal job errors: %w", err)
	}
	return data, nil
}

func scanJob(row pgx.Row) (*model.UploadJob, error) {
	var (
		job     model.UploadJob
		rawErrs []byte
	)
	if err := row.Scan(&job.JobID, &job.FileName, &job.Status, &job.TotalRows,
		&job.ProcessedRows, &job.FailedRows, &rawErrs, &job.CreatedAt, &job.UpdatedAt); err != nil {
		return nil, err
	}
	if len(rawErrs) > 0 {
		if err := json.Unmarshal(rawErrs, &job.Errors); err != nil {
			return nil, fmt.Errorf("decode job errors: %w", err)
		}
	}
	return &job, nil
}
