package repository

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgtype"
)

const countJobs = `-- name: CountJobs :one
SELECT COUNT(*) FROM jobs
`

func (q *Queries) CountJobs(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countJobs)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createJob = `-- name: CreateJob :one
INSERT INTO jobs (id, portal, status, created_at, updated_at)
VALUES ($1, $2, $3, NOW(), NOW())
RETURNING id, portal, status, result, error, created_at, updated_at
`

type CreateJobParams struct {
	ID     string `json:"id"`
	Portal string `json:"portal"`
	Status string `json:"status"`
}

func (q *Queries) CreateJob(ctx context.Context, arg CreateJobParams) (Job, error) {
	row := q.db.QueryRow(ctx, createJob, arg.ID, arg.Portal, arg.Status)
	var i Job
	err := row.Scan(
		&i.ID,
		&i.Portal,
		&i.Status,
		&i.Result,
		&i.Error,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getJobById = `-- name: GetJobById :one
SELECT id, portal, status, result, error, created_at, updated_at
FROM jobs
WHERE id = $1
`

func (q *Queries) GetJobById(ctx context.Context, id string) (Job, error) {
	row := q.db.QueryRow(ctx, getJobById, id)
	var i Job
	err := row.Scan(
		&i.ID,
		&i.Portal,
		&i.Status,
		&i.Result,
		&i.Error,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listJobs = `-- name: ListJobs :many
SELECT id, portal, status, result, error, created_at, updated_at
FROM jobs
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`

type ListJobsParams struct {
	Limit  int32 `json:"limit"`
	Offset int32 `json:"offset"`
}

func (q *Queries) ListJobs(ctx context.Context, arg ListJobsParams) ([]Job, error) {
	rows, err := q.db.Query(ctx, listJobs, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Job
	for rows.Next() {
		var i Job
		if err := rows.Scan(
			&i.ID,
			&i.Portal,
			&i.Status,
			&i.Result,
			&i.Error,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateJobStatus = `-- name: UpdateJobStatus :one
UPDATE jobs
SET status = $2, updated_at = NOW()
WHERE id = $1
RETURNING id, portal, status, result, error, created_at, updated_at
`

type UpdateJobStatusParams struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (q *Queries) UpdateJobStatus(ctx context.Context, arg UpdateJobStatusParams) (Job, error) {
	row := q.db.QueryRow(ctx, updateJobStatus, arg.ID, arg.Status)
	var i Job
	err := row.Scan(
		&i.ID,
		&i.Portal,
		&i.Status,
		&i.Result,
		&i.Error,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const updateJobResult = `-- name: UpdateJobResult :exec
UPDATE jobs
SET status = $2, result = $3, error = $4, updated_at = NOW()
WHERE id = $1
`

type UpdateJobResultParams struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Result json.RawMessage `json:"result"`
	Error  pgtype.Text     `json:"error"`
}

func (q *Queries) UpdateJobResult(ctx context.Context, arg UpdateJobResultParams) error {
	_, err := q.db.Exec(ctx, updateJobResult, arg.ID, arg.Status, arg.Result, arg.Error)
	return err
}
