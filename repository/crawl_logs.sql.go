package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const createCrawlLog = `-- name: CreateCrawlLog :exec
INSERT INTO crawl_logs (id, portal, job_id, event_type, message, details, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

type CreateCrawlLogParams struct {
	ID        string          `json:"id"`
	Portal    string          `json:"portal"`
	JobID     pgtype.Text     `json:"job_id"`
	EventType string          `json:"event_type"`
	Message   pgtype.Text     `json:"message"`
	Details   json.RawMessage `json:"details"`
	CreatedAt time.Time       `json:"created_at"`
}

func (q *Queries) CreateCrawlLog(ctx context.Context, arg CreateCrawlLogParams) error {
	_, err := q.db.Exec(ctx, createCrawlLog,
		arg.ID,
		arg.Portal,
		arg.JobID,
		arg.EventType,
		arg.Message,
		arg.Details,
		arg.CreatedAt,
	)
	return err
}

const getCrawlLogsByJob = `-- name: GetCrawlLogsByJob :many
SELECT id, portal, job_id, event_type, message, details, created_at
FROM crawl_logs
WHERE job_id = $1
ORDER BY created_at
LIMIT $2 OFFSET $3
`

type GetCrawlLogsByJobParams struct {
	JobID  pgtype.Text `json:"job_id"`
	Limit  int32       `json:"limit"`
	Offset int32       `json:"offset"`
}

func (q *Queries) GetCrawlLogsByJob(ctx context.Context, arg GetCrawlLogsByJobParams) ([]CrawlLog, error) {
	rows, err := q.db.Query(ctx, getCrawlLogsByJob, arg.JobID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CrawlLog
	for rows.Next() {
		var i CrawlLog
		if err := rows.Scan(
			&i.ID,
			&i.Portal,
			&i.JobID,
			&i.EventType,
			&i.Message,
			&i.Details,
			&i.CreatedAt,
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
