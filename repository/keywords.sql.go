package repository

import (
	"context"
)

const getActiveKeywords = `-- name: GetActiveKeywords :many
SELECT id, text, is_active, match_count, created_at, updated_at
FROM keywords
WHERE is_active = TRUE AND btrim(text) <> ''
ORDER BY text
`

func (q *Queries) GetActiveKeywords(ctx context.Context) ([]Keyword, error) {
	rows, err := q.db.Query(ctx, getActiveKeywords)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Keyword
	for rows.Next() {
		var i Keyword
		if err := rows.Scan(
			&i.ID,
			&i.Text,
			&i.IsActive,
			&i.MatchCount,
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

const incrementKeywordMatchCount = `-- name: IncrementKeywordMatchCount :execrows
UPDATE keywords
SET match_count = match_count + 1, updated_at = NOW()
WHERE id = $1
`

func (q *Queries) IncrementKeywordMatchCount(ctx context.Context, id string) (int64, error) {
	result, err := q.db.Exec(ctx, incrementKeywordMatchCount, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
