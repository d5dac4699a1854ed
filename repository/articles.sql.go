package repository

import (
	"context"
	"time"
)

const articleExists = `-- name: ArticleExists :one
SELECT EXISTS (
    SELECT 1 FROM articles
    WHERE link_normalized = $1 OR title_normalized = $2
)
`

type ArticleExistsParams struct {
	LinkNormalized  string `json:"link_normalized"`
	TitleNormalized string `json:"title_normalized"`
}

func (q *Queries) ArticleExists(ctx context.Context, arg ArticleExistsParams) (bool, error) {
	row := q.db.QueryRow(ctx, articleExists, arg.LinkNormalized, arg.TitleNormalized)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const createArticle = `-- name: CreateArticle :one
INSERT INTO articles (
    id, portal, link, link_normalized, title, title_normalized,
    body, published_date, matched_keywords, scraped_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10
)
ON CONFLICT DO NOTHING
RETURNING id
`

type CreateArticleParams struct {
	ID              string    `json:"id"`
	Portal          string    `json:"portal"`
	Link            string    `json:"link"`
	LinkNormalized  string    `json:"link_normalized"`
	Title           string    `json:"title"`
	TitleNormalized string    `json:"title_normalized"`
	Body            string    `json:"body"`
	PublishedDate   time.Time `json:"published_date"`
	MatchedKeywords []string  `json:"matched_keywords"`
	ScrapedAt       time.Time `json:"scraped_at"`
}

// CreateArticle returns pgx.ErrNoRows when the link or title already exists.
func (q *Queries) CreateArticle(ctx context.Context, arg CreateArticleParams) (string, error) {
	row := q.db.QueryRow(ctx, createArticle,
		arg.ID,
		arg.Portal,
		arg.Link,
		arg.LinkNormalized,
		arg.Title,
		arg.TitleNormalized,
		arg.Body,
		arg.PublishedDate,
		arg.MatchedKeywords,
		arg.ScrapedAt,
	)
	var id string
	err := row.Scan(&id)
	return id, err
}
