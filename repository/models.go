package repository

import (
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

type Article struct {
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

type CrawlLog struct {
	ID        string          `json:"id"`
	Portal    string          `json:"portal"`
	JobID     pgtype.Text     `json:"job_id"`
	EventType string          `json:"event_type"`
	Message   pgtype.Text     `json:"message"`
	Details   json.RawMessage `json:"details"`
	CreatedAt time.Time       `json:"created_at"`
}

type Job struct {
	ID        string          `json:"id"`
	Portal    string          `json:"portal"`
	Status    string          `json:"status"`
	Result    json.RawMessage `json:"result"`
	Error     pgtype.Text     `json:"error"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type Keyword struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	IsActive   bool      `json:"is_active"`
	MatchCount int64     `json:"match_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
