package models

import "time"

// Keyword is a search term managed by the admin surface. Only active keywords
// take part in title filtering.
type Keyword struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	IsActive   bool   `json:"is_active"`
	MatchCount int64  `json:"match_count"`
}

// Candidate is an article reference found on a listing page, before its
// content is fetched. It is never persisted.
type Candidate struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	RawDate string `json:"raw_date"`
}

// ScrapedArticle is the persisted result of a successful article scrape.
type ScrapedArticle struct {
	ID              string    `json:"id"`
	Portal          string    `json:"portal"`
	Link            string    `json:"link"`
	Title           string    `json:"title"`
	Body            string    `json:"body"`
	PublishedDate   time.Time `json:"published_date"`
	MatchedKeywords []string  `json:"matched_keywords"`
	ScrapedAt       time.Time `json:"scraped_at"`
}

// CrawlResult accumulates the outcome of one portal run.
type CrawlResult struct {
	Success      bool             `json:"success"`
	TotalScraped int              `json:"total_scraped"`
	NewItems     int              `json:"new_items"`
	Duplicates   int              `json:"duplicates"`
	Errors       []string         `json:"errors"`
	Items        []ScrapedArticle `json:"items"`
	DurationMs   int64            `json:"duration_ms"`
}
