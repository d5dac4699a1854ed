package crawler

import (
	"context"

	"github.com/LexiconIndonesia/news-portal-crawler/common/fetch"
	"github.com/LexiconIndonesia/news-portal-crawler/common/models"
	"github.com/PuerkitoBio/goquery"
)

// ArticleStore persists scraped articles.
type ArticleStore interface {
	// SaveArticle stores the article and returns its id. It returns
	// ErrDuplicateArticle when the link or title already exists.
	SaveArticle(ctx context.Context, article models.ScrapedArticle) (string, error)

	// FindExisting reports whether an article with this link or title exists.
	FindExisting(ctx context.Context, link, title string) (bool, error)
}

// KeywordStore serves the keyword list and its match counters.
type KeywordStore interface {
	GetActiveKeywords(ctx context.Context) ([]models.Keyword, error)
	IncrementMatchCount(ctx context.Context, keywordID string) error
}

// SaveHook runs after an article was saved. Errors are logged, never counted
// against the run.
type SaveHook interface {
	AfterSave(ctx context.Context, article models.ScrapedArticle, doc *goquery.Document) error
}

// SessionOpener acquires the fetch session for a run. The orchestrator
// closes it when the run ends.
type SessionOpener func(ctx context.Context, mode fetch.Mode) (fetch.Session, error)

// CancelCheck reports whether the run was cancelled from outside.
type CancelCheck func(ctx context.Context) bool
