package services

import (
	"context"

	"github.com/LexiconIndonesia/news-portal-crawler/common/models"
	"github.com/LexiconIndonesia/news-portal-crawler/repository"
)

// ArticleService defines the article database operations used by crawl runs
type ArticleService interface {
	// SaveArticle stores a scraped article and returns its ID
	SaveArticle(ctx context.Context, article models.ScrapedArticle) (string, error)

	// FindExisting reports whether an article with the link or title exists
	FindExisting(ctx context.Context, link, title string) (bool, error)
}

// KeywordService defines the keyword database operations
type KeywordService interface {
	// GetActiveKeywords returns all active keywords
	GetActiveKeywords(ctx context.Context) ([]models.Keyword, error)

	// IncrementMatchCount bumps the match counter of a keyword
	IncrementMatchCount(ctx context.Context, keywordID string) error
}

// JobService defines the job database operations used by the HTTP surface
type JobService interface {
	GetByID(ctx context.Context, id string) (repository.Job, error)
	List(ctx context.Context, limit, offset int32) ([]repository.Job, int64, error)
}
