package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LexiconIndonesia/news-portal-crawler/common/crawler"
	"github.com/LexiconIndonesia/news-portal-crawler/common/dedup"
	"github.com/LexiconIndonesia/news-portal-crawler/common/models"
	"github.com/LexiconIndonesia/news-portal-crawler/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ArticleRepository is a PostgreSQL implementation of ArticleService
type ArticleRepository struct {
	db *repository.Queries
}

// NewArticleRepository creates a new PostgreSQL ArticleRepository
func NewArticleRepository(db *repository.Queries) *ArticleRepository {
	return &ArticleRepository{
		db: db,
	}
}

// SaveArticle inserts the article. A link or title collision yields
// crawler.ErrDuplicateArticle.
func (r *ArticleRepository) SaveArticle(ctx context.Context, article models.ScrapedArticle) (string, error) {
	id := article.ID
	if id == "" {
		id = uuid.New().String()
	}
	scrapedAt := article.ScrapedAt
	if scrapedAt.IsZero() {
		scrapedAt = time.Now()
	}
	keywords := article.MatchedKeywords
	if keywords == nil {
		keywords = []string{}
	}

	savedID, err := r.db.CreateArticle(ctx, repository.CreateArticleParams{
		ID:              id,
		Portal:          article.Portal,
		Link:            article.Link,
		LinkNormalized:  dedup.NormalizeURL(article.Link),
		Title:           article.Title,
		TitleNormalized: dedup.NormalizeTitle(article.Title),
		Body:            article.Body,
		PublishedDate:   article.PublishedDate,
		MatchedKeywords: keywords,
		ScrapedAt:       scrapedAt,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", crawler.ErrDuplicateArticle, article.Link)
		}
		return "", fmt.Errorf("insert article: %w", err)
	}

	return savedID, nil
}

// FindExisting gets whether an article exists by normalized link or title
func (r *ArticleRepository) FindExisting(ctx context.Context, link, title string) (bool, error) {
	exists, err := r.db.ArticleExists(ctx, repository.ArticleExistsParams{
		LinkNormalized:  dedup.NormalizeURL(link),
		TitleNormalized: dedup.NormalizeTitle(title),
	})
	if err != nil {
		return false, err
	}

	return exists, nil
}
