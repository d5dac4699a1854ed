package services

import (
	"context"
	"fmt"

	"github.com/LexiconIndonesia/news-portal-crawler/common/models"
	"github.com/LexiconIndonesia/news-portal-crawler/repository"
	"github.com/samber/lo"
)

// KeywordRepository is a PostgreSQL implementation of KeywordService
type KeywordRepository struct {
	db *repository.Queries
}

// NewKeywordRepository creates a new PostgreSQL KeywordRepository
func NewKeywordRepository(db *repository.Queries) *KeywordRepository {
	return &KeywordRepository{
		db: db,
	}
}

// GetActiveKeywords gets the active keywords
func (r *KeywordRepository) GetActiveKeywords(ctx context.Context) ([]models.Keyword, error) {
	rows, err := r.db.GetActiveKeywords(ctx)
	if err != nil {
		return nil, err
	}

	return lo.Map(rows, func(k repository.Keyword, _ int) models.Keyword {
		return models.Keyword{
			ID:         k.ID,
			Text:       k.Text,
			IsActive:   k.IsActive,
			MatchCount: k.MatchCount,
		}
	}), nil
}

// IncrementMatchCount increments the match count of a keyword
func (r *KeywordRepository) IncrementMatchCount(ctx context.Context, keywordID string) error {
	affected, err := r.db.IncrementKeywordMatchCount(ctx, keywordID)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("keyword %s not found", keywordID)
	}

	return nil
}
