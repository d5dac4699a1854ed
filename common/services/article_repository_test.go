package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/LexiconIndonesia/news-portal-crawler/common/crawler"
	"github.com/LexiconIndonesia/news-portal-crawler/common/models"
	"github.com/LexiconIndonesia/news-portal-crawler/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *bool:
			*p = r.values[i].(bool)
		}
	}
	return nil
}

type fakeDB struct {
	row      fakeRow
	lastSQL  string
	lastArgs []any
	affected int64
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	f.lastSQL, f.lastArgs = sql, args
	return pgconn.NewCommandTag(fmt.Sprintf("UPDATE %d", f.affected)), nil
}

func (f *fakeDB) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...interface{}) pgx.Row {
	f.lastSQL, f.lastArgs = sql, args
	return f.row
}

func TestArticleRepositorySaveArticle(t *testing.T) {
	db := &fakeDB{row: fakeRow{values: []any{"article-1"}}}
	repo := NewArticleRepository(repository.New(db))

	id, err := repo.SaveArticle(context.Background(), models.ScrapedArticle{
		Portal:        "detik",
		Link:          "HTTPS://News.Detik.com/berita/1",
		Title:         "  KPK  Tangkap Pejabat ",
		Body:          "isi",
		PublishedDate: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "article-1", id)

	assert.Equal(t, "https://news.detik.com/berita/1", db.lastArgs[3])
	assert.Equal(t, "kpk tangkap pejabat", db.lastArgs[5])
	assert.Equal(t, []string{}, db.lastArgs[8])
}

func TestArticleRepositorySaveArticleConflict(t *testing.T) {
	db := &fakeDB{row: fakeRow{err: pgx.ErrNoRows}}
	repo := NewArticleRepository(repository.New(db))

	_, err := repo.SaveArticle(context.Background(), models.ScrapedArticle{Link: "https://x", Title: "x"})
	assert.ErrorIs(t, err, crawler.ErrDuplicateArticle)
}

func TestArticleRepositoryFindExisting(t *testing.T) {
	db := &fakeDB{row: fakeRow{values: []any{true}}}
	repo := NewArticleRepository(repository.New(db))

	exists, err := repo.FindExisting(context.Background(), " HTTPS://A.example/x ", "Judul  Berita")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, []any{"https://a.example/x", "judul berita"}, db.lastArgs)
}

func TestKeywordRepositoryIncrementMissing(t *testing.T) {
	db := &fakeDB{affected: 0}
	repo := NewKeywordRepository(repository.New(db))
	assert.Error(t, repo.IncrementMatchCount(context.Background(), "missing"))

	db.affected = 1
	assert.NoError(t, repo.IncrementMatchCount(context.Background(), "kw-1"))
}
