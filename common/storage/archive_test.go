package storage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/LexiconIndonesia/news-portal-crawler/common/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	objects map[string]string
	types   map[string]string
	fail    bool
}

func newMemStore() *memStore {
	return &memStore{objects: map[string]string{}, types: map[string]string{}}
}

func (m *memStore) Upload(_ context.Context, bucket, objectName string, content []byte, contentType string) (string, error) {
	if m.fail {
		return "", errors.New("quota exceeded")
	}
	m.objects[bucket+"/"+objectName] = string(content)
	m.types[bucket+"/"+objectName] = contentType
	return objectName, nil
}

func (m *memStore) StreamUpload(ctx context.Context, bucket, objectName string, reader io.Reader, contentType string) (string, error) {
	b, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return m.Upload(ctx, bucket, objectName, b, contentType)
}

func (m *memStore) Download(_ context.Context, bucket, objectName string) ([]byte, error) {
	return []byte(m.objects[bucket+"/"+objectName]), nil
}

func (m *memStore) Delete(_ context.Context, bucket, objectName string) error {
	delete(m.objects, bucket+"/"+objectName)
	return nil
}

func sampleArticle() models.ScrapedArticle {
	return models.ScrapedArticle{
		ID:            "a1",
		Portal:        "detik",
		Link:          "https://news.detik.com/berita/a1",
		Title:         "KPK Tangkap Pejabat",
		Body:          "Isi berita.",
		PublishedDate: time.Date(2024, time.March, 9, 0, 0, 0, 0, time.UTC),
	}
}

func TestObjectPrefix(t *testing.T) {
	assert.Equal(t, "detik/2024/03/a1", ObjectPrefix(sampleArticle()))

	a := sampleArticle()
	a.PublishedDate = time.Time{}
	a.ScrapedAt = time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "detik/2025/11/a1", ObjectPrefix(a))
}

func TestArchiveUploadsHTMLAndMarkdown(t *testing.T) {
	store := newMemStore()
	archiver := NewArchiver(store, "bucket")

	prefix, err := archiver.Archive(context.Background(), sampleArticle(),
		"<html><body><p>raw</p></body></html>",
		"<div><p>Paragraf <strong>pertama</strong>.</p><p>Kedua.</p></div>")
	require.NoError(t, err)
	assert.Equal(t, "detik/2024/03/a1", prefix)

	assert.Contains(t, store.objects["bucket/detik/2024/03/a1.html"], "<p>raw</p>")
	markdown := store.objects["bucket/detik/2024/03/a1.md"]
	assert.Contains(t, markdown, "# KPK Tangkap Pejabat")
	assert.Contains(t, markdown, "Source: https://news.detik.com/berita/a1")
	assert.Contains(t, markdown, "Paragraf **pertama**.")
	assert.Contains(t, store.types["bucket/detik/2024/03/a1.md"], "text/markdown")
}

func TestArchiveFallsBackToBody(t *testing.T) {
	archiver := NewArchiver(newMemStore(), "bucket")
	markdown, err := archiver.Markdown(sampleArticle(), "")
	require.NoError(t, err)
	assert.Contains(t, markdown, "Isi berita.")
}

func TestArchivePropagatesUploadError(t *testing.T) {
	store := newMemStore()
	store.fail = true
	_, err := NewArchiver(store, "bucket").Archive(context.Background(), sampleArticle(), "<p>x</p>", "")
	assert.Error(t, err)
}
