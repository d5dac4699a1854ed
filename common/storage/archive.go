package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	mdp "github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/LexiconIndonesia/news-portal-crawler/common/models"
)

// Archiver keeps the raw page and a markdown rendition of every saved article.
type Archiver struct {
	store     StorageService
	bucket    string
	converter *md.Converter
}

func NewArchiver(store StorageService, bucket string) *Archiver {
	converter := md.NewConverter("", true, nil)
	converter.Use(mdp.GitHubFlavored())
	return &Archiver{store: store, bucket: bucket, converter: converter}
}

// ObjectPrefix is <portal>/<yyyy>/<mm>/<article id>, dated by publication.
func ObjectPrefix(article models.ScrapedArticle) string {
	d := article.PublishedDate
	if d.IsZero() {
		d = article.ScrapedAt
	}
	return path.Join(article.Portal, d.Format("2006"), d.Format("01"), article.ID)
}

// Archive uploads rawHTML as .html and contentHTML rendered to markdown as
// .md. An empty contentHTML falls back to the extracted body text.
func (a *Archiver) Archive(ctx context.Context, article models.ScrapedArticle, rawHTML, contentHTML string) (string, error) {
	prefix := ObjectPrefix(article)

	if _, err := a.store.Upload(ctx, a.bucket, prefix+".html", []byte(rawHTML), "text/html; charset=utf-8"); err != nil {
		return "", err
	}

	markdown, err := a.Markdown(article, contentHTML)
	if err != nil {
		return "", err
	}
	if _, err := a.store.Upload(ctx, a.bucket, prefix+".md", []byte(markdown), "text/markdown; charset=utf-8"); err != nil {
		return "", err
	}
	return prefix, nil
}

// Markdown renders the archived document: a title heading, the source link
// and the converted content.
func (a *Archiver) Markdown(article models.ScrapedArticle, contentHTML string) (string, error) {
	body := article.Body
	if strings.TrimSpace(contentHTML) != "" {
		converted, err := a.converter.ConvertString(contentHTML)
		if err != nil {
			return "", fmt.Errorf("convert %s to markdown: %w", article.Link, err)
		}
		body = converted
	}

	var sb strings.Builder
	sb.WriteString("# " + article.Title + "\n\n")
	sb.WriteString("Source: " + article.Link + "\n")
	if !article.PublishedDate.IsZero() {
		sb.WriteString("Published: " + article.PublishedDate.Format("2006-01-02") + "\n")
	}
	sb.WriteString("\n" + strings.TrimSpace(body) + "\n")
	return sb.String(), nil
}
