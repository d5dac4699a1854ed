package messaging

import (
	"time"

	"github.com/LexiconIndonesia/news-portal-crawler/common/models"
)

// NATS subjects
const (
	SubjectCrawlRun       = "crawl.run"
	SubjectArticleScraped = "article.scraped"
)

// CrawlRunMessage asks a worker to crawl one portal under an already
// queued job.
type CrawlRunMessage struct {
	JobID   string              `json:"job_id"`
	Portal  string              `json:"portal"`
	Request models.CrawlRequest `json:"request"`
}

// ArticleScrapedEvent announces a newly saved article.
type ArticleScrapedEvent struct {
	ArticleID       string    `json:"article_id"`
	Portal          string    `json:"portal"`
	Link            string    `json:"link"`
	Title           string    `json:"title"`
	PublishedDate   time.Time `json:"published_date"`
	MatchedKeywords []string  `json:"matched_keywords"`
	ScrapedAt       time.Time `json:"scraped_at"`
	ArchivePath     string    `json:"archive_path,omitempty"`
}

func NewArticleScrapedEvent(article models.ScrapedArticle) ArticleScrapedEvent {
	return ArticleScrapedEvent{
		ArticleID:       article.ID,
		Portal:          article.Portal,
		Link:            article.Link,
		Title:           article.Title,
		PublishedDate:   article.PublishedDate,
		MatchedKeywords: article.MatchedKeywords,
		ScrapedAt:       article.ScrapedAt,
	}
}
