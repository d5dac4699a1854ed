package crawlers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/LexiconIndonesia/news-portal-crawler/common/crawler"
	"github.com/LexiconIndonesia/news-portal-crawler/common/extractor"
	"github.com/LexiconIndonesia/news-portal-crawler/common/messaging"
	"github.com/LexiconIndonesia/news-portal-crawler/common/models"
	"github.com/LexiconIndonesia/news-portal-crawler/common/storage"
	"github.com/PuerkitoBio/goquery"
)

// ArchiveHook stores the fetched page and a markdown rendering of its body
// next to each saved article.
type ArchiveHook struct {
	archiver *storage.Archiver

	mu         sync.Mutex
	extractors map[string]*extractor.Extractor
}

func NewArchiveHook(archiver *storage.Archiver) *ArchiveHook {
	return &ArchiveHook{
		archiver:   archiver,
		extractors: make(map[string]*extractor.Extractor),
	}
}

func (h *ArchiveHook) AfterSave(ctx context.Context, article models.ScrapedArticle, doc *goquery.Document) error {
	if doc == nil {
		return nil
	}

	raw, err := doc.Html()
	if err != nil {
		return fmt.Errorf("render page %s: %w", article.Link, err)
	}

	var content string
	if sel := h.extractorFor(article.Portal).ContentSelection(doc); sel != nil {
		content, err = goquery.OuterHtml(sel)
		if err != nil {
			return fmt.Errorf("render content %s: %w", article.Link, err)
		}
	}

	_, err = h.archiver.Archive(ctx, article, raw, content)
	return err
}

func (h *ArchiveHook) extractorFor(portal string) *extractor.Extractor {
	h.mu.Lock()
	defer h.mu.Unlock()

	if e, ok := h.extractors[portal]; ok {
		return e
	}
	// unknown portals still get the default noise rules
	adapter, _ := crawler.GetPortal(portal)
	e := extractor.New(extractor.Rules{
		ContentSelectors: adapter.ContentSelectors,
		NoiseSelectors:   adapter.NoiseSelectors,
		NoisePhrases:     adapter.NoisePhrases,
	})
	h.extractors[portal] = e
	return e
}

// PublishHook announces saved articles on article.scraped.
type PublishHook struct {
	publisher messaging.Publisher
	archived  bool
}

// NewPublishHook builds the hook. archived sets the archive path on events
// when an ArchiveHook runs in the same chain.
func NewPublishHook(publisher messaging.Publisher, archived bool) *PublishHook {
	return &PublishHook{publisher: publisher, archived: archived}
}

func (h *PublishHook) AfterSave(ctx context.Context, article models.ScrapedArticle, _ *goquery.Document) error {
	event := messaging.NewArticleScrapedEvent(article)
	if h.archived {
		event.ArchivePath = storage.ObjectPrefix(article)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal article event: %w", err)
	}
	return h.publisher.PublishSync(ctx, messaging.SubjectArticleScraped, data)
}
