package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/LexiconIndonesia/news-portal-crawler/common/models"
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// StaticSession fetches server-rendered HTML.
type StaticSession struct {
	client *http.Client
	cfg    Config
}

func NewStaticSession(cfg Config) *StaticSession {
	return &StaticSession{
		client: &http.Client{Timeout: cfg.RequestTimeout},
		cfg:    cfg,
	}
}

// WithHTTPClient swaps the underlying client.
func (s *StaticSession) WithHTTPClient(c *http.Client) *StaticSession {
	s.client = c
	return s
}

func (s *StaticSession) Mode() Mode { return ModeStatic }

func (s *StaticSession) Close() error { return nil }

// Open downloads pageURL, retrying transient failures with a fresh user agent
// on every attempt.
func (s *StaticSession) Open(ctx context.Context, pageURL string) (Page, error) {
	var doc *goquery.Document
	err := s.cfg.Retry.Do(ctx, "fetch "+pageURL, func(attempt int) error {
		d, err := s.get(ctx, pageURL, s.cfg.userAgent(attempt))
		if err != nil {
			return err
		}
		doc = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &staticPage{url: pageURL, doc: doc}, nil
}

func (s *StaticSession) get(ctx context.Context, pageURL, userAgent string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", AcceptLanguage)
	if referer := originOf(pageURL); referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Debug().Str("url", pageURL).Int("status", resp.StatusCode).Msg("Non-OK response")
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: %w", ErrTransient, &StatusError{URL: pageURL, Code: resp.StatusCode})
		}
		return nil, &StatusError{URL: pageURL, Code: resp.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse html: %v", ErrTransient, err)
	}
	return doc, nil
}

func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host + "/"
}

type staticPage struct {
	url string
	doc *goquery.Document
}

func (p *staticPage) URL() string { return p.url }

func (p *staticPage) Extract(_ context.Context, set SelectorSet) ([]models.Candidate, error) {
	return ExtractCandidates(p.doc.Selection, set), nil
}

func (p *staticPage) Document(context.Context) (*goquery.Document, error) {
	return p.doc, nil
}

func (p *staticPage) Click(context.Context, string) error {
	return ErrInteractionUnsupported
}

func (p *staticPage) WaitForSelector(_ context.Context, selector string, _ time.Duration) error {
	if p.doc.Find(selector).Length() == 0 {
		return fmt.Errorf("%w: %s", ErrSelectorNotFound, selector)
	}
	return nil
}

func (p *staticPage) WaitIdle(context.Context, time.Duration) error { return nil }

func (p *staticPage) Close() error { return nil }

// ExtractCandidates applies set to root. Items without a title or link are skipped.
func ExtractCandidates(root *goquery.Selection, set SelectorSet) []models.Candidate {
	var out []models.Candidate
	root.Find(set.Item).Each(func(_ int, item *goquery.Selection) {
		title := readValue(pick(item, set.Title), set.TitleAttr)

		linkSel := pick(item, set.Link)
		href, ok := linkSel.Attr("href")
		if !ok {
			if a := linkSel.Closest("a"); a.Length() > 0 {
				href = a.AttrOr("href", "")
			} else {
				href = linkSel.Find("a").First().AttrOr("href", "")
			}
		}

		var rawDate string
		if set.Date != "" {
			rawDate = readValue(item.Find(set.Date).First(), set.DateAttr)
		}

		href = strings.TrimSpace(href)
		if title == "" || href == "" {
			return
		}
		out = append(out, models.Candidate{Title: title, Link: href, RawDate: rawDate})
	})
	return out
}

func pick(item *goquery.Selection, selector string) *goquery.Selection {
	if selector == "" {
		return item
	}
	return item.Find(selector).First()
}

func readValue(sel *goquery.Selection, attr string) string {
	if sel.Length() == 0 {
		return ""
	}
	if attr != "" {
		return collapse(sel.AttrOr(attr, ""))
	}
	return collapse(sel.Text())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
