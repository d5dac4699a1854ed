package crawler

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/LexiconIndonesia/news-portal-crawler/common/datenorm"
	"github.com/LexiconIndonesia/news-portal-crawler/common/dedup"
	"github.com/LexiconIndonesia/news-portal-crawler/common/extractor"
	"github.com/LexiconIndonesia/news-portal-crawler/common/fetch"
	"github.com/LexiconIndonesia/news-portal-crawler/common/keyword"
	"github.com/LexiconIndonesia/news-portal-crawler/common/models"
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const (
	// maxConsecutivePageFailures aborts a page-param run.
	maxConsecutivePageFailures = 2

	defaultIdleTimeout     = 10 * time.Second
	defaultSelectorTimeout = 15 * time.Second
)

// Request parameterizes one run.
type Request struct {
	RunID string

	// MaxPages bounds page-param runs, MaxInteractions bounds clicks in the
	// click strategies.
	MaxPages        int
	MaxInteractions int

	// Keywords overrides the store's active keywords when not empty.
	Keywords []string

	DelayMs  int
	JitterMs int

	// TimeBudget is checked before every pagination step. Zero disables it.
	TimeBudget time.Duration
}

// Orchestrator runs the crawl loop for one portal.
type Orchestrator struct {
	adapter    PortalAdapter
	open       SessionOpener
	articles   ArticleStore
	keywords   KeywordStore
	hooks      []SaveHook
	normalizer *datenorm.Normalizer
	extractor  *extractor.Extractor
	cancelled  CancelCheck
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error

	idleTimeout     time.Duration
	selectorTimeout time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithSleeper replaces the inter-request wait.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(o *Orchestrator) { o.sleep = sleep }
}

func WithSaveHooks(hooks ...SaveHook) Option {
	return func(o *Orchestrator) { o.hooks = append(o.hooks, hooks...) }
}

func WithCancelCheck(check CancelCheck) Option {
	return func(o *Orchestrator) { o.cancelled = check }
}

func WithNormalizer(n *datenorm.Normalizer) Option {
	return func(o *Orchestrator) { o.normalizer = n }
}

// WithWaitTimeouts overrides how long click strategies wait after a click.
func WithWaitTimeouts(idle, selector time.Duration) Option {
	return func(o *Orchestrator) {
		o.idleTimeout = idle
		o.selectorTimeout = selector
	}
}

func NewOrchestrator(adapter PortalAdapter, open SessionOpener, articles ArticleStore, keywords KeywordStore, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		adapter:  adapter,
		open:     open,
		articles: articles,
		keywords: keywords,
		extractor: extractor.New(extractor.Rules{
			ContentSelectors: adapter.ContentSelectors,
			NoiseSelectors:   adapter.NoiseSelectors,
			NoisePhrases:     adapter.NoisePhrases,
		}),
		now:             time.Now,
		sleep:           sleepContext,
		idleTimeout:     defaultIdleTimeout,
		selectorTimeout: defaultSelectorTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.normalizer == nil {
		o.normalizer = datenorm.New(datenorm.WithClock(o.now))
	}
	return o
}

// Run crawls the portal and returns what it accumulated. It never returns an
// error: failures are reported in the result.
func (o *Orchestrator) Run(ctx context.Context, req Request) models.CrawlResult {
	result := models.CrawlResult{Errors: []string{}, Items: []models.ScrapedArticle{}}
	logger := log.With().Ctx(ctx).Str("portal", o.adapter.Name).Str("runID", req.RunID).Logger()

	if err := o.adapter.Validate(); err != nil {
		result.Errors = append(result.Errors, err.Error())
		logger.Error().Err(err).Msg("Invalid portal adapter")
		return result
	}

	active, err := o.activeKeywords(ctx, req.Keywords)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		logger.Error().Err(err).Msg("Cannot start crawl")
		return result
	}

	session, err := o.open(ctx, o.adapter.Mode)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("open %s session: %v", o.adapter.Mode, err))
		logger.Error().Err(err).Msg("Failed to open fetch session")
		return result
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close fetch session")
		}
	}()

	r := &run{
		Orchestrator: o,
		req:          req,
		result:       &result,
		session:      session,
		gate:         dedup.NewGate(o.articles, dedup.NewProcessedSet()),
		keywords:     active,
		listingSeen:  make(map[string]struct{}),
		started:      o.now(),
		logger:       logger,
	}

	logger.Info().
		Str("pagination", string(o.adapter.Pagination)).
		Int("keywords", len(active)).
		Msg("Crawl started")

	switch o.adapter.Pagination {
	case PaginationPageParam:
		r.paginateByPage(ctx)
	default:
		r.paginateByClick(ctx)
	}

	result.Success = len(result.Errors) == 0 || result.NewItems > 0
	result.DurationMs = o.now().Sub(r.started).Milliseconds()

	logger.Info().
		Bool("success", result.Success).
		Int("totalScraped", result.TotalScraped).
		Int("newItems", result.NewItems).
		Int("duplicates", result.Duplicates).
		Int("errors", len(result.Errors)).
		Int64("durationMs", result.DurationMs).
		Msg("Crawl finished")

	return result
}

func (o *Orchestrator) activeKeywords(ctx context.Context, explicit []string) ([]models.Keyword, error) {
	if kws := keyword.FromTexts(explicit); len(kws) > 0 {
		return kws, nil
	}
	if o.keywords == nil {
		return nil, ErrNoActiveKeywords
	}

	kws, err := o.keywords.GetActiveKeywords(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active keywords: %w", err)
	}
	active := lo.Filter(kws, func(k models.Keyword, _ int) bool {
		return k.IsActive && k.Text != ""
	})
	if len(active) == 0 {
		return nil, ErrNoActiveKeywords
	}
	return active, nil
}

// run is the mutable state of one Run call. It is owned by a single goroutine.
type run struct {
	*Orchestrator
	req         Request
	result      *models.CrawlResult
	session     fetch.Session
	gate        *dedup.Gate
	keywords    []models.Keyword
	listingSeen map[string]struct{}
	started     time.Time
	logger      zerolog.Logger
}

func (r *run) fail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.result.Errors = append(r.result.Errors, msg)
	r.logger.Warn().Msg(msg)
}

// shouldStop is checked at every pagination safe point.
func (r *run) shouldStop(ctx context.Context) bool {
	if err := ctx.Err(); err != nil {
		r.logger.Info().Err(err).Msg("Crawl context done, stopping")
		return true
	}
	if r.cancelled != nil && r.cancelled(ctx) {
		r.logger.Info().Msg("Crawl cancelled, stopping")
		return true
	}
	if r.req.TimeBudget > 0 {
		if elapsed := r.now().Sub(r.started); elapsed >= r.req.TimeBudget {
			r.logger.Info().Dur("elapsed", elapsed).Dur("budget", r.req.TimeBudget).Msg("Time budget exhausted, stopping")
			return true
		}
	}
	return false
}

func (r *run) delay(ctx context.Context) {
	ms := r.req.DelayMs
	if r.req.JitterMs > 0 {
		ms += rand.Intn(r.req.JitterMs + 1)
	}
	if ms <= 0 {
		return
	}
	_ = r.sleep(ctx, time.Duration(ms)*time.Millisecond)
}

func (r *run) paginateByPage(ctx context.Context) {
	maxPages := max(r.req.MaxPages, 1)
	failures := 0

	for i := 0; i < maxPages; i++ {
		if i > 0 {
			if r.shouldStop(ctx) {
				return
			}
			r.delay(ctx)
		} else if ctx.Err() != nil {
			return
		}

		pageNo := r.adapter.StartPage() + i
		pageURL := r.adapter.PageURL(pageNo)

		candidates, err := r.fetchListing(ctx, pageURL)
		if err != nil {
			r.fail("listing page %d (%s): %v", pageNo, pageURL, err)
			failures++
			if i == 0 || fetch.IsBlocked(err) || failures >= maxConsecutivePageFailures || ctx.Err() != nil {
				return
			}
			continue
		}
		failures = 0

		if len(candidates) == 0 {
			r.logger.Info().Int("page", pageNo).Msg("Listing page has no new candidates, stopping")
			return
		}
		r.processCandidates(ctx, candidates)
	}
}

func (r *run) fetchListing(ctx context.Context, pageURL string) ([]models.Candidate, error) {
	page, err := r.session.Open(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	return r.extractCandidates(ctx, page)
}

func (r *run) paginateByClick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	page, err := r.session.Open(ctx, r.adapter.ListingURL)
	if err != nil {
		r.fail("listing %s: %v", r.adapter.ListingURL, err)
		return
	}
	defer page.Close()

	maxInteractions := max(r.req.MaxInteractions, 0)
	interactions := 0

	for {
		candidates, err := r.extractCandidates(ctx, page)
		if err != nil {
			r.fail("listing %s after %d interactions: %v", r.adapter.ListingURL, interactions, err)
			return
		}
		if len(candidates) == 0 {
			r.logger.Info().Int("interactions", interactions).Msg("No new candidates after interaction, stopping")
			return
		}
		r.processCandidates(ctx, candidates)

		if interactions >= maxInteractions || r.shouldStop(ctx) {
			return
		}
		r.delay(ctx)

		if err := page.Click(ctx, r.adapter.NextSelector); err != nil {
			if errors.Is(err, fetch.ErrSelectorNotFound) {
				r.logger.Info().Str("selector", r.adapter.NextSelector).Msg("Pagination control gone, stopping")
			} else {
				r.fail("click %s: %v", r.adapter.NextSelector, err)
			}
			return
		}
		interactions++

		if err := page.WaitIdle(ctx, r.idleTimeout); err != nil {
			r.logger.Debug().Err(err).Msg("Network did not settle after click")
		}
		if r.adapter.WaitSelector != "" {
			if err := page.WaitForSelector(ctx, r.adapter.WaitSelector, r.selectorTimeout); err != nil {
				r.logger.Info().Err(err).Msg("Listing did not reappear after click, stopping")
				return
			}
		}
	}
}

// extractCandidates tries the listing selector sets in order and returns the
// resolved, non-promotional candidates not yet seen on any listing of this run.
func (r *run) extractCandidates(ctx context.Context, page fetch.Page) ([]models.Candidate, error) {
	var raw []models.Candidate
	var lastErr error
	for i, set := range r.adapter.ListingSelectors() {
		found, err := page.Extract(ctx, set)
		if err != nil {
			lastErr = err
			continue
		}
		if len(found) > 0 {
			if i > 0 {
				r.logger.Warn().Int("fallback", i).Msg("Primary listing selectors matched nothing, using fallback")
			}
			raw = found
			break
		}
	}
	if raw == nil && lastErr != nil {
		return nil, fmt.Errorf("extract candidates: %w", lastErr)
	}

	var out []models.Candidate
	for _, c := range raw {
		c.Link = r.adapter.ResolveURL(c.Link)
		if c.Link == "" || r.adapter.IsPromotional(c) {
			continue
		}
		key := dedup.NormalizeURL(c.Link)
		if _, seen := r.listingSeen[key]; seen {
			continue
		}
		r.listingSeen[key] = struct{}{}
		out = append(out, c)
	}

	r.result.TotalScraped += len(out)
	return out, nil
}

func (r *run) processCandidates(ctx context.Context, candidates []models.Candidate) {
	for _, c := range candidates {
		if ctx.Err() != nil {
			return
		}
		r.processCandidate(ctx, c)
	}
}

func (r *run) processCandidate(ctx context.Context, c models.Candidate) {
	matched := keyword.Match(c.Title, r.keywords)
	if len(matched) == 0 {
		return
	}

	dup, err := r.gate.IsDuplicate(ctx, c.Title, c.Link)
	if err != nil {
		r.fail("dedup %s: %v", c.Link, err)
		return
	}
	if dup {
		r.result.Duplicates++
		r.logger.Debug().Str("link", c.Link).Msg("Skipping known article")
		return
	}

	r.delay(ctx)

	article, doc, err := r.scrapeArticle(ctx, c, matched)
	if err != nil {
		r.fail("article %s: %v", c.Link, err)
		return
	}

	id, err := r.articles.SaveArticle(ctx, article)
	if errors.Is(err, ErrDuplicateArticle) {
		r.result.Duplicates++
		r.gate.MarkSaved(c.Title, c.Link)
		return
	}
	if err != nil {
		r.fail("save %s: %v", c.Link, err)
		return
	}
	article.ID = id

	r.gate.MarkSaved(c.Title, c.Link)
	r.result.NewItems++
	r.result.Items = append(r.result.Items, article)

	for _, k := range matched {
		if k.ID == "" {
			continue
		}
		if err := r.Orchestrator.keywords.IncrementMatchCount(ctx, k.ID); err != nil {
			r.logger.Warn().Err(err).Str("keyword", k.Text).Msg("Failed to increment keyword match count")
		}
	}

	for _, hook := range r.hooks {
		if err := hook.AfterSave(ctx, article, doc); err != nil {
			r.logger.Warn().Err(err).Str("articleID", id).Msg("Post-save hook failed")
		}
	}

	r.logger.Info().Str("articleID", id).Str("link", c.Link).Strs("keywords", article.MatchedKeywords).Msg("Article saved")
}

func (r *run) scrapeArticle(ctx context.Context, c models.Candidate, matched []models.Keyword) (models.ScrapedArticle, *goquery.Document, error) {
	page, err := r.session.Open(ctx, c.Link)
	if err != nil {
		return models.ScrapedArticle{}, nil, fmt.Errorf("fetch: %w", err)
	}
	defer page.Close()

	doc, err := page.Document(ctx)
	if err != nil {
		return models.ScrapedArticle{}, nil, fmt.Errorf("read document: %w", err)
	}

	rawDate := c.RawDate
	if rawDate == "" {
		rawDate = r.adapter.ArticleDate(doc)
	}

	return models.ScrapedArticle{
		Portal:          r.adapter.Name,
		Link:            c.Link,
		Title:           c.Title,
		Body:            r.extractor.Extract(doc, c.Title),
		PublishedDate:   r.normalizer.Normalize(rawDate),
		MatchedKeywords: keyword.Texts(matched),
		ScrapedAt:       r.now(),
	}, doc, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
