// Package crawlers runs the registered portal adapters and wires their
// results into the job tracker, the archive and the message bus.
package crawlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/LexiconIndonesia/news-portal-crawler/common/config"
	"github.com/LexiconIndonesia/news-portal-crawler/common/crawler"
	"github.com/LexiconIndonesia/news-portal-crawler/common/fetch"
	"github.com/LexiconIndonesia/news-portal-crawler/common/logger"
	"github.com/LexiconIndonesia/news-portal-crawler/common/messaging"
	"github.com/LexiconIndonesia/news-portal-crawler/common/models"
	"github.com/LexiconIndonesia/news-portal-crawler/common/work"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

var ErrNoPublisher = errors.New("asynchronous crawls need a message broker")

// RunTracker records job state around a portal run. *work.WorkManager
// implements it.
type RunTracker interface {
	Queue(ctx context.Context, jobID, portal string) error
	Start(ctx context.Context, jobID, portal string) error
	IsCancelled(ctx context.Context, jobID string) bool
	Complete(ctx context.Context, jobID, portal string, result models.CrawlResult) (string, error)
}

type Service struct {
	cfg       config.Config
	articles  crawler.ArticleStore
	keywords  crawler.KeywordStore
	tracker   RunTracker
	logs      *logger.LogService
	publisher messaging.Publisher
	hooks     []crawler.SaveHook
	open      crawler.SessionOpener
	orchOpts  []crawler.Option
}

type ServiceOption func(*Service)

func WithLogService(logs *logger.LogService) ServiceOption {
	return func(s *Service) { s.logs = logs }
}

// WithPublisher enables Enqueue.
func WithPublisher(p messaging.Publisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

func WithSaveHooks(hooks ...crawler.SaveHook) ServiceOption {
	return func(s *Service) { s.hooks = append(s.hooks, hooks...) }
}

func WithSessionOpener(open crawler.SessionOpener) ServiceOption {
	return func(s *Service) { s.open = open }
}

// WithOrchestratorOptions is applied to every orchestrator the service builds.
func WithOrchestratorOptions(opts ...crawler.Option) ServiceOption {
	return func(s *Service) { s.orchOpts = append(s.orchOpts, opts...) }
}

func NewService(cfg config.Config, articles crawler.ArticleStore, keywords crawler.KeywordStore, tracker RunTracker, opts ...ServiceOption) *Service {
	s := &Service{
		cfg:      cfg,
		articles: articles,
		keywords: keywords,
		tracker:  tracker,
	}
	s.open = func(ctx context.Context, mode fetch.Mode) (fetch.Session, error) {
		return fetch.NewSession(ctx, mode, s.cfg.FetchConfig())
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolvePortals maps portal names or URLs to adapters. An empty list means
// every registered portal.
func (s *Service) ResolvePortals(refs []string) ([]crawler.PortalAdapter, error) {
	if len(refs) == 0 {
		refs = crawler.PortalNames()
	}

	adapters := make([]crawler.PortalAdapter, 0, len(refs))
	for _, ref := range refs {
		adapter, err := crawler.PortalForURL(ref)
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, adapter)
	}
	return lo.UniqBy(adapters, func(a crawler.PortalAdapter) string { return a.Name }), nil
}

// Request turns an API request into orchestrator parameters, filling gaps
// from the CRAWL_* configuration.
func (s *Service) Request(jobID string, req models.CrawlRequest) crawler.Request {
	c := s.cfg.Crawl
	r := crawler.Request{
		RunID:           jobID,
		MaxPages:        c.MaxPages,
		MaxInteractions: c.MaxInteractions,
		Keywords:        req.Keywords,
		DelayMs:         int(c.MinDelay / time.Millisecond),
		JitterMs:        int((c.MaxDelay - c.MinDelay) / time.Millisecond),
		TimeBudget:      c.TimeBudget,
	}
	if req.MaxPages > 0 {
		r.MaxPages = req.MaxPages
	}
	if req.MaxInteractions > 0 {
		r.MaxInteractions = req.MaxInteractions
	}
	if req.DelayMs > 0 {
		r.DelayMs = req.DelayMs
	}
	if req.JitterMs > 0 {
		r.JitterMs = req.JitterMs
	}
	if req.TimeBudgetSeconds > 0 {
		r.TimeBudget = time.Duration(req.TimeBudgetSeconds) * time.Second
	}
	return r
}

// RunPortal crawls one portal under jobID, generating the id when empty.
// Unknown portals fail before any job is recorded. A busy portal is
// recorded as a failed job and returned together with work.ErrPortalBusy.
func (s *Service) RunPortal(ctx context.Context, jobID, portalRef string, req models.CrawlRequest) (models.PortalRun, error) {
	adapter, err := crawler.PortalForURL(portalRef)
	if err != nil {
		return models.PortalRun{}, err
	}
	if jobID == "" {
		jobID = uuid.NewString()
	}
	ctx = logger.WithCrawlScope(ctx, adapter.Name, jobID)
	run := models.PortalRun{Portal: adapter.Name, JobID: jobID}

	if err := s.tracker.Start(ctx, jobID, adapter.Name); err != nil {
		run.Result = models.CrawlResult{Errors: []string{err.Error()}, Items: []models.ScrapedArticle{}}
		run.Status = work.StatusFailed
		if errors.Is(err, work.ErrPortalBusy) {
			if status, cerr := s.tracker.Complete(ctx, jobID, adapter.Name, run.Result); cerr == nil {
				run.Status = status
			}
		}
		return run, err
	}

	if s.logs != nil {
		_ = s.logs.CrawlStart(ctx, adapter.Name, jobID, req)
	}

	opts := append([]crawler.Option{
		crawler.WithSaveHooks(s.hooks...),
		crawler.WithCancelCheck(func(ctx context.Context) bool {
			return s.tracker.IsCancelled(ctx, jobID)
		}),
	}, s.orchOpts...)
	orch := crawler.NewOrchestrator(adapter, s.open, s.articles, s.keywords, opts...)
	run.Result = orch.Run(ctx, s.Request(jobID, req))

	// the outcome is recorded even when ctx was cancelled mid-run
	doneCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	run.Status, err = s.tracker.Complete(doneCtx, jobID, adapter.Name, run.Result)
	if err != nil {
		log.Warn().Ctx(doneCtx).Err(err).Str("portal", adapter.Name).Str("jobID", jobID).Msg("Failed to complete job")
	}
	if s.logs != nil {
		_ = s.logs.CrawlComplete(doneCtx, adapter.Name, jobID, run.Result)
	}
	return run, nil
}

// RunAll crawls the requested portals concurrently, each in its own run with
// its own session. Results follow the order of the resolved portals.
func (s *Service) RunAll(ctx context.Context, req models.CrawlRequest) ([]models.PortalRun, error) {
	adapters, err := s.ResolvePortals(req.Portals)
	if err != nil {
		return nil, err
	}

	tasks := lo.Map(adapters, func(a crawler.PortalAdapter, _ int) work.Executor[models.PortalRun] {
		return work.NewTask(func(ctx context.Context) (models.PortalRun, error) {
			return s.RunPortal(ctx, "", a.Name, req)
		}, work.WithID[models.PortalRun](a.Name))
	})

	results, err := work.RunAll(ctx, work.PoolConfig{Workers: max(s.cfg.Crawl.Workers, 1)}, "crawl-all", tasks)
	byPortal := make(map[string]models.PortalRun, len(results))
	for _, res := range results {
		run := res.Result
		if res.Error != nil {
			if run.Portal == "" {
				run.Portal = res.TaskID
				run.Status = work.StatusFailed
				run.Result.Items = []models.ScrapedArticle{}
			}
			if len(run.Result.Errors) == 0 {
				run.Result.Errors = []string{res.Error.Error()}
			}
		}
		byPortal[res.TaskID] = run
	}

	runs := make([]models.PortalRun, 0, len(adapters))
	for _, a := range adapters {
		if run, ok := byPortal[a.Name]; ok {
			runs = append(runs, run)
		}
	}
	return runs, err
}

// Enqueue records a queued job per portal and publishes a crawl.run message
// for each. Workers pick them up through the crawl.run consumer.
func (s *Service) Enqueue(ctx context.Context, req models.CrawlRequest) ([]models.QueuedRun, error) {
	if s.publisher == nil {
		return nil, ErrNoPublisher
	}
	adapters, err := s.ResolvePortals(req.Portals)
	if err != nil {
		return nil, err
	}

	queued := make([]models.QueuedRun, 0, len(adapters))
	for _, a := range adapters {
		jobID := uuid.NewString()
		if err := s.tracker.Queue(ctx, jobID, a.Name); err != nil {
			return queued, err
		}

		msg := messaging.CrawlRunMessage{JobID: jobID, Portal: a.Name, Request: req}
		msg.Request.Portals = nil
		data, err := json.Marshal(msg)
		if err != nil {
			err = fmt.Errorf("marshal crawl.run for %s: %w", a.Name, err)
			s.abandon(ctx, jobID, a.Name, err)
			return queued, err
		}
		if err := s.publisher.PublishSync(ctx, messaging.SubjectCrawlRun, data); err != nil {
			s.abandon(ctx, jobID, a.Name, err)
			return queued, err
		}
		queued = append(queued, models.QueuedRun{Portal: a.Name, JobID: jobID})
	}
	return queued, nil
}

// abandon fails a queued job whose crawl.run message never left, so it does
// not sit in queued forever.
func (s *Service) abandon(ctx context.Context, jobID, portal string, cause error) {
	doneCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	result := models.CrawlResult{Errors: []string{"enqueue: " + cause.Error()}, Items: []models.ScrapedArticle{}}
	if _, err := s.tracker.Complete(doneCtx, jobID, portal, result); err != nil {
		log.Warn().Ctx(logger.WithCrawlScope(doneCtx, portal, jobID)).Err(err).Str("portal", portal).Str("jobID", jobID).Msg("Failed to mark unpublished job as failed")
	}
}
