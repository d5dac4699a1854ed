package logger

import (
	"context"
	"encoding/json"
	"maps"
	"time"

	"github.com/LexiconIndonesia/news-portal-crawler/common/db"
	"github.com/LexiconIndonesia/news-portal-crawler/common/models"
	"github.com/LexiconIndonesia/news-portal-crawler/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogWriter persists crawl log rows.
type LogWriter interface {
	CreateCrawlLog(ctx context.Context, arg repository.CreateCrawlLogParams) error
	GetCrawlLogsByJob(ctx context.Context, arg repository.GetCrawlLogsByJobParams) ([]repository.CrawlLog, error)
}

// LogEvent is one crawl_logs row before it is encoded.
type LogEvent struct {
	Portal    string
	JobID     string
	EventType string
	Message   string
	Details   any
}

func (e LogEvent) params(now time.Time) repository.CreateCrawlLogParams {
	detailsJSON := json.RawMessage("{}")
	if e.Details != nil {
		if b, err := json.Marshal(e.Details); err == nil {
			detailsJSON = b
		} else {
			log.Error().Err(err).Msg("Failed to marshal log details")
		}
	}

	return repository.CreateCrawlLogParams{
		ID:        uuid.New().String(),
		Portal:    e.Portal,
		JobID:     pgtype.Text{String: e.JobID, Valid: e.JobID != ""},
		EventType: e.EventType,
		Message:   pgtype.Text{String: e.Message, Valid: e.Message != ""},
		Details:   detailsJSON,
		CreatedAt: now,
	}
}

type crawlScopeKey struct{}

// CrawlScope identifies the portal run a log event belongs to.
type CrawlScope struct {
	Portal string
	JobID  string
}

// WithCrawlScope tags ctx with the portal and job of a run. Loggers built with
// .Ctx(ctx) carry the scope to CrawlLogHook.
func WithCrawlScope(ctx context.Context, portal, jobID string) context.Context {
	return context.WithValue(ctx, crawlScopeKey{}, CrawlScope{Portal: portal, JobID: jobID})
}

func CrawlScopeFrom(ctx context.Context) (CrawlScope, bool) {
	if ctx == nil {
		return CrawlScope{}, false
	}
	scope, ok := ctx.Value(crawlScopeKey{}).(CrawlScope)
	return scope, ok
}

// CrawlLogHook copies warnings and errors from the global logger into
// crawl_logs. Portal and job come from the CrawlScope of the event context
// since zerolog hooks cannot read event fields.
type CrawlLogHook struct {
	writer   LogWriter
	minLevel zerolog.Level
}

func NewCrawlLogHook(writer LogWriter, minLevel zerolog.Level) *CrawlLogHook {
	return &CrawlLogHook{writer: writer, minLevel: minLevel}
}

func (h *CrawlLogHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	if level < h.minLevel || level == zerolog.NoLevel {
		return
	}

	scope, _ := CrawlScopeFrom(e.GetCtx())
	event := LogEvent{
		Portal:    scope.Portal,
		JobID:     scope.JobID,
		EventType: level.String(),
		Message:   msg,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.writer.CreateCrawlLog(ctx, event.params(time.Now())); err != nil {
			// bypass the hooked global logger to avoid recursion
			fallback := zerolog.New(zerolog.NewConsoleWriter())
			fallback.Error().Err(err).Msg("Failed to persist log via hook")
		}
	}()
}

// InitializeLogging attaches the crawl log hook to the global logger.
func InitializeLogging(database *db.DB) {
	log.Logger = log.Logger.Hook(NewCrawlLogHook(database.Queries, zerolog.WarnLevel))
}

// LogService records crawl lifecycle events for a portal run.
type LogService struct {
	writer LogWriter
	now    func() time.Time
}

func NewLogService(writer LogWriter) *LogService {
	return &LogService{writer: writer, now: time.Now}
}

func (s *LogService) Log(ctx context.Context, event LogEvent) error {
	if err := s.writer.CreateCrawlLog(ctx, event.params(s.now())); err != nil {
		log.Error().Err(err).Str("portal", event.Portal).Msg("Failed to insert crawl log")
		return err
	}

	log.Info().
		Str("portal", event.Portal).
		Str("job_id", event.JobID).
		Str("event_type", event.EventType).
		Interface("details", event.Details).
		Msg(event.Message)
	return nil
}

func (s *LogService) Error(ctx context.Context, portal, jobID, message string, err error, details map[string]any) error {
	detailMap := map[string]any{"error": err.Error()}
	maps.Copy(detailMap, details)

	return s.Log(ctx, LogEvent{
		Portal:    portal,
		JobID:     jobID,
		EventType: "error",
		Message:   message,
		Details:   detailMap,
	})
}

func (s *LogService) CrawlStart(ctx context.Context, portal, jobID string, details any) error {
	return s.Log(ctx, LogEvent{
		Portal:    portal,
		JobID:     jobID,
		EventType: "crawl.started",
		Message:   "Crawl started",
		Details:   details,
	})
}

func (s *LogService) CrawlComplete(ctx context.Context, portal, jobID string, result models.CrawlResult) error {
	eventType := "crawl.completed"
	if !result.Success {
		eventType = "crawl.failed"
	}
	return s.Log(ctx, LogEvent{
		Portal:    portal,
		JobID:     jobID,
		EventType: eventType,
		Message:   "Crawl finished",
		Details: map[string]any{
			"total_scraped": result.TotalScraped,
			"new_items":     result.NewItems,
			"duplicates":    result.Duplicates,
			"errors":        len(result.Errors),
			"duration_ms":   result.DurationMs,
		},
	})
}

func (s *LogService) JobLogs(ctx context.Context, jobID string, limit, offset int32) ([]repository.CrawlLog, error) {
	return s.writer.GetCrawlLogsByJob(ctx, repository.GetCrawlLogsByJobParams{
		JobID:  pgtype.Text{String: jobID, Valid: true},
		Limit:  limit,
		Offset: offset,
	})
}
