package crawlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/LexiconIndonesia/news-portal-crawler/common/crawler"
	"github.com/LexiconIndonesia/news-portal-crawler/common/logger"
	"github.com/LexiconIndonesia/news-portal-crawler/common/messaging"
	"github.com/LexiconIndonesia/news-portal-crawler/common/work"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// ackMargin keeps a crawl that uses its whole time budget from being
// redelivered while it is still saving.
const ackMargin = 2 * time.Minute

// StartCrawlConsumer consumes crawl.run messages and runs up to
// cfg.Crawl.Workers portals at once.
func (s *Service) StartCrawlConsumer(ctx context.Context, broker *messaging.NatsBroker) (jetstream.ConsumeContext, error) {
	ackWait := s.cfg.Crawl.TimeBudget + ackMargin
	return messaging.Consume(ctx, broker, messaging.SubjectCrawlRun, ackWait, s.cfg.Crawl.Workers, s.HandleCrawlRun)
}

// HandleCrawlRun runs the portal named in a crawl.run message. Messages that
// can never succeed are reported as malformed so they are not redelivered.
func (s *Service) HandleCrawlRun(ctx context.Context, msg jetstream.Msg) error {
	var m messaging.CrawlRunMessage
	if err := json.Unmarshal(msg.Data(), &m); err != nil {
		return fmt.Errorf("%w: %v", messaging.ErrMalformedMessage, err)
	}
	if m.JobID == "" || m.Portal == "" {
		return fmt.Errorf("%w: job id and portal are required", messaging.ErrMalformedMessage)
	}

	run, err := s.RunPortal(ctx, m.JobID, m.Portal, m.Request)
	switch {
	case errors.Is(err, crawler.ErrUnknownPortal):
		return fmt.Errorf("%w: %v", messaging.ErrMalformedMessage, err)
	case errors.Is(err, work.ErrPortalBusy):
		log.Warn().Ctx(logger.WithCrawlScope(ctx, m.Portal, m.JobID)).Str("portal", m.Portal).Str("jobID", m.JobID).Msg("Portal busy, job marked failed")
		return nil
	case err != nil:
		return err
	}

	log.Info().
		Str("portal", run.Portal).
		Str("jobID", run.JobID).
		Str("status", run.Status).
		Int("newItems", run.Result.NewItems).
		Msg("Crawl run handled")
	return nil
}
