package work

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/LexiconIndonesia/news-portal-crawler/common/models"
	"github.com/LexiconIndonesia/news-portal-crawler/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	portalLockPrefix   = "work:portal:"
	workStateKeyPrefix = "work:state:"

	runningState   = "running"
	cancelledState = "cancelled"

	// workTimeout bounds how long a lock survives a process that died mid-run.
	workTimeout = 6 * time.Hour
)

// Job statuses stored in the jobs table.
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusFinished  = "finished"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

var (
	ErrPortalBusy     = errors.New("portal crawl already running")
	ErrWorkNotRunning = errors.New("work is not running")
)

// StateStore is the subset of the Redis client the manager needs.
type StateStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// JobStore persists job rows.
type JobStore interface {
	CreateJob(ctx context.Context, arg repository.CreateJobParams) (repository.Job, error)
	UpdateJobStatus(ctx context.Context, arg repository.UpdateJobStatusParams) (repository.Job, error)
	UpdateJobResult(ctx context.Context, arg repository.UpdateJobResultParams) error
}

// RunningWork is a portal lock currently held by a job.
type RunningWork struct {
	Portal string `json:"portal"`
	JobID  string `json:"job_id"`
}

// WorkManager serializes runs per portal through Redis and mirrors job state
// into the database.
type WorkManager struct {
	state StateStore
	jobs  JobStore
}

// NewWorkManager creates a WorkManager. jobs may be nil, in which case job
// state only lives in Redis.
func NewWorkManager(state StateStore, jobs JobStore) *WorkManager {
	return &WorkManager{state: state, jobs: jobs}
}

func portalKey(portal string) string {
	return portalLockPrefix + portal
}

func stateKey(jobID string) string {
	return workStateKeyPrefix + jobID
}

// Queue records a job that was accepted but has not started yet.
func (wm *WorkManager) Queue(ctx context.Context, jobID, portal string) error {
	if wm.jobs == nil {
		return nil
	}
	if _, err := wm.jobs.CreateJob(ctx, repository.CreateJobParams{ID: jobID, Portal: portal, Status: StatusQueued}); err != nil {
		return fmt.Errorf("create job %s: %w", jobID, err)
	}
	return nil
}

// Start takes the portal lock for jobID. It fails with ErrPortalBusy when
// another job holds it.
func (wm *WorkManager) Start(ctx context.Context, jobID, portal string) error {
	ok, err := wm.state.SetNX(ctx, portalKey(portal), jobID, workTimeout)
	if err != nil {
		return fmt.Errorf("failed to lock portal %s: %w", portal, err)
	}
	if !ok {
		holder, _ := wm.state.Get(ctx, portalKey(portal))
		return fmt.Errorf("%w: %s is held by job %s", ErrPortalBusy, portal, holder)
	}

	if err := wm.state.Set(ctx, stateKey(jobID), runningState, workTimeout); err != nil {
		_ = wm.state.Delete(ctx, portalKey(portal))
		return fmt.Errorf("failed to start work %s: %w", jobID, err)
	}

	if err := wm.persistStatus(ctx, jobID, portal, StatusRunning); err != nil {
		log.Warn().Err(err).Str("jobID", jobID).Msg("failed to persist job status to DB")
	}
	return nil
}

// IsRunning reports whether jobID is running and was not cancelled.
func (wm *WorkManager) IsRunning(ctx context.Context, jobID string) (bool, error) {
	state, err := wm.state.Get(ctx, stateKey(jobID))
	if err != nil {
		if errors.Is(err, redisv9.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get work state for %s: %w", jobID, err)
	}
	return state == runningState, nil
}

// IsCancelled is polled by the orchestrator at every pagination step. Redis
// errors read as not cancelled so a flaky cache never aborts a run.
func (wm *WorkManager) IsCancelled(ctx context.Context, jobID string) bool {
	state, err := wm.state.Get(ctx, stateKey(jobID))
	if err != nil {
		if !errors.Is(err, redisv9.Nil) {
			log.Warn().Err(err).Str("jobID", jobID).Msg("failed to read work state")
		}
		return false
	}
	return state == cancelledState
}

// Cancel flags a running job. The run stops at its next safe point and
// Complete records the cancellation.
func (wm *WorkManager) Cancel(ctx context.Context, jobID string) error {
	running, err := wm.IsRunning(ctx, jobID)
	if err != nil {
		return err
	}
	if !running {
		return fmt.Errorf("%w: %s", ErrWorkNotRunning, jobID)
	}
	if err := wm.state.Set(ctx, stateKey(jobID), cancelledState, workTimeout); err != nil {
		return fmt.Errorf("failed to cancel work %s: %w", jobID, err)
	}
	return nil
}

// Complete releases the portal lock and stores the run outcome.
func (wm *WorkManager) Complete(ctx context.Context, jobID, portal string, result models.CrawlResult) (string, error) {
	status := StatusFailed
	switch {
	case wm.IsCancelled(ctx, jobID):
		status = StatusCancelled
	case result.Success:
		status = StatusFinished
	}

	if holder, err := wm.state.Get(ctx, portalKey(portal)); err == nil && holder == jobID {
		if err := wm.state.Delete(ctx, portalKey(portal)); err != nil {
			return status, fmt.Errorf("failed to unlock portal %s: %w", portal, err)
		}
	}
	if err := wm.state.Delete(ctx, stateKey(jobID)); err != nil {
		return status, fmt.Errorf("failed to remove work %s: %w", jobID, err)
	}

	if wm.jobs == nil {
		return status, nil
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return status, fmt.Errorf("marshal result of %s: %w", jobID, err)
	}
	var errText pgtype.Text
	if status == StatusFailed && len(result.Errors) > 0 {
		errText = pgtype.Text{String: strings.Join(result.Errors, "; "), Valid: true}
	}
	if err := wm.jobs.UpdateJobResult(ctx, repository.UpdateJobResultParams{
		ID:     jobID,
		Status: status,
		Result: payload,
		Error:  errText,
	}); err != nil {
		log.Warn().Err(err).Str("jobID", jobID).Msg("failed to persist job result to DB")
	}
	return status, nil
}

// ListRunningWorks returns the portal locks currently held.
func (wm *WorkManager) ListRunningWorks(ctx context.Context) ([]RunningWork, error) {
	keys, err := wm.state.Keys(ctx, portalLockPrefix+"*")
	if err != nil {
		return nil, fmt.Errorf("failed to scan for running works in Redis: %w", err)
	}

	works := make([]RunningWork, 0, len(keys))
	for _, key := range keys {
		jobID, err := wm.state.Get(ctx, key)
		if err != nil {
			continue
		}
		works = append(works, RunningWork{Portal: strings.TrimPrefix(key, portalLockPrefix), JobID: jobID})
	}
	return works, nil
}

// persistStatus updates the job row, creating it when it does not exist.
func (wm *WorkManager) persistStatus(ctx context.Context, jobID, portal, status string) error {
	if wm.jobs == nil {
		return nil
	}

	if _, err := wm.jobs.UpdateJobStatus(ctx, repository.UpdateJobStatusParams{ID: jobID, Status: status}); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("update job status: %w", err)
		}
		if _, err := wm.jobs.CreateJob(ctx, repository.CreateJobParams{ID: jobID, Portal: portal, Status: status}); err != nil {
			return fmt.Errorf("create job row: %w", err)
		}
	}
	return nil
}
