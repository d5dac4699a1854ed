package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// RetryPolicy retries transient failures with exponential backoff.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	RetryableStatus []int
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		InitialInterval: time.Second,
		MaxInterval:     8 * time.Second,
		RetryableStatus: []int{
			http.StatusForbidden,
			http.StatusTooManyRequests,
			http.StatusServiceUnavailable,
		},
	}
}

// IsRetryable reports whether another attempt may succeed.
func (p RetryPolicy) IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTransient) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return slices.Contains(p.RetryableStatus, se.Code)
	}
	return false
}

// Do runs op until it succeeds, returns a non-retryable error, or the attempts
// run out. op receives the zero-based attempt number.
func (p RetryPolicy) Do(ctx context.Context, name string, op func(attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		b.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		b.MaxInterval = p.MaxInterval
	}
	b.MaxElapsedTime = 0

	bo := backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)

	attempt := 0
	var lastErr error
	err := backoff.Retry(func() error {
		current := attempt
		attempt++

		err := op(current)
		if err == nil {
			return nil
		}
		lastErr = err
		if !p.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		log.Debug().Err(err).Str("operation", name).Int("attempt", current+1).Msg("Retrying after transient failure")
		return err
	}, bo)
	if err == nil {
		return nil
	}

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	if !p.IsRetryable(err) && ctx.Err() == nil {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", name, ctxErr)
	}
	if lastErr != nil {
		return fmt.Errorf("%s failed after %d attempts: %w", name, attempt, lastErr)
	}
	return err
}
