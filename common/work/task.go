package work

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type task[T any] struct {
	id      string
	run     func(ctx context.Context) (T, error)
	timeout time.Duration
}

// TaskOption configures a task.
type TaskOption[T any] func(*task[T])

// WithID replaces the generated task id, e.g. with a portal name.
func WithID[T any](id string) TaskOption[T] {
	return func(t *task[T]) { t.id = id }
}

// WithTimeout overrides the pool task timeout for this task.
func WithTimeout[T any](timeout time.Duration) TaskOption[T] {
	return func(t *task[T]) { t.timeout = timeout }
}

// NewTask wraps run as an Executor with a time-ordered UUID id.
func NewTask[T any](run func(ctx context.Context) (T, error), options ...TaskOption[T]) Executor[T] {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}

	t := &task[T]{id: id.String(), run: run}
	for _, opt := range options {
		opt(t)
	}
	return t
}

func (t *task[T]) ExecutorID() string {
	return t.id
}

func (t *task[T]) Execute(ctx context.Context) (T, error) {
	return t.run(ctx)
}

func (t *task[T]) Timeout() time.Duration {
	return t.timeout
}
