package work

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidQueueSize   = errors.New("invalid queue size")
	ErrPoolClosed         = errors.New("worker pool has been closed")
	ErrTaskTimeout        = errors.New("task execution timeout")
	ErrTaskPanicked       = errors.New("task panicked")
)

// Executor is a unit of work run by a Pool.
type Executor[T any] interface {
	ExecutorID() string
	Execute(ctx context.Context) (T, error)
	// Timeout overrides the pool default when positive.
	Timeout() time.Duration
}

// TaskResult is the outcome of one executed task.
type TaskResult[T any] struct {
	TaskID   string
	Result   T
	Error    error
	Duration time.Duration
}

func (tr TaskResult[T]) IsSuccess() bool {
	return tr.Error == nil
}

type PoolConfig struct {
	Workers   int
	QueueSize int
	// TaskTimeout applies to tasks without their own timeout. Zero means none.
	TaskTimeout time.Duration
}

// PoolStats is a snapshot of pool counters.
type PoolStats struct {
	Submitted int64
	Completed int64
	Failed    int64
	InQueue   int
}

// Pool runs tasks on a fixed number of goroutines. Results must be drained
// by the caller until the channel is closed by Close.
type Pool[T any] struct {
	cfg     PoolConfig
	tasks   chan Executor[T]
	results chan TaskResult[T]
	wg      sync.WaitGroup

	mu        sync.RWMutex
	started   bool
	closed    bool
	closeOnce sync.Once

	submitted atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

func NewPool[T any](cfg PoolConfig) (*Pool[T], error) {
	if cfg.Workers <= 0 {
		return nil, ErrInvalidWorkerCount
	}
	if cfg.QueueSize < 0 {
		return nil, ErrInvalidQueueSize
	}
	return &Pool[T]{
		cfg:     cfg,
		tasks:   make(chan Executor[T], cfg.QueueSize),
		results: make(chan TaskResult[T], cfg.Workers),
	}, nil
}

// Start launches the workers. Calling it twice is a no-op.
func (p *Pool[T]) Start(ctx context.Context, poolID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true

	for i := 0; i < p.cfg.Workers; i++ {
		p.wg.Add(1)
		go func(workerID int) {
			defer p.wg.Done()
			for t := range p.tasks {
				p.results <- p.execute(ctx, t, poolID, workerID)
			}
		}(i)
	}

	log.Debug().Str("workerPoolID", poolID).Int("workers", p.cfg.Workers).Msg("Worker pool started")
}

// Submit queues a task, blocking while the queue is full.
func (p *Pool[T]) Submit(ctx context.Context, t Executor[T]) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- t:
		p.submitted.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting tasks, waits for queued ones and closes Results.
func (p *Pool[T]) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.tasks)
		p.mu.Unlock()

		p.wg.Wait()
		close(p.results)
	})
}

func (p *Pool[T]) Results() <-chan TaskResult[T] {
	return p.results
}

func (p *Pool[T]) Stats() PoolStats {
	return PoolStats{
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
		InQueue:   len(p.tasks),
	}
}

func (p *Pool[T]) execute(ctx context.Context, t Executor[T], poolID string, workerID int) (res TaskResult[T]) {
	res.TaskID = t.ExecutorID()
	start := time.Now()

	timeout := p.cfg.TaskTimeout
	if tt := t.Timeout(); tt > 0 {
		timeout = tt
	}
	taskCtx, cancel := ctx, context.CancelFunc(func() {})
	if timeout > 0 {
		taskCtx, cancel = context.WithTimeout(ctx, timeout)
	}

	defer func() {
		cancel()
		if r := recover(); r != nil {
			res.Error = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
		res.Duration = time.Since(start)
		p.completed.Add(1)
		if res.Error != nil {
			p.failed.Add(1)
		}

		log.Debug().
			Str("workerPoolID", poolID).
			Int("workerID", workerID).
			Str("taskID", res.TaskID).
			Dur("duration", res.Duration).
			Bool("success", res.Error == nil).
			Msg("Task completed")
	}()

	if err := ctx.Err(); err != nil {
		res.Error = err
		return res
	}

	res.Result, res.Error = t.Execute(taskCtx)
	if res.Error != nil && errors.Is(taskCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		res.Error = fmt.Errorf("%w: %v", ErrTaskTimeout, res.Error)
	}
	return res
}

// RunAll executes every task on a fresh pool and returns the results in
// completion order.
func RunAll[T any](ctx context.Context, cfg PoolConfig, poolID string, tasks []Executor[T]) ([]TaskResult[T], error) {
	if cfg.QueueSize < len(tasks) {
		cfg.QueueSize = len(tasks)
	}
	pool, err := NewPool[T](cfg)
	if err != nil {
		return nil, err
	}
	pool.Start(ctx, poolID)

	var submitErr error
	go func() {
		defer pool.Close()
		for _, t := range tasks {
			if err := pool.Submit(ctx, t); err != nil {
				submitErr = err
				return
			}
		}
	}()

	results := make([]TaskResult[T], 0, len(tasks))
	for res := range pool.Results() {
		results = append(results, res)
	}
	return results, submitErr
}
