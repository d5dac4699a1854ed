package work

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewPool(t *testing.T) {
	tests := []struct {
		name        string
		cfg         PoolConfig
		expectError error
	}{
		{"valid pool", PoolConfig{Workers: 3, QueueSize: 10}, nil},
		{"zero workers", PoolConfig{Workers: 0, QueueSize: 10}, ErrInvalidWorkerCount},
		{"negative queue", PoolConfig{Workers: 2, QueueSize: -1}, ErrInvalidQueueSize},
		{"unbuffered queue", PoolConfig{Workers: 2}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool, err := NewPool[string](tt.cfg)
			if !errors.Is(err, tt.expectError) {
				t.Fatalf("expected error %v, got %v", tt.expectError, err)
			}
			if tt.expectError == nil && pool == nil {
				t.Fatal("expected pool")
			}
		})
	}
}

func TestRunAllCollectsEveryResult(t *testing.T) {
	portals := []string{"antaranews", "detik", "kompas", "tribunnews", "liputan6"}
	var tasks []Executor[string]
	for _, name := range portals {
		name := name
		tasks = append(tasks, NewTask(func(ctx context.Context) (string, error) {
			if name == "kompas" {
				return "", fmt.Errorf("%s blocked", name)
			}
			return name + ":ok", nil
		}, WithID[string](name)))
	}

	results, err := RunAll(context.Background(), PoolConfig{Workers: 2}, "test", tasks)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(portals) {
		t.Fatalf("expected %d results, got %d", len(portals), len(results))
	}

	var ids []string
	failed := 0
	for _, r := range results {
		ids = append(ids, r.TaskID)
		if !r.IsSuccess() {
			failed++
			if r.TaskID != "kompas" {
				t.Errorf("unexpected failure for %s: %v", r.TaskID, r.Error)
			}
		} else if r.Result != r.TaskID+":ok" {
			t.Errorf("unexpected result %q for %s", r.Result, r.TaskID)
		}
	}
	sort.Strings(ids)
	sort.Strings(portals)
	for i := range ids {
		if ids[i] != portals[i] {
			t.Fatalf("task ids %v do not match %v", ids, portals)
		}
	}
	if failed != 1 {
		t.Errorf("expected 1 failure, got %d", failed)
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	var running, peak int64
	var tasks []Executor[struct{}]
	for i := 0; i < 8; i++ {
		tasks = append(tasks, NewTask(func(ctx context.Context) (struct{}, error) {
			n := atomic.AddInt64(&running, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt64(&running, -1)
			return struct{}{}, nil
		}))
	}

	if _, err := RunAll(context.Background(), PoolConfig{Workers: 3}, "bounded", tasks); err != nil {
		t.Fatal(err)
	}
	if peak > 3 {
		t.Errorf("expected at most 3 concurrent tasks, saw %d", peak)
	}
}

func TestPoolTaskTimeout(t *testing.T) {
	slow := NewTask(func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	}, WithTimeout[int](20*time.Millisecond))

	results, err := RunAll(context.Background(), PoolConfig{Workers: 1}, "timeout", []Executor[int]{slow})
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(results[0].Error, ErrTaskTimeout) {
		t.Errorf("expected ErrTaskTimeout, got %v", results[0].Error)
	}
}

func TestPoolRecoversPanics(t *testing.T) {
	boom := NewTask(func(ctx context.Context) (int, error) {
		panic("selector exploded")
	})

	pool, err := NewPool[int](PoolConfig{Workers: 1, QueueSize: 1})
	if err != nil {
		t.Fatal(err)
	}
	pool.Start(context.Background(), "panic")
	if err := pool.Submit(context.Background(), boom); err != nil {
		t.Fatal(err)
	}

	res := <-pool.Results()
	pool.Close()

	if !errors.Is(res.Error, ErrTaskPanicked) {
		t.Errorf("expected ErrTaskPanicked, got %v", res.Error)
	}
	if stats := pool.Stats(); stats.Failed != 1 || stats.Completed != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestSubmitAfterClose(t *testing.T) {
	pool, err := NewPool[int](PoolConfig{Workers: 1})
	if err != nil {
		t.Fatal(err)
	}
	pool.Start(context.Background(), "closed")
	pool.Close()

	err = pool.Submit(context.Background(), NewTask(func(ctx context.Context) (int, error) { return 1, nil }))
	if !errors.Is(err, ErrPoolClosed) {
		t.Errorf("expected ErrPoolClosed, got %v", err)
	}
}

func TestCancelledContextSkipsQueuedTasks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var executed int64
	task := NewTask(func(ctx context.Context) (int, error) {
		atomic.AddInt64(&executed, 1)
		return 0, nil
	})

	results, _ := RunAll(ctx, PoolConfig{Workers: 1, QueueSize: 1}, "cancelled", []Executor[int]{task})
	if executed != 0 {
		t.Errorf("task should not run after cancellation")
	}
	for _, r := range results {
		if !errors.Is(r.Error, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", r.Error)
		}
	}
}
