package executor

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	apperrors "github.com/kbukum/apikit/errors"
)

// Task is a unit of work submitted to an Executor.
type Task func(ctx context.Context)

// Executor runs tasks.
type Executor interface {
	// Go submits task. It never blocks waiting for capacity and fails only
	// after Shutdown.
	Go(ctx context.Context, task Task) error
	// Shutdown stops accepting tasks and waits for running ones until ctx ends.
	Shutdown(ctx context.Context) error
	// Size is the concurrency bound, 0 for inline executors.
	Size() int
}

// New returns a Pool of the given size, or an inline executor when size is 0.
func New(name string, size int) Executor {
	if size <= 0 {
		return NewInline(name)
	}
	return NewPool(name, size)
}

// Inline runs each task synchronously on the submitting goroutine.
type Inline struct {
	name   string
	mu     sync.RWMutex
	closed bool
}

// NewInline creates an inline executor.
func NewInline(name string) *Inline { return &Inline{name: name} }

func (e *Inline) Go(ctx context.Context, task Task) error {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return apperrors.AlreadyClosed("executor " + e.name)
	}
	task(ctx)
	return nil
}

func (e *Inline) Shutdown(context.Context) error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	return nil
}

func (e *Inline) Size() int { return 0 }

// Pool runs at most size tasks at once. Each submission gets its own goroutine
// that waits for a slot, so Go returns immediately.
type Pool struct {
	name string
	size int
	sem  *semaphore.Weighted

	// stop ends waits for a slot once Shutdown gives up.
	stop   context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool creates a bounded pool.
func NewPool(name string, size int) *Pool {
	stop, cancel := context.WithCancel(context.Background())
	return &Pool{
		name:   name,
		size:   size,
		sem:    semaphore.NewWeighted(int64(size)),
		stop:   stop,
		cancel: cancel,
	}
}

func (p *Pool) Go(ctx context.Context, task Task) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return apperrors.AlreadyClosed("executor " + p.name)
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		if err := p.sem.Acquire(p.stop, 1); err != nil {
			task(cancelled(ctx))
			return
		}
		defer p.sem.Release(1)
		task(ctx)
	}()
	return nil
}

// Shutdown rejects new tasks and waits for queued and running ones. When ctx
// ends first, queued tasks run with a cancelled context and ctx.Err() is returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return ctx.Err()
	}
}

func (p *Pool) Size() int { return p.size }

func cancelled(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	cancel()
	return ctx
}
