package executor

import (
	"context"
	"sync"
)

// Future is the pending result of an asynchronous call. It completes exactly once.
type Future[T any] struct {
	done   chan struct{}
	once   sync.Once
	value  T
	err    error
	cancel context.CancelFunc
}

// NewFuture returns an incomplete future. cancel, if non-nil, is invoked by Cancel.
func NewFuture[T any](cancel context.CancelFunc) *Future[T] {
	return &Future[T]{done: make(chan struct{}), cancel: cancel}
}

// Completed returns a future that already holds v and err.
func Completed[T any](v T, err error) *Future[T] {
	f := NewFuture[T](nil)
	f.Complete(v, err)
	return f
}

// Complete records the outcome. Later calls are ignored; it reports whether
// this call completed the future.
func (f *Future[T]) Complete(v T, err error) bool {
	completed := false
	f.once.Do(func() {
		f.value, f.err = v, err
		close(f.done)
		completed = true
	})
	return completed
}

// Done is closed once the future completes.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await blocks until the future completes or ctx ends. Ending ctx does not
// cancel the underlying work; use Cancel for that.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result returns the outcome without blocking. ok is false while incomplete.
func (f *Future[T]) Result() (v T, err error, ok bool) {
	select {
	case <-f.done:
		return f.value, f.err, true
	default:
		return v, nil, false
	}
}

// Cancel asks the underlying work to stop.
func (f *Future[T]) Cancel() {
	if f.cancel != nil {
		f.cancel()
	}
}

// Then maps the result of f on exec once it completes. Errors pass through
// untouched without calling fn.
func Then[T, U any](exec Executor, f *Future[T], fn func(T) (U, error)) *Future[U] {
	next := NewFuture[U](f.cancel)
	go func() {
		<-f.done
		if f.err != nil {
			var zero U
			next.Complete(zero, f.err)
			return
		}
		err := exec.Go(context.Background(), func(context.Context) {
			next.Complete(fn(f.value))
		})
		if err != nil {
			var zero U
			next.Complete(zero, err)
		}
	}()
	return next
}
