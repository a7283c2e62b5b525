// Package paging iterates over listing results that arrive in pages.
//
// Pages fetches lazily: page N+1 is requested only after page N has been
// returned and its marker observed. Markers are opaque and only round-tripped.
package paging

import (
	"context"
	"sync"
)

// Page is one page of a listing. Marker is empty on the last page.
type Page[T any] struct {
	Items  []T
	Marker string
}

// HasNext reports whether another page follows.
func (p Page[T]) HasNext() bool { return p.Marker != "" }

// Fetcher returns the page following marker; marker is empty for the first page.
type Fetcher[T any] func(ctx context.Context, marker string) (Page[T], error)

// Pages is a single-pass sequence of pages. It is safe for concurrent use;
// concurrent callers receive successive pages.
type Pages[T any] struct {
	fetch Fetcher[T]

	mu        sync.Mutex
	marker    string
	done      bool
	preloaded *Page[T]
}

// New creates a page sequence starting at the first page.
func New[T any](fetch Fetcher[T]) *Pages[T] {
	return &Pages[T]{fetch: fetch}
}

// From creates a page sequence resuming at marker.
func From[T any](fetch Fetcher[T], marker string) *Pages[T] {
	return &Pages[T]{fetch: fetch, marker: marker}
}

// Single wraps an already fetched page. A marker on it is followed with fetch.
func Single[T any](first Page[T], fetch Fetcher[T]) *Pages[T] {
	p := &Pages[T]{fetch: fetch}
	p.preloaded = &first
	return p
}

// Next fetches the next page. After the last page it returns an empty page
// and no error. A failed fetch can be retried by calling Next again.
func (p *Pages[T]) Next(ctx context.Context) (Page[T], error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done {
		return Page[T]{}, nil
	}
	var page Page[T]
	if p.preloaded != nil {
		page, p.preloaded = *p.preloaded, nil
	} else {
		if err := ctx.Err(); err != nil {
			return Page[T]{}, err
		}
		var err error
		if page, err = p.fetch(ctx, p.marker); err != nil {
			return Page[T]{}, err
		}
	}
	if page.Marker == "" || page.Marker == p.marker || p.fetch == nil {
		p.done = true
		page.Marker = ""
	}
	p.marker = page.Marker
	return page, nil
}

// Done reports whether the last page has been returned.
func (p *Pages[T]) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Marker returns the marker the next fetch will use.
func (p *Pages[T]) Marker() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.marker
}

// Items returns an iterator over the items of all remaining pages, in order.
func (p *Pages[T]) Items() *Items[T] {
	return &Items[T]{pages: p}
}

// All drains the remaining pages into one slice.
func (p *Pages[T]) All(ctx context.Context) ([]T, error) {
	var out []T
	for {
		page, err := p.Next(ctx)
		if err != nil {
			return out, err
		}
		out = append(out, page.Items...)
		if p.Done() {
			return out, nil
		}
	}
}

// Items flattens a page sequence into single items.
type Items[T any] struct {
	pages  *Pages[T]
	buf    []T
	closed bool
}

// Next returns the next item. It returns (zero, false, nil) when exhausted.
// Pages with no items are skipped.
func (it *Items[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	for len(it.buf) == 0 {
		if it.closed || it.pages.Done() {
			return zero, false, nil
		}
		page, err := it.pages.Next(ctx)
		if err != nil {
			return zero, false, err
		}
		it.buf = page.Items
	}
	item := it.buf[0]
	it.buf = it.buf[1:]
	return item, true, nil
}

// Close stops the iteration. Later calls to Next report exhaustion.
func (it *Items[T]) Close() error {
	it.closed = true
	it.buf = nil
	return nil
}
