// Package paging implements cursor pagination over list endpoints. The
// server owns the cursor format; the client treats it as opaque and only
// checks for emptiness.
package paging

import (
	"context"
	"fmt"
	"sync"
)

// FetchFunc loads one page: it returns the items, the cursor for the next
// page ("" when the stream is exhausted) and an error.
type FetchFunc[T any] func(ctx context.Context, cursor string, limit int) ([]T, string, error)

// Paginator accumulates pages of T, deduplicating by id. Pages may overlap
// when the underlying collection shifts between requests; an item whose id
// has been seen before is dropped so positions remain stable.
//
// Either an empty page or an empty next-cursor marks the stream exhausted;
// after that Next is a no-op until Reset.
type Paginator[T any] struct {
	fetch FetchFunc[T]
	idOf  func(T) string
	limit int

	mu        sync.Mutex
	items     []T
	seen      map[string]struct{}
	cursor    string
	exhausted bool
	loading   bool
	gen       uint64
}

func New[T any](fetch FetchFunc[T], idOf func(T) string, limit int) *Paginator[T] {
	return &Paginator[T]{
		fetch: fetch,
		idOf:  idOf,
		limit: limit,
		seen:  make(map[string]struct{}),
	}
}

// Next loads the next page and returns the items that were actually appended
// (duplicates removed). It returns (nil, nil) when the stream is exhausted or
// a load is already in flight.
//
// The fetch runs without the lock held. If Reset is called while a page is in
// flight, the late response belongs to the old generation and is discarded.
func (p *Paginator[T]) Next(ctx context.Context) ([]T, error) {
	p.mu.Lock()
	if p.exhausted || p.loading {
		p.mu.Unlock()
		return nil, nil
	}
	p.loading = true
	cursor := p.cursor
	gen := p.gen
	p.mu.Unlock()

	items, next, err := p.fetch(ctx, cursor, p.limit)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.gen != gen {
		// Reset happened mid-flight; this page is for a list that no
		// longer exists.
		return nil, nil
	}
	p.loading = false

	if err != nil {
		return nil, fmt.Errorf("loading page: %w", err)
	}

	var appended []T
	for _, it := range items {
		id := p.idOf(it)
		if _, dup := p.seen[id]; dup {
			continue
		}
		p.seen[id] = struct{}{}
		p.items = append(p.items, it)
		appended = append(appended, it)
	}

	p.cursor = next
	if len(items) == 0 || next == "" {
		p.exhausted = true
	}
	return appended, nil
}

// Reset discards all accumulated state so the next call to Next starts from
// the first page. Any in-flight load is invalidated.
func (p *Paginator[T]) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	p.items = nil
	p.seen = make(map[string]struct{})
	p.cursor = ""
	p.exhausted = false
	p.loading = false
}

// Items returns a copy of everything accumulated so far, in arrival order.
func (p *Paginator[T]) Items() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]T, len(p.items))
	copy(out, p.items)
	return out
}

// Exhausted reports whether the stream has ended.
func (p *Paginator[T]) Exhausted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exhausted
}

// Len reports how many items have been accumulated.
func (p *Paginator[T]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}
