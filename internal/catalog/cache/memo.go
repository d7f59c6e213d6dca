package cache

import (
	"context"
	"sync"

	catalogdomain "github.com/smallbiznis/counterreport/internal/catalog/domain"
)

type memoEntry struct {
	title catalogdomain.Title
	err   error
}

// Memo caches Resolve results for the lifetime of a single report build.
type Memo struct {
	inner catalogdomain.Catalog

	mu      sync.Mutex
	entries map[string]memoEntry
}

func NewMemo(inner catalogdomain.Catalog) *Memo {
	return &Memo{inner: inner, entries: make(map[string]memoEntry)}
}

func (m *Memo) Resolve(ctx context.Context, id string) (catalogdomain.Title, error) {
	m.mu.Lock()
	e, ok := m.entries[id]
	m.mu.Unlock()
	if ok {
		return e.title, e.err
	}

	title, err := m.inner.Resolve(ctx, id)
	if ctx.Err() == nil {
		m.mu.Lock()
		m.entries[id] = memoEntry{title: title, err: err}
		m.mu.Unlock()
	}
	return title, err
}

func (m *Memo) ListByPress(ctx context.Context, press string) ([]catalogdomain.Title, error) {
	titles, err := m.inner.ListByPress(ctx, press)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	for _, t := range titles {
		m.entries[t.ID] = memoEntry{title: t}
	}
	m.mu.Unlock()
	return titles, nil
}
