package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Loader fetches and memoizes station metadata. A station issues at most
// one in-flight fetch regardless of how many concurrent callers ask for
// it; all callers share the same result, value or error.
type Loader struct {
	res   *Resolver
	cache *Cache // optional

	mu      sync.Mutex
	entries map[string]*loadEntry
}

type loadEntry struct {
	done chan struct{}
	meta *Meta
	err  error
}

// NewLoader creates a loader over a resolver and an optional cache.
func NewLoader(res *Resolver, cache *Cache) *Loader {
	return &Loader{
		res:     res,
		cache:   cache,
		entries: make(map[string]*loadEntry),
	}
}

// Load returns the metadata for a station path. The first call starts the
// fetch; concurrent and later calls attach to its result.
func (l *Loader) Load(ctx context.Context, station string) (*Meta, error) {
	l.mu.Lock()
	if e, ok := l.entries[station]; ok {
		l.mu.Unlock()
		<-e.done
		return e.meta, e.err
	}
	e := &loadEntry{done: make(chan struct{})}
	l.entries[station] = e
	l.mu.Unlock()

	e.meta, e.err = l.fetch(ctx, station)
	close(e.done)
	return e.meta, e.err
}

func (l *Loader) fetch(ctx context.Context, station string) (*Meta, error) {
	rel := metaPath(station)

	if l.cache != nil {
		if body, ok := l.cache.Get(station); ok {
			if meta, err := parseMeta(body); err == nil {
				return meta, nil
			}
			// A corrupt cache entry falls through to a fresh fetch.
		}
	}

	body, err := l.res.Fetch(ctx, rel)
	if err != nil {
		return nil, fmt.Errorf("load station %s: %w", station, err)
	}
	meta, err := parseMeta(body)
	if err != nil {
		return nil, fmt.Errorf("load station %s: %w", station, err)
	}

	if l.cache != nil {
		_ = l.cache.Put(station, body)
	}
	return meta, nil
}

func parseMeta(body []byte) (*Meta, error) {
	var meta Meta
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("parse station metadata: %w", err)
	}
	return &meta, nil
}
