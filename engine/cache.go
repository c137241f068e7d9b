package engine

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes dashboards per canonical FilterSpec over one view.
// Concurrent Get calls for the same spec share a single computation, and a
// stored dashboard is never recomputed until Invalidate.
type Cache struct {
	view  RecordView
	opts  []Option
	build func(RecordView, FilterSpec, ...Option) (*Dashboard, error)

	mu      sync.RWMutex
	entries map[string]*Dashboard
	group   singleflight.Group
}

// NewCache creates a dashboard cache over view. opts are passed to every build.
func NewCache(view RecordView, opts ...Option) *Cache {
	return &Cache{
		view:    view,
		opts:    opts,
		build:   BuildDashboard,
		entries: make(map[string]*Dashboard),
	}
}

// Get returns the dashboard for spec, building it on first use.
// Errors are returned to every waiting caller and are not stored.
func (c *Cache) Get(ctx context.Context, spec FilterSpec) (*Dashboard, error) {
	for col := range spec {
		if !hasDimension(c.view, col) {
			return nil, unknownColumn("filter", col)
		}
	}

	key := spec.Key()
	if d, ok := c.lookup(key); ok {
		return d, nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		// A build that finished between lookup and DoChan already stored it.
		if d, ok := c.lookup(key); ok {
			return d, nil
		}
		d, err := c.build(c.view, spec, c.opts...)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.entries[key] = d
		c.mu.Unlock()
		return d, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Dashboard), nil
	}
}

// Len returns the number of stored dashboards.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Invalidate drops every stored dashboard.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[string]*Dashboard)
	c.mu.Unlock()
}

func (c *Cache) lookup(key string) (*Dashboard, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.entries[key]
	return d, ok
}
