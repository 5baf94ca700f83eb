package catalog

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Cached is a read-through cache over another Catalog. Hits are served
// from memory; misses fall through behind a shared rate limiter so a
// cold cache cannot stampede the backing store. Negative results are
// cached too: a field with no description stays absent for the life of
// the process.
type Cached struct {
	next    Catalog
	limiter *rate.Limiter

	mu        sync.RWMutex
	descs     map[string]string
	units     map[string]string
	choices   map[int]string
	templates map[string][]string
}

// NewCached wraps a Catalog with a read-through cache. lim bounds
// fall-through lookups; nil means unlimited.
func NewCached(next Catalog, lim *rate.Limiter) *Cached {
	return &Cached{
		next:      next,
		limiter:   lim,
		descs:     make(map[string]string),
		units:     make(map[string]string),
		choices:   make(map[int]string),
		templates: make(map[string][]string),
	}
}

func (c *Cached) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// FieldDescription implements Catalog.
func (c *Cached) FieldDescription(ctx context.Context, name string) (string, error) {
	c.mu.RLock()
	d, ok := c.descs[name]
	c.mu.RUnlock()
	if ok {
		return d, nil
	}

	if err := c.wait(ctx); err != nil {
		return "", err
	}
	d, err := c.next.FieldDescription(ctx, name)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.descs[name] = d
	c.mu.Unlock()
	return d, nil
}

// FieldUnit implements Catalog.
func (c *Cached) FieldUnit(ctx context.Context, name string) (string, error) {
	c.mu.RLock()
	u, ok := c.units[name]
	c.mu.RUnlock()
	if ok {
		return u, nil
	}

	if err := c.wait(ctx); err != nil {
		return "", err
	}
	u, err := c.next.FieldUnit(ctx, name)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.units[name] = u
	c.mu.Unlock()
	return u, nil
}

// ChoiceLabel implements Catalog.
func (c *Cached) ChoiceLabel(ctx context.Context, code int) (string, error) {
	c.mu.RLock()
	l, ok := c.choices[code]
	c.mu.RUnlock()
	if ok {
		return l, nil
	}

	if err := c.wait(ctx); err != nil {
		return "", err
	}
	l, err := c.next.ChoiceLabel(ctx, code)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.choices[code] = l
	c.mu.Unlock()
	return l, nil
}

// DefaultTemplate implements Catalog. ErrTemplateNotFound is not cached:
// it is a fatal configuration state the operator may fix between runs.
func (c *Cached) DefaultTemplate(ctx context.Context, formName, schemaVersion string) ([]string, error) {
	key := formName + "\x00" + schemaVersion
	c.mu.RLock()
	t, ok := c.templates[key]
	c.mu.RUnlock()
	if ok {
		return t, nil
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	t, err := c.next.DefaultTemplate(ctx, formName, schemaVersion)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.templates[key] = t
	c.mu.Unlock()
	return t, nil
}
