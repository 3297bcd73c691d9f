package cache

import (
	"context"
	"io"
	"slices"
	"strings"
	"sync"
)

// InMemoryCache keeps entries in process memory, so state is lost on exit.
// Keys are held sorted so List is a range scan.
type InMemoryCache struct {
	mu     sync.RWMutex
	values map[string]string
	keys   []string
}

var _ ListCache = (*InMemoryCache)(nil)

func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{values: map[string]string{}}
}

func (c *InMemoryCache) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(strings.NewReader(v)), nil
}

func (c *InMemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.values[key]
	return ok, nil
}

func (c *InMemoryCache) Put(ctx context.Context, key, value string, opts PutOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[key]; !ok {
		i, _ := slices.BinarySearch(c.keys, key)
		c.keys = slices.Insert(c.keys, i, key)
	} else if opts.Condition == PutIfNoneMatch {
		return ErrAlreadyExists
	}
	c.values[key] = value
	return nil
}

func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	i, found := slices.BinarySearch(c.keys, key)
	if !found {
		return ErrNotFound
	}
	c.keys = slices.Delete(c.keys, i, i+1)
	delete(c.values, key)
	return nil
}

// List returns keys under prefix with the prefix removed, in order. There is
// a single page, so the token is ignored.
func (c *InMemoryCache) List(ctx context.Context, prefix, _ string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	start, _ := slices.BinarySearch(c.keys, prefix)
	var out []string
	for _, k := range c.keys[start:] {
		if !strings.HasPrefix(k, prefix) {
			break
		}
		out = append(out, strings.TrimPrefix(k, prefix))
	}
	return out, nil
}
