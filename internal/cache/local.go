package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Local keeps entries in process memory with a per-entry TTL.
type Local struct {
	c *gocache.Cache
}

func NewLocal(ttl time.Duration) *Local {
	return &Local{c: gocache.New(ttl, 2*ttl)}
}

func (l *Local) Get(_ context.Context, code string) (Entry, error) {
	v, ok := l.c.Get(code)
	if !ok {
		return Entry{}, ErrMiss
	}
	return v.(Entry), nil
}

func (l *Local) Set(_ context.Context, code string, entry Entry) error {
	l.c.SetDefault(code, entry)
	return nil
}

func (l *Local) Delete(_ context.Context, code string) error {
	l.c.Delete(code)
	return nil
}

func (l *Local) Close() error {
	l.c.Flush()
	return nil
}
