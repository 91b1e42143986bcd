package cache

import (
	"context"
	"errors"
)

// ErrMiss is returned by Get when the code is not cached.
var ErrMiss = errors.New("cache miss")

// Entry is the part of a link needed to serve a redirect.
type Entry struct {
	LinkID      int64  `json:"link_id"`
	OriginalURL string `json:"original_url"`
}

// LinkCache caches short code -> link lookups for the redirect path.
type LinkCache interface {
	Get(ctx context.Context, code string) (Entry, error)
	Set(ctx context.Context, code string, entry Entry) error
	Delete(ctx context.Context, code string) error
	Close() error
}

// Noop disables caching.
type Noop struct{}

func (Noop) Get(context.Context, string) (Entry, error) { return Entry{}, ErrMiss }
func (Noop) Set(context.Context, string, Entry) error   { return nil }
func (Noop) Delete(context.Context, string) error       { return nil }
func (Noop) Close() error                               { return nil }
