// Package cache keeps rendered public API responses so the marketing site does not hit
// MongoDB on every page view.
package cache

import (
	"context"
	"errors"
	"strings"
)

// ErrMiss is returned by Get when the key is absent.
var ErrMiss = errors.New("cache miss")

// Cache stores response bodies by key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// InvalidatePrefix drops every key starting with prefix.
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// ResourcePrefix is the key prefix shared by all cached responses of one resource.
func ResourcePrefix(resource string) string {
	return "public:" + resource + ":"
}

// Key builds the cache key for a public request URI of resource.
func Key(resource, requestURI string) string {
	return ResourcePrefix(resource) + strings.TrimSpace(requestURI)
}

// Noop never stores anything. It is used when no Redis URL is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, error)    { return nil, ErrMiss }
func (Noop) Set(context.Context, string, []byte) error      { return nil }
func (Noop) InvalidatePrefix(context.Context, string) error { return nil }
