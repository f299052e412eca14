package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultSize = 256
	DefaultTTL  = time.Minute
)

// Source is a read-through cache in front of another source.
// It caches raw bytes, never decoded trees, so every Load still yields a
// fresh tree. Misses (including not-found) are not cached.
type Source struct {
	next   ports.Source
	lru    *expirable.LRU[string, []byte]
	group  singleflight.Group
	logger *slog.Logger
}

type Option func(*config)

type config struct {
	size   int
	ttl    time.Duration
	logger *slog.Logger
}

// WithSize bounds the number of cached payloads.
func WithSize(n int) Option {
	return func(c *config) { c.size = n }
}

// WithTTL sets how long a payload stays fresh. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) { c.ttl = ttl }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// New wraps next.
func New(next ports.Source, opts ...Option) *Source {
	cfg := config{size: DefaultSize, ttl: DefaultTTL, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Source{
		next:   next,
		lru:    expirable.NewLRU[string, []byte](cfg.size, nil, cfg.ttl),
		logger: cfg.logger,
	}
}

// Fetch serves from the cache or collapses concurrent misses into one fetch.
func (s *Source) Fetch(ctx context.Context, name string) ([]byte, error) {
	if data, ok := s.lru.Get(name); ok {
		return clone(data), nil
	}
	v, err, shared := s.group.Do(name, func() (any, error) {
		data, err := s.next.Fetch(ctx, name)
		if err != nil {
			return nil, err
		}
		s.lru.Add(name, clone(data))
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("cache miss", "screen", name, "shared", shared)
	return clone(v.([]byte)), nil
}

// List passes through when the wrapped source can list.
func (s *Source) List(ctx context.Context) ([]string, error) {
	if l, ok := s.next.(ports.Lister); ok {
		return l.List(ctx)
	}
	return nil, nil
}

// Invalidate drops one entry.
func (s *Source) Invalidate(name string) {
	s.lru.Remove(name)
}

// Purge drops every entry.
func (s *Source) Purge() {
	s.lru.Purge()
}

// Len reports the number of cached payloads.
func (s *Source) Len() int {
	return s.lru.Len()
}

// Watch forwards change notifications from the wrapped source, invalidating
// each changed entry first. It fails when the wrapped source cannot watch.
func (s *Source) Watch(ctx context.Context) (<-chan string, error) {
	w, ok := s.next.(ports.Watchable)
	if !ok {
		return nil, ErrNotWatchable
	}
	in, err := w.Watch(ctx)
	if err != nil {
		return nil, err
	}
	out := make(chan string, 16)
	go func() {
		defer close(out)
		for name := range in {
			s.Invalidate(name)
			select {
			case out <- name:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}
