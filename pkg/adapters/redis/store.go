package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aretw0/canopy/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Store implements ports.DocumentStore and ports.Watchable using Redis.
// Payloads are plain string keys; a ZSET indexes names by expiry, and every
// write is announced on a pub/sub channel.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for screens.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the namespace for every key the store writes.
// Screens live under prefix+"screen:".
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: "canopy:",
		ttl:    0, // No expiration by default
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (s *Store) Client() *backend.Client {
	return s.client
}

func (s *Store) key(name string) string {
	return s.prefix + "screen:" + name
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

func (s *Store) channel() string {
	return s.prefix + "events"
}

// Save persists the payload, indexes it and announces the change.
func (s *Store) Save(ctx context.Context, name string, data []byte) error {
	if name == "" {
		return fmt.Errorf("screen name cannot be empty")
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(name), data, s.ttl)

	// Score = Now + TTL. If TTL = 0, Score = far future.
	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = 4102444800 // 2100-01-01
	}
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: name})
	pipe.Publish(ctx, s.channel(), name)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Fetch retrieves the payload.
func (s *Store) Fetch(ctx context.Context, name string) ([]byte, error) {
	val, err := s.client.Get(ctx, s.key(name)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("screen %s: %w", name, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}
	return val, nil
}

// Delete removes the screen and announces the change.
func (s *Store) Delete(ctx context.Context, name string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(name))
	pipe.ZRem(ctx, s.indexKey(), name)
	pipe.Publish(ctx, s.channel(), name)

	_, err := pipe.Exec(ctx)
	return err
}

// List returns live screens, pruning expired index entries first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to prune expired screens: %w", err)
	}

	names, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list screens: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Watch subscribes to change announcements from every replica.
func (s *Store) Watch(ctx context.Context) (<-chan string, error) {
	sub := s.client.Subscribe(ctx, s.channel())
	// Wait for the subscription to be confirmed so no event is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to screen events: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case ch <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
