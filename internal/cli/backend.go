package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/canopy/internal/config"
	"github.com/aretw0/canopy/pkg/adapters/bolt"
	"github.com/aretw0/canopy/pkg/adapters/cache"
	"github.com/aretw0/canopy/pkg/adapters/file"
	"github.com/aretw0/canopy/pkg/adapters/loam"
	"github.com/aretw0/canopy/pkg/adapters/memory"
	"github.com/aretw0/canopy/pkg/adapters/redis"
	"github.com/aretw0/canopy/pkg/adapters/remote"
	"github.com/aretw0/canopy/pkg/adapters/s3"
	"github.com/aretw0/canopy/pkg/persistence/middleware"
	"github.com/aretw0/canopy/pkg/ports"
)

// ErrReadOnlySource is returned when a command needs to store screens but the
// configured source can only be read.
var ErrReadOnlySource = errors.New("source is read-only")

// Backend is the storage selected by the configuration.
type Backend struct {
	// Source serves reads. It is the same value as Store when Store is set.
	Source ports.Source
	// Store is nil for read-only sources (loam, remote).
	Store ports.DocumentStore
	// Locker is set when cross-process patch locking is enabled.
	Locker  ports.DistributedLocker
	closers []io.Closer
}

// Close releases connections and file handles.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i].Close())
	}
	return errors.Join(errs...)
}

// RequireStore returns the writable store or ErrReadOnlySource.
func (b *Backend) RequireStore() (ports.DocumentStore, error) {
	if b.Store == nil {
		return nil, ErrReadOnlySource
	}
	return b.Store, nil
}

// Documents returns the writable store, or a view of a read-only source
// whose writes fail with ErrReadOnlySource.
func (b *Backend) Documents() ports.DocumentStore {
	if b.Store != nil {
		return b.Store
	}
	return readOnlyStore{b.Source}
}

type readOnlyStore struct {
	ports.Source
}

func (s readOnlyStore) List(ctx context.Context) ([]string, error) {
	if l, ok := s.Source.(ports.Lister); ok {
		return l.List(ctx)
	}
	return nil, fmt.Errorf("%w: cannot list screens", ErrReadOnlySource)
}

func (readOnlyStore) Save(context.Context, string, []byte) error { return ErrReadOnlySource }

func (readOnlyStore) Delete(context.Context, string) error { return ErrReadOnlySource }

// OpenBackend builds the source described by cfg, then layers the optional
// validation, encryption and cache decorators on top.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &Backend{}
	fail := func(err error) (*Backend, error) {
		_ = b.Close()
		return nil, err
	}

	switch cfg.Source.Kind {
	case config.SourceDir:
		b.Store = file.New(cfg.Source.Dir)
	case config.SourceLoam:
		src, err := loam.Open(cfg.Source.Dir)
		if err != nil {
			return fail(err)
		}
		b.Source = src
	case config.SourceMemory:
		b.Store = memory.NewStore(nil)
	case config.SourceRedis:
		var opts []redis.Option
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Redis.TTL.Duration > 0 {
			opts = append(opts, redis.WithTTL(cfg.Redis.TTL.Duration))
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		b.closers = append(b.closers, store)
		b.Store = store
	case config.SourceBolt:
		var opts []bolt.Option
		if cfg.Bolt.Bucket != "" {
			opts = append(opts, bolt.WithBucket(cfg.Bolt.Bucket))
		}
		store, err := bolt.Open(cfg.Bolt.Path, opts...)
		if err != nil {
			return fail(err)
		}
		b.closers = append(b.closers, store)
		b.Store = store
	case config.SourceS3:
		store, err := s3.New(s3.Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			Prefix:    cfg.S3.Prefix,
			UseSSL:    cfg.S3.UseSSL,
		})
		if err != nil {
			return fail(err)
		}
		b.Store = store
	case config.SourceRemote:
		opts := []remote.Option{
			remote.WithHTTPClient(&http.Client{Timeout: cfg.Remote.Timeout.Duration}),
			remote.WithSuffix(cfg.Remote.Suffix),
		}
		if cfg.Remote.Token != "" {
			opts = append(opts, remote.WithBearerToken(cfg.Remote.Token))
		}
		src, err := remote.New(cfg.Remote.URL, opts...)
		if err != nil {
			return fail(err)
		}
		b.Source = src
	}

	if b.Store != nil {
		mws := []middleware.Middleware{middleware.NewValidationMiddleware()}
		if cfg.Crypto.Key != "" {
			enc, err := encryption(cfg.Crypto)
			if err != nil {
				return fail(err)
			}
			mws = append(mws, enc)
		}
		b.Store = middleware.Chain(b.Store, mws...)
	}

	if cfg.Cache.Size > 0 {
		opts := []cache.Option{cache.WithSize(cfg.Cache.Size), cache.WithTTL(cfg.Cache.TTL.Duration), cache.WithLogger(logger)}
		if b.Store != nil {
			b.Store = cache.NewStore(b.Store, opts...)
		} else {
			b.Source = cache.New(b.Source, opts...)
		}
	}
	if b.Store != nil {
		b.Source = b.Store
	}

	if cfg.Redis.Lock {
		client := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		b.closers = append(b.closers, client)
		b.Locker = redis.NewLocker(client.Client(), cfg.Redis.Prefix)
	}

	logger.Debug("backend ready", "kind", cfg.Source.Kind, "writable", b.Store != nil,
		"cache", cfg.Cache.Size > 0, "encrypted", cfg.Crypto.Key != "", "locking", b.Locker != nil)
	return b, nil
}

func encryption(cfg config.CryptoConfig) (middleware.Middleware, error) {
	active, err := middleware.ParseKey(cfg.Key)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	var fallbacks [][]byte
	for i, k := range cfg.FallbackKeys {
		key, err := middleware.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("fallback key %d: %w", i, err)
		}
		fallbacks = append(fallbacks, key)
	}
	return middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    active,
		FallbackKeys: fallbacks,
	}), nil
}
