package loader

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/pkg/decoder"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
)

// Parser turns fetched bytes into a tree. The name lets it pick a syntax.
type Parser interface {
	ParseNamed(name string, data []byte) (*domain.Node, error)
}

// Loader fetches a named payload from a source and decodes it.
type Loader struct {
	source ports.Source
	parser Parser
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	now    func() time.Time
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(ld *Loader) { ld.logger = l }
}

// WithParser replaces the default JSON/YAML parser.
func WithParser(p Parser) Option {
	return func(ld *Loader) { ld.parser = p }
}

// WithHooks registers lifecycle callbacks fired after every load.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(ld *Loader) { ld.hooks = ld.hooks.Merge(h) }
}

// New creates a loader over source.
func New(source ports.Source, opts ...Option) *Loader {
	l := &Loader{
		source: source,
		parser: decoder.NewParser(),
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load fetches and decodes the named screen. It performs exactly one read and
// returns either a complete tree or a *LoadError.
func (l *Loader) Load(ctx context.Context, name string) (*domain.Node, error) {
	start := l.now()
	data, err := l.source.Fetch(ctx, name)
	if err != nil {
		kind := UnreadableResource
		if errors.Is(err, ports.ErrNotFound) {
			kind = ResourceNotFound
		}
		return nil, l.fail(ctx, start, name, 0, &LoadError{Name: name, Kind: kind, Err: err})
	}

	root, err := l.parser.ParseNamed(name, data)
	if err != nil {
		return nil, l.fail(ctx, start, name, len(data), &LoadError{Name: name, Kind: DecodeFailed, Err: err})
	}

	l.logger.Debug("screen loaded", "screen", name, "bytes", len(data), "root", root.ID)
	l.emit(ctx, start, name, len(data), nil)
	return root, nil
}

func (l *Loader) fail(ctx context.Context, start time.Time, name string, size int, err *LoadError) error {
	l.logger.Debug("screen load failed", "screen", name, "kind", err.Kind.String(), "error", err.Err)
	l.emit(ctx, start, name, size, err)
	return err
}

func (l *Loader) emit(ctx context.Context, start time.Time, name string, size int, err error) {
	if l.hooks.OnLoad == nil {
		return
	}
	l.hooks.OnLoad(ctx, &domain.LoadEvent{
		EventBase: domain.EventBase{Timestamp: start, Type: domain.EventLoad, Screen: name},
		Bytes:     size,
		Duration:  l.now().Sub(start),
		Err:       err,
	})
}
