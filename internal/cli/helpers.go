package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/canopy/internal/config"
	"github.com/aretw0/canopy/internal/logging"
	"github.com/aretw0/canopy/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// NewLogger configures the application logger.
// Debug forces the debug level whatever the configuration says.
func NewLogger(cfg config.LogConfig, debug bool) *slog.Logger {
	if debug {
		return logging.FromConfig("debug", cfg.Format)
	}
	return logging.FromConfig(cfg.Level, cfg.Format)
}

// PrintSystemMessage prints a standardized system message.
func PrintSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// DebugHooks logs every lifecycle event at debug level.
func DebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnLoad: func(ctx context.Context, e *domain.LoadEvent) {
			if e.Err != nil {
				logger.Debug("Load Failed", "screen", e.Screen, "err", e.Err)
				return
			}
			logger.Debug("Load", "screen", e.Screen, "bytes", e.Bytes, "duration", e.Duration)
		},
		OnPatch: func(ctx context.Context, e *domain.PatchEvent) {
			logger.Debug("Patch", "screen", e.Screen, "patches", len(e.Patches), "matches", e.Matches, "version", e.Version)
		},
		OnAction: func(ctx context.Context, e *domain.ActionEvent) {
			logger.Debug("Action", "screen", e.Screen, "type", e.Action.Type, "handled", e.Handled)
		},
	}
}

// EntryScreen picks the screen to open when none is named: the first of
// home, index, main and start that exists, else the first listed.
func EntryScreen(names []string) string {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	for _, candidate := range []string{"home", "index", "main", "start"} {
		if set[candidate] {
			return candidate
		}
	}
	if len(names) > 0 {
		return names[0]
	}
	return ""
}
