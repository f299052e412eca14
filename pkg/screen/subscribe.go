package screen

import (
	"context"

	"github.com/aretw0/canopy/pkg/domain"
)

// UpdateKind says what happened to a screen.
type UpdateKind string

const (
	Stored  UpdateKind = "put"
	Patched UpdateKind = "patch"
	Deleted UpdateKind = "delete"
)

// Update is delivered to subscribers after a change is stored.
type Update struct {
	Screen  string         `json:"screen"`
	Kind    UpdateKind     `json:"kind"`
	Version uint64         `json:"version"`
	Patches []domain.Patch `json:"patches,omitempty"`
	Matches int            `json:"matches,omitempty"`
	Root    *domain.Node   `json:"root,omitempty"`
}

type subscriber struct {
	screen string
	ch     chan Update
}

// Subscribe delivers updates for screen (or every screen when screen is "")
// until ctx is done. Slow subscribers miss updates rather than block writers.
func (m *Manager) Subscribe(ctx context.Context, screen string) <-chan Update {
	sub := &subscriber{screen: screen, ch: make(chan Update, 16)}

	m.subsMu.Lock()
	m.subs[sub] = struct{}{}
	m.subsMu.Unlock()

	go func() {
		<-ctx.Done()
		m.subsMu.Lock()
		delete(m.subs, sub)
		m.subsMu.Unlock()
		close(sub.ch)
	}()
	return sub.ch
}

func (m *Manager) publish(u Update) {
	m.subsMu.RLock()
	defer m.subsMu.RUnlock()
	for sub := range m.subs {
		if sub.screen != "" && sub.screen != u.Screen {
			continue
		}
		select {
		case sub.ch <- u:
		default:
			m.logger.Warn("subscriber too slow, dropping update", "screen", u.Screen, "version", u.Version)
		}
	}
}
