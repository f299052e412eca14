package loam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/aretw0/loam"
)

// Source adapts a Loam repository to ports.Source.
//
// Screens may be JSON, YAML or Markdown with frontmatter. For Markdown the
// body becomes the root content, so a plain page is a text screen.
type Source struct {
	Repo *loam.TypedRepository[ScreenMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[ScreenMetadata]) *Source {
	return &Source{Repo: repo}
}

// Open initialises a read-only, strict Loam repository at dir and wraps it.
func Open(dir string) (*Source, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve screen directory: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[ScreenMetadata](repo)), nil
}

// Fetch returns the screen as JSON bytes for the decoder.
func (s *Source) Fetch(ctx context.Context, name string) ([]byte, error) {
	doc, err := s.Repo.Get(ctx, name)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("screen %s: %w", name, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("loam get failed for %s: %w", name, err)
	}

	data := buildScreen(doc.ID, doc.Data, doc.Content)
	bytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal screen %s: %w", name, err)
	}
	return bytes, nil
}

func buildScreen(docID string, meta ScreenMetadata, body string) map[string]any {
	data := make(map[string]any)

	rawID := meta.ID
	if rawID == "" {
		rawID = docID
	}
	data["id"] = trimExtension(rawID)

	data["type"] = meta.Type
	if meta.Type == "" {
		data["type"] = string(domain.NodeTypeText)
	}

	switch {
	case meta.Content != nil:
		data["content"] = *meta.Content
	case strings.TrimSpace(body) != "":
		data["content"] = strings.TrimSpace(body)
	}

	if meta.Style != nil {
		data["style"] = meta.Style
	}
	if meta.Action != nil {
		data["action"] = meta.Action
	}
	if meta.Children != nil {
		data["children"] = meta.Children
	}
	if meta.StackAxis != "" {
		data["stackAxis"] = meta.StackAxis
	}
	if meta.StackAlignment != "" {
		data["stackAlignment"] = meta.StackAlignment
	}
	if meta.ScrollAxis != "" {
		data["scrollAxis"] = meta.ScrollAxis
	}
	if meta.ShowIndicators != nil {
		data["showIndicators"] = *meta.ShowIndicators
	}
	if meta.Properties != nil {
		data["properties"] = meta.Properties
	}
	return data
}

// List lists all screens in the repository.
func (s *Source) List(ctx context.Context) ([]string, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	names := make([]string, 0, len(docs))
	for _, doc := range docs {
		// Screen names come from the document path, not the root id.
		name := trimExtension(doc.ID)
		if existingPath, ok := seen[name]; ok {
			return nil, fmt.Errorf("collision detected: screen '%s' is defined in both '%s' and '%s'", name, existingPath, doc.ID)
		}
		seen[name] = doc.ID
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Watch implements ports.Watchable.
func (s *Source) Watch(ctx context.Context) (<-chan string, error) {
	events, err := s.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

// isNotFound recognises a missing document. Loam wraps fs errors for files
// that do not exist; older versions only say so in the message.
func isNotFound(err error) bool {
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "no such file")
}
