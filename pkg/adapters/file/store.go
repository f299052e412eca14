package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/canopy/pkg/ports"
)

// Store implements ports.DocumentStore on the local filesystem.
// Screens are kept as name.json (or name.yaml / name.yml) in a base directory,
// which also makes it the bundle-resource source of a client build.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".canopy/screens".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".canopy", "screens")
	}
	return &Store{BasePath: basePath}
}

var knownExt = []string{".json", ".yaml", ".yml"}

func hasKnownExt(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, k := range knownExt {
		if ext == k {
			return true
		}
	}
	return false
}

func (s *Store) resolve(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("screen name cannot be empty")
	}
	if !filepath.IsLocal(filepath.FromSlash(name)) {
		return "", fmt.Errorf("screen name %q escapes the base directory", name)
	}
	return filepath.Join(s.BasePath, filepath.FromSlash(name)), nil
}

// Fetch reads the named screen. A name without extension is looked up as
// .json, then .yaml, then .yml.
func (s *Store) Fetch(ctx context.Context, name string) ([]byte, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	candidates := []string{path}
	if !hasKnownExt(name) {
		candidates = candidates[:0]
		for _, ext := range knownExt {
			candidates = append(candidates, path+ext)
		}
	}

	for _, p := range candidates {
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read screen file: %w", err)
		}
	}
	return nil, fmt.Errorf("screen %s: %w", name, ports.ErrNotFound)
}

// Save persists the payload atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, name string, data []byte) error {
	destPath, err := s.resolve(name)
	if err != nil {
		return err
	}
	if !hasKnownExt(name) {
		destPath += ".json"
	}

	dir := filepath.Dir(destPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure screen directory: %w", err)
	}

	// Same directory as the destination, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(dir, "tmp-"+filepath.Base(destPath)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// cannot rename an open file on Windows
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing screen file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to screen file: %w", err)
	}
	return nil
}

// Delete removes every file backing the screen.
func (s *Store) Delete(ctx context.Context, name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	paths := []string{path}
	if !hasKnownExt(name) {
		paths = paths[:0]
		for _, ext := range knownExt {
			paths = append(paths, path+ext)
		}
	}
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to delete screen file: %w", err)
		}
	}
	return nil
}

// List returns screen names relative to the base directory, using forward
// slashes. JSON screens are listed without their extension.
func (s *Store) List(ctx context.Context) ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.BasePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), "tmp-") || !hasKnownExt(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(s.BasePath, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.EqualFold(filepath.Ext(rel), ".json") {
			rel = rel[:len(rel)-len(".json")]
		}
		names = append(names, rel)
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list screens: %w", err)
	}
	sort.Strings(names)
	return names, nil
}
