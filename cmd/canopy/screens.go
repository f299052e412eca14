package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/aretw0/canopy/pkg/ports"
)

// listScreens returns the sorted screen names of a source that can enumerate them.
func listScreens(ctx context.Context, src ports.Source) ([]string, error) {
	l, ok := src.(ports.Lister)
	if !ok {
		return nil, fmt.Errorf("source cannot list screens, name them explicitly")
	}
	names, err := l.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list screens: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// readInput reads a file, or stdin when path is "-" or empty.
func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}
