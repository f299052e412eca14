package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/canopy/pkg/ports"
)

// SourceContractTest is a reusable test suite that verifies if an adapter complies with ports.Source.
// When the source also implements ports.Lister, listing is checked against setupData.
func SourceContractTest(t *testing.T, source ports.Source, setupData map[string][]byte) {
	t.Helper()
	ctx := context.Background()

	// 1. Fetch (Success)
	t.Run("Fetch_Success", func(t *testing.T) {
		for name, expectedContent := range setupData {
			content, err := source.Fetch(ctx, name)
			if err != nil {
				t.Fatalf("unexpected error fetching %s: %v", name, err)
			}
			if string(content) != string(expectedContent) {
				t.Errorf("content mismatch for %s. got %q, want %q", name, content, expectedContent)
			}
		}
	})

	// 2. Fetch (NotFound)
	t.Run("Fetch_NotFound", func(t *testing.T) {
		_, err := source.Fetch(ctx, "non-existent-screen")
		if !errors.Is(err, ports.ErrNotFound) {
			t.Errorf("expected ErrNotFound for a missing screen, got %v", err)
		}
	})

	// 3. List
	lister, ok := source.(ports.Lister)
	if !ok {
		return
	}
	t.Run("List", func(t *testing.T) {
		names, err := lister.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing screens: %v", err)
		}
		if len(names) != len(setupData) {
			t.Errorf("expected %d screens, got %d", len(setupData), len(names))
		}

		lookup := make(map[string]bool)
		for _, name := range names {
			lookup[name] = true
		}
		for name := range setupData {
			if !lookup[name] {
				t.Errorf("screen %s missing from list", name)
			}
		}
	})
}
