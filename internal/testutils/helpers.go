package testutils

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/canopy/pkg/decoder"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
	"github.com/stretchr/testify/require"
)

// SetupTestRepo creates a temporary directory and initializes a Loam repository in it.
// It returns the absolute path to the temp dir and the initialized repository.
// It fails the test immediately on error.
func SetupTestRepo(t *testing.T, opts ...loam.Option) (string, core.Repository) {
	t.Helper()

	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	repo, err := loam.Init(absPath, opts...)
	require.NoError(t, err, "Failed to init loam repo")

	return absPath, repo
}

// HelloJSON is the two-widget screen used across tests: a vertical stack with
// text t1 ("Hello") and button b1 ("Go") navigating to Detail.
const HelloJSON = `{"id":"root","type":"stack","stackAxis":"vertical","children":[` +
	`{"id":"t1","type":"text","content":"Hello"},` +
	`{"id":"b1","type":"button","content":"Go","action":{"type":"navigate","payload":{"screen":"Detail"}}}]}`

// MustParse decodes a JSON screen or fails the test.
func MustParse(t *testing.T, payload string) *domain.Node {
	t.Helper()
	root, err := decoder.ParseString(payload)
	require.NoError(t, err)
	return root
}

// Saver is the write half of a document store.
type Saver interface {
	Save(ctx context.Context, name string, data []byte) error
}

// SeedScreens saves raw payloads into a store or fails the test.
func SeedScreens(t *testing.T, store Saver, screens map[string]string) {
	t.Helper()
	for name, payload := range screens {
		require.NoError(t, store.Save(context.Background(), name, []byte(payload)))
	}
}
