package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/canopy/pkg/adapters/file"
	"github.com/aretw0/canopy/pkg/decoder"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticSource(files map[string]string, failures map[string]error) ports.Source {
	return ports.SourceFunc(func(_ context.Context, name string) ([]byte, error) {
		if err, ok := failures[name]; ok {
			return nil, err
		}
		data, ok := files[name]
		if !ok {
			return nil, fmt.Errorf("%s: %w", name, ports.ErrNotFound)
		}
		return []byte(data), nil
	})
}

func TestLoader_Load(t *testing.T) {
	diskErr := errors.New("permission denied")
	src := staticSource(map[string]string{
		"weather_ui.json": `{"id":"root","type":"text","content":"Sunny"}`,
		"home.yaml":       "id: home\ntype: spacer\n",
		"broken.json":     `{"id":"x","type":"video"}`,
	}, map[string]error{"locked.json": diskErr})

	var events []*domain.LoadEvent
	l := New(src, WithHooks(domain.LifecycleHooks{
		OnLoad: func(_ context.Context, e *domain.LoadEvent) { events = append(events, e) },
	}))
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		root, err := l.Load(ctx, "weather_ui.json")
		require.NoError(t, err)
		assert.Equal(t, "Sunny", root.ContentOr(""))
	})

	t.Run("yaml by extension", func(t *testing.T) {
		root, err := l.Load(ctx, "home.yaml")
		require.NoError(t, err)
		assert.Equal(t, domain.NodeTypeSpacer, root.Type)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := l.Load(ctx, "missing.json")
		assert.ErrorIs(t, err, ErrResourceNotFound)
		assert.NotErrorIs(t, err, ErrUnreadableResource)
		assert.Equal(t, ResourceNotFound, KindOf(err))
	})

	t.Run("unreadable", func(t *testing.T) {
		_, err := l.Load(ctx, "locked.json")
		assert.ErrorIs(t, err, ErrUnreadableResource)
		assert.ErrorIs(t, err, diskErr)
	})

	t.Run("decode failed keeps the cause", func(t *testing.T) {
		_, err := l.Load(ctx, "broken.json")
		assert.ErrorIs(t, err, ErrDecodeFailed)
		assert.ErrorIs(t, err, decoder.ErrParsingFailed)

		var uv *domain.UnknownValueError
		assert.ErrorAs(t, err, &uv)
	})

	require.Len(t, events, 5)
	assert.NoError(t, events[0].Err)
	assert.Equal(t, "weather_ui.json", events[0].Screen)
	assert.Greater(t, events[0].Bytes, 0)
	assert.Error(t, events[2].Err)
}

func TestLoader_ContextCancel(t *testing.T) {
	src := ports.SourceFunc(func(ctx context.Context, _ string) ([]byte, error) {
		return nil, ctx.Err()
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(src).Load(ctx, "any")
	assert.ErrorIs(t, err, ErrUnreadableResource)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoader_FileStoreBareNameFindsYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "home.yaml"), []byte("id: home\ntype: text\ncontent: Hi\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "detail.json"), []byte(`{"id":"detail","type":"spacer"}`), 0o644))

	l := New(file.New(dir))
	ctx := context.Background()

	for _, name := range []string{"home", "home.yaml"} {
		root, err := l.Load(ctx, name)
		require.NoError(t, err, name)
		assert.Equal(t, "Hi", root.ContentOr(""), name)
	}

	root, err := l.Load(ctx, "detail")
	require.NoError(t, err)
	assert.Equal(t, domain.NodeTypeSpacer, root.Type)
}
