package remote_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/canopy/internal/testutils"
	"github.com/aretw0/canopy/pkg/adapters/remote"
	"github.com/aretw0/canopy/pkg/loader"
	"github.com/aretw0/canopy/pkg/ports"
	"github.com/aretw0/canopy/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, screens map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/broken":
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		case "/private":
			if r.Header.Get("Authorization") != "Bearer s3cret" {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			w.Write([]byte(testutils.HelloJSON))
			return
		}
		body, ok := screens[r.URL.Path[1:]]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRemoteSource_Contract(t *testing.T) {
	srv := newServer(t, map[string]string{"hello": testutils.HelloJSON})
	src, err := remote.New(srv.URL)
	require.NoError(t, err)

	tests.SourceContractTest(t, src, map[string][]byte{"hello": []byte(testutils.HelloJSON)})
}

func TestRemoteSource_Errors(t *testing.T) {
	srv := newServer(t, nil)
	ctx := context.Background()

	src, err := remote.New(srv.URL)
	require.NoError(t, err)

	_, err = src.Fetch(ctx, "broken")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ports.ErrNotFound), "5xx is unreadable, not missing")

	_, err = src.Fetch(ctx, "private")
	assert.ErrorContains(t, err, "403")

	authed, err := remote.New(srv.URL, remote.WithBearerToken("s3cret"))
	require.NoError(t, err)
	_, err = authed.Fetch(ctx, "private")
	assert.NoError(t, err)
}

func TestRemoteSource_LoaderKinds(t *testing.T) {
	srv := newServer(t, map[string]string{"bad": `{"id":"x","type":"hologram"}`})
	src, err := remote.New(srv.URL)
	require.NoError(t, err)
	l := loader.New(src)
	ctx := context.Background()

	_, err = l.Load(ctx, "missing")
	assert.ErrorIs(t, err, loader.ErrResourceNotFound)

	_, err = l.Load(ctx, "broken")
	assert.ErrorIs(t, err, loader.ErrUnreadableResource)

	_, err = l.Load(ctx, "bad")
	assert.ErrorIs(t, err, loader.ErrDecodeFailed)
}

func TestRemoteSource_MaxBytes(t *testing.T) {
	srv := newServer(t, map[string]string{"hello": testutils.HelloJSON})
	src, err := remote.New(srv.URL, remote.WithMaxBytes(8))
	require.NoError(t, err)

	_, err = src.Fetch(context.Background(), "hello")
	assert.ErrorContains(t, err, "exceeds")
}

func TestRemoteSource_ContextCanceled(t *testing.T) {
	srv := newServer(t, map[string]string{"hello": testutils.HelloJSON})
	src, err := remote.New(srv.URL)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Fetch(ctx, "hello")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_RejectsScheme(t *testing.T) {
	_, err := remote.New("ftp://example.com")
	assert.Error(t, err)
}
