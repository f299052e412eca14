package http_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/canopy/internal/testutils"
	canopyhttp "github.com/aretw0/canopy/pkg/adapters/http"
	"github.com/aretw0/canopy/pkg/adapters/memory"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/screen"
	"github.com/aretw0/canopy/pkg/tree"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, opts ...canopyhttp.Option) (*httptest.Server, *screen.Manager) {
	t.Helper()
	store := memory.NewStore(map[string]string{
		"hello":  testutils.HelloJSON,
		"broken": `{"id":"x"}`,
	})
	mgr := screen.NewManager(store)
	srv := httptest.NewServer(canopyhttp.NewHandler(mgr, opts...))
	t.Cleanup(srv.Close)
	return srv, mgr
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestServer_HealthAndInfo(t *testing.T) {
	srv, _ := newServer(t)

	resp, _ := do(t, http.MethodGet, srv.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, http.MethodGet, srv.URL+"/info", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var info map[string]any
	require.NoError(t, json.Unmarshal(body, &info))
	assert.Equal(t, "canopy-http", info["app"])
	assert.NotEmpty(t, info["version"])
	assert.NotEqual(t, "unknown", info["api_version"])
	assert.EqualValues(t, domain.SchemaVersion, info["schema_version"])
}

func TestServer_OpenAPIDocument(t *testing.T) {
	swagger, err := canopyhttp.GetSwagger()
	require.NoError(t, err)
	assert.Contains(t, swagger.Paths.Map(), "/screens/{name}/patches")

	srv, _ := newServer(t)
	resp, body := do(t, http.MethodGet, srv.URL+"/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "openapi:")
}

func TestServer_GetScreen(t *testing.T) {
	srv, _ := newServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/screens/hello", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0", resp.Header.Get("X-Canopy-Version"))
	var root domain.Node
	require.NoError(t, json.Unmarshal(body, &root))
	assert.Equal(t, "root", root.ID)
	assert.Len(t, root.Children, 2)

	resp, _ = do(t, http.MethodGet, srv.URL+"/screens/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, srv.URL+"/screens/broken", "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestServer_GetNode(t *testing.T) {
	srv, _ := newServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/screens/hello/nodes/b1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var n domain.Node
	require.NoError(t, json.Unmarshal(body, &n))
	assert.Equal(t, domain.NodeTypeButton, n.Type)
	require.NotNil(t, n.Action)
	assert.Equal(t, "Detail", n.Action.Get("screen"))

	resp, _ = do(t, http.MethodGet, srv.URL+"/screens/hello/nodes/nope", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_ListPutDelete(t *testing.T) {
	srv, _ := newServer(t)

	resp, _ := do(t, http.MethodPut, srv.URL+"/screens/extra", `{"id":"s","type":"spacer"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("X-Canopy-Version"))

	resp, _ = do(t, http.MethodPut, srv.URL+"/screens/bad", `{"id":"s"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := do(t, http.MethodGet, srv.URL+"/screens", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct{ Screens []string }
	require.NoError(t, json.Unmarshal(body, &list))
	assert.Equal(t, []string{"broken", "extra", "hello"}, list.Screens)

	resp, _ = do(t, http.MethodDelete, srv.URL+"/screens/extra", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, http.MethodGet, srv.URL+"/screens/extra", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_Patch(t *testing.T) {
	srv, mgr := newServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/screens/hello/patches", `{"id":"t1","value":"World"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var res canopyhttp.PatchResult
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, 1, res.Matches)
	assert.EqualValues(t, 1, res.Version)

	resp, body = do(t, http.MethodPost, srv.URL+"/screens/hello/patches",
		`[{"id":"t1","value":42},{"id":"root","value":[{"id":"n","type":"text","content":"new"}]}]`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Equal(t, 2, res.Matches)

	root, err := mgr.Get(context.Background(), "hello")
	require.NoError(t, err)
	require.Len(t, root.Children, 1)
	assert.Equal(t, "new", root.Children[0].ContentOr(""))
	_, ok := tree.FindByID(root, "t1")
	assert.False(t, ok, "children replaced wholesale")
}

func TestServer_PatchRejections(t *testing.T) {
	srv, _ := newServer(t, canopyhttp.WithMaxTextSize(8))

	cases := map[string]struct {
		screen string
		body   string
		status int
	}{
		"malformed":   {"hello", `{"id":`, http.StatusBadRequest},
		"missing id":  {"hello", `{"value":"x"}`, http.StatusBadRequest},
		"empty array": {"hello", `[]`, http.StatusBadRequest},
		"oversize":    {"hello", `{"id":"t1","value":"way too long"}`, http.StatusBadRequest},
		"no screen":   {"missing", `{"id":"t1","value":"x"}`, http.StatusNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp, _ := do(t, http.MethodPost, srv.URL+"/screens/"+tc.screen+"/patches", tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestServer_ReadOnly(t *testing.T) {
	srv, _ := newServer(t, canopyhttp.WithReadOnly())

	resp, _ := do(t, http.MethodPost, srv.URL+"/screens/hello/patches", `{"id":"t1","value":"x"}`)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	resp, _ = do(t, http.MethodGet, srv.URL+"/screens/hello", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_CORS(t *testing.T) {
	srv, _ := newServer(t)
	resp, _ := do(t, http.MethodOptions, srv.URL+"/screens/hello", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServer_Metrics(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { io.WriteString(w, "canopy_loads_total 1\n") })
	srv, _ := newServer(t, canopyhttp.WithMetrics(h))
	_, body := do(t, http.MethodGet, srv.URL+"/metrics", "")
	assert.Contains(t, string(body), "canopy_loads_total")
}

func TestServer_Events(t *testing.T) {
	srv, mgr := newServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/screens/hello/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: ping\n", line)

	_, _, err = mgr.Patch(context.Background(), "hello", domain.TextPatch("t1", "streamed"))
	require.NoError(t, err)

	var data string
	for data == "" {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, "data: {") {
			data = strings.TrimPrefix(strings.TrimSpace(line), "data: ")
		}
	}
	var u screen.Update
	require.NoError(t, json.Unmarshal([]byte(data), &u))
	assert.Equal(t, screen.Patched, u.Kind)
	assert.Equal(t, "hello", u.Screen)
	require.Len(t, u.Patches, 1)
	assert.Equal(t, "streamed", u.Patches[0].Text)
}

func TestServer_WebSocket(t *testing.T) {
	srv, _ := newServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/screens/hello/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var msg map[string]any
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "pong", msg["type"])

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "patch",
		"patches": []map[string]any{{"id": "t1", "value": "live"}},
	}))

	// The broadcast and the ack may arrive in either order.
	seen := map[string]map[string]any{}
	for len(seen) < 2 {
		msg = nil
		require.NoError(t, conn.ReadJSON(&msg))
		seen[msg["type"].(string)] = msg
	}
	require.Contains(t, seen, "ack")
	assert.EqualValues(t, 1, seen["ack"]["matches"])
	require.Contains(t, seen, "patch")
	update := seen["patch"]["update"].(map[string]any)
	assert.Equal(t, "hello", update["screen"])

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "bogus"}))
	msg = nil
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "error", msg["type"])
	assert.Equal(t, "unknown_type", msg["code"])
}

func TestServer_WebSocketBadPatchKeepsSocket(t *testing.T) {
	srv, _ := newServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/screens/hello/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	bad := []string{
		`{"type":"patch","patches":[{"id":"r","value":[{"id":"x","type":"hologram"}]}]}`,
		`{"type":"patch","patches":[]}`,
		`{"type":"patch","patches":`,
	}
	for _, frame := range bad {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(frame)))
		var msg map[string]any
		require.NoError(t, conn.ReadJSON(&msg), frame)
		assert.Equal(t, "error", msg["type"], frame)
		assert.Equal(t, "bad_request", msg["code"], frame)
	}

	// The connection is still usable.
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "pong", msg["type"])
}
