package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/canopy/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI against a fresh command tree and returns stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// workspace moves into an empty directory holding the screens.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "home.json"), []byte(testutils.HelloJSON), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Detail.json"),
		[]byte(`{"id":"d","type":"text","content":"Details"}`), 0o644))
	return dir
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "canopy version "))
}

func TestFindAndRender(t *testing.T) {
	workspace(t)

	out, err := execute(t, "", "find", "home", "t1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"t1","type":"text","content":"Hello"}`, out)

	_, err = execute(t, "", "find", "home", "ghost")
	assert.ErrorContains(t, err, "node not found")

	out, err = execute(t, "", "render", "home", "--plain", "--width", "40")
	require.NoError(t, err)
	assert.Contains(t, out, "Hello")
	assert.Contains(t, out, "( Go )", "navigate has no handler outside the runner")
}

func TestPutAndPatch(t *testing.T) {
	dir := workspace(t)

	out, err := execute(t, `{"id":"s","type":"stack","children":[{"id":"msg","type":"text","content":"Hi"}]}`, "put", "promo")
	require.NoError(t, err)
	assert.Contains(t, out, "stored promo (2 nodes)")
	assert.FileExists(t, filepath.Join(dir, "promo.json"))

	_, err = execute(t, `{"id":"x","type":"hologram"}`, "put", "broken")
	assert.Error(t, err)

	out, err = execute(t, "", "patch", "promo", "--id", "msg", "--text", "Bye")
	require.NoError(t, err)
	assert.Contains(t, out, "patched promo: 1 matches")

	out, err = execute(t, `[{"id":"s","value":[{"id":"n","type":"text","content":"New"}]}]`, "patch", "promo", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "1 matches")

	out, err = execute(t, "", "find", "promo", "n")
	require.NoError(t, err)
	assert.Contains(t, out, "New")

	_, err = execute(t, `[]`, "patch", "promo")
	assert.ErrorContains(t, err, "invalid patches")
}

func TestValidate(t *testing.T) {
	dir := workspace(t)

	out, err := execute(t, "", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "2 screens are valid!")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "lost.json"),
		[]byte(`{"id":"b","type":"button","action":{"type":"navigate","payload":{"screen":"nowhere"}}}`), 0o644))
	out, err = execute(t, "", "validate", "lost")
	assert.ErrorContains(t, err, "validation failed: 1 errors")
	assert.Contains(t, out, "nowhere: missing screen, linked from lost")
}

func TestValidate_Schemas(t *testing.T) {
	workspace(t)
	schemas := filepath.Join(t.TempDir(), "schemas.json")
	require.NoError(t, os.WriteFile(schemas, []byte(`{"text": {"tone": "string"}}`), 0o644))

	out, err := execute(t, "", "validate", "--schemas", schemas)
	assert.ErrorContains(t, err, "validation failed")
	assert.Contains(t, out, `error: home#t1: property field "tone": required`)

	out, err = execute(t, "", "validate", "--schemas", schemas, "--print-schemas")
	require.NoError(t, err)
	assert.Contains(t, out, `"tone": "string"`)
	assert.Contains(t, out, `"placeholder": "string?"`)
}

func TestGraph(t *testing.T) {
	workspace(t)

	out, err := execute(t, "", "graph")
	require.NoError(t, err)
	assert.Contains(t, out, `home(("home"))`)
	assert.Contains(t, out, `home -- "Go" --> Detail`)

	out, err = execute(t, "", "graph", "home")
	require.NoError(t, err)
	assert.Contains(t, out, `n0["stack: root"]`)
}

func TestRunHeadless(t *testing.T) {
	workspace(t)

	out, err := execute(t, "b1\nback\nquit\n", "run", "--headless")
	require.NoError(t, err)
	assert.Contains(t, out, "Details")
	assert.Equal(t, 2, strings.Count(out, "Hello"))

	_, err = execute(t, "", "run", "--headless", "--watch")
	assert.ErrorContains(t, err, "cannot be used together")
}

func TestUnknownSource(t *testing.T) {
	workspace(t)
	_, err := execute(t, "", "find", "home", "t1", "--source", "tape")
	assert.ErrorContains(t, err, "unknown source kind")
}
