package tree

import (
	"testing"

	"github.com/aretw0/canopy/pkg/decoder"
	"github.com/aretw0/canopy/pkg/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, s string) *domain.Node {
	t.Helper()
	n, err := decoder.ParseString(s)
	require.NoError(t, err)
	return n
}

const hello = `{"id":"root","type":"stack","stackAxis":"vertical","children":[
	{"id":"t1","type":"text","content":"Hello"},
	{"id":"b1","type":"button","content":"Go","action":{"type":"navigate","payload":{"screen":"Detail"}}}]}`

func TestFindByID(t *testing.T) {
	root := mustParse(t, hello)

	n, ok := FindByID(root, "root")
	require.True(t, ok)
	assert.Same(t, root, n)

	b1, ok := FindByID(root, "b1")
	require.True(t, ok)
	assert.Equal(t, "Detail", b1.Action.Get(domain.PayloadScreen))

	_, ok = FindByID(root, "missing")
	assert.False(t, ok)

	_, ok = FindByID(nil, "root")
	assert.False(t, ok)
}

func TestFindByID_PreOrderFirstMatch(t *testing.T) {
	root := mustParse(t, `{"id":"r","type":"stack","children":[
		{"id":"a","type":"stack","children":[{"id":"dup","type":"text","content":"deep"}]},
		{"id":"dup","type":"text","content":"shallow"}]}`)

	n, ok := FindByID(root, "dup")
	require.True(t, ok)
	assert.Equal(t, "deep", n.ContentOr(""))
}

func TestUpdateContent_EndToEnd(t *testing.T) {
	root := mustParse(t, hello)

	assert.Equal(t, 1, UpdateContent(root, "t1", "Goodbye"))

	t1, ok := FindByID(root, "t1")
	require.True(t, ok)
	assert.Equal(t, "Goodbye", *t1.Content)

	b1, _ := FindByID(root, "b1")
	assert.Equal(t, "Go", *b1.Content)
	assert.Equal(t, "navigate", b1.Action.Type)
}

func TestUpdateContent_FanOut(t *testing.T) {
	root := mustParse(t, `{"id":"x","type":"stack","children":[
		{"id":"x","type":"text","content":"inner"},
		{"id":"y","type":"stack","children":[{"id":"x","type":"text"}]}]}`)

	assert.Equal(t, 3, UpdateContent(root, "x", 42))
	for _, n := range []*domain.Node{root, &root.Children[0], &root.Children[1].Children[0]} {
		assert.Equal(t, "42", n.ContentOr(""))
	}
	assert.Nil(t, root.Children[1].Content)
}

func TestUpdateContent_Rendering(t *testing.T) {
	tests := []struct {
		value any
		want  string
	}{
		{"s", "s"},
		{7, "7"},
		{int64(-3), "-3"},
		{2.5, "2.5"},
		{3.0, "3.0"},
		{true, "true"},
		{nil, ""},
		{domain.IntValue(9), "9"},
	}
	for _, tt := range tests {
		root := &domain.Node{ID: "a", Type: domain.NodeTypeText}
		UpdateContent(root, "a", tt.value)
		assert.Equal(t, tt.want, root.ContentOr("<absent>"), "value %#v", tt.value)
	}
}

func TestUpdateContent_ReplacesChildren(t *testing.T) {
	root := mustParse(t, `{"id":"list","type":"list","children":[{"id":"old","type":"text"}]}`)
	fresh := []domain.Node{
		{ID: "n1", Type: domain.NodeTypeText, Content: domain.Ptr("one")},
		{ID: "list", Type: domain.NodeTypeText},
	}

	assert.Equal(t, 1, UpdateContent(root, "list", fresh))
	assert.Equal(t, []string{"list", "n1", "list"}, IDs(root))
	assert.Nil(t, root.Content, "children replacement leaves content alone")

	fresh[0].Content = domain.Ptr("mutated")
	assert.Equal(t, "one", root.Children[0].ContentOr(""), "children are copied in")

	assert.Equal(t, 1, UpdateContent(root, "list", []*domain.Node{}))
	assert.Nil(t, root.Children)
}

func TestUpdateContent_NoMatch(t *testing.T) {
	root := mustParse(t, hello)
	before := Clone(root)

	assert.Equal(t, 0, UpdateContent(root, "nope", "x"))
	if diff := cmp.Diff(before, root); diff != "" {
		t.Errorf("tree changed without a match:\n%s", diff)
	}
}

func TestClone_Independent(t *testing.T) {
	root := mustParse(t, `{"id":"r","type":"stack","style":{"padding":4,"foregroundColor":"#FFF"},
		"properties":{"k":"v"},"children":[{"id":"b","type":"button","action":{"type":"t","payload":{"a":"1"}}}]}`)
	c := Clone(root)
	require.Empty(t, cmp.Diff(root, c))

	*c.Style.Padding = 99
	*c.Style.ForegroundColor = "#000"
	c.Children[0].Action.Payload["a"] = "2"
	c.Properties["k"] = domain.IntValue(1)

	assert.Equal(t, 4.0, *root.Style.Padding)
	assert.Equal(t, "#FFF", *root.Style.ForegroundColor)
	assert.Equal(t, "1", root.Children[0].Action.Payload["a"])
	assert.Equal(t, "v", root.Properties["k"].String())
}

func TestWalkHelpers(t *testing.T) {
	root := mustParse(t, `{"id":"r","type":"stack","children":[
		{"id":"a","type":"stack","children":[{"id":"c","type":"text"}]},
		{"id":"c","type":"text"}]}`)

	assert.Equal(t, 4, Count(root))
	assert.Equal(t, map[string]int{"c": 2}, Duplicates(root))

	var visited []string
	Walk(root, func(n *domain.Node, depth int) bool {
		visited = append(visited, n.ID)
		return n.ID != "a"
	})
	assert.Equal(t, []string{"r", "a", "c"}, visited)
}
