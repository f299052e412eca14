package validator

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/canopy/internal/testutils"
	"github.com/aretw0/canopy/pkg/adapters/memory"
	"github.com/aretw0/canopy/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nav(id, target string) string {
	return `{"id":"` + id + `","type":"button","content":"Go","action":{"type":"navigate","payload":{"screen":"` + target + `"}}}`
}

func TestValidateScreens(t *testing.T) {
	// Scenario A: home -> a -> b, every link resolves.
	src := memory.NewStore(map[string]string{
		"home": nav("h", "a"),
		"a":    nav("to-b", "b"),
		"b":    `{"id":"end","type":"text","content":"The end"}`,
	})
	report, err := ValidateScreens(context.Background(), src, []string{"home"})
	require.NoError(t, err)
	assert.Equal(t, []string{"home", "a", "b"}, report.Screens)
	assert.NoError(t, report.Err())

	// Scenario B: a broken link.
	broken := memory.NewStore(map[string]string{"start": nav("s", "ghost")})
	report, err = ValidateScreens(context.Background(), broken, []string{"start"})
	require.NoError(t, err)
	require.Error(t, report.Err())
	assert.Contains(t, report.Err().Error(), "ghost: missing screen, linked from start")
	assert.Equal(t, 1, report.Errors())
}

func TestValidateScreens_UndecodableScreen(t *testing.T) {
	src := memory.NewStore(map[string]string{"home": `{"id":"x","type":"hologram"}`})
	report, err := ValidateScreens(context.Background(), src, []string{"home"})
	require.NoError(t, err)
	require.Len(t, report.Findings, 1)
	assert.Contains(t, report.Findings[0].Message, "decode failed")
}

func TestValidateScreens_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := ValidateScreens(ctx, memory.NewStore(nil), []string{"home"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLintNode(t *testing.T) {
	root := testutils.MustParse(t, `{"id":"root","type":"stack","children":[
		{"id":"dup","type":"text","content":"a","style":{"foregroundColor":"#12","fontWeight":650}},
		{"id":"dup","type":"text","content":"b"},
		{"id":"img","type":"image","children":[{"id":"lost","type":"text"}]},
		{"id":"share","type":"button","action":{"type":"share","payload":{}}},
		{"id":"nav","type":"button","action":{"type":"navigate","payload":{}}},
		{"id":"tf","type":"textField","properties":{"placeholder":7}}
	]}`)

	findings := LintNode("home", root)
	var got []string
	for _, f := range findings {
		got = append(got, f.String())
	}
	joined := strings.Join(got, "\n")

	assert.Contains(t, joined, `warning: home#dup: id used by 2 nodes`)
	assert.Contains(t, joined, `warning: home#dup: foregroundColor "#12"`)
	assert.Contains(t, joined, `warning: home#dup: fontWeight 650`)
	assert.Contains(t, joined, `warning: home#img: image does not lay out children, 1 ignored`)
	assert.Contains(t, joined, `warning: home#share: action "share" has no known handler`)
	assert.Contains(t, joined, `error: home#nav: navigate action without "screen"`)
	assert.Contains(t, joined, `error: home#tf: property field "placeholder"`)

	quiet := LintNode("home", root, WithKnownActions("share"))
	for _, f := range quiet {
		assert.NotEqual(t, "share", f.NodeID)
	}
}

func TestLinks(t *testing.T) {
	root := testutils.MustParse(t, `{"id":"r","type":"stack","children":[`+
		nav("a", "detail")+`,`+nav("b", "detail")+`,`+nav("c", "about")+`]}`)
	assert.Equal(t, []string{"detail", "about"}, Links(root))
}

func TestLintNode_WithSchemas(t *testing.T) {
	root := testutils.MustParse(t, `{"id":"t","type":"text","content":"a","properties":{"tone":3}}`)
	assert.Empty(t, LintNode("home", root))

	reg, err := schema.ParseRegistry([]byte(`{"text": {"tone": "string"}}`))
	require.NoError(t, err)
	findings := LintNode("home", root, WithSchemas(reg))
	require.Len(t, findings, 1)
	assert.Equal(t, Error, findings[0].Severity)
	assert.Contains(t, findings[0].Message, `"tone"`)
}
