package render

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/tree"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
)

// ContentRenderer transforms text content before it is laid out, for
// example markdown through glamour.
type ContentRenderer func(string) (string, error)

// Terminal lays a tree out as plain lines, optionally coloured.
type Terminal struct {
	profile    termenv.Profile
	content    ContentRenderer
	actionable func(*domain.Action) bool
	width      int
}

type Option func(*Terminal)

// WithProfile sets the colour profile. The default is Ascii (no colour).
func WithProfile(p termenv.Profile) Option {
	return func(t *Terminal) { t.profile = p }
}

// WithContentRenderer post-processes text nodes.
func WithContentRenderer(r ContentRenderer) Option {
	return func(t *Terminal) { t.content = r }
}

// WithActionable decides whether a button is drawn as live. By default any
// button carrying an action is live.
func WithActionable(fn func(*domain.Action) bool) Option {
	return func(t *Terminal) { t.actionable = fn }
}

// WithWidth wraps text nodes at width columns. Zero disables wrapping.
func WithWidth(width int) Option {
	return func(t *Terminal) { t.width = width }
}

// NewTerminal creates a terminal renderer.
func NewTerminal(opts ...Option) *Terminal {
	t := &Terminal{
		profile:    termenv.Ascii,
		actionable: func(a *domain.Action) bool { return a != nil },
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Render returns the tree as text, one screen line per line.
func (t *Terminal) Render(root *domain.Node) (string, error) {
	if root == nil {
		return "", errors.New("nothing to render")
	}
	lines, err := t.node(root)
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n") + "\n", nil
}

func (t *Terminal) node(n *domain.Node) ([]string, error) {
	style := Resolve(n.Style)
	switch n.Type {
	case domain.NodeTypeText:
		return t.text(n.ContentOr(""), style)
	case domain.NodeTypeImage:
		return []string{t.paint(imageLabel(n.Content), style)}, nil
	case domain.NodeTypeButton:
		label := n.ContentOr("")
		if t.actionable(n.Action) {
			return []string{t.paint("[ "+label+" ]", style)}, nil
		}
		return []string{t.paint("( "+label+" )", style)}, nil
	case domain.NodeTypeSpacer:
		return []string{""}, nil
	case domain.NodeTypeTextField:
		var props domain.TextFieldProperties
		if err := domain.DecodeProperties(n.Properties, &props); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
		value := props.Text
		if value == "" {
			value = t.profile.String(props.Placeholder).Faint().String()
		}
		return []string{"[" + value + "_]"}, nil
	case domain.NodeTypeToggle:
		var props domain.ToggleProperties
		if err := domain.DecodeProperties(n.Properties, &props); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
		box := "[ ]"
		if props.IsOn {
			box = "[x]"
		}
		return []string{t.paint(box+" "+props.Title, style)}, nil
	case domain.NodeTypeStack, domain.NodeTypeList, domain.NodeTypeScroll:
		return t.container(n, style)
	}
	return nil, &domain.UnknownValueError{Field: "type", Value: string(n.Type)}
}

func (t *Terminal) container(n *domain.Node, style Resolved) ([]string, error) {
	blocks := make([][]string, 0, len(n.Children))
	for i := range n.Children {
		lines, err := t.node(&n.Children[i])
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, lines)
	}
	if n.Axis() == domain.AxisHorizontal {
		return joinHorizontal(blocks, gap(style.Spacing)), nil
	}

	align := domain.AlignCenter
	if n.Type == domain.NodeTypeStack && n.StackAlignment != nil {
		align = *n.StackAlignment
	}
	var lines []string
	for _, b := range blocks {
		lines = append(lines, b...)
	}
	return alignLines(lines, align), nil
}

func (t *Terminal) text(s string, style Resolved) ([]string, error) {
	if t.content != nil {
		out, err := t.content(s)
		if err != nil {
			return nil, err
		}
		s = strings.Trim(out, "\n")
	}
	if t.width > 0 {
		s = wordwrap.String(s, t.width)
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = t.paint(l, style)
	}
	return lines, nil
}

func (t *Terminal) paint(s string, style Resolved) string {
	if t.profile == termenv.Ascii || s == "" {
		return s
	}
	out := t.profile.String(s)
	if style.HasForeground {
		out = out.Foreground(t.profile.Color(style.Foreground.Hex()))
	}
	if style.HasBackground {
		out = out.Background(t.profile.Color(style.Background.Hex()))
	}
	switch {
	case style.IsHeavy():
		out = out.Bold()
	case style.IsLight():
		out = out.Faint()
	}
	return out.String()
}

// imageLabel mirrors the host rule: http(s) content is a remote image,
// anything else names a symbol, and no content falls back to "photo".
func imageLabel(content *string) string {
	switch {
	case content == nil:
		return "[symbol: photo]"
	case strings.HasPrefix(*content, "http"):
		return "[image: " + *content + "]"
	}
	return "[symbol: " + *content + "]"
}

func gap(spacing float64) int {
	return 1 + int(length(spacing))/8
}

func joinHorizontal(blocks [][]string, gap int) []string {
	height := 0
	widths := make([]int, len(blocks))
	for i, b := range blocks {
		height = max(height, len(b))
		for _, l := range b {
			widths[i] = max(widths[i], ansi.PrintableRuneWidth(l))
		}
	}
	sep := strings.Repeat(" ", gap)
	out := make([]string, height)
	for row := 0; row < height; row++ {
		cells := make([]string, len(blocks))
		// Shorter blocks are centred vertically.
		for i, b := range blocks {
			offset := (height - len(b)) / 2
			cell := ""
			if idx := row - offset; idx >= 0 && idx < len(b) {
				cell = b[idx]
			}
			cells[i] = pad(cell, widths[i])
		}
		out[row] = strings.TrimRight(strings.Join(cells, sep), " ")
	}
	return out
}

func alignLines(lines []string, align domain.Alignment) []string {
	width := 0
	for _, l := range lines {
		width = max(width, ansi.PrintableRuneWidth(l))
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		slack := width - ansi.PrintableRuneWidth(l)
		switch align {
		case domain.AlignTrailing:
			out[i] = strings.Repeat(" ", slack) + l
		case domain.AlignCenter:
			out[i] = strings.Repeat(" ", slack/2) + l
		default:
			out[i] = l
		}
	}
	return out
}

func pad(s string, width int) string {
	return s + strings.Repeat(" ", max(0, width-ansi.PrintableRuneWidth(s)))
}

// Dispatcher receives activated actions.
type Dispatcher interface {
	Dispatch(ctx context.Context, a domain.Action) error
}

// ErrNoAction is returned by Activate when the node has no action.
var ErrNoAction = errors.New("node has no action")

// Activate delivers the action of the node with the given id, as a tap would.
func Activate(ctx context.Context, root *domain.Node, id string, d Dispatcher) error {
	n, ok := tree.FindByID(root, id)
	if !ok {
		return fmt.Errorf("node %q not found", id)
	}
	if n.Action == nil {
		return fmt.Errorf("%w: %s", ErrNoAction, n)
	}
	return d.Dispatch(ctx, *n.Action.Clone())
}

// Actions lists every node that carries an action, in pre-order.
func Actions(root *domain.Node) []*domain.Node {
	var out []*domain.Node
	tree.Walk(root, func(n *domain.Node, _ int) bool {
		if n.Action != nil {
			out = append(out, n)
		}
		return true
	})
	return out
}
