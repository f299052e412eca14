package dsl

import "github.com/aretw0/canopy/pkg/domain"

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node     domain.Node
	children []*NodeBuilder
}

func newNode(id string, t domain.NodeType) *NodeBuilder {
	return &NodeBuilder{node: domain.Node{ID: id, Type: t}}
}

// Text creates a text node.
func Text(id, content string) *NodeBuilder {
	return newNode(id, domain.NodeTypeText).Content(content)
}

// Image creates an image node. src is a URL or a symbol name.
func Image(id, src string) *NodeBuilder {
	return newNode(id, domain.NodeTypeImage).Content(src)
}

// Button creates a button labelled with label. Attach its action with
// Action, Navigate or OpenURL.
func Button(id, label string) *NodeBuilder {
	return newNode(id, domain.NodeTypeButton).Content(label)
}

// Spacer creates a flexible gap.
func Spacer(id string) *NodeBuilder {
	return newNode(id, domain.NodeTypeSpacer)
}

// Stack creates a stack container. The axis defaults to vertical on the host.
func Stack(id string, children ...*NodeBuilder) *NodeBuilder {
	return newNode(id, domain.NodeTypeStack).Children(children...)
}

// List creates a list container.
func List(id string, children ...*NodeBuilder) *NodeBuilder {
	return newNode(id, domain.NodeTypeList).Children(children...)
}

// Scroll creates a scroll container.
func Scroll(id string, children ...*NodeBuilder) *NodeBuilder {
	return newNode(id, domain.NodeTypeScroll).Children(children...)
}

// TextField creates an editable text field.
func TextField(id, placeholder string) *NodeBuilder {
	return newNode(id, domain.NodeTypeTextField).Property("placeholder", domain.StringValue(placeholder))
}

// Toggle creates a switch with a title.
func Toggle(id, title string, isOn bool) *NodeBuilder {
	return newNode(id, domain.NodeTypeToggle).
		Property("title", domain.StringValue(title)).
		Property("isOn", domain.BoolValue(isOn))
}

// Content sets the node content.
func (n *NodeBuilder) Content(s string) *NodeBuilder {
	n.node.SetContent(s)
	return n
}

// Children appends children to the node.
func (n *NodeBuilder) Children(children ...*NodeBuilder) *NodeBuilder {
	n.children = append(n.children, children...)
	return n
}

// Horizontal lays a stack or scroll out left to right.
func (n *NodeBuilder) Horizontal() *NodeBuilder {
	return n.axis(domain.AxisHorizontal)
}

// Vertical lays a stack or scroll out top to bottom.
func (n *NodeBuilder) Vertical() *NodeBuilder {
	return n.axis(domain.AxisVertical)
}

func (n *NodeBuilder) axis(a domain.Axis) *NodeBuilder {
	if n.node.Type == domain.NodeTypeScroll {
		n.node.ScrollAxis = &a
	} else {
		n.node.StackAxis = &a
	}
	return n
}

// Align sets the cross-axis alignment of a stack.
func (n *NodeBuilder) Align(a domain.Alignment) *NodeBuilder {
	n.node.StackAlignment = &a
	return n
}

// Indicators shows scroll indicators.
func (n *NodeBuilder) Indicators(show bool) *NodeBuilder {
	n.node.ShowIndicators = show
	return n
}

// Action attaches an arbitrary action.
func (n *NodeBuilder) Action(actionType string, payload map[string]string) *NodeBuilder {
	if payload == nil {
		payload = map[string]string{}
	}
	n.node.Action = &domain.Action{Type: actionType, Payload: payload}
	return n
}

// Navigate attaches a navigate action to screen.
func (n *NodeBuilder) Navigate(screen string) *NodeBuilder {
	return n.Action(domain.ActionNavigate, map[string]string{domain.PayloadScreen: screen})
}

// OpenURL attaches an openURL action.
func (n *NodeBuilder) OpenURL(url string) *NodeBuilder {
	return n.Action(domain.ActionOpenURL, map[string]string{domain.PayloadURL: url})
}

// Property sets one entry of the property bag.
func (n *NodeBuilder) Property(key string, v domain.Value) *NodeBuilder {
	if n.node.Properties == nil {
		n.node.Properties = make(map[string]domain.Value)
	}
	n.node.Properties[key] = v
	return n
}

// Style applies fn to the node style, creating it if needed.
func (n *NodeBuilder) Style(fn func(*domain.Style)) *NodeBuilder {
	if n.node.Style == nil {
		n.node.Style = &domain.Style{}
	}
	fn(n.node.Style)
	return n
}

func (n *NodeBuilder) Padding(v float64) *NodeBuilder {
	return n.Style(func(s *domain.Style) { s.Padding = &v })
}

func (n *NodeBuilder) Spacing(v float64) *NodeBuilder {
	return n.Style(func(s *domain.Style) { s.Spacing = &v })
}

func (n *NodeBuilder) Foreground(hex string) *NodeBuilder {
	return n.Style(func(s *domain.Style) { s.ForegroundColor = &hex })
}

func (n *NodeBuilder) Background(hex string) *NodeBuilder {
	return n.Style(func(s *domain.Style) { s.BackgroundColor = &hex })
}

func (n *NodeBuilder) FontSize(v float64) *NodeBuilder {
	return n.Style(func(s *domain.Style) { s.FontSize = &v })
}

func (n *NodeBuilder) FontWeight(w int) *NodeBuilder {
	return n.Style(func(s *domain.Style) { s.FontWeight = &w })
}

func (n *NodeBuilder) CornerRadius(v float64) *NodeBuilder {
	return n.Style(func(s *domain.Style) { s.CornerRadius = &v })
}

func (n *NodeBuilder) Frame(width, height float64) *NodeBuilder {
	return n.Style(func(s *domain.Style) { s.Width, s.Height = &width, &height })
}

// Build returns the underlying domain.Node with its children built.
// Builders can be reused; every Build returns an independent tree.
func (n *NodeBuilder) Build() domain.Node {
	out := n.node
	if n.node.Action != nil {
		out.Action = n.node.Action.Clone()
	}
	if n.node.Style != nil {
		s := *n.node.Style
		out.Style = &s
	}
	if n.node.Properties != nil {
		out.Properties = make(map[string]domain.Value, len(n.node.Properties))
		for k, v := range n.node.Properties {
			out.Properties[k] = v
		}
	}
	out.Children = nil
	for _, c := range n.children {
		out.Children = append(out.Children, c.Build())
	}
	return out
}
