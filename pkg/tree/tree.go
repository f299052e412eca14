package tree

import (
	"fmt"
	"strconv"

	"github.com/aretw0/canopy/pkg/domain"
)

// FindByID returns the first node with the given id in pre-order
// (the node itself, then each child subtree in order).
// A missing id is not an error.
func FindByID(root *domain.Node, id string) (*domain.Node, bool) {
	if root == nil {
		return nil, false
	}
	if root.ID == id {
		return root, true
	}
	for i := range root.Children {
		if n, ok := FindByID(&root.Children[i], id); ok {
			return n, true
		}
	}
	return nil, false
}

// UpdateContent rewrites every node whose id matches.
//
// A []domain.Node (or []*domain.Node) value replaces the children of each
// match wholesale. Any other value becomes the content, rendered by Render.
// Matches nested inside other matches are updated as well. It returns the
// number of nodes updated.
func UpdateContent(root *domain.Node, id string, value any) int {
	switch v := value.(type) {
	case []domain.Node:
		return ApplyPatch(root, domain.ChildrenPatch(id, v))
	case []*domain.Node:
		children := make([]domain.Node, 0, len(v))
		for _, c := range v {
			if c != nil {
				children = append(children, *c)
			}
		}
		return ApplyPatch(root, domain.ChildrenPatch(id, children))
	case domain.Patch:
		return ApplyPatch(root, v)
	}
	return ApplyPatch(root, domain.TextPatch(id, Render(value)))
}

// ApplyPatch applies p to every matching node and returns the match count.
// Replacement children are deep-copied per match so matches never share
// state, and they are not searched again.
func ApplyPatch(root *domain.Node, p domain.Patch) int {
	if root == nil {
		return 0
	}
	count := 0
	if root.ID == p.ID {
		count++
		if p.ReplacesChildren() {
			root.Children = cloneChildren(p.Children)
			if len(root.Children) == 0 {
				root.Children = nil
			}
			return count
		}
		root.SetContent(p.Text)
	}
	for i := range root.Children {
		count += ApplyPatch(&root.Children[i], p)
	}
	return count
}

// Render converts an update value to node content.
func Render(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float32:
		return domain.FormatDouble(float64(v))
	case float64:
		return domain.FormatDouble(v)
	case domain.Value:
		return v.String()
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(value)
}

// Walk visits nodes in pre-order. Returning false from fn skips the
// node's children.
func Walk(root *domain.Node, fn func(n *domain.Node, depth int) bool) {
	walk(root, 0, fn)
}

func walk(n *domain.Node, depth int, fn func(*domain.Node, int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	for i := range n.Children {
		walk(&n.Children[i], depth+1, fn)
	}
}

// IDs lists every id in pre-order, duplicates included.
func IDs(root *domain.Node) []string {
	var ids []string
	Walk(root, func(n *domain.Node, _ int) bool {
		ids = append(ids, n.ID)
		return true
	})
	return ids
}

// Count returns the number of nodes in the tree.
func Count(root *domain.Node) int {
	c := 0
	Walk(root, func(*domain.Node, int) bool { c++; return true })
	return c
}

// Duplicates returns ids that appear more than once with their occurrence count.
func Duplicates(root *domain.Node) map[string]int {
	seen := make(map[string]int)
	Walk(root, func(n *domain.Node, _ int) bool {
		seen[n.ID]++
		return true
	})
	dups := make(map[string]int)
	for id, c := range seen {
		if c > 1 {
			dups[id] = c
		}
	}
	return dups
}

// Clone returns a deep copy of the tree.
func Clone(root *domain.Node) *domain.Node {
	if root == nil {
		return nil
	}
	c := cloneNode(*root)
	return &c
}

func cloneNode(n domain.Node) domain.Node {
	out := n
	if n.Content != nil {
		out.Content = domain.Ptr(*n.Content)
	}
	if n.Style != nil {
		s := *n.Style
		out.Style = &s
		cloneStylePointers(out.Style)
	}
	out.Action = n.Action.Clone()
	if n.StackAxis != nil {
		out.StackAxis = domain.Ptr(*n.StackAxis)
	}
	if n.StackAlignment != nil {
		out.StackAlignment = domain.Ptr(*n.StackAlignment)
	}
	if n.ScrollAxis != nil {
		out.ScrollAxis = domain.Ptr(*n.ScrollAxis)
	}
	if n.Properties != nil {
		out.Properties = make(map[string]domain.Value, len(n.Properties))
		for k, v := range n.Properties {
			out.Properties[k] = v
		}
	}
	out.Children = cloneChildren(n.Children)
	return out
}

func cloneChildren(children []domain.Node) []domain.Node {
	if children == nil {
		return nil
	}
	out := make([]domain.Node, len(children))
	for i := range children {
		out[i] = cloneNode(children[i])
	}
	return out
}

func cloneStylePointers(s *domain.Style) {
	dupF := func(p **float64) {
		if *p != nil {
			*p = domain.Ptr(**p)
		}
	}
	dupF(&s.Padding)
	dupF(&s.Spacing)
	dupF(&s.CornerRadius)
	dupF(&s.FontSize)
	dupF(&s.Width)
	dupF(&s.Height)
	if s.BackgroundColor != nil {
		s.BackgroundColor = domain.Ptr(*s.BackgroundColor)
	}
	if s.ForegroundColor != nil {
		s.ForegroundColor = domain.Ptr(*s.ForegroundColor)
	}
	if s.FontWeight != nil {
		s.FontWeight = domain.Ptr(*s.FontWeight)
	}
	if s.Alignment != nil {
		s.Alignment = domain.Ptr(*s.Alignment)
	}
}
