package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/aretw0/canopy/pkg/tree"
)

// Link is a navigate action from one screen to another.
type Link struct {
	Target string
	// Label is the content of the node carrying the action.
	Label string
}

// Screen is one vertex of the navigation graph.
type Screen struct {
	Name  string
	Links []Link
	// Broken marks a screen that failed to load.
	Broken bool
}

// GraphOverlay highlights screens on the navigation graph.
type GraphOverlay struct {
	Entry   string
	Missing []string
}

// ScreenOf collects the navigate links of a decoded screen in pre-order.
func ScreenOf(name string, root *domain.Node) Screen {
	s := Screen{Name: name}
	tree.Walk(root, func(n *domain.Node, _ int) bool {
		if n.Action != nil && n.Action.Type == domain.ActionNavigate {
			if target := n.Action.Get(domain.PayloadScreen); target != "" {
				s.Links = append(s.Links, Link{Target: target, Label: n.ContentOr("")})
			}
		}
		return true
	})
	return s
}

// GenerateMermaid produces a Mermaid flowchart of how screens link to each other.
// The entry screen is drawn as a circle, broken screens as a hexagon and
// everything else as a rectangle.
func GenerateMermaid(screens []Screen, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	entry := ""
	if overlay != nil {
		entry = overlay.Entry
	}
	for _, s := range screens {
		safeID := sanitizeMermaidID(s.Name)

		opener, closer := "[", "]"
		switch {
		case s.Name == entry:
			opener, closer = "((", "))"
		case s.Broken:
			opener, closer = "{{", "}}"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, s.Name, closer)

		for _, l := range s.Links {
			arrow := "-->"
			if l.Label != "" {
				arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(l.Label))
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, sanitizeMermaidID(l.Target))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef entry fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef missing fill:#ffcdd2,stroke:#c62828,stroke-width:2px,stroke-dasharray:4,color:#000;\n")

		if overlay.Entry != "" {
			fmt.Fprintf(&sb, "    class %s entry;\n", sanitizeMermaidID(overlay.Entry))
		}
		seen := make(map[string]bool)
		for _, name := range overlay.Missing {
			safeID := sanitizeMermaidID(name)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				fmt.Fprintf(&sb, "    class %s missing;\n", safeID)
			}
		}
	}

	return sb.String()
}

// GenerateTree produces a Mermaid flowchart of one screen's node hierarchy:
// containers as rectangles, buttons as subroutines, inputs as parallelograms,
// images as hexagons and leaves as rounded boxes.
func GenerateTree(root *domain.Node) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	// Ids may repeat, so vertices are numbered in pre-order.
	var draw func(n *domain.Node, parent string)
	next := 0
	draw = func(n *domain.Node, parent string) {
		vertex := fmt.Sprintf("n%d", next)
		next++

		opener, closer := "(", ")"
		switch {
		case n.IsContainer():
			opener, closer = "[", "]"
		case n.Type == domain.NodeTypeButton:
			opener, closer = "[[", "]]"
		case n.Type == domain.NodeTypeTextField || n.Type == domain.NodeTypeToggle:
			opener, closer = "[/", "/]"
		case n.Type == domain.NodeTypeImage:
			opener, closer = "{{", "}}"
		}

		label := fmt.Sprintf("%s: %s", n.Type, n.ID)
		if n.Content != nil && *n.Content != "" {
			label += " <br/> " + escapeLabel(*n.Content)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", vertex, opener, label, closer)
		if parent != "" {
			fmt.Fprintf(&sb, "    %s --> %s\n", parent, vertex)
		}
		if n.Action != nil {
			fmt.Fprintf(&sb, "    %s -.-> %s_action>\"%s %s\"]\n", vertex, vertex, n.Action.Type, escapeLabel(describe(n.Action)))
		}
		for i := range n.Children {
			draw(&n.Children[i], vertex)
		}
	}
	if root != nil {
		draw(root, "")
	}
	return sb.String()
}

func describe(a *domain.Action) string {
	switch a.Type {
	case domain.ActionNavigate:
		return a.Get(domain.PayloadScreen)
	case domain.ActionOpenURL:
		return a.Get(domain.PayloadURL)
	}
	return ""
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.ReplaceAll(s, "\n", " ")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
