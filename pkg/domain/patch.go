package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Patch targets every node whose id matches ID.
//
// When Children is non-nil the matched nodes get their children replaced
// wholesale. Otherwise Text becomes their content.
type Patch struct {
	ID       string
	Text     string
	Children []Node
}

// TextPatch builds a content replacement.
func TextPatch(id, text string) Patch {
	return Patch{ID: id, Text: text}
}

// ChildrenPatch builds a children replacement. A nil slice is treated as empty.
func ChildrenPatch(id string, children []Node) Patch {
	if children == nil {
		children = []Node{}
	}
	return Patch{ID: id, Children: children}
}

// ReplacesChildren reports whether the patch swaps children instead of content.
func (p Patch) ReplacesChildren() bool {
	return p.Children != nil
}

type wirePatch struct {
	ID    string          `json:"id"`
	Value json.RawMessage `json:"value"`
}

// UnmarshalJSON decodes {"id": ..., "value": ...}. An array value is read as
// a sequence of nodes; any other value is rendered to its content string.
func (p *Patch) UnmarshalJSON(data []byte) error {
	var w wirePatch
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.ID == "" {
		return &MissingFieldError{Field: "id"}
	}
	raw := bytes.TrimSpace(w.Value)
	if len(raw) > 0 && raw[0] == '[' {
		var children []Node
		if err := json.Unmarshal(raw, &children); err != nil {
			return fmt.Errorf("patch %q: %w", w.ID, err)
		}
		*p = ChildrenPatch(w.ID, children)
		return nil
	}
	var v Value
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("patch %q: %w", w.ID, err)
		}
	}
	*p = TextPatch(w.ID, v.String())
	return nil
}

func (p Patch) MarshalJSON() ([]byte, error) {
	if p.ReplacesChildren() {
		return json.Marshal(struct {
			ID    string `json:"id"`
			Value []Node `json:"value"`
		}{p.ID, p.Children})
	}
	return json.Marshal(struct {
		ID    string `json:"id"`
		Value string `json:"value"`
	}{p.ID, p.Text})
}
