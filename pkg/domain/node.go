package domain

import (
	"encoding/json"
	"fmt"
)

// NodeType identifies the kind of UI element a node describes.
type NodeType string

const (
	NodeTypeText   NodeType = "text"
	NodeTypeImage  NodeType = "image"
	NodeTypeButton NodeType = "button"
	NodeTypeStack  NodeType = "stack"
	NodeTypeSpacer NodeType = "spacer"
	NodeTypeList   NodeType = "list"
	// NodeTypeScroll was added in schema version 2.
	NodeTypeScroll NodeType = "scroll"
	// NodeTypeTextField and NodeTypeToggle were added in schema version 3.
	// Their configuration lives in Node.Properties.
	NodeTypeTextField NodeType = "textField"
	NodeTypeToggle    NodeType = "toggle"
)

// SchemaVersion is the newest schema version this package understands.
const SchemaVersion = 3

// nodeTypeSince records the schema version that introduced each type.
var nodeTypeSince = map[NodeType]int{
	NodeTypeText:      1,
	NodeTypeImage:     1,
	NodeTypeButton:    1,
	NodeTypeStack:     1,
	NodeTypeSpacer:    1,
	NodeTypeList:      1,
	NodeTypeScroll:    2,
	NodeTypeTextField: 3,
	NodeTypeToggle:    3,
}

// NodeTypes returns every known node type in schema order.
func NodeTypes() []NodeType {
	return []NodeType{
		NodeTypeText, NodeTypeImage, NodeTypeButton, NodeTypeStack, NodeTypeSpacer,
		NodeTypeList, NodeTypeScroll, NodeTypeTextField, NodeTypeToggle,
	}
}

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	_, ok := nodeTypeSince[t]
	return ok
}

// Since returns the schema version that introduced t, or 0 if t is unknown.
func (t NodeType) Since() int {
	return nodeTypeSince[t]
}

// IsContainer reports whether nodes of this type lay out their children.
func (t NodeType) IsContainer() bool {
	switch t {
	case NodeTypeStack, NodeTypeList, NodeTypeScroll:
		return true
	}
	return false
}

func (t *NodeType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	nt := NodeType(s)
	if !nt.Valid() {
		return &UnknownValueError{Field: "type", Value: s}
	}
	*t = nt
	return nil
}

// Axis is the layout direction of a stack or scroll container.
type Axis string

const (
	AxisHorizontal Axis = "horizontal"
	AxisVertical   Axis = "vertical"
)

func (a *Axis) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch Axis(s) {
	case AxisHorizontal, AxisVertical:
		*a = Axis(s)
		return nil
	}
	return &UnknownValueError{Field: "axis", Value: s}
}

// Alignment is the cross-axis alignment of a container or a text block.
type Alignment string

const (
	AlignLeading  Alignment = "leading"
	AlignCenter   Alignment = "center"
	AlignTrailing Alignment = "trailing"
)

func (a *Alignment) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch Alignment(s) {
	case AlignLeading, AlignCenter, AlignTrailing:
		*a = Alignment(s)
		return nil
	}
	return &UnknownValueError{Field: "alignment", Value: s}
}

// Node is one element of a UI tree.
//
// Optional fields are pointers so that an absent field stays distinguishable
// from its zero value. Children are kept for every type but only containers
// lay them out.
type Node struct {
	ID      string   `json:"id" yaml:"id"`
	Type    NodeType `json:"type" yaml:"type"`
	Content *string  `json:"content,omitempty" yaml:"content,omitempty"`
	Style   *Style   `json:"style,omitempty" yaml:"style,omitempty"`
	Action  *Action  `json:"action,omitempty" yaml:"action,omitempty"`

	Children []Node `json:"children,omitempty" yaml:"children,omitempty"`

	StackAxis      *Axis      `json:"stackAxis,omitempty" yaml:"stackAxis,omitempty"`
	StackAlignment *Alignment `json:"stackAlignment,omitempty" yaml:"stackAlignment,omitempty"`
	ScrollAxis     *Axis      `json:"scrollAxis,omitempty" yaml:"scrollAxis,omitempty"`
	ShowIndicators bool       `json:"showIndicators,omitempty" yaml:"showIndicators,omitempty"`

	// Properties carries the free-form configuration of textField and toggle nodes.
	Properties map[string]Value `json:"properties,omitempty" yaml:"properties,omitempty"`
}

// wireNode mirrors Node with the required fields as pointers so their
// absence can be detected.
type wireNode struct {
	ID             *string          `json:"id"`
	Type           *NodeType        `json:"type"`
	Content        *string          `json:"content"`
	Style          *Style           `json:"style"`
	Action         *Action          `json:"action"`
	Children       []Node           `json:"children"`
	StackAxis      *Axis            `json:"stackAxis"`
	StackAlignment *Alignment       `json:"stackAlignment"`
	ScrollAxis     *Axis            `json:"scrollAxis"`
	ShowIndicators *bool            `json:"showIndicators"`
	Properties     map[string]Value `json:"properties"`
}

func (n *Node) UnmarshalJSON(data []byte) error {
	var w wireNode
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.ID == nil {
		return &MissingFieldError{Field: "id"}
	}
	if *w.ID == "" {
		return ErrEmptyID
	}
	if w.Type == nil {
		return &MissingFieldError{Field: "type", NodeID: *w.ID}
	}

	*n = Node{
		ID:             *w.ID,
		Type:           *w.Type,
		Content:        w.Content,
		Style:          w.Style,
		Action:         w.Action,
		Children:       w.Children,
		StackAxis:      w.StackAxis,
		StackAlignment: w.StackAlignment,
		ScrollAxis:     w.ScrollAxis,
		Properties:     w.Properties,
	}
	if len(n.Children) == 0 {
		n.Children = nil
	}
	if w.ShowIndicators != nil {
		n.ShowIndicators = *w.ShowIndicators
	}
	return nil
}

// IsContainer reports whether the node lays out its children.
func (n *Node) IsContainer() bool {
	return n.Type.IsContainer()
}

// ContentOr returns the node content, or def when content is absent.
func (n *Node) ContentOr(def string) string {
	if n.Content == nil {
		return def
	}
	return *n.Content
}

// SetContent replaces the node content.
func (n *Node) SetContent(s string) {
	n.Content = &s
}

// Axis returns the layout axis, defaulting to vertical.
func (n *Node) Axis() Axis {
	switch n.Type {
	case NodeTypeStack:
		if n.StackAxis != nil {
			return *n.StackAxis
		}
	case NodeTypeScroll:
		if n.ScrollAxis != nil {
			return *n.ScrollAxis
		}
	}
	return AxisVertical
}

func (n *Node) String() string {
	return fmt.Sprintf("%s(%s)", n.Type, n.ID)
}

// Ptr returns a pointer to v. It keeps literal construction of optional fields short.
func Ptr[T any](v T) *T {
	return &v
}
