package loam

// ScreenMetadata is the frontmatter (or whole JSON/YAML body) of a screen document.
// It uses "mapstructure" tags so Loam can decode it from any supported format.
// Nested structures stay untyped here; the decoder validates them later.
type ScreenMetadata struct {
	ID             string         `json:"id" mapstructure:"id"`
	Type           string         `json:"type" mapstructure:"type"`
	Content        *string        `json:"content,omitempty" mapstructure:"content"`
	Style          map[string]any `json:"style,omitempty" mapstructure:"style"`
	Action         map[string]any `json:"action,omitempty" mapstructure:"action"`
	Children       []any          `json:"children,omitempty" mapstructure:"children"`
	StackAxis      string         `json:"stackAxis,omitempty" mapstructure:"stackAxis"`
	StackAlignment string         `json:"stackAlignment,omitempty" mapstructure:"stackAlignment"`
	ScrollAxis     string         `json:"scrollAxis,omitempty" mapstructure:"scrollAxis"`
	ShowIndicators *bool          `json:"showIndicators,omitempty" mapstructure:"showIndicators"`
	Properties     map[string]any `json:"properties,omitempty" mapstructure:"properties"`
}
