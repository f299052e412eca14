package schema

import (
	"fmt"
	"sort"

	"github.com/aretw0/canopy/pkg/domain"
)

var font = Custom("font", func(v domain.Value) error {
	return objectOf(v, Schema{
		"size":   Optional(Double()),
		"weight": Optional(String()),
		"design": Optional(String()),
	})
})

var frame = Custom("frame", func(v domain.Value) error {
	return objectOf(v, Schema{
		"width":     Optional(Double()),
		"height":    Optional(Double()),
		"maxWidth":  Optional(Double()),
		"maxHeight": Optional(Double()),
	})
})

// nodeSchemas lists the property bags each node type understands.
var nodeSchemas = map[domain.NodeType]Schema{
	domain.NodeTypeTextField: {
		"placeholder": Optional(String()),
		"text":        Optional(String()),
		"font":        Optional(font),
		"frame":       Optional(frame),
	},
	domain.NodeTypeToggle: {
		"title": Optional(String()),
		"isOn":  Optional(Bool()),
		"frame": Optional(frame),
	},
}

// ForNodeType returns the property schema for t, or nil when t takes no properties.
func ForNodeType(t domain.NodeType) Schema {
	return nodeSchemas[t]
}

// ValidateNode checks the property bag of n against the schema of its type.
func ValidateNode(n *domain.Node) error {
	return Validate(ForNodeType(n.Type), n.Properties)
}

func objectOf(v domain.Value, fields Schema) error {
	obj, ok := v.AsObject()
	if !ok {
		return fmt.Errorf("expected object, got %s", v.Kind())
	}
	return Validate(fields, obj)
}

func sortedKeys(s Schema) []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
