package schema

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"

	"github.com/aretw0/canopy/pkg/domain"
)

// MarshalJSON writes the schema as property name → type string, the same
// notation ParseType reads ("string", "[int]", "bool?").
func (s Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	names := make(map[string]string, len(s))
	for _, key := range sortedKeys(s) {
		if s[key] == nil {
			return nil, fmt.Errorf("property %s: type is nil", key)
		}
		names[key] = s[key].Name()
	}
	return json.Marshal(names)
}

// UnmarshalJSON reads the notation written by MarshalJSON. Custom types have
// no notation and are rejected.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var names map[string]string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("schema must map property names to type strings: %w", err)
	}
	if names == nil {
		*s = nil
		return nil
	}
	parsed, err := ParseTypeMap(names)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Registry holds property schemas per node type. Entries extend the built-in
// schemas: a property named in both takes the registry's type.
type Registry map[domain.NodeType]Schema

// ParseRegistry decodes {"<nodeType>": {"<property>": "<type>"}}. Unknown
// node types are rejected.
func ParseRegistry(data []byte) (Registry, error) {
	var raw map[string]Schema
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid schema registry: %w", err)
	}
	reg := make(Registry, len(raw))
	for name, s := range raw {
		t := domain.NodeType(name)
		if !t.Valid() {
			return nil, &domain.UnknownValueError{Field: "type", Value: name}
		}
		reg[t] = s
	}
	return reg, nil
}

// LoadRegistry reads a registry file.
func LoadRegistry(path string) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema registry: %w", err)
	}
	reg, err := ParseRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

// For returns the effective schema of t. A nil registry yields the built-ins.
func (r Registry) For(t domain.NodeType) Schema {
	extra, ok := r[t]
	if !ok {
		return ForNodeType(t)
	}
	merged := maps.Clone(ForNodeType(t))
	if merged == nil {
		merged = make(Schema, len(extra))
	}
	maps.Copy(merged, extra)
	return merged
}

// ValidateNode checks the property bag of n against the effective schema of its type.
func (r Registry) ValidateNode(n *domain.Node) error {
	return Validate(r.For(n.Type), n.Properties)
}

// Effective lists the schema of every node type that takes properties.
func (r Registry) Effective() Registry {
	out := make(Registry)
	for _, t := range domain.NodeTypes() {
		if s := r.For(t); len(s) > 0 {
			out[t] = s
		}
	}
	return out
}

// MarshalJSON writes the registry keyed by node type name.
func (r Registry) MarshalJSON() ([]byte, error) {
	raw := make(map[string]Schema, len(r))
	for t, s := range r {
		raw[string(t)] = s
	}
	return json.Marshal(raw)
}
