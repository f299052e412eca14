package decoder

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/canopy/pkg/domain"
	"gopkg.in/yaml.v3"
)

// ErrInvalidEncoding is returned when the input is not valid UTF-8 text.
var ErrInvalidEncoding = errors.New("invalid encoding: input is not valid UTF-8")

// ErrParsingFailed matches every *ParseError through errors.Is.
var ErrParsingFailed = errors.New("parsing failed")

// ParseError wraps the structural cause of a failed decode.
type ParseError struct {
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse UI payload: %v", e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

func (e *ParseError) Is(target error) bool { return target == ErrParsingFailed }

// ParseString decodes a UI tree from text.
func ParseString(text string) (*domain.Node, error) {
	if !utf8.ValidString(text) {
		return nil, ErrInvalidEncoding
	}
	return decode([]byte(text))
}

// Parse decodes a UI tree from raw bytes. It yields exactly the tree
// ParseString yields for the same content, and never a partial tree.
func Parse(data []byte) (*domain.Node, error) {
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}
	return decode(data)
}

func decode(data []byte) (*domain.Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{Cause: errors.New("empty payload")}
	}
	var node domain.Node
	if err := json.Unmarshal(data, &node); err != nil {
		return nil, &ParseError{Cause: err}
	}
	return &node, nil
}

// ParseYAML decodes a UI tree written in YAML. The document goes through the
// same validation as JSON input.
func ParseYAML(data []byte) (*domain.Node, error) {
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Cause: err}
	}
	normalized, err := normalizeYAML(doc)
	if err != nil {
		return nil, &ParseError{Cause: err}
	}
	if _, ok := normalized.(map[string]any); !ok {
		return nil, &ParseError{Cause: errors.New("document is not a mapping")}
	}
	js, err := json.Marshal(normalized)
	if err != nil {
		return nil, &ParseError{Cause: err}
	}
	return decode(js)
}

// normalizeYAML turns map[any]any nodes into map[string]any so the document
// can be re-encoded as JSON.
func normalizeYAML(v any) (any, error) {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			n, err := normalizeYAML(e)
			if err != nil {
				return nil, err
			}
			x[k] = n
		}
		return x, nil
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key %v", k)
			}
			n, err := normalizeYAML(e)
			if err != nil {
				return nil, err
			}
			out[ks] = n
		}
		return out, nil
	case []any:
		for i, e := range x {
			n, err := normalizeYAML(e)
			if err != nil {
				return nil, err
			}
			x[i] = n
		}
		return x, nil
	}
	return v, nil
}

// Encode writes the interchange form of a tree. Parse(Encode(n)) equals n.
func Encode(node *domain.Node) ([]byte, error) {
	return json.Marshal(node)
}

// EncodeIndent is Encode with two-space indentation.
func EncodeIndent(node *domain.Node) ([]byte, error) {
	return json.MarshalIndent(node, "", "  ")
}

// Format names a payload syntax.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor guesses the format from a resource name. Anything that is not
// .yaml or .yml is treated as JSON.
func FormatFor(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Parser is responsible for converting raw bytes into a UI tree.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes JSON bytes.
func (p *Parser) Parse(data []byte) (*domain.Node, error) {
	return Parse(data)
}

// ParseNamed picks the syntax from the resource name. Sources may resolve a
// bare name to a .yaml file, so a name without an extension is sniffed: a
// payload that does not open like JSON is read as YAML.
func (p *Parser) ParseNamed(name string, data []byte) (*domain.Node, error) {
	switch {
	case FormatFor(name) == FormatYAML:
		return ParseYAML(data)
	case path.Ext(name) == "" && !looksLikeJSON(data):
		return ParseYAML(data)
	}
	return Parse(data)
}

func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || trimmed[0] == '{' || trimmed[0] == '['
}

// ParsePatches decodes a JSON array of patches.
func ParsePatches(data []byte) ([]domain.Patch, error) {
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}
	var patches []domain.Patch
	if err := json.Unmarshal(data, &patches); err != nil {
		return nil, &ParseError{Cause: err}
	}
	return patches, nil
}

// ErrNoPatches is returned by ParsePatchSet for an empty array.
var ErrNoPatches = errors.New("no patches")

// ParsePatchSet decodes either one patch object or a non-empty array of them.
func ParsePatchSet(data []byte) ([]domain.Patch, error) {
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var p domain.Patch
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return nil, &ParseError{Cause: err}
		}
		return []domain.Patch{p}, nil
	}
	patches, err := ParsePatches(data)
	if err != nil {
		return nil, err
	}
	if len(patches) == 0 {
		return nil, ErrNoPatches
	}
	return patches, nil
}
