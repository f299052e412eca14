// Package schema validates the free-form property bags carried by UI nodes.
//
// A Schema maps property names to types over domain.Value. Built-in types are
// string, int, double, bool, object and arrays of those; Optional marks a
// property that may be absent and Custom wraps a user function.
//
//	s := schema.Schema{
//	    "title": schema.String(),
//	    "isOn":  schema.Optional(schema.Bool()),
//	}
//	if err := schema.Validate(s, node.Properties); err != nil {
//	    // err is an *AggregateError listing every failing property
//	}
//
// Schemas can also be parsed from type strings such as "[int]" or "string?":
//
//	s, err := schema.ParseTypeMap(map[string]string{"tags": "[string]", "hint": "string?"})
//
// ForNodeType returns the built-in schema for textField and toggle nodes.
// Property validation is advisory: the decoder accepts any bag and the lint
// step reports mismatches.
package schema
