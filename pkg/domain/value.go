package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindString Kind = iota
	KindInt
	KindDouble
	KindBool
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "unknown"
}

// Value is a dynamically typed property value.
//
// Decoding tries string, int, double, bool, array and object in that order;
// anything else (null) becomes the empty string. The zero Value is the
// empty string.
type Value struct {
	kind Kind
	str  string
	num  int64
	dbl  float64
	bl   bool
	arr  []Value
	obj  map[string]Value
}

func StringValue(s string) Value           { return Value{kind: KindString, str: s} }
func IntValue(i int64) Value               { return Value{kind: KindInt, num: i} }
func DoubleValue(f float64) Value          { return Value{kind: KindDouble, dbl: f} }
func BoolValue(b bool) Value               { return Value{kind: KindBool, bl: b} }
func ArrayValue(vs ...Value) Value         { return Value{kind: KindArray, arr: vs} }
func ObjectValue(m map[string]Value) Value { return Value{kind: KindObject, obj: m} }

// ValueOf converts a plain Go value into a Value.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return StringValue(""), nil
	case Value:
		return x, nil
	case string:
		return StringValue(x), nil
	case bool:
		return BoolValue(x), nil
	case int:
		return IntValue(int64(x)), nil
	case int32:
		return IntValue(int64(x)), nil
	case int64:
		return IntValue(x), nil
	case float32:
		return DoubleValue(float64(x)), nil
	case float64:
		return DoubleValue(x), nil
	case []any:
		arr := make([]Value, 0, len(x))
		for i, e := range x {
			ev, err := ValueOf(e)
			if err != nil {
				return Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			arr = append(arr, ev)
		}
		return ArrayValue(arr...), nil
	case map[string]any:
		obj := make(map[string]Value, len(x))
		for k, e := range x {
			ev, err := ValueOf(e)
			if err != nil {
				return Value{}, fmt.Errorf("key %s: %w", k, err)
			}
			obj[k] = ev
		}
		return ObjectValue(obj), nil
	}
	return Value{}, fmt.Errorf("unsupported value type %T", v)
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsString() (string, bool)           { return v.str, v.kind == KindString }
func (v Value) AsInt() (int64, bool)               { return v.num, v.kind == KindInt }
func (v Value) AsBool() (bool, bool)               { return v.bl, v.kind == KindBool }
func (v Value) AsArray() ([]Value, bool)           { return v.arr, v.kind == KindArray }
func (v Value) AsObject() (map[string]Value, bool) { return v.obj, v.kind == KindObject }

// AsDouble returns the numeric value for both int and double kinds.
func (v Value) AsDouble() (float64, bool) {
	switch v.kind {
	case KindDouble:
		return v.dbl, true
	case KindInt:
		return float64(v.num), true
	}
	return 0, false
}

// Interface unwraps the value into plain Go types.
func (v Value) Interface() any {
	switch v.kind {
	case KindInt:
		return v.num
	case KindDouble:
		return v.dbl
	case KindBool:
		return v.bl
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, e := range v.obj {
			out[k] = e.Interface()
		}
		return out
	}
	return v.str
}

// String renders scalars the way they appear as node content.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindInt:
		return strconv.FormatInt(v.num, 10)
	case KindDouble:
		return FormatDouble(v.dbl)
	case KindBool:
		return strconv.FormatBool(v.bl)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Equal reports deep equality, including the kind tag.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindInt:
		return v.num == o.num
	case KindDouble:
		return v.dbl == o.dbl || (math.IsNaN(v.dbl) && math.IsNaN(o.dbl))
	case KindBool:
		return v.bl == o.bl
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(v.obj) != len(o.obj) {
			return false
		}
		for k, e := range v.obj {
			oe, ok := o.obj[k]
			if !ok || !e.Equal(oe) {
				return false
			}
		}
		return true
	}
	return false
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = StringValue(s)
		return nil
	}
	if isIntegerLiteral(data) {
		var i int64
		if err := json.Unmarshal(data, &i); err == nil {
			*v = IntValue(i)
			return nil
		}
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*v = DoubleValue(f)
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = BoolValue(b)
		return nil
	}
	var arr []Value
	if err := json.Unmarshal(data, &arr); err == nil && arr != nil {
		*v = ArrayValue(arr...)
		return nil
	}
	var obj map[string]Value
	if err := json.Unmarshal(data, &obj); err == nil && obj != nil {
		*v = ObjectValue(obj)
		return nil
	}
	*v = StringValue("")
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return []byte(strconv.FormatInt(v.num, 10)), nil
	case KindDouble:
		if math.IsNaN(v.dbl) || math.IsInf(v.dbl, 0) {
			return nil, fmt.Errorf("cannot encode %v as JSON", v.dbl)
		}
		return []byte(FormatDouble(v.dbl)), nil
	case KindBool:
		return json.Marshal(v.bl)
	case KindArray:
		if v.arr == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.arr)
	case KindObject:
		if v.obj == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.obj)
	}
	return json.Marshal(v.str)
}

// MarshalYAML lets YAML encoders see the underlying plain value.
func (v Value) MarshalYAML() (any, error) {
	return v.Interface(), nil
}

// FormatDouble renders f in its shortest form, keeping a trailing ".0" for
// integral values so the result still reads back as a double.
func FormatDouble(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(s, ".eEnN") {
		return s
	}
	return s + ".0"
}

func isIntegerLiteral(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	for i, c := range data {
		if c == '-' && i == 0 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Keys returns the sorted keys of an object value.
func (v Value) Keys() []string {
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DecodeProperties decodes a property bag into the struct pointed to by out,
// using the mapstructure tags on its fields.
func DecodeProperties(props map[string]Value, out any) error {
	raw := make(map[string]any, len(props))
	for k, v := range props {
		raw[k] = v.Interface()
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// FontProperties describes the font block of a generated component.
type FontProperties struct {
	Size   float64 `mapstructure:"size"`
	Weight string  `mapstructure:"weight"`
	Design string  `mapstructure:"design"`
}

// FrameProperties describes explicit frame constraints of a generated component.
type FrameProperties struct {
	Width     *float64 `mapstructure:"width"`
	Height    *float64 `mapstructure:"height"`
	MaxWidth  *float64 `mapstructure:"maxWidth"`
	MaxHeight *float64 `mapstructure:"maxHeight"`
}

// TextFieldProperties configures a textField node.
type TextFieldProperties struct {
	Placeholder string          `mapstructure:"placeholder"`
	Text        string          `mapstructure:"text"`
	Font        *FontProperties `mapstructure:"font"`
}

// ToggleProperties configures a toggle node.
type ToggleProperties struct {
	Title string `mapstructure:"title"`
	IsOn  bool   `mapstructure:"isOn"`
}
