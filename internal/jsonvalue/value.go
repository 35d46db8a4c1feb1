// Package jsonvalue is a small tagged-union JSON tree with ordered object
// keys and non-recursive decoding and traversal.
package jsonvalue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Kind tags a Value.
type Kind int

const (
	Null Kind = iota
	Bool
	Number
	String
	Array
	Object
)

// Value is one node of a JSON document.
type Value struct {
	Kind   Kind
	b      bool
	num    float64
	str    string
	items  []*Value
	keys   []string
	fields map[string]*Value
}

// ErrNoObject is returned when text contains no brace-delimited span.
var ErrNoObject = errors.New("no JSON object found")

// Parse decodes a complete JSON document.
func Parse(data []byte) (*Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	type frame struct {
		v   *Value
		key string
		has bool
	}
	var (
		stack []*frame
		root  *Value
	)

	attach := func(v *Value) error {
		if len(stack) == 0 {
			if root != nil {
				return errors.New("multiple top-level values")
			}
			root = v
			return nil
		}
		top := stack[len(stack)-1]
		if top.v.Kind == Array {
			top.v.items = append(top.v.items, v)
			return nil
		}
		if !top.has {
			return errors.New("object value without key")
		}
		if _, dup := top.v.fields[top.key]; !dup {
			top.v.keys = append(top.v.keys, top.key)
		}
		top.v.fields[top.key] = v
		top.has = false
		return nil
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}

		switch t := tok.(type) {
		case json.Delim:
			switch t {
			case '{', '[':
				v := &Value{Kind: Array}
				if t == '{' {
					v = &Value{Kind: Object, fields: make(map[string]*Value)}
				}
				if err := attach(v); err != nil {
					return nil, err
				}
				stack = append(stack, &frame{v: v})
			case '}', ']':
				stack = stack[:len(stack)-1]
			}
			continue
		case string:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.v.Kind == Object && !top.has {
					top.key, top.has = t, true
					continue
				}
			}
			if err := attach(&Value{Kind: String, str: t}); err != nil {
				return nil, err
			}
		case json.Number:
			f, err := t.Float64()
			if err != nil {
				return nil, fmt.Errorf("decode json number %q: %w", t, err)
			}
			if err := attach(&Value{Kind: Number, num: f}); err != nil {
				return nil, err
			}
		case bool:
			if err := attach(&Value{Kind: Bool, b: t}); err != nil {
				return nil, err
			}
		case nil:
			if err := attach(&Value{Kind: Null}); err != nil {
				return nil, err
			}
		}
	}

	if root == nil {
		return nil, errors.New("empty json document")
	}
	if len(stack) > 0 {
		return nil, errors.New("unexpected end of json document")
	}
	return root, nil
}

// ExtractObject parses the span from the first '{' to the last '}' in text.
// Prose around the object is ignored. Two sibling objects, or stray braces in
// surrounding prose, yield a span that does not parse.
func ExtractObject(text string) (*Value, error) {
	span, err := ObjectSpan(text)
	if err != nil {
		return nil, err
	}
	v, err := Parse([]byte(span))
	if err != nil {
		return nil, err
	}
	if v.Kind != Object {
		return nil, ErrNoObject
	}
	return v, nil
}

// ObjectSpan returns the substring from the first '{' to the last '}'.
func ObjectSpan(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || start > end {
		return "", ErrNoObject
	}
	return text[start : end+1], nil
}

// Walk visits v and its descendants in pre-order, depth first, using an
// explicit stack. Array items and object fields are visited in document
// order. Returning false from fn stops the walk.
func Walk(v *Value, fn func(*Value) bool) {
	if v == nil {
		return
	}
	stack := []*Value{v}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(n) {
			return
		}
		children := n.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// Children returns array items or object field values in order.
func (v *Value) Children() []*Value {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case Array:
		return v.items
	case Object:
		out := make([]*Value, 0, len(v.keys))
		for _, k := range v.keys {
			out = append(out, v.fields[k])
		}
		return out
	}
	return nil
}

// Get returns the named field of an object, or nil.
func (v *Value) Get(key string) *Value {
	if v == nil || v.Kind != Object {
		return nil
	}
	return v.fields[key]
}

// Keys returns object keys in document order.
func (v *Value) Keys() []string {
	if v == nil {
		return nil
	}
	return v.keys
}

// Items returns array items, or nil for non-arrays.
func (v *Value) Items() []*Value {
	if v == nil || v.Kind != Array {
		return nil
	}
	return v.items
}

// IsNull reports whether v is absent or JSON null.
func (v *Value) IsNull() bool {
	return v == nil || v.Kind == Null
}

// Str returns the string payload; ok is false for non-strings.
func (v *Value) Str() (string, bool) {
	if v == nil || v.Kind != String {
		return "", false
	}
	return v.str, true
}

// Num returns the number payload; ok is false for non-numbers.
func (v *Value) Num() (float64, bool) {
	if v == nil || v.Kind != Number {
		return 0, false
	}
	return v.num, true
}

// BoolValue returns the boolean payload; ok is false for non-booleans.
func (v *Value) BoolValue() (bool, bool) {
	if v == nil || v.Kind != Bool {
		return false, false
	}
	return v.b, true
}

// Text renders scalars as text: strings as-is, numbers in shortest form,
// booleans as "true"/"false". Null and containers yield "".
func (v *Value) Text() string {
	if v == nil {
		return ""
	}
	switch v.Kind {
	case String:
		return v.str
	case Number:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case Bool:
		return strconv.FormatBool(v.b)
	}
	return ""
}

// NewString builds a string Value.
func NewString(s string) *Value { return &Value{Kind: String, str: s} }

// NewNumber builds a number Value.
func NewNumber(f float64) *Value { return &Value{Kind: Number, num: f} }

// NewArray builds an array Value.
func NewArray(items ...*Value) *Value { return &Value{Kind: Array, items: items} }

// NewObject builds an empty object Value; use Set to add fields.
func NewObject() *Value { return &Value{Kind: Object, fields: make(map[string]*Value)} }

// Set adds or replaces an object field, keeping first-insertion order.
func (v *Value) Set(key string, child *Value) {
	if v == nil || v.Kind != Object {
		return
	}
	if _, ok := v.fields[key]; !ok {
		v.keys = append(v.keys, key)
	}
	v.fields[key] = child
}
