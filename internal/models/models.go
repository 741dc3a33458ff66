// Package models holds the data types shared by every stage of the engine:
// the decoded JSON value tree and the inferred TypeModel.
package models

import (
	"bytes"
	stdjson "encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
)

// Kind is the top-level kind of a JSON value.
type Kind string

const (
	KindNull    Kind = "null"
	KindBoolean Kind = "boolean"
	KindNumber  Kind = "number"
	KindString  Kind = "string"
	KindArray   Kind = "array"
	KindObject  Kind = "object"
)

// Value is a decoded JSON value. It is a closed sum type: the only
// implementations are Null, Bool, Number, String, Array and *Object.
type Value interface {
	Kind() Kind
	writeJSON(buf *bytes.Buffer) error
}

// Null is the JSON null literal.
type Null struct{}

// Bool is a JSON boolean.
type Bool bool

// Number is a JSON number kept as its literal text, like json.Number.
type Number string

// String is a JSON string.
type String string

// Array is a JSON array.
type Array []Value

func (Null) Kind() Kind   { return KindNull }
func (Bool) Kind() Kind   { return KindBoolean }
func (Number) Kind() Kind { return KindNumber }
func (String) Kind() Kind { return KindString }
func (Array) Kind() Kind  { return KindArray }

// Float64 returns the number as a float64.
func (n Number) Float64() (float64, error) {
	return strconv.ParseFloat(string(n), 64)
}

// isLiteral reports whether n is JSON number syntax. Magnitude is not
// checked: 1e400 is a valid literal.
func (n Number) isLiteral() bool {
	if n == "" || (n[0] != '-' && (n[0] < '0' || n[0] > '9')) {
		return false
	}
	return stdjson.Valid([]byte(n))
}

// IsInteger reports whether the number is an exact integer. 1.0 and 1e3 are
// integers, 1.5 is not.
func (n Number) IsInteger() bool {
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return false
	}
	return f == math.Trunc(f)
}

// Object is a JSON object that remembers the insertion order of its keys.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject creates an empty ordered object.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

func (*Object) Kind() Kind { return KindObject }

// Set stores a value. A new key is appended to the key order; an existing
// key keeps its position.
func (o *Object) Set(key string, v Value) *Object {
	if o.values == nil {
		o.values = make(map[string]Value)
	}
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
	return o
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// IsNull reports whether v is nil or the JSON null literal.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// MarshalValue encodes a value as compact JSON with object key order kept.
func MarshalValue(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if v == nil {
		v = Null{}
	}
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (Null) writeJSON(buf *bytes.Buffer) error {
	buf.WriteString("null")
	return nil
}

func (b Bool) writeJSON(buf *bytes.Buffer) error {
	buf.WriteString(strconv.FormatBool(bool(b)))
	return nil
}

func (n Number) writeJSON(buf *bytes.Buffer) error {
	if !n.isLiteral() {
		return fmt.Errorf("invalid number literal %q", string(n))
	}
	buf.WriteString(string(n))
	return nil
}

func (s String) writeJSON(buf *bytes.Buffer) error {
	return writeString(buf, string(s))
}

func (a Array) writeJSON(buf *bytes.Buffer) error {
	buf.WriteByte('[')
	for i, elem := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		if elem == nil {
			elem = Null{}
		}
		if err := elem.writeJSON(buf); err != nil {
			return err
		}
	}
	buf.WriteByte(']')
	return nil
}

func (o *Object) writeJSON(buf *bytes.Buffer) error {
	buf.WriteByte('{')
	for i, key := range o.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeString(buf, key); err != nil {
			return err
		}
		buf.WriteByte(':')
		v := o.values[key]
		if v == nil {
			v = Null{}
		}
		if err := v.writeJSON(buf); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeString(buf *bytes.Buffer, s string) error {
	encoded, err := json.MarshalNoEscape(s)
	if err != nil {
		return err
	}
	buf.Write(encoded)
	return nil
}

// MarshalJSON lets an Object be embedded in structs encoded by go-json or
// encoding/json without losing key order.
func (o *Object) MarshalJSON() ([]byte, error) {
	return MarshalValue(o)
}

// MarshalJSON encodes the array with nested key order kept.
func (a Array) MarshalJSON() ([]byte, error) {
	return MarshalValue(a)
}

// ToInterface converts a value to the generic form produced by json.Unmarshal
// with UseNumber (map[string]any, []any, json.Number, string, bool, nil).
// Key order is lost; number literals are kept exactly.
func ToInterface(v Value) any {
	switch val := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(val)
	case Number:
		return json.Number(val)
	case String:
		return string(val)
	case Array:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToInterface(elem)
		}
		return out
	case *Object:
		out := make(map[string]any, val.Len())
		for _, key := range val.keys {
			out[key] = ToInterface(val.values[key])
		}
		return out
	default:
		return nil
	}
}

// FromInterface converts a generic Go value into a Value. Maps have no
// order, so their keys are inserted sorted.
func FromInterface(v any) Value {
	switch val := v.(type) {
	case nil:
		return Null{}
	case Value:
		return val
	case bool:
		return Bool(val)
	case string:
		return String(val)
	case json.Number:
		return Number(val)
	case float64:
		return Number(strconv.FormatFloat(val, 'g', -1, 64))
	case float32:
		return Number(strconv.FormatFloat(float64(val), 'g', -1, 32))
	case int:
		return Number(strconv.Itoa(val))
	case int64:
		return Number(strconv.FormatInt(val, 10))
	case uint64:
		return Number(strconv.FormatUint(val, 10))
	case []any:
		out := make(Array, len(val))
		for i, elem := range val {
			out[i] = FromInterface(elem)
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		obj := NewObject()
		for _, k := range keys {
			obj.Set(k, FromInterface(val[k]))
		}
		return obj
	case map[any]any:
		// YAML allows non-string keys such as 200 or true.
		converted := make(map[string]any, len(val))
		for k, elem := range val {
			converted[fmt.Sprint(k)] = elem
		}
		return FromInterface(converted)
	default:
		return Null{}
	}
}
