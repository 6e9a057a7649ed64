// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package bridge

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Value is the tagged scalar union described in spec.md §9 ("Dynamic JSON
// values at the boundary"): rows decoded off the wire are a sequence of
// these, never raw json.RawMessage or any, so untyped values never escape
// this package.
type Value struct {
	kind  valueKind
	b     bool
	i     int64
	f     float64
	s     string
	bytes []byte
	list  []Value
	m     map[string]Value
}

type valueKind int

const (
	kindNull valueKind = iota
	kindBool
	kindInt
	kindFloat
	kindText
	kindBytes
	kindList
	kindMap
)

func Null() Value                { return Value{kind: kindNull} }
func Bool(v bool) Value          { return Value{kind: kindBool, b: v} }
func Int(v int64) Value          { return Value{kind: kindInt, i: v} }
func Float(v float64) Value      { return Value{kind: kindFloat, f: v} }
func Text(v string) Value        { return Value{kind: kindText, s: v} }
func Bytes(v []byte) Value       { return Value{kind: kindBytes, bytes: v} }
func List(v []Value) Value       { return Value{kind: kindList, list: v} }
func Map(v map[string]Value) Value { return Value{kind: kindMap, m: v} }

func (v Value) IsNull() bool { return v.kind == kindNull }

func (v Value) Bool() bool          { return v.b }
func (v Value) Int() int64          { return v.i }
func (v Value) Float() float64      { return v.f }
func (v Value) Text() string        { return v.s }
func (v Value) BytesVal() []byte    { return v.bytes }
func (v Value) List() []Value       { return v.list }
func (v Value) Map() map[string]Value { return v.m }

// Time decodes an ISO-8601 text Value per spec.md §4.2/§4.3's date-parsing
// rule: empty strings and parse failures degrade to "now" rather than
// aborting the enclosing load.
func (v Value) Time() time.Time {
	if v.kind != kindText || v.s == "" {
		return time.Now().UTC()
	}
	t, err := time.Parse(time.RFC3339, v.s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, v.s)
		if err != nil {
			return time.Now().UTC()
		}
	}
	return t
}

// Float32Slice decodes a Value representing a vector literal: a JSON array
// of numbers that arrived as a List of Float/Int values.
func (v Value) Float32Slice() []float32 {
	if v.kind != kindList {
		return nil
	}
	out := make([]float32, len(v.list))
	for i, e := range v.list {
		switch e.kind {
		case kindFloat:
			out[i] = float32(e.f)
		case kindInt:
			out[i] = float32(e.i)
		}
	}
	return out
}

// UnmarshalJSON decodes one of the wire encodings from §4.2: temporal
// values and decimals travel as JSON string/number, byte strings as
// base64 text (callers that expect Bytes must know to decode), lists and
// maps recurse.
func (v *Value) UnmarshalJSON(data []byte) error {
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	*v = fromAny(probe)
	return nil
}

func fromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case float64:
		if t == float64(int64(t)) {
			return Int(int64(t))
		}
		return Float(t)
	case string:
		return Text(t)
	case []any:
		list := make([]Value, len(t))
		for i, e := range t {
			list[i] = fromAny(e)
		}
		return List(list)
	case map[string]any:
		m := make(map[string]Value, len(t))
		for k, e := range t {
			m[k] = fromAny(e)
		}
		return Map(m)
	default:
		return Null()
	}
}

// MarshalJSON re-encodes a Value using the same wire rules as UnmarshalJSON,
// used when the adapter needs to send a Value back out (e.g. a vector
// literal built in Go and handed to interp.Literal).
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindNull:
		return []byte("null"), nil
	case kindBool:
		return json.Marshal(v.b)
	case kindInt:
		return json.Marshal(v.i)
	case kindFloat:
		return json.Marshal(v.f)
	case kindText:
		return json.Marshal(v.s)
	case kindBytes:
		return json.Marshal(base64.StdEncoding.EncodeToString(v.bytes))
	case kindList:
		return json.Marshal(v.list)
	case kindMap:
		return json.Marshal(v.m)
	default:
		return nil, fmt.Errorf("bridge: unknown value kind %d", v.kind)
	}
}

// DecodeBytes base64-decodes a Text value, for columns the adapter knows
// are byte blobs on the wire (§4.2: "Byte strings serialize as base-64").
func (v Value) DecodeBytes() ([]byte, error) {
	if v.kind != kindText {
		return nil, fmt.Errorf("bridge: value is not text, cannot decode as bytes")
	}
	return base64.StdEncoding.DecodeString(v.s)
}
