// Package value defines DynamicValue, the tagged-union representation the
// execution core uses for test inputs, expected outputs, and entry-point
// return values. It crosses the supervisor<->child process boundary as
// JSON and must round-trip losslessly for every variant below.
package value

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Kind tags which variant a Value holds.
type Kind string

const (
	KindNone   Kind = "none"
	KindBool   Kind = "bool"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindString Kind = "string"
	KindList   Kind = "list"
	KindMap    Kind = "map"
)

// Value is a DynamicValue: a unit tag, or one of boolean, integer,
// floating-point, text, an ordered sequence of Value, or a mapping from
// text to Value. Only the field matching Kind is meaningful.
type Value struct {
	Kind Kind
	B    bool
	I    int64
	F    float64
	S    string
	List []Value
	Map  map[string]Value
}

func None() Value                { return Value{Kind: KindNone} }
func Bool(b bool) Value          { return Value{Kind: KindBool, B: b} }
func Int(i int64) Value          { return Value{Kind: KindInt, I: i} }
func Float(f float64) Value      { return Value{Kind: KindFloat, F: f} }
func String(s string) Value      { return Value{Kind: KindString, S: s} }
func List(items ...Value) Value  { return Value{Kind: KindList, List: items} }
func Map(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{Kind: KindMap, Map: m}
}

func (v Value) IsNone() bool { return v.Kind == KindNone }

// String implements fmt.Stringer with a Python-ish rendering, used in
// error_message text such as "Expected <expected>, got <actual>".
func (v Value) String() string {
	switch v.Kind {
	case KindNone:
		return "None"
	case KindBool:
		if v.B {
			return "True"
		}
		return "False"
	case KindInt:
		return fmt.Sprintf("%d", v.I)
	case KindFloat:
		return fmt.Sprintf("%g", v.F)
	case KindString:
		return fmt.Sprintf("%q", v.S)
	case KindList:
		parts := make([]string, len(v.List))
		for i, e := range v.List {
			parts[i] = e.String()
		}
		out := "["
		for i, p := range parts {
			if i > 0 {
				out += ", "
			}
			out += p
		}
		return out + "]"
	case KindMap:
		keys := make([]string, 0, len(v.Map))
		for k := range v.Map {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := "{"
		for i, k := range keys {
			if i > 0 {
				out += ", "
			}
			out += fmt.Sprintf("%q: %s", k, v.Map[k].String())
		}
		return out + "}"
	default:
		return "<unknown>"
	}
}

// wireValue is the JSON-on-the-wire shape: a tag plus exactly the field
// that tag implies. Kept separate from Value so zero-value fields of
// unrelated kinds never appear in the encoded form.
type wireValue struct {
	Kind Kind                   `json:"kind"`
	B    *bool                  `json:"b,omitempty"`
	I    *int64                 `json:"i,omitempty"`
	F    *float64               `json:"f,omitempty"`
	S    *string                `json:"s,omitempty"`
	List []wireValue            `json:"list,omitempty"`
	Map  map[string]wireValue   `json:"map,omitempty"`
}

func toWire(v Value) wireValue {
	w := wireValue{Kind: v.Kind}
	switch v.Kind {
	case KindBool:
		w.B = &v.B
	case KindInt:
		w.I = &v.I
	case KindFloat:
		w.F = &v.F
	case KindString:
		w.S = &v.S
	case KindList:
		w.List = make([]wireValue, len(v.List))
		for i, e := range v.List {
			w.List[i] = toWire(e)
		}
	case KindMap:
		w.Map = make(map[string]wireValue, len(v.Map))
		for k, e := range v.Map {
			w.Map[k] = toWire(e)
		}
	}
	return w
}

func fromWire(w wireValue) Value {
	v := Value{Kind: w.Kind}
	switch w.Kind {
	case KindBool:
		if w.B != nil {
			v.B = *w.B
		}
	case KindInt:
		if w.I != nil {
			v.I = *w.I
		}
	case KindFloat:
		if w.F != nil {
			v.F = *w.F
		}
	case KindString:
		if w.S != nil {
			v.S = *w.S
		}
	case KindList:
		v.List = make([]Value, len(w.List))
		for i, e := range w.List {
			v.List[i] = fromWire(e)
		}
	case KindMap:
		v.Map = make(map[string]Value, len(w.Map))
		for k, e := range w.Map {
			v.Map[k] = fromWire(e)
		}
	}
	return v
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(toWire(v))
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var w wireValue
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*v = fromWire(w)
	return nil
}

// Inputs is the parameter-name to DynamicValue mapping a test case supplies
// and the child invokes the entry point with, as keyword arguments.
type Inputs map[string]Value

// Clone deep-copies an Inputs mapping so a child cannot mutate the caller's
// data; JSON round-tripping across the process boundary already implies
// this, but Supervisor.RunOne also clones before building the request.
func (in Inputs) Clone() Inputs {
	out := make(Inputs, len(in))
	for k, v := range in {
		out[k] = v.clone()
	}
	return out
}

func (v Value) clone() Value {
	switch v.Kind {
	case KindList:
		list := make([]Value, len(v.List))
		for i, e := range v.List {
			list[i] = e.clone()
		}
		return Value{Kind: KindList, List: list}
	case KindMap:
		m := make(map[string]Value, len(v.Map))
		for k, e := range v.Map {
			m[k] = e.clone()
		}
		return Value{Kind: KindMap, Map: m}
	default:
		return v
	}
}
