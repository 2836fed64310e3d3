// Package vals contains the data model consumed by the template walker.
//
// A Record maps placeholder labels to Values. A Value is a tagged union of a
// string, a boolean and a list of sub-records; sub-records have the same shape
// recursively.
package vals

import (
	"fmt"
	"sort"
	"strings"
)

// Type is the type of a Value.
type Type int

// Possible values of Type.
const (
	TypeString Type = iota
	TypeBool
	TypeList
)

func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeBool:
		return "boolean"
	case TypeList:
		return "list"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Value is a single piece of render data. The zero Value is the empty string.
type Value struct {
	t Type
	s string
	b bool
	l []Record
}

// String returns a string Value.
func String(s string) Value { return Value{t: TypeString, s: s} }

// Bool returns a boolean Value.
func Bool(b bool) Value { return Value{t: TypeBool, b: b} }

// List returns a list Value containing the given records.
func List(rs ...Record) Value { return Value{t: TypeList, l: rs} }

// Type returns the type of the Value.
func (v Value) Type() Type { return v.t }

// AsString returns the string held by v and whether v is a string.
func (v Value) AsString() (string, bool) { return v.s, v.t == TypeString }

// AsBool returns the boolean held by v and whether v is a boolean.
func (v Value) AsBool() (bool, bool) { return v.b, v.t == TypeBool }

// AsList returns the records held by v and whether v is a list.
func (v Value) AsList() ([]Record, bool) { return v.l, v.t == TypeList }

// Repr returns a representation of the value for debugging.
func (v Value) Repr() string {
	switch v.t {
	case TypeBool:
		return fmt.Sprint(v.b)
	case TypeList:
		parts := make([]string, len(v.l))
		for i, r := range v.l {
			parts[i] = r.Repr()
		}
		return "[" + strings.Join(parts, " ") + "]"
	}
	return fmt.Sprintf("%q", v.s)
}

// Record is a mapping from placeholder labels to values.
type Record map[string]Value

// Repr returns a representation of the record for debugging, with keys
// sorted.
func (r Record) Repr() string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(k)
		sb.WriteString(":")
		sb.WriteString(r[k].Repr())
	}
	sb.WriteString("}")
	return sb.String()
}
