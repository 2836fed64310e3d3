package vals

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"src.crevgui.dev/pkg/errs"
)

// SchemaLookup finds the schema of a sub-template by name.
type SchemaLookup func(name string) (*Schema, bool)

// Decode decodes the response_data of an RPC response into a Record shaped
// by s. A null or empty input decodes like an empty object.
//
// Missing or null booleans decode as false. Missing strings and lists are
// errors unless the field is optional. Fields not in the schema are ignored.
// Records of a list must all have the same shape.
func Decode(data []byte, s *Schema, lookup SchemaLookup) (Record, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || isNull(data) {
		data = []byte("{}")
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, errs.Decode{Field: "response_data", Reason: "expected object"}
	}
	d := decoder{lookup}
	return d.record(obj, s, "")
}

type decoder struct {
	lookup SchemaLookup
}

func (d decoder) record(obj map[string]json.RawMessage, s *Schema, path string) (Record, error) {
	r := make(Record, s.Len())
	for _, f := range s.Fields() {
		name := path + f.Name
		raw, ok := obj[f.Name]
		if ok && isNull(raw) {
			ok = false
		}
		if !ok {
			switch {
			case f.Kind == FieldBool:
				r[f.Name] = Bool(false)
			case f.Optional:
			default:
				return nil, errs.Decode{Field: name, Reason: "missing"}
			}
			continue
		}
		v, err := d.value(raw, f, name)
		if err != nil {
			return nil, err
		}
		r[f.Name] = v
	}
	return r, nil
}

func (d decoder) value(raw json.RawMessage, f *Field, name string) (Value, error) {
	switch f.Kind {
	case FieldBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return Value{}, errs.Decode{Field: name, Reason: "expected boolean"}
		}
		return Bool(b), nil
	case FieldString:
		return decodeString(raw, name)
	}

	elem := f.Elem
	if f.Kind == FieldInclude {
		var ok bool
		if d.lookup != nil {
			elem, ok = d.lookup(f.Template)
		}
		if !ok {
			return Value{}, errs.TemplateNotFound{Name: f.Template}
		}
	}
	if elem == nil {
		elem = NewSchema()
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return Value{}, errs.Decode{Field: name, Reason: "expected list"}
	}
	records := make([]Record, len(items))
	var shape string
	for i, item := range items {
		itemName := fmt.Sprintf("%s[%d]", name, i)
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err != nil || obj == nil {
			return Value{}, errs.Decode{Field: itemName, Reason: "expected object"}
		}
		if sh := shapeOf(obj, elem); i == 0 {
			shape = sh
		} else if sh != shape {
			return Value{}, errs.Decode{Field: itemName, Reason: "mixed record shapes in list"}
		}
		rec, err := d.record(obj, elem, itemName+".")
		if err != nil {
			return Value{}, err
		}
		records[i] = rec
	}
	return List(records...), nil
}

func decodeString(raw json.RawMessage, name string) (Value, error) {
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, errs.Decode{Field: name, Reason: "malformed string"}
		}
		return String(s), nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return Value{}, errs.Decode{Field: name, Reason: "malformed number"}
		}
		return String(n.String()), nil
	}
	return Value{}, errs.Decode{Field: name, Reason: "expected string"}
}

// Returns a description of which non-boolean schema fields are present in obj,
// and the JSON type of each.
func shapeOf(obj map[string]json.RawMessage, s *Schema) string {
	var parts []string
	for _, f := range s.Fields() {
		if f.Kind == FieldBool {
			continue
		}
		raw, ok := obj[f.Name]
		if !ok || isNull(raw) {
			continue
		}
		parts = append(parts, f.Name+":"+jsonType(raw))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func jsonType(raw json.RawMessage) string {
	switch raw[0] {
	case '"':
		return "string"
	case '[':
		return "list"
	case '{':
		return "object"
	case 't', 'f':
		return "boolean"
	}
	return "number"
}

func isNull(raw []byte) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
