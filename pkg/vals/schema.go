package vals

import (
	"fmt"

	"src.crevgui.dev/pkg/errs"
)

// FieldKind is the kind of value a template expects for a label.
type FieldKind int

// Possible values of FieldKind.
const (
	// A string, from wt_ and wu_ placeholders.
	FieldString FieldKind = iota
	// A boolean, from wb_ and wn_ placeholders.
	FieldBool
	// A list of records rendered by a repeat region; Elem describes them.
	FieldList
	// A list of records rendered by a sub-template include; Template names
	// the sub-template.
	FieldInclude
)

func (k FieldKind) String() string {
	switch k {
	case FieldString:
		return "string"
	case FieldBool:
		return "boolean"
	case FieldList:
		return "list"
	case FieldInclude:
		return "include"
	}
	return fmt.Sprintf("FieldKind(%d)", int(k))
}

// Field describes one label referenced by a template.
type Field struct {
	Name string
	Kind FieldKind
	// Set when the label is only referenced inside conditional regions. An
	// optional field may be absent from the data; it is only looked up when
	// the region is rendered.
	Optional bool
	Elem     *Schema
	Template string
}

// Schema is the set of labels a template references, with their kinds. It is
// built once when the template is parsed.
type Schema struct {
	fields map[string]*Field
	names  []string
}

// NewSchema returns an empty Schema.
func NewSchema() *Schema {
	return &Schema{fields: make(map[string]*Field)}
}

// Add records a field. If the label has already been recorded, the two uses
// are merged: a field stays optional only if all its uses are optional, and
// the element schemas of lists are merged. Incompatible kinds cause an
// [errs.ConflictingPlaceholder] error.
func (s *Schema) Add(f Field) error {
	old, ok := s.fields[f.Name]
	if !ok {
		nf := f
		s.fields[f.Name] = &nf
		s.names = append(s.names, f.Name)
		return nil
	}
	if old.Kind != f.Kind || old.Template != f.Template {
		return errs.ConflictingPlaceholder{Name: f.Name}
	}
	old.Optional = old.Optional && f.Optional
	if f.Kind == FieldList && f.Elem != nil {
		if old.Elem == nil {
			old.Elem = NewSchema()
		}
		for _, sub := range f.Elem.Fields() {
			if err := old.Elem.Add(*sub); err != nil {
				return err
			}
		}
	}
	return nil
}

// Field returns the field with the given label.
func (s *Schema) Field(name string) (*Field, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// Fields returns all fields, in the order they were first added.
func (s *Schema) Fields() []*Field {
	fields := make([]*Field, len(s.names))
	for i, name := range s.names {
		fields[i] = s.fields[name]
	}
	return fields
}

// Len returns the number of fields.
func (s *Schema) Len() int { return len(s.names) }

// Validate checks that r has every required field with a value of the right
// type. Missing booleans are allowed and read as false. Records of repeat
// lists are validated recursively; records of includes are validated when the
// sub-template renders them.
func (s *Schema) Validate(r Record) error {
	return s.validate(r, "")
}

func (s *Schema) validate(r Record, path string) error {
	for _, name := range s.names {
		f := s.fields[name]
		v, ok := r[name]
		if !ok {
			if f.Kind == FieldBool || f.Optional {
				continue
			}
			return errs.MissingPlaceholderValue{Name: path + name}
		}
		if err := checkType(f, v, path+name); err != nil {
			return err
		}
		if f.Kind == FieldList && f.Elem != nil {
			list, _ := v.AsList()
			for i, sub := range list {
				if err := f.Elem.validate(sub, fmt.Sprintf("%s%s[%d].", path, name, i)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func checkType(f *Field, v Value, path string) error {
	var want Type
	switch f.Kind {
	case FieldString:
		want = TypeString
	case FieldBool:
		want = TypeBool
	default:
		want = TypeList
	}
	if v.Type() != want {
		return errs.Decode{Field: path, Reason: fmt.Sprintf("expected %v, got %v", want, v.Type())}
	}
	return nil
}
