package tmpl

import (
	"sort"

	"src.crevgui.dev/pkg/diag"
	"src.crevgui.dev/pkg/dom"
	"src.crevgui.dev/pkg/errs"
	"src.crevgui.dev/pkg/vals"
)

// Set is a named collection of parsed templates, in which includes are
// resolved. It is immutable and safe for concurrent use.
type Set struct {
	templates map[string]*Template
}

// NewSet creates a Set from templates that have already been parsed. Later
// templates replace earlier ones with the same name.
func NewSet(ts ...*Template) *Set {
	s := &Set{templates: make(map[string]*Template, len(ts))}
	for _, t := range ts {
		s.templates[t.Name] = t
	}
	return s
}

// ParseSet parses a set of template sources, keyed by name. Sources are
// parsed in name order, and the first error is returned.
func ParseSet(sources map[string]string) (*Set, error) {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)
	ts := make([]*Template, len(names))
	for i, name := range names {
		t, err := Parse(name, sources[name])
		if err != nil {
			return nil, err
		}
		ts[i] = t
	}
	return NewSet(ts...), nil
}

// Lookup finds a template by name.
func (s *Set) Lookup(name string) (*Template, bool) {
	t, ok := s.templates[name]
	return t, ok
}

// Names returns the names of all templates, sorted.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.templates))
	for name := range s.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render renders the named template with rec.
func (s *Set) Render(name string, rec vals.Record) (*dom.Element, error) {
	t, ok := s.Lookup(name)
	if !ok {
		return nil, errs.TemplateNotFound{Name: name}
	}
	return render(s, t, rec)
}

// RenderTemplate renders a template that need not be part of s. Its includes
// are resolved in s.
func (s *Set) RenderTemplate(t *Template, rec vals.Record) (*dom.Element, error) {
	return render(s, t, rec)
}

// Decode decodes JSON response data into a record for the named template.
func (s *Set) Decode(name string, data []byte) (vals.Record, error) {
	t, ok := s.Lookup(name)
	if !ok {
		return nil, errs.TemplateNotFound{Name: name}
	}
	return s.DecodeFor(t, data)
}

// DecodeFor decodes JSON response data into a record for t. The records of
// includes are decoded against the schemas of the templates in s.
func (s *Set) DecodeFor(t *Template, data []byte) (vals.Record, error) {
	return vals.Decode(data, t.schema, s.schemaOf)
}

func (s *Set) schemaOf(name string) (*vals.Schema, bool) {
	if t, ok := s.Lookup(name); ok {
		return t.schema, true
	}
	return nil, false
}

// Check finds includes of templates that are missing from s. Each problem is
// reported as a *ParseError at the include region. Templates are visited in
// name order.
func (s *Set) Check() []error {
	var problems []error
	for _, name := range s.Names() {
		t := s.templates[name]
		walkRegions([]Node{t.Root}, func(r *Region) {
			if r.Kind != IncludeStart {
				return
			}
			if _, ok := s.templates[r.Label]; !ok {
				problems = append(problems, diag.NewError[ParseErrorTag](
					t.Name, t.Source, r, errs.TemplateNotFound{Name: r.Label}))
			}
		})
	}
	return problems
}

func walkRegions(nodes []Node, f func(*Region)) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Element:
			walkRegions(n.Children, f)
		case *Region:
			f(n)
			walkRegions(n.Body, f)
		}
	}
}
