package tmpl

import (
	"strings"

	"src.crevgui.dev/pkg/diag"
	"src.crevgui.dev/pkg/dom"
	"src.crevgui.dev/pkg/errs"
	"src.crevgui.dev/pkg/vals"
)

// RenderError is an error found when rendering a template. Its context
// points into the template that was being rendered when the error occurred,
// which may be a sub-template.
type RenderError = diag.Error[RenderErrorTag]

// RenderErrorTag parameterizes [diag.Error] to define [RenderError].
type RenderErrorTag struct{}

func (RenderErrorTag) ErrorTag() string { return "template render error" }

// Renders t with rec. Sub-templates are looked up in s, which may be nil if t
// has no includes.
func render(s *Set, t *Template, rec vals.Record) (*dom.Element, error) {
	w := &walker{set: s, t: t}
	if err := t.schema.Validate(rec); err != nil {
		return nil, w.errorAt(w.use(errs.Subject(err)), err)
	}
	return w.element(t.Root, rec)
}

// walker renders one template. A new walker is used for each sub-template, so
// that errors are positioned in the right source.
type walker struct {
	set *Set
	t   *Template
}

func (w *walker) errorAt(r diag.Ranger, cause error) error {
	return diag.NewError[RenderErrorTag](w.t.Name, w.t.Source, r, cause)
}

// Returns the range of the first use of the label at the head of a field
// path like "items[0].name", or the range of the root element.
func (w *walker) use(path string) diag.Ranger {
	if i := strings.IndexAny(path, "[."); i != -1 {
		path = path[:i]
	}
	if r, ok := w.t.uses[path]; ok {
		return r
	}
	return w.t.Root
}

func (w *walker) element(e *Element, rec vals.Record) (*dom.Element, error) {
	out := &dom.Element{Tag: e.Tag}
	directives := make(map[string]*Attr)
	literal := make(map[string]bool)
	for i := range e.Attrs {
		a := &e.Attrs[i]
		if a.Directive != nil {
			directives[a.Directive.Target] = a
		} else {
			literal[a.Name] = true
		}
	}

	for _, a := range e.Attrs {
		switch {
		case a.Directive != nil:
			if literal[a.Directive.Target] {
				// Applied at the position of the target.
				continue
			}
			attr, ok, err := w.directive(a, nil, rec)
			if err != nil {
				return nil, err
			}
			if ok {
				out.Attrs = append(out.Attrs, attr)
			}
		case directives[a.Name] != nil:
			attr, ok, err := w.directive(*directives[a.Name], &a, rec)
			if err != nil {
				return nil, err
			}
			if ok {
				out.Attrs = append(out.Attrs, attr)
			}
		default:
			out.Attrs = append(out.Attrs, dom.Attr{Name: a.Name, Value: a.Value, Bare: a.Bare})
		}
	}

	children, err := w.nodes(e.Children, rec)
	if err != nil {
		return nil, err
	}
	out.Children = children
	return out, nil
}

// Applies a directive attribute d to its target, which is nil when the
// element has no literal target attribute. It returns the attribute to emit
// and whether to emit one.
func (w *walker) directive(d Attr, target *Attr, rec vals.Record) (dom.Attr, bool, error) {
	name := d.Directive.Target
	switch d.Directive.Kind {
	case TextSub, URLSub:
		s, err := w.str(d, d.Directive.Label, rec)
		if err != nil {
			return dom.Attr{}, false, err
		}
		if d.Directive.Kind == TextSub {
			s = dom.Escape(s)
		}
		return dom.Attr{Name: name, Value: s}, true, nil
	default:
		b, err := w.boolean(d, d.Directive.Label, rec)
		if err != nil {
			return dom.Attr{}, false, err
		}
		if d.Directive.Kind == NegBoolAttr {
			b = !b
		}
		if !b {
			return dom.Attr{}, false, nil
		}
		if target != nil {
			return dom.Attr{Name: name, Value: target.Value, Bare: target.Bare}, true, nil
		}
		return dom.Attr{Name: name, Bare: true}, true, nil
	}
}

func (w *walker) nodes(nodes []Node, rec vals.Record) ([]dom.Node, error) {
	var out []dom.Node
	for _, n := range nodes {
		switch n := n.(type) {
		case *Element:
			el, err := w.element(n, rec)
			if err != nil {
				return nil, err
			}
			out = append(out, el)
		case *Text:
			out = append(out, &dom.Text{Data: n.Data})
		case *Subst:
			s, err := w.str(n, n.Label, rec)
			if err != nil {
				return nil, err
			}
			if n.Kind == TextSub {
				s = dom.Escape(s)
			}
			out = append(out, &dom.Text{Data: s})
		case *Region:
			rendered, err := w.region(n, rec)
			if err != nil {
				return nil, err
			}
			out = append(out, rendered...)
		}
	}
	return out, nil
}

func (w *walker) region(r *Region, rec vals.Record) ([]dom.Node, error) {
	switch r.Kind {
	case RepeatStart:
		list, err := w.list(r, rec)
		if err != nil {
			return nil, err
		}
		var out []dom.Node
		for _, sub := range list {
			rendered, err := w.nodes(r.Body, sub)
			if err != nil {
				return nil, err
			}
			out = append(out, rendered...)
		}
		return out, nil
	case IncludeStart:
		list, err := w.list(r, rec)
		if err != nil {
			return nil, err
		}
		var sub *Template
		if w.set != nil {
			sub, _ = w.set.Lookup(r.Label)
		}
		if sub == nil {
			return nil, w.errorAt(r, errs.TemplateNotFound{Name: r.Label})
		}
		out := make([]dom.Node, 0, len(list))
		for _, subRec := range list {
			el, err := render(w.set, sub, subRec)
			if err != nil {
				return nil, err
			}
			out = append(out, el)
		}
		return out, nil
	case CondStart, NegCondStart:
		b, err := w.boolean(r, r.Label, rec)
		if err != nil {
			return nil, err
		}
		if b == (r.Kind == CondStart) {
			return w.nodes(r.Body, rec)
		}
	}
	// Designer regions and false conditional regions render to nothing.
	return nil, nil
}

func (w *walker) str(r diag.Ranger, label string, rec vals.Record) (string, error) {
	v, ok := rec[label]
	if !ok {
		return "", w.errorAt(r, errs.MissingPlaceholderValue{Name: label})
	}
	s, ok := v.AsString()
	if !ok {
		return "", w.errorAt(r, errs.Decode{Field: label, Reason: "expected string, got " + v.Type().String()})
	}
	return s, nil
}

// Missing booleans are false.
func (w *walker) boolean(r diag.Ranger, label string, rec vals.Record) (bool, error) {
	v, ok := rec[label]
	if !ok {
		return false, nil
	}
	b, ok := v.AsBool()
	if !ok {
		return false, w.errorAt(r, errs.Decode{Field: label, Reason: "expected boolean, got " + v.Type().String()})
	}
	return b, nil
}

func (w *walker) list(r *Region, rec vals.Record) ([]vals.Record, error) {
	label := r.Label
	v, ok := rec[label]
	if !ok {
		return nil, w.errorAt(r, errs.MissingPlaceholderValue{Name: label})
	}
	l, ok := v.AsList()
	if !ok {
		return nil, w.errorAt(r, errs.Decode{Field: label, Reason: "expected list, got " + v.Type().String()})
	}
	return l, nil
}
