package tmpl

import (
	"src.crevgui.dev/pkg/diag"
	"src.crevgui.dev/pkg/errs"
	"src.crevgui.dev/pkg/vals"
)

// An open region while grouping a sibling list.
type openRegion struct {
	start *marker
	body  []Node
}

// Groups a sibling list: substitution markers are bound to the text node that
// directly follows them, and the nodes between matching start and end markers
// are collected into a Region. Open regions are kept on a stack, so regions
// nest, but they may not cross each other or element boundaries.
func (ps *parser) group(nodes []Node) ([]Node, error) {
	stack := []*openRegion{{}}
	top := func() *openRegion { return stack[len(stack)-1] }

	for i := 0; i < len(nodes); i++ {
		m, ok := nodes[i].(*marker)
		if !ok {
			top().body = append(top().body, nodes[i])
			continue
		}
		switch {
		case m.Kind == TextSub || m.Kind == URLSub:
			s := &Subst{Ranging: m.Ranging, Placeholder: m.Placeholder}
			if i+1 < len(nodes) {
				if t, ok := nodes[i+1].(*Text); ok {
					s.Replaced = t
					s.Ranging = diag.MixedRanging(m, t)
					i++
				}
			}
			top().body = append(top().body, s)
		case m.Kind.isStart():
			stack = append(stack, &openRegion{start: m})
		case m.Kind.isEnd():
			open := top()
			if open.start == nil || !m.Kind.closes(open.start.Kind) || open.start.Label != m.Label {
				return nil, ps.errorAt(m, errs.UnbalancedRegion{Label: m.Label})
			}
			stack = stack[:len(stack)-1]
			top().body = append(top().body, &Region{
				Ranging:     diag.MixedRanging(open.start, m),
				Placeholder: open.start.Placeholder,
				Body:        open.body,
			})
		}
	}
	if open := top(); open.start != nil {
		return nil, ps.errorAt(open.start, errs.UnbalancedRegion{Label: open.start.Label})
	}
	return stack[0].body, nil
}

// Records the labels referenced by nodes in s. Labels inside conditional
// regions are optional. Repeat bodies get their own schema, since each clone
// is rendered with only its own record in scope. If uses is not nil, it
// receives the range of the first use of each label.
func (ps *parser) collect(nodes []Node, s *vals.Schema, optional bool, uses map[string]diag.Ranging) error {
	add := func(r diag.Ranger, f vals.Field) error {
		if err := s.Add(f); err != nil {
			return ps.errorAt(r, err)
		}
		if uses != nil {
			if _, ok := uses[f.Name]; !ok {
				uses[f.Name] = r.Range()
			}
		}
		return nil
	}
	for _, n := range nodes {
		switch n := n.(type) {
		case *Element:
			for _, a := range n.Attrs {
				if a.Directive == nil {
					continue
				}
				kind := vals.FieldString
				if a.Directive.Kind == BoolAttr || a.Directive.Kind == NegBoolAttr {
					kind = vals.FieldBool
				}
				if err := add(a, vals.Field{Name: a.Directive.Label, Kind: kind, Optional: optional}); err != nil {
					return err
				}
			}
			if err := ps.collect(n.Children, s, optional, uses); err != nil {
				return err
			}
		case *Subst:
			if err := add(n, vals.Field{Name: n.Label, Kind: vals.FieldString, Optional: optional}); err != nil {
				return err
			}
		case *Region:
			switch n.Kind {
			case RepeatStart:
				elem := vals.NewSchema()
				if err := ps.collect(n.Body, elem, false, nil); err != nil {
					return err
				}
				if err := add(n, vals.Field{Name: n.Label, Kind: vals.FieldList, Optional: optional, Elem: elem}); err != nil {
					return err
				}
			case IncludeStart:
				if err := add(n, vals.Field{Name: n.Label, Kind: vals.FieldInclude, Optional: optional, Template: n.Label}); err != nil {
					return err
				}
			case CondStart, NegCondStart:
				if err := add(n, vals.Field{Name: n.Label, Kind: vals.FieldBool}); err != nil {
					return err
				}
				if err := ps.collect(n.Body, s, true, uses); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
