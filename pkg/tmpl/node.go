package tmpl

import "src.crevgui.dev/pkg/diag"

// Node is a node of a parsed template. It is one of *Element, *Text, *Subst
// and *Region.
type Node interface {
	diag.Ranger
	node()
}

// Element is an element of a template. Its range covers the start tag.
type Element struct {
	diag.Ranging
	Tag      string
	Attrs    []Attr
	Children []Node
}

// Attr is an attribute of an Element. Value is in HTML source form. If
// Directive is not nil, the attribute is a directive attribute and is never
// emitted itself.
type Attr struct {
	diag.Ranging
	Name      string
	Value     string
	Bare      bool
	Directive *Directive
}

// Directive is a data-<placeholder>="<target>" attribute.
type Directive struct {
	Placeholder
	// The attribute of the same element that the directive rewrites.
	Target string
}

// Text is literal text in HTML source form.
type Text struct {
	diag.Ranging
	Data string
}

// Subst is a wt_ or wu_ placeholder comment. When the comment is directly
// followed by a text node, that node is part of the Subst and is replaced
// together with the comment.
type Subst struct {
	diag.Ranging
	Placeholder
	Replaced *Text
}

// Region is the part of a sibling list enclosed by a pair of start and end
// markers. Its range covers both markers; Placeholder is the start marker.
type Region struct {
	diag.Ranging
	Placeholder
	Body []Node
}

func (*Element) node() {}
func (*Text) node()    {}
func (*Subst) node()   {}
func (*Region) node()  {}

// A placeholder comment before regions are grouped.
type marker struct {
	diag.Ranging
	Placeholder
}

func (*marker) node() {}
