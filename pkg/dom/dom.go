// Package dom contains the in-memory node tree produced by rendering a
// template, its HTML serialization, and an in-memory host document.
//
// Text data and attribute values are kept in HTML source form, that is,
// already escaped. Use [Escape] when building nodes from plain strings.
package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Node is a node in a rendered fragment. It is either an *Element or a
// *Text.
type Node interface {
	// Clone returns a deep copy of the node.
	Clone() Node
	writeHTML(sb *strings.Builder)
}

// Element is an HTML element.
type Element struct {
	Tag      string
	Attrs    []Attr
	Children []Node
}

// Attr is an attribute of an Element. A bare attribute has no value and is
// written as just its name.
type Attr struct {
	Name  string
	Value string
	Bare  bool
}

// Text is a run of character data.
type Text struct {
	Data string
}

// Escape escapes s for use as text or as an attribute value. It escapes
// the five characters & < > " '.
func Escape(s string) string { return html.EscapeString(s) }

// Unescape decodes character references in s.
func Unescape(s string) string { return html.UnescapeString(s) }

// IsVoid returns whether tag is a void element, which has no end tag and no
// children.
func IsVoid(tag string) bool {
	switch atom.Lookup([]byte(tag)) {
	case atom.Area, atom.Base, atom.Br, atom.Col, atom.Embed, atom.Hr, atom.Img,
		atom.Input, atom.Link, atom.Meta, atom.Param, atom.Source, atom.Track,
		atom.Wbr:
		return true
	}
	return false
}

// IsRawText returns whether the content of tag is opaque text that may not
// contain markup.
func IsRawText(tag string) bool {
	switch atom.Lookup([]byte(tag)) {
	case atom.Script, atom.Style:
		return true
	}
	return false
}

// Attr returns the unescaped value of the named attribute, and whether it is
// present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return Unescape(a.Value), true
		}
	}
	return "", false
}

// HasAttr returns whether the named attribute is present.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// SetAttr sets the named attribute to an unescaped value, adding it if it is
// not present.
func (e *Element) SetAttr(name, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i] = Attr{Name: name, Value: Escape(value)}
			return
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: Escape(value)})
}

// RemoveAttr removes the named attribute if it is present.
func (e *Element) RemoveAttr(name string) {
	attrs := e.Attrs[:0]
	for _, a := range e.Attrs {
		if a.Name != name {
			attrs = append(attrs, a)
		}
	}
	e.Attrs = attrs
}

// ID returns the id attribute of the element.
func (e *Element) ID() string {
	id, _ := e.Attr("id")
	return id
}

// Walk calls f for e and every element below it in document order. If f
// returns false, the children of that element are skipped.
func (e *Element) Walk(f func(*Element) bool) {
	if !f(e) {
		return
	}
	for _, ch := range e.Children {
		if el, ok := ch.(*Element); ok {
			el.Walk(f)
		}
	}
}

// FindAll returns all elements with the given id, in document order.
func (e *Element) FindAll(id string) []*Element {
	var found []*Element
	e.Walk(func(el *Element) bool {
		if el.ID() == id {
			found = append(found, el)
		}
		return true
	})
	return found
}

// Find returns the first element with the given id, or nil.
func (e *Element) Find(id string) *Element {
	if found := e.FindAll(id); len(found) > 0 {
		return found[0]
	}
	return nil
}

// TextContent returns the unescaped concatenation of all text below e.
func (e *Element) TextContent() string {
	var sb strings.Builder
	var walk func(el *Element)
	walk = func(el *Element) {
		for _, ch := range el.Children {
			switch ch := ch.(type) {
			case *Text:
				if IsRawText(el.Tag) {
					sb.WriteString(ch.Data)
				} else {
					sb.WriteString(Unescape(ch.Data))
				}
			case *Element:
				walk(ch)
			}
		}
	}
	walk(e)
	return sb.String()
}

// Clone returns a deep copy of the element.
func (e *Element) Clone() Node {
	c := &Element{Tag: e.Tag}
	if e.Attrs != nil {
		c.Attrs = append([]Attr(nil), e.Attrs...)
	}
	if e.Children != nil {
		c.Children = make([]Node, len(e.Children))
		for i, ch := range e.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return c
}

// Clone returns a copy of the text node.
func (t *Text) Clone() Node { return &Text{t.Data} }
