// Package tmpl implements the placeholder-driven HTML template engine.
//
// A template is an HTML fragment with exactly one root element. Placeholders
// appear either as HTML comments (<!--wt_name-->) or as directive attributes
// (data-wb_checked="checked"); see [Classify] for the vocabulary. Templates
// are parsed once into an immutable tree, and rendered any number of times
// against a [vals.Record] into a [dom.Element].
package tmpl

import (
	"strings"

	"src.crevgui.dev/pkg/diag"
	"src.crevgui.dev/pkg/dom"
	"src.crevgui.dev/pkg/errs"
	"src.crevgui.dev/pkg/vals"
)

// ParseError is an error found when parsing a template.
type ParseError = diag.Error[ParseErrorTag]

// ParseErrorTag parameterizes [diag.Error] to define [ParseError].
type ParseErrorTag struct{}

func (ParseErrorTag) ErrorTag() string { return "template parse error" }

// Template is a parsed template. It is immutable and safe for concurrent use.
type Template struct {
	Name   string
	Source string
	Root   *Element

	schema *vals.Schema
	// Range of the first use of each top-level label.
	uses map[string]diag.Ranging
}

// Schema returns the labels the template references at the top level.
func (t *Template) Schema() *vals.Schema { return t.schema }

// Parse parses a template. On failure it returns a *ParseError whose Cause is
// one of the types in the errs package.
func Parse(name, src string) (*Template, error) {
	ps := &parser{name: name, src: src}
	nodes, err := ps.content()
	if err != nil {
		return nil, err
	}
	if ps.pos < len(ps.src) {
		// content only stops early at an end tag.
		begin := ps.pos
		ps.pos += 2
		tag := ps.tagName()
		return nil, ps.errorAt(diag.Ranging{From: begin, To: ps.pos}, errs.UnclosedElement{Found: tag})
	}
	root, err := ps.root(nodes)
	if err != nil {
		return nil, err
	}
	t := &Template{Name: name, Source: src, Root: root,
		schema: vals.NewSchema(), uses: make(map[string]diag.Ranging)}
	if err := ps.collect([]Node{root}, t.schema, false, t.uses); err != nil {
		return nil, err
	}
	return t, nil
}

// parser maintains the mutable state of parsing.
type parser struct {
	name string
	src  string
	pos  int
}

func (ps *parser) errorAt(r diag.Ranger, cause error) error {
	return diag.NewError[ParseErrorTag](ps.name, ps.src, r, cause)
}

func (ps *parser) rest() string { return ps.src[ps.pos:] }

func (ps *parser) hasPrefix(prefix string) bool {
	return strings.HasPrefix(ps.src[ps.pos:], prefix)
}

func (ps *parser) eof() bool { return ps.pos >= len(ps.src) }

func (ps *parser) skipSpace() {
	for !ps.eof() && isSpace(ps.src[ps.pos]) {
		ps.pos++
	}
}

// Picks the single root element out of the top-level nodes. Whitespace-only
// text is allowed around it.
func (ps *parser) root(nodes []Node) (*Element, error) {
	var root *Element
	var extra Node
	for _, n := range nodes {
		if t, ok := n.(*Text); ok && strings.TrimSpace(t.Data) == "" {
			continue
		}
		if el, ok := n.(*Element); ok && root == nil {
			root = el
			continue
		}
		if extra == nil {
			extra = n
		}
	}
	switch {
	case root == nil:
		r := diag.PointRanging(0)
		if extra != nil {
			r = extra.Range()
		}
		return nil, ps.errorAt(r, errs.NoRootElement{})
	case extra != nil:
		return nil, ps.errorAt(extra, errs.MultipleRootElements{})
	}
	return root, nil
}

// Parses a sibling list, stopping at EOF or at an end tag, which is left
// unconsumed. The siblings are returned with regions grouped.
func (ps *parser) content() ([]Node, error) {
	var nodes []Node
	for !ps.eof() {
		switch {
		case ps.hasPrefix("</"):
			return ps.group(nodes)
		case ps.hasPrefix("<!--"):
			n, err := ps.comment()
			if err != nil {
				return nil, err
			}
			if n != nil {
				nodes = append(nodes, n)
			}
		case ps.hasPrefix("<!") || ps.hasPrefix("<?"):
			begin := ps.pos
			i := strings.IndexByte(ps.rest(), '>')
			if i == -1 {
				return nil, ps.errorAt(diag.Ranging{From: begin, To: begin + 2}, errs.UnclosedElement{Tag: "!"})
			}
			ps.pos += i + 1
		case ps.pos+1 < len(ps.src) && ps.src[ps.pos] == '<' && isLetter(ps.src[ps.pos+1]):
			el, err := ps.element()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, el)
		default:
			nodes = append(nodes, ps.text())
		}
	}
	return ps.group(nodes)
}

// Parses text up to the next markup.
func (ps *parser) text() *Text {
	begin := ps.pos
	// Always consume at least one byte, which may be a lone '<'.
	ps.pos++
	for !ps.eof() {
		if ps.src[ps.pos] == '<' && ps.pos+1 < len(ps.src) {
			next := ps.src[ps.pos+1]
			if isLetter(next) || next == '/' || next == '!' || next == '?' {
				break
			}
		}
		ps.pos++
	}
	return &Text{diag.Ranging{From: begin, To: ps.pos}, ps.src[begin:ps.pos]}
}

// Parses a comment. Comments shaped like placeholders become markers; other
// comments are dropped and nil is returned.
func (ps *parser) comment() (Node, error) {
	begin := ps.pos
	i := strings.Index(ps.src[begin+4:], "-->")
	if i == -1 {
		return nil, ps.errorAt(diag.Ranging{From: begin, To: begin + 4}, errs.UnclosedElement{Tag: "!--"})
	}
	body := strings.TrimSpace(ps.src[begin+4 : begin+4+i])
	ps.pos = begin + 4 + i + 3
	r := diag.Ranging{From: begin, To: ps.pos}
	if !IsPlaceholderName(body) {
		return nil, nil
	}
	p, err := Classify(body, InComment)
	if err != nil {
		return nil, ps.errorAt(r, err)
	}
	return &marker{r, p}, nil
}

// Parses an element, including its end tag.
func (ps *parser) element() (*Element, error) {
	begin := ps.pos
	ps.pos++
	el := &Element{Ranging: diag.PointRanging(begin), Tag: ps.tagName()}
	selfClosing, err := ps.attrs(el)
	if err != nil {
		return nil, err
	}
	el.Ranging = diag.Ranging{From: begin, To: ps.pos}
	if selfClosing || dom.IsVoid(el.Tag) {
		return el, nil
	}

	if dom.IsRawText(el.Tag) {
		i := indexFold(ps.rest(), "</"+el.Tag)
		if i == -1 {
			return nil, ps.errorAt(el, errs.UnclosedElement{Tag: el.Tag})
		}
		if i > 0 {
			el.Children = []Node{&Text{diag.Ranging{From: ps.pos, To: ps.pos + i}, ps.src[ps.pos : ps.pos+i]}}
		}
		ps.pos += i
	} else {
		children, err := ps.content()
		if err != nil {
			return nil, err
		}
		el.Children = children
	}

	if ps.eof() {
		return nil, ps.errorAt(el, errs.UnclosedElement{Tag: el.Tag})
	}
	// At "</".
	ps.pos += 2
	if tag := ps.tagName(); tag != el.Tag {
		return nil, ps.errorAt(el, errs.UnclosedElement{Tag: el.Tag, Found: tag})
	}
	ps.skipSpace()
	if !ps.hasPrefix(">") {
		return nil, ps.errorAt(el, errs.UnclosedElement{Tag: el.Tag})
	}
	ps.pos++
	return el, nil
}

// Parses a tag name, returned in lower case.
func (ps *parser) tagName() string {
	begin := ps.pos
	for !ps.eof() && (isLetter(ps.src[ps.pos]) || isDigit(ps.src[ps.pos]) || ps.src[ps.pos] == '-') {
		ps.pos++
	}
	return strings.ToLower(ps.src[begin:ps.pos])
}

// Parses the attributes of a start tag and the closing ">" or "/>". It
// returns whether the tag is self-closing.
func (ps *parser) attrs(el *Element) (bool, error) {
	targets := make(map[string]bool)
	for {
		ps.skipSpace()
		switch {
		case ps.eof():
			return false, ps.errorAt(diag.Ranging{From: el.From, To: ps.pos}, errs.UnclosedElement{Tag: el.Tag})
		case ps.hasPrefix(">"):
			ps.pos++
			return false, nil
		case ps.hasPrefix("/>"):
			ps.pos += 2
			return true, nil
		case strings.IndexByte(`/="'`, ps.src[ps.pos]) != -1:
			// Stray characters; ignored like browsers do.
			ps.pos++
			continue
		}

		attr, err := ps.attr()
		if err != nil {
			return false, err
		}
		if attr.Directive != nil {
			if targets[attr.Directive.Target] {
				return false, ps.errorAt(attr, errs.DuplicateDirective{Target: attr.Directive.Target})
			}
			targets[attr.Directive.Target] = true
		}
		el.Attrs = append(el.Attrs, attr)
	}
}

func (ps *parser) attr() (Attr, error) {
	begin := ps.pos
	for !ps.eof() && !isAttrNameEnd(ps.src[ps.pos]) {
		ps.pos++
	}
	attr := Attr{Name: strings.ToLower(ps.src[begin:ps.pos]), Bare: true}

	save := ps.pos
	ps.skipSpace()
	if ps.hasPrefix("=") {
		ps.pos++
		ps.skipSpace()
		attr.Bare = false
		if !ps.eof() && (ps.src[ps.pos] == '"' || ps.src[ps.pos] == '\'') {
			quote := ps.src[ps.pos]
			i := strings.IndexByte(ps.src[ps.pos+1:], quote)
			if i == -1 {
				return Attr{}, ps.errorAt(diag.Ranging{From: begin, To: ps.pos + 1},
					errs.UnterminatedAttribute{Name: attr.Name})
			}
			attr.Value = ps.src[ps.pos+1 : ps.pos+1+i]
			ps.pos += i + 2
		} else {
			valueBegin := ps.pos
			for !ps.eof() && !isSpace(ps.src[ps.pos]) && ps.src[ps.pos] != '>' {
				ps.pos++
			}
			attr.Value = ps.src[valueBegin:ps.pos]
		}
	} else {
		ps.pos = save
	}
	attr.Ranging = diag.Ranging{From: begin, To: ps.pos}

	if name, ok := strings.CutPrefix(attr.Name, "data-"); ok && IsPlaceholderName(name) {
		p, err := Classify(name, InAttribute)
		if err != nil {
			return Attr{}, ps.errorAt(attr, err)
		}
		target := strings.ToLower(strings.TrimSpace(attr.Value))
		if target == "" {
			return Attr{}, &ParseError{
				Message: "directive " + attr.Name + " has no target attribute",
				Context: *diag.NewContext(ps.name, ps.src, attr),
				Cause:   errs.UnknownPlaceholderKind{Name: name},
			}
		}
		attr.Directive = &Directive{p, target}
	}
	return attr, nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

func isLetter(b byte) bool { return 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z' }

func isDigit(b byte) bool { return '0' <= b && b <= '9' }

func isAttrNameEnd(b byte) bool {
	return isSpace(b) || b == '=' || b == '>' || b == '/' || b == '"' || b == '\''
}

// indexFold is like strings.Index, but matches ASCII letters case-insensitively.
func indexFold(s, substr string) int {
	n := len(substr)
	for i := 0; i+n <= len(s); i++ {
		if strings.EqualFold(s[i:i+n], substr) {
			return i
		}
	}
	return -1
}
