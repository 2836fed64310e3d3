package dom

import "strings"

// Quotes inside attribute values are escaped when writing, since values are
// always written in double quotes. Other characters are already in source
// form.
var escapeAttrQuote = strings.NewReplacer(`"`, "&quot;").Replace

// HTML returns the HTML serialization of a node.
func HTML(n Node) string {
	var sb strings.Builder
	n.writeHTML(&sb)
	return sb.String()
}

func (e *Element) writeHTML(sb *strings.Builder) {
	sb.WriteByte('<')
	sb.WriteString(e.Tag)
	for _, a := range e.Attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.Name)
		if !a.Bare {
			sb.WriteString(`="`)
			sb.WriteString(escapeAttrQuote(a.Value))
			sb.WriteByte('"')
		}
	}
	sb.WriteByte('>')
	if IsVoid(e.Tag) {
		return
	}
	for _, ch := range e.Children {
		ch.writeHTML(sb)
	}
	sb.WriteString("</")
	sb.WriteString(e.Tag)
	sb.WriteByte('>')
}

func (t *Text) writeHTML(sb *strings.Builder) {
	sb.WriteString(t.Data)
}
