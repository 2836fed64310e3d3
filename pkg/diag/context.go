package diag

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Context is a range of text in a template source. It is used for errors
// that can be associated with a part of a template, like parse errors and
// render errors.
type Context struct {
	Name   string
	Source string
	Ranging
}

// NewContext creates a new Context.
func NewContext(name, source string, r Ranger) *Context {
	return &Context{name, source, r.Range()}
}

// Variables controlling the style of the culprit.
var (
	culpritStart       = "\033[1;4m"
	culpritEnd         = "\033[m"
	culpritPlaceHolder = "^"
)

// Maximum number of bytes of the culprit shown by Excerpt.
const excerptMax = 40

func (c *Context) valid() bool {
	return c.From >= 0 && c.To <= len(c.Source) && c.From <= c.To
}

// Position returns the 1-based line and column of the start of the range.
// Columns count runes, not bytes.
func (c *Context) Position() (line, col int) {
	if !c.valid() {
		return 0, 0
	}
	before := c.Source[:c.From]
	line = strings.Count(before, "\n") + 1
	col = utf8.RuneCountInString(lastLine(before)) + 1
	return line, col
}

// Excerpt returns a short literal excerpt of the source starting at the
// range, for use in one-line error messages.
func (c *Context) Excerpt() string {
	if !c.valid() {
		return ""
	}
	s := c.Source[c.From:c.To]
	if s == "" {
		s = firstLine(c.Source[c.From:])
	}
	if len(s) > excerptMax {
		s = s[:excerptMax]
		for len(s) > 0 && !utf8.ValidString(s) {
			s = s[:len(s)-1]
		}
		s += "..."
	}
	return s
}

// Describe returns a description of the position, such as
// "crate_list:3:12".
func (c *Context) Describe() string {
	if !c.valid() {
		return fmt.Sprintf("%s:?", c.Name)
	}
	line, col := c.Position()
	return fmt.Sprintf("%s:%d:%d", c.Name, line, col)
}

// Show shows the context, including the position and the relevant line of
// source with the culprit highlighted. The indent is used for lines after the
// first one.
func (c *Context) Show(indent string) string {
	if !c.valid() {
		return fmt.Sprintf("%s, invalid position %d-%d", c.Name, c.From, c.To)
	}
	desc := c.Describe() + ": "
	descIndent := strings.Repeat(" ", utf8.RuneCountInString(desc))
	return desc + c.relevantSource(indent+descIndent)
}

func (c *Context) relevantSource(indent string) string {
	before := c.Source[:c.From]
	culprit := c.Source[c.From:c.To]
	after := c.Source[c.To:]

	var tail string
	if strings.HasSuffix(culprit, "\n") {
		culprit = culprit[:len(culprit)-1]
	} else {
		tail = firstLine(after)
	}
	if culprit == "" {
		culprit = culpritPlaceHolder
	}

	var sb strings.Builder
	sb.WriteString(lastLine(before))
	for i, line := range strings.Split(culprit, "\n") {
		if i > 0 {
			sb.WriteByte('\n')
			sb.WriteString(indent)
		}
		sb.WriteString(culpritStart)
		sb.WriteString(line)
		sb.WriteString(culpritEnd)
	}
	sb.WriteString(tail)
	return sb.String()
}

func firstLine(s string) string {
	i := strings.IndexByte(s, '\n')
	if i == -1 {
		return s
	}
	return s[:i]
}

func lastLine(s string) string {
	// When s does not contain '\n', LastIndexByte returns -1, which happens to
	// be what we want.
	return s[strings.LastIndexByte(s, '\n')+1:]
}
