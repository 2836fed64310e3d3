package tmpl

import (
	"strings"

	"src.crevgui.dev/pkg/errs"
)

// Kind is the kind of a placeholder.
type Kind int

// Possible values of Kind.
const (
	// wt_<label>: text, HTML-escaped.
	TextSub Kind = iota
	// wu_<label>: already URL-encoded text, emitted verbatim.
	URLSub
	// data-wb_<label>: keep the target attribute when the label is true.
	BoolAttr
	// data-wn_<label>: keep the target attribute when the label is false.
	NegBoolAttr
	// wr_repeat_<label> ... wr_end_<label>
	RepeatStart
	RepeatEnd
	// wtmplt_start_<label> ... wtmplt_end_<label>
	IncludeStart
	IncludeEnd
	// wd_start_<label> ... wd_end_<label>
	DesignerStart
	DesignerEnd
	// wb_start_<label> ... wb_end_<label>: kept when the label is true.
	CondStart
	CondEnd
	// wn_start_<label> ... wn_end_<label>: kept when the label is false.
	NegCondStart
	NegCondEnd
)

var kindNames = [...]string{
	TextSub: "TextSub", URLSub: "URLSub",
	BoolAttr: "BoolAttr", NegBoolAttr: "NegBoolAttr",
	RepeatStart: "RepeatStart", RepeatEnd: "RepeatEnd",
	IncludeStart: "IncludeStart", IncludeEnd: "IncludeEnd",
	DesignerStart: "DesignerStart", DesignerEnd: "DesignerEnd",
	CondStart: "CondStart", CondEnd: "CondEnd",
	NegCondStart: "NegCondStart", NegCondEnd: "NegCondEnd",
}

func (k Kind) String() string { return kindNames[k] }

// Position is where a placeholder name appears.
type Position int

// Possible values of Position.
const (
	// The body of an HTML comment.
	InComment Position = iota
	// The name of a data- attribute, without the "data-" prefix.
	InAttribute
)

// Placeholder is a classified placeholder name.
type Placeholder struct {
	Kind  Kind
	Label string
	// The full name, e.g. "wr_repeat_items".
	Name string
}

type prefix struct {
	prefix string
	kind   Kind
}

// Longer prefixes come before shorter ones sharing a beginning.
var commentPrefixes = []prefix{
	{"wr_repeat_", RepeatStart},
	{"wr_end_", RepeatEnd},
	{"wtmplt_start_", IncludeStart},
	{"wtmplt_end_", IncludeEnd},
	{"wd_start_", DesignerStart},
	{"wd_end_", DesignerEnd},
	{"wb_start_", CondStart},
	{"wb_end_", CondEnd},
	{"wn_start_", NegCondStart},
	{"wn_end_", NegCondEnd},
	{"wt_", TextSub},
	{"wu_", URLSub},
}

var attrPrefixes = []prefix{
	{"wt_", TextSub},
	{"wu_", URLSub},
	{"wb_", BoolAttr},
	{"wn_", NegBoolAttr},
}

// Classify classifies a placeholder name by its prefix. The set of prefixes
// valid in each position is closed; a name matching none of them, or with an
// empty label, causes an [errs.UnknownPlaceholderKind] error.
func Classify(name string, pos Position) (Placeholder, error) {
	prefixes := commentPrefixes
	if pos == InAttribute {
		prefixes = attrPrefixes
	}
	for _, p := range prefixes {
		if label, ok := strings.CutPrefix(name, p.prefix); ok {
			if label == "" {
				break
			}
			return Placeholder{Kind: p.kind, Label: label, Name: name}, nil
		}
	}
	return Placeholder{}, errs.UnknownPlaceholderKind{Name: name}
}

// IsPlaceholderName returns whether s is shaped like a placeholder name: a
// "w" followed by lowercase letters, an underscore and a rest made of
// letters, digits, underscores, dashes and dots. Comments and data-
// attributes with other names are ordinary markup.
func IsPlaceholderName(s string) bool {
	head, rest, ok := strings.Cut(s, "_")
	if !ok || len(head) < 2 || head[0] != 'w' || rest == "" {
		return false
	}
	for _, r := range head[1:] {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	for _, r := range rest {
		if !isNameRune(r) {
			return false
		}
	}
	return true
}

func isNameRune(r rune) bool {
	return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9' ||
		r == '_' || r == '-' || r == '.'
}

// isStart returns whether k opens a region.
func (k Kind) isStart() bool {
	switch k {
	case RepeatStart, IncludeStart, DesignerStart, CondStart, NegCondStart:
		return true
	}
	return false
}

// isEnd returns whether k closes a region.
func (k Kind) isEnd() bool {
	switch k {
	case RepeatEnd, IncludeEnd, DesignerEnd, CondEnd, NegCondEnd:
		return true
	}
	return false
}

// closes returns whether an end marker of kind k closes a region opened by
// a start marker of kind start. Each end kind directly follows its start kind.
func (k Kind) closes(start Kind) bool {
	return k.isEnd() && start.isStart() && k == start+1
}
