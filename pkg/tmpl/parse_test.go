package tmpl_test

import (
	"reflect"
	"testing"

	"src.crevgui.dev/pkg/diag"
	"src.crevgui.dev/pkg/errs"
	. "src.crevgui.dev/pkg/tmpl"
	"src.crevgui.dev/pkg/tt"
	"src.crevgui.dev/pkg/vals"
)

var parseErrorTests = []struct {
	name    string
	src     string
	kind    errs.Kind
	subject string
	from    int
}{
	{"empty", "", errs.KindNoRootElement, "", 0},
	{"text only", "hello", errs.KindNoRootElement, "", 0},
	{"two roots", "<p></p><p></p>", errs.KindMultipleRootElements, "", 7},
	{"text after root", "<p></p>x", errs.KindMultipleRootElements, "", 7},
	{"mismatched end tag", "<p><b></p>", errs.KindUnclosedElement, "b", 3},
	{"wrong end tag", "<p></div>", errs.KindUnclosedElement, "p", 0},
	{"missing end tag", "<p>", errs.KindUnclosedElement, "p", 0},
	{"stray end tag", "</p>", errs.KindUnclosedElement, "", 0},
	{"unterminated comment", "<p><!-- x</p>", errs.KindUnclosedElement, "!--", 3},
	{"unterminated start tag", "<p", errs.KindUnclosedElement, "p", 0},
	{"unterminated attribute", `<p class="x></p>`, errs.KindUnterminatedAttribute, "class", 3},
	{"unknown comment placeholder", "<p><!--wx_foo--></p>", errs.KindUnknownPlaceholderKind, "wx_foo", 3},
	{"unknown attribute placeholder", `<p data-wr_repeat_x="y"></p>`, errs.KindUnknownPlaceholderKind, "wr_repeat_x", 3},
	{"directive without target", `<b data-wt_x=""></b>`, errs.KindUnknownPlaceholderKind, "wt_x", 3},
	{"unclosed region", "<p><!--wr_repeat_a--></p>", errs.KindUnbalancedRegion, "a", 3},
	{"unopened region", "<p><!--wr_end_a--></p>", errs.KindUnbalancedRegion, "a", 3},
	{"region closed by wrong kind", "<p><!--wr_repeat_a--><!--wd_end_a--></p>", errs.KindUnbalancedRegion, "a", 21},
	{"region closed with wrong label", "<p><!--wr_repeat_a--><!--wr_end_b--></p>", errs.KindUnbalancedRegion, "b", 21},
	{"region crossing element", "<p><!--wr_repeat_a--><b><!--wr_end_a--></b></p>", errs.KindUnbalancedRegion, "a", 24},
	{"duplicate directive", `<input data-wb_a="checked" data-wn_b="checked">`, errs.KindDuplicateDirective, "checked", 27},
	{"conflicting placeholder", `<p><!--wt_a--><b data-wb_a="x"></b></p>`, errs.KindConflictingPlaceholder, "a", 17},
}

func TestParse_Errors(t *testing.T) {
	for _, test := range parseErrorTests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Parse("test", test.src)
			if err == nil {
				t.Fatalf("Parse(%q) returns nil error", test.src)
			}
			e, ok := diag.AsError[ParseErrorTag](err)
			if !ok {
				t.Fatalf("Parse(%q) returns %T, want *ParseError", test.src, err)
			}
			if kind := errs.KindOf(err); kind != test.kind {
				t.Errorf("got kind %v, want %v", kind, test.kind)
			}
			if subject := errs.Subject(err); subject != test.subject {
				t.Errorf("got subject %q, want %q", subject, test.subject)
			}
			if from := e.Range().From; from != test.from {
				t.Errorf("got error at %d, want %d", from, test.from)
			}
			if e.Context.Name != "test" {
				t.Errorf("got context name %q, want %q", e.Context.Name, "test")
			}
		})
	}
}

func TestParse_Tree(t *testing.T) {
	tpl, err := Parse("test", "<ul class=list><!--wr_repeat_items--><li><!--wt_label-->_</li><!--wr_end_items--></ul>")
	if err != nil {
		t.Fatal(err)
	}
	root := tpl.Root
	if root.Tag != "ul" || len(root.Attrs) != 1 || root.Attrs[0] != (Attr{Ranging: diag.Ranging{From: 4, To: 14}, Name: "class", Value: "list"}) {
		t.Errorf("got root %v %v", root.Tag, root.Attrs)
	}
	if len(root.Children) != 1 {
		t.Fatalf("got %d children of root, want 1", len(root.Children))
	}
	region, ok := root.Children[0].(*Region)
	if !ok || region.Kind != RepeatStart || region.Label != "items" {
		t.Fatalf("got child %#v, want repeat region items", root.Children[0])
	}
	li := region.Body[0].(*Element)
	subst, ok := li.Children[0].(*Subst)
	if !ok || subst.Label != "label" || subst.Replaced == nil || subst.Replaced.Data != "_" {
		t.Errorf("got %#v, want substitution of label replacing _", li.Children[0])
	}
}

func TestParse_Schema(t *testing.T) {
	tpl, err := Parse("test", `<div data-wt_title="title">`+
		`<!--wt_name-->x`+
		`<!--wr_repeat_items--><li data-wb_sel="class"><!--wt_label-->_</li><!--wr_end_items-->`+
		`<!--wb_start_flag--><!--wt_note--><!--wb_end_flag-->`+
		`<!--wd_start_preview--><!--wt_ignored--><!--wd_end_preview-->`+
		`<!--wtmplt_start_crate_row--><!--wtmplt_end_crate_row-->`+
		`</div>`)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"title:string", "name:string", "items:list{sel:boolean label:string}",
		"flag:boolean", "note:string?", "crate_row:include(crate_row)"}
	if got := describeSchema(tpl.Schema()); !reflect.DeepEqual(got, want) {
		t.Errorf("got schema %v, want %v", got, want)
	}
}

func describeSchema(s *vals.Schema) []string {
	var out []string
	for _, f := range s.Fields() {
		desc := f.Name + ":" + f.Kind.String()
		switch f.Kind {
		case vals.FieldList:
			desc += "{"
			for i, sub := range describeSchema(f.Elem) {
				if i > 0 {
					desc += " "
				}
				desc += sub
			}
			desc += "}"
		case vals.FieldInclude:
			desc += "(" + f.Template + ")"
		}
		if f.Optional {
			desc += "?"
		}
		out = append(out, desc)
	}
	return out
}

func TestParse_IsDeterministic(t *testing.T) {
	src := `<div><!--wr_repeat_a--><p data-wn_x="hidden"><!--wt_b-->_</p><!--wr_end_a--></div>`
	t1, err1 := Parse("test", src)
	t2, err2 := Parse("test", src)
	if err1 != nil || err2 != nil {
		t.Fatal(err1, err2)
	}
	if !reflect.DeepEqual(t1, t2) {
		t.Errorf("parsing twice gives different templates")
	}
}

func TestParseSet(t *testing.T) {
	set, err := ParseSet(map[string]string{
		"b": "<p></p>",
		"a": "<div></div>",
	})
	if err != nil {
		t.Fatal(err)
	}
	tt.Test(t, tt.Fn("Names", set.Names), tt.Table{
		tt.Args().Rets([]string{"a", "b"}),
	})

	_, err = ParseSet(map[string]string{"ok": "<p></p>", "bad": "<p>"})
	if e, ok := diag.AsError[ParseErrorTag](err); !ok || e.Context.Name != "bad" {
		t.Errorf("ParseSet with a bad template returns %v", err)
	}
}

func TestSet_Check(t *testing.T) {
	set, err := ParseSet(map[string]string{
		"list": "<ul><!--wtmplt_start_row--><!--wtmplt_end_row--></ul>",
		"row":  "<li><!--wr_repeat_cells--><!--wtmplt_start_cell--><!--wtmplt_end_cell--><!--wr_end_cells--></li>",
	})
	if err != nil {
		t.Fatal(err)
	}
	problems := set.Check()
	if len(problems) != 1 {
		t.Fatalf("got %d problems, want 1: %v", len(problems), problems)
	}
	e, ok := diag.AsError[ParseErrorTag](problems[0])
	if !ok || e.Context.Name != "row" || errs.Subject(e) != "cell" ||
		errs.KindOf(e) != errs.KindTemplateNotFound {
		t.Errorf("got problem %v, want missing template cell in row", problems[0])
	}

	set, _ = ParseSet(map[string]string{"list": "<ul><!--wtmplt_start_list--><!--wtmplt_end_list--></ul>"})
	if problems := set.Check(); len(problems) != 0 {
		t.Errorf("got problems %v for a self-contained set", problems)
	}
}
