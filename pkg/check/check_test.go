package check

import (
	"path/filepath"
	"testing"

	"src.crevgui.dev/pkg/diag"
	"src.crevgui.dev/pkg/errs"
	"src.crevgui.dev/pkg/must"
	. "src.crevgui.dev/pkg/prog/progtest"
	"src.crevgui.dev/pkg/tmpl"
)

func TestProgram(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.html")
	bad := filepath.Join(dir, "bad.html")
	list := filepath.Join(dir, "list.html")
	must.WriteFile(good, "<p><!--wt_name--></p>")
	must.WriteFile(bad, "<p><!--wx_foo--></p>")
	must.WriteFile(list, "<ul><!--wtmplt_start_row--><!--wtmplt_end_row--></ul>")

	Test(t, &Program{},
		ThatCrevgui("-check").DoesNothing(),
		ThatCrevgui("-check", good).DoesNothing(),
		ThatCrevgui("-check", good, bad).ExitsWith(2).
			WritesStderrContaining(bad+":1:4: <p><!--wx_foo--></p>\n"),
		ThatCrevgui("-check", list).ExitsWith(2).
			WritesStderrContaining(`template "row" not found`),
		ThatCrevgui("-check", "-json", bad).ExitsWith(2).
			WritesStdout(mustToJSON([]problemJSON{{
				File: bad, Kind: "UnknownPlaceholderKind",
				Message: `unknown placeholder kind "wx_foo"`, Line: 1, Column: 4,
			}})+"\n"),
		ThatCrevgui("-check", "-json", good).WritesStdout("[]\n"),
		ThatCrevgui("-check", filepath.Join(dir, "missing.html")).ExitsWith(2).
			WritesStderrContaining("missing.html"),

		ThatCrevgui().ExitsWith(2).WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func TestProgram_PlainOutput(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.html")
	must.WriteFile(bad, "<p><!--wx_foo--></p>")
	_, _, stderr := Run(&Program{}, "-check", bad)
	for _, r := range stderr {
		if r == '\033' {
			t.Fatalf("got escape sequence in stderr %q", stderr)
		}
	}
}

func TestCheck(t *testing.T) {
	problems := Check([]Source{
		{"dir/list.html", "<ul><!--wtmplt_start_row--><!--wtmplt_end_row--></ul>"},
		{"dir/row.html", "<li><!--wt_name--></li>"},
		{"dir/bad.html", "<p>"},
		{"dir/page.html", "<div><!--wtmplt_start_bad--><!--wtmplt_end_bad--></div>"},
	})
	if len(problems) != 2 {
		t.Fatalf("got %d problems, want 2: %v", len(problems), problems)
	}
	if kind := errs.KindOf(problems[0]); kind != errs.KindUnclosedElement {
		t.Errorf("got kind %v for the first problem, want UnclosedElement", kind)
	}
	e, ok := diag.AsError[tmpl.ParseErrorTag](problems[1])
	if !ok || e.Context.Name != "dir/page.html" || errs.Subject(e) != "bad" {
		t.Errorf("got second problem %v, want missing template bad in dir/page.html", problems[1])
	}
}
