package diag

import (
	"testing"

	"src.crevgui.dev/pkg/testutil"
)

func setCulpritMarkers(t *testing.T, start, end string) {
	testutil.Set(t, &culpritStart, start)
	testutil.Set(t, &culpritEnd, end)
}

func setMessageMarkers(t *testing.T, start, end string) {
	testutil.Set(t, &messageStart, start)
	testutil.Set(t, &messageEnd, end)
}

var contextShowTests = []struct {
	name    string
	context *Context
	indent  string
	want    string
}{
	{
		name: "single-line culprit",
		//                               0123456789
		context: NewContext("tpl", "<p><b></p>", Ranging{3, 6}),
		want:    "tpl:1:4: <p><<b>></p>",
	},
	{
		name:    "multi-line culprit",
		context: NewContext("tpl", "<p>\n<b\nx>", Ranging{4, 9}),
		indent:  "_",
		want:    "tpl:2:1: <<b>\n_         <x>>",
	},
	{
		name:    "empty culprit",
		context: NewContext("tpl", "<p>", Ranging{3, 3}),
		want:    "tpl:1:4: <p><^>",
	},
	{
		name:    "invalid range",
		context: NewContext("tpl", "<p>", Ranging{2, 1}),
		want:    "tpl, invalid position 2-1",
	},
}

func TestContext_Show(t *testing.T) {
	setCulpritMarkers(t, "<", ">")
	for _, tc := range contextShowTests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.context.Show(tc.indent); got != tc.want {
				t.Errorf("Show() -> %q, want %q", got, tc.want)
			}
		})
	}
}

func TestContext_Excerpt(t *testing.T) {
	long := "<div>" + string(make([]byte, 100)) + "</div>"
	tests := []struct {
		context *Context
		want    string
	}{
		{NewContext("tpl", "<p>abc</p>", Ranging{0, 3}), "<p>"},
		{NewContext("tpl", "<p>abc\nx", PointRanging(3)), "abc"},
		{NewContext("tpl", long, Ranging{0, len(long)}), long[:excerptMax] + "..."},
		{NewContext("tpl", "x", Ranging{-1, -1}), ""},
	}
	for _, test := range tests {
		if got := test.context.Excerpt(); got != test.want {
			t.Errorf("Excerpt() -> %q, want %q", got, test.want)
		}
	}
}

func TestContext_Position(t *testing.T) {
	c := NewContext("tpl", "ab\ncdé\nfg", PointRanging(7))
	line, col := c.Position()
	if line != 2 || col != 4 {
		t.Errorf("Position() -> (%d, %d), want (2, 4)", line, col)
	}
}
