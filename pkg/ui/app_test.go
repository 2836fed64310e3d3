package ui_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"src.crevgui.dev/pkg/asset"
	"src.crevgui.dev/pkg/dom"
	"src.crevgui.dev/pkg/errs"
	"src.crevgui.dev/pkg/rpc"
	"src.crevgui.dev/pkg/tmpl"
	. "src.crevgui.dev/pkg/ui"
)

func setup(t *testing.T) (*App, *dom.Document) {
	t.Helper()
	set, err := tmpl.ParseSet(asset.Default().Templates())
	if err != nil {
		t.Fatal(err)
	}
	doc := dom.NewDocument(RegionMain, RegionModal)
	return NewApp(set, nil, doc), doc
}

func response(t *testing.T, method string, data any) *rpc.Response {
	t.Helper()
	resp, err := rpc.NewResponse(method, data)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

var crateListData = map[string]any{
	"has_crates":  true,
	"project_dir": "/src/app",
	"crate_row": []map[string]any{
		{"crate_name": "serde", "review_count": "3"},
		{"crate_name": "rand", "review_count": "1"},
	},
}

var reviewEditData = map[string]any{
	"crate_name":      "serde",
	"crate_version":   "1.0.0",
	"is_new":          false,
	"sel_th_low":      true,
	"sel_un_high":     true,
	"sel_ra_positive": true,
	"comment":         "Looks <fine>.",
	"key":             "serde@1.0.0",
}

func mustApply(t *testing.T, app *App, resp *rpc.Response) {
	t.Helper()
	if err := app.Apply(resp); err != nil {
		t.Fatalf("Apply(%s) -> %v", resp.Method, err)
	}
}

func TestApply_Page(t *testing.T) {
	app, doc := setup(t)
	mustApply(t, app, response(t, "crate_list_page", crateListData))

	main := doc.Region(RegionMain)
	if main == nil || main.ID() != "crate_list_page" {
		t.Fatalf("main region has %q", doc.HTML(RegionMain))
	}
	rows := main.FindAll("btn_open_crate")
	var values []string
	for _, row := range rows {
		v, _ := row.Attr("value")
		values = append(values, v)
	}
	if diff := cmp.Diff([]string{"serde", "rand"}, values); diff != "" {
		t.Errorf("crate row buttons (-want +got):\n%s", diff)
	}
	if v, _ := doc.Value("project_dir"); v != "/src/app" {
		t.Errorf("project_dir = %q", v)
	}
	if strings.Contains(doc.HTML(RegionMain), "No reviewed crates") {
		t.Errorf("empty notice shown although has_crates is true")
	}
	if doc.HTML(RegionModal) != "" {
		t.Errorf("modal region not empty")
	}
}

func TestApply_UnknownMethodShowsErrorModal(t *testing.T) {
	app, doc := setup(t)
	mustApply(t, app, response(t, "crate_list_page", crateListData))
	before := doc.HTML(RegionMain)

	err := app.Apply(&rpc.Response{Method: "nope"})
	if errs.KindOf(err) != errs.KindUnknownResponseMethod {
		t.Errorf("Apply returns %v, want UnknownResponseMethod", err)
	}
	modal := doc.Region(RegionModal)
	if modal == nil {
		t.Fatal("modal region empty")
	}
	if !strings.Contains(modal.TextContent(), "nope") {
		t.Errorf("error modal doesn't mention method: %s", doc.HTML(RegionModal))
	}
	if after := doc.HTML(RegionMain); after != before {
		t.Errorf("main region changed:\nbefore: %s\nafter: %s", before, after)
	}
}

func TestApply_DecodeError(t *testing.T) {
	app, doc := setup(t)
	err := app.Apply(response(t, "version_list_page", map[string]any{"crate_name": true}))
	if errs.KindOf(err) != errs.KindDecode {
		t.Errorf("Apply returns %v, want DecodeError", err)
	}
	if !strings.Contains(doc.HTML(RegionModal), "DecodeError") {
		t.Errorf("error modal doesn't show kind: %s", doc.HTML(RegionModal))
	}
	if doc.HTML(RegionMain) != "" {
		t.Errorf("main region patched on error")
	}
}

func TestApply_PageDismissesModal(t *testing.T) {
	app, doc := setup(t)
	app.Apply(&rpc.Response{Method: "nope"})
	if doc.HTML(RegionModal) == "" {
		t.Fatal("no error modal")
	}
	mustApply(t, app, response(t, "crate_list_page", crateListData))
	if doc.HTML(RegionModal) != "" {
		t.Errorf("modal still shown after page change")
	}
}

func TestApply_ResponseHTML(t *testing.T) {
	app, doc := setup(t)
	resp := response(t, "modal_message", map[string]any{"x": "a<b"}).
		WithHTML(`<div class="modal"><!--wt_x-->_</div>`)
	mustApply(t, app, resp)
	if got, want := doc.HTML(RegionModal), `<div class="modal">a&lt;b</div>`; got != want {
		t.Errorf("modal = %q, want %q", got, want)
	}

	resp = response(t, "modal_message", nil).WithHTML(`<div>`)
	if err := app.Apply(resp); errs.KindOf(err) != errs.KindUnclosedElement {
		t.Errorf("Apply with bad html returns %v, want UnclosedElement", err)
	}
}

func TestApply_MissingErrorModalIsSwallowed(t *testing.T) {
	doc := dom.NewDocument(RegionMain, RegionModal)
	app := NewApp(tmpl.NewSet(), nil, doc)
	err := app.Apply(response(t, "crate_list_page", nil))
	if errs.KindOf(err) != errs.KindTemplateNotFound {
		t.Errorf("Apply returns %v, want TemplateNotFound", err)
	}
	if doc.HTML(RegionModal) != "" || doc.HTML(RegionMain) != "" {
		t.Errorf("document changed")
	}
}

func TestShowError(t *testing.T) {
	app, doc := setup(t)
	app.ShowError(errs.Transport{Err: errString("connection refused")})
	text := doc.Region(RegionModal).TextContent()
	for _, want := range []string{"TransportError", "connection refused"} {
		if !strings.Contains(text, want) {
			t.Errorf("error modal doesn't contain %q: %s", want, text)
		}
	}
}

type errString string

func (e errString) Error() string { return string(e) }

// Collects clicks and turns them into requests.
type clicker struct {
	t      *testing.T
	app    *App
	doc    *dom.Document
	clicks []Click
}

func newClicker(t *testing.T, app *App, doc *dom.Document) *clicker {
	c := &clicker{t: t, app: app, doc: doc}
	app.ClickCb(func(cl Click) { c.clicks = append(c.clicks, cl) })
	return c
}

// Clicks the nth element with the id and returns the request, nil for local
// actions.
func (c *clicker) click(id string, nth int) *rpc.Request {
	c.t.Helper()
	c.clicks = nil
	if err := c.doc.Click(id, nth); err != nil {
		c.t.Fatal(err)
	}
	if len(c.clicks) != 1 {
		c.t.Fatalf("got %d clicks", len(c.clicks))
	}
	req, err := c.app.Click(c.clicks[0])
	if err != nil {
		c.t.Fatalf("Click(%s) -> %v", id, err)
	}
	return req
}

func requestData(t *testing.T, req *rpc.Request) map[string]string {
	t.Helper()
	var data map[string]string
	if err := req.DecodeData(&data); err != nil {
		t.Fatal(err)
	}
	return data
}

func TestWiring(t *testing.T) {
	app, doc := setup(t)
	c := newClicker(t, app, doc)
	mustApply(t, app, response(t, "crate_list_page", crateListData))

	req := c.click("btn_open_crate", 1)
	if req.Method != "version_list" {
		t.Errorf("method = %q", req.Method)
	}
	if diff := cmp.Diff(map[string]string{"crate_name": "rand"}, requestData(t, req)); diff != "" {
		t.Errorf("data (-want +got):\n%s", diff)
	}

	doc.SetValue("crate_name", "tokio")
	doc.SetValue("crate_version", "1.2.3")
	req = c.click("btn_new", 0)
	if req.Method != "review_new" {
		t.Errorf("method = %q", req.Method)
	}
	if diff := cmp.Diff(map[string]string{"crate_name": "tokio", "crate_version": "1.2.3"},
		requestData(t, req)); diff != "" {
		t.Errorf("data (-want +got):\n%s", diff)
	}

	req = c.click("btn_review_list", 0)
	if req.Method != "review_list" || len(requestData(t, req)) != 0 {
		t.Errorf("got %s %s", req.Method, req.Data)
	}
}

func TestWiring_ReviewForm(t *testing.T) {
	app, doc := setup(t)
	c := newClicker(t, app, doc)
	mustApply(t, app, response(t, "review_edit_page", reviewEditData))

	doc.SetValue("rating", "strong")
	doc.SetValue("comment", "Fine & good.")
	req := c.click("btn_save", 0)
	if req.Method != "review_save" {
		t.Errorf("method = %q", req.Method)
	}
	want := map[string]string{
		"crate_name":    "serde",
		"crate_version": "1.0.0",
		"thoroughness":  "low",
		"understanding": "high",
		"rating":        "strong",
		"comment":       "Fine & good.",
	}
	if diff := cmp.Diff(want, requestData(t, req)); diff != "" {
		t.Errorf("data (-want +got):\n%s", diff)
	}
}

func TestWiring_Delete(t *testing.T) {
	app, doc := setup(t)
	c := newClicker(t, app, doc)
	mustApply(t, app, response(t, "review_edit_page", reviewEditData))

	if req := c.click("btn_delete", 0); req != nil {
		t.Fatalf("btn_delete sends %s", req.Method)
	}
	if !strings.Contains(doc.HTML(RegionModal), "serde@1.0.0") {
		t.Errorf("confirmation modal = %s", doc.HTML(RegionModal))
	}
	req := c.click("btn_confirm_delete", 0)
	if req.Method != "review_delete" {
		t.Errorf("method = %q", req.Method)
	}
	if diff := cmp.Diff(map[string]string{"key": "serde@1.0.0"}, requestData(t, req)); diff != "" {
		t.Errorf("data (-want +got):\n%s", diff)
	}

	c.click("btn_delete", 0)
	if req := c.click("btn_modal_close", 0); req != nil {
		t.Errorf("btn_modal_close sends %s", req.Method)
	}
	if doc.HTML(RegionModal) != "" {
		t.Errorf("modal not closed")
	}
}

func TestWiring_RepeatedButtons(t *testing.T) {
	app, doc := setup(t)
	c := newClicker(t, app, doc)
	mustApply(t, app, response(t, "version_list_page", map[string]any{
		"crate_name":   "serde",
		"crate_url":    "https://crates.io/crates/serde",
		"has_versions": true,
		"versions": []map[string]any{
			{"version": "1.0.1", "reviewed": false, "rating": "", "key": ""},
			{"version": "1.0.0", "reviewed": true, "rating": "positive", "key": "serde@1.0.0"},
			{"version": "0.9.0", "reviewed": false, "rating": "", "key": ""},
		},
	}))

	req := c.click("btn_new_version", 1)
	want := map[string]string{"crate_name": "serde", "crate_version": "0.9.0"}
	if diff := cmp.Diff(want, requestData(t, req)); diff != "" {
		t.Errorf("data (-want +got):\n%s", diff)
	}
	req = c.click("btn_edit", 0)
	if diff := cmp.Diff(map[string]string{"key": "serde@1.0.0"}, requestData(t, req)); diff != "" {
		t.Errorf("data (-want +got):\n%s", diff)
	}
	req = c.click("btn_open_external", 0)
	if diff := cmp.Diff(map[string]string{"url": "https://crates.io/crates/serde"},
		requestData(t, req)); diff != "" {
		t.Errorf("data (-want +got):\n%s", diff)
	}
}

func TestRoutes(t *testing.T) {
	set, _ := tmpl.ParseSet(asset.Default().Templates())
	for method, route := range Routes {
		if _, ok := set.Lookup(route.Template); !ok {
			t.Errorf("route %s uses missing template %s", method, route.Template)
		}
	}
	for _, a := range Actions {
		if (a.Method == "") == (a.Local == NoLocalAction) {
			t.Errorf("action %s must have exactly one of method and local action", a.ID)
		}
	}
}
