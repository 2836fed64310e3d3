package dom_test

import (
	"testing"

	. "src.crevgui.dev/pkg/dom"
	"src.crevgui.dev/pkg/tt"
)

func form() *Element {
	return &Element{Tag: "form", Children: []Node{
		&Element{Tag: "input", Attrs: []Attr{{Name: "id", Value: "crate_name"}, {Name: "value", Value: "a&amp;b"}}},
		&Element{Tag: "input", Attrs: []Attr{{Name: "id", Value: "agree"}, {Name: "type", Value: "checkbox"}, {Name: "checked", Bare: true}}},
		&Element{Tag: "select", Attrs: []Attr{{Name: "id", Value: "rating"}}, Children: []Node{
			&Element{Tag: "option", Attrs: []Attr{{Name: "value", Value: "neutral"}}, Children: []Node{&Text{"Neutral"}}},
			&Element{Tag: "option", Attrs: []Attr{{Name: "value", Value: "positive"}, {Name: "selected", Bare: true}}, Children: []Node{&Text{"Positive"}}},
		}},
		&Element{Tag: "textarea", Attrs: []Attr{{Name: "id", Value: "comment"}}, Children: []Node{&Text{"1 &lt; 2"}}},
		&Element{Tag: "button", Attrs: []Attr{{Name: "id", Value: "btn_save"}}, Children: []Node{&Text{"Save"}}},
	}}
}

func TestHTML(t *testing.T) {
	tt.Test(t, tt.Fn("HTML", HTML), tt.Table{
		tt.Args(form()).Rets(`<form>` +
			`<input id="crate_name" value="a&amp;b">` +
			`<input id="agree" type="checkbox" checked>` +
			`<select id="rating"><option value="neutral">Neutral</option><option value="positive" selected>Positive</option></select>` +
			`<textarea id="comment">1 &lt; 2</textarea>` +
			`<button id="btn_save">Save</button>` +
			`</form>`),
		tt.Args(&Element{Tag: "p", Attrs: []Attr{{Name: "title", Value: `say "hi"`}}}).Rets(`<p title="say &quot;hi&quot;"></p>`),
		tt.Args(&Text{"x &amp; y"}).Rets("x &amp; y"),
	})
}

func TestIsVoid(t *testing.T) {
	tt.Test(t, tt.Fn("IsVoid", IsVoid), tt.Table{
		tt.Args("input").Rets(true),
		tt.Args("br").Rets(true),
		tt.Args("wbr").Rets(true),
		tt.Args("div").Rets(false),
		tt.Args("custom-element").Rets(false),
	})
}

func TestControlValue(t *testing.T) {
	f := form()
	value := func(id string) string { return ControlValue(f.Find(id)) }
	tt.Test(t, tt.Fn("value", value), tt.Table{
		tt.Args("crate_name").Rets("a&b"),
		tt.Args("agree").Rets("on"),
		tt.Args("rating").Rets("positive"),
		tt.Args("comment").Rets("1 < 2"),
		tt.Args("btn_save").Rets("Save"),
	})

	SetControlValue(f.Find("crate_name"), "<x>")
	SetControlValue(f.Find("agree"), "")
	SetControlValue(f.Find("rating"), "neutral")
	SetControlValue(f.Find("comment"), "ok & done")
	tt.Test(t, tt.Fn("value", value), tt.Table{
		tt.Args("crate_name").Rets("<x>"),
		tt.Args("agree").Rets(""),
		tt.Args("rating").Rets("neutral"),
		tt.Args("comment").Rets("ok & done"),
	})
}

func TestElement_Clone(t *testing.T) {
	f := form()
	c := f.Clone().(*Element)
	c.Find("crate_name").SetAttr("value", "changed")
	if v, _ := f.Find("crate_name").Attr("value"); v != "a&b" {
		t.Errorf("changing a clone changes the original, value is now %q", v)
	}
}

func TestDocument(t *testing.T) {
	d := NewDocument("main", "modal")
	if err := d.Patch("sidebar", form()); err == nil {
		t.Errorf("Patch to unknown region returns nil error")
	}
	if err := d.Patch("main", form()); err != nil {
		t.Fatal(err)
	}

	clicked := 0
	d.Listen("main", "btn_save", 0, func() { clicked++ })
	if err := d.Click("btn_save", 0); err != nil || clicked != 1 {
		t.Errorf("Click -> %v, listener called %d times", err, clicked)
	}
	if err := d.Click("btn_save", 1); err == nil {
		t.Errorf("Click on an element without listener returns nil error")
	}

	if err := d.SetValue("crate_name", "serde"); err != nil {
		t.Fatal(err)
	}
	if v, ok := d.Value("crate_name"); v != "serde" || !ok {
		t.Errorf("Value after SetValue -> (%q, %v)", v, ok)
	}
	if _, ok := d.Value("nope"); ok {
		t.Errorf("Value of missing control reports ok")
	}

	// Patching drops the listeners of the old content.
	d.Patch("main", &Element{Tag: "p"})
	if err := d.Click("btn_save", 0); err == nil {
		t.Errorf("listener survives a patch")
	}
	if h := d.HTML("main"); h != "<p></p>" {
		t.Errorf("HTML(main) -> %q", h)
	}
	d.Clear("main")
	if h := d.HTML("main"); h != "" {
		t.Errorf("HTML(main) after Clear -> %q", h)
	}
}
