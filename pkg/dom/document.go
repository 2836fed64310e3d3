package dom

import (
	"fmt"
	"sync"
)

// Document is an in-memory host document. It has a fixed set of named
// regions, each holding at most one rendered fragment, and keeps the click
// listeners attached to elements of those fragments.
//
// It is used by tests and by headless drivers; the browser host binds the
// same operations to the real DOM.
type Document struct {
	mutex     sync.Mutex
	regions   map[string]*Element
	listeners map[string][]listener
}

type listener struct {
	id  string
	nth int
	fn  func()
}

// NewDocument creates a Document with the given regions, all empty.
func NewDocument(regions ...string) *Document {
	d := &Document{
		regions:   make(map[string]*Element),
		listeners: make(map[string][]listener),
	}
	for _, r := range regions {
		d.regions[r] = nil
	}
	return d
}

// Patch replaces the content of a region with a fragment. Listeners attached
// to the previous content are dropped.
func (d *Document) Patch(region string, frag *Element) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if _, ok := d.regions[region]; !ok {
		return fmt.Errorf("no region %q", region)
	}
	d.regions[region] = frag
	delete(d.listeners, region)
	return nil
}

// Clear empties a region.
func (d *Document) Clear(region string) error {
	return d.Patch(region, nil)
}

// Listen attaches fn as the click listener of the nth element (counting from
// 0) with the given id in a region.
func (d *Document) Listen(region, id string, nth int, fn func()) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.listeners[region] = append(d.listeners[region], listener{id, nth, fn})
}

// Click simulates a click on the nth element with the given id, searching
// all regions. It returns an error if no listener is attached to it.
func (d *Document) Click(id string, nth int) error {
	d.mutex.Lock()
	var fn func()
	for _, ls := range d.listeners {
		for _, l := range ls {
			if l.id == id && l.nth == nth {
				fn = l.fn
			}
		}
	}
	d.mutex.Unlock()
	if fn == nil {
		return fmt.Errorf("no listener on #%s[%d]", id, nth)
	}
	fn()
	return nil
}

// Region returns a copy of the fragment in a region, or nil if it is empty.
func (d *Document) Region(region string) *Element {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if frag := d.regions[region]; frag != nil {
		return frag.Clone().(*Element)
	}
	return nil
}

// HTML returns the HTML of the fragment in a region, or "" if it is empty.
func (d *Document) HTML(region string) string {
	if frag := d.Region(region); frag != nil {
		return HTML(frag)
	}
	return ""
}

// Value returns the current value of the first control with the given id.
func (d *Document) Value(id string) (string, bool) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	el := d.find(id)
	if el == nil {
		return "", false
	}
	return ControlValue(el), true
}

// SetValue sets the current value of the first control with the given id,
// like a user editing it.
func (d *Document) SetValue(id, value string) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	el := d.find(id)
	if el == nil {
		return fmt.Errorf("no element #%s", id)
	}
	SetControlValue(el, value)
	return nil
}

func (d *Document) find(id string) *Element {
	for _, frag := range d.regions {
		if frag == nil {
			continue
		}
		if el := frag.Find(id); el != nil {
			return el
		}
	}
	return nil
}

// ControlValue returns the value of a form control: the value attribute of
// an input (or "on"/"" for a checkbox or radio button, depending on whether
// it is checked), the value of the selected option of a select, and the
// text of a textarea. For other elements it returns the value attribute if
// present, and the text content otherwise.
func ControlValue(el *Element) string {
	switch el.Tag {
	case "input":
		if typ, _ := el.Attr("type"); typ == "checkbox" || typ == "radio" {
			if el.HasAttr("checked") {
				return "on"
			}
			return ""
		}
		v, _ := el.Attr("value")
		return v
	case "select":
		var first *Element
		var selected *Element
		el.Walk(func(o *Element) bool {
			if o.Tag != "option" {
				return true
			}
			if first == nil {
				first = o
			}
			if selected == nil && o.HasAttr("selected") {
				selected = o
			}
			return false
		})
		if selected == nil {
			selected = first
		}
		if selected == nil {
			return ""
		}
		if v, ok := selected.Attr("value"); ok {
			return v
		}
		return selected.TextContent()
	case "textarea":
		return el.TextContent()
	}
	if v, ok := el.Attr("value"); ok {
		return v
	}
	return el.TextContent()
}

// SetControlValue sets the value of a form control; see [ControlValue].
func SetControlValue(el *Element, value string) {
	switch el.Tag {
	case "input":
		if typ, _ := el.Attr("type"); typ == "checkbox" || typ == "radio" {
			el.RemoveAttr("checked")
			if value != "" {
				el.Attrs = append(el.Attrs, Attr{Name: "checked", Bare: true})
			}
			return
		}
		el.SetAttr("value", value)
	case "select":
		el.Walk(func(o *Element) bool {
			if o.Tag != "option" {
				return true
			}
			v, ok := o.Attr("value")
			if !ok {
				v = o.TextContent()
			}
			o.RemoveAttr("selected")
			if v == value {
				o.Attrs = append(o.Attrs, Attr{Name: "selected", Bare: true})
			}
			return false
		})
	case "textarea":
		el.Children = []Node{&Text{Escape(value)}}
	default:
		el.SetAttr("value", value)
	}
}
