//go:build js && wasm

// Crevgui-wasm is the part of the GUI that runs in the browser. It renders the
// responses of the crevgui backend into the page, and turns clicks into
// requests.
package main

import (
	"context"
	"strconv"
	"sync"
	"syscall/js"

	"src.crevgui.dev/pkg/asset"
	"src.crevgui.dev/pkg/dom"
	"src.crevgui.dev/pkg/logutil"
	"src.crevgui.dev/pkg/must"
	"src.crevgui.dev/pkg/rpc"
	"src.crevgui.dev/pkg/tmpl"
	"src.crevgui.dev/pkg/ui"
)

var logger = logutil.GetLogger("[wasm] ")

func main() {
	set := must.OK1(tmpl.ParseSet(asset.Default().Templates()))
	app := ui.NewApp(set, nil, newHost(js.Global().Get("document")))
	lp := ui.NewLoop(app, rpc.NewHTTPTransport("/rpc"))
	lp.AppliedCb(func(req *rpc.Request, err error) {
		if err != nil {
			logger.Printf("%s: %v", req.Method, err)
		}
	})
	lp.Send(must.OK1(rpc.NewRequest("crate_list", nil)))
	lp.Run(context.Background())
}

// Implements ui.Host on the browser DOM. Each region is the element whose id
// is the region name.
type host struct {
	mutex    sync.Mutex
	document js.Value
	// Click handlers installed in each region, released when the region is
	// replaced.
	funcs map[string][]js.Func
}

func newHost(document js.Value) *host {
	return &host{document: document, funcs: make(map[string][]js.Func)}
}

func (h *host) region(name string) (js.Value, error) {
	el := h.document.Call("getElementById", name)
	if el.IsNull() {
		return js.Value{}, missingRegionError(name)
	}
	return el, nil
}

type missingRegionError string

func (e missingRegionError) Error() string { return "no region #" + string(e) }

func (h *host) Patch(region string, frag *dom.Element) error {
	el, err := h.region(region)
	if err != nil {
		return err
	}
	h.release(region)
	el.Set("innerHTML", dom.HTML(frag))
	return nil
}

func (h *host) Clear(region string) error {
	el, err := h.region(region)
	if err != nil {
		return err
	}
	h.release(region)
	el.Set("innerHTML", "")
	return nil
}

func (h *host) release(region string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, f := range h.funcs[region] {
		f.Release()
	}
	delete(h.funcs, region)
}

func (h *host) Listen(region, id string, nth int, fn func()) {
	el, err := h.region(region)
	if err != nil {
		logger.Println(err)
		return
	}
	// Rows of a list share ids, so match the attribute instead of using
	// getElementById.
	matches := el.Call("querySelectorAll", "[id="+strconv.Quote(id)+"]")
	if nth >= matches.Length() {
		logger.Printf("no element #%s number %d in %s", id, nth, region)
		return
	}
	f := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) > 0 {
			args[0].Call("preventDefault")
		}
		// fn only queues the click on the loop, so calling it here keeps
		// clicks in the order the browser dispatches them.
		fn()
		return nil
	})
	matches.Index(nth).Call("addEventListener", "click", f)
	h.mutex.Lock()
	h.funcs[region] = append(h.funcs[region], f)
	h.mutex.Unlock()
}

func (h *host) Value(id string) (string, bool) {
	el := h.document.Call("getElementById", id)
	if el.IsNull() {
		return "", false
	}
	if el.Get("tagName").String() == "INPUT" {
		switch el.Get("type").String() {
		case "checkbox", "radio":
			if el.Get("checked").Bool() {
				return "on", true
			}
			return "", true
		}
	}
	v := el.Get("value")
	if v.IsUndefined() {
		return el.Get("textContent").String(), true
	}
	return v.String(), true
}
