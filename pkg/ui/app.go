// Package ui implements the GUI side of the engine: it applies responses from
// the backend to the page, wires the rendered elements to outgoing requests,
// and runs the serial event loop that connects the two.
package ui

import (
	"src.crevgui.dev/pkg/dom"
	"src.crevgui.dev/pkg/errs"
	"src.crevgui.dev/pkg/logutil"
	"src.crevgui.dev/pkg/rpc"
	"src.crevgui.dev/pkg/tmpl"
	"src.crevgui.dev/pkg/vals"
)

var logger = logutil.GetLogger("[ui] ")

// Names of the page regions.
const (
	RegionMain  = "main"
	RegionModal = "modal"
)

// Templates the App renders on its own.
const (
	ErrorModalTemplate = "error_modal"
	ModalTemplate      = "modal"
)

// Route says where the response to a method is rendered.
type Route struct {
	Template string
	Region   string
}

// Routes maps response methods to routes.
var Routes = map[string]Route{
	"crate_list_page":     {"crate_list", RegionMain},
	"version_list_page":   {"version_list", RegionMain},
	"review_edit_page":    {"review_edit", RegionMain},
	"review_list_page":    {"review_list", RegionMain},
	"verify_project_page": {"verify_result", RegionMain},
	"error_modal":         {ErrorModalTemplate, RegionModal},
	"modal_message":       {ModalTemplate, RegionModal},
}

// Host is the document the App renders into. A region holds at most one
// fragment; patching a region replaces its content and drops the listeners
// attached to it.
//
// *dom.Document implements Host.
type Host interface {
	Patch(region string, frag *dom.Element) error
	Clear(region string) error
	Listen(region, id string, nth int, fn func())
	Value(id string) (string, bool)
}

// App applies responses to a Host.
type App struct {
	set     *tmpl.Set
	routes  map[string]Route
	host    Host
	clickCb func(Click)

	// Key of the review to delete once the deletion is confirmed.
	pendingDelete string
}

// NewApp creates an App. If routes is nil, Routes is used.
func NewApp(set *tmpl.Set, routes map[string]Route, host Host) *App {
	if routes == nil {
		routes = Routes
	}
	return &App{set: set, routes: routes, host: host, clickCb: dummyClickCb}
}

func dummyClickCb(Click) {}

// ClickCb sets the callback for clicks on wired elements. It is called on
// whatever goroutine the Host delivers clicks on.
func (a *App) ClickCb(cb func(Click)) {
	a.clickCb = cb
}

// Apply renders a response into its region. On failure it shows the error
// modal instead, leaving the other regions untouched, and returns the error.
func (a *App) Apply(resp *rpc.Response) error {
	err := a.apply(resp)
	if err != nil {
		a.ShowError(err)
	}
	return err
}

func (a *App) apply(resp *rpc.Response) error {
	route, ok := a.routes[resp.Method]
	if !ok {
		return errs.UnknownResponseMethod{Method: resp.Method}
	}
	var t *tmpl.Template
	if resp.HTML != nil {
		var err error
		t, err = tmpl.Parse(resp.Method, *resp.HTML)
		if err != nil {
			return err
		}
	} else {
		t, ok = a.set.Lookup(route.Template)
		if !ok {
			return errs.TemplateNotFound{Name: route.Template}
		}
	}
	rec, err := a.set.DecodeFor(t, resp.Data)
	if err != nil {
		return err
	}
	frag, err := a.set.RenderTemplate(t, rec)
	if err != nil {
		return err
	}
	return a.show(route.Region, frag)
}

// Shows a rendered fragment in a region and wires it. A new page dismisses
// the modal.
func (a *App) show(region string, frag *dom.Element) error {
	if err := a.host.Patch(region, frag); err != nil {
		return err
	}
	if region != RegionModal {
		if err := a.host.Clear(RegionModal); err != nil {
			logger.Println("cannot clear modal:", err)
		}
	}
	a.wire(region, frag)
	return nil
}

// ShowError renders err in the error modal. Failures to do so are logged and
// otherwise ignored.
func (a *App) ShowError(err error) {
	logger.Println("showing error:", err)
	rec := vals.Record{
		"kind":    vals.String(errs.KindOf(err).String()),
		"message": vals.String(err.Error()),
		"detail":  vals.String(errs.Subject(err)),
	}
	frag, renderErr := a.set.Render(ErrorModalTemplate, rec)
	if renderErr == nil {
		renderErr = a.show(RegionModal, frag)
	}
	if renderErr != nil {
		logger.Println("cannot show error modal:", renderErr)
	}
}

// Shows the generic modal with a message.
func (a *App) showModal(title, message string, confirm bool) error {
	frag, err := a.set.Render(ModalTemplate, vals.Record{
		"title":   vals.String(title),
		"message": vals.String(message),
		"confirm": vals.Bool(confirm),
	})
	if err != nil {
		return err
	}
	return a.show(RegionModal, frag)
}
