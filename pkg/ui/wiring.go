package ui

import (
	"src.crevgui.dev/pkg/dom"
	"src.crevgui.dev/pkg/rpc"
)

// Action is what happens when an element with a recognized ID is clicked.
type Action struct {
	ID string
	// The method of the request to send. Empty for local actions.
	Method string
	// If not empty, the request field that receives the value attribute of
	// the clicked element.
	Own string
	// IDs of the controls whose current values are sent, each in a request
	// field of the same name.
	Form []string
	// If not empty, the request field that receives the key of the review
	// pending deletion.
	Pending string
	Local   LocalAction
}

// LocalAction is an action handled without a request.
type LocalAction int

// Possible values of LocalAction.
const (
	NoLocalAction LocalAction = iota
	// Asks for confirmation before deleting a review.
	ConfirmDelete
	// Dismisses the modal.
	CloseModal
)

var reviewForm = []string{
	"crate_name", "crate_version", "thoroughness", "understanding", "rating", "comment"}

// Actions lists all recognized element IDs. Elements with other IDs are left
// alone.
var Actions = []*Action{
	{ID: "btn_crate_list", Method: "crate_list"},
	{ID: "btn_open_crate", Method: "version_list", Own: "crate_name"},
	{ID: "btn_review_list", Method: "review_list"},
	{ID: "btn_new", Method: "review_new", Form: []string{"crate_name", "crate_version"}},
	{ID: "btn_new_version", Method: "review_new", Own: "crate_version", Form: []string{"crate_name"}},
	{ID: "btn_edit", Method: "review_edit", Own: "key"},
	{ID: "btn_save", Method: "review_save", Form: reviewForm},
	{ID: "btn_cancel", Method: "review_list"},
	{ID: "btn_delete", Own: "key", Local: ConfirmDelete},
	{ID: "btn_confirm_delete", Method: "review_delete", Pending: "key"},
	{ID: "btn_publish", Method: "review_publish"},
	{ID: "btn_update_index", Method: "update_index"},
	{ID: "btn_verify", Method: "verify_project", Form: []string{"project_dir"}},
	{ID: "btn_open_external", Method: "open_external", Own: "url"},
	{ID: "btn_modal_close", Local: CloseModal},
}

// Click is a click on a wired element.
type Click struct {
	Action *Action
	// The value attribute of the element when it was rendered.
	Value string
}

// Attaches listeners to the elements of a freshly rendered fragment.
func (a *App) wire(region string, frag *dom.Element) {
	for _, action := range Actions {
		for i, el := range frag.FindAll(action.ID) {
			value, _ := el.Attr("value")
			click := Click{action, value}
			a.host.Listen(region, action.ID, i, func() { a.clickCb(click) })
		}
	}
}

// Click handles a click. It performs local actions itself and returns nil;
// for other actions it reads the form controls and returns the request to
// send.
func (a *App) Click(c Click) (*rpc.Request, error) {
	action := c.Action
	switch action.Local {
	case ConfirmDelete:
		a.pendingDelete = c.Value
		return nil, a.showModal("Delete review", "Delete the review of "+c.Value+"?", true)
	case CloseModal:
		return nil, a.host.Clear(RegionModal)
	}

	data := make(map[string]string)
	if action.Own != "" {
		data[action.Own] = c.Value
	}
	for _, id := range action.Form {
		if v, ok := a.host.Value(id); ok {
			data[id] = v
		}
	}
	if action.Pending != "" {
		data[action.Pending] = a.pendingDelete
		a.pendingDelete = ""
	}
	return rpc.NewRequest(action.Method, data)
}
