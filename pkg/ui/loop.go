package ui

import (
	"context"
	"errors"

	"src.crevgui.dev/pkg/errs"
	"src.crevgui.dev/pkg/rpc"
)

// Buffer size of the input channel. The value is chosen for no particular
// reason.
const inputChSize = 128

// Loop is the main loop of the GUI. It applies every response in the order
// it arrives, and turns clicks into requests.
type Loop struct {
	app       *App
	transport rpc.Transport

	inputCh   chan event
	appliedCb AppliedCb
	returnCh  chan error
}

// A placeholder type for events.
type event any

type sendEvent struct{ req *rpc.Request }

type responseEvent struct {
	req  *rpc.Request
	resp *rpc.Response
	err  error
}

// AppliedCb is called after the Loop has handled the response to a request.
// The error is nil if the response was applied successfully.
type AppliedCb func(req *rpc.Request, err error)

func dummyAppliedCb(*rpc.Request, error) {}

// NewLoop creates a Loop that sends requests over the transport and applies
// responses with the App.
func NewLoop(app *App, transport rpc.Transport) *Loop {
	return &Loop{
		app:       app,
		transport: transport,
		inputCh:   make(chan event, inputChSize),
		appliedCb: dummyAppliedCb,
		returnCh:  make(chan error, 1),
	}
}

// AppliedCb sets the callback for handled responses. It must be called before
// Run.
func (lp *Loop) AppliedCb(cb AppliedCb) {
	lp.appliedCb = cb
}

// Input provides an input event. It may block if the internal event buffer is
// full.
func (lp *Loop) Input(ev event) {
	lp.inputCh <- ev
}

// Send queues a request. The response is applied when it arrives.
func (lp *Loop) Send(req *rpc.Request) {
	lp.Input(sendEvent{req})
}

// Return requests the loop to return. It never blocks.
func (lp *Loop) Return(err error) {
	select {
	case lp.returnCh <- err:
	default:
	}
}

// Run runs the loop until Return is called or the context is canceled. Events
// are handled serially; only the transport calls run in separate goroutines.
func (lp *Loop) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lp.app.ClickCb(func(c Click) { lp.input(ctx, c) })
	for {
		select {
		case ev := <-lp.inputCh:
			lp.handle(ctx, ev)
		case err := <-lp.returnCh:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Like Input, but gives up when ctx is done.
func (lp *Loop) input(ctx context.Context, ev event) {
	select {
	case lp.inputCh <- ev:
	case <-ctx.Done():
	}
}

func (lp *Loop) handle(ctx context.Context, ev event) {
	switch ev := ev.(type) {
	case Click:
		req, err := lp.app.Click(ev)
		if err != nil {
			lp.app.ShowError(err)
		} else if req != nil {
			lp.send(ctx, req)
		}
	case sendEvent:
		lp.send(ctx, ev.req)
	case responseEvent:
		err := ev.err
		if err != nil {
			if errs.KindOf(err) == errs.KindUnknown {
				err = errs.Transport{Err: err}
			}
			lp.app.ShowError(err)
		} else {
			err = lp.app.Apply(ev.resp)
		}
		lp.appliedCb(ev.req, err)
	default:
		logger.Printf("unknown event type %T", ev)
	}
}

func (lp *Loop) send(ctx context.Context, req *rpc.Request) {
	logger.Println("sending", req.Method)
	go func() {
		resp, err := lp.transport.Call(ctx, req)
		if err == nil && resp == nil {
			err = errors.New("empty response")
		}
		lp.input(ctx, responseEvent{req, resp, err})
	}()
}
