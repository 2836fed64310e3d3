package web

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/abiiranathan/rex"
	"src.crevgui.dev/pkg/asset"
	"src.crevgui.dev/pkg/review"
	"src.crevgui.dev/pkg/rpc"
)

// Maximum size of a request body.
const maxRequestSize = 1 << 20

// Server is the backend of the GUI. It serves the page shell and answers
// requests posted to /rpc.
type Server struct {
	store  review.Store
	crev   review.Crev
	assets *asset.Registry
	opts   ServerOpts

	methods map[string]method

	mutex      sync.Mutex
	projectDir string
}

// ServerOpts keeps options for NewServer.
type ServerOpts struct {
	// Directory holding crevgui.wasm and wasm_exec.js, served under /static/.
	StaticDir string
	// Initial project directory shown on the crate list.
	ProjectDir string
	// Opens a URL in the user's browser. Defaults to OpenBrowser.
	Open func(url string) error
	// Returns the current time. Defaults to time.Now.
	Now func() time.Time
}

type method func(ctx context.Context, data json.RawMessage) (*rpc.Response, error)

// NewServer creates a Server.
func NewServer(store review.Store, crev review.Crev, opts ServerOpts) *Server {
	if opts.Open == nil {
		opts.Open = OpenBrowser
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Server{
		store: store, crev: crev, assets: asset.Default(), opts: opts,
		projectDir: opts.ProjectDir,
	}
	s.methods = map[string]method{
		"crate_list":     s.crateList,
		"version_list":   s.versionList,
		"review_list":    s.reviewList,
		"review_new":     s.reviewNew,
		"review_edit":    s.reviewEdit,
		"review_save":    s.reviewSave,
		"review_delete":  s.reviewDelete,
		"review_publish": s.reviewPublish,
		"update_index":   s.updateIndex,
		"verify_project": s.verifyProject,
		"open_external":  s.openExternal,
	}
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	r := rex.NewRouter()
	r.GET("/", s.handleIndex)
	r.GET("/style.css", s.handleStyle)
	if s.opts.StaticDir != "" {
		r.Static("/static/", s.opts.StaticDir)
	}
	r.POST("/rpc", s.handleRPC)
	return r
}

func (s *Server) handleIndex(c *rex.Context) error {
	return s.writeAsset(c, asset.Index, "text/html; charset=utf-8")
}

func (s *Server) handleStyle(c *rex.Context) error {
	return s.writeAsset(c, asset.Style, "text/css; charset=utf-8")
}

func (s *Server) writeAsset(c *rex.Context, name, contentType string) error {
	a, ok := s.assets.Get(name)
	if !ok {
		http.NotFound(c.Response, c.Request)
		return nil
	}
	c.Response.Header().Set("Content-Type", contentType)
	_, err := c.Response.Write(a.Bytes)
	return err
}

func (s *Server) handleRPC(c *rex.Context) error {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxRequestSize))
	if err != nil {
		logger.Println("cannot read request body:", err)
		return err
	}
	var req rpc.Request
	if err := json.Unmarshal(body, &req); err != nil {
		return c.JSON(errorModal(&RequestError{"request", err.Error()}))
	}
	return c.JSON(s.Call(c.Request.Context(), &req))
}

// Call answers a request. Failures are answered with an error modal.
func (s *Server) Call(ctx context.Context, req *rpc.Request) *rpc.Response {
	logger.Println("request", req.Method)
	m, ok := s.methods[req.Method]
	if !ok {
		return errorModal(&UnknownMethodError{req.Method})
	}
	resp, err := m(ctx, req.Data)
	if err != nil {
		logger.Printf("%s failed: %v", req.Method, err)
		return errorModal(err)
	}
	return resp
}

// UnknownMethodError is answered to requests with an unknown method.
type UnknownMethodError struct{ Method string }

func (e *UnknownMethodError) Error() string {
	return "unknown request method " + e.Method
}

// RequestError is answered to malformed requests.
type RequestError struct {
	Field  string
	Reason string
}

func (e *RequestError) Error() string {
	return "bad " + e.Field + ": " + e.Reason
}

// CrevError is answered when cargo-crev fails.
type CrevError struct {
	Op     string
	Output string
	Err    error
}

func (e *CrevError) Error() string { return e.Op + " failed: " + e.Err.Error() }
func (e *CrevError) Unwrap() error { return e.Err }

// Builds the error modal for an error. Its kind names the error type and its
// detail names what the error is about.
func errorModal(err error) *rpc.Response {
	kind, detail := "BackendError", ""
	var (
		unknownMethod *UnknownMethodError
		badRequest    *RequestError
		invalid       *review.ValidationError
		crevErr       *CrevError
	)
	switch {
	case errors.As(err, &unknownMethod):
		kind, detail = "UnknownRequestMethod", unknownMethod.Method
	case errors.As(err, &badRequest):
		kind, detail = "BadRequest", badRequest.Field
	case errors.As(err, &invalid):
		kind, detail = "ValidationError", invalid.Field
	case errors.As(err, &crevErr):
		kind, detail = "CrevError", crevErr.Output
	case errors.Is(err, review.ErrNoReview):
		kind = "NotFound"
	}
	return mustResponse("error_modal", map[string]string{
		"kind": kind, "message": err.Error(), "detail": detail,
	})
}

// Data of all responses is built from maps and slices of strings and bools,
// which always marshal.
func mustResponse(method string, data any) *rpc.Response {
	resp, err := rpc.NewResponse(method, data)
	if err != nil {
		panic(err)
	}
	return resp
}
