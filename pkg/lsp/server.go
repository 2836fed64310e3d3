package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
	"src.crevgui.dev/pkg/diag"
	"src.crevgui.dev/pkg/tmpl"
	"src.crevgui.dev/pkg/vals"
)

var (
	errMethodNotFound = &jsonrpc2.Error{
		Code: jsonrpc2.CodeMethodNotFound, Message: "method not found"}
	errInvalidParams = &jsonrpc2.Error{
		Code: jsonrpc2.CodeInvalidParams, Message: "invalid params"}
)

type server struct {
	mutex   sync.Mutex
	content map[lsp.DocumentURI]string
}

func newServer() *server {
	return &server{content: make(map[lsp.DocumentURI]string)}
}

func handler(s *server) jsonrpc2.Handler {
	return routingHandler(map[string]method{
		"initialize":             s.initialize,
		"textDocument/didOpen":   s.didOpen,
		"textDocument/didChange": s.didChange,
		"textDocument/didClose":  s.didClose,
		"textDocument/hover":     s.hover,

		// Required by the protocol.
		"initialized": noop,
		// Sent by clients even when the server doesn't advertise support.
		"workspace/didChangeWatchedFiles": noop,
	})
}

type method func(context.Context, jsonrpc2.JSONRPC2, json.RawMessage) (any, error)

func noop(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return nil, nil
}

func routingHandler(methods map[string]method) jsonrpc2.Handler {
	return jsonrpc2.HandlerWithError(func(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
		fn, ok := methods[req.Method]
		if !ok {
			return nil, errMethodNotFound
		}
		var params json.RawMessage
		if req.Params != nil {
			params = *req.Params
		}
		return fn(ctx, conn, params)
	})
}

func (s *server) initialize(_ context.Context, _ jsonrpc2.JSONRPC2, _ json.RawMessage) (any, error) {
	return &lsp.InitializeResult{
		Capabilities: lsp.ServerCapabilities{
			TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
				Options: &lsp.TextDocumentSyncOptions{
					OpenClose: true,
					Change:    lsp.TDSKFull,
				},
			},
			HoverProvider: true,
		},
	}, nil
}

func (s *server) setContent(uri lsp.DocumentURI, content string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.content[uri] = content
}

func (s *server) getContent(uri lsp.DocumentURI) (string, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	content, ok := s.content[uri]
	return content, ok
}

func (s *server) didOpen(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidOpenTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}

	uri, content := params.TextDocument.URI, params.TextDocument.Text
	s.setContent(uri, content)
	go publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

func (s *server) didChange(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidChangeTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil || len(params.ContentChanges) == 0 {
		return nil, errInvalidParams
	}

	// Only full-text sync is advertised, so the last change holds the whole
	// document.
	uri := params.TextDocument.URI
	content := params.ContentChanges[len(params.ContentChanges)-1].Text
	s.setContent(uri, content)
	go publishDiagnostics(ctx, conn, uri, content)
	return nil, nil
}

func (s *server) didClose(ctx context.Context, conn jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.DidCloseTextDocumentParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	s.mutex.Lock()
	delete(s.content, params.TextDocument.URI)
	s.mutex.Unlock()
	go conn.Notify(ctx, "textDocument/publishDiagnostics",
		lsp.PublishDiagnosticsParams{URI: params.TextDocument.URI, Diagnostics: []lsp.Diagnostic{}})
	return nil, nil
}

func (s *server) hover(_ context.Context, _ jsonrpc2.JSONRPC2, rawParams json.RawMessage) (any, error) {
	var params lsp.TextDocumentPositionParams
	if json.Unmarshal(rawParams, &params) != nil {
		return nil, errInvalidParams
	}
	content, ok := s.getContent(params.TextDocument.URI)
	if !ok {
		return lsp.Hover{}, nil
	}
	t, err := tmpl.Parse(string(params.TextDocument.URI), content)
	if err != nil {
		return lsp.Hover{}, nil
	}
	p, r, schema, ok := placeholderAt([]tmpl.Node{t.Root}, t.Schema(), lspPositionToIdx(content, params.Position))
	if !ok {
		return lsp.Hover{}, nil
	}
	lspRange := lspRangeFromRange(content, r)
	return lsp.Hover{
		Contents: []lsp.MarkedString{{Language: "markdown", Value: describe(schema, p)}},
		Range:    &lspRange,
	}, nil
}

// Finds the innermost placeholder whose range contains idx, along with the
// schema its label is looked up in. Labels inside a repeat body belong to the
// element schema of the list.
func placeholderAt(nodes []tmpl.Node, schema *vals.Schema, idx int) (tmpl.Placeholder, diag.Ranging, *vals.Schema, bool) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *tmpl.Element:
			for _, a := range n.Attrs {
				if a.Directive != nil && contains(a.Ranging, idx) {
					return a.Directive.Placeholder, a.Ranging, schema, true
				}
			}
			if p, r, s, ok := placeholderAt(n.Children, schema, idx); ok {
				return p, r, s, true
			}
		case *tmpl.Subst:
			if contains(n.Ranging, idx) {
				return n.Placeholder, n.Ranging, schema, true
			}
		case *tmpl.Region:
			if !contains(n.Ranging, idx) {
				continue
			}
			if p, r, s, ok := placeholderAt(n.Body, bodySchema(schema, n.Placeholder), idx); ok {
				return p, r, s, true
			}
			return n.Placeholder, n.Ranging, schema, true
		}
	}
	return tmpl.Placeholder{}, diag.Ranging{}, nil, false
}

func bodySchema(schema *vals.Schema, p tmpl.Placeholder) *vals.Schema {
	if p.Kind != tmpl.RepeatStart {
		return schema
	}
	if schema != nil {
		if f, ok := schema.Field(p.Label); ok && f.Elem != nil {
			return f.Elem
		}
	}
	return nil
}

func contains(r diag.Ranging, idx int) bool { return r.From <= idx && idx < r.To }

func describe(schema *vals.Schema, p tmpl.Placeholder) string {
	s := fmt.Sprintf("`%s`: %s placeholder for `%s`", p.Name, p.Kind, p.Label)
	if schema == nil {
		return s
	}
	if f, ok := schema.Field(p.Label); ok {
		s += fmt.Sprintf(" (%s", f.Kind)
		if f.Optional {
			s += ", optional"
		}
		s += ")"
	}
	return s
}

func publishDiagnostics(ctx context.Context, conn jsonrpc2.JSONRPC2, uri lsp.DocumentURI, content string) {
	conn.Notify(ctx, "textDocument/publishDiagnostics",
		lsp.PublishDiagnosticsParams{URI: uri, Diagnostics: diagnostics(uri, content)})
}

func diagnostics(uri lsp.DocumentURI, content string) []lsp.Diagnostic {
	_, err := tmpl.Parse(string(uri), content)
	if err == nil {
		return []lsp.Diagnostic{}
	}
	perr, ok := diag.AsError[tmpl.ParseErrorTag](err)
	if !ok {
		logger.Println("unexpected error parsing", uri, err)
		return []lsp.Diagnostic{{Severity: lsp.Error, Source: "crevgui", Message: err.Error()}}
	}
	return []lsp.Diagnostic{{
		Range:    lspRangeFromRange(content, perr),
		Severity: lsp.Error,
		Source:   "crevgui",
		Message:  perr.Message,
	}}
}

func lspRangeFromRange(s string, r diag.Ranger) lsp.Range {
	rg := r.Range()
	return lsp.Range{
		Start: lspPositionFromIdx(s, rg.From),
		End:   lspPositionFromIdx(s, rg.To),
	}
}

func lspPositionToIdx(s string, pos lsp.Position) int {
	var idx int
	walkString(s, func(i int, p lsp.Position) bool {
		idx = i
		return p.Line < pos.Line || (p.Line == pos.Line && p.Character < pos.Character)
	})
	return idx
}

func lspPositionFromIdx(s string, idx int) lsp.Position {
	var pos lsp.Position
	walkString(s, func(i int, p lsp.Position) bool {
		pos = p
		return i < idx
	})
	return pos
}

// Generates (index, lspPosition) pairs in s, stopping if f returns false.
func walkString(s string, f func(i int, p lsp.Position) bool) {
	var p lsp.Position
	lastCR := false

	for i, r := range s {
		if !f(i, p) {
			return
		}
		switch {
		case r == '\r':
			p.Line++
			p.Character = 0
		case r == '\n':
			if !lastCR {
				p.Line++
				p.Character = 0
			}
		case r <= 0xFFFF:
			// One UTF-16 unit.
			p.Character++
		default:
			// A surrogate pair.
			p.Character += 2
		}
		lastCR = r == '\r'
	}
	f(len(s), p)
}
