// Package rpc defines the JSON envelopes exchanged between the GUI and its
// backend, and the transport that carries them.
package rpc

import (
	"context"
	"encoding/json"
)

// Request is the envelope sent to the backend.
type Request struct {
	Method string          `json:"request_method"`
	Data   json.RawMessage `json:"request_data"`
}

// Response is the envelope received from the backend. Data and HTML may be
// absent. When HTML is not nil, it is a template that takes the place of the
// template routed by Method.
type Response struct {
	Method string          `json:"response_method"`
	Data   json.RawMessage `json:"response_data,omitempty"`
	HTML   *string         `json:"response_html"`
}

// NewRequest builds a Request, encoding data as JSON. A nil data is encoded
// as an empty object.
func NewRequest(method string, data any) (*Request, error) {
	raw, err := marshalObject(data)
	if err != nil {
		return nil, err
	}
	return &Request{Method: method, Data: raw}, nil
}

// NewResponse builds a Response, encoding data as JSON. A nil data is encoded
// as an empty object.
func NewResponse(method string, data any) (*Response, error) {
	raw, err := marshalObject(data)
	if err != nil {
		return nil, err
	}
	return &Response{Method: method, Data: raw}, nil
}

// WithHTML returns a copy of the response carrying an inline template.
func (r *Response) WithHTML(html string) *Response {
	c := *r
	c.HTML = &html
	return &c
}

// DecodeData decodes the request data into v.
func (r *Request) DecodeData(v any) error {
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

func marshalObject(data any) (json.RawMessage, error) {
	if data == nil {
		return json.RawMessage("{}"), nil
	}
	return json.Marshal(data)
}

// Transport sends a request and waits for its response.
type Transport interface {
	Call(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to a Transport.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

// Call calls f.
func (f TransportFunc) Call(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
