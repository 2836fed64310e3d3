package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"src.crevgui.dev/pkg/errs"
)

// DefaultTimeout is the timeout of an HTTPTransport without a Client.
const DefaultTimeout = 5 * time.Minute

// Responses larger than this are treated as malformed.
const maxResponseSize = 16 << 20

// HTTPTransport posts requests as JSON to a fixed URL. All its failures are
// of type [errs.Transport].
type HTTPTransport struct {
	URL    string
	Client *http.Client
}

// NewHTTPTransport returns an HTTPTransport posting to url.
func NewHTTPTransport(url string) *HTTPTransport {
	return &HTTPTransport{URL: url, Client: &http.Client{Timeout: DefaultTimeout}}
}

// Call implements Transport.
func (t *HTTPTransport) Call(ctx context.Context, req *Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errs.Transport{Err: err}
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(body))
	if err != nil {
		return nil, errs.Transport{Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := t.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	httpResp, err := client.Do(httpReq)
	if err != nil {
		return nil, errs.Transport{Err: err}
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, errs.Transport{Err: fmt.Errorf("backend returned %s", httpResp.Status)}
	}
	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, errs.Transport{Err: err}
	}
	return ParseResponse(data)
}

// ParseResponse parses a response envelope. A response that is not a JSON
// object or has no response_method is malformed.
func ParseResponse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, errs.Transport{Err: fmt.Errorf("malformed response: %w", err)}
	}
	if resp.Method == "" {
		return nil, errs.Transport{Err: fmt.Errorf("malformed response: no response_method")}
	}
	return &resp, nil
}
