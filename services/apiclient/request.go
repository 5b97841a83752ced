package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/potencialize/dashboard/core"
)

const maxErrorBody = 1 << 20

// Request describes a JSON call relative to the base url.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   interface{} // marshalled to JSON when not nil
}

func (c *Client) NewRequest(ctx context.Context, r *Request) (*http.Request, error) {
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	u := c.URL(r.Path)
	if len(r.Query) > 0 {
		u += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding %s %s body", method, r.Path)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, errors.Wrapf(err, "building %s %s", method, r.Path)
	}
	for key, vals := range r.Header {
		for _, val := range vals {
			req.Header.Add(key, val)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Call performs r and decodes a successful JSON answer into out (if not nil).
// Non-2xx answers are returned as *core.APIError.
func (c *Client) Call(ctx context.Context, r *Request, out interface{}) error {
	req, err := c.NewRequest(ctx, r)
	if err != nil {
		return err
	}
	res, err := c.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusMultipleChoices {
		return decodeError(req, res)
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil && err != io.EOF {
		return errors.Wrapf(err, "decoding %s %s", req.Method, req.URL.Path)
	}
	return nil
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.Call(ctx, &Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Call(ctx, &Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.Call(ctx, &Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out interface{}) error {
	return c.Call(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body}, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Call(ctx, &Request{Method: http.MethodDelete, Path: path}, nil)
}

// decodeError builds the APIError of a non-2xx answer. It reads res.Body.
func decodeError(req *http.Request, res *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	serverMsg, details := parseErrorBody(data)
	return &core.APIError{
		Status:        res.StatusCode,
		Method:        req.Method,
		Path:          stripOriginAndBasePath(req.URL.Path),
		Message:       MessageFor(req.Method, req.URL.String(), res.StatusCode, serverMsg),
		ServerMessage: serverMsg,
		Details:       details,
	}
}

// parseErrorBody extracts the server message ("message", "msg", "detail" or a string "error")
// and the details ("details", "errors" or the whole body).
func parseErrorBody(data []byte) (string, interface{}) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "", nil
	}

	var body interface{}
	if err := json.Unmarshal(data, &body); err != nil {
		// plain text answer
		return strings.TrimSpace(string(data)), nil
	}

	switch val := body.(type) {
	case string:
		return val, nil
	case map[string]interface{}:
		var msg string
		for _, key := range []string{"message", "msg", "detail", "error"} {
			if s, ok := val[key].(string); ok {
				msg = s
				break
			}
		}
		for _, key := range []string{"details", "errors"} {
			if d, ok := val[key]; ok && d != nil {
				return msg, d
			}
		}
		return msg, val
	default:
		return "", val
	}
}
