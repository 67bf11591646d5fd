package github

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
)

// RequestOptions carry per-call parameters. Headers here win over the
// client's defaults for identical names; defaults absent from this set are
// preserved.
type RequestOptions struct {
	Headers map[string]string
	Query   url.Values
	Body    []byte
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, opts *RequestOptions) (*http.Request, error) {
	target := c.baseURL + endpoint
	if opts != nil && len(opts.Query) > 0 {
		target += "?" + opts.Query.Encode()
	}

	var body io.Reader
	if opts != nil && len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}

	// Defaults and the active token first, per-call overrides last, so a
	// caller-supplied header always wins for identical names.
	for k, v := range c.defaultHeaders {
		req.Header.Set(k, v)
	}
	req.Header.Set("Authorization", c.ring.Current().AuthorizationHeader())
	if opts != nil {
		for k, v := range opts.Headers {
			req.Header.Set(k, v)
		}
	}

	return req, nil
}
