package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Template holds one validated, fully marshaled request. Building the
// template does all the work that must not repeat per request.
type Template struct {
	method  string
	url     string
	headers http.Header
	body    []byte
}

// NewTemplate validates the target URL and headers and marshals the payload
// once. A nil payload produces a bodyless request.
func NewTemplate(method, rawURL string, headers map[string]string, payload any) (*Template, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, fmt.Errorf("request URL is required")
	}

	canonical := make(http.Header, len(headers)+1)
	for key, value := range headers {
		if strings.ContainsAny(key, "\r\n") || strings.ContainsAny(value, "\r\n") {
			return nil, fmt.Errorf("header %q contains invalid characters", key)
		}
		canonical.Set(http.CanonicalHeaderKey(key), value)
	}

	var body []byte
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal request payload: %w", err)
		}
		body = data
		if canonical.Get("Content-Type") == "" {
			canonical.Set("Content-Type", "application/json")
		}
	}

	return &Template{
		method:  method,
		url:     rawURL,
		headers: canonical,
		body:    body,
	}, nil
}

// URL returns the template's target URL.
func (t *Template) URL() string {
	return t.url
}

// NewRequest stamps out one request bound to ctx. The returned request is
// safe for redirects and HTTP/2 retries via GetBody.
func (t *Template) NewRequest(ctx context.Context) (*http.Request, error) {
	var reader io.Reader
	if len(t.body) > 0 {
		reader = bytes.NewReader(t.body)
	}
	req, err := http.NewRequestWithContext(ctx, t.method, t.url, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header = t.headers.Clone()
	if len(t.body) > 0 {
		req.ContentLength = int64(len(t.body))
		req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(t.body)), nil
		}
	}
	return req, nil
}
