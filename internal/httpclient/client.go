// Package httpclient provides the tuned HTTP client and precomputed request
// template used by the benchmark workers.
//
// [NewClient] builds a client with connection pooling sized for sustained
// concurrent load. [NewTemplate] validates and marshals a fixed request once
// at startup; [Template.NewRequest] then stamps out per-request copies with
// nothing on the hot path but a header clone and a body reader.
package httpclient

import (
	"net"
	"net/http"
	"time"
)

// NewClient creates an HTTP client tuned for benchmarking. The timeout is a
// backstop for the whole exchange; callers still pass per-request deadline
// contexts.
func NewClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
