// Package httputil provides the HTTP client seam used by the plan source
// resolver and fetcher, with a mock implementation for tests.
package httputil

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// HTTPClient abstracts the HTTP operations the pipeline performs.
// Use StandardClient in production; MockHTTPClient in tests.
type HTTPClient interface {
	// Do sends an HTTP request and returns an HTTP response.
	Do(req *http.Request) (*http.Response, error)
	// Get issues a GET to the specified URL.
	Get(url string) (*http.Response, error)
}

// StandardClient wraps *http.Client to implement HTTPClient.
type StandardClient struct {
	*http.Client
}

// NewStandardClient creates a StandardClient wrapping c, defaulting to
// http.DefaultClient when c is nil.
func NewStandardClient(c *http.Client) *StandardClient {
	if c == nil {
		c = http.DefaultClient
	}
	return &StandardClient{Client: c}
}

// Do sends an HTTP request.
func (c *StandardClient) Do(req *http.Request) (*http.Response, error) {
	return c.Client.Do(req)
}

// Get issues a GET request.
func (c *StandardClient) Get(url string) (*http.Response, error) {
	return c.Client.Get(url)
}

// MockHTTPClient returns canned responses in order and records requests.
type MockHTTPClient struct {
	mu        sync.Mutex
	Requests  []string
	responses []*MockResponse
	idx       int
}

// MockResponse is one canned response.
type MockResponse struct {
	StatusCode int
	Body       string
	Err        error
}

// NewMockHTTPClient creates an empty mock client.
func NewMockHTTPClient() *MockHTTPClient {
	return &MockHTTPClient{}
}

// AddResponse queues a response for the next request.
func (m *MockHTTPClient) AddResponse(statusCode int, body string) *MockHTTPClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, &MockResponse{StatusCode: statusCode, Body: body})
	return m
}

// AddError queues a transport error for the next request.
func (m *MockHTTPClient) AddError(err error) *MockHTTPClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, &MockResponse{Err: err})
	return m
}

// RequestCount returns how many requests the mock has served.
func (m *MockHTTPClient) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// Do serves the next canned response.
func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.serve(req.URL.String())
}

// Get serves the next canned response.
func (m *MockHTTPClient) Get(url string) (*http.Response, error) {
	return m.serve(url)
}

func (m *MockHTTPClient) serve(url string) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, url)
	if m.idx >= len(m.responses) {
		return nil, fmt.Errorf("mock http client: no response queued for %s", url)
	}
	r := m.responses[m.idx]
	m.idx++
	if r.Err != nil {
		return nil, r.Err
	}
	return &http.Response{
		StatusCode: r.StatusCode,
		Status:     http.StatusText(r.StatusCode),
		Body:       io.NopCloser(strings.NewReader(r.Body)),
		Header:     make(http.Header),
	}, nil
}
