package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// clientSeq hands every Client its own forwarded address so the per-client
// write limiter on the service does not throttle unrelated tests.
var clientSeq atomic.Uint32

// Client drives the service under test over HTTP.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	headers    http.Header
}

func NewClient(baseURL string) *Client {
	n := clientSeq.Add(1)
	headers := http.Header{}
	headers.Set("X-Forwarded-For", fmt.Sprintf("10.%d.%d.%d", (n>>16)&0xff, (n>>8)&0xff, n&0xff))
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		headers:    headers,
	}
}

type Response struct {
	*http.Response
	Body []byte
}

func (r *Response) DecodeJSON(target any) error {
	return json.Unmarshal(r.Body, target)
}

// WithAdmin returns a copy that sends token as a Bearer credential.
func (c *Client) WithAdmin(token string) *Client {
	clone := *c
	clone.headers = c.headers.Clone()
	clone.headers.Set("Authorization", "Bearer "+token)
	return &clone
}

func (c *Client) GET(t *testing.T, path string) *Response {
	t.Helper()
	return c.Do(t, http.MethodGet, path, nil, nil)
}

func (c *Client) POST(t *testing.T, path string, body any) *Response {
	t.Helper()
	return c.Do(t, http.MethodPost, path, body, nil)
}

func (c *Client) POSTWithHeaders(t *testing.T, path string, body any, headers map[string]string) *Response {
	t.Helper()
	return c.Do(t, http.MethodPost, path, body, headers)
}

func (c *Client) PATCH(t *testing.T, path string, body any) *Response {
	t.Helper()
	return c.Do(t, http.MethodPatch, path, body, nil)
}

func (c *Client) DELETE(t *testing.T, path string) *Response {
	t.Helper()
	return c.Do(t, http.MethodDelete, path, nil, nil)
}

// Do sends one request. extra headers override the client defaults.
func (c *Client) Do(t *testing.T, method, path string, body any, extra map[string]string) *Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal %s %s body: %v", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, c.BaseURL+path, reader)
	if err != nil {
		t.Fatalf("build %s %s: %v", method, path, err)
	}
	req.Header = c.headers.Clone()
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range extra {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read %s %s response: %v", method, path, err)
	}
	return &Response{Response: resp, Body: data}
}

// WaitForHealthy polls /health until it answers 200 or maxWait elapses.
func (c *Client) WaitForHealthy(t *testing.T, maxWait time.Duration) {
	t.Helper()

	deadline := time.Now().Add(maxWait)
	for {
		resp, err := c.HTTPClient.Get(c.BaseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("service at %s not healthy after %v (last error: %v)", c.BaseURL, maxWait, err)
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func AssertStatusCode(t *testing.T, resp *Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Fatalf("%s %s: status %d, want %d. Body: %s",
			resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, expected, resp.Body)
	}
}

func AssertContains(t *testing.T, resp *Response, substr string) {
	t.Helper()
	if !strings.Contains(string(resp.Body), substr) {
		t.Fatalf("body does not contain %q. Body: %s", substr, resp.Body)
	}
}

type errorBody struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details"`
}

func decodeError(t *testing.T, resp *Response) errorBody {
	t.Helper()
	var body errorBody
	if err := resp.DecodeJSON(&body); err != nil {
		t.Fatalf("decode error body %q: %v", resp.Body, err)
	}
	return body
}

// GetErrorMessage returns the human-readable message of an error response.
func GetErrorMessage(t *testing.T, resp *Response) string {
	t.Helper()
	return decodeError(t, resp).Error
}

// GetErrorCode returns the machine-readable code of an error response.
func GetErrorCode(t *testing.T, resp *Response) string {
	t.Helper()
	return decodeError(t, resp).Code
}

// GetErrorDetails returns the details object of an error response.
func GetErrorDetails(t *testing.T, resp *Response) map[string]any {
	t.Helper()
	return decodeError(t, resp).Details
}
