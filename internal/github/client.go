package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tomnomnom/linkheader"
	"golang.org/x/oauth2"
)

const acceptHeader = "application/vnd.github.v3+json"

// Client is a thin authenticated JSON client for the GitHub REST API. It never
// retries; callers inspect Response.StatusCode themselves.
type Client struct {
	base      string
	userAgent string
	http      *http.Client
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	request    *url.URL
}

// NewClient returns a client that sends token as a bearer credential on every
// request. A zero timeout leaves the transport default in place.
func NewClient(ctx context.Context, token, baseURL, userAgent string, timeout time.Duration) (*Client, error) {
	hc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	hc.Timeout = timeout
	return NewClientWithHTTP(hc, baseURL, userAgent)
}

// NewClientWithHTTP wraps an existing http.Client, which is expected to
// handle authentication.
func NewClientWithHTTP(hc *http.Client, baseURL, userAgent string) (*Client, error) {
	baseURL = strings.TrimSuffix(baseURL, "/")
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q: scheme and host required", baseURL)
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{base: baseURL, userAgent: userAgent, http: hc}, nil
}

// URL builds an absolute API URL from an already escaped path such as
// "/repos/o/r/languages".
func (c *Client) URL(path string) string {
	return c.base + "/" + strings.TrimPrefix(path, "/")
}

// Get issues a GET against an absolute URL.
func (c *Client) Get(ctx context.Context, rawURL string) (*Response, error) {
	return c.do(ctx, http.MethodGet, rawURL, nil)
}

// Put issues a PUT with payload encoded as JSON.
func (c *Client) Put(ctx context.Context, rawURL string, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return c.do(ctx, http.MethodPut, rawURL, body)
}

func (c *Client) do(ctx context.Context, method, rawURL string, body []byte) (*Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptHeader)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s: %w", method, rawURL, err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: b, request: req.URL}, nil
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Text returns the body as a trimmed string.
func (r *Response) Text() string {
	return strings.TrimSpace(string(r.Body))
}

// Message returns the "message" field GitHub puts in error bodies, falling
// back to the raw body.
func (r *Response) Message() string {
	var e struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(r.Body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	return r.Text()
}

// NextURL returns the absolute URL of the rel="next" link, or "" on the last
// page.
func (r *Response) NextURL() string {
	links := linkheader.ParseMultiple(r.Header.Values("Link")).FilterByRel("next")
	if len(links) == 0 {
		return ""
	}
	next, err := url.Parse(links[0].URL)
	if err != nil {
		return ""
	}
	if r.request != nil {
		next = r.request.ResolveReference(next)
	}
	return next.String()
}
