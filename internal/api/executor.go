package api

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

	"golang.org/x/oauth2"
)

const maxBody = 10 << 20

type Request struct {
	Method string
	Path   string // relative to the base URL, e.g. "/admin/users/42"
	Query  url.Values
	Body   any // JSON-encoded when non-nil
	Header http.Header
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if v == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// TokenSource yields the current access token; read once per dispatch.
type TokenSource interface {
	AccessToken() string
}

// Executor sends one HTTP request with the current credentials attached. It
// never retries.
type Executor struct {
	base    *url.URL
	http    *http.Client
	tokens  TokenSource
	metrics *Metrics
}

func NewExecutor(baseURL string, hc *http.Client, tokens TokenSource, m *Metrics) (*Executor, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q: scheme and host required", baseURL)
	}
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Executor{base: u, http: hc, tokens: tokens, metrics: m}, nil
}

// Execute dispatches req with the access token held right now.
func (e *Executor) Execute(ctx context.Context, req Request) (*Response, error) {
	tok := ""
	if e.tokens != nil {
		tok = e.tokens.AccessToken()
	}
	return e.send(ctx, req, tok)
}

func (e *Executor) send(ctx context.Context, req Request, accessToken string) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	u := e.base.JoinPath(req.Path)
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}).SetAuthHeader(httpReq)
	}

	res, err := e.http.Do(httpReq)
	if err != nil {
		e.metrics.observeRequest(method, 0)
		return nil, &NetworkError{Method: method, URL: u.String(), Err: err}
	}
	defer res.Body.Close()
	e.metrics.observeRequest(method, res.StatusCode)

	b, err := io.ReadAll(io.LimitReader(res.Body, maxBody))
	if err != nil {
		return nil, &NetworkError{Method: method, URL: u.String(), Err: err}
	}
	if res.StatusCode/100 != 2 {
		return nil, &HTTPError{Method: method, Path: req.Path, StatusCode: res.StatusCode, Payload: b}
	}
	return &Response{StatusCode: res.StatusCode, Header: res.Header, Body: b}, nil
}
