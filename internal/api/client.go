// Package api is the typed client of the assessment REST API: a request
// executor that attaches the bearer token, a single-flight token refresh on
// 401, a tag-invalidated response cache and one method per endpoint.
package api

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/credentials"
)

type Options struct {
	BaseURL    string
	HTTPClient *http.Client  // optional; Timeout is used when nil
	Timeout    time.Duration // default 30s
	CacheTTL   time.Duration // 0 disables caching
	Metrics    *Metrics      // optional

	// OnSessionEnded is called once when a failed refresh logs the user out.
	OnSessionEnded func(cause error)
}

type Client struct {
	store   *credentials.Store
	exec    *Executor
	refresh *Refresher
	cache   *Cache
}

func New(store *credentials.Store, opts Options) (*Client, error) {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	exec, err := NewExecutor(opts.BaseURL, hc, store, opts.Metrics)
	if err != nil {
		return nil, err
	}
	c := &Client{
		store: store,
		exec:  exec,
		cache: NewCache(opts.CacheTTL),
	}
	c.refresh = NewRefresher(exec, store, opts.Metrics)
	c.refresh.OnSessionEnded = func(cause error) {
		c.cache.Flush()
		if opts.OnSessionEnded != nil {
			opts.OnSessionEnded(cause)
		}
	}
	return c, nil
}

// Credentials exposes the store the client reads tokens from.
func (c *Client) Credentials() *credentials.Store { return c.store }

// Cache is exposed for callers that want to drop cached reads explicitly.
func (c *Client) Cache() *Cache { return c.cache }

// Do sends an arbitrary request through the refresh coordinator.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	return c.refresh.Do(ctx, req)
}

// query is a cached GET. Only 2xx bodies are cached.
func (c *Client) query(ctx context.Context, path string, q url.Values, out any, tags ...Tag) error {
	key := cacheKey(path, q)
	if body, ok := c.cache.Get(key); ok {
		return (&Response{Body: body}).Decode(out)
	}
	resp, err := c.refresh.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: q})
	if err != nil {
		return err
	}
	if len(tags) > 0 {
		c.cache.Set(key, resp.Body, tags...)
	}
	return resp.Decode(out)
}

// mutate sends a write and invalidates tags once it succeeded.
func (c *Client) mutate(ctx context.Context, method, path string, body, out any, invalidates ...Tag) error {
	resp, err := c.refresh.Do(ctx, Request{Method: method, Path: path, Body: body})
	if err != nil {
		return err
	}
	c.cache.Invalidate(invalidates...)
	return resp.Decode(out)
}
