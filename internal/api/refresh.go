package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/credentials"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

const (
	pathLogin   = "/auth/login"
	pathRefresh = "/auth/refresh-token"
)

// Refresher resolves 401 responses with at most one refresh call in flight:
// the first failing request starts POST /auth/refresh-token, every request
// failing meanwhile waits for that same call and shares its outcome.
type Refresher struct {
	exec    *Executor
	store   *credentials.Store
	metrics *Metrics
	group   singleflight.Group

	// OnSessionEnded runs once per ended session, after credentials are cleared.
	OnSessionEnded func(cause error)
}

func NewRefresher(exec *Executor, store *credentials.Store, m *Metrics) *Refresher {
	return &Refresher{exec: exec, store: store, metrics: m}
}

// Do executes req and, on a 401, refreshes once and retries once.
func (r *Refresher) Do(ctx context.Context, req Request) (*Response, error) {
	used := r.store.AccessToken()
	resp, err := r.exec.send(ctx, req, used)
	if err == nil || skipRefresh(req.Path) {
		return resp, err
	}
	orig, ok := isUnauthorized(err)
	if !ok || (used == "" && r.store.Get().RefreshToken == "") {
		// anonymous request: nothing to refresh
		return nil, err
	}

	// Someone else already replaced the token we used: retry with theirs.
	next := r.store.AccessToken()
	if next == "" || next == used {
		next, err = r.Refresh(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, &SessionEndedError{Original: orig, Cause: err}
		}
	}
	return r.exec.send(ctx, req, next)
}

// Refresh obtains a new access token, joining a refresh already in flight.
// The refresh itself is not cancelled when ctx is; other waiters depend on it.
func (r *Refresher) Refresh(ctx context.Context) (string, error) {
	ch := r.group.DoChan("refresh", func() (any, error) {
		return r.refresh(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (r *Refresher) refresh(ctx context.Context) (string, error) {
	rt := r.store.Get().RefreshToken
	if rt == "" {
		return "", r.end(ctx, ErrNoRefreshToken)
	}
	resp, err := r.exec.send(ctx, Request{
		Method: http.MethodPost,
		Path:   pathRefresh,
		Body:   model.RefreshPayload{RefreshToken: rt},
	}, "")
	if err != nil {
		return "", r.fail(ctx, err)
	}
	var out model.RefreshResponse
	if err := resp.Decode(&out); err != nil {
		return "", r.fail(ctx, err)
	}
	if out.AccessToken == "" {
		return "", r.fail(ctx, errors.New("refresh response without access token"))
	}
	if err := r.store.Set(ctx, credentials.FromRefresh(out)); err != nil {
		// the new token is still usable for this process
		log.Printf("token refresh: %v", err)
	}
	r.metrics.observeRefresh("ok")
	return out.AccessToken, nil
}

// fail ends the session after a refresh call that was actually sent.
func (r *Refresher) fail(ctx context.Context, cause error) error {
	r.metrics.observeRefresh("failed")
	return r.end(ctx, cause)
}

func (r *Refresher) end(ctx context.Context, cause error) error {
	had := r.store.Get().HasTokens()
	if err := r.store.Clear(ctx); err != nil {
		log.Printf("token refresh: %v", err)
	}
	if had && r.OnSessionEnded != nil {
		r.OnSessionEnded(cause)
	}
	return fmt.Errorf("refresh token: %w", cause)
}

func skipRefresh(path string) bool {
	p := strings.TrimSuffix(path, "/")
	return strings.HasSuffix(p, pathLogin) || strings.HasSuffix(p, pathRefresh)
}
