package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

func idPath(prefix, id string, suffix ...string) (string, error) {
	// JoinPath would resolve dot segments into a different endpoint
	switch strings.TrimSpace(id) {
	case "", ".", "..":
		return "", invalid("id is required")
	}
	p := prefix + "/" + url.PathEscape(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p, nil
}

func pageQuery(page, limit int) url.Values {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return url.Values{"page": {strconv.Itoa(page)}, "limit": {strconv.Itoa(limit)}}
}

func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var out model.UserEnvelope
	if err := c.query(ctx, "/users/me", nil, &out, TagUser); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) UpdateMe(ctx context.Context, p model.ProfileUpdate) (*model.User, error) {
	var out model.UserEnvelope
	if err := c.mutate(ctx, http.MethodPut, "/users/me", p, &out, TagUser, TagUsers); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) ListUsers(ctx context.Context, q model.UserListQuery) (*model.Pagination[model.User], error) {
	v := pageQuery(q.Page, q.Limit)
	if q.Role != "" {
		v.Set("role", string(q.Role))
	}
	if q.SupervisorApproved != nil {
		v.Set("supervisorApproved", strconv.FormatBool(*q.SupervisorApproved))
	}
	var out model.Pagination[model.User]
	if err := c.query(ctx, "/admin/users", v, &out, TagUsers); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*model.User, error) {
	p, err := idPath("/admin/users", id)
	if err != nil {
		return nil, err
	}
	var out model.UserEnvelope
	if err := c.query(ctx, p, nil, &out, TagUsers); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) (*model.MessageResponse, error) {
	p, err := idPath("/admin/users", id)
	if err != nil {
		return nil, err
	}
	var out model.MessageResponse
	if err := c.mutate(ctx, http.MethodDelete, p, nil, &out, TagUsers, TagAnalytics); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ApproveSupervisor(ctx context.Context, id string) (*model.ApproveSupervisorResponse, error) {
	p, err := idPath("/admin/users", id, "approve-supervisor")
	if err != nil {
		return nil, err
	}
	var out model.ApproveSupervisorResponse
	if err := c.mutate(ctx, http.MethodPatch, p, nil, &out, TagUsers); err != nil {
		return nil, err
	}
	return &out, nil
}
