// Package credentials holds the access token, refresh token and role of the
// signed-in user and writes every change through to persistent storage.
package credentials

import (
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

// Credentials is the snapshot returned by Store.Get. Tokens are opaque.
type Credentials struct {
	AccessToken        string
	RefreshToken       string
	Role               model.Role
	SupervisorApproved *bool
	IsApproved         *bool
}

// HasTokens reports whether a session exists. The access token expires well
// before the refresh token, so either one keeps the session alive.
func (c Credentials) HasTokens() bool {
	return c.AccessToken != "" || c.RefreshToken != ""
}

// Patch is a partial update; nil fields are left as they are.
type Patch struct {
	AccessToken        *string
	RefreshToken       *string
	Role               *model.Role
	SupervisorApproved *bool
	IsApproved         *bool
}

// FromLogin builds the patch applied after a successful login response.
func FromLogin(r model.AuthLoginResponse) Patch {
	p := Patch{
		AccessToken:        &r.AccessToken,
		RefreshToken:       &r.RefreshToken,
		SupervisorApproved: r.SupervisorApproved,
		IsApproved:         r.IsApproved,
	}
	if r.Role != "" {
		p.Role = &r.Role
	}
	return p
}

// FromRefresh keeps the current refresh token and role unless the server
// rotated them.
func FromRefresh(r model.RefreshResponse) Patch {
	p := Patch{AccessToken: &r.AccessToken}
	if r.RefreshToken != "" {
		p.RefreshToken = &r.RefreshToken
	}
	if r.Role != "" {
		p.Role = &r.Role
	}
	return p
}

func (c Credentials) apply(p Patch) Credentials {
	if p.AccessToken != nil {
		c.AccessToken = *p.AccessToken
	}
	if p.RefreshToken != nil {
		c.RefreshToken = *p.RefreshToken
	}
	if p.Role != nil {
		c.Role = *p.Role
	}
	if p.SupervisorApproved != nil {
		v := *p.SupervisorApproved
		c.SupervisorApproved = &v
	}
	if p.IsApproved != nil {
		v := *p.IsApproved
		c.IsApproved = &v
	}
	return c
}

// normalize guarantees a role is never visible without tokens.
func (c Credentials) normalize() Credentials {
	if !c.HasTokens() {
		return Credentials{}
	}
	return c
}
