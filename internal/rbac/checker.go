// Package rbac maps roles to permissions. The same table guards client
// screens (Guard) and stub server routes (Require).
package rbac

import (
	"context"
	"strings"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

type Checker struct {
	RolePermissions map[string][]string
}

func NewChecker(rp map[string][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	return &Checker{RolePermissions: rp}
}

func (c *Checker) Has(role model.Role, perm string) bool {
	perms, ok := c.RolePermissions[string(role)]
	if !ok {
		return false
	}
	for _, p := range perms {
		if matchPerm(p, perm) {
			return true
		}
	}
	return false
}

func (c *Checker) Any(role model.Role, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}

func (c *Checker) All(role model.Role, perms ...string) bool {
	for _, p := range perms {
		if !c.Has(role, p) {
			return false
		}
	}
	return true
}

// NeedsApproval reports whether perm is withheld from unapproved supervisors.
func NeedsApproval(perm string) bool {
	for _, p := range ApprovalGated {
		if matchPerm(p, perm) {
			return true
		}
	}
	return false
}

func matchPerm(pattern, perm string) bool {
	if pattern == "*" || pattern == perm {
		return true
	}
	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(perm, strings.TrimSuffix(pattern, "*"))
	}
	return false
}

// ---- caller in context ----

// Principal is the authenticated caller as seen by the stub server.
type Principal struct {
	UserID   string
	Role     model.Role
	Approved bool // supervisors only
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}
