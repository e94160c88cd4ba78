package rbac

import (
	"encoding/json"
	"net/http"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

var defaultChecker = NewChecker(nil)

func deny(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

func allowed(p Principal, perm string) bool {
	if !defaultChecker.Has(p.Role, perm) {
		return false
	}
	return p.Role != model.RoleSupervisor || p.Approved || !NeedsApproval(perm)
}

// Require enforces a single permission.
func Require(perm string) func(http.Handler) http.Handler {
	return RequireAny(perm)
}

// RequireAny enforces that the caller holds at least one of the permissions.
func RequireAny(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				deny(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			for _, perm := range perms {
				if allowed(p, perm) {
					next.ServeHTTP(w, r)
					return
				}
			}
			deny(w, http.StatusForbidden, "Forbidden")
		})
	}
}

// RequireOwnerOr lets the resource owner through, everyone else needs perm.
func RequireOwnerOr(perm string, isOwner func(r *http.Request) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				deny(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if isOwner(r) || allowed(p, perm) {
				next.ServeHTTP(w, r)
				return
			}
			deny(w, http.StatusForbidden, "Forbidden")
		})
	}
}
