package rbac

import (
	"errors"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/credentials"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

var (
	// ErrUnauthenticated: send the user to the login screen.
	ErrUnauthenticated = errors.New("not signed in")
	// ErrForbidden: the role may not open the screen.
	ErrForbidden = errors.New("not permitted for this role")
	// ErrPendingApproval: a supervisor waiting for an admin.
	ErrPendingApproval = errors.New("supervisor approval pending")
)

// Guard decides whether the signed-in user may use perm. An empty perm only
// requires a session.
func Guard(state credentials.AuthState, perm string) error {
	in, ok := state.(credentials.LoggedIn)
	if !ok {
		return ErrUnauthenticated
	}
	if perm == "" {
		return nil
	}
	if !defaultChecker.Has(in.Role, perm) {
		return ErrForbidden
	}
	if in.Role == model.RoleSupervisor && in.Approval != credentials.ApprovalGranted && NeedsApproval(perm) {
		return ErrPendingApproval
	}
	return nil
}
