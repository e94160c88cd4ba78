package credentials

import "github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"

// AuthState is either LoggedOut or LoggedIn. A role without tokens cannot be
// represented.
type AuthState interface {
	isAuthState()
}

type LoggedOut struct{}

type LoggedIn struct {
	Role     model.Role
	Approval Approval
}

func (LoggedOut) isAuthState() {}
func (LoggedIn) isAuthState()  {}

type Approval int

const (
	ApprovalNotRequired Approval = iota
	ApprovalPending
	ApprovalGranted
)

func (a Approval) String() string {
	switch a {
	case ApprovalPending:
		return "pending"
	case ApprovalGranted:
		return "granted"
	default:
		return "not-required"
	}
}

// StateOf derives the tagged state. Tokens without a known role count as
// logged out: nothing can be authorised without a role.
func StateOf(c Credentials) AuthState {
	c = c.normalize()
	if !c.HasTokens() || c.Role == "" {
		return LoggedOut{}
	}
	in := LoggedIn{Role: c.Role, Approval: ApprovalNotRequired}
	if c.Role == model.RoleSupervisor {
		in.Approval = ApprovalPending
		approved := c.SupervisorApproved
		if approved == nil {
			approved = c.IsApproved
		}
		if approved != nil && *approved {
			in.Approval = ApprovalGranted
		}
	}
	return in
}
