package rbac

// Permissions used by the client guards and the stub server.
const (
	PermProfile              = "profile:manage"
	PermAssessmentTake       = "assessment:take"
	PermAssessmentHistory    = "assessment:history"
	PermCertificateView      = "certificate:view"
	PermUsersList            = "users:list"
	PermUsersDelete          = "users:delete"
	PermUsersApprove         = "users:approve"
	PermQuestionsRead        = "questions:read"
	PermQuestionsWrite       = "questions:write"
	PermAnalyticsView        = "analytics:view"
	PermSupervisorMonitor    = "supervisor:monitor"
	PermSupervisorInvalidate = "supervisor:invalidate"
)

// RolePermissions is the default policy.
var RolePermissions = map[string][]string{
	"student": {
		PermProfile,
		"assessment:*",
		PermCertificateView,
	},
	"supervisor": {
		PermProfile,
		PermAnalyticsView,
		"supervisor:*",
	},
	"admin": {
		"*", // everything
	},
}

// ApprovalGated lists permissions a supervisor only holds once an admin
// approved the account.
var ApprovalGated = []string{"supervisor:*", PermAnalyticsView}
