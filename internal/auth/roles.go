package auth

import "github.com/SAP-F-2025/crm-service/internal/models"

type Permission string

const (
	PermLeadsRead      Permission = "leads:read"
	PermLeadsWrite     Permission = "leads:write"
	PermLeadsExport    Permission = "leads:export"
	PermAnalyticsRead  Permission = "analytics:read"
	PermQuizzesRead    Permission = "quizzes:read"
	PermQuizzesWrite   Permission = "quizzes:write"
	PermQuizzesPublish Permission = "quizzes:publish"
	PermUsersManage    Permission = "users:manage"
	PermCompanyManage  Permission = "company:manage"
	PermAuditRead      Permission = "audit:read"
	PermImpersonate    Permission = "companies:impersonate"
)

// roleRank orders company roles from least to most privileged.
var roleRank = map[models.UserRole]int{
	models.RoleViewer:   1,
	models.RoleSalesRep: 2,
	models.RoleManager:  3,
	models.RoleAdmin:    4,
	models.RoleOwner:    5,
}

var grants = map[models.UserRole][]Permission{
	models.RoleViewer: {
		PermLeadsRead, PermAnalyticsRead, PermQuizzesRead,
	},
	models.RoleSalesRep: {
		PermLeadsWrite,
	},
	models.RoleManager: {
		PermLeadsExport, PermQuizzesWrite, PermQuizzesPublish,
	},
	models.RoleAdmin: {
		PermUsersManage, PermAuditRead,
	},
	models.RoleOwner: {
		PermCompanyManage,
	},
}

// IsValidRole reports whether role is one of the company roles.
func IsValidRole(role models.UserRole) bool {
	_, ok := roleRank[role]
	return ok
}

// AtLeast reports whether role is min or above it in the hierarchy. Unknown
// roles rank below every known one.
func AtLeast(role, min models.UserRole) bool {
	return roleRank[role] >= roleRank[min] && roleRank[role] > 0
}

// PermissionsFor returns everything a role may do. Each role inherits the
// permissions of the roles below it. Platform admins get every permission.
func PermissionsFor(role models.UserRole, platformAdmin bool) map[Permission]bool {
	perms := make(map[Permission]bool)
	for r, rank := range roleRank {
		if platformAdmin || (roleRank[role] > 0 && rank <= roleRank[role]) {
			for _, p := range grants[r] {
				perms[p] = true
			}
		}
	}
	if platformAdmin {
		perms[PermImpersonate] = true
	}
	return perms
}
