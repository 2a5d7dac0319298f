package models

import "strings"

// Role is the studio-wide role carried by a profile.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleManager  Role = "Manager"
	RoleEmployee Role = "Employee"
	RoleIntern   Role = "Intern"

	// legacyRoleContributor was written by an older profile schema.
	legacyRoleContributor = "Contributor"
)

// Roles lists the canonical roles in descending order of authority.
var Roles = []Role{RoleAdmin, RoleManager, RoleEmployee, RoleIntern}

// ParseRole accepts a canonical role name (case-insensitive) and maps the
// legacy Contributor value onto Employee.
func ParseRole(s string) (Role, bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, legacyRoleContributor) {
		return RoleEmployee, true
	}
	for _, r := range Roles {
		if strings.EqualFold(s, string(r)) {
			return r, true
		}
	}
	return "", false
}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

func (r Role) IsAdminOrManager() bool {
	return r == RoleAdmin || r == RoleManager
}

// CanManage reports whether a profile with role actor may edit or delete a
// profile with role target. Admins manage everyone, managers manage only
// non-admin non-manager accounts, and every other role manages nobody.
func CanManage(actor, target Role) bool {
	switch actor {
	case RoleAdmin:
		return true
	case RoleManager:
		return target != RoleAdmin && target != RoleManager
	default:
		return false
	}
}

// Department is the discipline a profile works in.
type Department string

const (
	DepartmentDesigner  Department = "designer"
	DepartmentDeveloper Department = "developer"
)

func ParseDepartment(s string) (Department, bool) {
	switch Department(strings.ToLower(strings.TrimSpace(s))) {
	case DepartmentDesigner:
		return DepartmentDesigner, true
	case DepartmentDeveloper:
		return DepartmentDeveloper, true
	default:
		return "", false
	}
}

// ProjectRole is the role of a member inside a single project.
type ProjectRole string

const (
	ProjectRoleMember ProjectRole = "member"
	ProjectRoleAdmin  ProjectRole = "admin"
)

// ParseProjectRole accepts member/admin and the legacy Admin/Manager/Contributor
// membership values.
func ParseProjectRole(s string) (ProjectRole, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "member", "contributor":
		return ProjectRoleMember, true
	case "admin", "manager":
		return ProjectRoleAdmin, true
	default:
		return "", false
	}
}
