package user

import "strings"

type Role string

// Roles
const (
	RoleInstructor Role = "instructor"
	RoleEditor     Role = "editor"
	RoleReader     Role = "reader"
	RoleAdmin      Role = "admin"

	DefaultRole = RoleInstructor
)

var AllRoles = []Role{RoleInstructor, RoleEditor, RoleReader, RoleAdmin}

// Permission is a capability granted to a Role.
type Permission uint8

const (
	// PermAuthor allows creating patterns, lessons, courses and templates.
	PermAuthor Permission = iota + 1
	// PermModifyOwn allows updating and deleting resources one created.
	PermModifyOwn
	// PermModifyAny allows updating and deleting any resource.
	PermModifyAny
)

var rolePermissions = map[Role][]Permission{
	RoleInstructor: {PermAuthor, PermModifyOwn},
	RoleEditor:     {PermAuthor, PermModifyOwn},
	RoleReader:     {},
	RoleAdmin:      {PermAuthor, PermModifyOwn, PermModifyAny},
}

// ParseRole maps s to one of AllRoles, ignoring case and surrounding whitespace.
func ParseRole(s string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	_, ok := rolePermissions[role]
	return role, ok
}

func (r Role) IsValid() bool {
	_, ok := rolePermissions[r]
	return ok
}

func (r Role) Can(perm Permission) bool {
	for _, p := range rolePermissions[r] {
		if p == perm {
			return true
		}
	}
	return false
}
