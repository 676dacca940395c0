package auth

import "strings"

// Role del principal. Lo provee el IAM (o los headers de debug en dev).
type Role string

const (
	RoleUser  Role = "user"
	RoleStaff Role = "staff"
	RoleAdmin Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleStaff:
		return RoleStaff, true
	case RoleAdmin:
		return RoleAdmin, true
	default:
		return "", false
	}
}

// IsStaff: staff y admin comparten permisos de revisión.
func (r Role) IsStaff() bool {
	return r == RoleStaff || r == RoleAdmin
}

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	Name   string
	Role   Role
}
