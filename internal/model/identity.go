package model

// Role is the privilege level carried by an authenticated identity.
type Role int

const (
	RoleMember Role = iota
	RoleAdmin
)

// RoleAdminName is the only stored role value that grants admin rights.
const RoleAdminName = "admin"

// ParseRole maps a stored role string onto a Role. Anything other than
// "admin" is a member.
func ParseRole(s string) Role {
	if s == RoleAdminName {
		return RoleAdmin
	}
	return RoleMember
}

func (r Role) String() string {
	if r == RoleAdmin {
		return RoleAdminName
	}
	return "member"
}

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID   int
	Username string
	Role     Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
