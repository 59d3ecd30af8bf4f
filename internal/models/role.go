package models

// Role is a member's role within a household. Roles form a total order
// OWNER > ADMIN > MEMBER used for permission comparisons. Every household
// has exactly one OWNER; that invariant is enforced by the household
// service, never by a stored flag.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// rank positions roles on the OWNER > ADMIN > MEMBER order.
func (r Role) rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleAdmin:
		return 2
	case RoleMember:
		return 1
	default:
		return 0
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.rank() > 0
}

// AtLeast reports whether r grants at least the privileges of required.
func (r Role) AtLeast(required Role) bool {
	return r.rank() >= required.rank()
}
