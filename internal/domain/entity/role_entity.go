package entity

// Role represents an authorization role
// Role changes are an admin concern; the auth core only reads and stores it.
type Role string

const (
	RoleUser      Role = "USER"
	RoleAdmin     Role = "ADMIN"
	RoleDeveloper Role = "DEVELOPER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleDeveloper:
		return true
	}
	return false
}
