package models

type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
	RoleStaff Role = "Staff"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleStaff:
		return true
	}
	return false
}

// Elevated reports whether the role may access other users' resources.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleStaff
}
