package models

// RoleMember is assigned at registration. RoleAdmin may trigger the award pass.
const RoleMember = "member"
const RoleAdmin = "admin"

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}

// IsAdmin reports whether the user may run administrative actions.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
