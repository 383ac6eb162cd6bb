package account

import "time"

// Role partitions principals into the citizen submission path and the two
// authority scopes.
type Role string

const (
	RoleCitizen      Role = "citizen"
	RoleTrafficAdmin Role = "traffic_admin"
	RoleRailwayAdmin Role = "railway_admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleCitizen, RoleTrafficAdmin, RoleRailwayAdmin:
		return true
	}
	return false
}

// IsAuthority reports whether the role may access the authority surface.
func (r Role) IsAuthority() bool {
	return r == RoleTrafficAdmin || r == RoleRailwayAdmin
}

// Account is a registered principal. PasswordHash is a bcrypt hash and never
// leaves this package.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	IsVerified   bool
	Phone        string
	CreatedAt    time.Time
}

// Profile is the externally visible shape of an account.
type Profile struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	IsVerified bool   `json:"isVerified"`
}

// Profile returns the redacted view of the account.
func (a Account) Profile() Profile {
	return Profile{
		ID:         a.ID,
		Name:       a.Name,
		Email:      a.Email,
		Role:       a.Role,
		IsVerified: a.IsVerified,
	}
}
