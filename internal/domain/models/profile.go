package models

import "time"

// Role enumerates the profile roles known to the backend.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleOperator Role = "operator"
)

// DefaultRole is assigned to every profile created through sign-up.
const DefaultRole = RoleOperator

var roleLevels = map[Role]int{
	RoleAdmin:    3,
	RoleManager:  2,
	RoleOperator: 1,
}

// AtLeast reports whether r meets or exceeds the minimum role.
func (r Role) AtLeast(minimum Role) bool {
	return roleLevels[r] >= roleLevels[minimum] && roleLevels[r] > 0
}

// Profile is the user_profiles row attached to an authenticated identity.
type Profile struct {
	ID        string     `json:"id"`
	FullName  string     `json:"full_name"`
	Phone     *string    `json:"phone,omitempty"`
	Role      Role       `json:"role"`
	AvatarURL *string    `json:"avatar_url,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// NewProfile is the insert payload written right after sign-up.
type NewProfile struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}
