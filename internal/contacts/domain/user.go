package domain

import "time"

// Role is the capability level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole returns the role named s, or false when s is not a known role.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleUser, RoleAdmin:
		return r, true
	default:
		return "", false
	}
}

type User struct {
	ID                string
	Email             string // lower-cased
	Username          string
	PasswordHash      string // argon2id PHC string
	Role              Role
	Verified          bool
	AvatarURL         string     // empty when unset
	PasswordChangedAt *time.Time // nil until the first reset
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Profile is the cacheable, secret-free view of a User. It is what the
// guard resolves a session token to.
type Profile struct {
	ID                string     `json:"id"`
	Email             string     `json:"email"`
	Username          string     `json:"username"`
	Role              Role       `json:"role"`
	Verified          bool       `json:"verified"`
	AvatarURL         string     `json:"avatar_url,omitempty"`
	PasswordChangedAt *time.Time `json:"password_changed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:                u.ID,
		Email:             u.Email,
		Username:          u.Username,
		Role:              u.Role,
		Verified:          u.Verified,
		AvatarURL:         u.AvatarURL,
		PasswordChangedAt: u.PasswordChangedAt,
		CreatedAt:         u.CreatedAt,
	}
}
