package domain

import (
	"errors"
	"slices"
)

// ErrForbidden is returned by RequireRole.
var ErrForbidden = errors.New("forbidden")

// Principal is the authenticated caller of a request.
type Principal struct {
	Profile
}

func NewPrincipal(p Profile) Principal { return Principal{Profile: p} }

// SubjectID and RoleName let the HTTP layer treat a Principal as an identity.
func (p Principal) SubjectID() string { return p.ID }
func (p Principal) RoleName() string  { return string(p.Role) }

// RequireRole is the single role check of the service. Both the HTTP admin
// middleware and the gated service operations call it.
func RequireRole(p Principal, roles ...Role) error {
	if slices.Contains(roles, p.Role) {
		return nil
	}
	return ErrForbidden
}
