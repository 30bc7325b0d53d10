// Package auth defines the credential every request carries once the bearer
// token has been resolved: who is calling and in which role.
package auth

import "fmt"

// Role is the caller's role claim.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleTrainer  Role = "trainer"
	RoleCustomer Role = "customer"
)

// ParseRole accepts the three known roles and nothing else.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleAdmin, RoleTrainer, RoleCustomer:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Principal is the resolved caller. SubjectID is the account id; trainer and
// customer profile ids are looked up from it when needed.
type Principal struct {
	SubjectID uint64
	Role      Role
}

func (p Principal) IsAdmin() bool    { return p.Role == RoleAdmin }
func (p Principal) IsTrainer() bool  { return p.Role == RoleTrainer }
func (p Principal) IsCustomer() bool { return p.Role == RoleCustomer }
