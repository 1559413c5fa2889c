package domain

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleGuest      Role = "guest"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleGuest, RoleAdmin, RoleSuperAdmin:
		return r, nil
	}
	return "", Invalid("role", fmt.Sprintf("unknown role %q", s))
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID int64
	Email  string
	Role   Role
}

func (p Principal) IsSuperAdmin() bool { return p.Role == RoleSuperAdmin }
func (p Principal) IsAdmin() bool      { return p.Role == RoleAdmin }
