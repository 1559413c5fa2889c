package app

import (
	"fmt"

	"pine_hotel/internal/domain"
)

func requireRole(caller domain.Principal, roles ...domain.Role) error {
	if caller.UserID == 0 {
		return domain.ErrUnauthorized
	}
	for _, r := range roles {
		if caller.Role == r {
			return nil
		}
	}
	return fmt.Errorf("role %s: %w", caller.Role, domain.ErrForbidden)
}

// canManageHotel: super-admins manage every hotel, admins only their own.
func canManageHotel(caller domain.Principal, h domain.Hotel) error {
	if err := requireRole(caller, domain.RoleAdmin, domain.RoleSuperAdmin); err != nil {
		return err
	}
	if caller.IsSuperAdmin() || h.OwnerID == caller.UserID {
		return nil
	}
	return fmt.Errorf("hotel %d: %w", h.ID, domain.ErrForbidden)
}
