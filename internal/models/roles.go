package models

// Role names stored in user_roles.
const (
	RoleAdmin    = "admin"
	RoleProvider = "provider"
	RoleTraveler = "traveler"
)

// ValidRole reports whether name is one of the known roles.
func ValidRole(name string) bool {
	switch name {
	case RoleAdmin, RoleProvider, RoleTraveler:
		return true
	}
	return false
}
