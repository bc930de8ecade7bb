package enums

import "fmt"

// UserRole distinguishes shoppers from the farmers who list produce.
type UserRole string

const (
	UserRoleConsumer UserRole = "consumer"
	UserRoleFarmer   UserRole = "farmer"
)

var validUserRoles = []UserRole{
	UserRoleConsumer,
	UserRoleFarmer,
}

// String implements fmt.Stringer.
func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known UserRole.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseUserRole converts raw input into a UserRole. The legacy "customer" label maps to consumer.
func ParseUserRole(value string) (UserRole, error) {
	if value == "customer" {
		return UserRoleConsumer, nil
	}
	for _, candidate := range validUserRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
