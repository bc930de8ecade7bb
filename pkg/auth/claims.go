package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/angelmondragon/farmfresh-backend/pkg/enums"
)

// AccessTokenPayload is what a caller knows about the user when minting.
type AccessTokenPayload struct {
	UserID string
	Email  string
	Role   enums.UserRole
	JTI    string
}

// AccessTokenClaims is the body of an X-FF-Token access token.
type AccessTokenClaims struct {
	UserID string         `json:"user_id"`
	Email  string         `json:"email,omitempty"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Validate runs after the registered claims checks during parsing.
func (c AccessTokenClaims) Validate() error {
	if !c.Role.IsValid() {
		return fmt.Errorf("invalid user role %q", c.Role)
	}
	return nil
}
