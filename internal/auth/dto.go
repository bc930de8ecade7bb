package auth

import (
	"github.com/angelmondragon/farmfresh-backend/internal/users"
	"github.com/angelmondragon/farmfresh-backend/pkg/enums"
)

// LoginRequest captures the user credentials sent to the login endpoint. Role is
// optional; when present the account must hold that role.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=consumer customer farmer"`

	// CartProfile ties the guest cart profile to the user; set from the request header.
	CartProfile string `json:"-"`
}

// RegisterRequest contains the payload required to open an account.
type RegisterRequest struct {
	Name           string   `json:"name" validate:"required,max=120"`
	Email          string   `json:"email" validate:"required,email,max=254"`
	Password       string   `json:"password" validate:"required,min=8,max=128"`
	Phone          string   `json:"phone,omitempty" validate:"omitempty,max=32"`
	Role           string   `json:"role" validate:"required,oneof=consumer customer farmer"`
	FarmName       string   `json:"farm_name,omitempty" validate:"omitempty,max=120"`
	Certifications []string `json:"certifications,omitempty" validate:"omitempty,max=10,dive,max=60"`
	Bio            string   `json:"bio,omitempty" validate:"omitempty,max=1000"`
	Location       string   `json:"location,omitempty" validate:"omitempty,max=120"`

	CartProfile string `json:"-"`
}

// UpdateProfileRequest holds the editable profile fields.
type UpdateProfileRequest struct {
	Name           *string  `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	Phone          *string  `json:"phone,omitempty" validate:"omitempty,max=32"`
	FarmName       *string  `json:"farm_name,omitempty" validate:"omitempty,max=120"`
	Certifications []string `json:"certifications,omitempty" validate:"omitempty,max=10,dive,max=60"`
	Bio            *string  `json:"bio,omitempty" validate:"omitempty,max=1000"`
	Location       *string  `json:"location,omitempty" validate:"omitempty,max=120"`
}

// LoginResponse contains the tokens and user produced by a successful login or
// registration.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *users.UserDTO `json:"user"`
}

// CurrentUser is the record kept per cart profile for the last authenticated user.
type CurrentUser struct {
	UserID string         `json:"user_id"`
	Email  string         `json:"email"`
	Name   string         `json:"name"`
	Role   enums.UserRole `json:"role"`
}

func (r UpdateProfileRequest) toUpdate() users.ProfileUpdate {
	return users.ProfileUpdate{
		Name:           r.Name,
		Phone:          r.Phone,
		FarmName:       r.FarmName,
		Certifications: r.Certifications,
		Bio:            r.Bio,
		Location:       r.Location,
	}
}
