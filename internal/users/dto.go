package users

import (
	"time"

	"github.com/angelmondragon/farmfresh-backend/pkg/enums"
)

// User is the stored record, including the credential hash.
type User struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	Name           string         `json:"name"`
	Phone          string         `json:"phone,omitempty"`
	Role           enums.UserRole `json:"role"`
	PasswordHash   string         `json:"password_hash"`
	FarmName       string         `json:"farm_name,omitempty"`
	Certifications []string       `json:"certifications,omitempty"`
	Bio            string         `json:"bio,omitempty"`
	Location       string         `json:"location,omitempty"`
	LastLoginAt    *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	Name           string         `json:"name"`
	Phone          string         `json:"phone,omitempty"`
	Role           enums.UserRole `json:"role"`
	FarmName       string         `json:"farm_name,omitempty"`
	Certifications []string       `json:"certifications,omitempty"`
	Bio            string         `json:"bio,omitempty"`
	Location       string         `json:"location,omitempty"`
	LastLoginAt    *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email          string
	PasswordHash   string
	Name           string
	Phone          string
	Role           enums.UserRole
	FarmName       string
	Certifications []string
	Bio            string
	Location       string
}

// ProfileUpdate carries the mutable profile fields. Nil leaves a field unchanged.
type ProfileUpdate struct {
	Name           *string
	Phone          *string
	FarmName       *string
	Certifications []string
	Bio            *string
	Location       *string
}

func FromModel(u *User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:             u.ID,
		Email:          u.Email,
		Name:           u.Name,
		Phone:          u.Phone,
		Role:           u.Role,
		FarmName:       u.FarmName,
		Certifications: append([]string(nil), u.Certifications...),
		Bio:            u.Bio,
		Location:       u.Location,
		LastLoginAt:    u.LastLoginAt,
		CreatedAt:      u.CreatedAt,
	}
}

func (c CreateUserDTO) toModel(id string, now time.Time) User {
	u := User{
		ID:           id,
		Email:        c.Email,
		Name:         c.Name,
		Phone:        c.Phone,
		Role:         c.Role,
		PasswordHash: c.PasswordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// Farm fields only make sense on farmer accounts.
	if c.Role == enums.UserRoleFarmer {
		u.FarmName = c.FarmName
		u.Certifications = append([]string(nil), c.Certifications...)
		u.Bio = c.Bio
		u.Location = c.Location
	}
	return u
}

func (p ProfileUpdate) apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if u.Role != enums.UserRoleFarmer {
		return
	}
	if p.FarmName != nil {
		u.FarmName = *p.FarmName
	}
	if p.Certifications != nil {
		u.Certifications = append([]string(nil), p.Certifications...)
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
}
