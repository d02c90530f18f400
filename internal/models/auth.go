package models

import "time"

// StaffLoginRequest signs a staff member in by email.
type StaffLoginRequest struct {
	Correo   string `json:"correo" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// StudentLoginRequest signs a student in by cedula.
type StudentLoginRequest struct {
	Cedula   string `json:"cedula" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest creates a student account.
type RegisterRequest struct {
	Cedula   string `json:"cedula" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthUser is the user payload of a login response. Staff accounts carry
// correo, students carry email.
type AuthUser struct {
	ID           string    `json:"_id" validate:"required"`
	Cedula       string    `json:"cedula"`
	Email        string    `json:"email,omitempty"`
	Correo       string    `json:"correo,omitempty"`
	Role         UserRole  `json:"role" validate:"required"`
	ProfileImage string    `json:"profileImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Identity converts the payload into the client identity.
func (u AuthUser) Identity() Identity {
	email := u.Email
	if email == "" {
		email = u.Correo
	}
	return Identity{
		ID:           u.ID,
		Cedula:       u.Cedula,
		Email:        email,
		Role:         u.Role,
		ProfileImage: u.ProfileImage,
		CreatedAt:    u.CreatedAt,
	}
}

// AuthResponse is returned by the login and register endpoints.
type AuthResponse struct {
	Token string   `json:"token" validate:"required"`
	User  AuthUser `json:"user"`
}
