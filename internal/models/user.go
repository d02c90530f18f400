package models

import "time"

// UserRole is the role string issued by the remote API.
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RoleProfessor UserRole = "profesor"
	RoleSecretary UserRole = "secretaria"
	RoleStudent   UserRole = "estudiante"
)

// IsStaff reports whether the role belongs to the staff side of the app.
func (r UserRole) IsStaff() bool {
	switch r {
	case RoleAdmin, RoleProfessor, RoleSecretary:
		return true
	default:
		return false
	}
}

// Identity is the authenticated user as known to the client.
type Identity struct {
	ID           string    `json:"_id"`
	Cedula       string    `json:"cedula"`
	Email        string    `json:"email,omitempty"`
	Role         UserRole  `json:"role"`
	ProfileImage string    `json:"profileImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session holds the bearer credential and identity for the signed-in user.
// It is created at sign-in, shared read-only and dropped at sign-out.
type Session struct {
	token string
	user  Identity
}

// NewSession builds a session from a login result.
func NewSession(token string, user Identity) *Session {
	return &Session{token: token, user: user}
}

// BearerToken returns the credential attached to every authenticated request.
func (s *Session) BearerToken() string {
	if s == nil {
		return ""
	}
	return s.token
}

// User returns a copy of the authenticated identity.
func (s *Session) User() Identity {
	if s == nil {
		return Identity{}
	}
	return s.user
}
