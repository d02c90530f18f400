package models

import "time"

// StaffProfile is returned by /staff/cedula/{cedula}.
type StaffProfile struct {
	ID         string   `json:"_id" validate:"required"`
	GivenName  string   `json:"nombre"`
	FamilyName string   `json:"apellido"`
	Cedula     string   `json:"cedula" validate:"required"`
	Email      string   `json:"correo"`
	Role       UserRole `json:"role"`
	Active     bool     `json:"status"`
}

// StudentProfile is returned by /students/cedula/{cedula}.
type StudentProfile struct {
	ID         string    `json:"_id" validate:"required"`
	GivenName  string    `json:"nombre"`
	FamilyName string    `json:"apellido"`
	Cedula     string    `json:"cedula" validate:"required"`
	Email      string    `json:"email"`
	BirthDate  time.Time `json:"fecha_nacimiento"`
	Phone      string    `json:"numero_telefono"`
	Address    string    `json:"direccion"`
	Sex        string    `json:"sexo"`
	Active     bool      `json:"status"`
}

// ProfileHeader is the summary shown above every profile screen.
type ProfileHeader struct {
	Title       string
	Email       string
	MemberSince string
	RoleLabel   string
	ImageURL    string
}
