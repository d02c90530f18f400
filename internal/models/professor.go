package models

import "strings"

// ProfessorRef is an evaluator candidate.
type ProfessorRef struct {
	ID         string `json:"_id" validate:"required"`
	GivenName  string `json:"nombre"`
	FamilyName string `json:"apellido"`
}

// DisplayName joins given and family name.
func (p ProfessorRef) DisplayName() string {
	return strings.TrimSpace(p.GivenName + " " + p.FamilyName)
}
