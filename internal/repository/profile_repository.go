package repository

import (
	"context"
	"net/http"
	"net/url"

	"github.com/noah-isme/academic-tracker/internal/models"
)

// ProfileRepository loads staff and student profiles by cedula.
type ProfileRepository struct {
	api apiDoer
}

// NewProfileRepository creates the repository.
func NewProfileRepository(api apiDoer) *ProfileRepository {
	return &ProfileRepository{api: api}
}

// Staff returns the staff member with the given cedula.
func (r *ProfileRepository) Staff(ctx context.Context, cedula string) (*models.StaffProfile, error) {
	var profile models.StaffProfile
	if err := r.api.Do(ctx, apiRequest("profiles.staff", http.MethodGet, "/staff/cedula/"+url.PathEscape(cedula)), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Student returns the student with the given cedula.
func (r *ProfileRepository) Student(ctx context.Context, cedula string) (*models.StudentProfile, error) {
	var profile models.StudentProfile
	if err := r.api.Do(ctx, apiRequest("profiles.student", http.MethodGet, "/students/cedula/"+url.PathEscape(cedula)), &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
