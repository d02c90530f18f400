package repository

import (
	"context"
	"net/http"

	"github.com/noah-isme/academic-tracker/internal/models"
)

// ProfessorRepository lists evaluator candidates.
type ProfessorRepository struct {
	api apiDoer
}

// NewProfessorRepository creates the repository.
func NewProfessorRepository(api apiDoer) *ProfessorRepository {
	return &ProfessorRepository{api: api}
}

// List returns every professor that can sit on an evaluation panel.
func (r *ProfessorRepository) List(ctx context.Context) ([]models.ProfessorRef, error) {
	var professors []models.ProfessorRef
	if err := r.api.Do(ctx, apiRequest("professors.list", http.MethodGet, "/profesores"), &professors); err != nil {
		return nil, err
	}
	return professors, nil
}
