package repository

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/noah-isme/academic-tracker/internal/models"
	appErrors "github.com/noah-isme/academic-tracker/pkg/errors"
)

// duplicateStageMessage is what the API answers when a stage name is taken.
const duplicateStageMessage = "La etapa ya existe"

// StageRepository talks to the /etapas resource.
type StageRepository struct {
	api apiDoer
}

// NewStageRepository creates the repository.
func NewStageRepository(api apiDoer) *StageRepository {
	return &StageRepository{api: api}
}

// List returns every persisted stage in server order.
func (r *StageRepository) List(ctx context.Context) ([]models.EvaluationStage, error) {
	var stages []models.EvaluationStage
	if err := r.api.Do(ctx, apiRequest("stages.list", http.MethodGet, "/etapas"), &stages); err != nil {
		return nil, err
	}
	return stages, nil
}

// Create submits a validated stage. A name conflict comes back as DuplicateStageName.
func (r *StageRepository) Create(ctx context.Context, req models.StageRequest) error {
	call := apiRequest("stages.create", http.MethodPost, "/etapas")
	call.Body = req
	err := r.api.Do(ctx, call, nil)
	if err == nil {
		return nil
	}
	if isDuplicateStage(err) {
		dup := appErrors.DuplicateStageName(string(req.Name))
		dup.Err = err
		return dup
	}
	return err
}

// Delete removes the stage with the given name.
func (r *StageRepository) Delete(ctx context.Context, name models.StageName) error {
	return r.api.Do(ctx, apiRequest("stages.delete", http.MethodDelete, "/etapas/"+url.PathEscape(string(name))), nil)
}

func isDuplicateStage(err error) bool {
	if errors.Is(err, appErrors.ErrConflict) {
		return true
	}
	var apiErr *appErrors.Error
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		return strings.EqualFold(strings.TrimSpace(apiErr.Message), duplicateStageMessage)
	}
	return false
}
