package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-tracker/internal/models"
	appErrors "github.com/noah-isme/academic-tracker/pkg/errors"
	"github.com/noah-isme/academic-tracker/pkg/export"
)

type stageRepository interface {
	List(ctx context.Context) ([]models.EvaluationStage, error)
	Create(ctx context.Context, req models.StageRequest) error
	Delete(ctx context.Context, name models.StageName) error
}

type professorRepository interface {
	List(ctx context.Context) ([]models.ProfessorRef, error)
}

// StageService owns the evaluation stages and the evaluator candidates of the
// signed-in user. Collections only change after the API confirmed a write.
type StageService struct {
	stages     stageRepository
	professors professorRepository
	session    *models.Session
	metrics    *MetricsService
	logger     *zap.Logger
	now        func() time.Time
	gate       func(models.Identity) Capabilities

	mu         sync.Mutex
	stageList  []models.EvaluationStage
	candidates []models.ProfessorRef
}

// NewStageService constructs a StageService bound to session.
func NewStageService(stages stageRepository, professors professorRepository, session *models.Session, metrics *MetricsService, logger *zap.Logger) *StageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StageService{
		stages:     stages,
		professors: professors,
		session:    session,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
		gate:       CapabilitiesFor,
	}
}

// ListStages replaces the owned stage list with the server's. On failure the
// previous list is kept.
func (s *StageService) ListStages(ctx context.Context) error {
	stages, err := s.stages.List(ctx)
	if err != nil {
		s.logger.Warn("failed to list stages", zap.Error(err))
		return err
	}
	s.mu.Lock()
	s.stageList = stages
	s.mu.Unlock()
	return nil
}

// ListEvaluatorCandidates replaces the owned candidate list.
func (s *StageService) ListEvaluatorCandidates(ctx context.Context) error {
	professors, err := s.professors.List(ctx)
	if err != nil {
		s.logger.Warn("failed to list evaluator candidates", zap.Error(err))
		return err
	}
	s.mu.Lock()
	s.candidates = professors
	s.mu.Unlock()
	return nil
}

// Refresh reloads both collections. Both are attempted; the first error is returned.
func (s *StageService) Refresh(ctx context.Context) error {
	stagesErr := s.ListStages(ctx)
	candidatesErr := s.ListEvaluatorCandidates(ctx)
	if stagesErr != nil {
		return stagesErr
	}
	return candidatesErr
}

// SubmitStage validates the raw form against today and creates the stage.
// Validation failures never reach the network.
func (s *StageService) SubmitStage(ctx context.Context, form models.StageForm) error {
	if err := s.require(s.capabilities().CanCreateStage, "create stages"); err != nil {
		return err
	}
	req, err := ValidateStageRequest(form, s.now())
	if err != nil {
		code := appErrors.FromError(err).Code
		s.metrics.RecordValidationFailure(code)
		s.logger.Debug("stage form rejected", zap.String("code", code), zap.String("stage", string(form.Name)))
		return err
	}
	return s.CreateStage(ctx, req)
}

// CreateStage submits a validated request and re-reads the stage list so the
// server stays the source of truth. A failed re-read is logged only.
func (s *StageService) CreateStage(ctx context.Context, req models.StageRequest) error {
	if err := s.require(s.capabilities().CanCreateStage, "create stages"); err != nil {
		return err
	}
	if err := s.stages.Create(ctx, req); err != nil {
		if errors.Is(err, appErrors.ErrDuplicateStageName) {
			s.logger.Info("stage already exists", zap.String("stage", string(req.Name)))
		} else {
			s.logger.Warn("failed to create stage", zap.String("stage", string(req.Name)), zap.Error(err))
		}
		return err
	}
	s.logger.Info("stage created", zap.String("stage", string(req.Name)), zap.Int("panel", len(req.Panel)))

	if err := s.ListStages(ctx); err != nil {
		s.logger.Warn("stage list stale after create", zap.Error(err))
	}
	return nil
}

// RequestStageDeletion prepares the deletion of the named stage. Nothing
// happens until the returned confirmation is confirmed.
func (s *StageService) RequestStageDeletion(name models.StageName) (*Confirmation, error) {
	if err := s.require(s.capabilities().CanDeleteStage, "delete stages"); err != nil {
		return nil, err
	}
	return newConfirmation(string(name), func(ctx context.Context) error {
		return s.deleteStage(ctx, name)
	}), nil
}

func (s *StageService) deleteStage(ctx context.Context, name models.StageName) error {
	if err := s.stages.Delete(ctx, name); err != nil {
		s.logger.Warn("failed to delete stage", zap.String("stage", string(name)), zap.Error(err))
		return err
	}

	s.mu.Lock()
	for i, stage := range s.stageList {
		if stage.Name == name {
			s.stageList = append(s.stageList[:i:i], s.stageList[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.logger.Info("stage deleted", zap.String("stage", string(name)))

	if err := s.ListStages(ctx); err != nil {
		s.logger.Warn("stage list stale after delete", zap.Error(err))
	}
	return nil
}

// Stages returns a copy of the owned stage list.
func (s *StageService) Stages() []models.EvaluationStage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.EvaluationStage, len(s.stageList))
	copy(out, s.stageList)
	return out
}

// Candidates returns a copy of the owned candidate list.
func (s *StageService) Candidates() []models.ProfessorRef {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ProfessorRef, len(s.candidates))
	copy(out, s.candidates)
	return out
}

// EvaluatorNames resolves the panel of stage to display names. Unknown ids are
// returned as-is.
func (s *StageService) EvaluatorNames(stage models.EvaluationStage) []string {
	s.mu.Lock()
	byID := make(map[string]string, len(s.candidates))
	for _, p := range s.candidates {
		byID[p.ID] = p.DisplayName()
	}
	s.mu.Unlock()

	names := make([]string, 0, len(stage.Panel))
	for _, id := range stage.Panel {
		if name, ok := byID[id]; ok && name != "" {
			names = append(names, name)
			continue
		}
		names = append(names, id)
	}
	return names
}

// ExportSchedule writes the current stage list with resolved evaluator names.
func (s *StageService) ExportSchedule(w io.Writer, format export.Format) error {
	stages := s.Stages()
	sheet := export.Sheet{
		Title: "Cronograma de evaluación",
		Columns: []export.Column{
			{Header: "Etapa", Weight: 1},
			{Header: "Inicio", Weight: 1},
			{Header: "Fin", Weight: 1},
			{Header: "Jurado", Weight: 3},
		},
		Rows: make([][]string, 0, len(stages)),
	}
	for _, stage := range stages {
		sheet.Rows = append(sheet.Rows, []string{
			string(stage.Name),
			FormatStageDate(stage.StartDate.UTC()),
			FormatStageDate(stage.EndDate.UTC()),
			strings.Join(s.EvaluatorNames(stage), ", "),
		})
	}
	return export.Write(w, sheet, format)
}

func (s *StageService) capabilities() Capabilities {
	return s.gate(s.session.User())
}

func (s *StageService) require(allowed bool, action string) error {
	if !allowed {
		return appErrors.Clone(appErrors.ErrForbidden, "only administrators can "+action)
	}
	return nil
}
