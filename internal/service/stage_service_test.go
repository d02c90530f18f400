package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-tracker/internal/models"
	appErrors "github.com/noah-isme/academic-tracker/pkg/errors"
	"github.com/noah-isme/academic-tracker/pkg/export"
)

type mockStageRepo struct {
	stages    []models.EvaluationStage
	listErr   error
	createErr error
	deleteErr error
	listCalls int
	created   []models.StageRequest
	deleted   []models.StageName
}

func (m *mockStageRepo) List(ctx context.Context) ([]models.EvaluationStage, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.EvaluationStage, len(m.stages))
	copy(out, m.stages)
	return out, nil
}

func (m *mockStageRepo) Create(ctx context.Context, req models.StageRequest) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, s := range m.stages {
		if s.Name == req.Name {
			return appErrors.DuplicateStageName(string(req.Name))
		}
	}
	m.created = append(m.created, req)
	m.stages = append(m.stages, models.EvaluationStage{
		ID:        "new-" + string(req.Name),
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Panel:     req.Panel,
	})
	return nil
}

func (m *mockStageRepo) Delete(ctx context.Context, name models.StageName) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, name)
	return nil
}

type mockProfessorRepo struct {
	professors []models.ProfessorRef
	err        error
}

func (m *mockProfessorRepo) List(ctx context.Context) ([]models.ProfessorRef, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.professors, nil
}

var adminSession = models.NewSession("tok", models.Identity{ID: "u1", Role: models.RoleAdmin})

func seededStages() []models.EvaluationStage {
	day := func(d int) time.Time { return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC) }
	return []models.EvaluationStage{
		{ID: "s1", Name: models.StageOne, StartDate: day(1), EndDate: day(5), Panel: []string{"p1"}},
		{ID: "s2", Name: models.StageTwo, StartDate: day(6), EndDate: day(10), Panel: []string{"p2", "p9"}},
		{ID: "s3", Name: models.StageThree, StartDate: day(11), EndDate: day(15), Panel: []string{"p1", "p2"}},
	}
}

func newStageService(t *testing.T, repo *mockStageRepo, session *models.Session) (*StageService, *MetricsService) {
	t.Helper()
	metrics := NewMetricsService()
	svc := NewStageService(repo, &mockProfessorRepo{professors: []models.ProfessorRef{
		{ID: "p1", GivenName: "Ana", FamilyName: "Pérez"},
		{ID: "p2", GivenName: "Luis", FamilyName: "Gómez"},
	}}, session, metrics, nil)
	svc.now = func() time.Time { return time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC) }
	require.NoError(t, svc.Refresh(context.Background()))
	return svc, metrics
}

func TestStageServiceListKeepsPreviousOnFailure(t *testing.T) {
	repo := &mockStageRepo{stages: seededStages()}
	svc, _ := newStageService(t, repo, adminSession)
	require.Len(t, svc.Stages(), 3)

	repo.listErr = appErrors.Clone(appErrors.ErrTransport, "")
	err := svc.ListStages(context.Background())

	assert.True(t, errors.Is(err, appErrors.ErrTransport))
	assert.Len(t, svc.Stages(), 3)
}

func TestStageServiceCreateDuplicate(t *testing.T) {
	repo := &mockStageRepo{stages: seededStages()[:1]}
	svc, _ := newStageService(t, repo, adminSession)

	err := svc.SubmitStage(context.Background(), models.StageForm{
		Name:      models.StageOne,
		StartDate: "10-01-2024",
		EndDate:   "12-01-2024",
		Panel:     []string{"p1"},
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateStageName))
	assert.Equal(t, "etapa 1", appErrors.FromError(err).Subject)
	assert.Len(t, svc.Stages(), 1)
	require.NoError(t, svc.ListStages(context.Background()))
	assert.Len(t, svc.Stages(), 1)
}

func TestStageServiceCreateRefetches(t *testing.T) {
	repo := &mockStageRepo{stages: seededStages()[:1]}
	svc, _ := newStageService(t, repo, adminSession)
	callsBefore := repo.listCalls

	err := svc.SubmitStage(context.Background(), models.StageForm{
		Name:      models.StageTwo,
		StartDate: "10-01-2024",
		EndDate:   "12-01-2024",
		Panel:     []string{"p1", "p2"},
	})

	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Equal(t, time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC), repo.created[0].StartDate)
	assert.Equal(t, callsBefore+1, repo.listCalls)
	stages := svc.Stages()
	require.Len(t, stages, 2)
	assert.Equal(t, models.StageTwo, stages[1].Name)
}

func TestStageServiceSubmitRejectsLocally(t *testing.T) {
	repo := &mockStageRepo{}
	svc, metrics := newStageService(t, repo, adminSession)

	err := svc.SubmitStage(context.Background(), models.StageForm{
		Name:      models.StageOne,
		StartDate: "01-01-2020",
		EndDate:   "05-01-2020",
		Panel:     []string{"p1"},
	})

	assert.True(t, errors.Is(err, appErrors.ErrDateInPast))
	assert.Empty(t, repo.created)
	assert.Equal(t, uint64(1), metrics.Snapshot().ValidationRejects)
}

func TestStageServiceRequiresAdmin(t *testing.T) {
	repo := &mockStageRepo{stages: seededStages()}
	professor := models.NewSession("tok", models.Identity{Role: models.RoleProfessor})
	svc, _ := newStageService(t, repo, professor)

	err := svc.CreateStage(context.Background(), models.StageRequest{Name: models.StageOne})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	confirmation, err := svc.RequestStageDeletion(models.StageTwo)
	assert.Nil(t, confirmation)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	assert.Empty(t, repo.created)
}

func TestStageServiceChecksEachCapability(t *testing.T) {
	repo := &mockStageRepo{stages: seededStages()[:1]}
	svc, _ := newStageService(t, repo, adminSession)
	svc.gate = func(models.Identity) Capabilities {
		return Capabilities{CanCreateStage: true}
	}

	confirmation, err := svc.RequestStageDeletion(models.StageOne)
	assert.Nil(t, confirmation)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	err = svc.CreateStage(context.Background(), models.StageRequest{Name: models.StageTwo, Panel: []string{"p1"}})
	require.NoError(t, err)
	assert.Len(t, repo.created, 1)

	svc.gate = func(models.Identity) Capabilities {
		return Capabilities{CanDeleteStage: true}
	}
	assert.True(t, errors.Is(svc.CreateStage(context.Background(), models.StageRequest{Name: models.StageThree}), appErrors.ErrForbidden))
	confirmation, err = svc.RequestStageDeletion(models.StageOne)
	require.NoError(t, err)
	assert.True(t, confirmation.Pending())
}

func TestStageServiceDeleteRemovesExactlyOne(t *testing.T) {
	repo := &mockStageRepo{stages: seededStages()}
	svc, _ := newStageService(t, repo, adminSession)

	confirmation, err := svc.RequestStageDeletion(models.StageTwo)
	require.NoError(t, err)
	assert.Empty(t, repo.deleted)

	// keep the local removal observable
	repo.listErr = errors.New("offline")
	require.NoError(t, confirmation.Confirm(context.Background()))

	assert.Equal(t, []models.StageName{models.StageTwo}, repo.deleted)
	stages := svc.Stages()
	require.Len(t, stages, 2)
	assert.Equal(t, "s1", stages[0].ID)
	assert.Equal(t, "s3", stages[1].ID)

	err = confirmation.Confirm(context.Background())
	assert.True(t, errors.Is(err, appErrors.ErrPreconditionFailed))
	assert.Len(t, repo.deleted, 1)
}

func TestStageServiceDeleteFailureRetracts(t *testing.T) {
	repo := &mockStageRepo{stages: seededStages()}
	svc, _ := newStageService(t, repo, adminSession)
	repo.deleteErr = appErrors.Clone(appErrors.ErrForbidden, "not allowed")

	confirmation, err := svc.RequestStageDeletion(models.StageTwo)
	require.NoError(t, err)

	err = confirmation.Confirm(context.Background())
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))
	assert.False(t, confirmation.Pending())
	assert.Len(t, svc.Stages(), 3)

	err = confirmation.Confirm(context.Background())
	assert.True(t, errors.Is(err, appErrors.ErrPreconditionFailed))
}

func TestStageServiceCancelledDeletionHasNoEffect(t *testing.T) {
	repo := &mockStageRepo{stages: seededStages()}
	svc, _ := newStageService(t, repo, adminSession)

	confirmation, err := svc.RequestStageDeletion(models.StageOne)
	require.NoError(t, err)
	confirmation.Cancel()

	assert.Error(t, confirmation.Confirm(context.Background()))
	assert.Empty(t, repo.deleted)
	assert.Len(t, svc.Stages(), 3)
}

func TestStageServiceEvaluatorNamesAndExport(t *testing.T) {
	repo := &mockStageRepo{stages: seededStages()}
	svc, _ := newStageService(t, repo, adminSession)

	stages := svc.Stages()
	assert.Equal(t, []string{"Luis Gómez", "p9"}, svc.EvaluatorNames(stages[1]))

	var buf bytes.Buffer
	require.NoError(t, svc.ExportSchedule(&buf, export.FormatCSV))
	assert.Contains(t, buf.String(), "etapa 2,06-03-2024,10-03-2024,\"Luis Gómez, p9\"\n")
}

func TestStageServiceCopiesCollections(t *testing.T) {
	repo := &mockStageRepo{stages: seededStages()}
	svc, _ := newStageService(t, repo, adminSession)

	stages := svc.Stages()
	stages[0].Name = "mutated"
	candidates := svc.Candidates()
	candidates[0].GivenName = "mutated"

	assert.Equal(t, models.StageOne, svc.Stages()[0].Name)
	assert.Equal(t, "Ana", svc.Candidates()[0].GivenName)
}
