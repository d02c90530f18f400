package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-tracker/internal/models"
	appErrors "github.com/noah-isme/academic-tracker/pkg/errors"
)

type mockProfileRepo struct {
	staff     map[string]*models.StaffProfile
	students  map[string]*models.StudentProfile
	requested []string
}

func (m *mockProfileRepo) Staff(ctx context.Context, cedula string) (*models.StaffProfile, error) {
	m.requested = append(m.requested, "staff:"+cedula)
	if p, ok := m.staff[cedula]; ok {
		return p, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "staff not found")
}

func (m *mockProfileRepo) Student(ctx context.Context, cedula string) (*models.StudentProfile, error) {
	m.requested = append(m.requested, "student:"+cedula)
	if p, ok := m.students[cedula]; ok {
		return p, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
}

func TestBuildProfileHeaderStaff(t *testing.T) {
	header := BuildProfileHeader(models.Identity{
		Cedula:    "V-123",
		Email:     "ana@uni.edu",
		Role:      models.RoleProfessor,
		CreatedAt: time.Date(2023, time.June, 3, 0, 0, 0, 0, time.UTC),
	})

	assert.Equal(t, models.ProfileHeader{
		Title:       "V-123",
		Email:       "ana@uni.edu",
		MemberSince: "Junio 2023",
		RoleLabel:   "Staff (profesor)",
		ImageURL:    DefaultAvatarURL,
	}, header)
}

func TestBuildProfileHeaderStudentFallbacks(t *testing.T) {
	header := BuildProfileHeader(models.Identity{Cedula: "30111222", Role: models.RoleStudent, ProfileImage: "https://img/x.png"})

	assert.Equal(t, "Sin correo", header.Email)
	assert.Equal(t, "Desconocido", header.MemberSince)
	assert.Equal(t, "Estudiante", header.RoleLabel)
	assert.Equal(t, "https://img/x.png", header.ImageURL)
}

func TestFormatDates(t *testing.T) {
	d := time.Date(2023, time.May, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "May 15, 2023", FormatPublishedDate(d))
	assert.Equal(t, "Mayo 2023", FormatMemberSince(d))
	assert.Equal(t, "Diciembre 2021", FormatMemberSince(time.Date(2021, time.December, 31, 0, 0, 0, 0, time.UTC)))
}

func TestProfileServiceFetchesByCedula(t *testing.T) {
	repo := &mockProfileRepo{
		staff:    map[string]*models.StaffProfile{"V-1": {ID: "s1", Cedula: "V-1", GivenName: "Ana"}},
		students: map[string]*models.StudentProfile{},
	}
	session := models.NewSession("tok", models.Identity{Cedula: "V-1", Role: models.RoleAdmin})
	svc := NewProfileService(repo, session, nil)

	profile, err := svc.StaffProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ana", profile.GivenName)

	_, err = svc.StudentProfile(context.Background())
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, []string{"staff:V-1", "student:V-1"}, repo.requested)
	assert.Equal(t, "Staff (admin)", svc.Header().RoleLabel)
}
