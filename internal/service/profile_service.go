package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-tracker/internal/models"
)

const (
	// DefaultAvatarURL is shown for users without a profile image.
	DefaultAvatarURL = "https://cdn-icons-png.flaticon.com/512/149/149071.png"

	noEmailLabel     = "Sin correo"
	unknownDateLabel = "Desconocido"
	studentRoleLabel = "Estudiante"
)

var spanishMonths = [...]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

type profileRepository interface {
	Staff(ctx context.Context, cedula string) (*models.StaffProfile, error)
	Student(ctx context.Context, cedula string) (*models.StudentProfile, error)
}

// ProfileService loads the profile of the signed-in user.
type ProfileService struct {
	repo    profileRepository
	session *models.Session
	logger  *zap.Logger
}

// NewProfileService constructs a ProfileService.
func NewProfileService(repo profileRepository, session *models.Session, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{repo: repo, session: session, logger: logger}
}

// Header builds the profile header from the session identity.
func (s *ProfileService) Header() models.ProfileHeader {
	return BuildProfileHeader(s.session.User())
}

// StaffProfile fetches the staff record of the signed-in user.
func (s *ProfileService) StaffProfile(ctx context.Context) (*models.StaffProfile, error) {
	user := s.session.User()
	profile, err := s.repo.Staff(ctx, user.Cedula)
	if err != nil {
		s.logger.Warn("failed to load staff profile", zap.String("cedula", user.Cedula), zap.Error(err))
		return nil, err
	}
	return profile, nil
}

// StudentProfile fetches the student record of the signed-in user.
func (s *ProfileService) StudentProfile(ctx context.Context) (*models.StudentProfile, error) {
	user := s.session.User()
	profile, err := s.repo.Student(ctx, user.Cedula)
	if err != nil {
		s.logger.Warn("failed to load student profile", zap.String("cedula", user.Cedula), zap.Error(err))
		return nil, err
	}
	return profile, nil
}

// BuildProfileHeader derives the header shown above every profile screen.
func BuildProfileHeader(user models.Identity) models.ProfileHeader {
	header := models.ProfileHeader{
		Title:       user.Cedula,
		Email:       user.Email,
		MemberSince: unknownDateLabel,
		RoleLabel:   studentRoleLabel,
		ImageURL:    user.ProfileImage,
	}
	if header.Email == "" {
		header.Email = noEmailLabel
	}
	if !user.CreatedAt.IsZero() {
		header.MemberSince = FormatMemberSince(user.CreatedAt)
	}
	if user.Role.IsStaff() {
		header.RoleLabel = fmt.Sprintf("Staff (%s)", user.Role)
	}
	if header.ImageURL == "" {
		header.ImageURL = DefaultAvatarURL
	}
	return header
}

// FormatMemberSince renders t as a capitalised Spanish month and year, e.g. "Junio 2023".
func FormatMemberSince(t time.Time) string {
	return fmt.Sprintf("%s %d", spanishMonths[t.Month()-1], t.Year())
}

// FormatPublishedDate renders t as "May 15, 2023".
func FormatPublishedDate(t time.Time) string {
	return t.Format("January 2, 2006")
}
