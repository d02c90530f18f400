package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-tracker/internal/models"
	appErrors "github.com/noah-isme/academic-tracker/pkg/errors"
)

type authRepository interface {
	StaffLogin(ctx context.Context, req models.StaffLoginRequest) (*models.AuthResponse, error)
	StudentLogin(ctx context.Context, req models.StudentLoginRequest) (*models.AuthResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
}

// SessionClaims are the identity claims carried by an access token.
type SessionClaims struct {
	Cedula string          `json:"cedula"`
	Email  string          `json:"email,omitempty"`
	Role   models.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// AuthService signs users in and builds the session every other service is bound to.
type AuthService struct {
	repo      authRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(repo authRepository, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// StaffLogin signs a staff member in by email and password.
func (s *AuthService) StaffLogin(ctx context.Context, req models.StaffLoginRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	resp, err := s.repo.StaffLogin(ctx, req)
	return s.session(resp, err, "staff")
}

// StudentLogin signs a student in by cedula and password.
func (s *AuthService) StudentLogin(ctx context.Context, req models.StudentLoginRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	resp, err := s.repo.StudentLogin(ctx, req)
	return s.session(resp, err, "student")
}

// Register creates a student account and returns its session.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.Session, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}
	resp, err := s.repo.Register(ctx, req)
	return s.session(resp, err, "register")
}

// ResumeSession rebuilds a session from a stored token. The signature is not
// checked here; the API verifies it on every call. Expired tokens are refused.
func (s *AuthService) ResumeSession(token string) (*models.Session, error) {
	claims := &SessionClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "malformed session token")
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session token expired")
	}
	if claims.Subject == "" || claims.Role == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session token lacks identity claims")
	}
	identity := models.Identity{
		ID:     claims.Subject,
		Cedula: claims.Cedula,
		Email:  claims.Email,
		Role:   claims.Role,
	}
	if claims.IssuedAt != nil {
		identity.CreatedAt = claims.IssuedAt.Time
	}
	return models.NewSession(token, identity), nil
}

func (s *AuthService) session(resp *models.AuthResponse, err error, flow string) (*models.Session, error) {
	if err != nil {
		if errors.Is(err, appErrors.ErrUnauthorized) || errors.Is(err, appErrors.ErrNotFound) {
			msg := appErrors.FromError(err).Message
			if msg == appErrors.ErrUnauthorized.Message || msg == appErrors.ErrNotFound.Message {
				msg = ""
			}
			s.logger.Info("login refused", zap.String("flow", flow))
			out := appErrors.Clone(appErrors.ErrInvalidCredentials, msg)
			out.Err = err
			return nil, out
		}
		s.logger.Warn("login failed", zap.String("flow", flow), zap.Error(err))
		return nil, err
	}
	identity := resp.User.Identity()
	s.logger.Info("signed in", zap.String("flow", flow), zap.String("user_id", identity.ID), zap.String("role", string(identity.Role)))
	return models.NewSession(resp.Token, identity), nil
}
