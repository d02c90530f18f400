package repository

import (
	"context"
	"net/http"

	"github.com/noah-isme/academic-tracker/internal/models"
	"github.com/noah-isme/academic-tracker/pkg/apiclient"
)

// AuthRepository calls the unauthenticated sign-in endpoints.
type AuthRepository struct {
	api apiDoer
}

// NewAuthRepository creates the repository.
func NewAuthRepository(api apiDoer) *AuthRepository {
	return &AuthRepository{api: api}
}

// StaffLogin signs a staff member in.
func (r *AuthRepository) StaffLogin(ctx context.Context, req models.StaffLoginRequest) (*models.AuthResponse, error) {
	return r.post(ctx, "auth.staff_login", "/auth/staff-login", req)
}

// StudentLogin signs a student in.
func (r *AuthRepository) StudentLogin(ctx context.Context, req models.StudentLoginRequest) (*models.AuthResponse, error) {
	return r.post(ctx, "auth.login", "/auth/login", req)
}

// Register creates a student account and signs it in.
func (r *AuthRepository) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	return r.post(ctx, "auth.register", "/auth/register", req)
}

func (r *AuthRepository) post(ctx context.Context, operation, path string, body interface{}) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	err := r.api.Do(ctx, apiclient.Request{
		Operation: operation,
		Method:    http.MethodPost,
		Path:      path,
		Body:      body,
		Anonymous: true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
