package devserver

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/academic-tracker/internal/service"
	appErrors "github.com/noah-isme/academic-tracker/pkg/errors"
)

const tokenIssuer = "academic-tracker-devserver"

// tokenManager issues and verifies HS256 access tokens.
type tokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func (m *tokenManager) issue(a *account) (string, error) {
	now := m.now()
	claims := service.SessionClaims{
		Cedula: a.Cedula,
		Email:  a.Email,
		Role:   a.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// VerifyToken implements middleware.TokenVerifier.
func (m *tokenManager) VerifyToken(raw string) (*service.SessionClaims, error) {
	claims := &service.SessionClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(m.now),
	)
	_, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		msg := "Token inválido"
		if errors.Is(err, jwt.ErrTokenExpired) {
			msg = "Token expirado"
		}
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, msg)
	}
	return claims, nil
}
