package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academic-tracker/internal/models"
	appErrors "github.com/noah-isme/academic-tracker/pkg/errors"
	"github.com/noah-isme/academic-tracker/pkg/response"
)

// RequireRoles lets the request through only for the listed roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "Acceso denegado"))
			return
		}
		c.Next()
	}
}

// RequireStaff admits admin, profesor and secretaria.
func RequireStaff() gin.HandlerFunc {
	return RequireRoles(models.RoleAdmin, models.RoleProfessor, models.RoleSecretary)
}
