package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/academic-tracker/internal/models"
)

func TestCapabilitiesFor(t *testing.T) {
	admin := CapabilitiesFor(models.Identity{Role: models.RoleAdmin})
	assert.True(t, admin.IsAdmin)
	assert.True(t, admin.IsStaff)
	assert.True(t, admin.CanCreateStage)
	assert.True(t, admin.CanDeletePost)

	for _, role := range []models.UserRole{models.RoleProfessor, models.RoleSecretary} {
		caps := CapabilitiesFor(models.Identity{Role: role})
		assert.Equal(t, Capabilities{IsStaff: true}, caps, string(role))
	}

	assert.Equal(t, Capabilities{}, CapabilitiesFor(models.Identity{Role: models.RoleStudent}))
	assert.Equal(t, Capabilities{}, CapabilitiesFor(models.Identity{Role: "visitante"}))
}
