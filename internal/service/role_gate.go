package service

import "github.com/noah-isme/academic-tracker/internal/models"

// Capabilities lists the write affordances shown to a user. They only shape the
// client experience; the remote API re-checks every write on its own.
type Capabilities struct {
	IsAdmin        bool
	IsStaff        bool
	CanCreateStage bool
	CanDeleteStage bool
	CanCreatePost  bool
	CanEditPost    bool
	CanDeletePost  bool
}

// CapabilitiesFor maps an identity's role to its capabilities.
func CapabilitiesFor(identity models.Identity) Capabilities {
	isAdmin := identity.Role == models.RoleAdmin
	return Capabilities{
		IsAdmin:        isAdmin,
		IsStaff:        identity.Role.IsStaff(),
		CanCreateStage: isAdmin,
		CanDeleteStage: isAdmin,
		CanCreatePost:  isAdmin,
		CanEditPost:    isAdmin,
		CanDeletePost:  isAdmin,
	}
}
