// Package permission holds the authorization policy as pure decision
// functions over (actor, resource).
//
// An anonymous actor is represented by a nil *model.User. Every function is
// side-effect free; the service layer calls them before mutating anything
// and translates a false result into apperror.Unauthorized (nil actor) or
// apperror.Forbidden (authenticated but insufficient).
//
// Reads are always allowed for every resource class, so there is no
// CanRead function — the absence of a check is the policy.
package permission

import "github.com/sakif/reviewhub/internal/model"

// CanWriteCatalog reports whether the actor may create, update, or delete
// categories, genres, and titles. Admin only.
func CanWriteCatalog(actor *model.User) bool {
	return actor.IsAdmin()
}

// CanWriteOwned reports whether the actor may modify or delete a review or
// comment owned by authorID. Allowed for the author themselves, moderators,
// and admins.
func CanWriteOwned(actor *model.User, authorID string) bool {
	if actor == nil {
		return false
	}
	return actor.ID == authorID || actor.IsModerator() || actor.IsAdmin()
}

// CanManageUsers reports whether the actor may use the admin user-management
// endpoints (list, create, retrieve, update, delete arbitrary users,
// including role assignment). Admin only.
func CanManageUsers(actor *model.User) bool {
	return actor.IsAdmin()
}

// CanChangeRole reports whether the actor may alter a role field. Used by
// the self-service profile update: non-admins have the role field ignored.
func CanChangeRole(actor *model.User) bool {
	return actor.IsAdmin()
}
