// Package authz centralizes every role decision the marketplace makes.
// Each predicate is a pure function of actor and target so the rules stay
// auditable in one place instead of being scattered across handlers.
package authz

import "bookshare/pkg/domain"

// CanDeleteAd allows the owner, faculty acting on a student's ad, or an admin.
func CanDeleteAd(actor domain.User, owner domain.User) bool {
	if actor.ID == owner.ID {
		return true
	}
	if actor.Role == domain.RoleFaculty && owner.Role == domain.RoleStudent {
		return true
	}
	return actor.Role == domain.RoleAdmin
}

// CanAcceptTransaction allows only the ad's owner.
func CanAcceptTransaction(actorID, adOwnerID string) bool {
	return actorID != "" && actorID == adOwnerID
}

// CanPostContent allows students and faculty to publish blogs and interview posts.
func CanPostContent(actor domain.User) bool {
	return actor.Role == domain.RoleStudent || actor.Role == domain.RoleFaculty
}

// CanEditContent allows the author, faculty, or an admin.
func CanEditContent(actor domain.User, authorID string) bool {
	if actor.ID == authorID {
		return true
	}
	return actor.Role == domain.RoleFaculty || actor.Role == domain.RoleAdmin
}

// CanDeleteContent allows faculty or an admin, never the author alone.
func CanDeleteContent(actor domain.User) bool {
	return actor.Role == domain.RoleFaculty || actor.Role == domain.RoleAdmin
}

// CanUploadMaterial allows faculty only.
func CanUploadMaterial(actor domain.User) bool {
	return actor.Role == domain.RoleFaculty
}

// CanVerifyMaterial allows admins only.
func CanVerifyMaterial(actor domain.User) bool {
	return actor.Role == domain.RoleAdmin
}

// CanResolveReport allows admins only.
func CanResolveReport(actor domain.User) bool {
	return actor.Role == domain.RoleAdmin
}

// CanListUsers allows admins only.
func CanListUsers(actor domain.User) bool {
	return actor.Role == domain.RoleAdmin
}

// CanDeleteUser allows an admin to delete any non-admin account.
// Admins can never delete other admins.
func CanDeleteUser(actor domain.User, target domain.User) bool {
	return actor.Role == domain.RoleAdmin && target.Role != domain.RoleAdmin
}
