// Package access derives capability decisions from an actor's role
// set. All checks are pure functions over immutable snapshots; a
// missing or empty role set always yields the most restrictive answer.
package access

import "github.com/spec-kit/defect-track/internal/domain"

// Actor is the capability snapshot built once per request from the
// verified principal.
type Actor struct {
	ID    string
	Roles domain.Roles
}

// CanView reports whether the actor may read a defect. Admins,
// managers, directors and customers see every defect; engineers only
// the one assigned to them. The bare "user" role grants nothing here.
func CanView(actor Actor, defect *domain.Defect) bool {
	if defect == nil {
		return false
	}
	if actor.Roles.HasAny(domain.RoleAdmin, domain.RoleManager, domain.RoleDirector, domain.RoleCustomer) {
		return true
	}
	if actor.Roles.Has(domain.RoleEngineer) {
		return defect.AssignedTo != nil && *defect.AssignedTo == actor.ID
	}
	return false
}

// CanEdit reports whether the actor may mutate a defect. Directors and
// customers can view but never edit.
func CanEdit(actor Actor, defect *domain.Defect) bool {
	if defect == nil {
		return false
	}
	if actor.Roles.HasAny(domain.RoleAdmin, domain.RoleManager) {
		return true
	}
	if actor.Roles.Has(domain.RoleEngineer) {
		return defect.AssignedTo != nil && *defect.AssignedTo == actor.ID
	}
	return false
}

// CanCreate reports whether the actor may open new defects.
func CanCreate(actor Actor) bool {
	return actor.Roles.HasAny(domain.RoleAdmin, domain.RoleManager, domain.RoleEngineer)
}

// CanAssign reports whether the actor may name an engineer as
// assignee.
func CanAssign(actor Actor) bool {
	return actor.Roles.HasAny(domain.RoleAdmin, domain.RoleManager)
}

// CanComment reports whether the actor may write comments. Any role
// beyond the bare "user" role qualifies.
func CanComment(actor Actor) bool {
	return actor.Roles.HasAny(domain.RoleAdmin, domain.RoleManager, domain.RoleEngineer, domain.RoleDirector, domain.RoleCustomer)
}

// CanManagePhotos reports whether the actor may upload photos.
func CanManagePhotos(actor Actor) bool {
	return actor.Roles.HasAny(domain.RoleAdmin, domain.RoleEngineer)
}
