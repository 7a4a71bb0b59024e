// Package authz holds the pure access-control predicates. They take the
// acting identity and answer allow/deny; existence checks and the actual
// reads and writes belong to the callers.
package authz

import "projecthub/internal/model"

// CanMutateUser reports whether the actor may update or delete the user
// record identified by targetID: self or admin.
func CanMutateUser(actor model.Actor, targetID string) bool {
	return actor.ID == targetID || actor.IsAdmin()
}

// CanMutateProject reports whether the actor may update or delete a project
// owned by ownerID: owner or admin.
func CanMutateProject(actor model.Actor, ownerID string) bool {
	return actor.ID == ownerID || actor.IsAdmin()
}

// RoleAllowed reports whether the role appears in the allowed set. It backs
// the role-gated operations (project creation, user listing and deletion).
func RoleAllowed(role string, allowed ...string) bool {
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}
