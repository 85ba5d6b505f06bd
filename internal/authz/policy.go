// Package authz implements capability checks for post mutations.
//
// The check is a plain function of (actor, resource, capability) with no
// knowledge of the request lifecycle, so it can be exercised from handlers,
// services and tests alike. Read-path visibility is deliberately not handled
// here: non-visible posts are masked as not-found by the service layer so
// their existence never leaks through a 403.
package authz

import (
	"chronicle/internal/models"
)

// Capability names an action an actor may hold on a post.
type Capability string

const (
	CapabilityUpdate Capability = "update"
	CapabilityDelete Capability = "delete"
)

// Can reports whether the acting user holds the capability on the post.
// Both update and delete are granted to the owner only; ownership never
// changes after creation.
func Can(actorID uint, post *models.Post, capability Capability) bool {
	if post == nil {
		return false
	}
	switch capability {
	case CapabilityUpdate, CapabilityDelete:
		return post.UserID == actorID
	default:
		return false
	}
}
