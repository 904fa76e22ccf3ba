// Package permissions decides whether an actor may perform an action on a
// resource. Policies are composed from small predicates over the actor,
// the HTTP method, and the resource owner, so they can be tested without
// any request machinery. A nil actor means the request is anonymous.
package permissions

import (
	"errors"

	"github.com/google/uuid"
	"github.com/okozyrev/ratemark/internal/models"
)

var (
	// ErrAuthRequired is returned when an anonymous actor is denied.
	ErrAuthRequired = errors.New("authentication required")
	// ErrForbidden is returned when an authenticated actor is denied.
	ErrForbidden = errors.New("forbidden")
)

// Predicate is one permission rule. ownerID is uuid.Nil for resources
// without an author.
type Predicate func(actor *models.User, method string, ownerID uuid.UUID) bool

// SafeMethod allows read-only requests for anyone.
func SafeMethod(_ *models.User, method string, _ uuid.UUID) bool {
	return method == "GET" || method == "HEAD" || method == "OPTIONS"
}

func IsAuthenticated(actor *models.User, _ string, _ uuid.UUID) bool {
	return actor != nil
}

func IsAdmin(actor *models.User, _ string, _ uuid.UUID) bool {
	return actor != nil && actor.IsAdmin()
}

func IsModerator(actor *models.User, _ string, _ uuid.UUID) bool {
	return actor != nil && actor.IsModerator()
}

func IsOwner(actor *models.User, _ string, ownerID uuid.UUID) bool {
	return actor != nil && ownerID != uuid.Nil && actor.ID == ownerID
}

// AnyOf allows the action if any predicate does.
func AnyOf(preds ...Predicate) Predicate {
	return func(actor *models.User, method string, ownerID uuid.UUID) bool {
		for _, p := range preds {
			if p(actor, method, ownerID) {
				return true
			}
		}
		return false
	}
}

// AdminOrReadOnly governs dictionary and title management: anyone may
// read, only admins may write.
var AdminOrReadOnly = AnyOf(SafeMethod, IsAdmin)

// AuthorOrStaffOrReadOnly governs review and comment mutation.
var AuthorOrStaffOrReadOnly = AnyOf(SafeMethod, IsOwner, IsModerator, IsAdmin)

// AdminOnly governs the user collection.
var AdminOnly Predicate = IsAdmin

// Check evaluates pred and maps a denial onto the right rejection:
// anonymous actors get ErrAuthRequired, authenticated ones ErrForbidden.
func Check(pred Predicate, actor *models.User, method string, ownerID uuid.UUID) error {
	if pred(actor, method, ownerID) {
		return nil
	}
	if actor == nil {
		return ErrAuthRequired
	}
	return ErrForbidden
}
