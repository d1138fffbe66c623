// Package policy implements role- and ownership-based access decisions as
// pure predicates over an explicit (actor, action, resource) triple.
package policy

import (
	"net/http"

	"kritika/internal/models"
)

// Input carries everything a rule may inspect. Actor is nil for anonymous
// requests. AuthorID is the owning user of the resource under decision, zero
// when the resource has no owner.
type Input struct {
	Actor    *models.User
	Method   string
	AuthorID uint
}

// Rule is a single capability predicate. Rules compose with And/Or; a request
// is allowed iff the resource's rule evaluates true (default deny).
type Rule func(Input) bool

// ReadOnly allows safe methods only.
func ReadOnly(in Input) bool {
	switch in.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func IsAdmin(in Input) bool {
	return in.Actor != nil && in.Actor.IsAdmin()
}

func IsModerator(in Input) bool {
	return in.Actor != nil && in.Actor.IsModerator()
}

func IsUser(in Input) bool {
	return in.Actor != nil && in.Actor.IsUser()
}

// IsSuperuser mirrors the operator flag; it is equivalent to IsAdmin for
// every resource rule below.
func IsSuperuser(in Input) bool {
	return in.Actor != nil && in.Actor.Superuser
}

// IsAuthor allows safe methods for anyone and mutation for the resource owner.
func IsAuthor(in Input) bool {
	if ReadOnly(in) {
		return true
	}
	return in.Actor != nil && in.AuthorID == in.Actor.ID
}

// And succeeds when every rule succeeds.
func And(rules ...Rule) Rule {
	return func(in Input) bool {
		for _, rule := range rules {
			if !rule(in) {
				return false
			}
		}
		return true
	}
}

// Or succeeds when any rule succeeds.
func Or(rules ...Rule) Rule {
	return func(in Input) bool {
		for _, rule := range rules {
			if rule(in) {
				return true
			}
		}
		return false
	}
}

// Per-resource rules.
var (
	// Users: the accounts collection is for admins only.
	Users = Or(IsAdmin, IsSuperuser)

	// Catalog: titles, genres and categories are world-readable, admin-writable.
	Catalog = Or(ReadOnly, IsAdmin, IsSuperuser)

	// Contributions: reviews and comments are world-readable; authors mutate
	// their own, moderators and admins mutate anything.
	Contributions = Or(And(IsUser, IsAuthor), IsModerator, IsAdmin, ReadOnly)
)

// Check evaluates rule against in and translates a denial into the matching
// application error: unauthorized for anonymous actors, forbidden otherwise.
func Check(rule Rule, in Input) error {
	if rule(in) {
		return nil
	}
	if in.Actor == nil {
		return models.NewUnauthorizedError("Authentication required")
	}
	return models.NewForbiddenError("You do not have permission to perform this action")
}
