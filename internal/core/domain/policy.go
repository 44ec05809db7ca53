package domain

import "net/http"

// Resource identifies the surface an authorization decision is made for.
type Resource int

const (
	ResourceTaxonomy Resource = iota // titles, genres, categories
	ResourceReview
	ResourceComment
	ResourceUsers // user administration
	ResourceSelf  // the caller's own profile
)

func (r Resource) String() string {
	switch r {
	case ResourceTaxonomy:
		return "taxonomy"
	case ResourceReview:
		return "review"
	case ResourceComment:
		return "comment"
	case ResourceUsers:
		return "users"
	case ResourceSelf:
		return "self"
	}
	return "unknown"
}

// Decision is the outcome of Decide.
type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

// IsSafe reports whether verb only reads state.
func IsSafe(verb string) bool {
	switch verb {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// Decide is the single authorization rule set of the API. It is pure: the
// caller supplies the role carried by the credential, whether the caller
// authored the target resource, and the HTTP verb.
//
// Creating a review or comment passes isOwner=true since the caller becomes
// the author.
func Decide(role Role, isOwner bool, verb string, res Resource) Decision {
	switch res {
	case ResourceUsers:
		return Decision(role.IsAdmin())
	case ResourceSelf:
		return Decision(role != RoleAnonymous)
	}

	if IsSafe(verb) {
		return Allow
	}
	if role == RoleAnonymous {
		return Deny
	}

	switch res {
	case ResourceTaxonomy:
		return Decision(role.IsAdmin())
	case ResourceReview, ResourceComment:
		return Decision(isOwner || role.IsModerator() || role.IsAdmin())
	}
	return Deny
}

// Authorize turns a Deny into ErrAuthorizationDenied.
func Authorize(p Principal, isOwner bool, verb string, res Resource) error {
	if Decide(p.Role, isOwner, verb, res) == Deny {
		return ErrAuthorizationDenied
	}
	return nil
}
