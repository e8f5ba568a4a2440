package auth

import "errors"

// ErrForbidden indicates the acting principal does not own the target
// resource. Surfaced as 403, never folded into a 404.
var ErrForbidden = errors.New("forbidden")

// Authorize permits a mutation only when the acting principal owns the
// resource.
func Authorize(principalID, ownerID string) error {
	if principalID == "" || principalID != ownerID {
		return ErrForbidden
	}
	return nil
}
