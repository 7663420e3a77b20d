package auth

import "github.com/google/uuid"

// Decision is the outcome of an ownership check.
type Decision int

const (
	Denied Decision = iota
	Allowed
)

func (d Decision) String() string {
	if d == Allowed {
		return "allowed"
	}
	return "denied"
}

// Authorize allows a mutation only when the caller owns the resource.
// Callers load the resource and handle not-found before asking.
func Authorize(resourceOwnerID, callerID uuid.UUID) Decision {
	if resourceOwnerID == uuid.Nil || callerID == uuid.Nil {
		return Denied
	}
	if resourceOwnerID != callerID {
		return Denied
	}
	return Allowed
}
