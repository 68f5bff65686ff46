package portal

import (
	"errors"
	"fmt"
)

// Sentinel errors for the portal's error taxonomy. Integrity violations and
// ownership denials are deliberately distinct from not-found: downgrading
// either to "not found" would hide a security-relevant event.
var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("session expired")
	ErrNotOwner         = errors.New("not the owner of this record")
	ErrAdminOnly        = errors.New("admin role required")
)

// ValidationError is a local failure caught before any network call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// LockedError reports an identity inside its lockout window.
type LockedError struct {
	RemainingSeconds int
}

func (e *LockedError) Error() string {
	return fmt.Sprintf("too many failed attempts, locked for %d seconds", e.RemainingSeconds)
}

// InvalidCredentialsError reports a failed login and how many attempts
// remain before lockout.
type InvalidCredentialsError struct {
	AttemptsRemaining int
}

func (e *InvalidCredentialsError) Error() string {
	return fmt.Sprintf("invalid email or password (%d attempts remaining)", e.AttemptsRemaining)
}
