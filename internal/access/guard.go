package access

import (
	"receipt-portal/internal/models"
)

// DenyReason explains why a decision denied access.
type DenyReason string

const (
	DenyNotOwner DenyReason = "not_owner"
)

// Decision is the outcome of an ownership check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Authorize decides whether an identity may view a record. Admins see
// everything; a recipient only sees records whose recipient email matches
// their own identity, case-insensitively and ignoring surrounding whitespace.
// A record with no recipient email never matches a non-admin identity.
// Pure decision function, no side effects.
func Authorize(identity string, role models.Role, record *models.PaymentRecord) Decision {
	if role == models.RoleAdmin {
		return Decision{Allowed: true}
	}

	owner := models.NormalizeEmail(record.RecipientEmail)
	if owner == "" {
		return Decision{Allowed: false, Reason: DenyNotOwner}
	}

	if owner == models.NormalizeEmail(identity) {
		return Decision{Allowed: true}
	}
	return Decision{Allowed: false, Reason: DenyNotOwner}
}
