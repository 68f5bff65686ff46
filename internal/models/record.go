package models

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// PaymentStatus is derived from the due amount, never stored authoritatively.
type PaymentStatus string

const (
	StatusPaid PaymentStatus = "PAID"
	StatusDue  PaymentStatus = "DUE"
)

// Role identifies the privilege level of an authenticated identity.
type Role string

const (
	RoleRecipient Role = "recipient"
	RoleAdmin     Role = "admin"
)

// PaymentRecord represents one payment obligation stored in the remote sheet.
// ReceiptID is assigned at creation and immutable afterwards.
type PaymentRecord struct {
	ReceiptID      string  `json:"receipt_id"`
	RecipientEmail string  `json:"recipient_email"`
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Date           string  `json:"date"`
	TotalAmount    float64 `json:"total_amount"`
	DueAmount      float64 `json:"due_amount"`
	Fingerprint    string  `json:"fingerprint,omitempty"`
}

// AmountPaid is always derived; the stored column is never trusted.
func (r *PaymentRecord) AmountPaid() float64 {
	return Round2(r.TotalAmount - r.DueAmount)
}

// Status is PAID iff nothing remains due.
func (r *PaymentRecord) Status() PaymentStatus {
	if r.DueAmount == 0 {
		return StatusPaid
	}
	return StatusDue
}

// receiptIDRegex matches alphanumeric characters and hyphens only
var receiptIDRegex = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validate checks a record before any network call is issued.
func (r *PaymentRecord) Validate() error {
	if r.ReceiptID == "" {
		return fmt.Errorf("receipt_id is required")
	}
	if !receiptIDRegex.MatchString(r.ReceiptID) {
		return fmt.Errorf("receipt_id must contain only alphanumeric characters and hyphens")
	}
	if r.RecipientEmail != "" && !ValidEmail(r.RecipientEmail) {
		return fmt.Errorf("recipient_email is not a valid email address")
	}
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.TotalAmount < 0 {
		return fmt.Errorf("total_amount must be non-negative")
	}
	if r.DueAmount < 0 {
		return fmt.Errorf("due_amount must be non-negative")
	}
	if r.DueAmount > r.TotalAmount {
		return fmt.Errorf("due_amount cannot exceed total_amount")
	}
	return nil
}

// NormalizeEmail lower-cases and trims an identity for comparison.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether s looks like an email address after trimming.
func ValidEmail(s string) bool {
	return emailRegex.MatchString(strings.TrimSpace(s))
}

// Round2 rounds a money amount to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
