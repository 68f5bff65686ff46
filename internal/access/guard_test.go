package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"receipt-portal/internal/models"
)

func TestAuthorizeOwner(t *testing.T) {
	record := &models.PaymentRecord{ReceiptID: "R1", RecipientEmail: "alice@example.com"}

	assert.True(t, Authorize("alice@example.com", models.RoleRecipient, record).Allowed)

	// Matching is case-insensitive and whitespace-tolerant on both sides
	assert.True(t, Authorize("  ALICE@EXAMPLE.COM ", models.RoleRecipient, record).Allowed)

	spaced := &models.PaymentRecord{ReceiptID: "R1", RecipientEmail: " Alice@Example.Com "}
	assert.True(t, Authorize("alice@example.com", models.RoleRecipient, spaced).Allowed)
}

func TestAuthorizeNotOwner(t *testing.T) {
	record := &models.PaymentRecord{ReceiptID: "R1", RecipientEmail: "alice@example.com"}

	d := Authorize("bob@example.com", models.RoleRecipient, record)
	assert.False(t, d.Allowed)
	assert.Equal(t, DenyNotOwner, d.Reason)
}

func TestAuthorizeAdminBypass(t *testing.T) {
	record := &models.PaymentRecord{ReceiptID: "R1", RecipientEmail: "alice@example.com"}
	assert.True(t, Authorize("admin@example.com", models.RoleAdmin, record).Allowed)

	// Admins see records with no recipient as well
	orphan := &models.PaymentRecord{ReceiptID: "R2"}
	assert.True(t, Authorize("admin@example.com", models.RoleAdmin, orphan).Allowed)
}

func TestAuthorizeEmptyOwnerNeverMatches(t *testing.T) {
	orphan := &models.PaymentRecord{ReceiptID: "R2", RecipientEmail: "   "}

	// An empty identity must not match an empty owner field
	assert.False(t, Authorize("", models.RoleRecipient, orphan).Allowed)
	assert.False(t, Authorize("alice@example.com", models.RoleRecipient, orphan).Allowed)
}
