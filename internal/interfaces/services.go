package interfaces

import (
	"context"
	"errors"

	"receipt-portal/internal/models"
	"receipt-portal/internal/sheet"
)

// Store error taxonomy shared by all RecordStore implementations.
var (
	// ErrNotFound means the requested identifier is absent from the store.
	ErrNotFound = errors.New("record not found")
	// ErrStoreUnavailable wraps transport failures reaching the store.
	// There is no automatic retry; the caller re-issues the action.
	ErrStoreUnavailable = errors.New("record store unavailable")
)

// RecordStore is the single boundary to the external spreadsheet service.
// Implementations translate these calls onto the one-endpoint webhook
// contract (or an in-memory stand-in for standalone mode).
type RecordStore interface {
	// FetchAll returns every payment record in the store.
	FetchAll(ctx context.Context) ([]models.PaymentRecord, error)

	// FetchByRecipient returns the records owned by the given email.
	FetchByRecipient(ctx context.Context, email string) ([]models.PaymentRecord, error)

	// UpsertPayment creates or updates a record keyed on its receipt id and
	// reports which of the two happened.
	UpsertPayment(ctx context.Context, record *models.PaymentRecord) (sheet.Outcome, error)

	// DeletePayment removes a record; ErrNotFound if the id is unknown.
	DeletePayment(ctx context.Context, receiptID string) error

	// Recipients returns all recipient accounts, credential hashes included.
	Recipients(ctx context.Context) ([]models.Recipient, error)

	// CreateRecipient registers a recipient account.
	CreateRecipient(ctx context.Context, recipient *models.Recipient) error

	// DeleteRecipient removes a recipient account; ErrNotFound if unknown.
	DeleteRecipient(ctx context.Context, email string) error
}
