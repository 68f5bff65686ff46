package sheetstub

import (
	"log"
	"sync"
	"time"

	"receipt-portal/internal/models"
)

// MemoryStore backs the stub with thread-safe in-memory state mirroring the
// spreadsheet's two tabs: payment rows and recipient accounts.
type MemoryStore struct {
	mu         sync.RWMutex
	payments   map[string]models.PaymentRecord // key: receipt id
	recipients map[string]models.Recipient     // key: normalized email
	verbose    bool
}

func NewMemoryStore(verbose bool) *MemoryStore {
	return &MemoryStore{
		payments:   make(map[string]models.PaymentRecord),
		recipients: make(map[string]models.Recipient),
		verbose:    verbose,
	}
}

// UpsertPayment stores a record keyed on receipt id and reports whether it
// was created or updated.
func (ms *MemoryStore) UpsertPayment(rec models.PaymentRecord) (created bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	_, exists := ms.payments[rec.ReceiptID]
	ms.payments[rec.ReceiptID] = rec

	if ms.verbose {
		log.Printf("[STUB-STORE] Upserted payment %s (created=%v)", rec.ReceiptID, !exists)
	}
	return !exists
}

func (ms *MemoryStore) DeletePayment(receiptID string) bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.payments[receiptID]; !exists {
		return false
	}
	delete(ms.payments, receiptID)
	return true
}

func (ms *MemoryStore) AllPayments() []models.PaymentRecord {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	out := make([]models.PaymentRecord, 0, len(ms.payments))
	for _, rec := range ms.payments {
		out = append(out, rec)
	}
	return out
}

func (ms *MemoryStore) PaymentsFor(email string) []models.PaymentRecord {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	owner := models.NormalizeEmail(email)
	var out []models.PaymentRecord
	for _, rec := range ms.payments {
		if models.NormalizeEmail(rec.RecipientEmail) == owner {
			out = append(out, rec)
		}
	}
	return out
}

func (ms *MemoryStore) CreateRecipient(rc models.Recipient) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	rc.Email = models.NormalizeEmail(rc.Email)
	if rc.CreatedAt.IsZero() {
		rc.CreatedAt = time.Now()
	}
	ms.recipients[rc.Email] = rc
}

func (ms *MemoryStore) DeleteRecipient(email string) bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	key := models.NormalizeEmail(email)
	if _, exists := ms.recipients[key]; !exists {
		return false
	}
	delete(ms.recipients, key)
	return true
}

func (ms *MemoryStore) AllRecipients() []models.Recipient {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	out := make([]models.Recipient, 0, len(ms.recipients))
	for _, rc := range ms.recipients {
		out = append(out, rc)
	}
	return out
}

// Stats returns row counts for the health endpoint.
func (ms *MemoryStore) Stats() (payments, recipients int) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.payments), len(ms.recipients)
}
