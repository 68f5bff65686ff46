package mock

import (
	"context"
	"log"
	"sync"
	"time"

	"receipt-portal/internal/interfaces"
	"receipt-portal/internal/models"
	"receipt-portal/internal/sheet"
)

// MockRecordStore is an in-memory RecordStore for standalone mode and tests.
type MockRecordStore struct {
	mu         sync.RWMutex
	records    map[string]models.PaymentRecord // key: receipt id
	recipients map[string]models.Recipient     // key: normalized email
	verbose    bool
}

func NewMockRecordStore(verbose bool) *MockRecordStore {
	return &MockRecordStore{
		records:    make(map[string]models.PaymentRecord),
		recipients: make(map[string]models.Recipient),
		verbose:    verbose,
	}
}

func (m *MockRecordStore) FetchAll(ctx context.Context) ([]models.PaymentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]models.PaymentRecord, 0, len(m.records))
	for _, rec := range m.records {
		records = append(records, rec)
	}

	if m.verbose {
		log.Printf("[MOCK] Record Store: fetched %d records", len(records))
	}
	return records, nil
}

func (m *MockRecordStore) FetchByRecipient(ctx context.Context, email string) ([]models.PaymentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	owner := models.NormalizeEmail(email)
	var records []models.PaymentRecord
	for _, rec := range m.records {
		if models.NormalizeEmail(rec.RecipientEmail) == owner {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (m *MockRecordStore) UpsertPayment(ctx context.Context, record *models.PaymentRecord) (sheet.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	outcome := sheet.OutcomeCreated
	if _, exists := m.records[record.ReceiptID]; exists {
		outcome = sheet.OutcomeUpdated
	}
	m.records[record.ReceiptID] = *record

	if m.verbose {
		log.Printf("[MOCK] Record Store: %s receipt %s", outcome, record.ReceiptID)
	}
	return outcome, nil
}

func (m *MockRecordStore) DeletePayment(ctx context.Context, receiptID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.records[receiptID]; !exists {
		return interfaces.ErrNotFound
	}
	delete(m.records, receiptID)

	if m.verbose {
		log.Printf("[MOCK] Record Store: deleted receipt %s", receiptID)
	}
	return nil
}

func (m *MockRecordStore) Recipients(ctx context.Context) ([]models.Recipient, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	recipients := make([]models.Recipient, 0, len(m.recipients))
	for _, rc := range m.recipients {
		recipients = append(recipients, rc)
	}
	return recipients, nil
}

func (m *MockRecordStore) CreateRecipient(ctx context.Context, recipient *models.Recipient) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rc := *recipient
	rc.Email = models.NormalizeEmail(rc.Email)
	if rc.CreatedAt.IsZero() {
		rc.CreatedAt = time.Now()
	}
	m.recipients[rc.Email] = rc

	if m.verbose {
		log.Printf("[MOCK] Record Store: created recipient %s", rc.Email)
	}
	return nil
}

func (m *MockRecordStore) DeleteRecipient(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := models.NormalizeEmail(email)
	if _, exists := m.recipients[key]; !exists {
		return interfaces.ErrNotFound
	}
	delete(m.recipients, key)
	return nil
}
