package integrity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receipt-portal/internal/models"
)

func sampleRecord() models.PaymentRecord {
	return models.PaymentRecord{
		ReceiptID:      "R202601150001",
		RecipientEmail: "alice@example.com",
		Name:           "Alice Smith",
		Description:    "January invoice",
		Date:           "2026-01-15",
		TotalAmount:    2000,
		DueAmount:      500,
	}
}

func TestSignDeterministic(t *testing.T) {
	signer := NewSigner(false)
	r := sampleRecord()

	first := signer.Sign(&r)
	second := signer.Sign(&r)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64) // hex SHA-256
}

func TestSignIgnoresStoredFingerprint(t *testing.T) {
	signer := NewSigner(false)

	r := sampleRecord()
	plain := signer.Sign(&r)

	r.Fingerprint = "deadbeef"
	assert.Equal(t, plain, signer.Sign(&r))
}

func TestSignChangesWithEveryField(t *testing.T) {
	signer := NewSigner(false)
	base := signer.Sign(ptr(sampleRecord()))

	mutations := map[string]func(r *models.PaymentRecord){
		"receipt_id":      func(r *models.PaymentRecord) { r.ReceiptID = "R202601150002" },
		"recipient_email": func(r *models.PaymentRecord) { r.RecipientEmail = "bob@example.com" },
		"name":            func(r *models.PaymentRecord) { r.Name = "Bob Jones" },
		"description":     func(r *models.PaymentRecord) { r.Description = "February invoice" },
		"date":            func(r *models.PaymentRecord) { r.Date = "2026-02-15" },
		"total_amount":    func(r *models.PaymentRecord) { r.TotalAmount = 2000.01 },
		"due_amount":      func(r *models.PaymentRecord) { r.DueAmount = 499.99 },
	}

	for field, mutate := range mutations {
		r := sampleRecord()
		mutate(&r)
		assert.NotEqual(t, base, signer.Sign(&r), "changing %s must change the fingerprint", field)
	}
}

func TestSignNormalizesEmail(t *testing.T) {
	signer := NewSigner(false)

	r := sampleRecord()
	base := signer.Sign(&r)

	r.RecipientEmail = "  ALICE@Example.COM "
	assert.Equal(t, base, signer.Sign(&r))
}

func TestVerify(t *testing.T) {
	signer := NewSigner(false)

	r := sampleRecord()
	r.Fingerprint = signer.Sign(&r)
	require.NoError(t, signer.Verify(&r))

	// Any signed field mutation after signing must fail verification
	r.DueAmount = 0
	err := signer.Verify(&r)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrViolation)
}

func TestVerifyMissingFingerprint(t *testing.T) {
	signer := NewSigner(false)

	r := sampleRecord()
	err := signer.Verify(&r)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrViolation)
}

func TestCanonicalizeSortedKeys(t *testing.T) {
	r := sampleRecord()
	canonical := string(Canonicalize(&r))

	expected := `{"date":"2026-01-15","description":"January invoice","due_amount":"500.00","name":"Alice Smith","receipt_id":"R202601150001","recipient_email":"alice@example.com","total_amount":"2000.00"}`
	assert.Equal(t, expected, canonical)
}

func ptr(r models.PaymentRecord) *models.PaymentRecord {
	return &r
}
