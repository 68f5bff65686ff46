package integrity

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"receipt-portal/internal/models"
)

// ErrViolation reports a fingerprint mismatch. Callers must surface it as a
// tamper warning, never fold it into a not-found result.
var ErrViolation = errors.New("integrity violation: fingerprint mismatch")

// Signer computes and checks record fingerprints.
type Signer struct {
	verbose bool
}

func NewSigner(verbose bool) *Signer {
	return &Signer{verbose: verbose}
}

// Canonicalize serializes the signed fields of a record deterministically:
// field names sorted, amounts fixed to two decimals, email normalized.
// The fingerprint field itself is excluded. Field ordering in the struct or
// on the wire never changes the output.
func Canonicalize(r *models.PaymentRecord) []byte {
	fields := map[string]string{
		"date":            r.Date,
		"description":     r.Description,
		"due_amount":      fmt.Sprintf("%.2f", r.DueAmount),
		"name":            r.Name,
		"receipt_id":      r.ReceiptID,
		"recipient_email": models.NormalizeEmail(r.RecipientEmail),
		"total_amount":    fmt.Sprintf("%.2f", r.TotalAmount),
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		// json.Marshal on strings cannot fail
		kj, _ := json.Marshal(k)
		vj, _ := json.Marshal(fields[k])
		b.Write(kj)
		b.WriteByte(':')
		b.Write(vj)
	}
	b.WriteByte('}')
	return []byte(b.String())
}

// Sign returns the hex-encoded SHA-256 digest of the canonical record.
func (s *Signer) Sign(r *models.PaymentRecord) string {
	canonical := Canonicalize(r)
	sum := sha256.Sum256(canonical)
	fingerprint := hex.EncodeToString(sum[:])

	if s.verbose {
		log.Printf("[INTEGRITY] Signed receipt %s: %s", r.ReceiptID, fingerprint[:16]+"...")
	}

	return fingerprint
}

// Verify recomputes the fingerprint and compares it to the one stored on the
// record. A missing or mismatched fingerprint returns ErrViolation.
func (s *Signer) Verify(r *models.PaymentRecord) error {
	if r.Fingerprint == "" {
		if s.verbose {
			log.Printf("[INTEGRITY] Receipt %s has no fingerprint", r.ReceiptID)
		}
		return fmt.Errorf("receipt %s: %w", r.ReceiptID, ErrViolation)
	}

	expected := s.Sign(r)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(r.Fingerprint)) != 1 {
		if s.verbose {
			log.Printf("[INTEGRITY] Fingerprint mismatch for receipt %s: stored %s, computed %s",
				r.ReceiptID, r.Fingerprint, expected)
		}
		return fmt.Errorf("receipt %s: %w", r.ReceiptID, ErrViolation)
	}

	return nil
}
