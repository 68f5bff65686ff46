// Package sheet implements the wire codec for the remote spreadsheet
// webhook. Positional rows and loosely structured response bodies exist only
// here; the rest of the portal works with typed records.
package sheet

import (
	"fmt"
	"regexp"
	"strconv"

	"receipt-portal/internal/models"
)

// Column layout of a payment row in the sheet. Status and amount-paid are
// stored for human readers of the spreadsheet but recomputed on every read.
const (
	colReceiptID = iota
	colName
	colTotalAmount
	colDueAmount
	colDate
	colDescription
	colRecipientEmail
	colStatus
	colAmountPaid
	colFingerprint
	rowWidth
)

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// RecordToRow serializes a record into the sheet's positional layout.
func RecordToRow(r *models.PaymentRecord) []any {
	return []any{
		r.ReceiptID,
		r.Name,
		fmt.Sprintf("%.2f", r.TotalAmount),
		fmt.Sprintf("%.2f", r.DueAmount),
		r.Date,
		r.Description,
		models.NormalizeEmail(r.RecipientEmail),
		string(r.Status()),
		fmt.Sprintf("%.2f", r.AmountPaid()),
		r.Fingerprint,
	}
}

// RowToRecord parses a positional row into a typed record. Sheet cells may
// arrive as numbers or as display strings with currency symbols, so amounts
// are parsed defensively. Stored status/amount-paid cells are ignored.
func RowToRecord(row []any) (models.PaymentRecord, error) {
	if len(row) < colRecipientEmail+1 {
		return models.PaymentRecord{}, fmt.Errorf("row has %d cells, want at least %d", len(row), colRecipientEmail+1)
	}

	total, err := ParseAmount(cell(row, colTotalAmount))
	if err != nil {
		return models.PaymentRecord{}, fmt.Errorf("total amount: %w", err)
	}
	due, err := ParseAmount(cell(row, colDueAmount))
	if err != nil {
		return models.PaymentRecord{}, fmt.Errorf("due amount: %w", err)
	}

	rec := models.PaymentRecord{
		ReceiptID:      cell(row, colReceiptID),
		Name:           cell(row, colName),
		TotalAmount:    total,
		DueAmount:      due,
		Date:           cell(row, colDate),
		Description:    cell(row, colDescription),
		RecipientEmail: models.NormalizeEmail(cell(row, colRecipientEmail)),
		Fingerprint:    cell(row, colFingerprint),
	}

	if rec.ReceiptID == "" {
		return models.PaymentRecord{}, fmt.Errorf("row has no receipt id")
	}
	return rec, nil
}

// cell renders one row cell as a string; missing cells are empty.
func cell(row []any, idx int) string {
	if idx >= len(row) || row[idx] == nil {
		return ""
	}
	switch v := row[idx].(type) {
	case string:
		return v
	case float64:
		// JSON numbers decode as float64
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ParseAmount strips currency symbols and separators before parsing, the
// sheet renders money as display text like "¥1,500.00".
func ParseAmount(s string) (float64, error) {
	cleaned := nonNumeric.ReplaceAllString(s, "")
	if cleaned == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable amount %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative amount %q", s)
	}
	return models.Round2(v), nil
}
