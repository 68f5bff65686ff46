package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receipt-portal/internal/models"
)

func TestRecordRowRoundTrip(t *testing.T) {
	r := models.PaymentRecord{
		ReceiptID:      "R202601150001",
		RecipientEmail: "alice@example.com",
		Name:           "Alice Smith",
		Description:    "January invoice",
		Date:           "2026-01-15",
		TotalAmount:    2000,
		DueAmount:      500,
		Fingerprint:    "abc123",
	}

	row := RecordToRow(&r)
	require.Len(t, row, rowWidth)
	assert.Equal(t, "DUE", row[colStatus])
	assert.Equal(t, "1500.00", row[colAmountPaid])

	got, err := RowToRecord(row)
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestRowToRecordIgnoresStoredDerivedCells(t *testing.T) {
	// A tampered sheet claiming PAID with a bogus amount-paid cell
	row := []any{"R1", "Alice", "2000.00", "500.00", "2026-01-15", "", "alice@example.com", "PAID", "9999.00", "fp"}

	got, err := RowToRecord(row)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDue, got.Status())
	assert.Equal(t, 1500.0, got.AmountPaid())
}

func TestRowToRecordNumericCells(t *testing.T) {
	// JSON number cells arrive as float64
	row := []any{"R1", "Alice", 2000.0, 500.5, "2026-01-15", nil, "alice@example.com"}

	got, err := RowToRecord(row)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, got.TotalAmount)
	assert.Equal(t, 500.5, got.DueAmount)
	assert.Equal(t, "", got.Description)
	assert.Equal(t, "", got.Fingerprint)
}

func TestRowToRecordErrors(t *testing.T) {
	_, err := RowToRecord([]any{"R1", "Alice", "10.00"})
	assert.Error(t, err, "short row")

	_, err = RowToRecord([]any{"", "Alice", "10.00", "0.00", "", "", "alice@example.com"})
	assert.Error(t, err, "missing receipt id")

	_, err = RowToRecord([]any{"R1", "Alice", "ten dollars", "0.00", "", "", "alice@example.com"})
	assert.Error(t, err, "unparseable amount")
}

func TestParseAmount(t *testing.T) {
	cases := map[string]float64{
		"1500":      1500,
		"1500.50":   1500.5,
		"¥1,500.00": 1500,
		"$2,000":    2000,
		"€99.99":    99.99,
		"":          0,
	}
	for in, want := range cases {
		got, err := ParseAmount(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	_, err := ParseAmount("-50")
	assert.Error(t, err)
	_, err = ParseAmount("1.2.3")
	assert.Error(t, err)
}

func TestParseResponseJSON(t *testing.T) {
	body := []byte(`{"status":"success","message":"Receipt CREATED","rows":[["R1","Alice","10.00","0.00","","","alice@example.com"]]}`)

	env, outcome := ParseResponse(body)
	assert.True(t, env.Succeeded())
	assert.Equal(t, OutcomeCreated, outcome)
	require.Len(t, env.Rows, 1)
}

func TestParseResponseJSONErrorStatus(t *testing.T) {
	env, outcome := ParseResponse([]byte(`{"status":"error","error":"sheet quota exceeded"}`))
	assert.False(t, env.Succeeded())
	assert.Equal(t, OutcomeError, outcome)
	assert.Equal(t, "sheet quota exceeded", env.ErrorText())
}

func TestParseResponseLegacyText(t *testing.T) {
	cases := map[string]Outcome{
		"Row UPDATED successfully": OutcomeUpdated,
		"record CREATED":           OutcomeCreated,
		"DELETED row 4":            OutcomeDeleted,
		"receipt NOT_FOUND":        OutcomeNotFound,
		"something went wrong":     OutcomeError,
	}
	for text, want := range cases {
		env, outcome := ParseResponse([]byte(text))
		assert.Equal(t, want, outcome, "body %q", text)
		switch want {
		case OutcomeCreated, OutcomeUpdated, OutcomeDeleted:
			assert.True(t, env.Succeeded(), "body %q", text)
		default:
			assert.False(t, env.Succeeded(), "body %q", text)
		}
	}
}

func TestParseResponsePlainSuccess(t *testing.T) {
	_, outcome := ParseResponse([]byte(`{"status":"success","message":"ok"}`))
	assert.Equal(t, OutcomeOK, outcome)
}
