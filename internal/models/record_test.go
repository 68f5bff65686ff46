package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivedStatusAndAmountPaid(t *testing.T) {
	partial := PaymentRecord{TotalAmount: 2000, DueAmount: 500}
	assert.Equal(t, StatusDue, partial.Status())
	assert.Equal(t, 1500.0, partial.AmountPaid())

	settled := PaymentRecord{TotalAmount: 2000, DueAmount: 0}
	assert.Equal(t, StatusPaid, settled.Status())
	assert.Equal(t, 2000.0, settled.AmountPaid())

	unpaid := PaymentRecord{TotalAmount: 100, DueAmount: 100}
	assert.Equal(t, StatusDue, unpaid.Status())
	assert.Equal(t, 0.0, unpaid.AmountPaid())
}

func TestValidate(t *testing.T) {
	valid := PaymentRecord{
		ReceiptID:      "R202601150001",
		RecipientEmail: "alice@example.com",
		Name:           "Alice Smith",
		TotalAmount:    100,
		DueAmount:      25,
	}
	assert.NoError(t, valid.Validate())

	cases := []struct {
		name   string
		mutate func(r *PaymentRecord)
	}{
		{"missing receipt id", func(r *PaymentRecord) { r.ReceiptID = "" }},
		{"receipt id with spaces", func(r *PaymentRecord) { r.ReceiptID = "R 123" }},
		{"receipt id with slash", func(r *PaymentRecord) { r.ReceiptID = "R/123" }},
		{"bad email", func(r *PaymentRecord) { r.RecipientEmail = "not-an-email" }},
		{"missing name", func(r *PaymentRecord) { r.Name = "" }},
		{"negative total", func(r *PaymentRecord) { r.TotalAmount = -1 }},
		{"negative due", func(r *PaymentRecord) { r.DueAmount = -1 }},
		{"due exceeds total", func(r *PaymentRecord) { r.DueAmount = 101 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := valid
			tc.mutate(&r)
			assert.Error(t, r.Validate())
		})
	}
}

func TestValidateAllowsHyphenatedIDAndEmptyEmail(t *testing.T) {
	r := PaymentRecord{ReceiptID: "R-2026-0001", Name: "Alice", TotalAmount: 10, DueAmount: 10}
	assert.NoError(t, r.Validate())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "alice@example.com", NormalizeEmail("  Alice@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("alice@example.com"))
	assert.True(t, ValidEmail(" alice@example.com "))
	assert.False(t, ValidEmail("alice"))
	assert.False(t, ValidEmail("alice@example"))
	assert.False(t, ValidEmail("@example.com"))
	assert.False(t, ValidEmail(""))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 10.55, Round2(10.554))
	assert.Equal(t, 10.56, Round2(10.556))
	assert.Equal(t, 0.1, Round2(0.1+1e-12))
	assert.Equal(t, -2.5, Round2(-2.5))
}
