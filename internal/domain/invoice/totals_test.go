package invoice

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func item(description, qty, rate string) LineItem {
	return LineItem{
		ID:          NewItemID(),
		Description: description,
		Quantity:    decimal.RequireFromString(qty),
		Rate:        decimal.RequireFromString(rate),
	}
}

func TestLineItem_Amount(t *testing.T) {
	tests := []struct {
		name string
		qty  string
		rate string
		want string
	}{
		{name: "whole numbers", qty: "2", rate: "500", want: "1000.00"},
		{name: "rounds half away from zero", qty: "1", rate: "1.005", want: "1.01"},
		{name: "rounds down below half", qty: "3", rate: "0.333", want: "1.00"},
		{name: "fractional quantity", qty: "1.5", rate: "19.99", want: "29.99"},
		{name: "negative rate is kept", qty: "2", rate: "-10", want: "-20.00"},
		{name: "zero quantity", qty: "0", rate: "99", want: "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			li := item("row", tt.qty, tt.rate)
			assert.Equal(t, tt.want, li.Amount().StringFixed(2))
		})
	}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name         string
		items        []LineItem
		taxRate      string
		wantSubtotal string
		wantTax      string
		wantTotal    string
	}{
		{
			name:         "empty list is all zero",
			taxRate:      "10",
			wantSubtotal: "0.00",
			wantTax:      "0.00",
			wantTotal:    "0.00",
		},
		{
			name:         "single item with tax",
			items:        []LineItem{item("Design", "2", "500")},
			taxRate:      "10",
			wantSubtotal: "1000.00",
			wantTax:      "100.00",
			wantTotal:    "1100.00",
		},
		{
			name: "sample preview invoice",
			items: []LineItem{
				item("Web Development Services", "1", "2500"),
				item("UI/UX Design", "2", "750"),
				item("Consultation Hours", "5", "150"),
			},
			taxRate:      "8.5",
			wantSubtotal: "4750.00",
			wantTax:      "403.75",
			wantTotal:    "5153.75",
		},
		{
			name:         "no tax",
			items:        []LineItem{item("a", "3", "3.33")},
			taxRate:      "0",
			wantSubtotal: "9.99",
			wantTax:      "0.00",
			wantTotal:    "9.99",
		},
		{
			name:         "tax rate above one hundred is not clamped",
			items:        []LineItem{item("a", "1", "10")},
			taxRate:      "150",
			wantSubtotal: "10.00",
			wantTax:      "15.00",
			wantTotal:    "25.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.items, decimal.RequireFromString(tt.taxRate))
			assert.Equal(t, tt.wantSubtotal, got.Subtotal.StringFixed(2))
			assert.Equal(t, tt.wantTax, got.TaxAmount.StringFixed(2))
			assert.Equal(t, tt.wantTotal, got.Total.StringFixed(2))
			assert.True(t, got.Total.Equal(got.Subtotal.Add(got.TaxAmount)))
		})
	}
}

func TestCompute_SubtotalIsSumOfAmounts(t *testing.T) {
	items := []LineItem{
		item("a", "1.333", "3"),
		item("b", "7", "0.015"),
		item("c", "2", "2.675"),
	}
	sum := decimal.Zero
	for _, li := range items {
		sum = sum.Add(li.Amount())
	}
	got := Compute(items, decimal.NewFromInt(7))
	assert.True(t, sum.Equal(got.Subtotal), "subtotal %s != %s", got.Subtotal, sum)
}
