package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/venditio/crm-api/internal/domain"
)

func TestValidGSTRate(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		expected bool
	}{
		{"zero rate", 0, true},
		{"five percent", 5, true},
		{"twelve percent", 12, true},
		{"eighteen percent", 18, true},
		{"twenty eight percent", 28, true},
		{"unlisted rate", 10, false},
		{"negative rate", -5, false},
		{"fractional rate", 17.5, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ValidGSTRate(tc.rate))
		})
	}
}

func TestLineItemTotals(t *testing.T) {
	tests := []struct {
		name      string
		qty       int
		unitPrice float64
		gstRate   float64
		base      float64
		gst       float64
		total     float64
	}{
		{"two units at 18 percent", 2, 50000, 18, 100000, 18000, 118000},
		{"single unit zero gst", 1, 1000, 0, 1000, 0, 1000},
		{"five units at 5 percent", 5, 200, 5, 1000, 50, 1050},
		{"zero quantity", 0, 500, 18, 0, 0, 0},
		{"zero price", 3, 0, 28, 0, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			base, gst, total := LineItemTotals(tc.qty, tc.unitPrice, tc.gstRate)
			assert.InDelta(t, tc.base, base, 0.001)
			assert.InDelta(t, tc.gst, gst, 0.001)
			assert.InDelta(t, tc.total, total, 0.001)
		})
	}
}

func TestSurchargeTotals(t *testing.T) {
	gst, total := SurchargeTotals(1000, 5)
	assert.InDelta(t, 50.0, gst, 0.001)
	assert.InDelta(t, 1050.0, total, 0.001)

	gst, total = SurchargeTotals(0, 18)
	assert.Zero(t, gst)
	assert.Zero(t, total)
}

func TestMarginAdjustedUnitPrice(t *testing.T) {
	tests := []struct {
		name        string
		vendorPrice float64
		marginType  domain.MarginType
		marginValue float64
		expected    float64
	}{
		{"percentage margin", 100, domain.MarginPercentage, 20, 120},
		{"flat amount margin", 100, domain.MarginAmount, 20, 120},
		{"zero margin is a no-op", 100, domain.MarginPercentage, 0, 100},
		{"negative margin is a no-op", 100, domain.MarginAmount, -10, 100},
		{"unset margin type is a no-op", 100, "", 20, 100},
		{"percentage on large price", 50000, domain.MarginPercentage, 10, 55000},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MarginAdjustedUnitPrice(tc.vendorPrice, tc.marginType, tc.marginValue)
			assert.InDelta(t, tc.expected, got, 0.001)
		})
	}
}

func TestGrandTotal(t *testing.T) {
	q := &domain.Quotation{
		Items: []domain.QuotationItem{
			{Qty: 2, UnitPrice: 50000, GSTRate: 18},
		},
		FreightCharge:  1000,
		FreightGSTRate: 5,
	}

	// 2 x 50000 = 100000, +18% GST = 118000; freight 1000 +5% = 1050.
	assert.InDelta(t, 119050.0, GrandTotal(q), 0.001)
}

func TestGrandTotalWithMargin(t *testing.T) {
	q := &domain.Quotation{
		Items: []domain.QuotationItem{
			{Qty: 1, UnitPrice: 1000, GSTRate: 18},
		},
		MarginType:  domain.MarginPercentage,
		MarginValue: 10,
	}

	// Selling price 1100, +18% GST = 1298.
	assert.InDelta(t, 1298.0, GrandTotal(q), 0.001)

	// With the margin cleared the stored amount comes straight back.
	q.MarginValue = 0
	assert.InDelta(t, 1180.0, GrandTotal(q), 0.001)
}
