// Package pricing holds the pure GST and margin arithmetic for quotations and
// cost sheets. Nothing here touches the database; callers persist results.
package pricing

import "github.com/venditio/crm-api/internal/domain"

// GSTRates are the valid Indian GST slabs.
var GSTRates = []float64{0, 5, 12, 18, 28}

// ValidGSTRate reports whether rate is one of the allowed slabs.
func ValidGSTRate(rate float64) bool {
	for _, r := range GSTRates {
		if rate == r {
			return true
		}
	}
	return false
}

// LineItemTotals computes the pre-tax base, GST amount and line total for a
// quotation item. No rounding is applied; presentation layers round.
func LineItemTotals(qty int, unitPrice, gstRate float64) (base, gst, total float64) {
	base = float64(qty) * unitPrice
	gst = base * gstRate / 100
	return base, gst, base + gst
}

// SurchargeTotals computes GST and total for a flat surcharge such as freight
// or installation.
func SurchargeTotals(charge, gstRate float64) (gst, total float64) {
	gst = charge * gstRate / 100
	return gst, charge + gst
}

// MarginAdjustedUnitPrice applies the salesperson margin to a vendor unit
// price. A non-positive margin value leaves the price unchanged.
func MarginAdjustedUnitPrice(vendorPrice float64, marginType domain.MarginType, marginValue float64) float64 {
	if marginValue <= 0 {
		return vendorPrice
	}
	switch marginType {
	case domain.MarginPercentage:
		return vendorPrice + vendorPrice*marginValue/100
	case domain.MarginAmount:
		return vendorPrice + marginValue
	}
	return vendorPrice
}

// ItemTotal returns the margin-adjusted, GST-inclusive total of one item.
func ItemTotal(item domain.QuotationItem, marginType domain.MarginType, marginValue float64) float64 {
	price := MarginAdjustedUnitPrice(item.UnitPrice, marginType, marginValue)
	_, _, total := LineItemTotals(item.Qty, price, item.GSTRate)
	return total
}

// GrandTotal sums the margin-adjusted item totals and both surcharges. With a
// zero margin this equals the stored quotation amount.
func GrandTotal(q *domain.Quotation) float64 {
	var sum float64
	for _, item := range q.Items {
		sum += ItemTotal(item, q.MarginType, q.MarginValue)
	}
	_, freight := SurchargeTotals(q.FreightCharge, q.FreightGSTRate)
	_, installation := SurchargeTotals(q.InstallationCharge, q.InstallationGSTRate)
	return sum + freight + installation
}
