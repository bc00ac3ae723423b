package pdf

import (
	"bytes"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venditio/crm-api/internal/domain"
)

func testQuotation() *domain.Quotation {
	return &domain.Quotation{
		Status: domain.QuotationApproved,
		Deal: &domain.Deal{
			DealNumber:   "OPP-250829-0001",
			CustomerName: "Acme Industries",
			ContactName:  "Ravi Kumar",
		},
		Items: []domain.QuotationItem{
			{ProductName: "Server Rack", Qty: 2, UnitPrice: 50000, GSTRate: 18},
		},
		FreightCharge:       1000,
		FreightGSTRate:      5,
		InstallationCharge:  2000,
		InstallationGSTRate: 18,
	}
}

func TestRenderProducesPDF(t *testing.T) {
	r := NewQuotationRenderer("Venditio", "Bengaluru")

	var buf bytes.Buffer
	require.NoError(t, r.Render(testQuotation(), &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")), "output should be a PDF document")
}

func TestRenderRequiresDeal(t *testing.T) {
	r := NewQuotationRenderer("Venditio", "")

	q := testQuotation()
	q.Deal = nil
	assert.Error(t, r.Render(q, &bytes.Buffer{}))
}

func TestRenderItemsTotalsIncludeSurcharges(t *testing.T) {
	r := NewQuotationRenderer("Venditio", "")
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.AddPage()

	subtotal, gstTotal := r.renderItems(doc, testQuotation())

	// Items 100000 plus the raw freight and installation charges.
	assert.InDelta(t, 103000.0, subtotal, 0.001)
	// 18000 GST on items, 50 on freight, 360 on installation.
	assert.InDelta(t, 18410.0, gstTotal, 0.001)
}

func TestFileName(t *testing.T) {
	r := NewQuotationRenderer("Venditio", "")

	q := testQuotation()
	assert.Equal(t, "quotation_OPP-250829-0001.pdf", r.FileName(q))

	q.Deal = nil
	assert.Contains(t, r.FileName(q), "quotation_")
}
