package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/venditio/crm-api/internal/domain"
	"github.com/venditio/crm-api/internal/pricing"
)

// QuotationRenderer renders approved quotations as customer-facing PDFs.
// Prices on the document are selling prices, with the configured margin
// already applied on top of the stored vendor prices.
type QuotationRenderer struct {
	companyName    string
	companyAddress string
}

// NewQuotationRenderer creates a renderer with the letterhead details
func NewQuotationRenderer(companyName, companyAddress string) *QuotationRenderer {
	return &QuotationRenderer{
		companyName:    companyName,
		companyAddress: companyAddress,
	}
}

// Render writes the quotation PDF to w. The quotation's Deal must be loaded.
func (r *QuotationRenderer) Render(q *domain.Quotation, w io.Writer) error {
	if q.Deal == nil {
		return fmt.Errorf("quotation %s has no deal loaded", q.ID)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetMargins(10, 10, 10)

	r.renderHeader(pdf, q)
	r.renderCustomer(pdf, q)
	subtotal, gstTotal := r.renderItems(pdf, q)
	r.renderSummary(pdf, q, subtotal, gstTotal)
	r.renderFooter(pdf)

	return pdf.Output(w)
}

// FileName returns the suggested download name for the quotation
func (r *QuotationRenderer) FileName(q *domain.Quotation) string {
	if q.Deal != nil {
		return fmt.Sprintf("quotation_%s.pdf", q.Deal.DealNumber)
	}
	return fmt.Sprintf("quotation_%s.pdf", q.ID)
}

func (r *QuotationRenderer) renderHeader(pdf *gofpdf.Fpdf, q *domain.Quotation) {
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(190, 10, "QUOTATION")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(190, 6, r.companyName)
	pdf.Ln(6)
	if r.companyAddress != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(190, 5, r.companyAddress, "", "L", false)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(95, 6, fmt.Sprintf("Reference: %s", q.Deal.DealNumber))
	if q.ValidUntil != nil {
		pdf.Cell(95, 6, fmt.Sprintf("Valid Until: %s", q.ValidUntil.Format("02-Jan-2006")))
	}
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(95, 6, fmt.Sprintf("Date: %s", q.UpdatedAt.Format("02-Jan-2006")))
	pdf.Ln(10)
}

func (r *QuotationRenderer) renderCustomer(pdf *gofpdf.Fpdf, q *domain.Quotation) {
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(190, 8, "To")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	lines := q.Deal.CustomerName
	if q.Deal.ContactName != "" {
		lines += "\n" + q.Deal.ContactName
	}
	if q.Deal.ContactEmail != "" {
		lines += "\n" + q.Deal.ContactEmail
	}
	if q.Deal.ContactPhone != "" {
		lines += "\n" + q.Deal.ContactPhone
	}
	pdf.MultiCell(190, 5, lines, "", "L", false)
	pdf.Ln(6)
}

func (r *QuotationRenderer) renderItems(pdf *gofpdf.Fpdf, q *domain.Quotation) (subtotal, gstTotal float64) {
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(70, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(15, 8, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 8, "Unit Price", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 8, "GST (%)", "1", 0, "C", true, 0, "")
	pdf.CellFormat(55, 8, "Total", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for i := range q.Items {
		item := &q.Items[i]
		sellingPrice := pricing.MarginAdjustedUnitPrice(item.UnitPrice, q.MarginType, q.MarginValue)
		base, gst, total := pricing.LineItemTotals(item.Qty, sellingPrice, item.GSTRate)
		subtotal += base
		gstTotal += gst

		name := item.ProductName
		if item.Brand != "" || item.Model != "" {
			name = fmt.Sprintf("%s (%s %s)", item.ProductName, item.Brand, item.Model)
		}

		pdf.CellFormat(70, 8, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(15, 8, fmt.Sprintf("%d", item.Qty), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", sellingPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%.0f", item.GSTRate), "1", 0, "C", false, 0, "")
		pdf.CellFormat(55, 8, fmt.Sprintf("%.2f", total), "1", 1, "R", false, 0, "")
	}

	if q.FreightCharge > 0 {
		gst, total := pricing.SurchargeTotals(q.FreightCharge, q.FreightGSTRate)
		subtotal += q.FreightCharge
		gstTotal += gst
		r.renderSurchargeRow(pdf, "Freight", q.FreightCharge, q.FreightGSTRate, total)
	}
	if q.InstallationCharge > 0 {
		gst, total := pricing.SurchargeTotals(q.InstallationCharge, q.InstallationGSTRate)
		subtotal += q.InstallationCharge
		gstTotal += gst
		r.renderSurchargeRow(pdf, "Installation", q.InstallationCharge, q.InstallationGSTRate, total)
	}

	pdf.Ln(5)
	return subtotal, gstTotal
}

func (r *QuotationRenderer) renderSurchargeRow(pdf *gofpdf.Fpdf, label string, charge, gstRate, total float64) {
	pdf.CellFormat(70, 8, label, "1", 0, "L", false, 0, "")
	pdf.CellFormat(15, 8, "-", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", charge), "1", 0, "R", false, 0, "")
	pdf.CellFormat(20, 8, fmt.Sprintf("%.0f", gstRate), "1", 0, "C", false, 0, "")
	pdf.CellFormat(55, 8, fmt.Sprintf("%.2f", total), "1", 1, "R", false, 0, "")
}

func (r *QuotationRenderer) renderSummary(pdf *gofpdf.Fpdf, q *domain.Quotation, subtotal, gstTotal float64) {
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(135, 8, "Subtotal")
	pdf.CellFormat(55, 8, fmt.Sprintf("%.2f", subtotal), "1", 1, "R", false, 0, "")
	pdf.Cell(135, 8, "GST Total")
	pdf.CellFormat(55, 8, fmt.Sprintf("%.2f", gstTotal), "1", 1, "R", false, 0, "")
	pdf.Cell(135, 8, "Grand Total")
	pdf.CellFormat(55, 8, fmt.Sprintf("%.2f", subtotal+gstTotal), "1", 1, "R", false, 0, "")

	if q.RemarksForSalesperson != "" {
		pdf.Ln(8)
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(190, 8, "Remarks:")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(190, 5, q.RemarksForSalesperson, "", "L", false)
	}
}

func (r *QuotationRenderer) renderFooter(pdf *gofpdf.Fpdf) {
	pdf.SetY(-20)
	pdf.SetFont("Arial", "I", 8)
	pdf.Cell(190, 6, "This is a computer-generated quotation. No signature required.")
	pdf.Ln(5)
	pdf.Cell(190, 6, "Generated on: "+time.Now().Format("2006-01-02 15:04:05"))
}
