package pricing

import "github.com/venditio/crm-api/internal/domain"

// CostBreakdown is the computed cost structure of a cost sheet.
type CostBreakdown struct {
	TotalProductCost   float64
	TotalManpowerCost  float64
	TotalChargesCost   float64
	AdminOverheadValue float64
	TotalProjectCost   float64
	NetMarginValue     float64
	NetMarginPercent   float64
}

// ComputeCostBreakdown aggregates a cost sheet into project cost and margin.
// Admin overhead is a percentage of the product plus manpower cost. A zero
// revenue yields a zero margin percent rather than a division by zero.
func ComputeCostBreakdown(cs *domain.CostSheet) CostBreakdown {
	var b CostBreakdown

	for _, p := range cs.Products {
		b.TotalProductCost += float64(p.Qty) * p.OEMPrice
	}
	for _, m := range cs.Manpower {
		b.TotalManpowerCost += m.Year1Cost + m.Year2Cost + m.Year3Cost
	}
	for _, c := range cs.Charges {
		b.TotalChargesCost += c.Amount
	}

	b.AdminOverheadValue = (b.TotalProductCost + b.TotalManpowerCost) * cs.AdminOverheadPercent / 100

	b.TotalProjectCost = b.TotalProductCost + b.TotalManpowerCost + b.TotalChargesCost +
		cs.FreightCost + cs.InstallationCost + cs.GSTCost + b.AdminOverheadValue +
		cs.FinanceCost + cs.InsuranceCost + cs.GemCost + cs.MiscCost

	b.NetMarginValue = cs.Revenue - b.TotalProjectCost
	if cs.Revenue != 0 {
		b.NetMarginPercent = b.NetMarginValue / cs.Revenue * 100
	}

	return b
}
