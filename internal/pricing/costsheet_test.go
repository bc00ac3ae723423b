package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/venditio/crm-api/internal/domain"
)

func TestComputeCostBreakdown(t *testing.T) {
	cs := &domain.CostSheet{
		Revenue:              1000000,
		AdminOverheadPercent: 2,
		FreightCost:          10000,
		InstallationCost:     20000,
		GSTCost:              5000,
		FinanceCost:          3000,
		InsuranceCost:        2000,
		GemCost:              1000,
		MiscCost:             4000,
		Products: []domain.CostSheetProduct{
			{Qty: 2, OEMPrice: 100000},
			{Qty: 1, OEMPrice: 50000},
		},
		Manpower: []domain.CostSheetManpower{
			{Year1Cost: 100000, Year2Cost: 50000, Year3Cost: 25000},
		},
		Charges: []domain.CostSheetCharge{
			{Amount: 15000},
			{Amount: 5000},
		},
	}

	b := ComputeCostBreakdown(cs)

	assert.InDelta(t, 250000.0, b.TotalProductCost, 0.001)
	assert.InDelta(t, 175000.0, b.TotalManpowerCost, 0.001)
	assert.InDelta(t, 20000.0, b.TotalChargesCost, 0.001)

	// 2% of product + manpower cost (425000), not of revenue.
	assert.InDelta(t, 8500.0, b.AdminOverheadValue, 0.001)

	// 250000 + 175000 + 20000 + 10000 + 20000 + 5000 + 8500 + 3000 + 2000 + 1000 + 4000
	assert.InDelta(t, 498500.0, b.TotalProjectCost, 0.001)
	assert.InDelta(t, 501500.0, b.NetMarginValue, 0.001)
	assert.InDelta(t, 50.15, b.NetMarginPercent, 0.001)
}

func TestComputeCostBreakdownZeroRevenue(t *testing.T) {
	cs := &domain.CostSheet{
		Products: []domain.CostSheetProduct{{Qty: 1, OEMPrice: 100}},
	}

	b := ComputeCostBreakdown(cs)

	assert.InDelta(t, 100.0, b.TotalProjectCost, 0.001)
	assert.InDelta(t, -100.0, b.NetMarginValue, 0.001)
	assert.Zero(t, b.NetMarginPercent, "zero revenue must not divide by zero")
}

func TestComputeCostBreakdownEmptySheet(t *testing.T) {
	b := ComputeCostBreakdown(&domain.CostSheet{})
	assert.Zero(t, b.TotalProjectCost)
	assert.Zero(t, b.NetMarginValue)
	assert.Zero(t, b.NetMarginPercent)
}
