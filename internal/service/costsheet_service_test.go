package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venditio/crm-api/internal/domain"
	"github.com/venditio/crm-api/internal/repository"
	"gorm.io/gorm"
)

func newCostSheetService(db *gorm.DB) *CostSheetService {
	return NewCostSheetService(
		repository.NewCostSheetRepository(db),
		repository.NewDealRepository(db),
		testLogger(),
	)
}

func TestCostSheetFirstSaveCreatesVersionOne(t *testing.T) {
	db := setupTestDB(t)
	svc := newCostSheetService(db)
	deal := createTestDeal(t, db, "sales-1")

	dto, err := svc.Save(salesContext("sales-1"), deal.ID, &domain.SaveCostSheetRequest{
		Revenue: 500000,
		Products: []domain.CostSheetProductInput{
			{Name: "Core router", Qty: 2, OEMPrice: 100000},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, dto.Version)
	assert.True(t, dto.IsLatest)
	assert.Equal(t, "sales-1", dto.UpdatedBy)
	assert.InDelta(t, 200000.0, dto.TotalProductCost, 0.001)
	assert.InDelta(t, 300000.0, dto.NetMarginValue, 0.001)
}

func TestCostSheetSaveInPlaceKeepsVersion(t *testing.T) {
	db := setupTestDB(t)
	svc := newCostSheetService(db)
	deal := createTestDeal(t, db, "sales-1")
	ctx := salesContext("sales-1")

	first, err := svc.Save(ctx, deal.ID, &domain.SaveCostSheetRequest{Revenue: 100000})
	require.NoError(t, err)

	second, err := svc.Save(ctx, deal.ID, &domain.SaveCostSheetRequest{
		Revenue: 120000,
		Charges: []domain.CostSheetChargeInput{{Label: "Training", Amount: 5000}},
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "in-place save keeps the sheet identity")
	assert.Equal(t, 1, second.Version)
	assert.InDelta(t, 120000.0, second.Revenue, 0.001)
	require.Len(t, second.Charges, 1)

	versions, err := svc.ListVersions(ctx, deal.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestCostSheetNewVersionFreezesOld(t *testing.T) {
	db := setupTestDB(t)
	svc := newCostSheetService(db)
	deal := createTestDeal(t, db, "sales-1")
	ctx := salesContext("sales-1")

	_, err := svc.Save(ctx, deal.ID, &domain.SaveCostSheetRequest{Revenue: 100000})
	require.NoError(t, err)

	v2, err := svc.Save(ctx, deal.ID, &domain.SaveCostSheetRequest{
		Revenue:          150000,
		CreateNewVersion: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, v2.Version)
	assert.True(t, v2.IsLatest)

	versions, err := svc.ListVersions(ctx, deal.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)

	latest, err := svc.GetLatest(ctx, deal.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Version)
	assert.InDelta(t, 150000.0, latest.Revenue, 0.001)

	// Exactly one version carries the latest flag.
	var latestCount int64
	require.NoError(t, db.Model(&domain.CostSheet{}).
		Where("deal_id = ? AND is_latest = ?", deal.ID, true).
		Count(&latestCount).Error)
	assert.Equal(t, int64(1), latestCount)
}

func TestCostSheetOwnershipEnforced(t *testing.T) {
	db := setupTestDB(t)
	svc := newCostSheetService(db)
	deal := createTestDeal(t, db, "sales-1")

	_, err := svc.Save(salesContext("sales-2"), deal.ID, &domain.SaveCostSheetRequest{Revenue: 1})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.GetLatest(salesContext("sales-2"), deal.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// Admins may act on any deal.
	_, err = svc.Save(adminContext(), deal.ID, &domain.SaveCostSheetRequest{Revenue: 1})
	require.NoError(t, err)
}

func TestCostSheetGetLatestMissing(t *testing.T) {
	db := setupTestDB(t)
	svc := newCostSheetService(db)
	deal := createTestDeal(t, db, "sales-1")

	_, err := svc.GetLatest(salesContext("sales-1"), deal.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
