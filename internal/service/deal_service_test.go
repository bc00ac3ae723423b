package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venditio/crm-api/internal/domain"
	"github.com/venditio/crm-api/internal/repository"
	"gorm.io/gorm"
)

func newDealService(db *gorm.DB) *DealService {
	numberSvc := NewNumberSequenceService(repository.NewNumberSequenceRepository(db), testLogger())
	return NewDealService(repository.NewDealRepository(db), numberSvc, testLogger())
}

func TestDealCreate(t *testing.T) {
	db := setupTestDB(t)
	svc := newDealService(db)

	dto, err := svc.Create(salesContext("sales-1"), &domain.CreateDealRequest{
		CustomerName:    "Acme Industries",
		ContactEmail:    "buyer@acme.example",
		ExpectedRevenue: 250000,
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(dto.DealNumber, "OPP-"), "deal number %q", dto.DealNumber)
	assert.Equal(t, domain.StageNew, dto.Stage)
	assert.Equal(t, "sales-1", dto.OwnerID)
	assert.Nil(t, dto.QuotationStatus)
}

func TestDealStageTransitions(t *testing.T) {
	db := setupTestDB(t)
	svc := newDealService(db)
	deal := createTestDeal(t, db, "sales-1")
	ctx := salesContext("sales-1")

	move := func(stage domain.DealStage) error {
		_, err := svc.Update(ctx, deal.ID, &domain.UpdateDealRequest{Stage: &stage})
		return err
	}

	// new -> won skips the pipeline and must fail.
	assert.ErrorIs(t, move(domain.StageWon), ErrConflict)

	require.NoError(t, move(domain.StageQualified))
	require.NoError(t, move(domain.StageProposition))
	require.NoError(t, move(domain.StageWon))

	// Won is terminal.
	assert.ErrorIs(t, move(domain.StageLost), ErrConflict)
}

func TestDealUpdateOwnership(t *testing.T) {
	db := setupTestDB(t)
	svc := newDealService(db)
	deal := createTestDeal(t, db, "sales-1")

	name := "Updated Corp"
	_, err := svc.Update(salesContext("sales-2"), deal.ID, &domain.UpdateDealRequest{CustomerName: &name})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	dto, err := svc.Update(adminContext(), deal.ID, &domain.UpdateDealRequest{CustomerName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Updated Corp", dto.CustomerName)
}

func TestDealDeleteAdminOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := newDealService(db)
	deal := createTestDeal(t, db, "sales-1")

	err := svc.Delete(salesContext("sales-1"), deal.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	require.NoError(t, svc.Delete(adminContext(), deal.ID))

	_, err = svc.GetByID(adminContext(), deal.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDealListScoping(t *testing.T) {
	db := setupTestDB(t)
	svc := newDealService(db)

	createTestDeal(t, db, "sales-1")
	createTestDeal(t, db, "sales-1")
	createTestDeal(t, db, "sales-2")

	mine, total, err := svc.List(salesContext("sales-1"), 1, 20, nil, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, mine, 2)

	all, total, err := svc.List(adminContext(), 1, 20, nil, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)
}

func TestDealPipelineStats(t *testing.T) {
	db := setupTestDB(t)
	svc := newDealService(db)

	d1 := createTestDeal(t, db, "sales-1")
	createTestDeal(t, db, "sales-1")
	require.NoError(t, db.Model(&domain.Deal{}).
		Where("id = ?", d1.ID).
		Updates(map[string]interface{}{"stage": domain.StageQualified, "expected_revenue": 100000}).Error)

	stats, err := svc.PipelineStats(salesContext("sales-1"))
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalDeals)

	byStage := make(map[domain.DealStage]domain.PipelineStageStatsDTO)
	for _, st := range stats.Stages {
		byStage[st.Stage] = st
	}
	assert.Equal(t, int64(1), byStage[domain.StageQualified].Count)
	assert.InDelta(t, 100000.0, byStage[domain.StageQualified].TotalRevenue, 0.001)
}
