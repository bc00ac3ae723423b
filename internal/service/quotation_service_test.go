package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venditio/crm-api/internal/domain"
	"github.com/venditio/crm-api/internal/repository"
	"gorm.io/gorm"
)

func newQuotationService(db *gorm.DB) *QuotationService {
	return NewQuotationService(
		repository.NewQuotationRepository(db),
		repository.NewDealRepository(db),
		testLogger(),
	)
}

func requestTestQuotation(t *testing.T, svc *QuotationService, deal *domain.Deal) *domain.QuotationDTO {
	t.Helper()

	dto, err := svc.Request(salesContext(deal.OwnerID), &domain.RequestQuotationRequest{
		DealID: deal.ID,
		Items: []domain.QuotationItemInput{
			{ProductName: "Server Rack", Qty: 2, UnitPrice: 50000, GSTRate: 18},
		},
		RemarksForAdmin: "urgent",
	})
	require.NoError(t, err)
	return dto
}

func TestQuotationRequest(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuotationService(db)
	deal := createTestDeal(t, db, "sales-1")

	dto := requestTestQuotation(t, svc, deal)

	assert.Equal(t, domain.QuotationPending, dto.Status)
	assert.Equal(t, "sales-1", dto.RequestedBy)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, 50000.0, dto.Items[0].UnitPrice)
	assert.Equal(t, 50000.0, dto.Items[0].TargetPrice)
	assert.Zero(t, dto.Amount, "totals stay zero until approval")

	// The deal mirror moves to pending in the same transaction.
	var dbDeal domain.Deal
	require.NoError(t, db.First(&dbDeal, "id = ?", deal.ID).Error)
	require.NotNil(t, dbDeal.QuotationStatus)
	assert.Equal(t, domain.QuotationPending, *dbDeal.QuotationStatus)
}

func TestQuotationRequestLegacyFieldAliases(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuotationService(db)
	deal := createTestDeal(t, db, "sales-1")

	dto, err := svc.Request(salesContext("sales-1"), &domain.RequestQuotationRequest{
		DealID: deal.ID,
		Items: []domain.QuotationItemInput{
			{ProductName: "Switch", Quantity: 3, Price: 1200},
		},
	})
	require.NoError(t, err)

	require.Len(t, dto.Items, 1)
	assert.Equal(t, 3, dto.Items[0].Qty)
	assert.Equal(t, 1200.0, dto.Items[0].UnitPrice)
	assert.Equal(t, 1200.0, dto.Items[0].TargetPrice)
}

func TestQuotationApprovePreservesTargetPrice(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuotationService(db)
	deal := createTestDeal(t, db, "sales-1")
	requested := requestTestQuotation(t, svc, deal)

	approved, err := svc.Approve(adminContext(), requested.ID, &domain.ApproveQuotationRequest{
		Items: []domain.QuotationItemInput{
			// Vendor price differs from the salesperson's ask.
			{ProductName: "Server Rack", Brand: "Dell", Qty: 2, UnitPrice: 48000, GSTRate: 18},
		},
		FreightCharge:  1000,
		FreightGSTRate: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.QuotationApproved, approved.Status)
	assert.Equal(t, "admin-1", approved.ApprovedBy)
	require.Len(t, approved.Items, 1)
	assert.Equal(t, 48000.0, approved.Items[0].UnitPrice)
	assert.Equal(t, 50000.0, approved.Items[0].TargetPrice, "original ask survives approval")

	// 2 x 48000 = 96000 +18% = 113280; freight 1000 +5% = 1050.
	assert.InDelta(t, 114330.0, approved.Amount, 0.001)
	assert.InDelta(t, 1050.0, approved.FreightAmount, 0.001)
	assert.False(t, approved.IsRead, "approval resets the read flag")

	var dbDeal domain.Deal
	require.NoError(t, db.First(&dbDeal, "id = ?", deal.ID).Error)
	require.NotNil(t, dbDeal.QuotationStatus)
	assert.Equal(t, domain.QuotationApproved, *dbDeal.QuotationStatus)
}

func TestQuotationApproveRejectsInvalidGSTRate(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuotationService(db)
	deal := createTestDeal(t, db, "sales-1")
	requested := requestTestQuotation(t, svc, deal)

	_, err := svc.Approve(adminContext(), requested.ID, &domain.ApproveQuotationRequest{
		Items: []domain.QuotationItemInput{
			{ProductName: "Server Rack", Qty: 2, UnitPrice: 48000, GSTRate: 15},
		},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestQuotationRequestRejectsInvalidGSTRate(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuotationService(db)
	deal := createTestDeal(t, db, "sales-1")

	badItems := []domain.QuotationItemInput{
		{ProductName: "Server Rack", Qty: 2, UnitPrice: 50000, GSTRate: 15},
	}

	_, err := svc.Request(salesContext("sales-1"), &domain.RequestQuotationRequest{
		DealID: deal.ID,
		Items:  badItems,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	requested := requestTestQuotation(t, svc, deal)
	_, err = svc.Update(salesContext("sales-1"), requested.ID, &domain.UpdateQuotationRequest{
		Items: badItems,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestQuotationStatusTransitions(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuotationService(db)
	deal := createTestDeal(t, db, "sales-1")
	requested := requestTestQuotation(t, svc, deal)

	approveReq := &domain.ApproveQuotationRequest{
		Items: []domain.QuotationItemInput{
			{ProductName: "Server Rack", Qty: 2, UnitPrice: 48000, GSTRate: 18},
		},
	}

	_, err := svc.Approve(adminContext(), requested.ID, approveReq)
	require.NoError(t, err)

	// Approving again must fail.
	_, err = svc.Approve(adminContext(), requested.ID, approveReq)
	assert.ErrorIs(t, err, ErrQuotationAlreadyApproved)

	// An approved quotation can be revoked.
	_, err = svc.Reject(adminContext(), requested.ID, &domain.RejectQuotationRequest{
		RemarksForSalesperson: "pricing revised",
	})
	require.NoError(t, err)

	var dbDeal domain.Deal
	require.NoError(t, db.First(&dbDeal, "id = ?", deal.ID).Error)
	require.NotNil(t, dbDeal.QuotationStatus)
	assert.Equal(t, domain.QuotationRejected, *dbDeal.QuotationStatus)

	// Rejecting again must fail; re-approving is allowed.
	_, err = svc.Reject(adminContext(), requested.ID, &domain.RejectQuotationRequest{})
	assert.ErrorIs(t, err, ErrQuotationAlreadyRejected)

	_, err = svc.Approve(adminContext(), requested.ID, approveReq)
	require.NoError(t, err)
}

func TestQuotationUpdateOnlyWhilePending(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuotationService(db)
	deal := createTestDeal(t, db, "sales-1")
	requested := requestTestQuotation(t, svc, deal)

	updateReq := &domain.UpdateQuotationRequest{
		Items: []domain.QuotationItemInput{
			{ProductName: "Server Rack", Qty: 3, UnitPrice: 51000, GSTRate: 18},
		},
	}

	// Another salesperson may not touch the request.
	_, err := svc.Update(salesContext("sales-2"), requested.ID, updateReq)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	dto, err := svc.Update(salesContext("sales-1"), requested.ID, updateReq)
	require.NoError(t, err)
	require.Len(t, dto.Items, 1)
	assert.Equal(t, 3, dto.Items[0].Qty)

	_, err = svc.Approve(adminContext(), requested.ID, &domain.ApproveQuotationRequest{
		Items: []domain.QuotationItemInput{
			{ProductName: "Server Rack", Qty: 3, UnitPrice: 50000, GSTRate: 18},
		},
	})
	require.NoError(t, err)

	_, err = svc.Update(salesContext("sales-1"), requested.ID, updateReq)
	assert.ErrorIs(t, err, ErrQuotationNotPending)
}

func TestQuotationSetMargin(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuotationService(db)
	deal := createTestDeal(t, db, "sales-1")
	requested := requestTestQuotation(t, svc, deal)

	marginReq := &domain.SetMarginRequest{
		MarginType:  domain.MarginPercentage,
		MarginValue: 10,
	}

	// Margin requires an approved quotation.
	_, err := svc.SetMargin(salesContext("sales-1"), requested.ID, marginReq)
	assert.ErrorIs(t, err, ErrQuotationNotApproved)

	_, err = svc.Approve(adminContext(), requested.ID, &domain.ApproveQuotationRequest{
		Items: []domain.QuotationItemInput{
			{ProductName: "Server Rack", Qty: 2, UnitPrice: 48000, GSTRate: 18},
		},
	})
	require.NoError(t, err)

	dto, err := svc.SetMargin(salesContext("sales-1"), requested.ID, marginReq)
	require.NoError(t, err)
	assert.Equal(t, domain.MarginPercentage, dto.MarginType)
	assert.Equal(t, 10.0, dto.MarginValue)

	// Stored vendor pricing is untouched; the margin only shows in the
	// selling fields.
	require.Len(t, dto.Items, 1)
	assert.Equal(t, 48000.0, dto.Items[0].UnitPrice)
	assert.InDelta(t, 52800.0, dto.Items[0].SellingPrice, 0.001)
}

func TestQuotationGetForRenderRequiresApproval(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuotationService(db)
	deal := createTestDeal(t, db, "sales-1")
	requested := requestTestQuotation(t, svc, deal)

	_, err := svc.GetForRender(salesContext("sales-1"), requested.ID)
	assert.ErrorIs(t, err, ErrQuotationNotApproved)

	_, err = svc.Approve(adminContext(), requested.ID, &domain.ApproveQuotationRequest{
		Items: []domain.QuotationItemInput{
			{ProductName: "Server Rack", Qty: 2, UnitPrice: 48000, GSTRate: 18},
		},
	})
	require.NoError(t, err)

	q, err := svc.GetForRender(salesContext("sales-1"), requested.ID)
	require.NoError(t, err)
	require.NotNil(t, q.Deal)

	_, err = svc.GetForRender(salesContext("sales-2"), requested.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestQuotationListScoping(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuotationService(db)

	dealA := createTestDeal(t, db, "sales-1")
	dealB := createTestDeal(t, db, "sales-2")
	requestTestQuotation(t, svc, dealA)
	requestTestQuotation(t, svc, dealB)

	mine, err := svc.List(salesContext("sales-1"), nil)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.List(adminContext(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := svc.PendingCount(adminContext())
	require.NoError(t, err)
	assert.Equal(t, int64(2), pending.PendingCount)
}

func TestNotificationsAreOwnershipScoped(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuotationService(db)

	dealA := createTestDeal(t, db, "sales-1")
	dealB := createTestDeal(t, db, "sales-2")
	qa := requestTestQuotation(t, svc, dealA)
	qb := requestTestQuotation(t, svc, dealB)

	approveReq := &domain.ApproveQuotationRequest{
		Items: []domain.QuotationItemInput{
			{ProductName: "Server Rack", Qty: 1, UnitPrice: 1000, GSTRate: 18},
		},
	}
	_, err := svc.Approve(adminContext(), qa.ID, approveReq)
	require.NoError(t, err)
	_, err = svc.Approve(adminContext(), qb.ID, approveReq)
	require.NoError(t, err)

	stats, err := svc.NotificationStats(salesContext("sales-1"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.UnreadCount)
	require.Len(t, stats.Quotations, 1)
	assert.Equal(t, qa.ID, stats.Quotations[0].ID)

	// Acknowledging as sales-1 must not touch sales-2's notifications.
	updated, err := svc.MarkRead(salesContext("sales-1"), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	stats, err = svc.NotificationStats(salesContext("sales-1"))
	require.NoError(t, err)
	assert.Zero(t, stats.UnreadCount)

	otherStats, err := svc.NotificationStats(salesContext("sales-2"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), otherStats.UnreadCount)
}

func TestMarkReadByIDList(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuotationService(db)

	dealA := createTestDeal(t, db, "sales-1")
	dealB := createTestDeal(t, db, "sales-1")
	qa := requestTestQuotation(t, svc, dealA)
	qb := requestTestQuotation(t, svc, dealB)

	approveReq := &domain.ApproveQuotationRequest{
		Items: []domain.QuotationItemInput{
			{ProductName: "Server Rack", Qty: 1, UnitPrice: 1000, GSTRate: 18},
		},
	}
	_, err := svc.Approve(adminContext(), qa.ID, approveReq)
	require.NoError(t, err)
	_, err = svc.Approve(adminContext(), qb.ID, approveReq)
	require.NoError(t, err)

	// Acknowledging one quotation leaves the other unread.
	updated, err := svc.MarkRead(salesContext("sales-1"), []uuid.UUID{qa.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	stats, err := svc.NotificationStats(salesContext("sales-1"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.UnreadCount)
	require.Len(t, stats.Quotations, 1)
	assert.Equal(t, qb.ID, stats.Quotations[0].ID)

	// Another user submitting the remaining id updates nothing.
	updated, err = svc.MarkRead(salesContext("sales-2"), []uuid.UUID{qb.ID})
	require.NoError(t, err)
	assert.Zero(t, updated)

	stats, err = svc.NotificationStats(salesContext("sales-1"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.UnreadCount)
}

func TestReconcileDealStatuses(t *testing.T) {
	db := setupTestDB(t)
	svc := newQuotationService(db)

	deal := createTestDeal(t, db, "sales-1")
	requested := requestTestQuotation(t, svc, deal)

	_, err := svc.Approve(adminContext(), requested.ID, &domain.ApproveQuotationRequest{
		Items: []domain.QuotationItemInput{
			{ProductName: "Server Rack", Qty: 1, UnitPrice: 1000, GSTRate: 18},
		},
	})
	require.NoError(t, err)

	// Simulate drift: the mirror claims rejected while the quotation is
	// approved.
	rejected := domain.QuotationRejected
	require.NoError(t, db.Model(&domain.Deal{}).
		Where("id = ?", deal.ID).
		Update("quotation_status", rejected).Error)

	updated, err := svc.ReconcileDealStatuses(adminContext())
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	var dbDeal domain.Deal
	require.NoError(t, db.First(&dbDeal, "id = ?", deal.ID).Error)
	require.NotNil(t, dbDeal.QuotationStatus)
	assert.Equal(t, domain.QuotationApproved, *dbDeal.QuotationStatus)

	// A second run finds nothing to repair.
	updated, err = svc.ReconcileDealStatuses(adminContext())
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestValidateTransitionTable(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.QuotationStatus
		to      domain.QuotationStatus
		wantErr error
	}{
		{"pending to approved", domain.QuotationPending, domain.QuotationApproved, nil},
		{"pending to rejected", domain.QuotationPending, domain.QuotationRejected, nil},
		{"rejected to approved", domain.QuotationRejected, domain.QuotationApproved, nil},
		{"approved to rejected", domain.QuotationApproved, domain.QuotationRejected, nil},
		{"approved to approved", domain.QuotationApproved, domain.QuotationApproved, ErrQuotationAlreadyApproved},
		{"rejected to rejected", domain.QuotationRejected, domain.QuotationRejected, ErrQuotationAlreadyRejected},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateTransition(tc.from, tc.to)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}
