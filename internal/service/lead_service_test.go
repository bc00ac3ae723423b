package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venditio/crm-api/internal/domain"
	"github.com/venditio/crm-api/internal/repository"
	"gorm.io/gorm"
)

func newLeadService(db *gorm.DB) *LeadService {
	numberSvc := NewNumberSequenceService(repository.NewNumberSequenceRepository(db), testLogger())
	return NewLeadService(
		repository.NewLeadRepository(db),
		repository.NewDealRepository(db),
		numberSvc,
		testLogger(),
	)
}

func createTestLead(t *testing.T, svc *LeadService, ownerID string) *domain.LeadDTO {
	t.Helper()

	dto, err := svc.Create(salesContext(ownerID), &domain.CreateLeadRequest{
		Name:    "Priya Mehta",
		Company: "Mehta Constructions",
		Email:   "priya@mehta.example",
		Phone:   "9876543210",
		Source:  "referral",
	})
	require.NoError(t, err)
	return dto
}

func TestLeadConvert(t *testing.T) {
	db := setupTestDB(t)
	svc := newLeadService(db)
	lead := createTestLead(t, svc, "sales-1")
	ctx := salesContext("sales-1")

	deal, err := svc.Convert(ctx, lead.ID, &domain.ConvertLeadRequest{
		ExpectedRevenue: 750000,
		OEM:             "Cisco",
	})
	require.NoError(t, err)

	// Company becomes the customer; the person stays as contact.
	assert.Equal(t, "Mehta Constructions", deal.CustomerName)
	assert.Equal(t, "Priya Mehta", deal.ContactName)
	assert.Equal(t, "priya@mehta.example", deal.ContactEmail)
	assert.Equal(t, domain.StageNew, deal.Stage)
	assert.NotEmpty(t, deal.DealNumber)
	require.NotNil(t, deal.LeadID)
	assert.Equal(t, lead.ID, *deal.LeadID)

	converted, err := svc.GetByID(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LeadConverted, converted.Status)

	// A converted lead cannot be converted again or edited.
	_, err = svc.Convert(ctx, lead.ID, &domain.ConvertLeadRequest{})
	assert.ErrorIs(t, err, ErrLeadAlreadyConverted)

	name := "New Name"
	_, err = svc.Update(ctx, lead.ID, &domain.UpdateLeadRequest{Name: &name})
	assert.ErrorIs(t, err, ErrLeadAlreadyConverted)
}

func TestLeadConvertWithoutCompany(t *testing.T) {
	db := setupTestDB(t)
	svc := newLeadService(db)
	ctx := salesContext("sales-1")

	lead, err := svc.Create(ctx, &domain.CreateLeadRequest{Name: "Solo Trader"})
	require.NoError(t, err)

	deal, err := svc.Convert(ctx, lead.ID, &domain.ConvertLeadRequest{})
	require.NoError(t, err)

	// The person's name fills in when no company is set.
	assert.Equal(t, "Solo Trader", deal.CustomerName)
}

func TestLeadOwnershipScoping(t *testing.T) {
	db := setupTestDB(t)
	svc := newLeadService(db)
	lead := createTestLead(t, svc, "sales-1")

	_, err := svc.GetByID(salesContext("sales-2"), lead.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.Convert(salesContext("sales-2"), lead.ID, &domain.ConvertLeadRequest{})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	err = svc.Delete(salesContext("sales-2"), lead.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	createTestLead(t, svc, "sales-2")

	mine, total, err := svc.List(salesContext("sales-1"), 1, 20, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, mine, 1)
	assert.Equal(t, lead.ID, mine[0].ID)

	_, total, err = svc.List(adminContext(), 1, 20, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}
