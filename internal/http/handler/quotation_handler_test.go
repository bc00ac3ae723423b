package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/venditio/crm-api/internal/auth"
	"github.com/venditio/crm-api/internal/database"
	"github.com/venditio/crm-api/internal/domain"
	"github.com/venditio/crm-api/internal/pdf"
	"github.com/venditio/crm-api/internal/repository"
	"github.com/venditio/crm-api/internal/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type quotationTestEnv struct {
	db      *gorm.DB
	router  http.Handler
	service *service.QuotationService
}

// injectUser fakes the auth middleware for handler tests.
func injectUser(user *auth.UserContext) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUserContext(r.Context(), user)))
		})
	}
}

var (
	testAdmin = &auth.UserContext{UserID: "admin-1", DisplayName: "Asha Admin", Role: domain.RoleAdmin}
	testSales = &auth.UserContext{UserID: "sales-1", DisplayName: "Sam Sales", Role: domain.RoleSales}
)

func setupQuotationEnv(t *testing.T, user *auth.UserContext) *quotationTestEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	svc := service.NewQuotationService(
		repository.NewQuotationRepository(db),
		repository.NewDealRepository(db),
		zap.NewNop(),
	)
	h := NewQuotationHandler(svc, pdf.NewQuotationRenderer("Venditio", "Bengaluru"), zap.NewNop())

	r := chi.NewRouter()
	r.Use(injectUser(user))
	r.Post("/quotations/request", h.Request)
	r.Get("/quotations/{id}", h.GetByID)
	r.Put("/quotations/{id}", h.Update)
	r.Post("/quotations/{id}/approve", h.Approve)
	r.Get("/quotations/{id}/pdf", h.DownloadPDF)

	return &quotationTestEnv{db: db, router: r, service: svc}
}

func (e *quotationTestEnv) createDeal(t *testing.T, ownerID string) *domain.Deal {
	t.Helper()

	deal := &domain.Deal{
		DealNumber:   "OPP-250829-0001",
		CustomerName: "Acme Industries",
		Stage:        domain.StageNew,
		OwnerID:      ownerID,
		OwnerName:    "Sam Sales",
	}
	require.NoError(t, e.db.Create(deal).Error)
	return deal
}

func (e *quotationTestEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestQuotationRequestEndpoint(t *testing.T) {
	env := setupQuotationEnv(t, testSales)
	deal := env.createDeal(t, "sales-1")

	rec := env.do(t, http.MethodPost, "/quotations/request", domain.RequestQuotationRequest{
		DealID: deal.ID,
		Items: []domain.QuotationItemInput{
			{ProductName: "Server Rack", Qty: 2, UnitPrice: 50000, GSTRate: 18},
		},
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("Location"))

	var dto domain.QuotationDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, domain.QuotationPending, dto.Status)
	assert.Equal(t, "sales-1", dto.RequestedBy)
}

func TestQuotationRequestEndpointValidation(t *testing.T) {
	env := setupQuotationEnv(t, testSales)
	deal := env.createDeal(t, "sales-1")

	// No items submitted.
	rec := env.do(t, http.MethodPost, "/quotations/request", domain.RequestQuotationRequest{DealID: deal.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Malformed JSON.
	req := httptest.NewRequest(http.MethodPost, "/quotations/request", strings.NewReader("{not json"))
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// A GST rate outside the slabs fails validation, not the server.
	rec = env.do(t, http.MethodPost, "/quotations/request", domain.RequestQuotationRequest{
		DealID: deal.ID,
		Items: []domain.QuotationItemInput{
			{ProductName: "Server Rack", Qty: 1, UnitPrice: 1000, GSTRate: 15},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestQuotationUpdateAfterApprovalForbidden(t *testing.T) {
	env := setupQuotationEnv(t, testSales)
	deal := env.createDeal(t, "sales-1")

	requested, err := env.service.Request(
		auth.WithUserContext(context.Background(), testSales),
		&domain.RequestQuotationRequest{
			DealID: deal.ID,
			Items: []domain.QuotationItemInput{
				{ProductName: "Server Rack", Qty: 2, UnitPrice: 50000, GSTRate: 18},
			},
		})
	require.NoError(t, err)

	_, err = env.service.Approve(
		auth.WithUserContext(context.Background(), testAdmin),
		requested.ID,
		&domain.ApproveQuotationRequest{
			Items: []domain.QuotationItemInput{
				{ProductName: "Server Rack", Qty: 2, UnitPrice: 48000, GSTRate: 18},
			},
		})
	require.NoError(t, err)

	rec := env.do(t, http.MethodPut, "/quotations/"+requested.ID.String(), domain.UpdateQuotationRequest{
		Items: []domain.QuotationItemInput{
			{ProductName: "Server Rack", Qty: 3, UnitPrice: 51000, GSTRate: 18},
		},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
}

func TestQuotationApproveEndpoint(t *testing.T) {
	env := setupQuotationEnv(t, testAdmin)
	deal := env.createDeal(t, "sales-1")

	requested, err := env.service.Request(
		auth.WithUserContext(context.Background(), testSales),
		&domain.RequestQuotationRequest{
			DealID: deal.ID,
			Items: []domain.QuotationItemInput{
				{ProductName: "Server Rack", Qty: 2, UnitPrice: 50000, GSTRate: 18},
			},
		})
	require.NoError(t, err)

	approveBody := domain.ApproveQuotationRequest{
		Items: []domain.QuotationItemInput{
			{ProductName: "Server Rack", Qty: 2, UnitPrice: 48000, GSTRate: 18},
		},
	}

	rec := env.do(t, http.MethodPost, "/quotations/"+requested.ID.String()+"/approve", approveBody)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var dto domain.QuotationDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.Equal(t, domain.QuotationApproved, dto.Status)

	// Approving twice conflicts.
	rec = env.do(t, http.MethodPost, "/quotations/"+requested.ID.String()+"/approve", approveBody)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestQuotationPDFEndpoint(t *testing.T) {
	env := setupQuotationEnv(t, testAdmin)
	deal := env.createDeal(t, "sales-1")

	salesCtx := auth.WithUserContext(context.Background(), testSales)
	requested, err := env.service.Request(salesCtx, &domain.RequestQuotationRequest{
		DealID: deal.ID,
		Items: []domain.QuotationItemInput{
			{ProductName: "Server Rack", Qty: 2, UnitPrice: 50000, GSTRate: 18},
		},
	})
	require.NoError(t, err)

	// A pending quotation cannot be rendered.
	rec := env.do(t, http.MethodGet, "/quotations/"+requested.ID.String()+"/pdf", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	adminCtx := auth.WithUserContext(context.Background(), testAdmin)
	_, err = env.service.Approve(adminCtx, requested.ID, &domain.ApproveQuotationRequest{
		Items: []domain.QuotationItemInput{
			{ProductName: "Server Rack", Qty: 2, UnitPrice: 48000, GSTRate: 18},
		},
	})
	require.NoError(t, err)

	rec = env.do(t, http.MethodGet, "/quotations/"+requested.ID.String()+"/pdf", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "quotation_OPP-250829-0001.pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")), "body should be a PDF document")
}

func TestQuotationGetByIDInvalidUUID(t *testing.T) {
	env := setupQuotationEnv(t, testSales)

	rec := env.do(t, http.MethodGet, "/quotations/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
