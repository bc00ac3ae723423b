package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/venditio/crm-api/internal/domain"
	"github.com/venditio/crm-api/internal/repository"
	"github.com/venditio/crm-api/internal/service"
	"go.uber.org/zap"
)

type DealHandler struct {
	dealService *service.DealService
	logger      *zap.Logger
}

func NewDealHandler(dealService *service.DealService, logger *zap.Logger) *DealHandler {
	return &DealHandler{
		dealService: dealService,
		logger:      logger,
	}
}

// @Summary List deals
// @Description List deals with optional filters. Salespeople see their own deals only.
// @Tags Deals
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Page size" default(20)
// @Param stage query string false "Filter by stage (new, qualified, proposition, won, lost)"
// @Param quotationStatus query string false "Filter by quotation status (pending, approved, rejected)"
// @Param ownerId query string false "Filter by owner ID (admin only)"
// @Param createdAfter query string false "Created after date (YYYY-MM-DD)"
// @Param createdBefore query string false "Created before date (YYYY-MM-DD)"
// @Param q query string false "Search in customer name and deal number"
// @Param sort query string false "Sort by (created_desc, created_asc, revenue_desc, revenue_asc)"
// @Success 200 {object} domain.PaginatedResponse
// @Security BearerAuth
// @Router /deals [get]
func (h *DealHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}

	filters := &repository.DealFilters{}

	if s := r.URL.Query().Get("stage"); s != "" {
		stage := domain.DealStage(s)
		filters.Stage = &stage
	}

	if qs := r.URL.Query().Get("quotationStatus"); qs != "" {
		status := domain.QuotationStatus(qs)
		filters.QuotationStatus = &status
	}

	if o := r.URL.Query().Get("ownerId"); o != "" {
		filters.OwnerID = &o
	}

	if ca := r.URL.Query().Get("createdAfter"); ca != "" {
		if t, err := time.Parse("2006-01-02", ca); err == nil {
			filters.CreatedAfter = &t
		}
	}
	if cb := r.URL.Query().Get("createdBefore"); cb != "" {
		if t, err := time.Parse("2006-01-02", cb); err == nil {
			filters.CreatedBefore = &t
		}
	}

	if q := r.URL.Query().Get("q"); q != "" {
		filters.SearchQuery = &q
	}

	sortBy := repository.DealSortByCreatedDesc
	if s := r.URL.Query().Get("sort"); s != "" {
		sortBy = repository.DealSortOption(s)
	}

	deals, total, err := h.dealService.List(r.Context(), page, pageSize, filters, sortBy)
	if err != nil {
		h.logger.Error("failed to list deals", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list deals")
		return
	}

	respondJSON(w, http.StatusOK, paginated(deals, total, page, pageSize))
}

// @Summary Create deal
// @Description Create a new deal owned by the caller
// @Tags Deals
// @Accept json
// @Produce json
// @Param request body domain.CreateDealRequest true "Deal data"
// @Success 201 {object} domain.DealDTO
// @Security BearerAuth
// @Router /deals [post]
func (h *DealHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	deal, err := h.dealService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create deal", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create deal")
		return
	}

	w.Header().Set("Location", "/api/v1/deals/"+deal.ID.String())
	respondJSON(w, http.StatusCreated, deal)
}

// @Summary Get deal
// @Description Get a deal by ID
// @Tags Deals
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {object} domain.DealDTO
// @Security BearerAuth
// @Router /deals/{id} [get]
func (h *DealHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID: must be a valid UUID")
		return
	}

	deal, err := h.dealService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Deal not found")
			return
		}
		if errors.Is(err, service.ErrPermissionDenied) {
			respondWithError(w, http.StatusForbidden, "Insufficient permissions to view this deal")
			return
		}
		h.logger.Error("failed to get deal", zap.Error(err), zap.String("deal_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to get deal")
		return
	}

	respondJSON(w, http.StatusOK, deal)
}

// @Summary Update deal
// @Description Update an existing deal; stage moves are validated against the pipeline
// @Tags Deals
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param request body domain.UpdateDealRequest true "Deal data"
// @Success 200 {object} domain.DealDTO
// @Security BearerAuth
// @Router /deals/{id} [put]
func (h *DealHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID: must be a valid UUID")
		return
	}

	var req domain.UpdateDealRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	deal, err := h.dealService.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Deal not found")
		case errors.Is(err, service.ErrPermissionDenied):
			respondWithError(w, http.StatusForbidden, "Insufficient permissions to update this deal")
		case errors.Is(err, service.ErrConflict):
			respondWithError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("failed to update deal", zap.Error(err), zap.String("deal_id", id.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to update deal")
		}
		return
	}

	respondJSON(w, http.StatusOK, deal)
}

// @Summary Delete deal
// @Description Delete a deal (admin only)
// @Tags Deals
// @Param id path string true "Deal ID"
// @Success 204 "No Content"
// @Security BearerAuth
// @Router /deals/{id} [delete]
func (h *DealHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID: must be a valid UUID")
		return
	}

	if err := h.dealService.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Deal not found")
		case errors.Is(err, service.ErrPermissionDenied):
			respondWithError(w, http.StatusForbidden, "Insufficient permissions to delete this deal")
		default:
			h.logger.Error("failed to delete deal", zap.Error(err), zap.String("deal_id", id.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to delete deal")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Pipeline stats
// @Description Deal count and expected revenue per stage. Salespeople see their own pipeline.
// @Tags Deals
// @Produce json
// @Success 200 {object} domain.PipelineStatsDTO
// @Security BearerAuth
// @Router /deals/pipeline [get]
func (h *DealHandler) PipelineStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dealService.PipelineStats(r.Context())
	if err != nil {
		h.logger.Error("failed to get pipeline stats", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get pipeline stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
