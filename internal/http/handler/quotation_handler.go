package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/venditio/crm-api/internal/domain"
	"github.com/venditio/crm-api/internal/pdf"
	"github.com/venditio/crm-api/internal/service"
	"go.uber.org/zap"
)

type QuotationHandler struct {
	quotationService *service.QuotationService
	renderer         *pdf.QuotationRenderer
	logger           *zap.Logger
}

func NewQuotationHandler(quotationService *service.QuotationService, renderer *pdf.QuotationRenderer, logger *zap.Logger) *QuotationHandler {
	return &QuotationHandler{
		quotationService: quotationService,
		renderer:         renderer,
		logger:           logger,
	}
}

// @Summary Request quotation
// @Description Submit desired lines for a deal, opening the approval workflow
// @Tags Quotations
// @Accept json
// @Produce json
// @Param request body domain.RequestQuotationRequest true "Requested lines"
// @Success 201 {object} domain.QuotationDTO
// @Security BearerAuth
// @Router /quotations/request [post]
func (h *QuotationHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req domain.RequestQuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quotation, err := h.quotationService.Request(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Deal not found")
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to request quotation", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Failed to request quotation")
		}
		return
	}

	w.Header().Set("Location", "/api/v1/quotations/"+quotation.ID.String())
	respondJSON(w, http.StatusCreated, quotation)
}

// @Summary List quotations
// @Description List quotations, optionally filtered by status. Salespeople see their own requests only.
// @Tags Quotations
// @Produce json
// @Param status query string false "Filter by status (pending, approved, rejected)"
// @Success 200 {array} domain.QuotationDTO
// @Security BearerAuth
// @Router /quotations [get]
func (h *QuotationHandler) List(w http.ResponseWriter, r *http.Request) {
	var status *domain.QuotationStatus
	if s := r.URL.Query().Get("status"); s != "" {
		qs := domain.QuotationStatus(s)
		if !qs.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid status: must be pending, approved or rejected")
			return
		}
		status = &qs
	}

	quotations, err := h.quotationService.List(r.Context(), status)
	if err != nil {
		h.logger.Error("failed to list quotations", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list quotations")
		return
	}

	respondJSON(w, http.StatusOK, quotations)
}

// @Summary Get quotation
// @Description Get a quotation by ID
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} domain.QuotationDTO
// @Security BearerAuth
// @Router /quotations/{id} [get]
func (h *QuotationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	quotation, err := h.quotationService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Quotation not found")
			return
		}
		if errors.Is(err, service.ErrPermissionDenied) {
			respondWithError(w, http.StatusForbidden, "Insufficient permissions to view this quotation")
			return
		}
		h.logger.Error("failed to get quotation", zap.Error(err), zap.String("quotation_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to get quotation")
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// @Summary Update quotation
// @Description Replace the requested lines of a still-pending quotation
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param request body domain.UpdateQuotationRequest true "Updated lines"
// @Success 200 {object} domain.QuotationDTO
// @Security BearerAuth
// @Router /quotations/{id} [put]
func (h *QuotationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	var req domain.UpdateQuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quotation, err := h.quotationService.Update(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Quotation not found")
		case errors.Is(err, service.ErrPermissionDenied):
			respondWithError(w, http.StatusForbidden, "Insufficient permissions to edit this quotation")
		case errors.Is(err, service.ErrQuotationNotPending):
			respondWithError(w, http.StatusForbidden, "Only pending quotations can be edited")
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to update quotation", zap.Error(err), zap.String("quotation_id", id.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to update quotation")
		}
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// @Summary Approve quotation
// @Description Finalize pricing and approve the quotation (admin only)
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param request body domain.ApproveQuotationRequest true "Final pricing"
// @Success 200 {object} domain.QuotationDTO
// @Security BearerAuth
// @Router /quotations/{id}/approve [post]
func (h *QuotationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	var req domain.ApproveQuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quotation, err := h.quotationService.Approve(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Quotation not found")
		case errors.Is(err, service.ErrQuotationAlreadyApproved):
			respondWithError(w, http.StatusConflict, "Quotation is already approved")
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrConflict):
			respondWithError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("failed to approve quotation", zap.Error(err), zap.String("quotation_id", id.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to approve quotation")
		}
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// @Summary Reject quotation
// @Description Reject a pending quotation or revoke an approved one (admin only)
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param request body domain.RejectQuotationRequest true "Rejection remarks"
// @Success 200 {object} domain.QuotationDTO
// @Security BearerAuth
// @Router /quotations/{id}/reject [post]
func (h *QuotationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	var req domain.RejectQuotationRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
			return
		}
	}

	quotation, err := h.quotationService.Reject(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Quotation not found")
		case errors.Is(err, service.ErrQuotationAlreadyRejected):
			respondWithError(w, http.StatusConflict, "Quotation is already rejected")
		case errors.Is(err, service.ErrConflict):
			respondWithError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("failed to reject quotation", zap.Error(err), zap.String("quotation_id", id.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to reject quotation")
		}
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// @Summary Set quotation margin
// @Description Store the salesperson margin on an approved quotation
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param request body domain.SetMarginRequest true "Margin"
// @Success 200 {object} domain.QuotationDTO
// @Security BearerAuth
// @Router /quotations/{id}/margin [put]
func (h *QuotationHandler) SetMargin(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	var req domain.SetMarginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quotation, err := h.quotationService.SetMargin(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Quotation not found")
		case errors.Is(err, service.ErrPermissionDenied):
			respondWithError(w, http.StatusForbidden, "Insufficient permissions to set margin on this quotation")
		case errors.Is(err, service.ErrQuotationNotApproved):
			respondWithError(w, http.StatusConflict, "Margin can only be set on an approved quotation")
		default:
			h.logger.Error("failed to set quotation margin", zap.Error(err), zap.String("quotation_id", id.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to set quotation margin")
		}
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// @Summary Download quotation PDF
// @Description Render an approved quotation as a customer-facing PDF with margin-adjusted prices
// @Tags Quotations
// @Produce application/pdf
// @Param id path string true "Quotation ID"
// @Success 200 "PDF file"
// @Security BearerAuth
// @Router /quotations/{id}/pdf [get]
func (h *QuotationHandler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	quotation, err := h.quotationService.GetForRender(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Quotation not found")
		case errors.Is(err, service.ErrPermissionDenied):
			respondWithError(w, http.StatusForbidden, "Insufficient permissions to download this quotation")
		case errors.Is(err, service.ErrQuotationNotApproved):
			respondWithError(w, http.StatusConflict, "Only approved quotations can be downloaded as PDF")
		default:
			h.logger.Error("failed to load quotation for pdf", zap.Error(err), zap.String("quotation_id", id.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
		}
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+h.renderer.FileName(quotation))
	if err := h.renderer.Render(quotation, w); err != nil {
		h.logger.Error("failed to render quotation pdf", zap.Error(err), zap.String("quotation_id", id.String()))
	}
}

// @Summary Pending approval count
// @Description Number of quotations awaiting review (admin only)
// @Tags Quotations
// @Produce json
// @Success 200 {object} domain.PendingCountDTO
// @Security BearerAuth
// @Router /quotations/stats/pending-count [get]
func (h *QuotationHandler) PendingCount(w http.ResponseWriter, r *http.Request) {
	stats, err := h.quotationService.PendingCount(r.Context())
	if err != nil {
		h.logger.Error("failed to count pending quotations", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to count pending quotations")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// @Summary List deal quotations
// @Description All quotations of a deal, newest first
// @Tags Quotations
// @Produce json
// @Param dealId path string true "Deal ID"
// @Success 200 {array} domain.QuotationDTO
// @Security BearerAuth
// @Router /quotations/deal/{dealId} [get]
func (h *QuotationHandler) ListForDeal(w http.ResponseWriter, r *http.Request) {
	dealID, err := uuid.Parse(chi.URLParam(r, "dealId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID: must be a valid UUID")
		return
	}

	quotations, err := h.quotationService.ListForDeal(r.Context(), dealID)
	if err != nil {
		h.logger.Error("failed to list deal quotations", zap.Error(err), zap.String("deal_id", dealID.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to list quotations")
		return
	}

	respondJSON(w, http.StatusOK, quotations)
}
