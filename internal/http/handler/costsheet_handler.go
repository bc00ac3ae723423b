package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/venditio/crm-api/internal/domain"
	"github.com/venditio/crm-api/internal/service"
	"go.uber.org/zap"
)

type CostSheetHandler struct {
	costSheetService *service.CostSheetService
	logger           *zap.Logger
}

func NewCostSheetHandler(costSheetService *service.CostSheetService, logger *zap.Logger) *CostSheetHandler {
	return &CostSheetHandler{
		costSheetService: costSheetService,
		logger:           logger,
	}
}

// @Summary Get latest cost sheet
// @Description Latest cost sheet version for a deal, with computed totals and margins
// @Tags CostSheets
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {object} domain.CostSheetDTO
// @Security BearerAuth
// @Router /deals/{id}/costsheet [get]
func (h *CostSheetHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	dealID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID: must be a valid UUID")
		return
	}

	sheet, err := h.costSheetService.GetLatest(r.Context(), dealID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Cost sheet not found")
		case errors.Is(err, service.ErrPermissionDenied):
			respondWithError(w, http.StatusForbidden, "Insufficient permissions to view this cost sheet")
		default:
			h.logger.Error("failed to get cost sheet", zap.Error(err), zap.String("deal_id", dealID.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to get cost sheet")
		}
		return
	}

	respondJSON(w, http.StatusOK, sheet)
}

// @Summary List cost sheet versions
// @Description Full version history of a deal's cost sheet, newest first
// @Tags CostSheets
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {array} domain.CostSheetDTO
// @Security BearerAuth
// @Router /deals/{id}/costsheet/versions [get]
func (h *CostSheetHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	dealID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID: must be a valid UUID")
		return
	}

	sheets, err := h.costSheetService.ListVersions(r.Context(), dealID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Deal not found")
		case errors.Is(err, service.ErrPermissionDenied):
			respondWithError(w, http.StatusForbidden, "Insufficient permissions to view this cost sheet")
		default:
			h.logger.Error("failed to list cost sheet versions", zap.Error(err), zap.String("deal_id", dealID.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to list cost sheet versions")
		}
		return
	}

	respondJSON(w, http.StatusOK, sheets)
}

// @Summary Save cost sheet
// @Description Save the deal's cost sheet. Set createNewVersion to freeze the current version and branch a new one.
// @Tags CostSheets
// @Accept json
// @Produce json
// @Param id path string true "Deal ID"
// @Param request body domain.SaveCostSheetRequest true "Cost sheet data"
// @Success 200 {object} domain.CostSheetDTO
// @Security BearerAuth
// @Router /deals/{id}/costsheet [put]
func (h *CostSheetHandler) Save(w http.ResponseWriter, r *http.Request) {
	dealID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID: must be a valid UUID")
		return
	}

	var req domain.SaveCostSheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	sheet, err := h.costSheetService.Save(r.Context(), dealID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Deal not found")
		case errors.Is(err, service.ErrPermissionDenied):
			respondWithError(w, http.StatusForbidden, "Insufficient permissions to edit this cost sheet")
		default:
			h.logger.Error("failed to save cost sheet", zap.Error(err), zap.String("deal_id", dealID.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to save cost sheet")
		}
		return
	}

	respondJSON(w, http.StatusOK, sheet)
}
