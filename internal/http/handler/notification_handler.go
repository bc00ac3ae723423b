package handler

import (
	"encoding/json"
	"net/http"

	"github.com/venditio/crm-api/internal/domain"
	"github.com/venditio/crm-api/internal/service"
	"go.uber.org/zap"
)

type NotificationHandler struct {
	quotationService *service.QuotationService
	logger           *zap.Logger
}

func NewNotificationHandler(quotationService *service.QuotationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		quotationService: quotationService,
		logger:           logger,
	}
}

// @Summary Notification stats
// @Description Unread approved quotations for the caller
// @Tags Notifications
// @Produce json
// @Success 200 {object} domain.NotificationStatsDTO
// @Security BearerAuth
// @Router /quotations/stats/notifications [get]
func (h *NotificationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.quotationService.NotificationStats(r.Context())
	if err != nil {
		h.logger.Error("failed to get notification stats", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get notification stats")
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// @Summary Mark notifications read
// @Description Acknowledge approved quotations by id, or all of the caller's when no ids are given
// @Tags Notifications
// @Accept json
// @Produce json
// @Param request body domain.MarkReadRequest false "Quotation ids to acknowledge"
// @Success 200 {object} map[string]int64
// @Security BearerAuth
// @Router /quotations/stats/mark-read [put]
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var req domain.MarkReadRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
			return
		}
	}

	updated, err := h.quotationService.MarkRead(r.Context(), req.IDs)
	if err != nil {
		h.logger.Error("failed to mark notifications read", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to mark notifications read")
		return
	}
	respondJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}
