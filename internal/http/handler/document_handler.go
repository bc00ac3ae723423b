package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/venditio/crm-api/internal/service"
	"go.uber.org/zap"
)

const maxUploadMB = 20

type DocumentHandler struct {
	documentService *service.DocumentService
	logger          *zap.Logger
}

func NewDocumentHandler(documentService *service.DocumentService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		logger:          logger,
	}
}

// @Summary Upload deal document
// @Description Attach a file (purchase order etc.) to a deal
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Deal ID"
// @Param file formData file true "File to upload"
// @Success 201 {object} domain.DealDocumentDTO
// @Security BearerAuth
// @Router /deals/{id}/documents [post]
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	dealID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID: must be a valid UUID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(maxUploadMB * 1024 * 1024); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large: maximum size is %dMB", maxUploadMB))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file upload: file field is required")
		return
	}
	defer file.Close()

	doc, err := h.documentService.Upload(r.Context(), dealID, header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Deal not found")
		case errors.Is(err, service.ErrPermissionDenied):
			respondWithError(w, http.StatusForbidden, "Insufficient permissions to upload to this deal")
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to upload document", zap.Error(err), zap.String("deal_id", dealID.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to upload document")
		}
		return
	}

	respondJSON(w, http.StatusCreated, doc)
}

// @Summary List deal documents
// @Description Documents attached to a deal, newest first
// @Tags Documents
// @Produce json
// @Param id path string true "Deal ID"
// @Success 200 {array} domain.DealDocumentDTO
// @Security BearerAuth
// @Router /deals/{id}/documents [get]
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	dealID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid deal ID: must be a valid UUID")
		return
	}

	docs, err := h.documentService.List(r.Context(), dealID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Deal not found")
		case errors.Is(err, service.ErrPermissionDenied):
			respondWithError(w, http.StatusForbidden, "Insufficient permissions to view this deal's documents")
		default:
			h.logger.Error("failed to list documents", zap.Error(err), zap.String("deal_id", dealID.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to list documents")
		}
		return
	}

	respondJSON(w, http.StatusOK, docs)
}

// @Summary Download document
// @Description Download a document's content
// @Tags Documents
// @Produce application/octet-stream
// @Param id path string true "Document ID"
// @Success 200 "File content"
// @Security BearerAuth
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document ID: must be a valid UUID")
		return
	}

	doc, reader, err := h.documentService.Download(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Document not found")
		case errors.Is(err, service.ErrPermissionDenied):
			respondWithError(w, http.StatusForbidden, "Insufficient permissions to download this document")
		default:
			h.logger.Error("failed to download document", zap.Error(err), zap.String("document_id", id.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to download document")
		}
		return
	}
	defer reader.Close()

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Error("failed to stream document", zap.Error(err), zap.String("document_id", id.String()))
	}
}

// @Summary Delete document
// @Description Remove a document and its stored file
// @Tags Documents
// @Param id path string true "Document ID"
// @Success 204 "No Content"
// @Security BearerAuth
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document ID: must be a valid UUID")
		return
	}

	if err := h.documentService.Delete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondWithError(w, http.StatusNotFound, "Document not found")
		case errors.Is(err, service.ErrPermissionDenied):
			respondWithError(w, http.StatusForbidden, "Insufficient permissions to delete this document")
		default:
			h.logger.Error("failed to delete document", zap.Error(err), zap.String("document_id", id.String()))
			respondWithError(w, http.StatusInternalServerError, "Failed to delete document")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
