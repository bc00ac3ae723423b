package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
	"github.com/venditio/crm-api/internal/auth"
	"github.com/venditio/crm-api/internal/domain"
	"github.com/venditio/crm-api/internal/mapper"
	"github.com/venditio/crm-api/internal/repository"
	"github.com/venditio/crm-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxDocumentSize caps uploads at 20 MiB
const maxDocumentSize = 20 << 20

// DocumentService handles uploads attached to deals
type DocumentService struct {
	documentRepo *repository.DocumentRepository
	dealRepo     *repository.DealRepository
	store        storage.Storage
	logger       *zap.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	documentRepo *repository.DocumentRepository,
	dealRepo *repository.DealRepository,
	store storage.Storage,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		documentRepo: documentRepo,
		dealRepo:     dealRepo,
		store:        store,
		logger:       logger,
	}
}

// Upload stores a file for a deal and records its metadata
func (s *DocumentService) Upload(ctx context.Context, dealID uuid.UUID, fileName, contentType string, size int64, content io.Reader) (*domain.DealDocumentDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	deal, err := s.dealRepo.GetByID(ctx, dealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: deal %s", ErrNotFound, dealID)
		}
		return nil, err
	}
	if !userCtx.CanActOn(deal.OwnerID) {
		return nil, ErrPermissionDenied
	}

	if fileName == "" {
		return nil, fmt.Errorf("%w: file name is required", ErrInvalidInput)
	}
	if size > maxDocumentSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidInput, maxDocumentSize)
	}

	doc := &domain.DealDocument{
		DealID:      dealID,
		FileName:    path.Base(fileName),
		ContentType: contentType,
		Size:        size,
		UploadedBy:  userCtx.UserID,
	}
	doc.ID = uuid.New()
	doc.StoragePath = fmt.Sprintf("deals/%s/%s_%s", dealID, doc.ID, doc.FileName)

	storedPath, err := s.store.Save(ctx, doc.StoragePath, io.LimitReader(content, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to store document: %w", err)
	}
	doc.StoragePath = storedPath

	if err := s.documentRepo.Create(ctx, doc); err != nil {
		// Best effort: don't leave an orphaned blob behind.
		if delErr := s.store.Delete(ctx, storedPath); delErr != nil {
			s.logger.Warn("failed to clean up stored file after db error",
				zap.String("path", storedPath),
				zap.Error(delErr))
		}
		return nil, err
	}

	s.logger.Info("document uploaded",
		zap.String("deal_id", dealID.String()),
		zap.String("document_id", doc.ID.String()),
		zap.String("file_name", doc.FileName),
		zap.Int64("size", doc.Size))

	dto := mapper.ToDealDocumentDTO(doc)
	return &dto, nil
}

// List returns a deal's documents, newest first
func (s *DocumentService) List(ctx context.Context, dealID uuid.UUID) ([]domain.DealDocumentDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	deal, err := s.dealRepo.GetByID(ctx, dealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: deal %s", ErrNotFound, dealID)
		}
		return nil, err
	}
	if !userCtx.CanActOn(deal.OwnerID) {
		return nil, ErrPermissionDenied
	}

	docs, err := s.documentRepo.ListByDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	return mapper.ToDealDocumentDTOs(docs), nil
}

// Download returns the document metadata and a reader over its content.
// The caller owns closing the reader.
func (s *DocumentService) Download(ctx context.Context, id uuid.UUID) (*domain.DealDocument, io.ReadCloser, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, nil, ErrUnauthorized
	}

	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: document %s", ErrNotFound, id)
		}
		return nil, nil, err
	}

	deal, err := s.dealRepo.GetByID(ctx, doc.DealID)
	if err != nil {
		return nil, nil, err
	}
	if !userCtx.CanActOn(deal.OwnerID) {
		return nil, nil, ErrPermissionDenied
	}

	reader, err := s.store.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open document: %w", err)
	}
	return doc, reader, nil
}

// Delete removes a document and its stored file
func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUnauthorized
	}

	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: document %s", ErrNotFound, id)
		}
		return err
	}

	deal, err := s.dealRepo.GetByID(ctx, doc.DealID)
	if err != nil {
		return err
	}
	if !userCtx.CanActOn(deal.OwnerID) {
		return ErrPermissionDenied
	}

	if err := s.documentRepo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, doc.StoragePath); err != nil {
		s.logger.Warn("failed to delete stored file",
			zap.String("path", doc.StoragePath),
			zap.Error(err))
	}
	return nil
}
