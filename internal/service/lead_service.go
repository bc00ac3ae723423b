package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/venditio/crm-api/internal/auth"
	"github.com/venditio/crm-api/internal/domain"
	"github.com/venditio/crm-api/internal/mapper"
	"github.com/venditio/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LeadService handles business logic for leads
type LeadService struct {
	leadRepo  *repository.LeadRepository
	dealRepo  *repository.DealRepository
	numberSvc *NumberSequenceService
	logger    *zap.Logger
}

// NewLeadService creates a new LeadService
func NewLeadService(
	leadRepo *repository.LeadRepository,
	dealRepo *repository.DealRepository,
	numberSvc *NumberSequenceService,
	logger *zap.Logger,
) *LeadService {
	return &LeadService{
		leadRepo:  leadRepo,
		dealRepo:  dealRepo,
		numberSvc: numberSvc,
		logger:    logger,
	}
}

// Create creates a lead owned by the caller
func (s *LeadService) Create(ctx context.Context, req *domain.CreateLeadRequest) (*domain.LeadDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	lead := &domain.Lead{
		Name:      req.Name,
		Company:   req.Company,
		Email:     req.Email,
		Phone:     req.Phone,
		Source:    req.Source,
		Status:    domain.LeadNew,
		OwnerID:   userCtx.UserID,
		OwnerName: userCtx.DisplayName,
		Notes:     req.Notes,
	}

	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, err
	}

	s.logger.Info("lead created",
		zap.String("lead_id", lead.ID.String()),
		zap.String("owner_id", lead.OwnerID))

	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

// GetByID returns a lead. Salespeople only see their own leads.
func (s *LeadService) GetByID(ctx context.Context, id uuid.UUID) (*domain.LeadDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: lead %s", ErrNotFound, id)
		}
		return nil, err
	}

	if !userCtx.CanActOn(lead.OwnerID) {
		return nil, ErrPermissionDenied
	}

	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

// Update applies partial changes to a lead
func (s *LeadService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateLeadRequest) (*domain.LeadDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: lead %s", ErrNotFound, id)
		}
		return nil, err
	}

	if !userCtx.CanActOn(lead.OwnerID) {
		return nil, ErrPermissionDenied
	}
	if lead.Status == domain.LeadConverted {
		return nil, ErrLeadAlreadyConverted
	}

	if req.Name != nil {
		lead.Name = *req.Name
	}
	if req.Company != nil {
		lead.Company = *req.Company
	}
	if req.Email != nil {
		lead.Email = *req.Email
	}
	if req.Phone != nil {
		lead.Phone = *req.Phone
	}
	if req.Source != nil {
		lead.Source = *req.Source
	}
	if req.Status != nil {
		lead.Status = *req.Status
	}
	if req.Notes != nil {
		lead.Notes = *req.Notes
	}

	if err := s.leadRepo.Update(ctx, lead); err != nil {
		return nil, err
	}

	dto := mapper.ToLeadDTO(lead)
	return &dto, nil
}

// Delete removes a lead
func (s *LeadService) Delete(ctx context.Context, id uuid.UUID) error {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUnauthorized
	}

	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: lead %s", ErrNotFound, id)
		}
		return err
	}

	if !userCtx.CanActOn(lead.OwnerID) {
		return ErrPermissionDenied
	}

	return s.leadRepo.Delete(ctx, id)
}

// List returns leads with paging. Salespeople are scoped to their own leads.
func (s *LeadService) List(ctx context.Context, page, pageSize int, filters *repository.LeadFilters) ([]domain.LeadDTO, int64, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, 0, ErrUnauthorized
	}

	if filters == nil {
		filters = &repository.LeadFilters{}
	}
	if !userCtx.IsAdmin() {
		filters.OwnerID = &userCtx.UserID
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	leads, total, err := s.leadRepo.List(ctx, page, pageSize, filters)
	if err != nil {
		return nil, 0, err
	}
	return mapper.ToLeadDTOs(leads), total, nil
}

// Convert turns a lead into a deal. The lead is flagged converted and the
// deal created with a fresh deal number in one transaction; contact details
// carry over.
func (s *LeadService) Convert(ctx context.Context, id uuid.UUID, req *domain.ConvertLeadRequest) (*domain.DealDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: lead %s", ErrNotFound, id)
		}
		return nil, err
	}

	if !userCtx.CanActOn(lead.OwnerID) {
		return nil, ErrPermissionDenied
	}
	if lead.Status == domain.LeadConverted {
		return nil, ErrLeadAlreadyConverted
	}

	dealNumber, err := s.numberSvc.GenerateDealNumber(ctx)
	if err != nil {
		return nil, err
	}

	customerName := lead.Company
	if customerName == "" {
		customerName = lead.Name
	}

	leadID := lead.ID
	deal := &domain.Deal{
		DealNumber:      dealNumber,
		CustomerName:    customerName,
		ContactName:     lead.Name,
		ContactEmail:    lead.Email,
		ContactPhone:    lead.Phone,
		OEM:             req.OEM,
		ExpectedRevenue: req.ExpectedRevenue,
		Stage:           domain.StageNew,
		OwnerID:         lead.OwnerID,
		OwnerName:       lead.OwnerName,
		LeadID:          &leadID,
	}

	err = s.leadRepo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(deal).Error; err != nil {
			return err
		}
		return s.leadRepo.MarkConverted(tx, lead.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("lead converted",
		zap.String("lead_id", lead.ID.String()),
		zap.String("deal_id", deal.ID.String()),
		zap.String("deal_number", deal.DealNumber))

	dto := mapper.ToDealDTO(deal)
	return &dto, nil
}
