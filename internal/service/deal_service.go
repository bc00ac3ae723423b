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

// validStageTransitions defines which pipeline moves are allowed. Won and
// lost are terminal.
var validStageTransitions = map[domain.DealStage][]domain.DealStage{
	domain.StageNew:         {domain.StageQualified, domain.StageLost},
	domain.StageQualified:   {domain.StageProposition, domain.StageLost},
	domain.StageProposition: {domain.StageWon, domain.StageLost},
	domain.StageWon:         {},
	domain.StageLost:        {},
}

// DealService handles business logic for deals
type DealService struct {
	dealRepo  *repository.DealRepository
	numberSvc *NumberSequenceService
	logger    *zap.Logger
}

// NewDealService creates a new DealService
func NewDealService(
	dealRepo *repository.DealRepository,
	numberSvc *NumberSequenceService,
	logger *zap.Logger,
) *DealService {
	return &DealService{
		dealRepo:  dealRepo,
		numberSvc: numberSvc,
		logger:    logger,
	}
}

// Create creates a deal owned by the caller with a generated deal number
func (s *DealService) Create(ctx context.Context, req *domain.CreateDealRequest) (*domain.DealDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	dealNumber, err := s.numberSvc.GenerateDealNumber(ctx)
	if err != nil {
		return nil, err
	}

	deal := &domain.Deal{
		DealNumber:      dealNumber,
		CustomerName:    req.CustomerName,
		ContactName:     req.ContactName,
		ContactEmail:    req.ContactEmail,
		ContactPhone:    req.ContactPhone,
		Address:         req.Address,
		OEM:             req.OEM,
		ExpectedRevenue: req.ExpectedRevenue,
		MarginPercent:   req.MarginPercent,
		Stage:           domain.StageNew,
		OwnerID:         userCtx.UserID,
		OwnerName:       userCtx.DisplayName,
	}

	if err := s.dealRepo.Create(ctx, deal); err != nil {
		return nil, err
	}

	s.logger.Info("deal created",
		zap.String("deal_id", deal.ID.String()),
		zap.String("deal_number", deal.DealNumber),
		zap.String("owner_id", deal.OwnerID))

	dto := mapper.ToDealDTO(deal)
	return &dto, nil
}

// GetByID returns a deal. Salespeople only see their own deals.
func (s *DealService) GetByID(ctx context.Context, id uuid.UUID) (*domain.DealDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: deal %s", ErrNotFound, id)
		}
		return nil, err
	}

	if !userCtx.CanActOn(deal.OwnerID) {
		return nil, ErrPermissionDenied
	}

	dto := mapper.ToDealDTO(deal)
	return &dto, nil
}

// Update applies partial changes; stage moves go through the transition table
func (s *DealService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateDealRequest) (*domain.DealDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	deal, err := s.dealRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: deal %s", ErrNotFound, id)
		}
		return nil, err
	}

	if !userCtx.CanActOn(deal.OwnerID) {
		return nil, ErrPermissionDenied
	}

	if req.CustomerName != nil {
		deal.CustomerName = *req.CustomerName
	}
	if req.ContactName != nil {
		deal.ContactName = *req.ContactName
	}
	if req.ContactEmail != nil {
		deal.ContactEmail = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		deal.ContactPhone = *req.ContactPhone
	}
	if req.Address != nil {
		deal.Address = *req.Address
	}
	if req.OEM != nil {
		deal.OEM = *req.OEM
	}
	if req.ExpectedRevenue != nil {
		deal.ExpectedRevenue = *req.ExpectedRevenue
	}
	if req.MarginPercent != nil {
		deal.MarginPercent = *req.MarginPercent
	}
	if req.Stage != nil && *req.Stage != deal.Stage {
		if !isValidStageTransition(deal.Stage, *req.Stage) {
			return nil, fmt.Errorf("%w: cannot move deal from %s to %s", ErrConflict, deal.Stage, *req.Stage)
		}
		s.logger.Info("deal stage changed",
			zap.String("deal_id", deal.ID.String()),
			zap.String("from", string(deal.Stage)),
			zap.String("to", string(*req.Stage)))
		deal.Stage = *req.Stage
	}

	if err := s.dealRepo.Update(ctx, deal); err != nil {
		return nil, err
	}

	dto := mapper.ToDealDTO(deal)
	return &dto, nil
}

// Delete removes a deal (admin only)
func (s *DealService) Delete(ctx context.Context, id uuid.UUID) error {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUnauthorized
	}
	if !userCtx.IsAdmin() {
		return ErrPermissionDenied
	}

	if _, err := s.dealRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: deal %s", ErrNotFound, id)
		}
		return err
	}

	return s.dealRepo.Delete(ctx, id)
}

// List returns deals with paging and filters. Salespeople are scoped to
// their own deals.
func (s *DealService) List(ctx context.Context, page, pageSize int, filters *repository.DealFilters, sortBy repository.DealSortOption) ([]domain.DealDTO, int64, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, 0, ErrUnauthorized
	}

	if filters == nil {
		filters = &repository.DealFilters{}
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

	deals, total, err := s.dealRepo.List(ctx, page, pageSize, filters, sortBy)
	if err != nil {
		return nil, 0, err
	}
	return mapper.ToDealDTOs(deals), total, nil
}

// PipelineStats aggregates the caller's pipeline; admins see all deals
func (s *DealService) PipelineStats(ctx context.Context) (*domain.PipelineStatsDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	var ownerID *string
	if !userCtx.IsAdmin() {
		ownerID = &userCtx.UserID
	}

	stages, err := s.dealRepo.GetPipelineStats(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	stats := &domain.PipelineStatsDTO{Stages: stages}
	for _, st := range stages {
		stats.TotalDeals += st.Count
	}
	return stats, nil
}

func isValidStageTransition(from, to domain.DealStage) bool {
	for _, allowed := range validStageTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
