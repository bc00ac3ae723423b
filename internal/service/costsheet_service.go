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

// CostSheetService handles business logic for versioned cost sheets
type CostSheetService struct {
	costSheetRepo *repository.CostSheetRepository
	dealRepo      *repository.DealRepository
	logger        *zap.Logger
}

// NewCostSheetService creates a new CostSheetService
func NewCostSheetService(
	costSheetRepo *repository.CostSheetRepository,
	dealRepo *repository.DealRepository,
	logger *zap.Logger,
) *CostSheetService {
	return &CostSheetService{
		costSheetRepo: costSheetRepo,
		dealRepo:      dealRepo,
		logger:        logger,
	}
}

// GetLatest returns the latest cost sheet version for a deal
func (s *CostSheetService) GetLatest(ctx context.Context, dealID uuid.UUID) (*domain.CostSheetDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	deal, err := s.getDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if !userCtx.CanActOn(deal.OwnerID) {
		return nil, ErrPermissionDenied
	}

	sheet, err := s.costSheetRepo.GetLatestForDeal(ctx, dealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cost sheet for deal %s", ErrNotFound, dealID)
		}
		return nil, err
	}

	dto := mapper.ToCostSheetDTO(sheet)
	return &dto, nil
}

// ListVersions returns the full version history of a deal's cost sheet
func (s *CostSheetService) ListVersions(ctx context.Context, dealID uuid.UUID) ([]domain.CostSheetDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	deal, err := s.getDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if !userCtx.CanActOn(deal.OwnerID) {
		return nil, ErrPermissionDenied
	}

	sheets, err := s.costSheetRepo.ListVersions(ctx, dealID)
	if err != nil {
		return nil, err
	}
	return mapper.ToCostSheetDTOs(sheets), nil
}

// Save writes the deal's cost sheet. Without CreateNewVersion the latest
// version is mutated in place; with it the old version is frozen and a new
// one branched with version+1.
func (s *CostSheetService) Save(ctx context.Context, dealID uuid.UUID, req *domain.SaveCostSheetRequest) (*domain.CostSheetDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	deal, err := s.getDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	if !userCtx.CanActOn(deal.OwnerID) {
		return nil, ErrPermissionDenied
	}

	current, err := s.costSheetRepo.GetLatestForDeal(ctx, dealID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	sheet := buildCostSheet(dealID, req, userCtx.UserID)

	switch {
	case current == nil:
		sheet.Version = 1
		sheet.IsLatest = true
		err = s.costSheetRepo.WithTransaction(ctx, func(tx *gorm.DB) error {
			return s.costSheetRepo.Create(tx, sheet)
		})

	case req.CreateNewVersion:
		sheet.Version = current.Version + 1
		sheet.IsLatest = true
		err = s.costSheetRepo.WithTransaction(ctx, func(tx *gorm.DB) error {
			if err := s.costSheetRepo.ClearLatest(tx, dealID); err != nil {
				return err
			}
			return s.costSheetRepo.Create(tx, sheet)
		})

	default:
		// Mutate the current version in place, keeping its identity.
		sheet.ID = current.ID
		sheet.Version = current.Version
		sheet.IsLatest = true
		sheet.CreatedAt = current.CreatedAt
		err = s.costSheetRepo.WithTransaction(ctx, func(tx *gorm.DB) error {
			if err := s.costSheetRepo.Save(tx, sheet); err != nil {
				return err
			}
			return s.costSheetRepo.ReplaceChildren(tx, sheet)
		})
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("cost sheet saved",
		zap.String("deal_id", dealID.String()),
		zap.Int("version", sheet.Version),
		zap.Bool("new_version", req.CreateNewVersion))

	saved, err := s.costSheetRepo.GetLatestForDeal(ctx, dealID)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToCostSheetDTO(saved)
	return &dto, nil
}

func (s *CostSheetService) getDeal(ctx context.Context, dealID uuid.UUID) (*domain.Deal, error) {
	deal, err := s.dealRepo.GetByID(ctx, dealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: deal %s", ErrNotFound, dealID)
		}
		return nil, err
	}
	return deal, nil
}

func buildCostSheet(dealID uuid.UUID, req *domain.SaveCostSheetRequest, updatedBy string) *domain.CostSheet {
	sheet := &domain.CostSheet{
		DealID:               dealID,
		Revenue:              req.Revenue,
		FreightCost:          req.FreightCost,
		InstallationCost:     req.InstallationCost,
		GSTCost:              req.GSTCost,
		AdminOverheadPercent: req.AdminOverheadPercent,
		FinanceCost:          req.FinanceCost,
		InsuranceCost:        req.InsuranceCost,
		GemCost:              req.GemCost,
		MiscCost:             req.MiscCost,
		UpdatedBy:            updatedBy,
	}

	for _, p := range req.Products {
		sheet.Products = append(sheet.Products, domain.CostSheetProduct{
			Name:     p.Name,
			Qty:      p.Qty,
			OEMPrice: p.OEMPrice,
		})
	}
	for _, m := range req.Manpower {
		sheet.Manpower = append(sheet.Manpower, domain.CostSheetManpower{
			Profile:   m.Profile,
			Year1Cost: m.Year1Cost,
			Year2Cost: m.Year2Cost,
			Year3Cost: m.Year3Cost,
		})
	}
	for _, c := range req.Charges {
		sheet.Charges = append(sheet.Charges, domain.CostSheetCharge{
			Label:  c.Label,
			Amount: c.Amount,
		})
	}

	return sheet
}
