package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/venditio/crm-api/internal/auth"
	"github.com/venditio/crm-api/internal/domain"
	"github.com/venditio/crm-api/internal/mapper"
	"github.com/venditio/crm-api/internal/pricing"
	"github.com/venditio/crm-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// validStatusTransitions is the single transition table for the approval
// workflow. Approve and reject both consult it, so a rejected quotation can
// be re-approved and an approved one revoked, while repeat approvals and
// repeat rejections fail.
var validStatusTransitions = map[domain.QuotationStatus][]domain.QuotationStatus{
	domain.QuotationPending:  {domain.QuotationApproved, domain.QuotationRejected},
	domain.QuotationRejected: {domain.QuotationApproved},
	domain.QuotationApproved: {domain.QuotationRejected},
}

// QuotationService implements the quotation request/approval workflow
type QuotationService struct {
	quotationRepo *repository.QuotationRepository
	dealRepo      *repository.DealRepository
	logger        *zap.Logger
}

// NewQuotationService creates a new QuotationService
func NewQuotationService(
	quotationRepo *repository.QuotationRepository,
	dealRepo *repository.DealRepository,
	logger *zap.Logger,
) *QuotationService {
	return &QuotationService{
		quotationRepo: quotationRepo,
		dealRepo:      dealRepo,
		logger:        logger,
	}
}

func validateTransition(from, to domain.QuotationStatus) error {
	for _, allowed := range validStatusTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	if from == domain.QuotationApproved && to == domain.QuotationApproved {
		return ErrQuotationAlreadyApproved
	}
	if from == domain.QuotationRejected && to == domain.QuotationRejected {
		return ErrQuotationAlreadyRejected
	}
	return fmt.Errorf("%w: cannot move quotation from %s to %s", ErrConflict, from, to)
}

// Request opens the workflow: a salesperson submits desired lines for a deal.
// The submitted price becomes both the initial unit price and the permanent
// target price; computed totals stay zero until approval. The deal's
// quotation status mirror is set to pending in the same transaction.
func (s *QuotationService) Request(ctx context.Context, req *domain.RequestQuotationRequest) (*domain.QuotationDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	if err := validateItemRates(req.Items); err != nil {
		return nil, err
	}

	deal, err := s.dealRepo.GetByID(ctx, req.DealID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: deal %s", ErrNotFound, req.DealID)
		}
		return nil, err
	}

	quotation := &domain.Quotation{
		DealID:          deal.ID,
		Status:          domain.QuotationPending,
		RequestedBy:     userCtx.UserID,
		RequestedByName: userCtx.DisplayName,
		RemarksForAdmin: req.RemarksForAdmin,
		ValidUntil:      req.ValidUntil,
		Items:           normalizeRequestedItems(req.Items),
	}

	err = s.quotationRepo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.quotationRepo.Create(tx, quotation); err != nil {
			return err
		}
		return s.dealRepo.UpdateQuotationStatus(tx, deal.ID, domain.QuotationPending)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("quotation requested",
		zap.String("quotation_id", quotation.ID.String()),
		zap.String("deal_id", deal.ID.String()),
		zap.String("requested_by", userCtx.UserID),
		zap.Int("items", len(quotation.Items)))

	return s.reload(ctx, quotation.ID)
}

// Approve finalizes pricing. The admin's payload carries vendor prices,
// brand/model corrections, GST rates and surcharges; target prices are
// carried over from the stored lines by position and never taken from the
// payload. Everything is recomputed through the calculator and written
// together with the deal status mirror in one transaction.
func (s *QuotationService) Approve(ctx context.Context, id uuid.UUID, req *domain.ApproveQuotationRequest) (*domain.QuotationDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: quotation %s", ErrNotFound, id)
		}
		return nil, err
	}

	if err := validateTransition(quotation.Status, domain.QuotationApproved); err != nil {
		return nil, err
	}

	items := make([]domain.QuotationItem, 0, len(req.Items))
	var amount float64
	for i, input := range req.Items {
		input.Normalize()
		if !pricing.ValidGSTRate(input.GSTRate) {
			return nil, fmt.Errorf("%w: invalid gst rate %.2f", ErrInvalidInput, input.GSTRate)
		}

		// The salesperson's original ask survives approval untouched.
		targetPrice := input.UnitPrice
		if i < len(quotation.Items) {
			targetPrice = quotation.Items[i].TargetPrice
		}

		_, gst, total := pricing.LineItemTotals(input.Qty, input.UnitPrice, input.GSTRate)
		items = append(items, domain.QuotationItem{
			ProductName: input.ProductName,
			Description: input.Description,
			Brand:       input.Brand,
			Model:       input.Model,
			Qty:         input.Qty,
			UnitPrice:   input.UnitPrice,
			TargetPrice: targetPrice,
			GSTRate:     input.GSTRate,
			GSTAmount:   gst,
			Total:       total,
		})
		amount += total
	}

	_, freightTotal := pricing.SurchargeTotals(req.FreightCharge, req.FreightGSTRate)
	_, installationTotal := pricing.SurchargeTotals(req.InstallationCharge, req.InstallationGSTRate)
	amount += freightTotal + installationTotal

	quotation.Status = domain.QuotationApproved
	quotation.ApprovedBy = userCtx.UserID
	quotation.FreightCharge = req.FreightCharge
	quotation.FreightGSTRate = req.FreightGSTRate
	quotation.FreightAmount = freightTotal
	quotation.InstallationCharge = req.InstallationCharge
	quotation.InstallationGSTRate = req.InstallationGSTRate
	quotation.InstallationAmount = installationTotal
	quotation.Amount = amount
	quotation.IsRead = false
	quotation.RemarksForSalesperson = req.RemarksForSalesperson
	if req.ValidUntil != nil {
		quotation.ValidUntil = req.ValidUntil
	}

	err = s.quotationRepo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.quotationRepo.Save(tx, quotation); err != nil {
			return err
		}
		if err := s.quotationRepo.ReplaceItems(tx, quotation.ID, items); err != nil {
			return err
		}
		return s.dealRepo.UpdateQuotationStatus(tx, quotation.DealID, domain.QuotationApproved)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("quotation approved",
		zap.String("quotation_id", quotation.ID.String()),
		zap.String("deal_id", quotation.DealID.String()),
		zap.String("approved_by", userCtx.UserID),
		zap.Float64("amount", amount))

	return s.reload(ctx, quotation.ID)
}

// Reject declines a pending quotation, or revokes an approved one. Stored
// lines are left as they are; only status, remarks and the read flag change.
func (s *QuotationService) Reject(ctx context.Context, id uuid.UUID, req *domain.RejectQuotationRequest) (*domain.QuotationDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: quotation %s", ErrNotFound, id)
		}
		return nil, err
	}

	if err := validateTransition(quotation.Status, domain.QuotationRejected); err != nil {
		return nil, err
	}

	quotation.Status = domain.QuotationRejected
	quotation.IsRead = false
	if req.RemarksForSalesperson != "" {
		quotation.RemarksForSalesperson = req.RemarksForSalesperson
	}

	err = s.quotationRepo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.quotationRepo.Save(tx, quotation); err != nil {
			return err
		}
		return s.dealRepo.UpdateQuotationStatus(tx, quotation.DealID, domain.QuotationRejected)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("quotation rejected",
		zap.String("quotation_id", quotation.ID.String()),
		zap.String("deal_id", quotation.DealID.String()),
		zap.String("rejected_by", userCtx.UserID))

	return s.reload(ctx, quotation.ID)
}

// Update replaces the requested lines of a still-pending quotation. Only the
// requesting salesperson or an admin may edit; anything past pending is
// immutable through this path.
func (s *QuotationService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateQuotationRequest) (*domain.QuotationDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: quotation %s", ErrNotFound, id)
		}
		return nil, err
	}

	if !userCtx.CanActOn(quotation.RequestedBy) {
		return nil, ErrPermissionDenied
	}
	if quotation.Status != domain.QuotationPending {
		return nil, ErrQuotationNotPending
	}
	if err := validateItemRates(req.Items); err != nil {
		return nil, err
	}

	quotation.RemarksForAdmin = req.RemarksForAdmin
	if req.ValidUntil != nil {
		quotation.ValidUntil = req.ValidUntil
	}
	items := normalizeRequestedItems(req.Items)

	err = s.quotationRepo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.quotationRepo.Save(tx, quotation); err != nil {
			return err
		}
		return s.quotationRepo.ReplaceItems(tx, quotation.ID, items)
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, quotation.ID)
}

// SetMargin stores the salesperson margin on an approved quotation. Stored
// lines and the pre-margin amount stay untouched; the margin is applied at
// render time.
func (s *QuotationService) SetMargin(ctx context.Context, id uuid.UUID, req *domain.SetMarginRequest) (*domain.QuotationDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: quotation %s", ErrNotFound, id)
		}
		return nil, err
	}

	if !userCtx.CanActOn(quotation.RequestedBy) {
		return nil, ErrPermissionDenied
	}
	if quotation.Status != domain.QuotationApproved {
		return nil, ErrQuotationNotApproved
	}

	quotation.MarginType = req.MarginType
	quotation.MarginValue = req.MarginValue

	err = s.quotationRepo.WithTransaction(ctx, func(tx *gorm.DB) error {
		return s.quotationRepo.Save(tx, quotation)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("quotation margin set",
		zap.String("quotation_id", quotation.ID.String()),
		zap.String("margin_type", string(req.MarginType)),
		zap.Float64("margin_value", req.MarginValue))

	return s.reload(ctx, quotation.ID)
}

// GetByID returns a quotation. Salespeople only see their own requests.
func (s *QuotationService) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuotationDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: quotation %s", ErrNotFound, id)
		}
		return nil, err
	}

	if !userCtx.CanActOn(quotation.RequestedBy) {
		return nil, ErrPermissionDenied
	}

	dto := mapper.ToQuotationDTO(quotation)
	return &dto, nil
}

// GetForRender returns the full quotation entity for PDF generation. Only
// approved quotations can be rendered as customer documents.
func (s *QuotationService) GetForRender(ctx context.Context, id uuid.UUID) (*domain.Quotation, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: quotation %s", ErrNotFound, id)
		}
		return nil, err
	}

	if !userCtx.CanActOn(quotation.RequestedBy) {
		return nil, ErrPermissionDenied
	}
	if quotation.Status != domain.QuotationApproved {
		return nil, ErrQuotationNotApproved
	}
	return quotation, nil
}

// List returns quotations, optionally filtered by status. Admins see
// everything; salespeople are scoped to their own requests.
func (s *QuotationService) List(ctx context.Context, status *domain.QuotationStatus) ([]domain.QuotationDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	filters := &repository.QuotationFilters{Status: status}
	if !userCtx.IsAdmin() {
		filters.RequestedBy = &userCtx.UserID
	}

	quotations, err := s.quotationRepo.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	return mapper.ToQuotationDTOs(quotations), nil
}

// ListForDeal returns every quotation of a deal
func (s *QuotationService) ListForDeal(ctx context.Context, dealID uuid.UUID) ([]domain.QuotationDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	filters := &repository.QuotationFilters{DealID: &dealID}
	if !userCtx.IsAdmin() {
		filters.RequestedBy = &userCtx.UserID
	}

	quotations, err := s.quotationRepo.List(ctx, filters)
	if err != nil {
		return nil, err
	}
	return mapper.ToQuotationDTOs(quotations), nil
}

// PendingCount returns the approval queue length for the admin dashboard
func (s *QuotationService) PendingCount(ctx context.Context) (*domain.PendingCountDTO, error) {
	count, err := s.quotationRepo.CountPending(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.PendingCountDTO{PendingCount: count}, nil
}

// NotificationStats returns the caller's unread approved quotations
func (s *QuotationService) NotificationStats(ctx context.Context) (*domain.NotificationStatsDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	count, err := s.quotationRepo.CountUnreadApproved(ctx, userCtx.UserID)
	if err != nil {
		return nil, err
	}

	quotations, err := s.quotationRepo.ListUnreadApproved(ctx, userCtx.UserID)
	if err != nil {
		return nil, err
	}

	return &domain.NotificationStatsDTO{
		UnreadCount: count,
		Quotations:  mapper.ToQuotationDTOs(quotations),
	}, nil
}

// MarkRead acknowledges approved quotations for the caller. With ids, only
// those quotations are flagged; without, all of the caller's. Ownership is
// enforced in the repository's WHERE clause either way, never trusted from
// the payload, so foreign ids are silently skipped.
func (s *QuotationService) MarkRead(ctx context.Context, ids []uuid.UUID) (int64, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return 0, ErrUnauthorized
	}
	if len(ids) == 0 {
		return s.quotationRepo.MarkAllAsRead(ctx, userCtx.UserID)
	}
	return s.quotationRepo.MarkAsRead(ctx, userCtx.UserID, ids)
}

// ReconcileDealStatuses re-derives each deal's quotation status mirror from
// its most recently updated quotation, repairing any drift left behind by
// failed writes or manual data fixes. Returns the number of deals corrected.
func (s *QuotationService) ReconcileDealStatuses(ctx context.Context) (int, error) {
	quotations, err := s.quotationRepo.ListHeaders(ctx)
	if err != nil {
		return 0, err
	}

	// Ordered by updated_at ASC, so the last write per deal wins.
	latest := make(map[uuid.UUID]domain.QuotationStatus, len(quotations))
	for _, q := range quotations {
		latest[q.DealID] = q.Status
	}

	deals, err := s.dealRepo.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for i := range deals {
		deal := &deals[i]
		want, ok := latest[deal.ID]
		if !ok {
			continue
		}
		if deal.QuotationStatus != nil && *deal.QuotationStatus == want {
			continue
		}

		err := s.dealRepo.WithTransaction(ctx, func(tx *gorm.DB) error {
			return s.dealRepo.UpdateQuotationStatus(tx, deal.ID, want)
		})
		if err != nil {
			s.logger.Error("failed to reconcile deal quotation status",
				zap.String("deal_id", deal.ID.String()),
				zap.Error(err))
			continue
		}

		s.logger.Warn("repaired drifted deal quotation status",
			zap.String("deal_id", deal.ID.String()),
			zap.String("status", string(want)))
		updated++
	}

	return updated, nil
}

// validateItemRates rejects GST rates outside the allowed slabs. Handlers
// validate the same thing through the gstrate tag; this is the guard for
// callers that reach the service directly.
func validateItemRates(inputs []domain.QuotationItemInput) error {
	for _, input := range inputs {
		if !pricing.ValidGSTRate(input.GSTRate) {
			return fmt.Errorf("%w: invalid gst rate %.2f", ErrInvalidInput, input.GSTRate)
		}
	}
	return nil
}

// normalizeRequestedItems maps submitted lines into storage form for the
// request/update path: the asked price seeds both unit and target price,
// computed fields stay zero until approval.
func normalizeRequestedItems(inputs []domain.QuotationItemInput) []domain.QuotationItem {
	items := make([]domain.QuotationItem, 0, len(inputs))
	for i, input := range inputs {
		input.Normalize()
		items = append(items, domain.QuotationItem{
			Position:    i,
			ProductName: input.ProductName,
			Description: input.Description,
			Brand:       input.Brand,
			Model:       input.Model,
			Qty:         input.Qty,
			UnitPrice:   input.UnitPrice,
			TargetPrice: input.UnitPrice,
			GSTRate:     input.GSTRate,
		})
	}
	return items
}

func (s *QuotationService) reload(ctx context.Context, id uuid.UUID) (*domain.QuotationDTO, error) {
	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToQuotationDTO(quotation)
	return &dto, nil
}
