// Package mapper converts persistence models into API DTOs. Margin-adjusted
// selling prices are computed here so stored vendor prices never leave the
// service layer unannotated.
package mapper

import (
	"github.com/venditio/crm-api/internal/domain"
	"github.com/venditio/crm-api/internal/pricing"
)

// ToQuotationItemDTO maps a quotation line, applying the parent quotation's
// margin to the selling price fields.
func ToQuotationItemDTO(item *domain.QuotationItem, marginType domain.MarginType, marginValue float64) domain.QuotationItemDTO {
	sellingPrice := pricing.MarginAdjustedUnitPrice(item.UnitPrice, marginType, marginValue)
	_, _, sellingTotal := pricing.LineItemTotals(item.Qty, sellingPrice, item.GSTRate)

	return domain.QuotationItemDTO{
		ID:           item.ID,
		Position:     item.Position,
		ProductName:  item.ProductName,
		Description:  item.Description,
		Brand:        item.Brand,
		Model:        item.Model,
		Qty:          item.Qty,
		UnitPrice:    item.UnitPrice,
		TargetPrice:  item.TargetPrice,
		GSTRate:      item.GSTRate,
		GSTAmount:    item.GSTAmount,
		Total:        item.Total,
		SellingPrice: sellingPrice,
		SellingTotal: sellingTotal,
	}
}

// ToQuotationDTO maps a quotation with its lines
func ToQuotationDTO(q *domain.Quotation) domain.QuotationDTO {
	dto := domain.QuotationDTO{
		ID:                    q.ID,
		DealID:                q.DealID,
		Status:                q.Status,
		RequestedBy:           q.RequestedBy,
		RequestedByName:       q.RequestedByName,
		ApprovedBy:            q.ApprovedBy,
		Items:                 make([]domain.QuotationItemDTO, 0, len(q.Items)),
		FreightCharge:         q.FreightCharge,
		FreightGSTRate:        q.FreightGSTRate,
		FreightAmount:         q.FreightAmount,
		InstallationCharge:    q.InstallationCharge,
		InstallationGSTRate:   q.InstallationGSTRate,
		InstallationAmount:    q.InstallationAmount,
		MarginType:            q.MarginType,
		MarginValue:           q.MarginValue,
		Amount:                q.Amount,
		IsRead:                q.IsRead,
		RemarksForAdmin:       q.RemarksForAdmin,
		RemarksForSalesperson: q.RemarksForSalesperson,
		ValidUntil:            q.ValidUntil,
		CreatedAt:             q.CreatedAt,
		UpdatedAt:             q.UpdatedAt,
	}

	if q.Deal != nil {
		dto.DealNumber = q.Deal.DealNumber
		dto.CustomerName = q.Deal.CustomerName
	}

	for i := range q.Items {
		dto.Items = append(dto.Items, ToQuotationItemDTO(&q.Items[i], q.MarginType, q.MarginValue))
	}

	return dto
}

// ToQuotationDTOs maps a slice of quotations
func ToQuotationDTOs(quotations []domain.Quotation) []domain.QuotationDTO {
	dtos := make([]domain.QuotationDTO, 0, len(quotations))
	for i := range quotations {
		dtos = append(dtos, ToQuotationDTO(&quotations[i]))
	}
	return dtos
}

// ToDealDTO maps a deal
func ToDealDTO(deal *domain.Deal) domain.DealDTO {
	return domain.DealDTO{
		ID:              deal.ID,
		DealNumber:      deal.DealNumber,
		CustomerName:    deal.CustomerName,
		ContactName:     deal.ContactName,
		ContactEmail:    deal.ContactEmail,
		ContactPhone:    deal.ContactPhone,
		Address:         deal.Address,
		OEM:             deal.OEM,
		ExpectedRevenue: deal.ExpectedRevenue,
		MarginPercent:   deal.MarginPercent,
		Stage:           deal.Stage,
		QuotationStatus: deal.QuotationStatus,
		OwnerID:         deal.OwnerID,
		OwnerName:       deal.OwnerName,
		LeadID:          deal.LeadID,
		CreatedAt:       deal.CreatedAt,
		UpdatedAt:       deal.UpdatedAt,
	}
}

// ToDealDTOs maps a slice of deals
func ToDealDTOs(deals []domain.Deal) []domain.DealDTO {
	dtos := make([]domain.DealDTO, 0, len(deals))
	for i := range deals {
		dtos = append(dtos, ToDealDTO(&deals[i]))
	}
	return dtos
}

// ToLeadDTO maps a lead
func ToLeadDTO(lead *domain.Lead) domain.LeadDTO {
	return domain.LeadDTO{
		ID:        lead.ID,
		Name:      lead.Name,
		Company:   lead.Company,
		Email:     lead.Email,
		Phone:     lead.Phone,
		Source:    lead.Source,
		Status:    lead.Status,
		OwnerID:   lead.OwnerID,
		OwnerName: lead.OwnerName,
		Notes:     lead.Notes,
		CreatedAt: lead.CreatedAt,
		UpdatedAt: lead.UpdatedAt,
	}
}

// ToLeadDTOs maps a slice of leads
func ToLeadDTOs(leads []domain.Lead) []domain.LeadDTO {
	dtos := make([]domain.LeadDTO, 0, len(leads))
	for i := range leads {
		dtos = append(dtos, ToLeadDTO(&leads[i]))
	}
	return dtos
}

// ToCostSheetDTO maps a cost sheet and fills the computed breakdown
func ToCostSheetDTO(cs *domain.CostSheet) domain.CostSheetDTO {
	breakdown := pricing.ComputeCostBreakdown(cs)

	return domain.CostSheetDTO{
		ID:       cs.ID,
		DealID:   cs.DealID,
		Version:  cs.Version,
		IsLatest: cs.IsLatest,
		Revenue:  cs.Revenue,

		Products: cs.Products,
		Manpower: cs.Manpower,
		Charges:  cs.Charges,

		FreightCost:          cs.FreightCost,
		InstallationCost:     cs.InstallationCost,
		GSTCost:              cs.GSTCost,
		AdminOverheadPercent: cs.AdminOverheadPercent,
		AdminOverheadValue:   breakdown.AdminOverheadValue,
		FinanceCost:          cs.FinanceCost,
		InsuranceCost:        cs.InsuranceCost,
		GemCost:              cs.GemCost,
		MiscCost:             cs.MiscCost,

		TotalProductCost:  breakdown.TotalProductCost,
		TotalManpowerCost: breakdown.TotalManpowerCost,
		TotalChargesCost:  breakdown.TotalChargesCost,
		TotalProjectCost:  breakdown.TotalProjectCost,
		NetMarginValue:    breakdown.NetMarginValue,
		NetMarginPercent:  breakdown.NetMarginPercent,

		UpdatedBy: cs.UpdatedBy,
		UpdatedAt: cs.UpdatedAt,
	}
}

// ToCostSheetDTOs maps a slice of cost sheet versions
func ToCostSheetDTOs(sheets []domain.CostSheet) []domain.CostSheetDTO {
	dtos := make([]domain.CostSheetDTO, 0, len(sheets))
	for i := range sheets {
		dtos = append(dtos, ToCostSheetDTO(&sheets[i]))
	}
	return dtos
}

// ToTodoDTO maps a todo
func ToTodoDTO(todo *domain.Todo) domain.TodoDTO {
	return domain.TodoDTO{
		ID:        todo.ID,
		Title:     todo.Title,
		Notes:     todo.Notes,
		DueDate:   todo.DueDate,
		Done:      todo.Done,
		CreatedAt: todo.CreatedAt,
		UpdatedAt: todo.UpdatedAt,
	}
}

// ToTodoDTOs maps a slice of todos
func ToTodoDTOs(todos []domain.Todo) []domain.TodoDTO {
	dtos := make([]domain.TodoDTO, 0, len(todos))
	for i := range todos {
		dtos = append(dtos, ToTodoDTO(&todos[i]))
	}
	return dtos
}

// ToDealDocumentDTO maps an uploaded document
func ToDealDocumentDTO(doc *domain.DealDocument) domain.DealDocumentDTO {
	return domain.DealDocumentDTO{
		ID:          doc.ID,
		DealID:      doc.DealID,
		FileName:    doc.FileName,
		ContentType: doc.ContentType,
		Size:        doc.Size,
		UploadedBy:  doc.UploadedBy,
		CreatedAt:   doc.CreatedAt,
	}
}

// ToDealDocumentDTOs maps a slice of documents
func ToDealDocumentDTOs(docs []domain.DealDocument) []domain.DealDocumentDTO {
	dtos := make([]domain.DealDocumentDTO, 0, len(docs))
	for i := range docs {
		dtos = append(dtos, ToDealDocumentDTO(&docs[i]))
	}
	return dtos
}
