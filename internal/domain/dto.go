package domain

import (
	"time"

	"github.com/google/uuid"
)

// ---- Quotation workflow ----

// QuotationItemInput is a quotation line as submitted by clients. Older
// frontends send quantity/price instead of qty/unitPrice; Normalize folds the
// aliases into the canonical fields so nothing past the handler sees them.
type QuotationItemInput struct {
	ProductName string  `json:"productName" validate:"required"`
	Description string  `json:"description"`
	Brand       string  `json:"brand"`
	Model       string  `json:"model"`
	Qty         int     `json:"qty" validate:"omitempty,gte=1"`
	Quantity    int     `json:"quantity" validate:"omitempty,gte=1"`
	UnitPrice   float64 `json:"unitPrice" validate:"omitempty,gte=0"`
	Price       float64 `json:"price" validate:"omitempty,gte=0"`
	GSTRate     float64 `json:"gstRate" validate:"gstrate"`
}

// Normalize resolves legacy field aliases. Canonical fields win when both are
// present.
func (i *QuotationItemInput) Normalize() {
	if i.Qty == 0 && i.Quantity > 0 {
		i.Qty = i.Quantity
	}
	if i.Qty == 0 {
		i.Qty = 1
	}
	if i.UnitPrice == 0 && i.Price > 0 {
		i.UnitPrice = i.Price
	}
}

// RequestQuotationRequest opens the approval workflow for a deal
type RequestQuotationRequest struct {
	DealID          uuid.UUID            `json:"dealId" validate:"required"`
	Items           []QuotationItemInput `json:"items" validate:"required,min=1,dive"`
	RemarksForAdmin string               `json:"remarksForAdmin"`
	ValidUntil      *time.Time           `json:"validUntil"`
}

// ApproveQuotationRequest carries the admin's final pricing
type ApproveQuotationRequest struct {
	Items                 []QuotationItemInput `json:"items" validate:"required,min=1,dive"`
	FreightCharge         float64              `json:"freightCharge" validate:"gte=0"`
	FreightGSTRate        float64              `json:"freightGstRate" validate:"gstrate"`
	InstallationCharge    float64              `json:"installationCharge" validate:"gte=0"`
	InstallationGSTRate   float64              `json:"installationGstRate" validate:"gstrate"`
	RemarksForSalesperson string               `json:"remarksForSalesperson"`
	ValidUntil            *time.Time           `json:"validUntil"`
}

// RejectQuotationRequest carries the optional rejection remarks
type RejectQuotationRequest struct {
	RemarksForSalesperson string `json:"remarksForSalesperson"`
}

// UpdateQuotationRequest replaces the requested lines while the quotation is
// still pending
type UpdateQuotationRequest struct {
	Items           []QuotationItemInput `json:"items" validate:"required,min=1,dive"`
	RemarksForAdmin string               `json:"remarksForAdmin"`
	ValidUntil      *time.Time           `json:"validUntil"`
}

// SetMarginRequest stores the salesperson margin on an approved quotation
type SetMarginRequest struct {
	MarginType  MarginType `json:"marginType" validate:"required,oneof=percentage amount"`
	MarginValue float64    `json:"marginValue" validate:"gte=0"`
}

// QuotationItemDTO is the API representation of a quotation line.
// SellingPrice and SellingTotal have the salesperson margin applied;
// UnitPrice remains the stored vendor price.
type QuotationItemDTO struct {
	ID           uuid.UUID `json:"id"`
	Position     int       `json:"position"`
	ProductName  string    `json:"productName"`
	Description  string    `json:"description,omitempty"`
	Brand        string    `json:"brand,omitempty"`
	Model        string    `json:"model,omitempty"`
	Qty          int       `json:"qty"`
	UnitPrice    float64   `json:"unitPrice"`
	TargetPrice  float64   `json:"targetPrice"`
	GSTRate      float64   `json:"gstRate"`
	GSTAmount    float64   `json:"gstAmount"`
	Total        float64   `json:"total"`
	SellingPrice float64   `json:"sellingPrice"`
	SellingTotal float64   `json:"sellingTotal"`
}

// QuotationDTO is the API representation of a quotation
type QuotationDTO struct {
	ID                    uuid.UUID          `json:"id"`
	DealID                uuid.UUID          `json:"dealId"`
	DealNumber            string             `json:"dealNumber,omitempty"`
	CustomerName          string             `json:"customerName,omitempty"`
	Status                QuotationStatus    `json:"status"`
	RequestedBy           string             `json:"requestedBy"`
	RequestedByName       string             `json:"requestedByName,omitempty"`
	ApprovedBy            string             `json:"approvedBy,omitempty"`
	Items                 []QuotationItemDTO `json:"items"`
	FreightCharge         float64            `json:"freightCharge"`
	FreightGSTRate        float64            `json:"freightGstRate"`
	FreightAmount         float64            `json:"freightAmount"`
	InstallationCharge    float64            `json:"installationCharge"`
	InstallationGSTRate   float64            `json:"installationGstRate"`
	InstallationAmount    float64            `json:"installationAmount"`
	MarginType            MarginType         `json:"marginType,omitempty"`
	MarginValue           float64            `json:"marginValue"`
	Amount                float64            `json:"amount"`
	IsRead                bool               `json:"isRead"`
	RemarksForAdmin       string             `json:"remarksForAdmin,omitempty"`
	RemarksForSalesperson string             `json:"remarksForSalesperson,omitempty"`
	ValidUntil            *time.Time         `json:"validUntil,omitempty"`
	CreatedAt             time.Time          `json:"createdAt"`
	UpdatedAt             time.Time          `json:"updatedAt"`
}

// MarkReadRequest acknowledges approved quotations. With no ids, every
// approved quotation of the caller is marked read.
type MarkReadRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

// NotificationStatsDTO reports unread approved quotations for the caller
type NotificationStatsDTO struct {
	UnreadCount int64          `json:"unreadCount"`
	Quotations  []QuotationDTO `json:"quotations"`
}

// PendingCountDTO reports the admin approval queue length
type PendingCountDTO struct {
	PendingCount int64 `json:"pendingCount"`
}

// ---- Deals ----

// CreateDealRequest creates a deal directly (without a lead)
type CreateDealRequest struct {
	CustomerName    string  `json:"customerName" validate:"required"`
	ContactName     string  `json:"contactName"`
	ContactEmail    string  `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone    string  `json:"contactPhone"`
	Address         string  `json:"address"`
	OEM             string  `json:"oem"`
	ExpectedRevenue float64 `json:"expectedRevenue" validate:"gte=0"`
	MarginPercent   float64 `json:"marginPercent" validate:"gte=0,lte=100"`
}

// UpdateDealRequest updates mutable deal fields. Pointers distinguish absent
// from zero values.
type UpdateDealRequest struct {
	CustomerName    *string    `json:"customerName" validate:"omitempty,min=1"`
	ContactName     *string    `json:"contactName"`
	ContactEmail    *string    `json:"contactEmail" validate:"omitempty,email"`
	ContactPhone    *string    `json:"contactPhone"`
	Address         *string    `json:"address"`
	OEM             *string    `json:"oem"`
	ExpectedRevenue *float64   `json:"expectedRevenue" validate:"omitempty,gte=0"`
	MarginPercent   *float64   `json:"marginPercent" validate:"omitempty,gte=0,lte=100"`
	Stage           *DealStage `json:"stage" validate:"omitempty,oneof=new qualified proposition won lost"`
}

// DealDTO is the API representation of a deal
type DealDTO struct {
	ID              uuid.UUID        `json:"id"`
	DealNumber      string           `json:"dealNumber"`
	CustomerName    string           `json:"customerName"`
	ContactName     string           `json:"contactName,omitempty"`
	ContactEmail    string           `json:"contactEmail,omitempty"`
	ContactPhone    string           `json:"contactPhone,omitempty"`
	Address         string           `json:"address,omitempty"`
	OEM             string           `json:"oem,omitempty"`
	ExpectedRevenue float64          `json:"expectedRevenue"`
	MarginPercent   float64          `json:"marginPercent"`
	Stage           DealStage        `json:"stage"`
	QuotationStatus *QuotationStatus `json:"quotationStatus,omitempty"`
	OwnerID         string           `json:"ownerId"`
	OwnerName       string           `json:"ownerName,omitempty"`
	LeadID          *uuid.UUID       `json:"leadId,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// PipelineStageStatsDTO aggregates deals in one stage
type PipelineStageStatsDTO struct {
	Stage        DealStage `json:"stage"`
	Count        int64     `json:"count"`
	TotalRevenue float64   `json:"totalRevenue"`
}

// PipelineStatsDTO is the pipeline overview for the dashboard
type PipelineStatsDTO struct {
	Stages     []PipelineStageStatsDTO `json:"stages"`
	TotalDeals int64                   `json:"totalDeals"`
}

// ---- Leads ----

type CreateLeadRequest struct {
	Name    string `json:"name" validate:"required"`
	Company string `json:"company"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone"`
	Source  string `json:"source"`
	Notes   string `json:"notes"`
}

type UpdateLeadRequest struct {
	Name    *string     `json:"name" validate:"omitempty,min=1"`
	Company *string     `json:"company"`
	Email   *string     `json:"email" validate:"omitempty,email"`
	Phone   *string     `json:"phone"`
	Source  *string     `json:"source"`
	Status  *LeadStatus `json:"status" validate:"omitempty,oneof=new contacted qualified disqualified"`
	Notes   *string     `json:"notes"`
}

// ConvertLeadRequest creates a deal from a qualified lead
type ConvertLeadRequest struct {
	ExpectedRevenue float64 `json:"expectedRevenue" validate:"gte=0"`
	OEM             string  `json:"oem"`
}

type LeadDTO struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Company   string     `json:"company,omitempty"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Source    string     `json:"source,omitempty"`
	Status    LeadStatus `json:"status"`
	OwnerID   string     `json:"ownerId"`
	OwnerName string     `json:"ownerName,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ---- Cost sheets ----

type CostSheetProductInput struct {
	Name     string  `json:"name" validate:"required"`
	Qty      int     `json:"qty" validate:"gte=1"`
	OEMPrice float64 `json:"oemPrice" validate:"gte=0"`
}

type CostSheetManpowerInput struct {
	Profile   string  `json:"profile" validate:"required"`
	Year1Cost float64 `json:"year1Cost" validate:"gte=0"`
	Year2Cost float64 `json:"year2Cost" validate:"gte=0"`
	Year3Cost float64 `json:"year3Cost" validate:"gte=0"`
}

type CostSheetChargeInput struct {
	Label  string  `json:"label" validate:"required"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

// SaveCostSheetRequest writes a cost sheet for a deal. With CreateNewVersion
// the previous latest version is kept and a new one branched off.
type SaveCostSheetRequest struct {
	Revenue              float64                  `json:"revenue" validate:"gte=0"`
	Products             []CostSheetProductInput  `json:"products" validate:"dive"`
	Manpower             []CostSheetManpowerInput `json:"manpower" validate:"dive"`
	Charges              []CostSheetChargeInput   `json:"charges" validate:"dive"`
	FreightCost          float64                  `json:"freightCost" validate:"gte=0"`
	InstallationCost     float64                  `json:"installationCost" validate:"gte=0"`
	GSTCost              float64                  `json:"gstCost" validate:"gte=0"`
	AdminOverheadPercent float64                  `json:"adminOverheadPercent" validate:"gte=0,lte=100"`
	FinanceCost          float64                  `json:"financeCost" validate:"gte=0"`
	InsuranceCost        float64                  `json:"insuranceCost" validate:"gte=0"`
	GemCost              float64                  `json:"gemCost" validate:"gte=0"`
	MiscCost             float64                  `json:"miscCost" validate:"gte=0"`
	CreateNewVersion     bool                     `json:"createNewVersion"`
}

type CostSheetDTO struct {
	ID       uuid.UUID `json:"id"`
	DealID   uuid.UUID `json:"dealId"`
	Version  int       `json:"version"`
	IsLatest bool      `json:"isLatest"`
	Revenue  float64   `json:"revenue"`

	Products []CostSheetProduct  `json:"products"`
	Manpower []CostSheetManpower `json:"manpower"`
	Charges  []CostSheetCharge   `json:"charges"`

	FreightCost          float64 `json:"freightCost"`
	InstallationCost     float64 `json:"installationCost"`
	GSTCost              float64 `json:"gstCost"`
	AdminOverheadPercent float64 `json:"adminOverheadPercent"`
	AdminOverheadValue   float64 `json:"adminOverheadValue"`
	FinanceCost          float64 `json:"financeCost"`
	InsuranceCost        float64 `json:"insuranceCost"`
	GemCost              float64 `json:"gemCost"`
	MiscCost             float64 `json:"miscCost"`

	TotalProductCost  float64 `json:"totalProductCost"`
	TotalManpowerCost float64 `json:"totalManpowerCost"`
	TotalChargesCost  float64 `json:"totalChargesCost"`
	TotalProjectCost  float64 `json:"totalProjectCost"`
	NetMarginValue    float64 `json:"netMarginValue"`
	NetMarginPercent  float64 `json:"netMarginPercent"`

	UpdatedBy string    `json:"updatedBy,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ---- Todos ----

type CreateTodoRequest struct {
	Title   string     `json:"title" validate:"required"`
	Notes   string     `json:"notes"`
	DueDate *time.Time `json:"dueDate"`
}

type UpdateTodoRequest struct {
	Title   *string    `json:"title" validate:"omitempty,min=1"`
	Notes   *string    `json:"notes"`
	DueDate *time.Time `json:"dueDate"`
	Done    *bool      `json:"done"`
}

type TodoDTO struct {
	ID        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Notes     string     `json:"notes,omitempty"`
	DueDate   *time.Time `json:"dueDate,omitempty"`
	Done      bool       `json:"done"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ---- Documents ----

type DealDocumentDTO struct {
	ID          uuid.UUID `json:"id"`
	DealID      uuid.UUID `json:"dealId"`
	FileName    string    `json:"fileName"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UploadedBy  string    `json:"uploadedBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ---- Shared ----

// PaginatedResponse wraps list results with paging metadata
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// ---- Auth ----

// UserDTO describes the authenticated caller (GET /auth/me)
type UserDTO struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"displayName"`
	Email       string   `json:"email"`
	Role        UserRole `json:"role"`
}
