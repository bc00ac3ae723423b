package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BaseModel contains common fields for all models
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns the primary key in the application so the models work
// on every driver, not only Postgres with pgcrypto.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// UserRole represents the role of an authenticated user
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleSales UserRole = "sales"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleSales:
		return true
	}
	return false
}

// DealStage represents the pipeline stage of a deal
type DealStage string

const (
	StageNew         DealStage = "new"
	StageQualified   DealStage = "qualified"
	StageProposition DealStage = "proposition"
	StageWon         DealStage = "won"
	StageLost        DealStage = "lost"
)

func (s DealStage) IsValid() bool {
	switch s {
	case StageNew, StageQualified, StageProposition, StageWon, StageLost:
		return true
	}
	return false
}

// QuotationStatus represents the approval state of a quotation
type QuotationStatus string

const (
	QuotationPending  QuotationStatus = "pending"
	QuotationApproved QuotationStatus = "approved"
	QuotationRejected QuotationStatus = "rejected"
)

func (s QuotationStatus) IsValid() bool {
	switch s {
	case QuotationPending, QuotationApproved, QuotationRejected:
		return true
	}
	return false
}

// MarginType determines how the salesperson margin is applied to unit prices
type MarginType string

const (
	MarginPercentage MarginType = "percentage"
	MarginAmount     MarginType = "amount"
)

func (m MarginType) IsValid() bool {
	switch m {
	case MarginPercentage, MarginAmount:
		return true
	}
	return false
}

// LeadStatus represents the qualification state of a lead
type LeadStatus string

const (
	LeadNew          LeadStatus = "new"
	LeadContacted    LeadStatus = "contacted"
	LeadQualified    LeadStatus = "qualified"
	LeadDisqualified LeadStatus = "disqualified"
	LeadConverted    LeadStatus = "converted"
)

func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadNew, LeadContacted, LeadQualified, LeadDisqualified, LeadConverted:
		return true
	}
	return false
}

// Lead represents an unqualified prospect before conversion to a deal
type Lead struct {
	BaseModel
	Name      string     `gorm:"type:varchar(255);not null" json:"name"`
	Company   string     `gorm:"type:varchar(255)" json:"company"`
	Email     string     `gorm:"type:varchar(255)" json:"email"`
	Phone     string     `gorm:"type:varchar(50)" json:"phone"`
	Source    string     `gorm:"type:varchar(100)" json:"source"`
	Status    LeadStatus `gorm:"type:varchar(50);not null;default:'new';index" json:"status"`
	OwnerID   string     `gorm:"type:varchar(255);not null;index" json:"ownerId"`
	OwnerName string     `gorm:"type:varchar(255)" json:"ownerName"`
	Notes     string     `gorm:"type:text" json:"notes"`
}

// Deal represents a sales opportunity
type Deal struct {
	BaseModel
	DealNumber      string           `gorm:"type:varchar(50);uniqueIndex;not null" json:"dealNumber"`
	CustomerName    string           `gorm:"type:varchar(255);not null" json:"customerName"`
	ContactName     string           `gorm:"type:varchar(255)" json:"contactName"`
	ContactEmail    string           `gorm:"type:varchar(255)" json:"contactEmail"`
	ContactPhone    string           `gorm:"type:varchar(50)" json:"contactPhone"`
	Address         string           `gorm:"type:text" json:"address"`
	OEM             string           `gorm:"column:oem;type:varchar(255)" json:"oem"`
	ExpectedRevenue float64          `gorm:"type:decimal(15,2);default:0" json:"expectedRevenue"`
	MarginPercent   float64          `gorm:"type:decimal(5,2);default:0" json:"marginPercent"`
	Stage           DealStage        `gorm:"type:varchar(50);not null;default:'new';index" json:"stage"`
	QuotationStatus *QuotationStatus `gorm:"type:varchar(50);index" json:"quotationStatus"`
	OwnerID         string           `gorm:"type:varchar(255);not null;index" json:"ownerId"`
	OwnerName       string           `gorm:"type:varchar(255)" json:"ownerName"`
	LeadID          *uuid.UUID       `gorm:"type:uuid;index" json:"leadId,omitempty"`

	Quotations []Quotation    `gorm:"foreignKey:DealID" json:"quotations,omitempty"`
	Documents  []DealDocument `gorm:"foreignKey:DealID" json:"documents,omitempty"`
}

// Quotation represents a priced offer for a deal. It moves through an approval
// workflow: a salesperson requests it, an admin approves or rejects it.
type Quotation struct {
	BaseModel
	DealID                uuid.UUID       `gorm:"type:uuid;not null;index" json:"dealId"`
	Deal                  *Deal           `gorm:"foreignKey:DealID" json:"deal,omitempty"`
	Status                QuotationStatus `gorm:"type:varchar(50);not null;default:'pending';index" json:"status"`
	RequestedBy           string          `gorm:"type:varchar(255);not null;index" json:"requestedBy"`
	RequestedByName       string          `gorm:"type:varchar(255)" json:"requestedByName"`
	ApprovedBy            string          `gorm:"type:varchar(255)" json:"approvedBy"`
	Items                 []QuotationItem `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE" json:"items"`
	FreightCharge         float64         `gorm:"type:decimal(15,2);default:0" json:"freightCharge"`
	FreightGSTRate        float64         `gorm:"column:freight_gst_rate;type:decimal(5,2);default:0" json:"freightGstRate"`
	FreightAmount         float64         `gorm:"type:decimal(15,2);default:0" json:"freightAmount"`
	InstallationCharge    float64         `gorm:"type:decimal(15,2);default:0" json:"installationCharge"`
	InstallationGSTRate   float64         `gorm:"column:installation_gst_rate;type:decimal(5,2);default:0" json:"installationGstRate"`
	InstallationAmount    float64         `gorm:"type:decimal(15,2);default:0" json:"installationAmount"`
	MarginType            MarginType      `gorm:"type:varchar(50)" json:"marginType"`
	MarginValue           float64         `gorm:"type:decimal(15,2);default:0" json:"marginValue"`
	Amount                float64         `gorm:"type:decimal(15,2);default:0" json:"amount"`
	IsRead                bool            `gorm:"default:false;index" json:"isRead"`
	RemarksForAdmin       string          `gorm:"type:text" json:"remarksForAdmin"`
	RemarksForSalesperson string          `gorm:"type:text" json:"remarksForSalesperson"`
	ValidUntil            *time.Time      `json:"validUntil"`
}

// QuotationItem is a single line of a quotation. UnitPrice is the vendor price
// set at approval; TargetPrice is the salesperson's originally requested price
// and never changes after the request.
type QuotationItem struct {
	BaseModel
	QuotationID uuid.UUID `gorm:"type:uuid;not null;index" json:"quotationId"`
	Position    int       `gorm:"not null" json:"position"`
	ProductName string    `gorm:"type:varchar(255);not null" json:"productName"`
	Description string    `gorm:"type:text" json:"description"`
	Brand       string    `gorm:"type:varchar(255)" json:"brand"`
	Model       string    `gorm:"type:varchar(255)" json:"model"`
	Qty         int       `gorm:"not null;default:1" json:"qty"`
	UnitPrice   float64   `gorm:"type:decimal(15,2);default:0" json:"unitPrice"`
	TargetPrice float64   `gorm:"type:decimal(15,2);default:0" json:"targetPrice"`
	GSTRate     float64   `gorm:"column:gst_rate;type:decimal(5,2);default:0" json:"gstRate"`
	GSTAmount   float64   `gorm:"column:gst_amount;type:decimal(15,2);default:0" json:"gstAmount"`
	Total       float64   `gorm:"type:decimal(15,2);default:0" json:"total"`
}

// CostSheet captures the projected cost structure of a deal. Sheets are
// versioned; exactly one version per deal has IsLatest set.
type CostSheet struct {
	BaseModel
	DealID   uuid.UUID `gorm:"type:uuid;not null;index" json:"dealId"`
	Version  int       `gorm:"not null;default:1" json:"version"`
	IsLatest bool      `gorm:"default:true;index" json:"isLatest"`
	Revenue  float64   `gorm:"type:decimal(15,2);default:0" json:"revenue"`

	Products []CostSheetProduct  `gorm:"foreignKey:CostSheetID;constraint:OnDelete:CASCADE" json:"products"`
	Manpower []CostSheetManpower `gorm:"foreignKey:CostSheetID;constraint:OnDelete:CASCADE" json:"manpower"`
	Charges  []CostSheetCharge   `gorm:"foreignKey:CostSheetID;constraint:OnDelete:CASCADE" json:"charges"`

	FreightCost          float64 `gorm:"type:decimal(15,2);default:0" json:"freightCost"`
	InstallationCost     float64 `gorm:"type:decimal(15,2);default:0" json:"installationCost"`
	GSTCost              float64 `gorm:"column:gst_cost;type:decimal(15,2);default:0" json:"gstCost"`
	AdminOverheadPercent float64 `gorm:"type:decimal(5,2);default:0" json:"adminOverheadPercent"`
	FinanceCost          float64 `gorm:"type:decimal(15,2);default:0" json:"financeCost"`
	InsuranceCost        float64 `gorm:"type:decimal(15,2);default:0" json:"insuranceCost"`
	GemCost              float64 `gorm:"type:decimal(15,2);default:0" json:"gemCost"`
	MiscCost             float64 `gorm:"type:decimal(15,2);default:0" json:"miscCost"`

	UpdatedBy string `gorm:"type:varchar(255)" json:"updatedBy"`
}

// CostSheetProduct is a procured product line on a cost sheet
type CostSheetProduct struct {
	BaseModel
	CostSheetID uuid.UUID `gorm:"type:uuid;not null;index" json:"costSheetId"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Qty         int       `gorm:"not null;default:1" json:"qty"`
	OEMPrice    float64   `gorm:"column:oem_price;type:decimal(15,2);default:0" json:"oemPrice"`
}

// CostSheetManpower is a staffing cost line over a three year horizon
type CostSheetManpower struct {
	BaseModel
	CostSheetID uuid.UUID `gorm:"type:uuid;not null;index" json:"costSheetId"`
	Profile     string    `gorm:"type:varchar(255);not null" json:"profile"`
	Year1Cost   float64   `gorm:"type:decimal(15,2);default:0" json:"year1Cost"`
	Year2Cost   float64   `gorm:"type:decimal(15,2);default:0" json:"year2Cost"`
	Year3Cost   float64   `gorm:"type:decimal(15,2);default:0" json:"year3Cost"`
}

// CostSheetCharge is a free-form extra charge on a cost sheet
type CostSheetCharge struct {
	BaseModel
	CostSheetID uuid.UUID `gorm:"type:uuid;not null;index" json:"costSheetId"`
	Label       string    `gorm:"type:varchar(255);not null" json:"label"`
	Amount      float64   `gorm:"type:decimal(15,2);default:0" json:"amount"`
}

// Todo is a personal task item for a user
type Todo struct {
	BaseModel
	Title   string     `gorm:"type:varchar(255);not null" json:"title"`
	Notes   string     `gorm:"type:text" json:"notes"`
	DueDate *time.Time `json:"dueDate"`
	Done    bool       `gorm:"default:false" json:"done"`
	OwnerID string     `gorm:"type:varchar(255);not null;index" json:"ownerId"`
}

// DealDocument is an uploaded file (purchase orders etc.) attached to a deal
type DealDocument struct {
	BaseModel
	DealID      uuid.UUID `gorm:"type:uuid;not null;index" json:"dealId"`
	FileName    string    `gorm:"type:varchar(255);not null" json:"fileName"`
	ContentType string    `gorm:"type:varchar(100)" json:"contentType"`
	Size        int64     `gorm:"default:0" json:"size"`
	StoragePath string    `gorm:"type:varchar(500);not null" json:"-"`
	UploadedBy  string    `gorm:"type:varchar(255)" json:"uploadedBy"`
}

// NumberSequence tracks per-prefix, per-day counters for human readable
// document numbers such as OPP-250829-0001
type NumberSequence struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Prefix    string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_number_sequences_prefix_date"`
	Date      string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_number_sequences_prefix_date"`
	LastValue int       `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (n *NumberSequence) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
