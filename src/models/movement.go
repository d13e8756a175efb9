package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ============ ADJUSTMENT ============
// Adjustment is immutable; its stock effect is applied once at creation.
type Adjustment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Reference   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"reference"`
	ItemID      uint      `gorm:"not null;index" json:"item_id"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	Reason      string    `gorm:"type:text;not null" json:"reason"`
	ActorID     uint      `gorm:"not null" json:"actor_id"`
	InStore     bool      `gorm:"not null" json:"in_store"`
	StoreID     *uint     `gorm:"index" json:"store_id,omitempty"`
	SalePointID *uint     `gorm:"index" json:"sale_point_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	Item      *Item      `gorm:"foreignKey:ItemID;constraint:OnDelete:RESTRICT" json:"-"`
	Store     *Store     `gorm:"foreignKey:StoreID;constraint:OnDelete:RESTRICT" json:"-"`
	SalePoint *SalePoint `gorm:"foreignKey:SalePointID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (Adjustment) TableName() string {
	return "adjustments"
}

func (a *Adjustment) BeforeCreate(*gorm.DB) error {
	ensureReference(&a.Reference)
	return nil
}

func (a Adjustment) Location() Location {
	if a.InStore && a.StoreID != nil {
		return StoreLocation(*a.StoreID)
	}
	if a.SalePointID != nil {
		return SalePointLocation(*a.SalePointID)
	}
	return Location{}
}

// ============ REQUISITION ============
type Requisition struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Reference    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"reference"`
	DepartmentID uint       `gorm:"not null;index" json:"department_id"`
	ActorID      uint       `gorm:"not null" json:"actor_id"`
	Approved     bool       `gorm:"not null" json:"approved"`
	ApprovedByID *uint      `json:"approved_by_id,omitempty"`
	ApprovedDate *time.Time `json:"approved_date,omitempty"`
	Funded       bool       `gorm:"not null" json:"funded"`
	FundedByID   *uint      `json:"funded_by_id,omitempty"`
	FundedDate   *time.Time `json:"funded_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`

	Items []RequisitionItem `gorm:"foreignKey:RequisitionID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Requisition) TableName() string {
	return "requisitions"
}

func (r *Requisition) BeforeCreate(*gorm.DB) error {
	ensureReference(&r.Reference)
	return nil
}

func (r Requisition) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, line := range r.Items {
		total = total.Add(line.TotalCost)
	}
	return total
}

type RequisitionItem struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	RequisitionID  uint            `gorm:"not null;index" json:"requisition_id"`
	ItemID         uint            `gorm:"not null;index" json:"item_id"`
	UnitID         uint            `gorm:"not null" json:"unit_id"`
	AvailableStock int             `gorm:"not null" json:"available_stock"`
	Quantity       int             `gorm:"not null" json:"quantity"`
	UnitCost       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_cost"`
	TotalCost      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_cost"`

	Item *Item     `gorm:"foreignKey:ItemID;constraint:OnDelete:RESTRICT" json:"-"`
	Unit *ItemUnit `gorm:"foreignKey:UnitID;constraint:OnDelete:RESTRICT" json:"unit,omitempty"`
}

func (RequisitionItem) TableName() string {
	return "requisition_items"
}

// ============ RECEIVING ============
type Receiving struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Reference    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"reference"`
	SupplierID   uint      `gorm:"not null;index" json:"supplier_id"`
	DepartmentID uint      `gorm:"not null;index" json:"department_id"`
	ActorID      uint      `gorm:"not null" json:"actor_id"`
	IsStore      bool      `gorm:"not null" json:"is_store"`
	StoreID      *uint     `gorm:"index" json:"store_id,omitempty"`
	SalePointID  *uint     `gorm:"index" json:"sale_point_id,omitempty"`
	Notes        string    `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Supplier  *Supplier      `gorm:"foreignKey:SupplierID;constraint:OnDelete:RESTRICT" json:"-"`
	Store     *Store         `gorm:"foreignKey:StoreID;constraint:OnDelete:RESTRICT" json:"-"`
	SalePoint *SalePoint     `gorm:"foreignKey:SalePointID;constraint:OnDelete:RESTRICT" json:"-"`
	Items     []ReceivedItem `gorm:"foreignKey:ReceivingID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Receiving) TableName() string {
	return "receivings"
}

func (r *Receiving) BeforeCreate(*gorm.DB) error {
	ensureReference(&r.Reference)
	return nil
}

// Destination is the location credited by the receiving's lines.
func (r Receiving) Destination() Location {
	if r.IsStore && r.StoreID != nil {
		return StoreLocation(*r.StoreID)
	}
	if !r.IsStore && r.SalePointID != nil {
		return SalePointLocation(*r.SalePointID)
	}
	return Location{}
}

func (r Receiving) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, line := range r.Items {
		total = total.Add(line.TotalCost)
	}
	return total
}

type ReceivedItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ReceivingID uint            `gorm:"not null;index" json:"receiving_id"`
	ItemID      uint            `gorm:"not null;index" json:"item_id"`
	UnitID      uint            `gorm:"not null" json:"unit_id"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	TotalCost   decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_cost"`

	Item *Item     `gorm:"foreignKey:ItemID;constraint:OnDelete:RESTRICT" json:"-"`
	Unit *ItemUnit `gorm:"foreignKey:UnitID;constraint:OnDelete:RESTRICT" json:"unit,omitempty"`
}

func (ReceivedItem) TableName() string {
	return "received_items"
}

// ============ TRANSFER ============
type TransferType string

const (
	TransferStoreToStore         TransferType = "store_to_store"
	TransferSalePointToSalePoint TransferType = "salepoint_to_salepoint"
	TransferSalePointToStore     TransferType = "salepoint_to_store"
)

func (t TransferType) Valid() bool {
	switch t {
	case TransferStoreToStore, TransferSalePointToSalePoint, TransferSalePointToStore:
		return true
	}
	return false
}

type Transfer struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	Reference       uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex" json:"reference"`
	TransferType    TransferType `gorm:"type:varchar(30);not null" json:"transfer_type"`
	FromStoreID     *uint        `gorm:"index" json:"from_store_id,omitempty"`
	ToStoreID       *uint        `gorm:"index" json:"to_store_id,omitempty"`
	FromSalePointID *uint        `gorm:"index" json:"from_salepoint_id,omitempty"`
	ToSalePointID   *uint        `gorm:"index" json:"to_salepoint_id,omitempty"`
	ActorID         uint         `gorm:"not null" json:"actor_id"`
	Notes           *string      `gorm:"type:text" json:"notes,omitempty"`
	Completed       bool         `gorm:"not null;index" json:"completed"`
	CompletedAt     *time.Time   `json:"completed_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`

	FromStore     *Store         `gorm:"foreignKey:FromStoreID;constraint:OnDelete:RESTRICT" json:"-"`
	ToStore       *Store         `gorm:"foreignKey:ToStoreID;constraint:OnDelete:RESTRICT" json:"-"`
	FromSalePoint *SalePoint     `gorm:"foreignKey:FromSalePointID;constraint:OnDelete:RESTRICT" json:"-"`
	ToSalePoint   *SalePoint     `gorm:"foreignKey:ToSalePointID;constraint:OnDelete:RESTRICT" json:"-"`
	Items         []TransferItem `gorm:"foreignKey:TransferID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Transfer) TableName() string {
	return "transfers"
}

func (t *Transfer) BeforeCreate(*gorm.DB) error {
	ensureReference(&t.Reference)
	return nil
}

type TransferItem struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	TransferID uint `gorm:"not null;index" json:"transfer_id"`
	ItemID     uint `gorm:"not null;index" json:"item_id"`
	UnitID     uint `gorm:"not null" json:"unit_id"`
	Quantity   int  `gorm:"not null" json:"quantity"`

	Item *Item     `gorm:"foreignKey:ItemID;constraint:OnDelete:RESTRICT" json:"-"`
	Unit *ItemUnit `gorm:"foreignKey:UnitID;constraint:OnDelete:RESTRICT" json:"unit,omitempty"`
}

func (TransferItem) TableName() string {
	return "transfer_items"
}

// ============ ISSUE ============
type IssueStatus string

const (
	IssuePending   IssueStatus = "pending"
	IssueApproved  IssueStatus = "approved"
	IssueCompleted IssueStatus = "completed"
	IssueRejected  IssueStatus = "rejected"
)

// Issue moves stock from a store to a sale point once approved and completed.
type Issue struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	Reference     uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex" json:"reference"`
	StoreID       uint        `gorm:"not null;index" json:"store_id"`
	SalePointID   uint        `gorm:"not null;index" json:"sale_point_id"`
	RequestedByID uint        `gorm:"not null" json:"requested_by_id"`
	ApprovedByID  *uint       `json:"approved_by_id,omitempty"`
	CompletedByID *uint       `json:"completed_by_id,omitempty"`
	Status        IssueStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Notes         *string     `gorm:"type:text" json:"notes,omitempty"`
	CompletedDate *time.Time  `json:"completed_date,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`

	Store     *Store       `gorm:"foreignKey:StoreID;constraint:OnDelete:RESTRICT" json:"-"`
	SalePoint *SalePoint   `gorm:"foreignKey:SalePointID;constraint:OnDelete:RESTRICT" json:"-"`
	Items     []IssuedItem `gorm:"foreignKey:IssueID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Issue) TableName() string {
	return "issues"
}

func (i *Issue) BeforeCreate(*gorm.DB) error {
	ensureReference(&i.Reference)
	return nil
}

type IssuedItem struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	IssueID  uint `gorm:"not null;index" json:"issue_id"`
	ItemID   uint `gorm:"not null;index" json:"item_id"`
	UnitID   uint `gorm:"not null" json:"unit_id"`
	Quantity int  `gorm:"not null" json:"quantity"`

	Item *Item     `gorm:"foreignKey:ItemID;constraint:OnDelete:RESTRICT" json:"-"`
	Unit *ItemUnit `gorm:"foreignKey:UnitID;constraint:OnDelete:RESTRICT" json:"unit,omitempty"`
}

func (IssuedItem) TableName() string {
	return "issued_items"
}
