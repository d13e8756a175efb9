package requests

import "github.com/shopspring/decimal"

// LineRequest is one itemized line in a unit of the item.
type LineRequest struct {
	ItemID   uint `json:"item_id" binding:"required"`
	UnitID   uint `json:"unit_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,min=1,max=1000000"`
}

// ============ ADJUSTMENT ============
type AdjustmentRequest struct {
	ItemID      uint   `json:"item_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,min=-1000000,max=1000000"`
	Reason      string `json:"reason" binding:"required"`
	ActorID     uint   `json:"actor_id" binding:"required"`
	InStore     bool   `json:"in_store"`
	StoreID     *uint  `json:"store_id,omitempty"`
	SalePointID *uint  `json:"sale_point_id,omitempty"`
}

// ============ RECEIVING ============
type ReceivedLineRequest struct {
	ItemID    uint            `json:"item_id" binding:"required"`
	UnitID    uint            `json:"unit_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,min=1,max=1000000"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type ReceivingRequest struct {
	SupplierID   uint                  `json:"supplier_id" binding:"required"`
	DepartmentID uint                  `json:"department_id" binding:"required"`
	ActorID      uint                  `json:"actor_id" binding:"required"`
	IsStore      bool                  `json:"is_store"`
	StoreID      *uint                 `json:"store_id,omitempty"`
	SalePointID  *uint                 `json:"sale_point_id,omitempty"`
	Notes        string                `json:"notes"`
	Items        []ReceivedLineRequest `json:"items" binding:"required,min=1,dive"`
}

// ============ REQUISITION ============
type RequisitionLineRequest struct {
	ItemID   uint            `json:"item_id" binding:"required"`
	UnitID   uint            `json:"unit_id" binding:"required"`
	Quantity int             `json:"quantity" binding:"required,min=1,max=1000000"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

type RequisitionRequest struct {
	DepartmentID uint                     `json:"department_id" binding:"required"`
	ActorID      uint                     `json:"actor_id" binding:"required"`
	Items        []RequisitionLineRequest `json:"items" binding:"required,min=1,dive"`
}

// ============ TRANSFER ============
type TransferRequest struct {
	TransferType    string        `json:"transfer_type" binding:"required,oneof=store_to_store salepoint_to_salepoint salepoint_to_store"`
	FromStoreID     *uint         `json:"from_store_id,omitempty"`
	ToStoreID       *uint         `json:"to_store_id,omitempty"`
	FromSalePointID *uint         `json:"from_salepoint_id,omitempty"`
	ToSalePointID   *uint         `json:"to_salepoint_id,omitempty"`
	ActorID         uint          `json:"actor_id" binding:"required"`
	Notes           *string       `json:"notes,omitempty"`
	Items           []LineRequest `json:"items" binding:"required,min=1,dive"`
}

// ============ ISSUE ============
type IssueRequest struct {
	StoreID       uint          `json:"store_id" binding:"required"`
	SalePointID   uint          `json:"sale_point_id" binding:"required"`
	RequestedByID uint          `json:"requested_by_id" binding:"required"`
	Notes         *string       `json:"notes,omitempty"`
	Items         []LineRequest `json:"items" binding:"required,min=1,dive"`
}

// ActorRequest carries who performs a workflow action.
type ActorRequest struct {
	ActorID uint `json:"actor_id" binding:"required"`
}
