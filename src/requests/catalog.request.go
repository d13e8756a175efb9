package requests

import "github.com/shopspring/decimal"

// ============ ITEMS ============
type CreateItemRequest struct {
	Name           string          `json:"name" binding:"required,max=200"`
	Barcode        string          `json:"barcode" binding:"max=20"`
	DepartmentID   uint            `json:"department_id"`
	CategoryID     uint            `json:"category_id"`
	InitialStock   int             `json:"initial_stock" binding:"gte=0,lte=1000000"`
	InitialStoreID *uint           `json:"initial_store_id,omitempty"`
	BuyingPrice    decimal.Decimal `json:"buying_price"`
	SellingPrice   decimal.Decimal `json:"selling_price"`
	SmallestUnit   string          `json:"smallest_unit" binding:"required,max=20"`
	IsSellable     *bool           `json:"is_sellable,omitempty"`
	IsService      bool            `json:"is_service"`
	MinimumStock   int             `json:"minimum_stock" binding:"gte=0"`
	OptimumStock   int             `json:"optimum_stock" binding:"gte=0"`
	ReorderPoint   int             `json:"reorder_point" binding:"gte=0"`
	LeadTimeDays   int             `json:"lead_time_days" binding:"gte=0"`
	Notes          string          `json:"notes"`
	ActorID        uint            `json:"actor_id"`
}

type UpdateItemRequest struct {
	Name         string          `json:"name" binding:"required,max=200"`
	Barcode      string          `json:"barcode" binding:"max=20"`
	DepartmentID uint            `json:"department_id"`
	CategoryID   uint            `json:"category_id"`
	Status       string          `json:"status" binding:"required,oneof=active inactive discontinued"`
	BuyingPrice  decimal.Decimal `json:"buying_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	IsSellable   bool            `json:"is_sellable"`
	IsService    bool            `json:"is_service"`
	MinimumStock int             `json:"minimum_stock" binding:"gte=0"`
	OptimumStock int             `json:"optimum_stock" binding:"gte=0"`
	ReorderPoint int             `json:"reorder_point" binding:"gte=0"`
	LeadTimeDays int             `json:"lead_time_days" binding:"gte=0"`
	Notes        string          `json:"notes"`
}

type AddUnitRequest struct {
	Unit          string          `json:"unit" binding:"required,max=20"`
	SmallestUnits int             `json:"smallest_units" binding:"required,min=1,max=1000000"`
	BuyingPrice   decimal.Decimal `json:"buying_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
}

// ============ KITS ============
type KitLineRequest struct {
	ItemID   uint `json:"item_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required,min=1,max=1000000"`
}

type CreateKitRequest struct {
	Name         string           `json:"name" binding:"required,max=200"`
	DepartmentID uint             `json:"department_id"`
	CategoryID   uint             `json:"category_id"`
	SellingPrice decimal.Decimal  `json:"selling_price"`
	Items        []KitLineRequest `json:"items" binding:"required,min=1,dive"`
	ActorID      uint             `json:"actor_id"`
}
