package models

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

type ItemStatus string

const (
	ItemActive       ItemStatus = "active"
	ItemInactive     ItemStatus = "inactive"
	ItemDiscontinued ItemStatus = "discontinued"
)

// Item is a stock-keeping unit. StoreStock and ShopStock are derived from the
// ledger rows and are only ever written by the ledger recompute.
type Item struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"type:varchar(200);not null;index" json:"name"`
	Barcode      *string         `gorm:"type:varchar(20);uniqueIndex" json:"barcode,omitempty"`
	DepartmentID uint            `gorm:"index" json:"department_id"`
	CategoryID   uint            `gorm:"index" json:"category_id"`
	InitialStock int             `gorm:"not null" json:"initial_stock"`
	StoreStock   int             `gorm:"not null" json:"store_stock"`
	ShopStock    int             `gorm:"not null" json:"shop_stock"`
	Status       ItemStatus      `gorm:"type:varchar(20);not null;index" json:"status"`
	BuyingPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"buying_price"`
	SellingPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"selling_price"`
	SmallestUnit string          `gorm:"type:varchar(20);not null" json:"smallest_unit"`
	IsSellable   bool            `gorm:"not null" json:"is_sellable"`
	IsService    bool            `gorm:"not null" json:"is_service"`
	MinimumStock int             `gorm:"not null" json:"minimum_stock"`
	OptimumStock int             `gorm:"not null" json:"optimum_stock"`
	ReorderPoint int             `gorm:"not null" json:"reorder_point"`
	LeadTimeDays int             `gorm:"not null" json:"lead_time_days"`
	Notes        string          `gorm:"type:text" json:"notes"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Units []ItemUnit `gorm:"foreignKey:ItemID;constraint:OnDelete:CASCADE" json:"units,omitempty"`
}

func (Item) TableName() string {
	return "items"
}

func (i Item) TotalStock() int {
	return i.StoreStock + i.ShopStock
}

func (i Item) NeedsReorder() bool {
	return i.TotalStock() <= i.MinimumStock
}

func (i Item) StockValue() decimal.Decimal {
	return i.BuyingPrice.Mul(decimal.NewFromInt(int64(i.TotalStock())))
}

// Margin is the markup over buying price in percent.
func (i Item) Margin() decimal.Decimal {
	if i.BuyingPrice.IsZero() {
		return decimal.Zero
	}
	return i.SellingPrice.Sub(i.BuyingPrice).Div(i.BuyingPrice).Mul(decimal.NewFromInt(100))
}

// ItemUnit converts a named unit ("box", "case") to the item's smallest unit.
type ItemUnit struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ItemID        uint            `gorm:"not null;index" json:"item_id"`
	Unit          string          `gorm:"type:varchar(20);not null" json:"unit"`
	SmallestUnits int             `gorm:"not null;check:chk_item_units_smallest_units,smallest_units >= 1" json:"smallest_units"`
	BuyingPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"buying_price"`
	SellingPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"selling_price"`
}

func (ItemUnit) TableName() string {
	return "item_units"
}

// MaxLineQuantity bounds the quantity on one document line, in the line's unit.
const MaxLineQuantity = 1_000_000

// MaxStockDelta bounds one ledger mutation in smallest units.
const MaxStockDelta = math.MaxInt32

var ErrQuantityOutOfRange = errors.New("quantity out of range")

// ToSmallest converts qty expressed in this unit to smallest units. It fails
// instead of wrapping when the product leaves (0, MaxStockDelta].
func (u ItemUnit) ToSmallest(qty int) (int, error) {
	if qty <= 0 || u.SmallestUnits <= 0 || qty > MaxStockDelta/u.SmallestUnits {
		return 0, fmt.Errorf("%d %s: %w", qty, u.Unit, ErrQuantityOutOfRange)
	}
	return qty * u.SmallestUnits, nil
}

type ItemKit struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Name         string          `gorm:"type:varchar(200);not null" json:"name"`
	DepartmentID uint            `gorm:"index" json:"department_id"`
	CategoryID   uint            `gorm:"index" json:"category_id"`
	Status       ItemStatus      `gorm:"type:varchar(20);not null" json:"status"`
	SellingPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"selling_price"`
	CreatedAt    time.Time       `json:"created_at"`

	Items []ItemKitItem `gorm:"foreignKey:ItemKitID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (ItemKit) TableName() string {
	return "item_kits"
}

// TotalCost sums buying price × quantity; Items must be loaded with Item.
func (k ItemKit) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, ki := range k.Items {
		if ki.Item == nil {
			continue
		}
		total = total.Add(ki.Subtotal())
	}
	return total
}

type ItemKitItem struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	ItemKitID uint `gorm:"not null;index" json:"item_kit_id"`
	ItemID    uint `gorm:"not null;index" json:"item_id"`
	Quantity  int  `gorm:"not null" json:"quantity"`

	Item *Item `gorm:"foreignKey:ItemID;constraint:OnDelete:RESTRICT" json:"item,omitempty"`
}

func (ItemKitItem) TableName() string {
	return "item_kit_items"
}

func (ki ItemKitItem) Subtotal() decimal.Decimal {
	if ki.Item == nil {
		return decimal.Zero
	}
	return ki.Item.BuyingPrice.Mul(decimal.NewFromInt(int64(ki.Quantity)))
}
