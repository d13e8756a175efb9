package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ============ ENUMS & TYPES ============
type LocationKind string

const (
	LocationStore     LocationKind = "store"
	LocationSalePoint LocationKind = "sale_point"
)

type MovementSourceKind string

const (
	SourceOpeningStock      MovementSourceKind = "opening_stock"
	SourceAdjustment        MovementSourceKind = "adjustment"
	SourceReceiving         MovementSourceKind = "receiving"
	SourceReceivingReversal MovementSourceKind = "receiving_reversal"
	SourceTransfer          MovementSourceKind = "transfer"
	SourceIssue             MovementSourceKind = "issue"
)

// Location addresses one ledger tier entry: a store or a sale point.
type Location struct {
	Kind LocationKind `json:"kind"`
	ID   uint         `json:"id"`
}

func StoreLocation(id uint) Location     { return Location{Kind: LocationStore, ID: id} }
func SalePointLocation(id uint) Location { return Location{Kind: LocationSalePoint, ID: id} }

// ============ LEDGER ROWS ============
type StoreItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StoreID     uint      `gorm:"not null;uniqueIndex:idx_store_items_store_item" json:"store_id"`
	ItemID      uint      `gorm:"not null;uniqueIndex:idx_store_items_store_item;index" json:"item_id"`
	Quantity    int       `gorm:"not null;check:chk_store_items_quantity,quantity >= 0" json:"quantity"`
	LastUpdated time.Time `gorm:"autoUpdateTime" json:"last_updated"`

	Store *Store `gorm:"foreignKey:StoreID;constraint:OnDelete:CASCADE" json:"-"`
	Item  *Item  `gorm:"foreignKey:ItemID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (StoreItem) TableName() string {
	return "store_items"
}

type SalePointItem struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SalePointID uint      `gorm:"not null;uniqueIndex:idx_sale_point_items_point_item" json:"sale_point_id"`
	ItemID      uint      `gorm:"not null;uniqueIndex:idx_sale_point_items_point_item;index" json:"item_id"`
	Quantity    int       `gorm:"not null;check:chk_sale_point_items_quantity,quantity >= 0" json:"quantity"`
	LastUpdated time.Time `gorm:"autoUpdateTime" json:"last_updated"`

	SalePoint *SalePoint `gorm:"foreignKey:SalePointID;constraint:OnDelete:CASCADE" json:"-"`
	Item      *Item      `gorm:"foreignKey:ItemID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (SalePointItem) TableName() string {
	return "sale_point_items"
}

// ============ MOVEMENT JOURNAL ============
// StockMovement is appended for every ledger mutation. Balance is the row
// quantity right after the mutation.
type StockMovement struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Reference uuid.UUID `gorm:"type:uuid;not null;index" json:"reference"`

	LocationKind LocationKind `gorm:"type:varchar(20);not null;index:idx_movements_location_item" json:"location_kind"`
	LocationID   uint         `gorm:"not null;index:idx_movements_location_item" json:"location_id"`
	ItemID       uint         `gorm:"not null;index:idx_movements_location_item" json:"item_id"`

	Amount  int `gorm:"not null" json:"amount"`
	Balance int `gorm:"not null" json:"balance"`

	SourceKind MovementSourceKind `gorm:"type:varchar(30);not null;index" json:"source_kind"`
	SourceID   uint               `gorm:"not null" json:"source_id"`

	ActorID   uint      `gorm:"not null" json:"actor_id"`
	Notes     *string   `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (StockMovement) TableName() string {
	return "stock_movements"
}

func ensureReference(ref *uuid.UUID) {
	if *ref == uuid.Nil {
		*ref = uuid.New()
	}
}

func (m *StockMovement) BeforeCreate(*gorm.DB) error {
	ensureReference(&m.Reference)
	return nil
}

// All lists every model for AutoMigrate, parents before children.
func All() []any {
	return []any{
		&Store{},
		&SalePoint{},
		&Supplier{},
		&Item{},
		&ItemUnit{},
		&ItemKit{},
		&ItemKitItem{},
		&StoreItem{},
		&SalePointItem{},
		&StockMovement{},
		&Adjustment{},
		&Requisition{},
		&RequisitionItem{},
		&Receiving{},
		&ReceivedItem{},
		&Transfer{},
		&TransferItem{},
		&Issue{},
		&IssuedItem{},
	}
}
