package repositories

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"erp-inventory/src/models"
)

// LedgerRepository owns per-location quantities. UpdateStock is the only
// write path to store_items / sale_point_items.
type LedgerRepository struct {
	DB *gorm.DB
}

// MovementSource identifies the document behind a ledger mutation.
type MovementSource struct {
	Kind      models.MovementSourceKind
	ID        uint
	Reference uuid.UUID
	ActorID   uint
	Notes     *string
}

type tierTables struct {
	location  string
	ledger    string
	column    string
	aggregate string
}

func tablesFor(kind models.LocationKind) (tierTables, error) {
	switch kind {
	case models.LocationStore:
		return tierTables{location: "stores", ledger: "store_items", column: "store_id", aggregate: "store_stock"}, nil
	case models.LocationSalePoint:
		return tierTables{location: "sale_points", ledger: "sale_point_items", column: "sale_point_id", aggregate: "shop_stock"}, nil
	}
	return tierTables{}, fmt.Errorf("unknown location kind %q", kind)
}

// UpdateStock applies delta to the (location, item) row inside tx and
// returns the new quantity. The location must be active and the result must
// not be negative; on either failure nothing is written.
// Both conditions are re-checked inside the UPDATE.
func (r *LedgerRepository) UpdateStock(tx *gorm.DB, loc models.Location, itemID uint, delta int, src MovementSource) (int, error) {
	t, err := tablesFor(loc.Kind)
	if err != nil {
		return 0, err
	}
	if delta > models.MaxStockDelta || delta < -models.MaxStockDelta {
		return 0, fmt.Errorf("delta %d for item %d: %w", delta, itemID, models.ErrQuantityOutOfRange)
	}

	status, err := r.locationStatus(tx, t, loc)
	if err != nil {
		return 0, err
	}
	if status != models.LocationActive {
		return 0, &InactiveLocationError{Location: loc, Status: status}
	}

	if err := r.ensureRow(tx, loc, itemID); err != nil {
		return 0, err
	}

	now := time.Now()
	res := r.increment(tx, t, loc, itemID, delta, now)
	if res.Error != nil {
		return 0, res.Error
	}

	balance, err := r.quantity(tx, t, loc.ID, itemID)
	if err != nil {
		return 0, err
	}
	if res.RowsAffected == 0 {
		// the location may have been deactivated after the status read
		status, err := r.locationStatus(tx, t, loc)
		if err != nil {
			return 0, err
		}
		if status != models.LocationActive {
			return 0, &InactiveLocationError{Location: loc, Status: status}
		}
		return 0, &NegativeStockError{Location: loc, ItemID: itemID, Current: balance, Delta: delta}
	}

	movement := models.StockMovement{
		Reference:    src.Reference,
		LocationKind: loc.Kind,
		LocationID:   loc.ID,
		ItemID:       itemID,
		Amount:       delta,
		Balance:      balance,
		SourceKind:   src.Kind,
		SourceID:     src.ID,
		ActorID:      src.ActorID,
		Notes:        src.Notes,
		CreatedAt:    now,
	}
	if err := tx.Create(&movement).Error; err != nil {
		return 0, err
	}

	if err := r.recompute(tx, t, itemID); err != nil {
		return 0, err
	}
	return balance, nil
}

// increment is the conditional atomic update behind UpdateStock.
func (r *LedgerRepository) increment(tx *gorm.DB, t tierTables, loc models.Location, itemID uint, delta int, now time.Time) *gorm.DB {
	return tx.Table(t.ledger).
		Where(t.column+" = ? AND item_id = ? AND quantity + ? >= 0", loc.ID, itemID, delta).
		Where("EXISTS (SELECT 1 FROM "+t.location+" WHERE id = ? AND status = ?)", loc.ID, models.LocationActive).
		Updates(map[string]interface{}{
			"quantity":     gorm.Expr("quantity + ?", delta),
			"last_updated": now,
		})
}

func (r *LedgerRepository) locationStatus(tx *gorm.DB, t tierTables, loc models.Location) (models.LocationStatus, error) {
	var status string
	res := tx.Table(t.location).Select("status").Where("id = ?", loc.ID).Limit(1).Scan(&status)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 0 {
		return "", fmt.Errorf("%s %d: %w", loc.Kind, loc.ID, ErrNotFound)
	}
	return models.LocationStatus(status), nil
}

// ensureRow creates the ledger row at zero the first time the pair is seen.
// ON CONFLICT keeps concurrent first writers from failing on the unique index.
func (r *LedgerRepository) ensureRow(tx *gorm.DB, loc models.Location, itemID uint) error {
	now := time.Now()
	switch loc.Kind {
	case models.LocationStore:
		return tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.StoreItem{StoreID: loc.ID, ItemID: itemID, LastUpdated: now}).Error
	case models.LocationSalePoint:
		return tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.SalePointItem{SalePointID: loc.ID, ItemID: itemID, LastUpdated: now}).Error
	}
	return fmt.Errorf("unknown location kind %q", loc.Kind)
}

func (r *LedgerRepository) quantity(db *gorm.DB, t tierTables, locationID, itemID uint) (int, error) {
	var qty int
	err := db.Table(t.ledger).
		Select("quantity").
		Where(t.column+" = ? AND item_id = ?", locationID, itemID).
		Limit(1).
		Scan(&qty).Error
	return qty, err
}

func (r *LedgerRepository) recompute(tx *gorm.DB, t tierTables, itemID uint) error {
	sql := fmt.Sprintf(
		"UPDATE items SET %s = (SELECT COALESCE(SUM(quantity), 0) FROM %s WHERE item_id = ?), updated_at = ? WHERE id = ?",
		t.aggregate, t.ledger)
	return tx.Exec(sql, itemID, time.Now(), itemID).Error
}

// RecomputeStoreStock re-sums every store row for the item into items.store_stock.
func (r *LedgerRepository) RecomputeStoreStock(tx *gorm.DB, itemID uint) error {
	t, _ := tablesFor(models.LocationStore)
	return r.recompute(tx, t, itemID)
}

// RecomputeShopStock re-sums every sale point row for the item into items.shop_stock.
func (r *LedgerRepository) RecomputeShopStock(tx *gorm.DB, itemID uint) error {
	t, _ := tablesFor(models.LocationSalePoint)
	return r.recompute(tx, t, itemID)
}

// ============ READS ============

// Quantity returns the on-hand quantity, zero when no row exists yet.
func (r *LedgerRepository) Quantity(db *gorm.DB, loc models.Location, itemID uint) (int, error) {
	t, err := tablesFor(loc.Kind)
	if err != nil {
		return 0, err
	}
	return r.quantity(db, t, loc.ID, itemID)
}

// LedgerLine is one row of a location snapshot.
type LedgerLine struct {
	ItemID       uint            `json:"item_id"`
	ItemName     string          `json:"item_name"`
	SmallestUnit string          `json:"smallest_unit"`
	Quantity     int             `json:"quantity"`
	UnitValue    decimal.Decimal `json:"unit_value"`
}

// Snapshot lists every ledger row at a location. Store rows are valued at
// buying price, sale point rows at selling price.
func (r *LedgerRepository) Snapshot(db *gorm.DB, loc models.Location) ([]LedgerLine, error) {
	t, err := tablesFor(loc.Kind)
	if err != nil {
		return nil, err
	}
	priceColumn := "items.buying_price"
	if loc.Kind == models.LocationSalePoint {
		priceColumn = "items.selling_price"
	}

	lines := make([]LedgerLine, 0)
	err = db.Table(t.ledger).
		Select("items.id AS item_id, items.name AS item_name, items.smallest_unit AS smallest_unit, "+
			t.ledger+".quantity AS quantity, "+priceColumn+" AS unit_value").
		Joins("JOIN items ON items.id = "+t.ledger+".item_id").
		Where(t.ledger+"."+t.column+" = ?", loc.ID).
		Order("items.name").
		Scan(&lines).Error
	return lines, err
}

// StoreRows returns every store ledger row.
func (r *LedgerRepository) StoreRows(db *gorm.DB) ([]models.StoreItem, error) {
	var rows []models.StoreItem
	err := db.Order("item_id, store_id").Find(&rows).Error
	return rows, err
}

func (r *LedgerRepository) SalePointRows(db *gorm.DB) ([]models.SalePointItem, error) {
	var rows []models.SalePointItem
	err := db.Order("item_id, sale_point_id").Find(&rows).Error
	return rows, err
}

type MovementFilter struct {
	Location  *models.Location
	ItemID    uint
	Reference uuid.UUID
	FromDate  time.Time
	ToDate    time.Time
}

// Movements - journal rows with pagination, newest first
func (r *LedgerRepository) Movements(db *gorm.DB, f MovementFilter, page, limit int) ([]models.StockMovement, int64, error) {
	var movements []models.StockMovement
	var total int64

	query := db.Model(&models.StockMovement{})
	if f.Location != nil {
		query = query.Where("location_kind = ? AND location_id = ?", f.Location.Kind, f.Location.ID)
	}
	if f.ItemID > 0 {
		query = query.Where("item_id = ?", f.ItemID)
	}
	if f.Reference != uuid.Nil {
		query = query.Where("reference = ?", f.Reference)
	}
	if !f.FromDate.IsZero() {
		query = query.Where("created_at >= ?", f.FromDate)
	}
	if !f.ToDate.IsZero() {
		query = query.Where("created_at <= ?", f.ToDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&movements).Error
	if err != nil {
		return nil, 0, err
	}

	return movements, total, nil
}

// IsNotFound reports gorm's not-found or ours.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, ErrNotFound)
}
