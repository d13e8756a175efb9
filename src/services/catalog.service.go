package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"erp-inventory/src/events"
	"erp-inventory/src/models"
	"erp-inventory/src/repositories"
)

// ============ REQUEST STRUCTS ============
type CreateItemInput struct {
	Name           string `validate:"required,max=200"`
	Barcode        string `validate:"max=20"`
	DepartmentID   uint
	CategoryID     uint
	InitialStock   int   `validate:"gte=0,lte=1000000"`
	InitialStoreID *uint `validate:"omitempty,gt=0"`
	BuyingPrice    decimal.Decimal
	SellingPrice   decimal.Decimal
	SmallestUnit   string `validate:"required,max=20"`
	IsSellable     bool
	IsService      bool
	MinimumStock   int `validate:"gte=0"`
	OptimumStock   int `validate:"gte=0"`
	ReorderPoint   int `validate:"gte=0"`
	LeadTimeDays   int `validate:"gte=0"`
	Notes          string
	ActorID        uint
}

// UpdateItemInput replaces the descriptive fields of an item. Stock
// figures are never edited here.
type UpdateItemInput struct {
	Name         string `validate:"required,max=200"`
	Barcode      string `validate:"max=20"`
	DepartmentID uint
	CategoryID   uint
	Status       models.ItemStatus `validate:"required,oneof=active inactive discontinued"`
	BuyingPrice  decimal.Decimal
	SellingPrice decimal.Decimal
	IsSellable   bool
	IsService    bool
	MinimumStock int `validate:"gte=0"`
	OptimumStock int `validate:"gte=0"`
	ReorderPoint int `validate:"gte=0"`
	LeadTimeDays int `validate:"gte=0"`
	Notes        string
}

type AddUnitInput struct {
	Unit          string `validate:"required,max=20"`
	SmallestUnits int    `validate:"gte=1,lte=1000000"`
	BuyingPrice   decimal.Decimal
	SellingPrice  decimal.Decimal
}

type KitLineInput struct {
	ItemID   uint `validate:"required"`
	Quantity int  `validate:"gt=0,lte=1000000"`
}

type CreateKitInput struct {
	Name         string `validate:"required,max=200"`
	DepartmentID uint
	CategoryID   uint
	SellingPrice decimal.Decimal
	Items        []KitLineInput `validate:"required,min=1,dive"`
	ActorID      uint
}

// ============ CATALOG SERVICE ============
type CatalogService struct {
	DB     *gorm.DB
	Ledger *repositories.LedgerRepository
	Events events.Publisher
	Log    *logrus.Logger
}

func checkPricing(buying, selling decimal.Decimal) error {
	if err := nonNegative("buying_price", buying); err != nil {
		return err
	}
	if err := nonNegative("selling_price", selling); err != nil {
		return err
	}
	if selling.LessThan(buying) {
		return invalid("selling_price", "must not be below buying price")
	}
	return nil
}

func checkLevels(minimum, optimum, reorder int) error {
	if optimum < minimum {
		return invalid("optimum_stock", "must not be below minimum stock")
	}
	if reorder > minimum {
		return invalid("reorder_point", "must not exceed minimum stock")
	}
	return nil
}

func optionalBarcode(code string) *string {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil
	}
	return &code
}

// CreateItem - Create an item with its base unit. Opening stock is booked
// into the given store through the ledger.
func (s *CatalogService) CreateItem(ctx context.Context, in CreateItemInput) (*models.Item, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := checkPricing(in.BuyingPrice, in.SellingPrice); err != nil {
		return nil, err
	}
	if err := checkLevels(in.MinimumStock, in.OptimumStock, in.ReorderPoint); err != nil {
		return nil, err
	}
	if in.InitialStock > 0 && in.InitialStoreID == nil {
		return nil, invalid("initial_store_id", "required when initial stock is given")
	}

	item := &models.Item{
		Name:         strings.TrimSpace(in.Name),
		Barcode:      optionalBarcode(in.Barcode),
		DepartmentID: in.DepartmentID,
		CategoryID:   in.CategoryID,
		InitialStock: in.InitialStock,
		Status:       models.ItemActive,
		BuyingPrice:  in.BuyingPrice,
		SellingPrice: in.SellingPrice,
		SmallestUnit: in.SmallestUnit,
		IsSellable:   in.IsSellable,
		IsService:    in.IsService,
		MinimumStock: in.MinimumStock,
		OptimumStock: in.OptimumStock,
		ReorderPoint: in.ReorderPoint,
		LeadTimeDays: in.LeadTimeDays,
		Notes:        in.Notes,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(item).Error; err != nil {
			return err
		}
		base := models.ItemUnit{
			ItemID:        item.ID,
			Unit:          item.SmallestUnit,
			SmallestUnits: 1,
			BuyingPrice:   item.BuyingPrice,
			SellingPrice:  item.SellingPrice,
		}
		if err := tx.Create(&base).Error; err != nil {
			return err
		}
		if in.InitialStock > 0 {
			loc := models.StoreLocation(*in.InitialStoreID)
			if err := requireLocation(tx, "initial_store_id", loc); err != nil {
				return err
			}
			src := repositories.MovementSource{Kind: models.SourceOpeningStock, ID: item.ID, ActorID: in.ActorID}
			if _, err := s.Ledger.UpdateStock(tx, loc, item.ID, in.InitialStock, src); err != nil {
				return err
			}
		}
		return tx.Preload("Units").First(item, item.ID).Error
	})
	if err != nil {
		return nil, translate(err)
	}

	publish(ctx, s.Events, s.Log, events.Event{
		Kind:     events.ItemCreated,
		EntityID: item.ID,
		ActorID:  in.ActorID,
		Data:     map[string]any{"name": item.Name, "initial_stock": item.InitialStock},
	})
	return item, nil
}

// UpdateItem - Edit descriptive fields and prices
func (s *CatalogService) UpdateItem(ctx context.Context, id uint, in UpdateItemInput) (*models.Item, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := checkPricing(in.BuyingPrice, in.SellingPrice); err != nil {
		return nil, err
	}
	if err := checkLevels(in.MinimumStock, in.OptimumStock, in.ReorderPoint); err != nil {
		return nil, err
	}

	var item models.Item
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, id).Error; err != nil {
			if repositories.IsNotFound(err) {
				return notFound("item", id)
			}
			return err
		}
		res := tx.Model(&item).Updates(map[string]interface{}{
			"name":           strings.TrimSpace(in.Name),
			"barcode":        optionalBarcode(in.Barcode),
			"department_id":  in.DepartmentID,
			"category_id":    in.CategoryID,
			"status":         in.Status,
			"buying_price":   in.BuyingPrice,
			"selling_price":  in.SellingPrice,
			"is_sellable":    in.IsSellable,
			"is_service":     in.IsService,
			"minimum_stock":  in.MinimumStock,
			"optimum_stock":  in.OptimumStock,
			"reorder_point":  in.ReorderPoint,
			"lead_time_days": in.LeadTimeDays,
			"notes":          in.Notes,
		})
		if res.Error != nil {
			return res.Error
		}
		return tx.Preload("Units").First(&item, id).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// itemReferences lists the tables that pin an item in place.
var itemReferences = []string{
	"store_items",
	"sale_point_items",
	"adjustments",
	"received_items",
	"requisition_items",
	"transfer_items",
	"issued_items",
	"item_kit_items",
}

// DeleteItem - Remove an item that has never been stocked or referenced
func (s *CatalogService) DeleteItem(ctx context.Context, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.Item
		if err := tx.Select("id").First(&item, id).Error; err != nil {
			if repositories.IsNotFound(err) {
				return notFound("item", id)
			}
			return err
		}
		for _, table := range itemReferences {
			var n int64
			if err := tx.Table(table).Where("item_id = ?", id).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return invalid("item_id", "item %d is still referenced by %s", id, table)
			}
		}
		if err := tx.Where("item_id = ?", id).Delete(&models.ItemUnit{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Item{}, id).Error
	})
	return translate(err)
}

func (s *CatalogService) GetItem(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	if err := s.DB.WithContext(ctx).Preload("Units").First(&item, id).Error; err != nil {
		if repositories.IsNotFound(err) {
			return nil, notFound("item", id)
		}
		return nil, err
	}
	return &item, nil
}

// ListItems - Items ordered by name, optionally filtered by a name or barcode fragment
func (s *CatalogService) ListItems(ctx context.Context, search string, page, limit int) ([]models.Item, int64, error) {
	page, limit = pageBounds(page, limit)
	query := s.DB.WithContext(ctx).Model(&models.Item{})
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR barcode = ?", like, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var items []models.Item
	err := query.Order("name, id").Limit(limit).Offset((page - 1) * limit).Find(&items).Error
	return items, total, err
}

// AddUnit - Register an alternate unit for an item
func (s *CatalogService) AddUnit(ctx context.Context, itemID uint, in AddUnitInput) (*models.ItemUnit, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := checkPricing(in.BuyingPrice, in.SellingPrice); err != nil {
		return nil, err
	}

	unit := &models.ItemUnit{
		ItemID:        itemID,
		Unit:          strings.TrimSpace(in.Unit),
		SmallestUnits: in.SmallestUnits,
		BuyingPrice:   in.BuyingPrice,
		SellingPrice:  in.SellingPrice,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Item{}).Where("id = ?", itemID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return notFound("item", itemID)
		}
		if err := tx.Model(&models.ItemUnit{}).
			Where("item_id = ? AND LOWER(unit) = ?", itemID, strings.ToLower(unit.Unit)).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return invalid("unit", "item %d already has a unit named %q", itemID, unit.Unit)
		}
		return tx.Create(unit).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return unit, nil
}

func (s *CatalogService) ListUnits(ctx context.Context, itemID uint) ([]models.ItemUnit, error) {
	if _, err := s.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	var units []models.ItemUnit
	err := s.DB.WithContext(ctx).Where("item_id = ?", itemID).Order("smallest_units, id").Find(&units).Error
	return units, err
}

// RecomputeStoreStock - Re-derive items.store_stock from the store rows
func (s *CatalogService) RecomputeStoreStock(ctx context.Context, itemID uint) (*models.Item, error) {
	return s.recompute(ctx, itemID, s.Ledger.RecomputeStoreStock)
}

// RecomputeShopStock - Re-derive items.shop_stock from the sale point rows
func (s *CatalogService) RecomputeShopStock(ctx context.Context, itemID uint) (*models.Item, error) {
	return s.recompute(ctx, itemID, s.Ledger.RecomputeShopStock)
}

func (s *CatalogService) recompute(ctx context.Context, itemID uint, fn func(*gorm.DB, uint) error) (*models.Item, error) {
	var item models.Item
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Select("id").First(&item, itemID).Error; err != nil {
			if repositories.IsNotFound(err) {
				return notFound("item", itemID)
			}
			return err
		}
		if err := fn(tx, itemID); err != nil {
			return err
		}
		return tx.First(&item, itemID).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

func (s *CatalogService) TotalStock(ctx context.Context, itemID uint) (int, error) {
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return 0, err
	}
	return item.TotalStock(), nil
}

func (s *CatalogService) NeedsReorder(ctx context.Context, itemID uint) (bool, error) {
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return false, err
	}
	return item.NeedsReorder(), nil
}

// LowStockItems - Active items whose total stock is at or below minimum
func (s *CatalogService) LowStockItems(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	err := s.DB.WithContext(ctx).
		Where("status = ? AND is_service = ? AND store_stock + shop_stock <= minimum_stock", models.ItemActive, false).
		Order("name, id").
		Find(&items).Error
	return items, err
}

// ============ KITS ============

// CreateKit - Bundle existing items under one selling price
func (s *CatalogService) CreateKit(ctx context.Context, in CreateKitInput) (*models.ItemKit, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := nonNegative("selling_price", in.SellingPrice); err != nil {
		return nil, err
	}

	kit := &models.ItemKit{
		Name:         strings.TrimSpace(in.Name),
		DepartmentID: in.DepartmentID,
		CategoryID:   in.CategoryID,
		Status:       models.ItemActive,
		SellingPrice: in.SellingPrice,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]uint, 0, len(in.Items))
		seen := make(map[uint]bool, len(in.Items))
		for _, line := range in.Items {
			if seen[line.ItemID] {
				return invalid("items", "item %d listed twice", line.ItemID)
			}
			seen[line.ItemID] = true
			ids = append(ids, line.ItemID)
		}
		var count int64
		if err := tx.Model(&models.Item{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
			return err
		}
		if int(count) != len(ids) {
			return invalid("items", "kit references unknown items")
		}

		if err := tx.Omit(clause.Associations).Create(kit).Error; err != nil {
			return err
		}
		lines := make([]models.ItemKitItem, 0, len(in.Items))
		for _, line := range in.Items {
			lines = append(lines, models.ItemKitItem{ItemKitID: kit.ID, ItemID: line.ItemID, Quantity: line.Quantity})
		}
		if err := tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
			return err
		}
		return tx.Preload("Items.Item").First(kit, kit.ID).Error
	})
	if err != nil {
		return nil, translate(err)
	}

	publish(ctx, s.Events, s.Log, events.Event{
		Kind:     events.KitCreated,
		EntityID: kit.ID,
		ActorID:  in.ActorID,
		Data:     map[string]any{"name": kit.Name, "total_cost": kit.TotalCost().StringFixed(2)},
	})
	return kit, nil
}

func (s *CatalogService) GetKit(ctx context.Context, id uint) (*models.ItemKit, error) {
	var kit models.ItemKit
	if err := s.DB.WithContext(ctx).Preload("Items.Item").First(&kit, id).Error; err != nil {
		if repositories.IsNotFound(err) {
			return nil, notFound("item kit", id)
		}
		return nil, err
	}
	return &kit, nil
}

// KitTotalCost - Buying cost of one kit at current item prices
func (s *CatalogService) KitTotalCost(ctx context.Context, id uint) (decimal.Decimal, error) {
	kit, err := s.GetKit(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return kit.TotalCost(), nil
}

func (s *CatalogService) DeactivateKit(ctx context.Context, id uint) (*models.ItemKit, error) {
	res := s.DB.WithContext(ctx).Model(&models.ItemKit{}).Where("id = ?", id).Update("status", models.ItemInactive)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, notFound("item kit", id)
	}
	return s.GetKit(ctx, id)
}
