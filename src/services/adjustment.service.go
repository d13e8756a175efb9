package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"erp-inventory/src/events"
	"erp-inventory/src/models"
	"erp-inventory/src/repositories"
)

// AdjustmentInput corrects the quantity of one item at one location.
// Quantity is signed and expressed in smallest units.
type AdjustmentInput struct {
	ItemID      uint   `validate:"required"`
	Quantity    int    `validate:"ne=0,min=-1000000,max=1000000"`
	Reason      string `validate:"required"`
	ActorID     uint   `validate:"required"`
	InStore     bool
	StoreID     *uint
	SalePointID *uint
}

type AdjustmentService struct {
	DB     *gorm.DB
	Ledger *repositories.LedgerRepository
	Events events.Publisher
	Log    *logrus.Logger
}

func adjustmentLocation(in AdjustmentInput) (models.Location, error) {
	if in.InStore {
		if in.StoreID == nil || in.SalePointID != nil {
			return models.Location{}, invalid("store_id", "store adjustments name exactly one store")
		}
		return models.StoreLocation(*in.StoreID), nil
	}
	if in.SalePointID == nil || in.StoreID != nil {
		return models.Location{}, invalid("sale_point_id", "sale point adjustments name exactly one sale point")
	}
	return models.SalePointLocation(*in.SalePointID), nil
}

func locationField(loc models.Location) string {
	if loc.Kind == models.LocationStore {
		return "store_id"
	}
	return "sale_point_id"
}

// CreateAdjustment - Record an adjustment and apply it to the ledger.
// Adjustments are immutable once written.
func (s *AdjustmentService) CreateAdjustment(ctx context.Context, in AdjustmentInput) (*models.Adjustment, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	loc, err := adjustmentLocation(in)
	if err != nil {
		return nil, err
	}

	adj := &models.Adjustment{
		ItemID:      in.ItemID,
		Quantity:    in.Quantity,
		Reason:      in.Reason,
		ActorID:     in.ActorID,
		InStore:     in.InStore,
		StoreID:     in.StoreID,
		SalePointID: in.SalePointID,
	}
	var balance int
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Item{}).Where("id = ?", in.ItemID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return invalid("item_id", "item %d does not exist", in.ItemID)
		}
		if err := requireLocation(tx, locationField(loc), loc); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(adj).Error; err != nil {
			return err
		}
		src := repositories.MovementSource{
			Kind:      models.SourceAdjustment,
			ID:        adj.ID,
			Reference: adj.Reference,
			ActorID:   adj.ActorID,
			Notes:     &adj.Reason,
		}
		balance, err = s.Ledger.UpdateStock(tx, loc, adj.ItemID, adj.Quantity, src)
		return err
	})
	if err != nil {
		return nil, translate(err)
	}

	s.Log.WithFields(logrus.Fields{
		"module":        "adjustment",
		"adjustment_id": adj.ID,
		"location":      loc,
		"balance":       balance,
	}).Info("adjustment applied")
	publish(ctx, s.Events, s.Log, events.Event{
		Kind:      events.AdjustmentCreated,
		EntityID:  adj.ID,
		Reference: adj.Reference,
		ActorID:   adj.ActorID,
		Data:      map[string]any{"item_id": adj.ItemID, "quantity": adj.Quantity, "location": loc},
	})
	return adj, nil
}

func (s *AdjustmentService) GetAdjustment(ctx context.Context, id uint) (*models.Adjustment, error) {
	var adj models.Adjustment
	if err := s.DB.WithContext(ctx).First(&adj, id).Error; err != nil {
		if repositories.IsNotFound(err) {
			return nil, notFound("adjustment", id)
		}
		return nil, err
	}
	return &adj, nil
}

// ListAdjustments - Newest first, optionally for one item
func (s *AdjustmentService) ListAdjustments(ctx context.Context, itemID uint, page, limit int) ([]models.Adjustment, int64, error) {
	page, limit = pageBounds(page, limit)
	query := s.DB.WithContext(ctx).Model(&models.Adjustment{})
	if itemID > 0 {
		query = query.Where("item_id = ?", itemID)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Adjustment
	err := query.Order("created_at DESC, id DESC").Limit(limit).Offset((page - 1) * limit).Find(&out).Error
	return out, total, err
}
