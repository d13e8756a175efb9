package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"erp-inventory/src/events"
	"erp-inventory/src/models"
	"erp-inventory/src/repositories"
)

type ReceivedLineInput struct {
	ItemID    uint `validate:"required"`
	UnitID    uint `validate:"required"`
	Quantity  int  `validate:"gt=0,lte=1000000"`
	UnitPrice decimal.Decimal
}

// ReceivingInput books supplier goods into exactly one store or sale point.
type ReceivingInput struct {
	SupplierID   uint `validate:"required"`
	DepartmentID uint `validate:"required"`
	ActorID      uint `validate:"required"`
	IsStore      bool
	StoreID      *uint
	SalePointID  *uint
	Notes        string
	Lines        []ReceivedLineInput `validate:"required,min=1,dive"`
}

type ReceivingService struct {
	DB     *gorm.DB
	Ledger *repositories.LedgerRepository
	Events events.Publisher
	Log    *logrus.Logger
}

func (in ReceivingInput) destination() (models.Location, error) {
	if in.IsStore {
		if in.StoreID == nil || in.SalePointID != nil {
			return models.Location{}, invalid("store_id", "store receivings name exactly one store")
		}
		return models.StoreLocation(*in.StoreID), nil
	}
	if in.SalePointID == nil || in.StoreID != nil {
		return models.Location{}, invalid("sale_point_id", "sale point receivings name exactly one sale point")
	}
	return models.SalePointLocation(*in.SalePointID), nil
}

func (in ReceivingInput) check() (models.Location, error) {
	if err := validateInput(in); err != nil {
		return models.Location{}, err
	}
	for i, line := range in.Lines {
		if err := nonNegative(fmt.Sprintf("lines[%d].unit_price", i), line.UnitPrice); err != nil {
			return models.Location{}, err
		}
	}
	return in.destination()
}

func (in ReceivingInput) lineRefs() []LineInput {
	refs := make([]LineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		refs = append(refs, LineInput{ItemID: l.ItemID, UnitID: l.UnitID, Quantity: l.Quantity})
	}
	return refs
}

func (s *ReceivingService) checkSupplier(tx *gorm.DB, id uint) error {
	var supplier models.Supplier
	if err := tx.Select("id", "status").First(&supplier, id).Error; err != nil {
		if repositories.IsNotFound(err) {
			return invalid("supplier_id", "supplier %d does not exist", id)
		}
		return err
	}
	if supplier.Status == models.SupplierBlacklisted {
		return invalid("supplier_id", "supplier %d is blacklisted", id)
	}
	return nil
}

// checkRefs resolves referenced rows before anything is written.
func (s *ReceivingService) checkRefs(tx *gorm.DB, in ReceivingInput, dest models.Location) (map[uint]models.ItemUnit, error) {
	if err := s.checkSupplier(tx, in.SupplierID); err != nil {
		return nil, err
	}
	field := "sale_point_id"
	if in.IsStore {
		field = "store_id"
	}
	if err := requireLocation(tx, field, dest); err != nil {
		return nil, err
	}
	return loadUnits(tx, in.lineRefs())
}

// writeLines stores the lines of rec, leaving each line's Unit populated for
// the ledger pass.
func (s *ReceivingService) writeLines(tx *gorm.DB, rec *models.Receiving, in ReceivingInput, units map[uint]models.ItemUnit) error {
	lines := make([]models.ReceivedItem, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, models.ReceivedItem{
			ReceivingID: rec.ID,
			ItemID:      l.ItemID,
			UnitID:      l.UnitID,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TotalCost:   l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))),
		})
	}
	if err := tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
		return err
	}
	for i := range lines {
		u := units[lines[i].UnitID]
		lines[i].Unit = &u
	}
	rec.Items = lines
	return nil
}

// post credits (sign +1) or debits (sign -1) the destination with every line.
func (s *ReceivingService) post(tx *gorm.DB, rec *models.Receiving, sign int, kind models.MovementSourceKind, actorID uint) error {
	dest := rec.Destination()
	src := repositories.MovementSource{Kind: kind, ID: rec.ID, Reference: rec.Reference, ActorID: actorID}
	for i, line := range rec.Items {
		if line.Unit == nil {
			return fmt.Errorf("receiving %d line %d: unit not loaded", rec.ID, line.ID)
		}
		qty, err := smallest(fmt.Sprintf("lines[%d].quantity", i), *line.Unit, line.Quantity)
		if err != nil {
			return err
		}
		if _, err := s.Ledger.UpdateStock(tx, dest, line.ItemID, sign*qty, src); err != nil {
			return err
		}
	}
	return nil
}

func (s *ReceivingService) load(tx *gorm.DB, id uint) (*models.Receiving, error) {
	var rec models.Receiving
	if err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Unit").
		First(&rec, id).Error; err != nil {
		if repositories.IsNotFound(err) {
			return nil, notFound("receiving", id)
		}
		return nil, err
	}
	return &rec, nil
}

// CreateReceiving - Record goods received and credit the destination
func (s *ReceivingService) CreateReceiving(ctx context.Context, in ReceivingInput) (*models.Receiving, error) {
	dest, err := in.check()
	if err != nil {
		return nil, err
	}

	rec := &models.Receiving{
		SupplierID:   in.SupplierID,
		DepartmentID: in.DepartmentID,
		ActorID:      in.ActorID,
		IsStore:      in.IsStore,
		StoreID:      in.StoreID,
		SalePointID:  in.SalePointID,
		Notes:        in.Notes,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		units, err := s.checkRefs(tx, in, dest)
		if err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(rec).Error; err != nil {
			return err
		}
		if err := s.writeLines(tx, rec, in, units); err != nil {
			return err
		}
		return s.post(tx, rec, 1, models.SourceReceiving, in.ActorID)
	})
	if err != nil {
		return nil, translate(err)
	}

	s.notify(ctx, events.ReceivingCreated, rec, in.ActorID)
	return rec, nil
}

// UpdateReceiving - Replace a receiving's header and lines. The original
// lines are reversed and the new ones applied in the same transaction, so a
// reversal that would drive stock negative rejects the whole edit.
func (s *ReceivingService) UpdateReceiving(ctx context.Context, id uint, in ReceivingInput) (*models.Receiving, error) {
	dest, err := in.check()
	if err != nil {
		return nil, err
	}

	var rec *models.Receiving
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if rec, err = s.load(tx, id); err != nil {
			return err
		}
		units, err := s.checkRefs(tx, in, dest)
		if err != nil {
			return err
		}
		if err := s.post(tx, rec, -1, models.SourceReceivingReversal, in.ActorID); err != nil {
			return err
		}
		if err := tx.Where("receiving_id = ?", rec.ID).Delete(&models.ReceivedItem{}).Error; err != nil {
			return err
		}

		rec.SupplierID = in.SupplierID
		rec.DepartmentID = in.DepartmentID
		rec.ActorID = in.ActorID
		rec.IsStore = in.IsStore
		rec.StoreID = in.StoreID
		rec.SalePointID = in.SalePointID
		rec.Notes = in.Notes
		rec.Items = nil
		if err := tx.Model(rec).Select("supplier_id", "department_id", "actor_id", "is_store",
			"store_id", "sale_point_id", "notes", "updated_at").Omit(clause.Associations).Updates(rec).Error; err != nil {
			return err
		}

		if err := s.writeLines(tx, rec, in, units); err != nil {
			return err
		}
		return s.post(tx, rec, 1, models.SourceReceiving, in.ActorID)
	})
	if err != nil {
		return nil, translate(err)
	}

	s.notify(ctx, events.ReceivingUpdated, rec, in.ActorID)
	return rec, nil
}

// DeleteReceiving - Reverse a receiving's stock and remove it
func (s *ReceivingService) DeleteReceiving(ctx context.Context, id, actorID uint) error {
	var rec *models.Receiving
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if rec, err = s.load(tx, id); err != nil {
			return err
		}
		if err := s.post(tx, rec, -1, models.SourceReceivingReversal, actorID); err != nil {
			return err
		}
		if err := tx.Where("receiving_id = ?", rec.ID).Delete(&models.ReceivedItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Receiving{}, rec.ID).Error
	})
	if err != nil {
		return translate(err)
	}

	s.notify(ctx, events.ReceivingDeleted, rec, actorID)
	return nil
}

func (s *ReceivingService) GetReceiving(ctx context.Context, id uint) (*models.Receiving, error) {
	return s.load(s.DB.WithContext(ctx), id)
}

// ListReceivings - Newest first, optionally for one supplier
func (s *ReceivingService) ListReceivings(ctx context.Context, supplierID uint, page, limit int) ([]models.Receiving, int64, error) {
	page, limit = pageBounds(page, limit)
	query := s.DB.WithContext(ctx).Model(&models.Receiving{})
	if supplierID > 0 {
		query = query.Where("supplier_id = ?", supplierID)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Receiving
	err := query.Preload("Items").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&out).Error
	return out, total, err
}

func (s *ReceivingService) notify(ctx context.Context, kind events.Kind, rec *models.Receiving, actorID uint) {
	s.Log.WithFields(logrus.Fields{
		"module":       "receiving",
		"receiving_id": rec.ID,
		"event":        string(kind),
		"lines":        len(rec.Items),
	}).Info("receiving posted")
	publish(ctx, s.Events, s.Log, events.Event{
		Kind:      kind,
		EntityID:  rec.ID,
		Reference: rec.Reference,
		ActorID:   actorID,
		Data: map[string]any{
			"supplier_id": rec.SupplierID,
			"destination": rec.Destination(),
			"total_cost":  rec.TotalCost().StringFixed(2),
		},
	})
}
