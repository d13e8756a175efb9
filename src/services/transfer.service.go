package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"erp-inventory/src/events"
	"erp-inventory/src/models"
	"erp-inventory/src/repositories"
)

// Outcome tells a caller whether CompleteTransfer moved stock.
type Outcome string

const (
	OutcomeApplied     Outcome = "applied"
	OutcomeAlreadyDone Outcome = "already_done"
)

// TransferInput describes a pending move between two locations of the kinds
// named by TransferType. Endpoints that do not apply to the type are ignored.
type TransferInput struct {
	TransferType    models.TransferType `validate:"required"`
	FromStoreID     *uint
	ToStoreID       *uint
	FromSalePointID *uint
	ToSalePointID   *uint
	ActorID         uint `validate:"required"`
	Notes           *string
	Lines           []LineInput `validate:"required,min=1,dive"`
}

type TransferService struct {
	DB     *gorm.DB
	Ledger *repositories.LedgerRepository
	Events events.Publisher
	Log    *logrus.Logger
}

func pick(field string, id *uint) (uint, error) {
	if id == nil || *id == 0 {
		return 0, invalid(field, "required for this transfer type")
	}
	return *id, nil
}

// endpoints resolves the source and destination for a transfer type.
func endpoints(tt models.TransferType, fromStore, toStore, fromPoint, toPoint *uint) (models.Location, models.Location, error) {
	var from, to models.Location
	switch tt {
	case models.TransferStoreToStore:
		f, err := pick("from_store_id", fromStore)
		if err != nil {
			return from, to, err
		}
		t, err := pick("to_store_id", toStore)
		if err != nil {
			return from, to, err
		}
		from, to = models.StoreLocation(f), models.StoreLocation(t)
	case models.TransferSalePointToSalePoint:
		f, err := pick("from_salepoint_id", fromPoint)
		if err != nil {
			return from, to, err
		}
		t, err := pick("to_salepoint_id", toPoint)
		if err != nil {
			return from, to, err
		}
		from, to = models.SalePointLocation(f), models.SalePointLocation(t)
	case models.TransferSalePointToStore:
		f, err := pick("from_salepoint_id", fromPoint)
		if err != nil {
			return from, to, err
		}
		t, err := pick("to_store_id", toStore)
		if err != nil {
			return from, to, err
		}
		from, to = models.SalePointLocation(f), models.StoreLocation(t)
	default:
		return from, to, invalid("transfer_type", "unknown transfer type %q", tt)
	}
	if from == to {
		return from, to, invalid("to", "source and destination are the same location")
	}
	return from, to, nil
}

func (in TransferInput) check() (models.Location, models.Location, error) {
	if err := validateInput(in); err != nil {
		return models.Location{}, models.Location{}, err
	}
	return endpoints(in.TransferType, in.FromStoreID, in.ToStoreID, in.FromSalePointID, in.ToSalePointID)
}

// apply copies the input onto t, keeping only the endpoints of its type.
func (in TransferInput) apply(t *models.Transfer, from, to models.Location) {
	t.TransferType = in.TransferType
	t.ActorID = in.ActorID
	t.Notes = in.Notes
	t.FromStoreID, t.ToStoreID, t.FromSalePointID, t.ToSalePointID = nil, nil, nil, nil
	fromID, toID := from.ID, to.ID
	if from.Kind == models.LocationStore {
		t.FromStoreID = &fromID
	} else {
		t.FromSalePointID = &fromID
	}
	if to.Kind == models.LocationStore {
		t.ToStoreID = &toID
	} else {
		t.ToSalePointID = &toID
	}
}

func (s *TransferService) writeLines(tx *gorm.DB, t *models.Transfer, lines []LineInput) error {
	rows := make([]models.TransferItem, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, models.TransferItem{TransferID: t.ID, ItemID: l.ItemID, UnitID: l.UnitID, Quantity: l.Quantity})
	}
	return tx.Omit(clause.Associations).Create(&rows).Error
}

func (s *TransferService) checkRefs(tx *gorm.DB, in TransferInput, from, to models.Location) error {
	if err := requireLocation(tx, "from", from); err != nil {
		return err
	}
	if err := requireLocation(tx, "to", to); err != nil {
		return err
	}
	_, err := loadUnits(tx, in.Lines)
	return err
}

func (s *TransferService) load(tx *gorm.DB, id uint) (*models.Transfer, error) {
	var t models.Transfer
	if err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Unit").
		First(&t, id).Error; err != nil {
		if repositories.IsNotFound(err) {
			return nil, notFound("transfer", id)
		}
		return nil, err
	}
	return &t, nil
}

// CreateTransfer - Record a pending transfer. Stock moves on completion.
func (s *TransferService) CreateTransfer(ctx context.Context, in TransferInput) (*models.Transfer, error) {
	from, to, err := in.check()
	if err != nil {
		return nil, err
	}

	var t *models.Transfer
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.checkRefs(tx, in, from, to); err != nil {
			return err
		}
		header := &models.Transfer{}
		in.apply(header, from, to)
		if err := tx.Omit(clause.Associations).Create(header).Error; err != nil {
			return err
		}
		if err := s.writeLines(tx, header, in.Lines); err != nil {
			return err
		}
		var err error
		t, err = s.load(tx, header.ID)
		return err
	})
	if err != nil {
		return nil, translate(err)
	}

	publish(ctx, s.Events, s.Log, events.Event{
		Kind:      events.TransferCreated,
		EntityID:  t.ID,
		Reference: t.Reference,
		ActorID:   t.ActorID,
		Data:      map[string]any{"transfer_type": t.TransferType, "from": from, "to": to},
	})
	return t, nil
}

func (s *TransferService) pendingOrFail(tx *gorm.DB, id uint, action string) (*models.Transfer, error) {
	t, err := s.load(tx, id)
	if err != nil {
		return nil, err
	}
	if t.Completed {
		return nil, &IllegalStateTransitionError{Entity: "transfer", ID: id, From: "completed", Action: action}
	}
	return t, nil
}

// UpdateTransfer - Replace header and lines of a pending transfer
func (s *TransferService) UpdateTransfer(ctx context.Context, id uint, in TransferInput) (*models.Transfer, error) {
	from, to, err := in.check()
	if err != nil {
		return nil, err
	}

	var t *models.Transfer
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.pendingOrFail(tx, id, "update")
		if err != nil {
			return err
		}
		if err := s.checkRefs(tx, in, from, to); err != nil {
			return err
		}
		in.apply(current, from, to)
		current.Items = nil
		res := tx.Model(current).
			Where("completed = ?", false).
			Select("transfer_type", "from_store_id", "to_store_id", "from_sale_point_id", "to_sale_point_id",
				"actor_id", "notes", "updated_at").
			Omit(clause.Associations).
			Updates(current)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &IllegalStateTransitionError{Entity: "transfer", ID: id, From: "completed", Action: "update"}
		}
		if err := tx.Where("transfer_id = ?", id).Delete(&models.TransferItem{}).Error; err != nil {
			return err
		}
		if err := s.writeLines(tx, current, in.Lines); err != nil {
			return err
		}
		t, err = s.load(tx, id)
		return err
	})
	if err != nil {
		return nil, translate(err)
	}
	return t, nil
}

// DeleteTransfer - Remove a pending transfer
func (s *TransferService) DeleteTransfer(ctx context.Context, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.pendingOrFail(tx, id, "delete"); err != nil {
			return err
		}
		if err := tx.Where("transfer_id = ?", id).Delete(&models.TransferItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND completed = ?", id, false).Delete(&models.Transfer{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &IllegalStateTransitionError{Entity: "transfer", ID: id, From: "completed", Action: "delete"}
		}
		return nil
	})
	return translate(err)
}

// CompleteTransfer - Move every line from source to destination, exactly once.
// The completed flag is claimed with a conditional update inside the same
// transaction as the ledger writes, so a second caller sees OutcomeAlreadyDone
// and any ledger failure leaves the transfer pending.
func (s *TransferService) CompleteTransfer(ctx context.Context, id uint) (Outcome, *models.Transfer, error) {
	outcome := OutcomeAlreadyDone
	var from, to models.Location

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := s.load(tx, id)
		if err != nil {
			return err
		}
		if t.Completed {
			return nil
		}
		from, to, err = endpoints(t.TransferType, t.FromStoreID, t.ToStoreID, t.FromSalePointID, t.ToSalePointID)
		if err != nil {
			return err
		}

		res := tx.Model(&models.Transfer{}).
			Where("id = ? AND completed = ?", id, false).
			Updates(map[string]interface{}{"completed": true, "completed_at": time.Now()})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		src := repositories.MovementSource{Kind: models.SourceTransfer, ID: t.ID, Reference: t.Reference, ActorID: t.ActorID, Notes: t.Notes}
		for i, line := range t.Items {
			qty, err := smallest(fmt.Sprintf("lines[%d].quantity", i), *line.Unit, line.Quantity)
			if err != nil {
				return err
			}
			if _, err := s.Ledger.UpdateStock(tx, from, line.ItemID, -qty, src); err != nil {
				return err
			}
			if _, err := s.Ledger.UpdateStock(tx, to, line.ItemID, qty, src); err != nil {
				return err
			}
		}
		outcome = OutcomeApplied
		return nil
	})
	if err != nil {
		return "", nil, translate(err)
	}

	t, err := s.GetTransfer(ctx, id)
	if err != nil {
		return "", nil, err
	}
	if outcome == OutcomeApplied {
		s.Log.WithFields(logrus.Fields{
			"module":      "transfer",
			"transfer_id": t.ID,
			"from":        from,
			"to":          to,
			"lines":       len(t.Items),
		}).Info("transfer completed")
		publish(ctx, s.Events, s.Log, events.Event{
			Kind:      events.TransferCompleted,
			EntityID:  t.ID,
			Reference: t.Reference,
			ActorID:   t.ActorID,
			Data:      map[string]any{"from": from, "to": to},
		})
	}
	return outcome, t, nil
}

func (s *TransferService) GetTransfer(ctx context.Context, id uint) (*models.Transfer, error) {
	return s.load(s.DB.WithContext(ctx), id)
}

// ListTransfers - Newest first; completed filters when non-nil
func (s *TransferService) ListTransfers(ctx context.Context, completed *bool, page, limit int) ([]models.Transfer, int64, error) {
	page, limit = pageBounds(page, limit)
	query := s.DB.WithContext(ctx).Model(&models.Transfer{})
	if completed != nil {
		query = query.Where("completed = ?", *completed)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Transfer
	err := query.Preload("Items").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&out).Error
	return out, total, err
}
