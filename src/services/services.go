package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"erp-inventory/src/config"
	"erp-inventory/src/events"
	"erp-inventory/src/models"
	"erp-inventory/src/repositories"
)

// Services bundles every inventory workflow over one database and ledger.
type Services struct {
	Catalog      *CatalogService
	Locations    *LocationService
	Adjustments  *AdjustmentService
	Receivings   *ReceivingService
	Requisitions *RequisitionService
	Transfers    *TransferService
	Issues       *IssueService
	Reports      *ReportService
}

func New(db *gorm.DB, ledger *repositories.LedgerRepository, pub events.Publisher, log *logrus.Logger) *Services {
	return &Services{
		Catalog:      &CatalogService{DB: db, Ledger: ledger, Events: pub, Log: log},
		Locations:    &LocationService{DB: db, Ledger: ledger},
		Adjustments:  &AdjustmentService{DB: db, Ledger: ledger, Events: pub, Log: log},
		Receivings:   &ReceivingService{DB: db, Ledger: ledger, Events: pub, Log: log},
		Requisitions: &RequisitionService{DB: db, Events: pub, Log: log},
		Transfers:    &TransferService{DB: db, Ledger: ledger, Events: pub, Log: log},
		Issues:       &IssueService{DB: db, Ledger: ledger, Events: pub, Log: log},
		Reports:      &ReportService{DB: db, Ledger: ledger},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &ValidationError{Field: fe.Namespace(), Message: fmt.Sprintf("failed %q validation", fe.Tag())}
	}
	return &ValidationError{Message: err.Error()}
}

// publish hands evt to the publisher after commit. Delivery problems are
// logged and never fail the workflow that already committed.
func publish(ctx context.Context, pub events.Publisher, log *logrus.Logger, evt events.Event) {
	if pub == nil {
		return
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	if err := pub.Publish(ctx, evt); err != nil && log != nil {
		config.LogError(log, "events", "publish", string(evt.Kind), evt.EntityID, err)
	}
}

// LineInput is one itemized movement line expressed in a unit of the item.
type LineInput struct {
	ItemID   uint `validate:"required"`
	UnitID   uint `validate:"required"`
	Quantity int  `validate:"gt=0,lte=1000000"`
}

// loadUnits fetches the units referenced by lines and checks that every unit
// belongs to the line's item.
func loadUnits(tx *gorm.DB, lines []LineInput) (map[uint]models.ItemUnit, error) {
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.UnitID)
	}
	var units []models.ItemUnit
	if err := tx.Where("id IN ?", ids).Find(&units).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.ItemUnit, len(units))
	for _, u := range units {
		byID[u.ID] = u
	}
	for i, l := range lines {
		u, ok := byID[l.UnitID]
		if !ok {
			return nil, invalid(fmt.Sprintf("lines[%d].unit_id", i), "unit %d does not exist", l.UnitID)
		}
		if u.ItemID != l.ItemID {
			return nil, invalid(fmt.Sprintf("lines[%d].unit_id", i), "unit %d does not belong to item %d", l.UnitID, l.ItemID)
		}
		if _, err := smallest(fmt.Sprintf("lines[%d].quantity", i), u, l.Quantity); err != nil {
			return nil, err
		}
	}
	return byID, nil
}

// smallest converts a line quantity to smallest units, reporting overflow on field.
func smallest(field string, u models.ItemUnit, qty int) (int, error) {
	n, err := u.ToSmallest(qty)
	if errors.Is(err, models.ErrQuantityOutOfRange) {
		return 0, invalid(field, "%d %s exceeds %d smallest units", qty, u.Unit, models.MaxStockDelta)
	}
	return n, err
}

// requireLocation checks that a referenced store or sale point exists.
func requireLocation(tx *gorm.DB, field string, loc models.Location) error {
	var count int64
	var err error
	switch loc.Kind {
	case models.LocationStore:
		err = tx.Model(&models.Store{}).Where("id = ?", loc.ID).Count(&count).Error
	case models.LocationSalePoint:
		err = tx.Model(&models.SalePoint{}).Where("id = ?", loc.ID).Count(&count).Error
	default:
		return invalid(field, "unknown location kind %q", loc.Kind)
	}
	if err != nil {
		return err
	}
	if count == 0 {
		return invalid(field, "%s %d does not exist", loc.Kind, loc.ID)
	}
	return nil
}

func nonNegative(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return invalid(field, "must not be negative")
	}
	return nil
}

func pageBounds(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return page, limit
}
