package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"erp-inventory/src/events"
	"erp-inventory/src/models"
	"erp-inventory/src/repositories"
)

type RequisitionLineInput struct {
	ItemID   uint `validate:"required"`
	UnitID   uint `validate:"required"`
	Quantity int  `validate:"gt=0,lte=1000000"`
	// UnitCost defaults to the unit's buying price when zero.
	UnitCost decimal.Decimal
}

type RequisitionInput struct {
	DepartmentID uint                   `validate:"required"`
	ActorID      uint                   `validate:"required"`
	Lines        []RequisitionLineInput `validate:"required,min=1,dive"`
}

// RequisitionService records purchase requests. Requisitions never move
// stock; goods arrive through a receiving.
type RequisitionService struct {
	DB     *gorm.DB
	Events events.Publisher
	Log    *logrus.Logger
}

func (s *RequisitionService) load(tx *gorm.DB, id uint) (*models.Requisition, error) {
	var req models.Requisition
	if err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Unit").
		First(&req, id).Error; err != nil {
		if repositories.IsNotFound(err) {
			return nil, notFound("requisition", id)
		}
		return nil, err
	}
	return &req, nil
}

// CreateRequisition - Record a purchase request, snapshotting available stock per line
func (s *RequisitionService) CreateRequisition(ctx context.Context, in RequisitionInput) (*models.Requisition, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	refs := make([]LineInput, 0, len(in.Lines))
	for i, l := range in.Lines {
		if err := nonNegative(fmt.Sprintf("lines[%d].unit_cost", i), l.UnitCost); err != nil {
			return nil, err
		}
		refs = append(refs, LineInput{ItemID: l.ItemID, UnitID: l.UnitID, Quantity: l.Quantity})
	}

	var req *models.Requisition
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		units, err := loadUnits(tx, refs)
		if err != nil {
			return err
		}
		ids := make([]uint, 0, len(refs))
		for _, r := range refs {
			ids = append(ids, r.ItemID)
		}
		var items []models.Item
		if err := tx.Where("id IN ?", ids).Find(&items).Error; err != nil {
			return err
		}
		stock := make(map[uint]int, len(items))
		for _, it := range items {
			stock[it.ID] = it.TotalStock()
		}

		header := &models.Requisition{DepartmentID: in.DepartmentID, ActorID: in.ActorID}
		if err := tx.Omit(clause.Associations).Create(header).Error; err != nil {
			return err
		}
		lines := make([]models.RequisitionItem, 0, len(in.Lines))
		for _, l := range in.Lines {
			cost := l.UnitCost
			if cost.IsZero() {
				cost = units[l.UnitID].BuyingPrice
			}
			lines = append(lines, models.RequisitionItem{
				RequisitionID:  header.ID,
				ItemID:         l.ItemID,
				UnitID:         l.UnitID,
				AvailableStock: stock[l.ItemID],
				Quantity:       l.Quantity,
				UnitCost:       cost,
				TotalCost:      cost.Mul(decimal.NewFromInt(int64(l.Quantity))),
			})
		}
		if err := tx.Omit(clause.Associations).Create(&lines).Error; err != nil {
			return err
		}
		req, err = s.load(tx, header.ID)
		return err
	})
	if err != nil {
		return nil, translate(err)
	}

	publish(ctx, s.Events, s.Log, events.Event{
		Kind:      events.RequisitionCreated,
		EntityID:  req.ID,
		Reference: req.Reference,
		ActorID:   req.ActorID,
		Data:      map[string]any{"department_id": req.DepartmentID, "total_cost": req.TotalCost().StringFixed(2)},
	})
	return req, nil
}

// ApproveRequisition - Stamp approval. Re-approving refreshes approver and date.
func (s *RequisitionService) ApproveRequisition(ctx context.Context, id, approverID uint) (*models.Requisition, error) {
	now := time.Now()
	res := s.DB.WithContext(ctx).Model(&models.Requisition{}).Where("id = ?", id).Updates(map[string]interface{}{
		"approved":       true,
		"approved_by_id": approverID,
		"approved_date":  now,
	})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, notFound("requisition", id)
	}
	req, err := s.GetRequisition(ctx, id)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, s.Log, events.Event{
		Kind:      events.RequisitionApproved,
		EntityID:  req.ID,
		Reference: req.Reference,
		ActorID:   approverID,
	})
	return req, nil
}

// FundRequisition - Release money for an approved requisition, once
func (s *RequisitionService) FundRequisition(ctx context.Context, id, funderID uint) (*models.Requisition, error) {
	now := time.Now()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Requisition{}).
			Where("id = ? AND approved = ? AND funded = ?", id, true, false).
			Updates(map[string]interface{}{
				"funded":       true,
				"funded_by_id": funderID,
				"funded_date":  now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		req, err := s.load(tx, id)
		if err != nil {
			return err
		}
		from := "unapproved"
		if req.Funded {
			from = "funded"
		}
		return &IllegalStateTransitionError{Entity: "requisition", ID: id, From: from, Action: "fund"}
	})
	if err != nil {
		return nil, translate(err)
	}
	req, err := s.GetRequisition(ctx, id)
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, s.Log, events.Event{
		Kind:      events.RequisitionFunded,
		EntityID:  req.ID,
		Reference: req.Reference,
		ActorID:   funderID,
		Data:      map[string]any{"total_cost": req.TotalCost().StringFixed(2)},
	})
	return req, nil
}

func (s *RequisitionService) GetRequisition(ctx context.Context, id uint) (*models.Requisition, error) {
	return s.load(s.DB.WithContext(ctx), id)
}

// ListRequisitions - Newest first, optionally only approved or unapproved ones
func (s *RequisitionService) ListRequisitions(ctx context.Context, approved *bool, page, limit int) ([]models.Requisition, int64, error) {
	page, limit = pageBounds(page, limit)
	query := s.DB.WithContext(ctx).Model(&models.Requisition{})
	if approved != nil {
		query = query.Where("approved = ?", *approved)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Requisition
	err := query.Preload("Items").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&out).Error
	return out, total, err
}
