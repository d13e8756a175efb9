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

// IssueInput requests stock from a store for a sale point.
type IssueInput struct {
	StoreID       uint `validate:"required"`
	SalePointID   uint `validate:"required"`
	RequestedByID uint `validate:"required"`
	Notes         *string
	Lines         []LineInput `validate:"required,min=1,dive"`
}

// IssueService drives pending -> approved -> completed, or pending -> rejected.
// Only completion touches the ledger.
type IssueService struct {
	DB     *gorm.DB
	Ledger *repositories.LedgerRepository
	Events events.Publisher
	Log    *logrus.Logger
}

func (s *IssueService) load(tx *gorm.DB, id uint) (*models.Issue, error) {
	var issue models.Issue
	if err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Unit").
		First(&issue, id).Error; err != nil {
		if repositories.IsNotFound(err) {
			return nil, notFound("issue", id)
		}
		return nil, err
	}
	return &issue, nil
}

// CreateIssue - Record a pending issue request
func (s *IssueService) CreateIssue(ctx context.Context, in IssueInput) (*models.Issue, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var issue *models.Issue
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireLocation(tx, "store_id", models.StoreLocation(in.StoreID)); err != nil {
			return err
		}
		if err := requireLocation(tx, "sale_point_id", models.SalePointLocation(in.SalePointID)); err != nil {
			return err
		}
		if _, err := loadUnits(tx, in.Lines); err != nil {
			return err
		}

		header := &models.Issue{
			StoreID:       in.StoreID,
			SalePointID:   in.SalePointID,
			RequestedByID: in.RequestedByID,
			Status:        models.IssuePending,
			Notes:         in.Notes,
		}
		if err := tx.Omit(clause.Associations).Create(header).Error; err != nil {
			return err
		}
		rows := make([]models.IssuedItem, 0, len(in.Lines))
		for _, l := range in.Lines {
			rows = append(rows, models.IssuedItem{IssueID: header.ID, ItemID: l.ItemID, UnitID: l.UnitID, Quantity: l.Quantity})
		}
		if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
			return err
		}
		var err error
		issue, err = s.load(tx, header.ID)
		return err
	})
	if err != nil {
		return nil, translate(err)
	}

	publish(ctx, s.Events, s.Log, events.Event{
		Kind:      events.IssueCreated,
		EntityID:  issue.ID,
		Reference: issue.Reference,
		ActorID:   issue.RequestedByID,
		Data:      map[string]any{"store_id": issue.StoreID, "sale_point_id": issue.SalePointID},
	})
	return issue, nil
}

// transition moves an issue out of `from` with a conditional update. When no
// row matches, the current status is reported in an IllegalStateTransitionError.
func (s *IssueService) transition(tx *gorm.DB, id uint, from models.IssueStatus, action string, values map[string]interface{}) error {
	query := tx.Model(&models.Issue{}).Where("id = ? AND status = ?", id, from)
	if from == models.IssueApproved {
		query = query.Where("completed_date IS NULL")
	}
	res := query.Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	current, err := s.load(tx, id)
	if err != nil {
		return err
	}
	return &IllegalStateTransitionError{Entity: "issue", ID: id, From: string(current.Status), Action: action}
}

// ApproveIssue - pending -> approved
func (s *IssueService) ApproveIssue(ctx context.Context, id, approverID uint) (*models.Issue, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.transition(tx, id, models.IssuePending, "approve", map[string]interface{}{
			"status":         models.IssueApproved,
			"approved_by_id": approverID,
		})
	})
	if err != nil {
		return nil, translate(err)
	}
	return s.afterTransition(ctx, id, events.IssueApproved, approverID)
}

// RejectIssue - pending -> rejected; terminal
func (s *IssueService) RejectIssue(ctx context.Context, id, approverID uint) (*models.Issue, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.transition(tx, id, models.IssuePending, "reject", map[string]interface{}{
			"status":         models.IssueRejected,
			"approved_by_id": approverID,
		})
	})
	if err != nil {
		return nil, translate(err)
	}
	return s.afterTransition(ctx, id, events.IssueRejected, approverID)
}

// CompleteIssue - approved -> completed, debiting the store and crediting
// the sale point for every line. Any ledger failure leaves the issue approved.
func (s *IssueService) CompleteIssue(ctx context.Context, id, completerID uint) (*models.Issue, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		issue, err := s.load(tx, id)
		if err != nil {
			return err
		}
		now := time.Now()
		if err := s.transition(tx, id, models.IssueApproved, "complete", map[string]interface{}{
			"status":          models.IssueCompleted,
			"completed_by_id": completerID,
			"completed_date":  now,
		}); err != nil {
			return err
		}

		from, to := models.StoreLocation(issue.StoreID), models.SalePointLocation(issue.SalePointID)
		src := repositories.MovementSource{Kind: models.SourceIssue, ID: issue.ID, Reference: issue.Reference, ActorID: completerID, Notes: issue.Notes}
		for i, line := range issue.Items {
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
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}

	issue, err := s.afterTransition(ctx, id, events.IssueCompleted, completerID)
	if err == nil {
		s.Log.WithFields(logrus.Fields{
			"module":   "issue",
			"issue_id": issue.ID,
			"lines":    len(issue.Items),
		}).Info("issue completed")
	}
	return issue, err
}

func (s *IssueService) afterTransition(ctx context.Context, id uint, kind events.Kind, actorID uint) (*models.Issue, error) {
	issue, err := s.GetIssue(ctx, id)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.Events, s.Log, events.Event{
		Kind:      kind,
		EntityID:  issue.ID,
		Reference: issue.Reference,
		ActorID:   actorID,
		Data:      map[string]any{"status": issue.Status},
	})
	return issue, nil
}

func (s *IssueService) GetIssue(ctx context.Context, id uint) (*models.Issue, error) {
	return s.load(s.DB.WithContext(ctx), id)
}

// ListIssues - Newest first, optionally filtered by status
func (s *IssueService) ListIssues(ctx context.Context, status models.IssueStatus, page, limit int) ([]models.Issue, int64, error) {
	page, limit = pageBounds(page, limit)
	query := s.DB.WithContext(ctx).Model(&models.Issue{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []models.Issue
	err := query.Preload("Items").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&out).Error
	return out, total, err
}
