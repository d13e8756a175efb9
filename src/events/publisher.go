// Package events carries "record created" and state-change notifications out
// of the inventory workflows. Delivery (email, chat) lives elsewhere.
package events

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Kind string

const (
	ItemCreated         Kind = "item.created"
	KitCreated          Kind = "item_kit.created"
	AdjustmentCreated   Kind = "adjustment.created"
	ReceivingCreated    Kind = "receiving.created"
	ReceivingUpdated    Kind = "receiving.updated"
	ReceivingDeleted    Kind = "receiving.deleted"
	RequisitionCreated  Kind = "requisition.created"
	RequisitionApproved Kind = "requisition.approved"
	RequisitionFunded   Kind = "requisition.funded"
	TransferCreated     Kind = "transfer.created"
	TransferCompleted   Kind = "transfer.completed"
	IssueCreated        Kind = "issue.created"
	IssueApproved       Kind = "issue.approved"
	IssueRejected       Kind = "issue.rejected"
	IssueCompleted      Kind = "issue.completed"
)

type Event struct {
	Kind       Kind           `json:"kind"`
	EntityID   uint           `json:"entity_id"`
	Reference  uuid.UUID      `json:"reference"`
	ActorID    uint           `json:"actor_id"`
	OccurredAt time.Time      `json:"occurred_at"`
	Data       map[string]any `json:"data,omitempty"`
}

// Publisher receives events after the owning transaction has committed.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// LogPublisher writes each event as a JSON payload through logrus.
type LogPublisher struct {
	Logger *logrus.Logger
}

func NewLogPublisher(logger *logrus.Logger) *LogPublisher {
	return &LogPublisher{Logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, evt Event) error {
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	p.Logger.WithContext(ctx).WithFields(logrus.Fields{
		"module": "events",
		"event":  string(evt.Kind),
	}).Info(string(payload))
	return nil
}
