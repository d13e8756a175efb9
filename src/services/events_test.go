package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"erp-inventory/src/events"
	"erp-inventory/src/events/mock_events"
	"erp-inventory/src/models"
	"erp-inventory/src/services"
)

// recorder captures every published event kind in order.
func recorder(t *testing.T, failWith error) (*mock_events.MockPublisher, *[]events.Event) {
	ctrl := gomock.NewController(t)
	pub := mock_events.NewMockPublisher(ctrl)
	seen := &[]events.Event{}
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, evt events.Event) { *seen = append(*seen, evt) }).
		Return(failWith).
		AnyTimes()
	return pub, seen
}

func kinds(evts []events.Event) []events.Kind {
	out := make([]events.Kind, 0, len(evts))
	for _, e := range evts {
		out = append(out, e.Kind)
	}
	return out
}

func TestEventsFollowCommits(t *testing.T) {
	pub, seen := recorder(t, nil)
	f := newFixtureWith(t, pub)
	s1 := f.store("S1")
	s2 := f.store("S2")
	a := f.item("A", 5, s1)

	tr, err := f.Services.Transfers.CreateTransfer(f.ctx, services.TransferInput{
		TransferType: models.TransferStoreToStore, FromStoreID: &s1.ID, ToStoreID: &s2.ID, ActorID: 4,
		Lines: []services.LineInput{{ItemID: a.ID, UnitID: a.Units[0].ID, Quantity: 5}},
	})
	require.NoError(t, err)
	_, _, err = f.Services.Transfers.CompleteTransfer(f.ctx, tr.ID)
	require.NoError(t, err)
	_, _, err = f.Services.Transfers.CompleteTransfer(f.ctx, tr.ID)
	require.NoError(t, err)

	// rolled back: nothing published
	_, err = f.Services.Adjustments.CreateAdjustment(f.ctx, services.AdjustmentInput{
		ItemID: a.ID, Quantity: -1, Reason: "broken", ActorID: 4, InStore: true, StoreID: &s1.ID,
	})
	var negative *services.NegativeStockError
	require.ErrorAs(t, err, &negative)

	assert.Equal(t, []events.Kind{events.ItemCreated, events.TransferCreated, events.TransferCompleted}, kinds(*seen))
	completed := (*seen)[2]
	assert.Equal(t, tr.ID, completed.EntityID)
	assert.Equal(t, tr.Reference, completed.Reference)
	assert.Equal(t, uint(4), completed.ActorID)
	assert.False(t, completed.OccurredAt.IsZero())
}

func TestPublishFailureDoesNotFailWorkflow(t *testing.T) {
	pub, seen := recorder(t, errors.New("broker down"))
	f := newFixtureWith(t, pub)
	s1 := f.store("S1")

	a := f.item("A", 3, s1)
	assert.Equal(t, 3, f.storeQty(s1.ID, a.ID))
	require.Len(t, *seen, 1)

	var logged bool
	for _, e := range f.Hook.AllEntries() {
		if e.Level == logrus.ErrorLevel && e.Message == "broker down" {
			logged = true
			assert.Equal(t, "events", e.Data["module"])
			assert.Equal(t, string(events.ItemCreated), e.Data["context"])
		}
	}
	assert.True(t, logged, "publish failure should be logged")
}

func kindIs(kind events.Kind) gomock.Matcher {
	return gomock.Cond(func(x any) bool {
		evt, ok := x.(events.Event)
		return ok && evt.Kind == kind
	})
}

func TestIssueEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := mock_events.NewMockPublisher(ctrl)
	f := newFixtureWith(t, pub)

	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).Times(1) // item.created
	s1 := f.store("S1")
	p1 := f.salePoint("P1")
	a := f.item("A", 5, s1)

	gomock.InOrder(
		pub.EXPECT().Publish(gomock.Any(), kindIs(events.IssueCreated)).Return(nil),
		pub.EXPECT().Publish(gomock.Any(), kindIs(events.IssueApproved)).Return(nil),
		pub.EXPECT().Publish(gomock.Any(), gomock.Cond(func(x any) bool {
			evt, ok := x.(events.Event)
			return ok && evt.Kind == events.IssueCompleted && evt.ActorID == 8
		})).Return(nil),
	)

	issue, err := f.Services.Issues.CreateIssue(f.ctx, services.IssueInput{
		StoreID: s1.ID, SalePointID: p1.ID, RequestedByID: 1,
		Lines: []services.LineInput{{ItemID: a.ID, UnitID: a.Units[0].ID, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = f.Services.Issues.CompleteIssue(f.ctx, issue.ID, 8)
	require.Error(t, err)
	_, err = f.Services.Issues.ApproveIssue(f.ctx, issue.ID, 2)
	require.NoError(t, err)
	_, err = f.Services.Issues.CompleteIssue(f.ctx, issue.ID, 8)
	require.NoError(t, err)
}
