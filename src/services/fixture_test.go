package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"erp-inventory/src/events"
	"erp-inventory/src/models"
	"erp-inventory/src/services"
	"erp-inventory/src/testutil"
)

type fixture struct {
	*testutil.Env
	t   *testing.T
	ctx context.Context
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, nil)
}

func newFixtureWith(t *testing.T, pub events.Publisher) *fixture {
	t.Helper()
	return &fixture{Env: testutil.NewEnv(t, pub), t: t, ctx: context.Background()}
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func uintPtr(v uint) *uint { return &v }

func stringPtr(s string) *string { return &s }

func (f *fixture) store(name string) *models.Store {
	f.t.Helper()
	s, err := f.Services.Locations.CreateStore(f.ctx, services.LocationInput{Name: name})
	require.NoError(f.t, err)
	return s
}

func (f *fixture) salePoint(name string) *models.SalePoint {
	f.t.Helper()
	p, err := f.Services.Locations.CreateSalePoint(f.ctx, services.LocationInput{Name: name})
	require.NoError(f.t, err)
	return p
}

func (f *fixture) supplier(name string) *models.Supplier {
	f.t.Helper()
	s, err := f.Services.Locations.CreateSupplier(f.ctx, services.SupplierInput{Name: name})
	require.NoError(f.t, err)
	return s
}

// item creates an item priced 1.00/2.00, with opening stock in store when
// initial is positive.
func (f *fixture) item(name string, initial int, store *models.Store) *models.Item {
	f.t.Helper()
	in := services.CreateItemInput{
		Name:         name,
		SmallestUnit: "pcs",
		BuyingPrice:  price("1.00"),
		SellingPrice: price("2.00"),
		InitialStock: initial,
		IsSellable:   true,
	}
	if store != nil {
		in.InitialStoreID = &store.ID
	}
	it, err := f.Services.Catalog.CreateItem(f.ctx, in)
	require.NoError(f.t, err)
	require.Len(f.t, it.Units, 1)
	return it
}

func (f *fixture) unit(item *models.Item, label string, factor int) *models.ItemUnit {
	f.t.Helper()
	u, err := f.Services.Catalog.AddUnit(f.ctx, item.ID, services.AddUnitInput{
		Unit:          label,
		SmallestUnits: factor,
		BuyingPrice:   price("1.00").Mul(decimal.NewFromInt(int64(factor))),
		SellingPrice:  price("2.00").Mul(decimal.NewFromInt(int64(factor))),
	})
	require.NoError(f.t, err)
	return u
}

func (f *fixture) storeQty(storeID, itemID uint) int {
	f.t.Helper()
	q, err := f.Ledger.Quantity(f.DB, models.StoreLocation(storeID), itemID)
	require.NoError(f.t, err)
	return q
}

func (f *fixture) pointQty(pointID, itemID uint) int {
	f.t.Helper()
	q, err := f.Ledger.Quantity(f.DB, models.SalePointLocation(pointID), itemID)
	require.NoError(f.t, err)
	return q
}

func (f *fixture) reload(itemID uint) *models.Item {
	f.t.Helper()
	it, err := f.Services.Catalog.GetItem(f.ctx, itemID)
	require.NoError(f.t, err)
	return it
}

func (f *fixture) movementCount() int64 {
	f.t.Helper()
	var n int64
	require.NoError(f.t, f.DB.Model(&models.StockMovement{}).Count(&n).Error)
	return n
}

// assertReconciled checks every cached aggregate against the ledger rows.
func (f *fixture) assertReconciled() {
	f.t.Helper()
	out, err := f.Services.Reports.Reconcile(f.ctx)
	require.NoError(f.t, err)
	require.Empty(f.t, out, "aggregates drifted from ledger rows")
}

func (f *fixture) adjustStore(storeID, itemID uint, qty int) *models.Adjustment {
	f.t.Helper()
	adj, err := f.Services.Adjustments.CreateAdjustment(f.ctx, services.AdjustmentInput{
		ItemID:   itemID,
		Quantity: qty,
		Reason:   "stock count",
		ActorID:  1,
		InStore:  true,
		StoreID:  &storeID,
	})
	require.NoError(f.t, err)
	return adj
}
