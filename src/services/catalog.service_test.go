package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erp-inventory/src/models"
	"erp-inventory/src/services"
)

func TestCreateItemValidation(t *testing.T) {
	f := newFixture(t)
	s1 := f.store("S1")

	base := func() services.CreateItemInput {
		return services.CreateItemInput{
			Name:         "Soap",
			SmallestUnit: "bar",
			BuyingPrice:  price("1.00"),
			SellingPrice: price("1.50"),
			MinimumStock: 10,
			OptimumStock: 40,
			ReorderPoint: 10,
		}
	}

	cases := []struct {
		name  string
		edit  func(*services.CreateItemInput)
		field string
	}{
		{"SC1: selling below buying", func(in *services.CreateItemInput) { in.SellingPrice = price("0.99") }, "selling_price"},
		{"SC2: optimum below minimum", func(in *services.CreateItemInput) { in.OptimumStock = 5 }, "optimum_stock"},
		{"SC3: reorder point above minimum", func(in *services.CreateItemInput) { in.ReorderPoint = 11 }, "reorder_point"},
		{"SC4: negative buying price", func(in *services.CreateItemInput) { in.BuyingPrice = price("-1") }, "buying_price"},
		{"SC5: opening stock without a store", func(in *services.CreateItemInput) { in.InitialStock = 5 }, "initial_store_id"},
		{"SC6: opening stock into a missing store", func(in *services.CreateItemInput) {
			in.InitialStock = 5
			in.InitialStoreID = uintPtr(s1.ID + 100)
		}, "initial_store_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base()
			tc.edit(&in)
			_, err := f.Services.Catalog.CreateItem(f.ctx, in)
			var verr *services.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	t.Run("SC7: missing name is caught by struct validation", func(t *testing.T) {
		in := base()
		in.Name = ""
		_, err := f.Services.Catalog.CreateItem(f.ctx, in)
		var verr *services.ValidationError
		require.ErrorAs(t, err, &verr)
	})

	var items int64
	require.NoError(t, f.DB.Model(&models.Item{}).Count(&items).Error)
	assert.Equal(t, int64(0), items, "rejected items must not be persisted")
}

func TestDuplicateBarcodeIsValidationError(t *testing.T) {
	f := newFixture(t)
	in := services.CreateItemInput{Name: "Tea", Barcode: "4006381333931", SmallestUnit: "box", BuyingPrice: price("2"), SellingPrice: price("3")}
	_, err := f.Services.Catalog.CreateItem(f.ctx, in)
	require.NoError(t, err)

	in.Name = "Tea again"
	_, err = f.Services.Catalog.CreateItem(f.ctx, in)
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestItemUnits(t *testing.T) {
	f := newFixture(t)
	a := f.item("Water", 0, nil)

	t.Run("SC1: Add a case of 24", func(t *testing.T) {
		u := f.unit(a, "case", 24)
		assert.Equal(t, 24, u.SmallestUnits)
		n, err := u.ToSmallest(2)
		require.NoError(t, err)
		assert.Equal(t, 48, n)
	})

	t.Run("SC2: Duplicate label is rejected", func(t *testing.T) {
		_, err := f.Services.Catalog.AddUnit(f.ctx, a.ID, services.AddUnitInput{Unit: "CASE", SmallestUnits: 12})
		var verr *services.ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("SC3: Factor below one is rejected", func(t *testing.T) {
		_, err := f.Services.Catalog.AddUnit(f.ctx, a.ID, services.AddUnitInput{Unit: "half", SmallestUnits: 0})
		var verr *services.ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("SC4: Unknown item", func(t *testing.T) {
		_, err := f.Services.Catalog.AddUnit(f.ctx, a.ID+99, services.AddUnitInput{Unit: "box", SmallestUnits: 6})
		require.ErrorIs(t, err, services.ErrNotFound)
	})

	units, err := f.Services.Catalog.ListUnits(f.ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "pcs", units[0].Unit)
	assert.Equal(t, "case", units[1].Unit)
}

func TestReorderAndRecompute(t *testing.T) {
	f := newFixture(t)
	s1 := f.store("S1")
	a, err := f.Services.Catalog.CreateItem(f.ctx, services.CreateItemInput{
		Name:           "Rice",
		SmallestUnit:   "kg",
		BuyingPrice:    price("0.80"),
		SellingPrice:   price("1.20"),
		InitialStock:   12,
		InitialStoreID: &s1.ID,
		MinimumStock:   10,
		OptimumStock:   50,
		ReorderPoint:   10,
	})
	require.NoError(t, err)

	needs, err := f.Services.Catalog.NeedsReorder(f.ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, needs)

	f.adjustStore(s1.ID, a.ID, -2)
	needs, err = f.Services.Catalog.NeedsReorder(f.ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, needs, "total equal to minimum needs reorder")

	total, err := f.Services.Catalog.TotalStock(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, total)

	low, err := f.Services.Catalog.LowStockItems(f.ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, a.ID, low[0].ID)

	// corrupt the cache, then re-derive it from the rows
	require.NoError(t, f.DB.Model(&models.Item{}).Where("id = ?", a.ID).Update("store_stock", 999).Error)
	drift, err := f.Services.Reports.Reconcile(f.ctx)
	require.NoError(t, err)
	require.Len(t, drift, 1)
	assert.Equal(t, 999, drift[0].StoreStock)
	assert.Equal(t, 10, drift[0].StoreSum)

	fixed, err := f.Services.Catalog.RecomputeStoreStock(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, fixed.StoreStock)
	fixed, err = f.Services.Catalog.RecomputeShopStock(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, fixed.ShopStock)
	f.assertReconciled()
}

func TestDeleteItemIsProtected(t *testing.T) {
	f := newFixture(t)
	s1 := f.store("S1")
	stocked := f.item("Stocked", 3, s1)
	unused := f.item("Unused", 0, nil)

	err := f.Services.Catalog.DeleteItem(f.ctx, stocked.ID)
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)

	require.NoError(t, f.Services.Catalog.DeleteItem(f.ctx, unused.ID))
	_, err = f.Services.Catalog.GetItem(f.ctx, unused.ID)
	require.ErrorIs(t, err, services.ErrNotFound)

	var units int64
	require.NoError(t, f.DB.Model(&models.ItemUnit{}).Where("item_id = ?", unused.ID).Count(&units).Error)
	assert.Equal(t, int64(0), units)
}

func TestUpdateItemKeepsStock(t *testing.T) {
	f := newFixture(t)
	s1 := f.store("S1")
	a := f.item("Old name", 7, s1)

	updated, err := f.Services.Catalog.UpdateItem(f.ctx, a.ID, services.UpdateItemInput{
		Name:         "New name",
		Status:       models.ItemInactive,
		BuyingPrice:  price("1.00"),
		SellingPrice: price("1.25"),
	})
	require.NoError(t, err)
	assert.Equal(t, "New name", updated.Name)
	assert.Equal(t, models.ItemInactive, updated.Status)
	assert.Equal(t, 7, updated.StoreStock)

	_, err = f.Services.Catalog.UpdateItem(f.ctx, a.ID, services.UpdateItemInput{
		Name: "x", Status: models.ItemActive, BuyingPrice: price("2"), SellingPrice: price("1"),
	})
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestKits(t *testing.T) {
	f := newFixture(t)
	a := f.item("Shampoo", 0, nil)
	b := f.item("Towel", 0, nil)

	kit, err := f.Services.Catalog.CreateKit(f.ctx, services.CreateKitInput{
		Name:         "Bath set",
		SellingPrice: price("6.00"),
		Items: []services.KitLineInput{
			{ItemID: a.ID, Quantity: 2},
			{ItemID: b.ID, Quantity: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, kit.Items, 2)
	assert.True(t, kit.TotalCost().Equal(price("3.00")), "got %s", kit.TotalCost())

	cost, err := f.Services.Catalog.KitTotalCost(f.ctx, kit.ID)
	require.NoError(t, err)
	assert.True(t, cost.Equal(price("3")))

	kit, err = f.Services.Catalog.DeactivateKit(f.ctx, kit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemInactive, kit.Status)

	_, err = f.Services.Catalog.CreateKit(f.ctx, services.CreateKitInput{
		Name:  "Broken",
		Items: []services.KitLineInput{{ItemID: a.ID + 100, Quantity: 1}},
	})
	var verr *services.ValidationError
	require.ErrorAs(t, err, &verr)
}
