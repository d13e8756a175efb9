package repositories_test

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"erp-inventory/src/models"
	"erp-inventory/src/repositories"
	"erp-inventory/src/testutil"
)

type ledgerFixture struct {
	db     *gorm.DB
	repo   *repositories.LedgerRepository
	store  models.Store
	point  models.SalePoint
	itemID uint
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	db := testutil.OpenDB(t)
	f := &ledgerFixture{db: db, repo: &repositories.LedgerRepository{DB: db}}

	f.store = models.Store{Name: "Main", Status: models.LocationActive}
	require.NoError(t, db.Create(&f.store).Error)
	f.point = models.SalePoint{Name: "Counter", Status: models.LocationActive}
	require.NoError(t, db.Create(&f.point).Error)

	item := models.Item{
		Name:         "Widget",
		Status:       models.ItemActive,
		BuyingPrice:  decimal.NewFromInt(2),
		SellingPrice: decimal.NewFromInt(5),
		SmallestUnit: "pcs",
	}
	require.NoError(t, db.Create(&item).Error)
	f.itemID = item.ID
	return f
}

func (f *ledgerFixture) apply(loc models.Location, delta int) (int, error) {
	var balance int
	err := f.db.Transaction(func(tx *gorm.DB) error {
		var err error
		balance, err = f.repo.UpdateStock(tx, loc, f.itemID, delta, repositories.MovementSource{
			Kind:      models.SourceAdjustment,
			ID:        1,
			Reference: uuid.New(),
			ActorID:   1,
		})
		return err
	})
	return balance, err
}

func (f *ledgerFixture) item(t *testing.T) models.Item {
	t.Helper()
	var it models.Item
	require.NoError(t, f.db.First(&it, f.itemID).Error)
	return it
}

func TestUpdateStock(t *testing.T) {
	f := newLedgerFixture(t)
	store := models.StoreLocation(f.store.ID)
	point := models.SalePointLocation(f.point.ID)

	t.Run("SC1: First mutation creates the row", func(t *testing.T) {
		q, err := f.repo.Quantity(f.db, store, f.itemID)
		require.NoError(t, err)
		assert.Equal(t, 0, q)

		balance, err := f.apply(store, 7)
		require.NoError(t, err)
		assert.Equal(t, 7, balance)

		var rows int64
		require.NoError(t, f.db.Model(&models.StoreItem{}).Count(&rows).Error)
		assert.Equal(t, int64(1), rows)
		assert.Equal(t, 7, f.item(t).StoreStock)
	})

	t.Run("SC2: Subsequent mutations reuse the row", func(t *testing.T) {
		balance, err := f.apply(store, -4)
		require.NoError(t, err)
		assert.Equal(t, 3, balance)

		var rows int64
		require.NoError(t, f.db.Model(&models.StoreItem{}).Count(&rows).Error)
		assert.Equal(t, int64(1), rows)
		assert.Equal(t, 3, f.item(t).StoreStock)
	})

	t.Run("SC3: Going below zero fails and writes nothing", func(t *testing.T) {
		_, err := f.apply(store, -5)
		var negative *repositories.NegativeStockError
		require.ErrorAs(t, err, &negative)
		assert.Equal(t, 3, negative.Current)
		assert.Equal(t, store, negative.Location)

		q, err := f.repo.Quantity(f.db, store, f.itemID)
		require.NoError(t, err)
		assert.Equal(t, 3, q)
	})

	t.Run("SC4: Sale point tier updates shop stock only", func(t *testing.T) {
		_, err := f.apply(point, 4)
		require.NoError(t, err)
		it := f.item(t)
		assert.Equal(t, 3, it.StoreStock)
		assert.Equal(t, 4, it.ShopStock)
	})

	t.Run("SC5: Inactive location is refused", func(t *testing.T) {
		require.NoError(t, f.db.Model(&f.point).Update("status", models.LocationInactive).Error)
		_, err := f.apply(point, 1)
		var inactive *repositories.InactiveLocationError
		require.ErrorAs(t, err, &inactive)
		assert.Equal(t, models.LocationInactive, inactive.Status)
	})

	t.Run("SC6: Unknown location is not found", func(t *testing.T) {
		_, err := f.apply(models.StoreLocation(f.store.ID+42), 1)
		assert.True(t, errors.Is(err, repositories.ErrNotFound))
		assert.True(t, repositories.IsNotFound(err))
	})

	t.Run("SC7: Journal records each applied delta", func(t *testing.T) {
		movements, total, err := f.repo.Movements(f.db, repositories.MovementFilter{Location: &store}, 1, 10)
		require.NoError(t, err)
		require.Equal(t, int64(2), total)
		// newest first
		assert.Equal(t, -4, movements[0].Amount)
		assert.Equal(t, 3, movements[0].Balance)
		assert.Equal(t, 7, movements[1].Amount)
		assert.Equal(t, 7, movements[1].Balance)

		paged, total, err := f.repo.Movements(f.db, repositories.MovementFilter{ItemID: f.itemID}, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, paged, 1)
		assert.Equal(t, 7, paged[0].Amount)
	})
}

func TestSnapshotAndRows(t *testing.T) {
	f := newLedgerFixture(t)
	_, err := f.apply(models.StoreLocation(f.store.ID), 5)
	require.NoError(t, err)
	_, err = f.apply(models.SalePointLocation(f.point.ID), 2)
	require.NoError(t, err)

	lines, err := f.repo.Snapshot(f.db, models.StoreLocation(f.store.ID))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Widget", lines[0].ItemName)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.True(t, lines[0].UnitValue.Equal(decimal.NewFromInt(2)))

	lines, err = f.repo.Snapshot(f.db, models.SalePointLocation(f.point.ID))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.True(t, lines[0].UnitValue.Equal(decimal.NewFromInt(5)))

	storeRows, err := f.repo.StoreRows(f.db)
	require.NoError(t, err)
	pointRows, err := f.repo.SalePointRows(f.db)
	require.NoError(t, err)
	require.Len(t, storeRows, 1)
	require.Len(t, pointRows, 1)
	assert.Equal(t, 5, storeRows[0].Quantity)
	assert.Equal(t, 2, pointRows[0].Quantity)

	// drift the cache, then recompute both tiers
	require.NoError(t, f.db.Model(&models.Item{}).Where("id = ?", f.itemID).
		Updates(map[string]interface{}{"store_stock": 0, "shop_stock": 0}).Error)
	require.NoError(t, f.repo.RecomputeStoreStock(f.db, f.itemID))
	require.NoError(t, f.repo.RecomputeShopStock(f.db, f.itemID))
	it := f.item(t)
	assert.Equal(t, 5, it.StoreStock)
	assert.Equal(t, 2, it.ShopStock)
}

type callbackRegistrar interface {
	Register(name string, fn func(*gorm.DB)) error
}

// afterOnce runs fn inside the caller's transaction right after the first
// statement on table for which armed is set.
func afterOnce(t *testing.T, processor callbackRegistrar, name, table string, armed *atomic.Bool, fn func(tx *gorm.DB) error) {
	t.Helper()
	register := func(d *gorm.DB) {
		if d.Statement.Table != table || !armed.CompareAndSwap(true, false) {
			return
		}
		require.NoError(t, fn(d.Session(&gorm.Session{NewDB: true})))
	}
	require.NoError(t, processor.Register(name, register))
}

func TestUpdateStockJudgesCommittedState(t *testing.T) {
	t.Run("SC1: Stock drained after our read is not overwritten", func(t *testing.T) {
		f := newLedgerFixture(t)
		store := models.StoreLocation(f.store.ID)
		_, err := f.apply(store, 5)
		require.NoError(t, err)

		var armed atomic.Bool
		afterOnce(t, f.db.Callback().Create().After("gorm:create"), "test:drain", "store_items", &armed, func(tx *gorm.DB) error {
			return tx.Exec("UPDATE store_items SET quantity = 0 WHERE store_id = ? AND item_id = ?", f.store.ID, f.itemID).Error
		})
		armed.Store(true)

		_, err = f.apply(store, -3)
		var negative *repositories.NegativeStockError
		require.ErrorAs(t, err, &negative)
		assert.Equal(t, 0, negative.Current)
		assert.False(t, armed.Load())

		q, err := f.repo.Quantity(f.db, store, f.itemID)
		require.NoError(t, err)
		assert.Equal(t, 5, q)
	})

	t.Run("SC2: Concurrent increments both land", func(t *testing.T) {
		f := newLedgerFixture(t)
		store := models.StoreLocation(f.store.ID)
		_, err := f.apply(store, 5)
		require.NoError(t, err)

		var armed atomic.Bool
		afterOnce(t, f.db.Callback().Create().After("gorm:create"), "test:race", "store_items", &armed, func(tx *gorm.DB) error {
			return tx.Exec("UPDATE store_items SET quantity = quantity + 4 WHERE store_id = ? AND item_id = ?", f.store.ID, f.itemID).Error
		})
		armed.Store(true)

		balance, err := f.apply(store, 2)
		require.NoError(t, err)
		assert.Equal(t, 11, balance)
	})

	t.Run("SC3: Deactivation after the status read still refuses", func(t *testing.T) {
		f := newLedgerFixture(t)
		store := models.StoreLocation(f.store.ID)

		var armed atomic.Bool
		// fires between the status read and the increment
		afterOnce(t, f.db.Callback().Create().After("gorm:create"), "test:deactivate", "store_items", &armed, func(tx *gorm.DB) error {
			return tx.Exec("UPDATE stores SET status = ? WHERE id = ?", models.LocationInactive, f.store.ID).Error
		})
		armed.Store(true)

		_, err := f.apply(store, 3)
		var inactive *repositories.InactiveLocationError
		require.ErrorAs(t, err, &inactive)
		assert.Equal(t, models.LocationInactive, inactive.Status)

		var movements int64
		require.NoError(t, f.db.Model(&models.StockMovement{}).Count(&movements).Error)
		assert.Zero(t, movements)
	})

	t.Run("SC4: Oversized delta is refused", func(t *testing.T) {
		f := newLedgerFixture(t)
		_, err := f.apply(models.StoreLocation(f.store.ID), models.MaxStockDelta+1)
		assert.ErrorIs(t, err, models.ErrQuantityOutOfRange)
	})
}
