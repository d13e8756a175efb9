package repositories

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"erp-inventory/src/models"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	sqlDB, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DryRun: true, DisableAutomaticPing: true, SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db
}

func TestIncrementIsComputedByTheDatabase(t *testing.T) {
	repo := &LedgerRepository{}
	db := dryRunDB(t)

	cases := []struct {
		name     string
		loc      models.Location
		ledger   string
		location string
	}{
		{"SC1: Store row", models.StoreLocation(4), `UPDATE "store_items"`, "FROM stores WHERE id ="},
		{"SC2: Sale point row", models.SalePointLocation(9), `UPDATE "sale_point_items"`, "FROM sale_points WHERE id ="},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tbl, err := tablesFor(tc.loc.Kind)
			require.NoError(t, err)

			stmt := repo.increment(db, tbl, tc.loc, 7, -3, time.Now()).Statement
			sql := stmt.SQL.String()

			assert.Contains(t, sql, tc.ledger)
			// new quantity comes from the row, never from a value read earlier
			assert.Regexp(t, `"quantity"=quantity \+ \$\d+`, sql)
			assert.Regexp(t, `quantity \+ \$\d+ >= 0`, sql)
			assert.Contains(t, sql, "EXISTS (SELECT 1 "+tc.location)
			assert.Contains(t, stmt.Vars, -3)
			assert.Contains(t, stmt.Vars, models.LocationActive)
		})
	}
}
