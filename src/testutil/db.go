// Package testutil opens throwaway databases and services for tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"erp-inventory/src/config"
	"erp-inventory/src/events"
	"erp-inventory/src/repositories"
	"erp-inventory/src/services"
)

// OpenDB returns a migrated in-memory sqlite database private to t.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", ":", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])

	db, err := config.OpenDB("sqlite", dsn)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Logger discards output but keeps entries for assertions.
func Logger() (*logrus.Logger, *test.Hook) {
	return test.NewNullLogger()
}

// Env is a fully wired service graph over a private database.
type Env struct {
	DB       *gorm.DB
	Ledger   *repositories.LedgerRepository
	Services *services.Services
	Log      *logrus.Logger
	Hook     *test.Hook
}

// NewEnv wires services over a fresh database. A nil pub disables events.
func NewEnv(t testing.TB, pub events.Publisher) *Env {
	t.Helper()
	db := OpenDB(t)
	log, hook := Logger()
	ledger := &repositories.LedgerRepository{DB: db}
	return &Env{
		DB:       db,
		Ledger:   ledger,
		Services: services.New(db, ledger, pub, log),
		Log:      log,
		Hook:     hook,
	}
}
