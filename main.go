package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"erp-inventory/src/config"
	"erp-inventory/src/events"
	"erp-inventory/src/handlers"
	"erp-inventory/src/models"
	"erp-inventory/src/repositories"
	"erp-inventory/src/routes"
	"erp-inventory/src/services"
)

func main() {
	cfg := config.Load()
	config.SetLogLevel(cfg.LogLevel)
	logger := config.GetLogger()
	gin.SetMode(cfg.GinMode)

	db := config.InitDB(cfg)
	if err := config.Migrate(db); err != nil {
		logger.WithError(err).Fatal("failed to migrate database")
	}

	// Initialize repository, services and handler
	ledger := &repositories.LedgerRepository{DB: db}
	svc := services.New(db, ledger, events.NewLogPublisher(logger), logger)
	handler := handlers.NewInventoryHandler(svc, logger)

	if cfg.SeedSampleData {
		if err := seedSampleData(context.Background(), db, svc, logger); err != nil {
			config.LogError(logger, "main", "seedSampleData", "startup", nil, err)
		}
	}

	// Setup router with recovery middleware
	router := gin.Default()
	router.GET("/healthz", func(c *gin.Context) {
		if err := config.HealthCheck(c.Request.Context(), db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	routes.RegisterInventoryRoutes(api.Group("/inventory"), handler)

	logger.WithField("port", cfg.Port).Info("starting inventory server")
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("failed to start server")
	}
}

// seedSampleData creates a store, a sale point, a supplier and two items
// when the catalog is empty. Opening stock goes through the ledger.
func seedSampleData(ctx context.Context, db *gorm.DB, svc *services.Services, logger *logrus.Logger) error {
	var itemCount int64
	if err := db.Model(&models.Item{}).Count(&itemCount).Error; err != nil {
		return err
	}
	if itemCount > 0 {
		return nil
	}

	logger.Info("seeding sample inventory data")
	store, err := svc.Locations.CreateStore(ctx, services.LocationInput{Name: "Main Store", Address: "Back Office"})
	if err != nil {
		return err
	}
	if _, err := svc.Locations.CreateSalePoint(ctx, services.LocationInput{Name: "Front Counter"}); err != nil {
		return err
	}
	if _, err := svc.Locations.CreateSupplier(ctx, services.SupplierInput{Name: "General Supplies Ltd", PaymentTerms: "net 30"}); err != nil {
		return err
	}

	items := []services.CreateItemInput{
		{Name: "Bottled Water 500ml", SmallestUnit: "bottle", BuyingPrice: decimal.RequireFromString("0.40"), SellingPrice: decimal.RequireFromString("1.00"), InitialStock: 240, MinimumStock: 48, OptimumStock: 240, ReorderPoint: 48, IsSellable: true},
		{Name: "Paper Towels", SmallestUnit: "roll", BuyingPrice: decimal.RequireFromString("1.10"), SellingPrice: decimal.RequireFromString("2.50"), InitialStock: 60, MinimumStock: 12, OptimumStock: 60, ReorderPoint: 12, IsSellable: true},
	}
	for _, in := range items {
		in.InitialStoreID = &store.ID
		if _, err := svc.Catalog.CreateItem(ctx, in); err != nil {
			return err
		}
	}
	logger.WithField("items", len(items)).Info("seeded sample items")
	return nil
}
