package routes

import (
	"github.com/gin-gonic/gin"

	"erp-inventory/src/handlers"
)

func RegisterInventoryRoutes(r *gin.RouterGroup, handler *handlers.InventoryHandler) {
	// Catalog
	r.GET("/items", handler.ListItems)
	r.GET("/items/low-stock", handler.LowStockItems)
	r.POST("/items", handler.CreateItem)
	r.GET("/items/:id", handler.GetItem)
	r.PUT("/items/:id", handler.UpdateItem)
	r.DELETE("/items/:id", handler.DeleteItem)
	r.GET("/items/:id/units", handler.ListUnits)
	r.POST("/items/:id/units", handler.AddUnit)
	r.POST("/items/:id/recompute", handler.RecomputeStock)

	r.POST("/kits", handler.CreateKit)
	r.GET("/kits/:id", handler.GetKit)
	r.POST("/kits/:id/deactivate", handler.DeactivateKit)

	// Locations
	r.GET("/stores", handler.ListStores)
	r.POST("/stores", handler.CreateStore)
	r.GET("/stores/:id", handler.GetStore)
	r.PUT("/stores/:id/status", handler.SetStoreStatus)
	r.GET("/stores/:id/stock", handler.StoreStock)

	r.GET("/sale-points", handler.ListSalePoints)
	r.POST("/sale-points", handler.CreateSalePoint)
	r.GET("/sale-points/:id", handler.GetSalePoint)
	r.PUT("/sale-points/:id/status", handler.SetSalePointStatus)
	r.GET("/sale-points/:id/stock", handler.SalePointStock)

	r.GET("/suppliers", handler.ListSuppliers)
	r.POST("/suppliers", handler.CreateSupplier)
	r.GET("/suppliers/:id", handler.GetSupplier)
	r.PUT("/suppliers/:id", handler.UpdateSupplier)

	// Stock movements
	r.GET("/adjustments", handler.ListAdjustments)
	r.POST("/adjustments", handler.CreateAdjustment)

	r.GET("/receivings", handler.ListReceivings)
	r.POST("/receivings", handler.CreateReceiving)
	r.GET("/receivings/:id", handler.GetReceiving)
	r.PUT("/receivings/:id", handler.UpdateReceiving)
	r.DELETE("/receivings/:id", handler.DeleteReceiving)

	r.GET("/requisitions", handler.ListRequisitions)
	r.POST("/requisitions", handler.CreateRequisition)
	r.GET("/requisitions/:id", handler.GetRequisition)
	r.POST("/requisitions/:id/approve", handler.ApproveRequisition)
	r.POST("/requisitions/:id/fund", handler.FundRequisition)

	r.GET("/transfers", handler.ListTransfers)
	r.POST("/transfers", handler.CreateTransfer)
	r.GET("/transfers/:id", handler.GetTransfer)
	r.PUT("/transfers/:id", handler.UpdateTransfer)
	r.DELETE("/transfers/:id", handler.DeleteTransfer)
	r.POST("/transfers/:id/complete", handler.CompleteTransfer)

	r.GET("/issues", handler.ListIssues)
	r.POST("/issues", handler.CreateIssue)
	r.GET("/issues/:id", handler.GetIssue)
	r.POST("/issues/:id/approve", handler.ApproveIssue)
	r.POST("/issues/:id/reject", handler.RejectIssue)
	r.POST("/issues/:id/complete", handler.CompleteIssue)

	// Reports
	r.GET("/reports/stock", handler.StockReport)
	r.GET("/reports/reconcile", handler.Reconcile)
	r.GET("/movements", handler.Movements)
}
