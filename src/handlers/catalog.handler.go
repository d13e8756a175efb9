package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"erp-inventory/src/models"
	"erp-inventory/src/requests"
	"erp-inventory/src/services"
)

// ============ ITEMS ============

// CreateItem - Create an item, optionally with opening stock in a store
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req requests.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sellable := true
	if req.IsSellable != nil {
		sellable = *req.IsSellable
	}
	item, err := h.Services.Catalog.CreateItem(c.Request.Context(), services.CreateItemInput{
		Name:           req.Name,
		Barcode:        req.Barcode,
		DepartmentID:   req.DepartmentID,
		CategoryID:     req.CategoryID,
		InitialStock:   req.InitialStock,
		InitialStoreID: req.InitialStoreID,
		BuyingPrice:    req.BuyingPrice,
		SellingPrice:   req.SellingPrice,
		SmallestUnit:   req.SmallestUnit,
		IsSellable:     sellable,
		IsService:      req.IsService,
		MinimumStock:   req.MinimumStock,
		OptimumStock:   req.OptimumStock,
		ReorderPoint:   req.ReorderPoint,
		LeadTimeDays:   req.LeadTimeDays,
		Notes:          req.Notes,
		ActorID:        req.ActorID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Item created successfully",
		"data":    item,
	})
}

func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req requests.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.Services.Catalog.UpdateItem(c.Request.Context(), id, services.UpdateItemInput{
		Name:         req.Name,
		Barcode:      req.Barcode,
		DepartmentID: req.DepartmentID,
		CategoryID:   req.CategoryID,
		Status:       models.ItemStatus(req.Status),
		BuyingPrice:  req.BuyingPrice,
		SellingPrice: req.SellingPrice,
		IsSellable:   req.IsSellable,
		IsService:    req.IsService,
		MinimumStock: req.MinimumStock,
		OptimumStock: req.OptimumStock,
		ReorderPoint: req.ReorderPoint,
		LeadTimeDays: req.LeadTimeDays,
		Notes:        req.Notes,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item updated successfully", "data": item})
}

func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Services.Catalog.DeleteItem(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}

// GetItem - Item with units and derived stock figures
func (h *InventoryHandler) GetItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	item, err := h.Services.Catalog.GetItem(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":          item,
		"total_stock":   item.TotalStock(),
		"needs_reorder": item.NeedsReorder(),
		"stock_value":   item.StockValue(),
		"margin":        item.Margin().StringFixed(2),
	})
}

func (h *InventoryHandler) ListItems(c *gin.Context) {
	page, limit := pagination(c)
	items, total, err := h.Services.Catalog.ListItems(c.Request.Context(), c.Query("q"), page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	paged(c, items, total, page, limit)
}

func (h *InventoryHandler) LowStockItems(c *gin.Context) {
	items, err := h.Services.Catalog.LowStockItems(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items, "count": len(items)})
}

func (h *InventoryHandler) AddUnit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req requests.AddUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	unit, err := h.Services.Catalog.AddUnit(c.Request.Context(), id, services.AddUnitInput{
		Unit:          req.Unit,
		SmallestUnits: req.SmallestUnits,
		BuyingPrice:   req.BuyingPrice,
		SellingPrice:  req.SellingPrice,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Unit added successfully", "data": unit})
}

func (h *InventoryHandler) ListUnits(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	units, err := h.Services.Catalog.ListUnits(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": units})
}

// RecomputeStock - Re-derive both aggregates of an item from its ledger rows
func (h *InventoryHandler) RecomputeStock(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.Services.Catalog.RecomputeStoreStock(ctx, id); err != nil {
		h.respondError(c, err)
		return
	}
	item, err := h.Services.Catalog.RecomputeShopStock(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": item})
}

// ============ KITS ============

func (h *InventoryHandler) CreateKit(c *gin.Context) {
	var req requests.CreateKitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in := services.CreateKitInput{
		Name:         req.Name,
		DepartmentID: req.DepartmentID,
		CategoryID:   req.CategoryID,
		SellingPrice: req.SellingPrice,
		ActorID:      req.ActorID,
	}
	for _, l := range req.Items {
		in.Items = append(in.Items, services.KitLineInput{ItemID: l.ItemID, Quantity: l.Quantity})
	}
	kit, err := h.Services.Catalog.CreateKit(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Kit created successfully", "data": kit, "total_cost": kit.TotalCost()})
}

func (h *InventoryHandler) GetKit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	kit, err := h.Services.Catalog.GetKit(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": kit, "total_cost": kit.TotalCost()})
}

func (h *InventoryHandler) DeactivateKit(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	kit, err := h.Services.Catalog.DeactivateKit(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Kit deactivated", "data": kit})
}
