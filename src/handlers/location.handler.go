package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"erp-inventory/src/models"
	"erp-inventory/src/requests"
	"erp-inventory/src/services"
)

func locationInput(req requests.LocationRequest) services.LocationInput {
	return services.LocationInput{
		Name:            req.Name,
		Address:         req.Address,
		BranchID:        req.BranchID,
		ContactPersonID: req.ContactPersonID,
		ContactNumber:   req.ContactNumber,
		Status:          models.LocationStatus(req.Status),
		Notes:           req.Notes,
	}
}

// ============ STORES ============

func (h *InventoryHandler) CreateStore(c *gin.Context) {
	var req requests.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	store, err := h.Services.Locations.CreateStore(c.Request.Context(), locationInput(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Store created successfully", "data": store})
}

func (h *InventoryHandler) ListStores(c *gin.Context) {
	stores, err := h.Services.Locations.ListStores(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stores})
}

func (h *InventoryHandler) GetStore(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	store, err := h.Services.Locations.GetStore(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": store})
}

func (h *InventoryHandler) SetStoreStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req requests.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	store, err := h.Services.Locations.SetStoreStatus(c.Request.Context(), id, models.LocationStatus(req.Status))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": store})
}

// StoreStock - Valued snapshot of one store
func (h *InventoryHandler) StoreStock(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	stock, err := h.Services.Locations.StoreStock(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stock})
}

// ============ SALE POINTS ============

func (h *InventoryHandler) CreateSalePoint(c *gin.Context) {
	var req requests.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	point, err := h.Services.Locations.CreateSalePoint(c.Request.Context(), locationInput(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Sale point created successfully", "data": point})
}

func (h *InventoryHandler) ListSalePoints(c *gin.Context) {
	points, err := h.Services.Locations.ListSalePoints(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": points})
}

func (h *InventoryHandler) GetSalePoint(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	point, err := h.Services.Locations.GetSalePoint(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": point})
}

func (h *InventoryHandler) SetSalePointStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req requests.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	point, err := h.Services.Locations.SetSalePointStatus(c.Request.Context(), id, models.LocationStatus(req.Status))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": point})
}

func (h *InventoryHandler) SalePointStock(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	stock, err := h.Services.Locations.SalePointStock(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stock})
}

// ============ SUPPLIERS ============

func supplierInput(req requests.SupplierRequest) services.SupplierInput {
	return services.SupplierInput{
		Name:          req.Name,
		Address:       req.Address,
		ContactPerson: req.ContactPerson,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		Status:        models.SupplierStatus(req.Status),
		PaymentTerms:  req.PaymentTerms,
		TaxNumber:     req.TaxNumber,
		Notes:         req.Notes,
	}
}

func (h *InventoryHandler) CreateSupplier(c *gin.Context) {
	var req requests.SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	supplier, err := h.Services.Locations.CreateSupplier(c.Request.Context(), supplierInput(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Supplier created successfully", "data": supplier})
}

func (h *InventoryHandler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.Services.Locations.ListSuppliers(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": suppliers})
}

// GetSupplier - Supplier details with the value of everything received from it
func (h *InventoryHandler) GetSupplier(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	supplier, err := h.Services.Locations.GetSupplier(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	total, err := h.Services.Locations.SupplierTotalPurchases(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": supplier, "total_purchases": total})
}

func (h *InventoryHandler) UpdateSupplier(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req requests.SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	supplier, err := h.Services.Locations.UpdateSupplier(c.Request.Context(), id, supplierInput(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Supplier updated successfully", "data": supplier})
}
