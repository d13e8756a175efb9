package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"erp-inventory/src/requests"
	"erp-inventory/src/services"
)

// ============ ADJUSTMENTS ============

// CreateAdjustment - Signed correction at one store or sale point
func (h *InventoryHandler) CreateAdjustment(c *gin.Context) {
	var req requests.AdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	adj, err := h.Services.Adjustments.CreateAdjustment(c.Request.Context(), services.AdjustmentInput{
		ItemID:      req.ItemID,
		Quantity:    req.Quantity,
		Reason:      req.Reason,
		ActorID:     req.ActorID,
		InStore:     req.InStore,
		StoreID:     req.StoreID,
		SalePointID: req.SalePointID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Adjustment applied successfully", "data": adj})
}

func (h *InventoryHandler) ListAdjustments(c *gin.Context) {
	itemID, ok := queryUint(c, "item_id")
	if !ok {
		return
	}
	page, limit := pagination(c)
	out, total, err := h.Services.Adjustments.ListAdjustments(c.Request.Context(), itemID, page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	paged(c, out, total, page, limit)
}

// ============ RECEIVINGS ============

func receivingInput(req requests.ReceivingRequest) services.ReceivingInput {
	in := services.ReceivingInput{
		SupplierID:   req.SupplierID,
		DepartmentID: req.DepartmentID,
		ActorID:      req.ActorID,
		IsStore:      req.IsStore,
		StoreID:      req.StoreID,
		SalePointID:  req.SalePointID,
		Notes:        req.Notes,
	}
	for _, l := range req.Items {
		in.Lines = append(in.Lines, services.ReceivedLineInput{
			ItemID:    l.ItemID,
			UnitID:    l.UnitID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return in
}

func (h *InventoryHandler) CreateReceiving(c *gin.Context) {
	var req requests.ReceivingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.Services.Receivings.CreateReceiving(c.Request.Context(), receivingInput(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Receiving recorded successfully", "data": rec, "total_cost": rec.TotalCost()})
}

// UpdateReceiving - Reverse the original lines and apply the new ones
func (h *InventoryHandler) UpdateReceiving(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req requests.ReceivingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.Services.Receivings.UpdateReceiving(c.Request.Context(), id, receivingInput(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Receiving updated successfully", "data": rec, "total_cost": rec.TotalCost()})
}

func (h *InventoryHandler) DeleteReceiving(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req requests.ActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.Services.Receivings.DeleteReceiving(c.Request.Context(), id, req.ActorID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Receiving deleted successfully"})
}

func (h *InventoryHandler) GetReceiving(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rec, err := h.Services.Receivings.GetReceiving(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": rec, "total_cost": rec.TotalCost()})
}

func (h *InventoryHandler) ListReceivings(c *gin.Context) {
	supplierID, ok := queryUint(c, "supplier_id")
	if !ok {
		return
	}
	page, limit := pagination(c)
	out, total, err := h.Services.Receivings.ListReceivings(c.Request.Context(), supplierID, page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	paged(c, out, total, page, limit)
}

// ============ REQUISITIONS ============

func (h *InventoryHandler) CreateRequisition(c *gin.Context) {
	var req requests.RequisitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in := services.RequisitionInput{DepartmentID: req.DepartmentID, ActorID: req.ActorID}
	for _, l := range req.Items {
		in.Lines = append(in.Lines, services.RequisitionLineInput{
			ItemID:   l.ItemID,
			UnitID:   l.UnitID,
			Quantity: l.Quantity,
			UnitCost: l.UnitCost,
		})
	}
	out, err := h.Services.Requisitions.CreateRequisition(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Requisition created successfully", "data": out, "total_cost": out.TotalCost()})
}

// ListRequisitions - Paginated, filter with ?approved=true|false
func (h *InventoryHandler) ListRequisitions(c *gin.Context) {
	var approved *bool
	if raw := c.Query("approved"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid approved"})
			return
		}
		approved = &v
	}
	page, limit := pagination(c)
	out, total, err := h.Services.Requisitions.ListRequisitions(c.Request.Context(), approved, page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	paged(c, out, total, page, limit)
}

func (h *InventoryHandler) GetRequisition(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.Services.Requisitions.GetRequisition(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "total_cost": out.TotalCost()})
}

func (h *InventoryHandler) ApproveRequisition(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req requests.ActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.Services.Requisitions.ApproveRequisition(c.Request.Context(), id, req.ActorID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Requisition approved", "data": out})
}

func (h *InventoryHandler) FundRequisition(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req requests.ActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := h.Services.Requisitions.FundRequisition(c.Request.Context(), id, req.ActorID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Requisition funded", "data": out})
}
