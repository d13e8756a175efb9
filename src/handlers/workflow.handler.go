package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"erp-inventory/src/models"
	"erp-inventory/src/requests"
	"erp-inventory/src/services"
)

// ============ TRANSFERS ============

func transferInput(req requests.TransferRequest) services.TransferInput {
	return services.TransferInput{
		TransferType:    models.TransferType(req.TransferType),
		FromStoreID:     req.FromStoreID,
		ToStoreID:       req.ToStoreID,
		FromSalePointID: req.FromSalePointID,
		ToSalePointID:   req.ToSalePointID,
		ActorID:         req.ActorID,
		Notes:           req.Notes,
		Lines:           lines(req.Items),
	}
}

func (h *InventoryHandler) CreateTransfer(c *gin.Context) {
	var req requests.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.Services.Transfers.CreateTransfer(c.Request.Context(), transferInput(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Transfer created successfully", "data": t})
}

func (h *InventoryHandler) UpdateTransfer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req requests.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t, err := h.Services.Transfers.UpdateTransfer(c.Request.Context(), id, transferInput(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Transfer updated successfully", "data": t})
}

func (h *InventoryHandler) DeleteTransfer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.Services.Transfers.DeleteTransfer(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Transfer deleted successfully"})
}

// CompleteTransfer - Move the stock. Repeating the call is a no-op reported
// as already_done.
func (h *InventoryHandler) CompleteTransfer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	outcome, t, err := h.Services.Transfers.CompleteTransfer(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": outcome, "data": t})
}

func (h *InventoryHandler) GetTransfer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	t, err := h.Services.Transfers.GetTransfer(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": t})
}

func (h *InventoryHandler) ListTransfers(c *gin.Context) {
	var completed *bool
	if raw := c.Query("completed"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid completed"})
			return
		}
		completed = &v
	}
	page, limit := pagination(c)
	out, total, err := h.Services.Transfers.ListTransfers(c.Request.Context(), completed, page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	paged(c, out, total, page, limit)
}

// ============ ISSUES ============

func (h *InventoryHandler) CreateIssue(c *gin.Context) {
	var req requests.IssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	issue, err := h.Services.Issues.CreateIssue(c.Request.Context(), services.IssueInput{
		StoreID:       req.StoreID,
		SalePointID:   req.SalePointID,
		RequestedByID: req.RequestedByID,
		Notes:         req.Notes,
		Lines:         lines(req.Items),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Issue created successfully", "data": issue})
}

func (h *InventoryHandler) GetIssue(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	issue, err := h.Services.Issues.GetIssue(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": issue})
}

func (h *InventoryHandler) ListIssues(c *gin.Context) {
	page, limit := pagination(c)
	out, total, err := h.Services.Issues.ListIssues(c.Request.Context(), models.IssueStatus(c.Query("status")), page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	paged(c, out, total, page, limit)
}

// issueAction binds the actor and runs one issue transition.
func (h *InventoryHandler) issueAction(c *gin.Context, run func(id, actorID uint) (*models.Issue, error)) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req requests.ActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	issue, err := run(id, req.ActorID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": issue})
}

func (h *InventoryHandler) ApproveIssue(c *gin.Context) {
	h.issueAction(c, func(id, actorID uint) (*models.Issue, error) {
		return h.Services.Issues.ApproveIssue(c.Request.Context(), id, actorID)
	})
}

func (h *InventoryHandler) RejectIssue(c *gin.Context) {
	h.issueAction(c, func(id, actorID uint) (*models.Issue, error) {
		return h.Services.Issues.RejectIssue(c.Request.Context(), id, actorID)
	})
}

func (h *InventoryHandler) CompleteIssue(c *gin.Context) {
	h.issueAction(c, func(id, actorID uint) (*models.Issue, error) {
		return h.Services.Issues.CompleteIssue(c.Request.Context(), id, actorID)
	})
}
