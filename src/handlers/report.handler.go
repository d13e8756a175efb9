package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"erp-inventory/src/models"
	"erp-inventory/src/repositories"
)

// StockReport - Per item totals across every location
func (h *InventoryHandler) StockReport(c *gin.Context) {
	report, err := h.Services.Reports.StockReport(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": report})
}

// Reconcile - Items whose cached totals drifted from the ledger rows
func (h *InventoryHandler) Reconcile(c *gin.Context) {
	out, err := h.Services.Reports.Reconcile(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"consistent":    len(out) == 0,
		"discrepancies": out,
		"checked_at":    time.Now().Format(time.RFC3339),
	})
}

// Movements - Journal of ledger mutations
func (h *InventoryHandler) Movements(c *gin.Context) {
	var f repositories.MovementFilter

	itemID, ok := queryUint(c, "item_id")
	if !ok {
		return
	}
	f.ItemID = itemID

	if kind := c.Query("location_kind"); kind != "" {
		locID, ok := queryUint(c, "location_id")
		if !ok {
			return
		}
		lk := models.LocationKind(kind)
		if (lk != models.LocationStore && lk != models.LocationSalePoint) || locID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location_kind or location_id"})
			return
		}
		f.Location = &models.Location{Kind: lk, ID: locID}
	}

	if ref := c.Query("reference"); ref != "" {
		parsed, err := uuid.Parse(ref)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reference"})
			return
		}
		f.Reference = parsed
	}

	if fromStr := c.Query("from_date"); fromStr != "" {
		from, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from_date format. Use YYYY-MM-DD"})
			return
		}
		f.FromDate = from
	}
	if toStr := c.Query("to_date"); toStr != "" {
		to, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to_date format. Use YYYY-MM-DD"})
			return
		}
		f.ToDate = time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, to.Location())
	}

	page, limit := pagination(c)
	out, total, err := h.Services.Reports.Movements(c.Request.Context(), f, page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	paged(c, out, total, page, limit)
}
