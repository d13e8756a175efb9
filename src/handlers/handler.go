package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"erp-inventory/src/config"
	"erp-inventory/src/requests"
	"erp-inventory/src/services"
)

type InventoryHandler struct {
	Services *services.Services
	Log      *logrus.Logger
}

func NewInventoryHandler(svc *services.Services, log *logrus.Logger) *InventoryHandler {
	return &InventoryHandler{Services: svc, Log: log}
}

// respondError maps the service error taxonomy onto HTTP status codes.
func (h *InventoryHandler) respondError(c *gin.Context, err error) {
	var (
		validation *services.ValidationError
		inactive   *services.InactiveLocationError
		negative   *services.NegativeStockError
		illegal    *services.IllegalStateTransitionError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": validation.Field})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &negative):
		c.JSON(http.StatusConflict, gin.H{
			"error":    err.Error(),
			"code":     "negative_stock",
			"location": negative.Location,
			"item_id":  negative.ItemID,
			"current":  negative.Current,
		})
	case errors.As(err, &inactive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "inactive_location", "location": inactive.Location})
	case errors.As(err, &illegal):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "illegal_state", "from": illegal.From})
	default:
		config.LogError(h.Log, "handlers", c.HandlerName(), c.FullPath(), nil, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func queryUint(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(v), true
}

func pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return page, limit
}

func paged(c *gin.Context, data any, total int64, page, limit int) {
	totalPages := (int(total) + limit - 1) / limit
	c.JSON(http.StatusOK, gin.H{
		"data": data,
		"meta": gin.H{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": totalPages,
		},
	})
}

func lines(in []requests.LineRequest) []services.LineInput {
	out := make([]services.LineInput, 0, len(in))
	for _, l := range in {
		out = append(out, services.LineInput{ItemID: l.ItemID, UnitID: l.UnitID, Quantity: l.Quantity})
	}
	return out
}
