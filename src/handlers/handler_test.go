package handlers_test

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erp-inventory/src/handlers"
	"erp-inventory/src/routes"
	"erp-inventory/src/testutil"
)

type apiTest struct {
	t      *testing.T
	env    *testutil.Env
	router *gin.Engine
}

type envelope struct {
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Field   string          `json:"field"`
	Code    string          `json:"code"`
	From    string          `json:"from"`
	Outcome string          `json:"outcome"`
	Data    json.RawMessage `json:"data"`

	// reconcile replies with these instead of data
	Consistent    bool            `json:"consistent"`
	Discrepancies json.RawMessage `json:"discrepancies"`

	TotalPurchases string `json:"total_purchases"`

	Meta struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		Total      int64 `json:"total"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

func newAPITest(t *testing.T) *apiTest {
	t.Helper()
	gin.SetMode(gin.TestMode)
	env := testutil.NewEnv(t, nil)
	router := gin.New()
	routes.RegisterInventoryRoutes(router.Group("/api/v1/inventory"), handlers.NewInventoryHandler(env.Services, env.Log))
	return &apiTest{t: t, env: env, router: router}
}

func (a *apiTest) do(method, path string, body any) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1/inventory"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var out envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w.Code, out
}

func (a *apiTest) created(path string, body any) map[string]any {
	a.t.Helper()
	code, out := a.do(http.MethodPost, path, body)
	require.Equal(a.t, http.StatusCreated, code, out.Error)
	var data map[string]any
	require.NoError(a.t, json.Unmarshal(out.Data, &data))
	return data
}

func id(data map[string]any) uint {
	return uint(data["id"].(float64))
}

// baseUnit returns the id of the factor-1 unit created with the item.
func baseUnit(data map[string]any) uint {
	units := data["units"].([]any)
	return uint(units[0].(map[string]any)["id"].(float64))
}

func TestItemAndStoreEndpoints(t *testing.T) {
	a := newAPITest(t)

	store := a.created("/stores", gin.H{"name": "Main"})
	assert.Equal(t, "active", store["status"])

	item := a.created("/items", gin.H{
		"name":             "Soap",
		"smallest_unit":    "pcs",
		"buying_price":     "1.50",
		"selling_price":    "2.00",
		"initial_stock":    12,
		"initial_store_id": id(store),
	})
	assert.Equal(t, float64(12), item["store_stock"])
	assert.Equal(t, true, item["is_sellable"])

	t.Run("SC1: Stock snapshot reflects opening stock", func(t *testing.T) {
		code, out := a.do(http.MethodGet, fmt.Sprintf("/stores/%d/stock", id(store)), nil)
		require.Equal(t, http.StatusOK, code)
		var stock struct {
			TotalUnits int `json:"total_units"`
			Lines      []struct {
				ItemID   uint `json:"item_id"`
				Quantity int  `json:"quantity"`
			} `json:"lines"`
		}
		require.NoError(t, json.Unmarshal(out.Data, &stock))
		assert.Equal(t, 12, stock.TotalUnits)
		require.Len(t, stock.Lines, 1)
		assert.Equal(t, id(item), stock.Lines[0].ItemID)
	})

	t.Run("SC2: Listing is paginated", func(t *testing.T) {
		code, out := a.do(http.MethodGet, "/items?page=1&limit=10", nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, int64(1), out.Meta.Total)
		assert.Equal(t, 1, out.Meta.TotalPages)
		assert.Equal(t, 10, out.Meta.Limit)
	})

	t.Run("SC3: Binding failure is a bad request", func(t *testing.T) {
		code, out := a.do(http.MethodPost, "/items", gin.H{"smallest_unit": "pcs"})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.NotEmpty(t, out.Error)
	})

	t.Run("SC4: Service validation names the field", func(t *testing.T) {
		code, out := a.do(http.MethodPost, "/items", gin.H{
			"name":          "Cheap",
			"smallest_unit": "pcs",
			"buying_price":  "5.00",
			"selling_price": "4.00",
		})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "selling_price", out.Field)
	})

	t.Run("SC5: Unknown item is not found", func(t *testing.T) {
		code, _ := a.do(http.MethodGet, "/items/999", nil)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("SC6: Malformed id is rejected", func(t *testing.T) {
		code, out := a.do(http.MethodGet, "/items/abc", nil)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "invalid id", out.Error)
	})
}

func TestStockConflictsMapToConflict(t *testing.T) {
	a := newAPITest(t)
	store := a.created("/stores", gin.H{"name": "Main"})
	item := a.created("/items", gin.H{
		"name":             "Rice",
		"smallest_unit":    "kg",
		"buying_price":     "1.00",
		"selling_price":    "1.20",
		"initial_stock":    3,
		"initial_store_id": id(store),
	})

	t.Run("SC1: Overdrawing reports negative_stock", func(t *testing.T) {
		code, out := a.do(http.MethodPost, "/adjustments", gin.H{
			"item_id":  id(item),
			"quantity": -4,
			"reason":   "spoilage",
			"actor_id": 1,
			"in_store": true,
			"store_id": id(store),
		})
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, "negative_stock", out.Code)
	})

	t.Run("SC2: Inactive store reports inactive_location", func(t *testing.T) {
		code, _ := a.do(http.MethodPut, fmt.Sprintf("/stores/%d/status", id(store)), gin.H{"status": "maintenance"})
		require.Equal(t, http.StatusOK, code)

		code, out := a.do(http.MethodPost, "/adjustments", gin.H{
			"item_id":  id(item),
			"quantity": 1,
			"reason":   "found",
			"actor_id": 1,
			"in_store": true,
			"store_id": id(store),
		})
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, "inactive_location", out.Code)
	})
}

func TestTransferAndIssueEndpoints(t *testing.T) {
	a := newAPITest(t)
	mainStore := a.created("/stores", gin.H{"name": "Main"})
	annex := a.created("/stores", gin.H{"name": "Annex"})
	counter := a.created("/sale-points", gin.H{"name": "Counter"})
	item := a.created("/items", gin.H{
		"name":             "Tea",
		"smallest_unit":    "box",
		"buying_price":     "3.00",
		"selling_price":    "4.00",
		"initial_stock":    10,
		"initial_store_id": id(mainStore),
	})
	line := gin.H{"item_id": id(item), "unit_id": baseUnit(item), "quantity": 4}

	t.Run("SC1: Completing twice reports already_done", func(t *testing.T) {
		transfer := a.created("/transfers", gin.H{
			"transfer_type": "store_to_store",
			"from_store_id": id(mainStore),
			"to_store_id":   id(annex),
			"actor_id":      1,
			"items":         []gin.H{line},
		})
		path := fmt.Sprintf("/transfers/%d/complete", id(transfer))

		code, out := a.do(http.MethodPost, path, nil)
		require.Equal(t, http.StatusOK, code, out.Error)
		assert.Equal(t, "applied", out.Outcome)

		code, out = a.do(http.MethodPost, path, nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "already_done", out.Outcome)

		code, out = a.do(http.MethodDelete, fmt.Sprintf("/transfers/%d", id(transfer)), nil)
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, "illegal_state", out.Code)

		code, out = a.do(http.MethodGet, "/transfers?completed=true", nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, int64(1), out.Meta.Total)
	})

	t.Run("SC2: Issue walks pending to completed", func(t *testing.T) {
		issue := a.created("/issues", gin.H{
			"store_id":        id(mainStore),
			"sale_point_id":   id(counter),
			"requested_by_id": 2,
			"items":           []gin.H{line},
		})
		assert.Equal(t, "pending", issue["status"])

		code, out := a.do(http.MethodPost, fmt.Sprintf("/issues/%d/complete", id(issue)), gin.H{"actor_id": 3})
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, "pending", out.From)

		code, _ = a.do(http.MethodPost, fmt.Sprintf("/issues/%d/approve", id(issue)), gin.H{"actor_id": 3})
		require.Equal(t, http.StatusOK, code)
		code, out = a.do(http.MethodPost, fmt.Sprintf("/issues/%d/complete", id(issue)), gin.H{"actor_id": 3})
		require.Equal(t, http.StatusOK, code, out.Error)

		code, out = a.do(http.MethodGet, fmt.Sprintf("/sale-points/%d/stock", id(counter)), nil)
		require.Equal(t, http.StatusOK, code)
		var stock struct {
			TotalUnits int `json:"total_units"`
		}
		require.NoError(t, json.Unmarshal(out.Data, &stock))
		assert.Equal(t, 4, stock.TotalUnits)
	})

	t.Run("SC3: Ledger reconciles after the workflows", func(t *testing.T) {
		code, out := a.do(http.MethodGet, "/reports/reconcile", nil)
		require.Equal(t, http.StatusOK, code)
		assert.True(t, out.Consistent)
		assert.JSONEq(t, "[]", string(out.Discrepancies))
	})
}
