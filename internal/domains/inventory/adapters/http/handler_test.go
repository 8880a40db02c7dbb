package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklane/inventory-service/internal/domains/inventory/adapters/memory"
	"github.com/stocklane/inventory-service/internal/domains/inventory/application"
	"github.com/stocklane/inventory-service/internal/shared/errors"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := memory.NewStore()
	service := application.NewService(store.Items(), store.Levels(), store.Reservations(), store)
	router := gin.New()
	NewHandler(service, nil).Register(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func createItem(t *testing.T, router *gin.Engine, sku string) string {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/inventory-items", gin.H{
		"inventory_items": []gin.H{{"sku": sku}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	items := decode(t, rec)["inventory_items"].([]any)
	return items[0].(map[string]any)["id"].(string)
}

func createLevel(t *testing.T, router *gin.Engine, itemID, locationID string, stocked int64) {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/inventory-levels", gin.H{
		"inventory_levels": []gin.H{{
			"inventory_item_id": itemID,
			"location_id":       locationID,
			"stocked_quantity":  stocked,
		}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestCreateItems_ReturnsCreated(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/inventory-items", gin.H{
		"inventory_items": []gin.H{{"sku": "SHIRT-S", "requires_shipping": true}},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	items := decode(t, rec)["inventory_items"].([]any)
	require.Len(t, items, 1)
	item := items[0].(map[string]any)
	assert.Equal(t, "SHIRT-S", item["sku"])
	assert.Equal(t, true, item["requires_shipping"])
	assert.NotEmpty(t, item["id"])
}

func TestRetrieveItem_NotFoundProblem(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/inventory-items/iitem_missing", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), errors.ContentTypeProblemJSON)

	problem := decode(t, rec)
	assert.Equal(t, errors.TypeNotFound, problem["type"])
}

func TestCreateItems_DuplicateSKUProblem(t *testing.T) {
	router := newTestRouter(t)
	createItem(t, router, "SHIRT-S")

	rec := doJSON(t, router, http.MethodPost, "/inventory-items", gin.H{
		"inventory_items": []gin.H{{"sku": "SHIRT-S"}},
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, TypeDuplicateSKU, decode(t, rec)["type"])
}

func TestCreateReservations_InsufficientStockProblem(t *testing.T) {
	router := newTestRouter(t)
	itemID := createItem(t, router, "SHIRT-S")
	createLevel(t, router, itemID, "loc_1", 5)

	rec := doJSON(t, router, http.MethodPost, "/reservation-items", gin.H{
		"reservation_items": []gin.H{
			{"inventory_item_id": itemID, "location_id": "loc_1", "quantity": 3},
			{"inventory_item_id": itemID, "location_id": "loc_1", "quantity": 6},
		},
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	problem := decode(t, rec)
	assert.Equal(t, TypeInsufficientStock, problem["type"])
	extensions := problem["extensions"].(map[string]any)
	assert.Equal(t, itemID, extensions["inventory_item_id"])
	assert.EqualValues(t, 2, extensions["available_quantity"])
	assert.EqualValues(t, 1, extensions["entry_index"])
}

func TestAdjustInventory_InvalidAdjustmentProblem(t *testing.T) {
	router := newTestRouter(t)
	itemID := createItem(t, router, "SHIRT-S")
	createLevel(t, router, itemID, "loc_1", 5)

	rec := doJSON(t, router, http.MethodPost, "/inventory-levels/adjust", gin.H{
		"inventory_item_id": itemID,
		"location_id":       "loc_1",
		"adjustment":        -6,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, TypeInvalidAdjustment, decode(t, rec)["type"])
}

func TestAvailabilityEndpoint(t *testing.T) {
	router := newTestRouter(t)
	itemID := createItem(t, router, "SHIRT-S")
	createLevel(t, router, itemID, "loc_1", 10)
	createLevel(t, router, itemID, "loc_2", 5)

	rec := doJSON(t, router, http.MethodPost, "/reservation-items", gin.H{
		"reservation_items": []gin.H{{
			"inventory_item_id": itemID,
			"location_id":       "loc_1",
			"quantity":          3,
		}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet,
		"/inventory-items/"+itemID+"/availability?location_id=loc_1&location_id=loc_2", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.EqualValues(t, 12, body["available_quantity"])
	assert.EqualValues(t, 15, body["stocked_quantity"])
	assert.EqualValues(t, 3, body["reserved_quantity"])
}

func TestConfirmEndpoint(t *testing.T) {
	router := newTestRouter(t)
	itemID := createItem(t, router, "SHIRT-S")
	createLevel(t, router, itemID, "loc_1", 10)

	rec := doJSON(t, router, http.MethodPost,
		"/inventory-items/"+itemID+"/confirm?location_id=loc_1&quantity=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["available"])

	rec = doJSON(t, router, http.MethodPost,
		"/inventory-items/"+itemID+"/confirm?location_id=loc_1&quantity=11", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["available"])
}

func TestDeleteLevelsByLocations_FallsBackToService(t *testing.T) {
	router := newTestRouter(t)
	itemID := createItem(t, router, "SHIRT-S")
	createLevel(t, router, itemID, "loc_1", 10)

	rec := doJSON(t, router, http.MethodPost, "/inventory-levels/delete-by-locations", gin.H{
		"location_ids": []string{"loc_1"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Len(t, body["deleted_level_ids"], 1)

	rec = doJSON(t, router, http.MethodGet,
		"/inventory-levels?inventory_item_id="+itemID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode(t, rec)["count"])
}

func TestListItems_Pagination(t *testing.T) {
	router := newTestRouter(t)
	for _, sku := range []string{"A-1", "A-2", "A-3"} {
		createItem(t, router, sku)
	}

	rec := doJSON(t, router, http.MethodGet, "/inventory-items?skip=1&take=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.EqualValues(t, 3, body["count"])
	assert.Len(t, body["items"], 1)
}
