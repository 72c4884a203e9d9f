package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmechanic/garage-manager/models"
	"github.com/openmechanic/garage-manager/tests/testutil"
)

func setupOwnerRouter(t *testing.T) *gin.Engine {
	t.Helper()
	testutil.SetupTestConfig(t)
	testutil.SetupTestDB(t)

	router := gin.New()
	owners := NewResourceController(ResourceOptions[models.Owner]{
		AllowedFilters:   map[string]bool{"full_name": true, "email": true},
		UpdatableColumns: map[string]bool{"full_name": true, "email": true, "phone": true, "address": true},
		UniqueColumns:    []string{"full_name"},
	})
	owners.Register(&router.RouterGroup, "owners")
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func TestResourceCreateAndRetrieve(t *testing.T) {
	router := setupOwnerRouter(t)

	w := doJSON(t, router, http.MethodPost, "/owners/", map[string]string{
		"full_name": "Ada Fuentes",
		"email":     "ada@example.com",
		"phone":     "0612345678",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decodeBody[models.Owner](t, w)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Ada Fuentes", created.FullName)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/owners/%d/", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	fetched := decodeBody[models.Owner](t, w)
	assert.Equal(t, created.ID, fetched.ID)
}

func TestResourceRetrieveNotFound(t *testing.T) {
	router := setupOwnerRouter(t)

	w := doJSON(t, router, http.MethodGet, "/owners/999/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")

	w = doJSON(t, router, http.MethodGet, "/owners/not-a-number/", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_ID")
}

func TestResourceCreateRejectsDuplicate(t *testing.T) {
	router := setupOwnerRouter(t)

	w := doJSON(t, router, http.MethodPost, "/owners/", map[string]string{"full_name": "Ada Fuentes", "email": "ada@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)

	// Uniqueness is case-insensitive
	w = doJSON(t, router, http.MethodPost, "/owners/", map[string]string{"full_name": "ADA FUENTES", "email": "other@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "DUPLICATE_VALUE")
}

func TestResourceListFlatArray(t *testing.T) {
	router := setupOwnerRouter(t)
	for _, name := range []string{"Ada Fuentes", "Bram Okafor", "Cleo Marsh"} {
		w := doJSON(t, router, http.MethodPost, "/owners/", map[string]string{"full_name": name, "email": "x@example.com"})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/owners/", nil)
	require.Equal(t, http.StatusOK, w.Code)

	items := decodeBody[[]models.Owner](t, w)
	assert.Len(t, items, 3)
	assert.Equal(t, byte('['), w.Body.Bytes()[0], "An unpaginated list is a flat array")
}

func TestResourceListPaginatedEnvelope(t *testing.T) {
	router := setupOwnerRouter(t)
	for i := 1; i <= 5; i++ {
		w := doJSON(t, router, http.MethodPost, "/owners/", map[string]string{
			"full_name": fmt.Sprintf("Owner %d", i),
			"email":     "x@example.com",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/owners/?limit=2&offset=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	page := decodeBody[models.Page[models.Owner]](t, w)
	assert.Equal(t, 5, page.Count)
	assert.Len(t, page.Results, 2)
	require.NotNil(t, page.Next)
	assert.Contains(t, *page.Next, "offset=4")
	require.NotNil(t, page.Previous)
	assert.Contains(t, *page.Previous, "offset=0")

	// Last window has no next link
	w = doJSON(t, router, http.MethodGet, "/owners/?limit=2&offset=4", nil)
	page = decodeBody[models.Page[models.Owner]](t, w)
	assert.Len(t, page.Results, 1)
	assert.Nil(t, page.Next)

	// First window has no previous link
	w = doJSON(t, router, http.MethodGet, "/owners/?limit=2", nil)
	page = decodeBody[models.Page[models.Owner]](t, w)
	assert.Nil(t, page.Previous)
}

func TestResourceListFilters(t *testing.T) {
	router := setupOwnerRouter(t)
	for _, owner := range []map[string]string{
		{"full_name": "Ada Fuentes", "email": "ada@example.com"},
		{"full_name": "Bram Okafor", "email": "bram@example.com"},
	} {
		w := doJSON(t, router, http.MethodPost, "/owners/", owner)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/owners/?email=ada%40example.com", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decodeBody[[]models.Owner](t, w)
	require.Len(t, items, 1)
	assert.Equal(t, "Ada Fuentes", items[0].FullName)

	// Unknown filter keys are ignored rather than leaking into SQL
	w = doJSON(t, router, http.MethodGet, "/owners/?password=x", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items = decodeBody[[]models.Owner](t, w)
	assert.Len(t, items, 2)
}

func TestResourceUpdate(t *testing.T) {
	router := setupOwnerRouter(t)

	w := doJSON(t, router, http.MethodPost, "/owners/", map[string]string{"full_name": "Ada Fuentes", "email": "ada@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeBody[models.Owner](t, w)

	w = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/owners/%d/", created.ID), map[string]interface{}{
		"phone":      "0700000000",
		"updated_at": created.UpdatedAt.Format(time.RFC3339Nano),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated := decodeBody[models.Owner](t, w)
	assert.Equal(t, "0700000000", updated.Phone)
	assert.Equal(t, "Ada Fuentes", updated.FullName)
}

func TestResourceUpdateConflict(t *testing.T) {
	router := setupOwnerRouter(t)

	w := doJSON(t, router, http.MethodPost, "/owners/", map[string]string{"full_name": "Ada Fuentes", "email": "ada@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeBody[models.Owner](t, w)

	w = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/owners/%d/", created.ID), map[string]interface{}{
		"phone":      "0700000000",
		"updated_at": created.UpdatedAt.Add(-time.Hour).Format(time.RFC3339Nano),
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CONFLICT")

	// The stale patch must not have been applied
	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/owners/%d/", created.ID), nil)
	fetched := decodeBody[models.Owner](t, w)
	assert.Empty(t, fetched.Phone)
}

func TestResourceUpdateIgnoresProtectedColumns(t *testing.T) {
	router := setupOwnerRouter(t)

	w := doJSON(t, router, http.MethodPost, "/owners/", map[string]string{"full_name": "Ada Fuentes", "email": "ada@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeBody[models.Owner](t, w)

	w = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/owners/%d/", created.ID), map[string]interface{}{
		"id":    999,
		"phone": "0700000000",
	})
	require.Equal(t, http.StatusOK, w.Code)

	updated := decodeBody[models.Owner](t, w)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "0700000000", updated.Phone)
}

func TestResourceUpdateRejectsDuplicate(t *testing.T) {
	router := setupOwnerRouter(t)

	w := doJSON(t, router, http.MethodPost, "/owners/", map[string]string{"full_name": "Ada Fuentes", "email": "ada@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, router, http.MethodPost, "/owners/", map[string]string{"full_name": "Bram Okafor", "email": "bram@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	second := decodeBody[models.Owner](t, w)

	w = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/owners/%d/", second.ID), map[string]interface{}{
		"full_name": "ada fuentes",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "DUPLICATE_VALUE")
}

func TestResourceDelete(t *testing.T) {
	router := setupOwnerRouter(t)

	w := doJSON(t, router, http.MethodPost, "/owners/", map[string]string{"full_name": "Ada Fuentes", "email": "ada@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeBody[models.Owner](t, w)

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/owners/%d/", created.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/owners/%d/", created.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/owners/", nil)
	items := decodeBody[[]models.Owner](t, w)
	assert.Empty(t, items, "A deleted record disappears from the list")
}

func TestResourceListOrdering(t *testing.T) {
	router := setupOwnerRouter(t)
	for _, name := range []string{"Cleo Marsh", "Ada Fuentes", "Bram Okafor"} {
		w := doJSON(t, router, http.MethodPost, "/owners/", map[string]string{"full_name": name, "email": "x@example.com"})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, router, http.MethodGet, "/owners/?ordering=full_name", nil)
	require.Equal(t, http.StatusOK, w.Code)
	items := decodeBody[[]models.Owner](t, w)
	require.Len(t, items, 3)
	assert.Equal(t, "Ada Fuentes", items[0].FullName)

	w = doJSON(t, router, http.MethodGet, "/owners/?ordering=-full_name", nil)
	items = decodeBody[[]models.Owner](t, w)
	assert.Equal(t, "Cleo Marsh", items[0].FullName)
}
