package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openmechanic/garage-manager/config"
	"github.com/openmechanic/garage-manager/models"
	"github.com/openmechanic/garage-manager/utils"
)

// protectedColumns can never be patched directly
var protectedColumns = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"deleted_at": true,
}

// ResourceOptions configures one generic resource controller
type ResourceOptions[T models.Timestamped] struct {
	// AllowedFilters whitelists the columns usable as list filters and
	// ordering keys
	AllowedFilters map[string]bool
	// UpdatableColumns whitelists the scalar columns a PATCH may change
	UpdatableColumns map[string]bool
	// UniqueColumns are checked case-insensitively against non-deleted rows
	// on create and update
	UniqueColumns []string
	// Preloads are applied to every read
	Preloads []string
	// BeforeCreate runs after binding, before the insert
	BeforeCreate func(c *gin.Context, record *T) error
	// BeforeUpdate runs after the conflict check, before applying the patch
	BeforeUpdate func(existing *T, patch map[string]interface{}) error
	// AfterSave runs inside the update transaction with the full patch,
	// for resources with owned collections to maintain
	AfterSave func(tx *gorm.DB, id uint, patch map[string]interface{}) error
}

// ResourceController serves the REST surface of one entity collection:
// list (flat array, or paginated envelope when a limit is present),
// retrieve, create, patch with an optimistic-concurrency check, delete.
type ResourceController[T models.Timestamped] struct {
	opts ResourceOptions[T]
}

// NewResourceController creates a resource controller with the given options
func NewResourceController[T models.Timestamped](opts ResourceOptions[T]) *ResourceController[T] {
	if opts.AllowedFilters == nil {
		opts.AllowedFilters = map[string]bool{}
	}
	if opts.UpdatableColumns == nil {
		opts.UpdatableColumns = map[string]bool{}
	}
	return &ResourceController[T]{opts: opts}
}

// Register mounts the CRUD routes under group at path, e.g. "owners"
func (rc *ResourceController[T]) Register(group *gin.RouterGroup, path string) {
	group.GET("/"+path+"/", rc.List)
	group.POST("/"+path+"/", rc.Create)
	group.GET("/"+path+"/:id/", rc.Retrieve)
	group.PATCH("/"+path+"/:id/", rc.Update)
	group.DELETE("/"+path+"/:id/", rc.Delete)
}

// List handles GET on the collection
func (rc *ResourceController[T]) List(c *gin.Context) {
	db := config.GetDB()
	query := utils.ParseListQuery(c, rc.opts.AllowedFilters)

	base := db.Model(new(T))
	for column, value := range query.Filters {
		base = base.Where(fmt.Sprintf("%s = ?", column), value)
	}

	scoped := base.Session(&gorm.Session{})
	read := scoped.Order(query.OrderClause())
	for _, preload := range rc.opts.Preloads {
		read = read.Preload(preload)
	}

	if !query.Paginated {
		items := make([]T, 0)
		if err := read.Find(&items).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list records")
			return
		}
		c.JSON(http.StatusOK, items)
		return
	}

	var count int64
	if err := scoped.Count(&count).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to count records")
		return
	}

	items := make([]T, 0)
	if err := read.Limit(query.Limit).Offset(query.Offset).Find(&items).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list records")
		return
	}

	c.JSON(http.StatusOK, models.Page[T]{
		Count:    int(count),
		Next:     pageLink(c, query, query.Offset+query.Limit, int(count)),
		Previous: pageLink(c, query, query.Offset-query.Limit, int(count)),
		Results:  items,
	})
}

// pageLink rebuilds the request URL with a shifted offset, or nil when the
// target window falls outside the collection
func pageLink(c *gin.Context, query utils.ListQuery, offset, count int) *string {
	if offset < 0 && query.Offset == 0 {
		return nil
	}
	if offset >= count {
		return nil
	}
	if offset < 0 {
		offset = 0
	}

	target := *c.Request.URL
	values, _ := url.ParseQuery(target.RawQuery)
	values.Set("limit", strconv.Itoa(query.Limit))
	values.Set("offset", strconv.Itoa(offset))
	target.RawQuery = values.Encode()
	link := target.String()
	return &link
}

// Retrieve handles GET on a single record
func (rc *ResourceController[T]) Retrieve(c *gin.Context) {
	record, ok := rc.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, record)
}

// Create handles POST on the collection
func (rc *ResourceController[T]) Create(c *gin.Context) {
	var record T
	if err := c.ShouldBindJSON(&record); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data: "+err.Error())
		return
	}

	if rc.opts.BeforeCreate != nil {
		if err := rc.opts.BeforeCreate(c, &record); err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
	}

	db := config.GetDB()
	if !rc.checkUnique(c, db, record, 0) {
		return
	}

	if err := db.Create(&record).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create record")
		return
	}

	created, ok := rc.reload(c, db, record.GetID())
	if !ok {
		return
	}
	c.JSON(http.StatusCreated, created)
}

// Update handles PATCH on a single record. A patch carrying an updated_at
// that no longer matches the stored row is rejected with 409 so the caller
// can tell "edited elsewhere" apart from a generic failure.
func (rc *ResourceController[T]) Update(c *gin.Context) {
	existing, ok := rc.load(c)
	if !ok {
		return
	}

	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data: "+err.Error())
		return
	}

	if !rc.checkConcurrency(c, existing, patch) {
		return
	}

	if rc.opts.BeforeUpdate != nil {
		if err := rc.opts.BeforeUpdate(&existing, patch); err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
	}

	updates := map[string]interface{}{}
	for key, value := range patch {
		if protectedColumns[key] || !rc.opts.UpdatableColumns[key] {
			continue
		}
		switch value.(type) {
		case string, float64, bool, nil:
			updates[key] = value
		}
	}

	db := config.GetDB()
	if !rc.checkUniqueUpdates(c, db, updates, existing.GetID()) {
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&existing).Updates(updates).Error; err != nil {
				return err
			}
		}
		if rc.opts.AfterSave != nil {
			return rc.opts.AfterSave(tx, existing.GetID(), patch)
		}
		return nil
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update record")
		return
	}

	updated, ok := rc.reload(c, db, existing.GetID())
	if !ok {
		return
	}
	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE on a single record
func (rc *ResourceController[T]) Delete(c *gin.Context) {
	existing, ok := rc.load(c)
	if !ok {
		return
	}

	if err := config.GetDB().Delete(&existing).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete record")
		return
	}
	c.Status(http.StatusNoContent)
}

// load parses the :id parameter and fetches the record with preloads
func (rc *ResourceController[T]) load(c *gin.Context) (T, bool) {
	var zero T

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Record id must be a number")
		return zero, false
	}

	record, ok := rc.reload(c, config.GetDB(), uint(id))
	return record, ok
}

func (rc *ResourceController[T]) reload(c *gin.Context, db *gorm.DB, id uint) (T, bool) {
	var record T
	read := db
	for _, preload := range rc.opts.Preloads {
		read = read.Preload(preload)
	}
	if err := read.First(&record, id).Error; err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Record not found")
		return record, false
	}
	return record, true
}

// checkConcurrency compares a submitted updated_at precondition against the
// stored row
func (rc *ResourceController[T]) checkConcurrency(c *gin.Context, existing T, patch map[string]interface{}) bool {
	raw, ok := patch["updated_at"].(string)
	if !ok || raw == "" {
		return true
	}

	sent, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "updated_at is not a valid timestamp")
		return false
	}
	if !sent.Equal(existing.GetUpdatedAt()) {
		respondError(c, http.StatusConflict, "CONFLICT", "Record was modified by someone else, reload and retry")
		return false
	}
	return true
}

// checkUnique enforces the case-insensitive uniqueness of configured columns
// among non-deleted rows, excluding the record itself
func (rc *ResourceController[T]) checkUnique(c *gin.Context, db *gorm.DB, record T, selfID uint) bool {
	if len(rc.opts.UniqueColumns) == 0 {
		return true
	}

	fields := recordFields(record)
	for _, column := range rc.opts.UniqueColumns {
		value, ok := fields[column].(string)
		if !ok || value == "" {
			continue
		}
		if !rc.uniqueValueFree(c, db, column, value, selfID) {
			return false
		}
	}
	return true
}

func (rc *ResourceController[T]) checkUniqueUpdates(c *gin.Context, db *gorm.DB, updates map[string]interface{}, selfID uint) bool {
	for _, column := range rc.opts.UniqueColumns {
		value, ok := updates[column].(string)
		if !ok || value == "" {
			continue
		}
		if !rc.uniqueValueFree(c, db, column, value, selfID) {
			return false
		}
	}
	return true
}

func (rc *ResourceController[T]) uniqueValueFree(c *gin.Context, db *gorm.DB, column, value string, selfID uint) bool {
	var count int64
	query := db.Model(new(T)).Where(fmt.Sprintf("LOWER(%s) = LOWER(?)", column), value)
	if selfID > 0 {
		query = query.Where("id <> ?", selfID)
	}
	if err := query.Count(&count).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to check uniqueness")
		return false
	}
	if count > 0 {
		respondError(c, http.StatusBadRequest, "DUPLICATE_VALUE",
			fmt.Sprintf("A record with this %s already exists", column))
		return false
	}
	return true
}

// recordFields exposes a record's JSON view for generic field access
func recordFields(record interface{}) map[string]interface{} {
	data, err := json.Marshal(record)
	if err != nil {
		return nil
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil
	}
	return fields
}
