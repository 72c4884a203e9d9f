package controllers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/openmechanic/garage-manager/models"
	"github.com/openmechanic/garage-manager/services"
	"github.com/openmechanic/garage-manager/tests/testutil"
)

type reportFixture struct {
	router   *gin.Engine
	db       *gorm.DB
	user     *models.User
	vehicle  *models.Vehicle
	oilTask  *models.TaskTemplate
	brakePad *models.InventoryPart
}

func setupReportRouter(t *testing.T) *reportFixture {
	t.Helper()
	testutil.SetupTestConfig(t)
	db := testutil.SetupTestDB(t)

	user := testutil.CreateTestUser(t, db, "mechanic", "password123")
	owner := testutil.CreateTestOwner(t, db, "Ada Fuentes")
	vehicle := testutil.CreateTestVehicle(t, db, owner.ID, "AB-123-CD")
	oilTask := testutil.CreateTestTaskTemplate(t, db, "Oil change", 49.90)
	brakePad := testutil.CreateTestPart(t, db, "BP-100", 24.50)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		testutil.SetMockAuthContext(c, user.ID)
	})

	reports := NewResourceController(ResourceOptions[models.Report]{
		AllowedFilters:   map[string]bool{"status": true, "vehicle_id": true},
		UpdatableColumns: map[string]bool{"status": true, "remarks": true, "vehicle_id": true},
		Preloads:         []string{"Vehicle", "Vehicle.Owner", "Tasks.Task", "Parts.Part"},
		BeforeCreate:     ReportBeforeCreate,
		BeforeUpdate:     ReportBeforeUpdate,
		AfterSave:        ReportAfterSave,
	})
	reports.Register(&router.RouterGroup, "reports")
	router.POST("/reports/:id/export/", ExportReport)
	RegisterReportLineItemRoutes(&router.RouterGroup)

	return &reportFixture{
		router:   router,
		db:       db,
		user:     user,
		vehicle:  vehicle,
		oilTask:  oilTask,
		brakePad: brakePad,
	}
}

func TestReportCreateStampsAuthor(t *testing.T) {
	fx := setupReportRouter(t)

	w := doJSON(t, fx.router, http.MethodPost, "/reports/", map[string]interface{}{
		"vehicle_id": fx.vehicle.ID,
		"remarks":    "front brakes squealing",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decodeBody[models.Report](t, w)
	assert.Equal(t, fx.user.ID, created.UserID, "The authenticated user becomes the author")
	assert.Equal(t, models.StatusPending, created.Status, "A new report starts pending")
	require.NotNil(t, created.Vehicle)
	assert.Equal(t, "AB-123-CD", created.Vehicle.LicensePlate)
}

func TestReportCreateRejectsExportedStatus(t *testing.T) {
	fx := setupReportRouter(t)

	w := doJSON(t, fx.router, http.MethodPost, "/reports/", map[string]interface{}{
		"vehicle_id": fx.vehicle.ID,
		"status":     "exported",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
}

func TestReportStatusTransitions(t *testing.T) {
	fx := setupReportRouter(t)
	report := testutil.CreateTestReport(t, fx.db, fx.vehicle.ID, fx.user.ID, models.StatusInProgress)

	// Forward transition is allowed
	w := doJSON(t, fx.router, http.MethodPatch, fmt.Sprintf("/reports/%d/", report.ID), map[string]interface{}{
		"status": "completed",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeBody[models.Report](t, w)
	assert.Equal(t, models.StatusCompleted, updated.Status)

	// Backward transition is rejected
	w = doJSON(t, fx.router, http.MethodPatch, fmt.Sprintf("/reports/%d/", report.ID), map[string]interface{}{
		"status": "pending",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Exported is reserved for the export action
	w = doJSON(t, fx.router, http.MethodPatch, fmt.Sprintf("/reports/%d/", report.ID), map[string]interface{}{
		"status": "exported",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportPatchReplacesLineItems(t *testing.T) {
	fx := setupReportRouter(t)
	report := testutil.CreateTestReport(t, fx.db, fx.vehicle.ID, fx.user.ID, models.StatusPending)

	w := doJSON(t, fx.router, http.MethodPatch, fmt.Sprintf("/reports/%d/", report.ID), map[string]interface{}{
		"tasks": []map[string]interface{}{{"task_id": fx.oilTask.ID}},
		"parts": []map[string]interface{}{{"part_id": fx.brakePad.ID, "quantity_used": 2}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated := decodeBody[models.Report](t, w)
	require.Len(t, updated.Tasks, 1)
	assert.Equal(t, fx.oilTask.ID, updated.Tasks[0].TaskID)
	require.Len(t, updated.Parts, 1)
	assert.InDelta(t, 2.0, updated.Parts[0].QuantityUsed, 0.001)

	// A later patch with an empty parts array clears them
	w = doJSON(t, fx.router, http.MethodPatch, fmt.Sprintf("/reports/%d/", report.ID), map[string]interface{}{
		"parts": []map[string]interface{}{},
	})
	require.Equal(t, http.StatusOK, w.Code)
	updated = decodeBody[models.Report](t, w)
	assert.Empty(t, updated.Parts)
	assert.Len(t, updated.Tasks, 1, "Patching parts leaves tasks alone")
}

func TestReportPatchRejectsNonPositiveQuantity(t *testing.T) {
	fx := setupReportRouter(t)
	report := testutil.CreateTestReport(t, fx.db, fx.vehicle.ID, fx.user.ID, models.StatusPending)

	w := doJSON(t, fx.router, http.MethodPatch, fmt.Sprintf("/reports/%d/", report.ID), map[string]interface{}{
		"parts": []map[string]interface{}{{"part_id": fx.brakePad.ID, "quantity_used": 0}},
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var count int64
	require.NoError(t, fx.db.Model(&models.ReportPart{}).Count(&count).Error)
	assert.Zero(t, count, "The rolled-back transaction must not leave line items behind")
}

func TestAddReportTaskRejectsDuplicate(t *testing.T) {
	fx := setupReportRouter(t)
	report := testutil.CreateTestReport(t, fx.db, fx.vehicle.ID, fx.user.ID, models.StatusPending)

	w := doJSON(t, fx.router, http.MethodPost, fmt.Sprintf("/reports/%d/tasks/", report.ID), map[string]interface{}{
		"task_id": fx.oilTask.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody[models.ReportTask](t, w)
	require.NotNil(t, created.Task)
	assert.Equal(t, "Oil change", created.Task.Name)

	w = doJSON(t, fx.router, http.MethodPost, fmt.Sprintf("/reports/%d/tasks/", report.ID), map[string]interface{}{
		"task_id": fx.oilTask.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "DUPLICATE_TASK")
}

func TestAddReportPartMergesQuantities(t *testing.T) {
	fx := setupReportRouter(t)
	report := testutil.CreateTestReport(t, fx.db, fx.vehicle.ID, fx.user.ID, models.StatusPending)

	w := doJSON(t, fx.router, http.MethodPost, fmt.Sprintf("/reports/%d/parts/", report.ID), map[string]interface{}{
		"part_id":       fx.brakePad.ID,
		"quantity_used": 2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// A second add for the same part merges instead of duplicating
	w = doJSON(t, fx.router, http.MethodPost, fmt.Sprintf("/reports/%d/parts/", report.ID), map[string]interface{}{
		"part_id":       fx.brakePad.ID,
		"quantity_used": 1.5,
	})
	require.Equal(t, http.StatusOK, w.Code)
	merged := decodeBody[models.ReportPart](t, w)
	assert.InDelta(t, 3.5, merged.QuantityUsed, 0.001)

	var count int64
	require.NoError(t, fx.db.Model(&models.ReportPart{}).Where("report_id = ?", report.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAddReportPartValidation(t *testing.T) {
	fx := setupReportRouter(t)
	report := testutil.CreateTestReport(t, fx.db, fx.vehicle.ID, fx.user.ID, models.StatusPending)

	w := doJSON(t, fx.router, http.MethodPost, fmt.Sprintf("/reports/%d/parts/", report.ID), map[string]interface{}{
		"part_id":       fx.brakePad.ID,
		"quantity_used": -1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, fx.router, http.MethodPost, fmt.Sprintf("/reports/%d/parts/", report.ID), map[string]interface{}{
		"quantity_used": 1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteReportLineItem(t *testing.T) {
	fx := setupReportRouter(t)
	report := testutil.CreateTestReport(t, fx.db, fx.vehicle.ID, fx.user.ID, models.StatusPending)
	other := testutil.CreateTestReport(t, fx.db, fx.vehicle.ID, fx.user.ID, models.StatusPending)

	w := doJSON(t, fx.router, http.MethodPost, fmt.Sprintf("/reports/%d/tasks/", report.ID), map[string]interface{}{
		"task_id": fx.oilTask.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	item := decodeBody[models.ReportTask](t, w)

	// Deleting through the wrong parent report is a 404
	w = doJSON(t, fx.router, http.MethodDelete, fmt.Sprintf("/reports/%d/tasks/%d/", other.ID, item.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, fx.router, http.MethodDelete, fmt.Sprintf("/reports/%d/tasks/%d/", report.ID, item.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	var count int64
	require.NoError(t, fx.db.Model(&models.ReportTask{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestExportReportEndpoint(t *testing.T) {
	fx := setupReportRouter(t)
	storage := services.NewMockDocumentStorage()
	storage.SetAsMockForTesting()

	report := testutil.CreateTestReport(t, fx.db, fx.vehicle.ID, fx.user.ID, models.StatusCompleted)
	require.NoError(t, fx.db.Create(&models.ReportTask{ReportID: report.ID, TaskID: fx.oilTask.ID}).Error)
	require.NoError(t, fx.db.Create(&models.ReportPart{ReportID: report.ID, PartID: fx.brakePad.ID, QuantityUsed: 2}).Error)

	w := doJSON(t, fx.router, http.MethodPost, fmt.Sprintf("/reports/%d/export/", report.ID), nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	invoice := decodeBody[models.Invoice](t, w)
	assert.Equal(t, fmt.Sprintf("INV-%d-000001", time.Now().Year()), invoice.Number)
	assert.Equal(t, "Ada Fuentes", invoice.OwnerName)
	assert.InDelta(t, 49.90+2*24.50, invoice.TotalCost, 0.001)
	require.NotNil(t, invoice.DocumentURL, "The response carries a presigned link to the document")

	var reloaded models.Report
	require.NoError(t, fx.db.First(&reloaded, report.ID).Error)
	assert.Equal(t, models.StatusExported, reloaded.Status)
}

func TestExportReportEndpointRejectsPending(t *testing.T) {
	fx := setupReportRouter(t)
	services.NewMockDocumentStorage().SetAsMockForTesting()

	report := testutil.CreateTestReport(t, fx.db, fx.vehicle.ID, fx.user.ID, models.StatusPending)

	w := doJSON(t, fx.router, http.MethodPost, fmt.Sprintf("/reports/%d/export/", report.ID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_STATUS")

	w = doJSON(t, fx.router, http.MethodPost, "/reports/999/export/", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFlatLineItemListings(t *testing.T) {
	fx := setupReportRouter(t)
	report := testutil.CreateTestReport(t, fx.db, fx.vehicle.ID, fx.user.ID, models.StatusPending)
	require.NoError(t, fx.db.Create(&models.ReportTask{ReportID: report.ID, TaskID: fx.oilTask.ID}).Error)
	require.NoError(t, fx.db.Create(&models.ReportPart{ReportID: report.ID, PartID: fx.brakePad.ID, QuantityUsed: 1}).Error)

	w := doJSON(t, fx.router, http.MethodGet, "/tasks/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tasks := decodeBody[[]models.ReportTask](t, w)
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].Task)

	w = doJSON(t, fx.router, http.MethodGet, "/parts/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	parts := decodeBody[[]models.ReportPart](t, w)
	require.Len(t, parts, 1)
	require.NotNil(t, parts[0].Part)
}
