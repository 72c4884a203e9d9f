package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/openmechanic/garage-manager/config"
	"github.com/openmechanic/garage-manager/middleware"
	"github.com/openmechanic/garage-manager/models"
	"github.com/openmechanic/garage-manager/services"
)

// ReportBeforeCreate stamps the authenticated author onto a new report and
// normalizes its initial status
func ReportBeforeCreate(c *gin.Context, report *models.Report) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return err
	}
	report.UserID = userID

	if report.Status == "" {
		report.Status = models.StatusPending
	}
	if !report.Status.IsValid() || report.Status == models.StatusExported {
		return fmt.Errorf("status %q is not valid for a new report", report.Status)
	}

	for i := range report.Parts {
		if report.Parts[i].QuantityUsed <= 0 {
			return fmt.Errorf("part quantity must be positive")
		}
	}
	return nil
}

// ReportBeforeUpdate enforces the one-directional status lifecycle
func ReportBeforeUpdate(existing *models.Report, patch map[string]interface{}) error {
	raw, ok := patch["status"].(string)
	if !ok || raw == "" {
		return nil
	}

	next := models.ReportStatus(raw)
	if !existing.Status.CanTransitionTo(next) {
		return fmt.Errorf("cannot move a %s report to %s", existing.Status, next)
	}
	return nil
}

// ReportAfterSave replaces the report's owned line items when the patch
// carries tasks or parts arrays
func ReportAfterSave(tx *gorm.DB, reportID uint, patch map[string]interface{}) error {
	if rawTasks, present := patch["tasks"]; present {
		var tasks []models.ReportTask
		if err := remarshal(rawTasks, &tasks); err != nil {
			return fmt.Errorf("invalid tasks payload: %w", err)
		}
		if err := tx.Where("report_id = ?", reportID).Delete(&models.ReportTask{}).Error; err != nil {
			return err
		}
		for i := range tasks {
			tasks[i].ID = 0
			tasks[i].ReportID = reportID
		}
		if len(tasks) > 0 {
			if err := tx.Create(&tasks).Error; err != nil {
				return err
			}
		}
	}

	if rawParts, present := patch["parts"]; present {
		var parts []models.ReportPart
		if err := remarshal(rawParts, &parts); err != nil {
			return fmt.Errorf("invalid parts payload: %w", err)
		}
		if err := tx.Where("report_id = ?", reportID).Delete(&models.ReportPart{}).Error; err != nil {
			return err
		}
		for i := range parts {
			if parts[i].QuantityUsed <= 0 {
				return fmt.Errorf("part quantity must be positive")
			}
			parts[i].ID = 0
			parts[i].ReportID = reportID
		}
		if len(parts) > 0 {
			if err := tx.Create(&parts).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func remarshal(value interface{}, out interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// ExportReport handles POST /reports/:id/export/ - turns a completed report
// into an invoice with a stored document
func ExportReport(c *gin.Context) {
	reportID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Report id must be a number")
		return
	}

	invoice, err := services.ExportReport(config.GetDB(), services.GetDocumentStorage(), uint(reportID))
	if err != nil {
		if errors.Is(err, services.ErrReportNotCompleted) {
			respondError(c, http.StatusBadRequest, "INVALID_STATUS", err.Error())
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "Report not found")
			return
		}
		config.GetLogger().WithError(err).Error("report export failed")
		respondError(c, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to export report")
		return
	}

	if invoice.DocumentKey != nil {
		if url, err := services.GetDocumentStorage().GetPresignedURL(*invoice.DocumentKey); err == nil && url != "" {
			invoice.DocumentURL = &url
		}
	}
	c.JSON(http.StatusCreated, invoice)
}

// RegisterReportLineItemRoutes mounts the nested task/part collections of a
// report plus the flat tasks/ and parts/ listings
func RegisterReportLineItemRoutes(group *gin.RouterGroup) {
	group.GET("/reports/:id/tasks/", ListReportTasks)
	group.POST("/reports/:id/tasks/", AddReportTask)
	group.DELETE("/reports/:id/tasks/:itemId/", DeleteReportTask)

	group.GET("/reports/:id/parts/", ListReportParts)
	group.POST("/reports/:id/parts/", AddReportPart)
	group.DELETE("/reports/:id/parts/:itemId/", DeleteReportPart)

	group.GET("/tasks/", ListAllReportTasks)
	group.GET("/parts/", ListAllReportParts)
}

// loadReport fetches the parent report of a nested route
func loadReport(c *gin.Context) (*models.Report, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Report id must be a number")
		return nil, false
	}

	var report models.Report
	if err := config.GetDB().First(&report, uint(id)).Error; err != nil {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Report not found")
		return nil, false
	}
	return &report, true
}

// ListReportTasks handles GET /reports/:id/tasks/
func ListReportTasks(c *gin.Context) {
	report, ok := loadReport(c)
	if !ok {
		return
	}

	items := make([]models.ReportTask, 0)
	if err := config.GetDB().Preload("Task").Where("report_id = ?", report.ID).Find(&items).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list report tasks")
		return
	}
	c.JSON(http.StatusOK, items)
}

// AddReportTask handles POST /reports/:id/tasks/ - a task template may
// appear at most once per report
func AddReportTask(c *gin.Context) {
	report, ok := loadReport(c)
	if !ok {
		return
	}

	var item models.ReportTask
	if err := c.ShouldBindJSON(&item); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data: "+err.Error())
		return
	}
	if item.TaskID == 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "task_id is required")
		return
	}

	db := config.GetDB()
	var count int64
	if err := db.Model(&models.ReportTask{}).
		Where("report_id = ? AND task_id = ?", report.ID, item.TaskID).
		Count(&count).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to check report tasks")
		return
	}
	if count > 0 {
		respondError(c, http.StatusBadRequest, "DUPLICATE_TASK", "This task is already on the report")
		return
	}

	item.ID = 0
	item.ReportID = report.ID
	if err := db.Create(&item).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to add report task")
		return
	}

	db.Preload("Task").First(&item, item.ID)
	c.JSON(http.StatusCreated, item)
}

// DeleteReportTask handles DELETE /reports/:id/tasks/:itemId/
func DeleteReportTask(c *gin.Context) {
	deleteLineItem(c, &models.ReportTask{})
}

// ListReportParts handles GET /reports/:id/parts/
func ListReportParts(c *gin.Context) {
	report, ok := loadReport(c)
	if !ok {
		return
	}

	items := make([]models.ReportPart, 0)
	if err := config.GetDB().Preload("Part").Where("report_id = ?", report.ID).Find(&items).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list report parts")
		return
	}
	c.JSON(http.StatusOK, items)
}

// AddReportPart handles POST /reports/:id/parts/ - adding a part that is
// already on the report accumulates into the existing entry at 2-decimal
// precision, mirroring the client draft's merge semantics
func AddReportPart(c *gin.Context) {
	report, ok := loadReport(c)
	if !ok {
		return
	}

	var item models.ReportPart
	if err := c.ShouldBindJSON(&item); err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data: "+err.Error())
		return
	}
	if item.PartID == 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "part_id is required")
		return
	}
	if item.QuantityUsed <= 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "quantity_used must be positive")
		return
	}

	db := config.GetDB()
	var existing models.ReportPart
	err := db.Where("report_id = ? AND part_id = ?", report.ID, item.PartID).First(&existing).Error
	switch {
	case err == nil:
		merged := decimal.NewFromFloat(existing.QuantityUsed).
			Add(decimal.NewFromFloat(item.QuantityUsed)).Round(2)
		if err := db.Model(&existing).Update("quantity_used", merged.InexactFloat64()).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to merge report part")
			return
		}
		db.Preload("Part").First(&existing, existing.ID)
		c.JSON(http.StatusOK, existing)
	case errors.Is(err, gorm.ErrRecordNotFound):
		item.ID = 0
		item.ReportID = report.ID
		item.QuantityUsed = decimal.NewFromFloat(item.QuantityUsed).Round(2).InexactFloat64()
		if err := db.Create(&item).Error; err != nil {
			respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to add report part")
			return
		}
		db.Preload("Part").First(&item, item.ID)
		c.JSON(http.StatusCreated, item)
	default:
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to look up report part")
	}
}

// DeleteReportPart handles DELETE /reports/:id/parts/:itemId/
func DeleteReportPart(c *gin.Context) {
	deleteLineItem(c, &models.ReportPart{})
}

// deleteLineItem removes one nested line item scoped by its parent report
func deleteLineItem(c *gin.Context, model interface{}) {
	report, ok := loadReport(c)
	if !ok {
		return
	}

	itemID, err := strconv.ParseUint(c.Param("itemId"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Line item id must be a number")
		return
	}

	result := config.GetDB().Where("report_id = ? AND id = ?", report.ID, uint(itemID)).Delete(model)
	if result.Error != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete line item")
		return
	}
	if result.RowsAffected == 0 {
		respondError(c, http.StatusNotFound, "NOT_FOUND", "Line item not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// ListAllReportTasks handles GET /tasks/ - every task line item across reports
func ListAllReportTasks(c *gin.Context) {
	items := make([]models.ReportTask, 0)
	if err := config.GetDB().Preload("Task").Find(&items).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list tasks")
		return
	}
	c.JSON(http.StatusOK, items)
}

// ListAllReportParts handles GET /parts/ - every part line item across reports
func ListAllReportParts(c *gin.Context) {
	items := make([]models.ReportPart, 0)
	if err := config.GetDB().Preload("Part").Find(&items).Error; err != nil {
		respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list parts")
		return
	}
	c.JSON(http.StatusOK, items)
}
