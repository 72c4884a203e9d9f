package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/openmechanic/garage-manager/models"
)

// ErrReportNotCompleted is returned when exporting a report that has not
// reached the completed status
var ErrReportNotCompleted = fmt.Errorf("only completed reports can be exported")

// ExportReport turns a completed report into an invoice: computes the total,
// assigns the next invoice number, generates the invoice document, stores it,
// and moves the report to the exported status. Everything runs in one
// transaction so a failed export leaves the report untouched.
func ExportReport(db *gorm.DB, storage DocumentStorage, reportID uint) (*models.Invoice, error) {
	var invoice models.Invoice

	err := db.Transaction(func(tx *gorm.DB) error {
		var report models.Report
		if err := tx.Preload("Tasks.Task").Preload("Parts.Part").Preload("Vehicle.Owner").
			First(&report, reportID).Error; err != nil {
			return fmt.Errorf("failed to load report: %w", err)
		}

		if report.Status != models.StatusCompleted {
			return ErrReportNotCompleted
		}
		if report.Vehicle == nil || report.Vehicle.Owner == nil {
			return fmt.Errorf("report %d has no resolvable vehicle/owner", reportID)
		}

		number, err := nextInvoiceNumber(tx)
		if err != nil {
			return err
		}

		invoice = models.Invoice{
			Number:       number,
			ReportID:     report.ID,
			OwnerName:    report.Vehicle.Owner.FullName,
			VehicleBrand: report.Vehicle.Brand,
			VehicleModel: report.Vehicle.Model,
			LicensePlate: report.Vehicle.LicensePlate,
			IssuedAt:     time.Now(),
			TotalCost:    ReportTotal(report).InexactFloat64(),
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		document, err := GenerateInvoiceDocument(&invoice, &report)
		if err != nil {
			return fmt.Errorf("failed to generate invoice document: %w", err)
		}
		key := fmt.Sprintf("invoices/%s.xlsx", invoice.Number)
		if err := storage.Upload(key, document, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"); err != nil {
			return err
		}
		if err := tx.Model(&invoice).Update("document_key", key).Error; err != nil {
			return fmt.Errorf("failed to record document key: %w", err)
		}
		invoice.DocumentKey = &key

		if err := tx.Model(&models.Report{}).Where("id = ?", report.ID).
			Update("status", models.StatusExported).Error; err != nil {
			return fmt.Errorf("failed to mark report exported: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ReportTotal sums task labor prices plus part quantities times unit prices,
// at fixed 2-decimal precision
func ReportTotal(report models.Report) decimal.Decimal {
	total := decimal.Zero
	for _, task := range report.Tasks {
		if task.Task == nil {
			continue
		}
		total = total.Add(decimal.NewFromFloat(task.Task.Price))
	}
	for _, part := range report.Parts {
		if part.Part == nil {
			continue
		}
		quantity := decimal.NewFromFloat(part.QuantityUsed)
		unitPrice := decimal.NewFromFloat(part.Part.UnitPrice)
		total = total.Add(quantity.Mul(unitPrice))
	}
	return total.Round(2)
}

// nextInvoiceNumber produces sequential numbers of the form INV-2026-000123,
// restarting the counter each year
func nextInvoiceNumber(tx *gorm.DB) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("INV-%d-", year)

	var count int64
	if err := tx.Model(&models.Invoice{}).Where("number LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return "", fmt.Errorf("failed to count invoices: %w", err)
	}
	return fmt.Sprintf("%s%06d", prefix, count+1), nil
}

// GenerateInvoiceDocument renders the invoice as a spreadsheet document
func GenerateInvoiceDocument(invoice *models.Invoice, report *models.Report) ([]byte, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	f.SetCellValue(sheet, "A1", "Invoice")
	f.SetCellValue(sheet, "B1", invoice.Number)
	f.SetCellValue(sheet, "A2", "Issued")
	f.SetCellValue(sheet, "B2", invoice.IssuedAt.Format("2006-01-02"))
	f.SetCellValue(sheet, "A3", "Owner")
	f.SetCellValue(sheet, "B3", invoice.OwnerName)
	f.SetCellValue(sheet, "A4", "Vehicle")
	f.SetCellValue(sheet, "B4", fmt.Sprintf("%s %s (%s)", invoice.VehicleBrand, invoice.VehicleModel, invoice.LicensePlate))

	row := 6
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Item")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", row), "Quantity")
	f.SetCellValue(sheet, fmt.Sprintf("C%d", row), "Amount")
	row++

	for _, task := range report.Tasks {
		if task.Task == nil {
			continue
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), task.Task.Name)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), 1)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), task.Task.Price)
		row++
	}
	for _, part := range report.Parts {
		if part.Part == nil {
			continue
		}
		amount := decimal.NewFromFloat(part.QuantityUsed).
			Mul(decimal.NewFromFloat(part.Part.UnitPrice)).Round(2)
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), part.Part.Name)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), part.QuantityUsed)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), amount.InexactFloat64())
		row++
	}

	row++
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Total")
	f.SetCellValue(sheet, fmt.Sprintf("C%d", row), invoice.TotalCost)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render invoice document: %w", err)
	}
	return buf.Bytes(), nil
}
