// Package draft manages the transient line items of a report being created
// or edited: the selected task templates and the parts used with their
// quantities. The draft owns this state exclusively until submission, when
// the assembled payloads pass to the report store's create/update call.
package draft

import (
	"github.com/shopspring/decimal"

	"github.com/openmechanic/garage-manager/models"
)

// PartUsage is one accumulated part line item
type PartUsage struct {
	PartID   uint
	Quantity decimal.Decimal // 2 decimal places
}

// ReportDraft accumulates task and part line items. Tasks are unique by id
// and kept in insertion order; parts are unique by part id, with repeated
// adds accumulating into the existing entry at fixed 2-decimal precision.
type ReportDraft struct {
	taskIDs []uint
	parts   []PartUsage

	// Transient selection fields, bound to the form controls
	SelectedTaskID uint
	SelectedPartID uint
	PartQuantity   float64
}

// New creates an empty draft
func New() *ReportDraft {
	return &ReportDraft{}
}

// TaskIDs returns a copy of the selected task template ids, in order
func (d *ReportDraft) TaskIDs() []uint {
	out := make([]uint, len(d.taskIDs))
	copy(out, d.taskIDs)
	return out
}

// Parts returns a copy of the accumulated part usages, in order
func (d *ReportDraft) Parts() []PartUsage {
	out := make([]PartUsage, len(d.parts))
	copy(out, d.parts)
	return out
}

// HasTask reports whether the task id is already in the draft
func (d *ReportDraft) HasTask(id uint) bool {
	for _, taskID := range d.taskIDs {
		if taskID == id {
			return true
		}
	}
	return false
}

// AddTask appends the currently selected task. Nothing is selected or the id
// is already present: no-op. The selection is cleared after a successful add.
func (d *ReportDraft) AddTask() {
	if d.SelectedTaskID == 0 || d.HasTask(d.SelectedTaskID) {
		return
	}
	d.taskIDs = append(d.taskIDs, d.SelectedTaskID)
	d.SelectedTaskID = 0
}

// RemoveTask removes the task id if present
func (d *ReportDraft) RemoveTask(id uint) {
	for i, taskID := range d.taskIDs {
		if taskID == id {
			d.taskIDs = append(d.taskIDs[:i], d.taskIDs[i+1:]...)
			return
		}
	}
}

// AddPart adds the currently selected part with the entered quantity. No
// selection or a quantity that is zero or negative: no-op. An already
// present part id accumulates into the existing entry, rounded to 2 decimal
// places so repeated float quantities cannot drift. Selection fields are
// reset after a successful add.
func (d *ReportDraft) AddPart() {
	if d.SelectedPartID == 0 || d.PartQuantity <= 0 {
		return
	}

	quantity := decimal.NewFromFloat(d.PartQuantity).Round(2)
	if quantity.LessThanOrEqual(decimal.Zero) {
		return
	}

	found := false
	for i, part := range d.parts {
		if part.PartID == d.SelectedPartID {
			d.parts[i].Quantity = part.Quantity.Add(quantity).Round(2)
			found = true
			break
		}
	}
	if !found {
		d.parts = append(d.parts, PartUsage{PartID: d.SelectedPartID, Quantity: quantity})
	}

	d.SelectedPartID = 0
	d.PartQuantity = 0
}

// RemovePart removes the part id if present
func (d *ReportDraft) RemovePart(id uint) {
	for i, part := range d.parts {
		if part.PartID == id {
			d.parts = append(d.parts[:i], d.parts[i+1:]...)
			return
		}
	}
}

// Reset reverts every field, line items and selections alike, to empty.
// The host modal calls it on close so no stale state can flash on reopen.
func (d *ReportDraft) Reset() {
	d.taskIDs = nil
	d.parts = nil
	d.SelectedTaskID = 0
	d.SelectedPartID = 0
	d.PartQuantity = 0
}

// Rehydrate seeds the draft from a persisted report's line items when
// entering edit mode. References to task templates or parts that no longer
// exist in the current catalogs are silently dropped.
func (d *ReportDraft) Rehydrate(report models.Report, taskCatalog []models.TaskTemplate, partCatalog []models.InventoryPart) {
	d.Reset()

	knownTasks := make(map[uint]bool, len(taskCatalog))
	for _, template := range taskCatalog {
		knownTasks[template.ID] = true
	}
	knownParts := make(map[uint]bool, len(partCatalog))
	for _, part := range partCatalog {
		knownParts[part.ID] = true
	}

	for _, task := range report.Tasks {
		if knownTasks[task.TaskID] && !d.HasTask(task.TaskID) {
			d.taskIDs = append(d.taskIDs, task.TaskID)
		}
	}
	for _, part := range report.Parts {
		if !knownParts[part.PartID] {
			continue
		}
		quantity := decimal.NewFromFloat(part.QuantityUsed).Round(2)
		merged := false
		for i, existing := range d.parts {
			if existing.PartID == part.PartID {
				d.parts[i].Quantity = existing.Quantity.Add(quantity).Round(2)
				merged = true
				break
			}
		}
		if !merged {
			d.parts = append(d.parts, PartUsage{PartID: part.PartID, Quantity: quantity})
		}
	}
}

// TaskPayload assembles the task line items for the report payload
func (d *ReportDraft) TaskPayload() []models.ReportTask {
	out := make([]models.ReportTask, 0, len(d.taskIDs))
	for _, id := range d.taskIDs {
		out = append(out, models.ReportTask{TaskID: id})
	}
	return out
}

// PartPayload assembles the part line items for the report payload
func (d *ReportDraft) PartPayload() []models.ReportPart {
	out := make([]models.ReportPart, 0, len(d.parts))
	for _, part := range d.parts {
		out = append(out, models.ReportPart{
			PartID:       part.PartID,
			QuantityUsed: part.Quantity.InexactFloat64(),
		})
	}
	return out
}
