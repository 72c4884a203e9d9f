package draft

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmechanic/garage-manager/models"
)

func TestAddTask(t *testing.T) {
	d := New()

	// Nothing selected: no-op
	d.AddTask()
	assert.Empty(t, d.TaskIDs(), "Adding with no selection should do nothing")

	d.SelectedTaskID = 7
	d.AddTask()
	assert.Equal(t, []uint{7}, d.TaskIDs())
	assert.Zero(t, d.SelectedTaskID, "Selection should reset after adding")

	// Re-adding the same id is a no-op
	d.SelectedTaskID = 7
	d.AddTask()
	assert.Equal(t, []uint{7}, d.TaskIDs(), "Duplicate task id should not be added twice")

	d.SelectedTaskID = 3
	d.AddTask()
	assert.Equal(t, []uint{7, 3}, d.TaskIDs(), "Tasks should keep insertion order")
}

func TestRemoveTask(t *testing.T) {
	d := New()
	d.SelectedTaskID = 1
	d.AddTask()
	d.SelectedTaskID = 2
	d.AddTask()

	d.RemoveTask(99)
	assert.Equal(t, []uint{1, 2}, d.TaskIDs(), "Removing an absent id should be a no-op")

	d.RemoveTask(1)
	assert.Equal(t, []uint{2}, d.TaskIDs())
}

func TestAddPartAccumulatesFixedPoint(t *testing.T) {
	d := New()

	d.SelectedPartID = 5
	d.PartQuantity = 2
	d.AddPart()

	d.SelectedPartID = 5
	d.PartQuantity = 1.5
	d.AddPart()

	parts := d.Parts()
	require.Len(t, parts, 1, "Same part id should merge into one entry")
	assert.Equal(t, uint(5), parts[0].PartID)
	assert.True(t, parts[0].Quantity.Equal(decimal.RequireFromString("3.5")),
		"2 + 1.5 should accumulate to exactly 3.5, got %s", parts[0].Quantity)
}

func TestAddPartAvoidsFloatDrift(t *testing.T) {
	d := New()

	// 0.1 added ten times drifts with raw float64 arithmetic
	for i := 0; i < 10; i++ {
		d.SelectedPartID = 1
		d.PartQuantity = 0.1
		d.AddPart()
	}

	parts := d.Parts()
	require.Len(t, parts, 1)
	assert.True(t, parts[0].Quantity.Equal(decimal.RequireFromString("1")),
		"Ten times 0.1 should be exactly 1, got %s", parts[0].Quantity)
}

func TestAddPartRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name     string
		partID   uint
		quantity float64
	}{
		{name: "no part selected", partID: 0, quantity: 2},
		{name: "zero quantity", partID: 4, quantity: 0},
		{name: "negative quantity", partID: 4, quantity: -1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New()
			d.SelectedPartID = tt.partID
			d.PartQuantity = tt.quantity
			d.AddPart()
			assert.Empty(t, d.Parts(), "partsUsed should be unchanged")
		})
	}
}

func TestAddPartResetsSelection(t *testing.T) {
	d := New()
	d.SelectedPartID = 2
	d.PartQuantity = 1.25
	d.AddPart()

	assert.Zero(t, d.SelectedPartID)
	assert.Zero(t, d.PartQuantity)
}

func TestRemovePart(t *testing.T) {
	d := New()
	d.SelectedPartID = 1
	d.PartQuantity = 1
	d.AddPart()

	d.RemovePart(42)
	assert.Len(t, d.Parts(), 1, "Removing an absent id should be a no-op")

	d.RemovePart(1)
	assert.Empty(t, d.Parts())
}

func TestResetClearsEverything(t *testing.T) {
	d := New()
	d.SelectedTaskID = 1
	d.AddTask()
	d.SelectedPartID = 2
	d.PartQuantity = 3
	d.AddPart()
	d.SelectedTaskID = 9
	d.SelectedPartID = 8
	d.PartQuantity = 4

	d.Reset()

	assert.Empty(t, d.TaskIDs())
	assert.Empty(t, d.Parts())
	assert.Zero(t, d.SelectedTaskID)
	assert.Zero(t, d.SelectedPartID)
	assert.Zero(t, d.PartQuantity)
}

func TestRehydrateDropsStaleReferences(t *testing.T) {
	report := models.Report{
		Tasks: []models.ReportTask{
			{TaskID: 1},
			{TaskID: 2}, // stale: not in the catalog anymore
		},
		Parts: []models.ReportPart{
			{PartID: 10, QuantityUsed: 2.5},
			{PartID: 11, QuantityUsed: 1}, // stale
		},
	}
	taskCatalog := []models.TaskTemplate{{ID: 1, Name: "Oil change"}}
	partCatalog := []models.InventoryPart{{ID: 10, Name: "Oil filter"}}

	d := New()
	d.Rehydrate(report, taskCatalog, partCatalog)

	assert.Equal(t, []uint{1}, d.TaskIDs(), "Stale task reference should be dropped silently")

	parts := d.Parts()
	require.Len(t, parts, 1, "Stale part reference should be dropped silently")
	assert.Equal(t, uint(10), parts[0].PartID)
	assert.True(t, parts[0].Quantity.Equal(decimal.RequireFromString("2.5")))
}

func TestRehydrateReplacesPriorState(t *testing.T) {
	d := New()
	d.SelectedTaskID = 99
	d.AddTask()

	report := models.Report{Tasks: []models.ReportTask{{TaskID: 1}}}
	d.Rehydrate(report, []models.TaskTemplate{{ID: 1}}, nil)

	assert.Equal(t, []uint{1}, d.TaskIDs(), "Rehydrate should discard previous draft state")
}

func TestPayloads(t *testing.T) {
	d := New()
	d.SelectedTaskID = 3
	d.AddTask()
	d.SelectedPartID = 7
	d.PartQuantity = 2.25
	d.AddPart()

	tasks := d.TaskPayload()
	require.Len(t, tasks, 1)
	assert.Equal(t, uint(3), tasks[0].TaskID)

	parts := d.PartPayload()
	require.Len(t, parts, 1)
	assert.Equal(t, uint(7), parts[0].PartID)
	assert.InDelta(t, 2.25, parts[0].QuantityUsed, 1e-9)
}
