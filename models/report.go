package models

import (
	"time"

	"gorm.io/gorm"
)

// ReportStatus tracks where a repair report sits in its lifecycle
type ReportStatus string

const (
	StatusPending    ReportStatus = "pending"
	StatusInProgress ReportStatus = "in_progress"
	StatusCompleted  ReportStatus = "completed"
	StatusExported   ReportStatus = "exported" // set by the export action, never by a plain edit
)

// statusOrder fixes the one-directional transition chain
var statusOrder = map[ReportStatus]int{
	StatusPending:    0,
	StatusInProgress: 1,
	StatusCompleted:  2,
	StatusExported:   3,
}

// IsValid reports whether the status is one of the known lifecycle states
func (s ReportStatus) IsValid() bool {
	_, ok := statusOrder[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Transitions only move forward along pending → in_progress → completed →
// exported, and the exported state is reserved for the export action.
func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	from, ok := statusOrder[s]
	if !ok {
		return false
	}
	to, ok := statusOrder[next]
	if !ok {
		return false
	}
	if next == StatusExported {
		return false
	}
	return to >= from
}

// Report represents a repair report for one vehicle, authored by one user.
// It owns its task and part line items.
type Report struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	VehicleID uint           `gorm:"not null;index" json:"vehicle_id"` // foreign key to vehicles table
	Vehicle   *Vehicle       `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	UserID    uint           `gorm:"not null;index" json:"user_id"` // author, foreign key to users table
	User      *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Status    ReportStatus   `gorm:"not null;default:'pending'" json:"status"`
	Remarks   string         `json:"remarks"`
	Tasks     []ReportTask   `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"tasks"`
	Parts     []ReportPart   `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"parts"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Report model
func (Report) TableName() string {
	return "reports"
}

// GetID returns the report's primary key
func (r Report) GetID() uint {
	return r.ID
}

// GetUpdatedAt returns the report's update timestamp
func (r Report) GetUpdatedAt() time.Time {
	return r.UpdatedAt
}

// ReportTask links a report to one task template performed on the vehicle
type ReportTask struct {
	ID       uint          `gorm:"primaryKey" json:"id"`
	ReportID uint          `gorm:"not null;index" json:"report_id"`
	TaskID   uint          `gorm:"not null;index" json:"task_id"` // foreign key to task_templates table
	Task     *TaskTemplate `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}

// TableName specifies the table name for the ReportTask model
func (ReportTask) TableName() string {
	return "report_tasks"
}

// GetID returns the line item's primary key
func (t ReportTask) GetID() uint {
	return t.ID
}

// ReportPart links a report to one inventory part and the quantity used
type ReportPart struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ReportID     uint           `gorm:"not null;index" json:"report_id"`
	PartID       uint           `gorm:"not null;index" json:"part_id"` // foreign key to inventory_parts table
	Part         *InventoryPart `gorm:"foreignKey:PartID" json:"part,omitempty"`
	QuantityUsed float64        `gorm:"not null" json:"quantity_used"` // positive, 2 decimal places
}

// TableName specifies the table name for the ReportPart model
func (ReportPart) TableName() string {
	return "report_parts"
}

// GetID returns the line item's primary key
func (p ReportPart) GetID() uint {
	return p.ID
}
