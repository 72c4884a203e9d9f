package models

import (
	"time"

	"gorm.io/gorm"
)

// Invoice is created when a completed report is exported. Owner and vehicle
// fields are denormalized display copies taken at export time, so later edits
// to either record do not rewrite history.
type Invoice struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Number       string         `gorm:"uniqueIndex;not null" json:"number"`
	ReportID     uint           `gorm:"not null;index" json:"report_id"`
	OwnerName    string         `gorm:"not null" json:"owner_name"`
	VehicleBrand string         `json:"vehicle_brand"`
	VehicleModel string         `json:"vehicle_model"`
	LicensePlate string         `json:"license_plate"`
	IssuedAt     time.Time      `gorm:"not null" json:"issued_at"`
	TotalCost    float64        `gorm:"not null" json:"total_cost"`
	DocumentKey  *string        `json:"document_key"`                    // object-storage key of the generated document
	DocumentURL  *string        `gorm:"-" json:"document_url,omitempty"` // computed field, presigned URL for the document
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// GetID returns the invoice's primary key
func (i Invoice) GetID() uint {
	return i.ID
}

// GetUpdatedAt returns the invoice's update timestamp
func (i Invoice) GetUpdatedAt() time.Time {
	return i.UpdatedAt
}
