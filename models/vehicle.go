package models

import (
	"time"

	"gorm.io/gorm"
)

// Vehicle represents a vehicle registered to an owner
type Vehicle struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Brand        string         `gorm:"not null" json:"brand"`
	Model        string         `gorm:"not null" json:"model"`
	Year         int            `gorm:"not null" json:"year"`
	LicensePlate string         `gorm:"not null;index" json:"license_plate"` // unique (case-insensitive) among non-deleted vehicles
	OwnerID      uint           `gorm:"not null;index" json:"owner_id"`      // foreign key to owners table
	Owner        *Owner         `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Vehicle model
func (Vehicle) TableName() string {
	return "vehicles"
}

// GetID returns the vehicle's primary key
func (v Vehicle) GetID() uint {
	return v.ID
}

// GetUpdatedAt returns the vehicle's update timestamp
func (v Vehicle) GetUpdatedAt() time.Time {
	return v.UpdatedAt
}
