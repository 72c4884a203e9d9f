package models

import (
	"time"

	"gorm.io/gorm"
)

// Owner represents a customer who brings vehicles into the garage
type Owner struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	FullName  string         `gorm:"not null;index" json:"full_name"` // unique (case-insensitive) among non-deleted owners
	Email     string         `gorm:"not null" json:"email"`
	Phone     string         `json:"phone"`
	Address   string         `json:"address"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Owner model
func (Owner) TableName() string {
	return "owners"
}

// GetID returns the owner's primary key
func (o Owner) GetID() uint {
	return o.ID
}

// GetUpdatedAt returns the owner's update timestamp
func (o Owner) GetUpdatedAt() time.Time {
	return o.UpdatedAt
}
