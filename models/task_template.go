package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskTemplate represents a reusable repair task with a fixed labor price
type TaskTemplate struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"not null;index" json:"name"` // unique (case-insensitive) among non-deleted templates
	Description string         `json:"description"`
	Price       float64        `gorm:"not null;default:0" json:"price"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the TaskTemplate model
func (TaskTemplate) TableName() string {
	return "task_templates"
}

// GetID returns the template's primary key
func (t TaskTemplate) GetID() uint {
	return t.ID
}

// GetUpdatedAt returns the template's update timestamp
func (t TaskTemplate) GetUpdatedAt() time.Time {
	return t.UpdatedAt
}
