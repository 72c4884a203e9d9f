package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a garage employee who can log in and author reports
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;not null" json:"username"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Role         string         `gorm:"not null;default:'mechanic'" json:"role"` // "mechanic" or "admin"
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// GetID returns the user's primary key
func (u User) GetID() uint {
	return u.ID
}

// GetUpdatedAt returns the user's update timestamp
func (u User) GetUpdatedAt() time.Time {
	return u.UpdatedAt
}

// AllModels lists every persisted model, in migration order
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Owner{},
		&Vehicle{},
		&InventoryPart{},
		&TaskTemplate{},
		&Report{},
		&ReportTask{},
		&ReportPart{},
		&Invoice{},
	}
}
