package models

import (
	"time"

	"gorm.io/gorm"
)

// PartCategory classifies an inventory part into one of the fixed categories
type PartCategory string

const (
	CategoryEngine      PartCategory = "engine"
	CategoryBrakes      PartCategory = "brakes"
	CategorySuspension  PartCategory = "suspension"
	CategoryElectrical  PartCategory = "electrical"
	CategoryBodywork    PartCategory = "bodywork"
	CategoryFluids      PartCategory = "fluids"
	CategoryTires       PartCategory = "tires"
	CategoryConsumables PartCategory = "consumables"
)

// PartCategories lists every valid category, in display order
var PartCategories = []PartCategory{
	CategoryEngine,
	CategoryBrakes,
	CategorySuspension,
	CategoryElectrical,
	CategoryBodywork,
	CategoryFluids,
	CategoryTires,
	CategoryConsumables,
}

// IsValid reports whether the category is one of the fixed set
func (c PartCategory) IsValid() bool {
	for _, known := range PartCategories {
		if c == known {
			return true
		}
	}
	return false
}

// InventoryPart represents a part held in the garage's stock
type InventoryPart struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Reference string         `gorm:"not null;index" json:"reference"` // unique (case-insensitive) among non-deleted parts
	Category  PartCategory   `gorm:"not null" json:"category"`
	Quantity  float64        `gorm:"not null;default:0" json:"quantity"`   // quantity in stock, non-negative
	UnitPrice float64        `gorm:"not null;default:0" json:"unit_price"` // non-negative, 2 decimal places
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the InventoryPart model
func (InventoryPart) TableName() string {
	return "inventory_parts"
}

// GetID returns the part's primary key
func (p InventoryPart) GetID() uint {
	return p.ID
}

// GetUpdatedAt returns the part's update timestamp
func (p InventoryPart) GetUpdatedAt() time.Time {
	return p.UpdatedAt
}
