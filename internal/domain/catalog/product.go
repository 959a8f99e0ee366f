package catalog

import (
	"github.com/google/uuid"
)

type Category struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name string    `gorm:"uniqueIndex;not null;column:name" json:"name"`
}

func (Category) TableName() string { return "categories" }

type Product struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"not null;column:name" json:"name"`
	Price      float64   `gorm:"not null;column:price" json:"price"`
	CategoryID uuid.UUID `gorm:"type:uuid;index;column:category_id" json:"category_id"`

	// Populated by joined reads only; not a stored column.
	CategoryName string `gorm:"->;-:migration" json:"category_name,omitempty"`
}

func (Product) TableName() string { return "products" }
