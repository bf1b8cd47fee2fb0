package models

import "github.com/google/uuid"

type Category struct {
	BaseModel
	Name        string    `json:"name"`
	Slug        string    `gorm:"uniqueIndex" json:"slug"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Products    []Product `json:"products,omitempty"`
}

// Product is a bakery item. Price is the minor-currency-unit amount.
type Product struct {
	BaseModel
	Name        string     `json:"name"`
	Slug        string     `gorm:"uniqueIndex" json:"slug"`
	Description string     `json:"description"`
	Price       int64      `json:"price"`
	Image       string     `json:"image"`
	CategoryID  *uuid.UUID `gorm:"type:uuid;index" json:"category_id"`
	Category    *Category  `json:"category,omitempty"`
	Available   bool       `gorm:"not null;default:true" json:"available"`
	Featured    bool       `gorm:"not null;default:false" json:"featured"`
}
