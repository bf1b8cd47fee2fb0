package models

import "github.com/google/uuid"

// CartItem holds one product line of a user's cart. One row per
// user/product pair; adding an existing product bumps the quantity.
type CartItem struct {
	BaseModel
	UserID    uuid.UUID `gorm:"type:uuid;index:idx_cart_user_product,unique" json:"user_id"`
	ProductID uuid.UUID `gorm:"type:uuid;index:idx_cart_user_product,unique" json:"product_id"`
	Product   *Product  `json:"product,omitempty"`
	Quantity  int       `json:"quantity"`
}
