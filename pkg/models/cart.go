package models

import "time"

// CartItem is one line of a user's cart. At most one row exists per
// (user, product) pair; adding the pair again increments Quantity.
type CartItem struct {
	ID        uint      `gorm:"primaryKey" bson:"_id" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_user_product,priority:1" bson:"user_id" json:"user_id"`
	ProductID string    `gorm:"size:100;not null;uniqueIndex:idx_cart_user_product,priority:2" bson:"product_id" json:"product_id"`
	Quantity  int       `gorm:"not null;default:1" bson:"quantity" json:"quantity"`
	AddedAt   time.Time `gorm:"not null" bson:"added_at" json:"added_at"`
}

// CartLine is a cart item joined with live catalog data.
type CartLine struct {
	ID       uint       `json:"id"`
	Product  ProductRef `json:"product"`
	Quantity int        `json:"quantity"`
	AddedAt  time.Time  `json:"added_at"`
}

type CartResponse struct {
	CartItems []CartLine `json:"cart_items"`
}

type AddToCartRequest struct {
	UserID    uint   `json:"user_id" binding:"required"`
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"min=0"`
}

type UpdateCartItemRequest struct {
	CartItemID uint `json:"cart_item_id" binding:"required"`
	Quantity   int  `json:"quantity"`
}
