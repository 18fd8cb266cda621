package models

import (
	"fmt"
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
)

// Order is an immutable snapshot written once at checkout.
type Order struct {
	ID              uint        `gorm:"primaryKey" bson:"_id" json:"id"`
	UserID          uint        `gorm:"not null;index:idx_orders_user_created,priority:1" bson:"user_id" json:"user_id"`
	Total           float64     `gorm:"not null" bson:"total" json:"total"`
	Status          OrderStatus `gorm:"type:VARCHAR(50);default:'pending'" bson:"status" json:"status"`
	ShippingAddress string      `gorm:"type:text" bson:"shipping_address" json:"shipping_address"`
	CreatedAt       time.Time   `gorm:"index:idx_orders_user_created,priority:2,sort:desc" bson:"created_at" json:"created_at"`
	Items           []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" bson:"items" json:"items"`
}

// OrderItem freezes one cart line at checkout time. LineTotal is price times
// quantity, and is published as "price" for compatibility with existing
// consumers.
type OrderItem struct {
	ID           uint    `gorm:"primaryKey" bson:"id" json:"id"`
	OrderID      uint    `gorm:"not null;index" bson:"-" json:"-"`
	ProductID    string  `gorm:"size:100;not null" bson:"product_id" json:"product_id"`
	ProductTitle string  `gorm:"size:255;not null" bson:"product_title" json:"product_title"`
	LineTotal    float64 `gorm:"column:line_total;not null" bson:"line_total" json:"price"`
	Quantity     int     `gorm:"not null;default:1" bson:"quantity" json:"quantity"`
}

// ShippingInfo is what the checkout form collects. Only the postal fields end
// up in Order.ShippingAddress.
type ShippingInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address" binding:"required"`
	City      string `json:"city" binding:"required"`
	State     string `json:"state" binding:"required"`
	Zip       string `json:"zip" binding:"required"`
	Phone     string `json:"phone"`
}

// FormatAddress renders "address, city, state zip".
func (s ShippingInfo) FormatAddress() string {
	return fmt.Sprintf("%s, %s, %s %s",
		strings.TrimSpace(s.Address),
		strings.TrimSpace(s.City),
		strings.TrimSpace(s.State),
		strings.TrimSpace(s.Zip),
	)
}

type CheckoutRequest struct {
	UserID       uint         `json:"user_id" binding:"required"`
	ShippingInfo ShippingInfo `json:"shipping_info" binding:"required"`
}

type CheckoutResponse struct {
	Message string  `json:"message"`
	OrderID uint    `json:"order_id"`
	Total   float64 `json:"total"`
}

// Receipt is the price breakdown shown on an order confirmation.
type Receipt struct {
	OrderID  uint    `json:"order_id"`
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
	Items    int     `json:"item_count"`
}

// GetItemCount returns the total number of units in the order
func (o *Order) GetItemCount() int {
	var count int
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}
