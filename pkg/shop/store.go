package shop

import (
	"context"
	"time"

	"github.com/shopa-beauty/storefront-api/pkg/models"
)

// Store is the persistence contract. Implementations return the sentinel
// errors of this package for missing rows and uniqueness conflicts.
type Store interface {
	Ping(ctx context.Context) error

	// CreateUser assigns user.ID. ErrDuplicateUser on username/email clash.
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// AddCartItem increments the (userID, productID) line by quantity, or
	// creates it stamped with addedAt. Runs as one transaction.
	AddCartItem(ctx context.Context, userID uint, productID string, quantity int, addedAt time.Time) (*models.CartItem, error)
	SetCartItemQuantity(ctx context.Context, id uint, quantity int) error
	DeleteCartItem(ctx context.Context, id uint) error
	ListCartItems(ctx context.Context, userID uint) ([]models.CartItem, error)

	// PlaceOrder inserts order with its items and deletes the cart items
	// listed in clearCartItemIDs, all in one transaction. It assigns the
	// order and item IDs.
	PlaceOrder(ctx context.Context, order *models.Order, clearCartItemIDs []uint) error
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	ListOrders(ctx context.Context, userID uint) ([]models.Order, error)
}

// Catalog is the live product source.
type Catalog interface {
	FetchAll(ctx context.Context) ([]models.Product, error)
}

// OrderListener is told about every committed order. Its errors are logged
// and never undo the checkout.
type OrderListener interface {
	OrderPlaced(ctx context.Context, user *models.User, order *models.Order) error
}
