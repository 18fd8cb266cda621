package shop

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopa-beauty/storefront-api/pkg/logging"
	"github.com/shopa-beauty/storefront-api/pkg/models"
)

// Checkout turns the user's cart into a pending order.
//
// The catalog is fetched once and every cart line is priced from it. Lines
// whose product has disappeared are skipped, the same way ListCart skips
// them. The order, its items and the removal of the loaded cart lines are
// committed in a single store transaction.
func (s *Service) Checkout(ctx context.Context, userID uint, shipping models.ShippingInfo) (*models.Order, error) {
	started := time.Now()

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	cartItems, err := s.store.ListCartItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	if len(cartItems) == 0 {
		return nil, ErrEmptyCart
	}

	products, err := s.catalog.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	index := models.IndexProducts(products)

	subtotal := decimal.Zero
	orderItems := make([]models.OrderItem, 0, len(cartItems))
	clearIDs := make([]uint, 0, len(cartItems))
	skipped := 0
	for _, item := range cartItems {
		clearIDs = append(clearIDs, item.ID)

		product, ok := index[item.ProductID]
		if !ok {
			skipped++
			continue
		}

		lineTotal := LineTotal(product.Price, item.Quantity)
		subtotal = subtotal.Add(lineTotal)
		orderItems = append(orderItems, models.OrderItem{
			ProductID:    item.ProductID,
			ProductTitle: product.Title,
			LineTotal:    lineTotal.InexactFloat64(),
			Quantity:     item.Quantity,
		})
	}

	totals := ComputeTotals(subtotal)
	order := &models.Order{
		UserID:          userID,
		Total:           totals.Total.InexactFloat64(),
		Status:          models.OrderStatusPending,
		ShippingAddress: shipping.FormatAddress(),
		CreatedAt:       s.now(),
		Items:           orderItems,
	}

	if err := s.store.PlaceOrder(ctx, order, clearIDs); err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	logging.LogContext(ctx, logging.Fields{
		Service:    "shop",
		UserID:     userID,
		OrderID:    order.ID,
		Step:       "checkout",
		Status:     "placed",
		DurationMS: time.Since(started).Milliseconds(),
		Message:    fmt.Sprintf("%d line(s), %d skipped, total %s", len(orderItems), skipped, totals.Total.StringFixed(2)),
	})

	s.notifyOrderPlaced(ctx, user, order)
	return order, nil
}

// GetOrder returns the order with its items. Items is never nil, even for an
// order whose every cart line was skipped.
func (s *Service) GetOrder(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Items == nil {
		order.Items = []models.OrderItem{}
	}
	return order, nil
}

// ListOrders returns the user's orders, newest first.
func (s *Service) ListOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	orders, err := s.store.ListOrders(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	for i := range orders {
		if orders[i].Items == nil {
			orders[i].Items = []models.OrderItem{}
		}
	}
	return orders, nil
}
