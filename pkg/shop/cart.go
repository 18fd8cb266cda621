package shop

import (
	"context"
	"fmt"

	"github.com/shopa-beauty/storefront-api/pkg/models"
)

// AddToCart validates the product against a live catalog fetch and then
// increments or creates the user's line for it. A zero quantity means one.
func (s *Service) AddToCart(ctx context.Context, userID uint, productID string, quantity int) (*models.CartItem, error) {
	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	products, err := s.catalog.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	if _, ok := models.IndexProducts(products)[productID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}

	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	item, err := s.store.AddCartItem(ctx, userID, productID, quantity, s.now())
	if err != nil {
		return nil, fmt.Errorf("add cart item: %w", err)
	}
	return item, nil
}

// UpdateCartItem sets the quantity of a line to exactly quantity.
func (s *Service) UpdateCartItem(ctx context.Context, cartItemID uint, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	return s.store.SetCartItemQuantity(ctx, cartItemID, quantity)
}

func (s *Service) RemoveCartItem(ctx context.Context, cartItemID uint) error {
	return s.store.DeleteCartItem(ctx, cartItemID)
}

// ListCart joins the user's lines with the current catalog. Lines whose
// product is no longer listed are left out without error.
func (s *Service) ListCart(ctx context.Context, userID uint) ([]models.CartLine, error) {
	items, err := s.store.ListCartItems(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}

	products, err := s.catalog.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	index := models.IndexProducts(products)

	lines := make([]models.CartLine, 0, len(items))
	for _, item := range items {
		product, ok := index[item.ProductID]
		if !ok {
			continue
		}
		lines = append(lines, models.CartLine{
			ID:       item.ID,
			Product:  product.Ref(),
			Quantity: item.Quantity,
			AddedAt:  item.AddedAt,
		})
	}
	return lines, nil
}
