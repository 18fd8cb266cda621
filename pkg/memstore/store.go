// Package memstore is an in-process shop.Store. State lives for the life of
// the process; it backs local runs (STORE_DRIVER=memory) and tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopa-beauty/storefront-api/pkg/models"
	"github.com/shopa-beauty/storefront-api/pkg/shop"
)

type Store struct {
	mu sync.RWMutex

	users     map[uint]models.User
	cartItems map[uint]models.CartItem
	orders    map[uint]models.Order

	nextUserID  uint
	nextCartID  uint
	nextOrderID uint
	nextItemID  uint

	// FailPlaceOrder, when set, makes PlaceOrder fail before anything is
	// written.
	FailPlaceOrder error
}

var _ shop.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:     make(map[uint]models.User),
		cartItems: make(map[uint]models.CartItem),
		orders:    make(map[uint]models.Order),
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username || strings.EqualFold(u.Email, user.Email) {
			return shop.ErrDuplicateUser
		}
	}

	s.nextUserID++
	user.ID = s.nextUserID
	s.users[user.ID] = *user
	return nil
}

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, shop.ErrUserNotFound
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, shop.ErrUserNotFound
}

func (s *Store) AddCartItem(ctx context.Context, userID uint, productID string, quantity int, addedAt time.Time) (*models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return nil, shop.ErrUserNotFound
	}

	for id, item := range s.cartItems {
		if item.UserID == userID && item.ProductID == productID {
			item.Quantity += quantity
			s.cartItems[id] = item
			return &item, nil
		}
	}

	s.nextCartID++
	item := models.CartItem{
		ID:        s.nextCartID,
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   addedAt,
	}
	s.cartItems[item.ID] = item
	return &item, nil
}

func (s *Store) SetCartItemQuantity(ctx context.Context, id uint, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.cartItems[id]
	if !ok {
		return shop.ErrCartItemNotFound
	}
	item.Quantity = quantity
	s.cartItems[id] = item
	return nil
}

func (s *Store) DeleteCartItem(ctx context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cartItems[id]; !ok {
		return shop.ErrCartItemNotFound
	}
	delete(s.cartItems, id)
	return nil
}

func (s *Store) ListCartItems(ctx context.Context, userID uint) ([]models.CartItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []models.CartItem
	for _, item := range s.cartItems {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *Store) PlaceOrder(ctx context.Context, order *models.Order, clearCartItemIDs []uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailPlaceOrder != nil {
		return s.FailPlaceOrder
	}
	if _, ok := s.users[order.UserID]; !ok {
		return shop.ErrUserNotFound
	}

	s.nextOrderID++
	order.ID = s.nextOrderID
	for i := range order.Items {
		s.nextItemID++
		order.Items[i].ID = s.nextItemID
		order.Items[i].OrderID = order.ID
	}

	stored := *order
	stored.Items = copyItems(order.Items)
	s.orders[order.ID] = stored

	for _, id := range clearCartItemIDs {
		delete(s.cartItems, id)
	}
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, shop.ErrOrderNotFound
	}
	o.Items = copyItems(o.Items)
	return &o, nil
}

func (s *Store) ListOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := []models.Order{}
	for _, o := range s.orders {
		if o.UserID == userID {
			o.Items = copyItems(o.Items)
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

func copyItems(items []models.OrderItem) []models.OrderItem {
	out := make([]models.OrderItem, len(items))
	copy(out, items)
	return out
}
