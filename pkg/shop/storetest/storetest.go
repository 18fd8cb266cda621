// Package storetest is a conformance suite every shop.Store implementation
// runs from its own tests.
package storetest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/shopa-beauty/storefront-api/pkg/models"
	"github.com/shopa-beauty/storefront-api/pkg/shop"
)

// Timestamps are truncated so every backend round-trips them exactly.
var baseTime = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func Run(t *testing.T, newStore func(t *testing.T) shop.Store) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s shop.Store)
	}{
		{"Users", testUsers},
		{"AddCartItemMerges", testAddCartItemMerges},
		{"CartItemMutations", testCartItemMutations},
		{"PlaceOrder", testPlaceOrder},
		{"PlaceOrderKeepsOtherLines", testPlaceOrderKeepsOtherLines},
		{"ListOrdersNewestFirst", testListOrdersNewestFirst},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

func createUser(t *testing.T, s shop.Store) *models.User {
	t.Helper()
	name := "user-" + uuid.NewString()[:8]
	user := &models.User{Username: name, Email: name + "@example.com", PasswordHash: "hash"}
	if err := s.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("CreateUser did not assign an id")
	}
	return user
}

func testUsers(t *testing.T, s shop.Store) {
	ctx := context.Background()
	user := createUser(t, s)

	got, err := s.GetUser(ctx, user.ID)
	if err != nil || got.Username != user.Username || got.Email != user.Email {
		t.Fatalf("GetUser = %+v, %v", got, err)
	}
	got, err = s.GetUserByUsername(ctx, user.Username)
	if err != nil || got.ID != user.ID {
		t.Fatalf("GetUserByUsername = %+v, %v", got, err)
	}

	dupName := &models.User{Username: user.Username, Email: "x-" + user.Email, PasswordHash: "h"}
	if err := s.CreateUser(ctx, dupName); !errors.Is(err, shop.ErrDuplicateUser) {
		t.Fatalf("duplicate username err = %v", err)
	}
	dupEmail := &models.User{Username: "x-" + user.Username, Email: user.Email, PasswordHash: "h"}
	if err := s.CreateUser(ctx, dupEmail); !errors.Is(err, shop.ErrDuplicateUser) {
		t.Fatalf("duplicate email err = %v", err)
	}

	if _, err := s.GetUser(ctx, user.ID+100000); !errors.Is(err, shop.ErrUserNotFound) {
		t.Fatalf("missing user err = %v", err)
	}
	if _, err := s.GetUserByUsername(ctx, "nobody-"+uuid.NewString()); !errors.Is(err, shop.ErrUserNotFound) {
		t.Fatalf("missing username err = %v", err)
	}
}

func testAddCartItemMerges(t *testing.T, s shop.Store) {
	ctx := context.Background()
	user := createUser(t, s)

	first, err := s.AddCartItem(ctx, user.ID, "A", 2, baseTime)
	if err != nil {
		t.Fatalf("AddCartItem: %v", err)
	}
	second, err := s.AddCartItem(ctx, user.ID, "A", 3, baseTime.Add(time.Hour))
	if err != nil {
		t.Fatalf("AddCartItem again: %v", err)
	}
	if second.ID != first.ID || second.Quantity != 5 {
		t.Fatalf("merged item = %+v, first = %+v", second, first)
	}
	if !second.AddedAt.Equal(baseTime) {
		t.Errorf("AddedAt = %v, want first add time %v", second.AddedAt, baseTime)
	}

	items, err := s.ListCartItems(ctx, user.ID)
	if err != nil || len(items) != 1 || items[0].Quantity != 5 {
		t.Fatalf("ListCartItems = %+v, %v", items, err)
	}
}

func testCartItemMutations(t *testing.T, s shop.Store) {
	ctx := context.Background()
	user := createUser(t, s)
	item, err := s.AddCartItem(ctx, user.ID, "B", 1, baseTime)
	if err != nil {
		t.Fatalf("AddCartItem: %v", err)
	}

	if err := s.SetCartItemQuantity(ctx, item.ID, 4); err != nil {
		t.Fatalf("SetCartItemQuantity: %v", err)
	}
	items, _ := s.ListCartItems(ctx, user.ID)
	if len(items) != 1 || items[0].Quantity != 4 {
		t.Fatalf("after set = %+v", items)
	}

	missing := item.ID + 100000
	if err := s.SetCartItemQuantity(ctx, missing, 2); !errors.Is(err, shop.ErrCartItemNotFound) {
		t.Fatalf("set missing err = %v", err)
	}
	if err := s.DeleteCartItem(ctx, missing); !errors.Is(err, shop.ErrCartItemNotFound) {
		t.Fatalf("delete missing err = %v", err)
	}

	if err := s.DeleteCartItem(ctx, item.ID); err != nil {
		t.Fatalf("DeleteCartItem: %v", err)
	}
	if items, _ := s.ListCartItems(ctx, user.ID); len(items) != 0 {
		t.Fatalf("after delete = %+v", items)
	}
}

func newOrder(userID uint, createdAt time.Time) *models.Order {
	return &models.Order{
		UserID:          userID,
		Total:           32.5,
		Status:          models.OrderStatusPending,
		ShippingAddress: "1 Main St, Springfield, IL 62701",
		CreatedAt:       createdAt,
		Items: []models.OrderItem{
			{ProductID: "A", ProductTitle: "Product A", LineTotal: 20, Quantity: 2},
			{ProductID: "B", ProductTitle: "Product B", LineTotal: 5, Quantity: 1},
		},
	}
}

func testPlaceOrder(t *testing.T, s shop.Store) {
	ctx := context.Background()
	user := createUser(t, s)
	a, _ := s.AddCartItem(ctx, user.ID, "A", 2, baseTime)
	b, _ := s.AddCartItem(ctx, user.ID, "B", 1, baseTime)

	order := newOrder(user.ID, baseTime)
	if err := s.PlaceOrder(ctx, order, []uint{a.ID, b.ID}); err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	if order.ID == 0 || order.Items[0].ID == 0 || order.Items[1].ID == 0 {
		t.Fatalf("ids not assigned: %+v", order)
	}

	if items, _ := s.ListCartItems(ctx, user.ID); len(items) != 0 {
		t.Fatalf("cart not cleared: %+v", items)
	}

	got, err := s.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if got.UserID != user.ID || got.Total != 32.5 || got.Status != models.OrderStatusPending ||
		got.ShippingAddress != order.ShippingAddress || !got.CreatedAt.Equal(baseTime) {
		t.Errorf("order = %+v", got)
	}
	if len(got.Items) != 2 || got.Items[0].ProductID != "A" || got.Items[0].LineTotal != 20 ||
		got.Items[1].Quantity != 1 || got.Items[1].ProductTitle != "Product B" {
		t.Errorf("items = %+v", got.Items)
	}

	if _, err := s.GetOrder(ctx, order.ID+100000); !errors.Is(err, shop.ErrOrderNotFound) {
		t.Fatalf("missing order err = %v", err)
	}
}

func testPlaceOrderKeepsOtherLines(t *testing.T, s shop.Store) {
	ctx := context.Background()
	user := createUser(t, s)
	a, _ := s.AddCartItem(ctx, user.ID, "A", 1, baseTime)
	late, _ := s.AddCartItem(ctx, user.ID, "C", 1, baseTime)

	if err := s.PlaceOrder(ctx, newOrder(user.ID, baseTime), []uint{a.ID}); err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	items, _ := s.ListCartItems(ctx, user.ID)
	if len(items) != 1 || items[0].ID != late.ID {
		t.Fatalf("remaining cart = %+v, want only %d", items, late.ID)
	}
}

func testListOrdersNewestFirst(t *testing.T, s shop.Store) {
	ctx := context.Background()
	user := createUser(t, s)

	older := newOrder(user.ID, baseTime)
	newer := newOrder(user.ID, baseTime.Add(time.Hour))
	for _, o := range []*models.Order{older, newer} {
		if err := s.PlaceOrder(ctx, o, nil); err != nil {
			t.Fatalf("PlaceOrder: %v", err)
		}
	}

	orders, err := s.ListOrders(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(orders) != 2 || orders[0].ID != newer.ID || orders[1].ID != older.ID {
		t.Fatalf("orders = %+v", orders)
	}

	other := createUser(t, s)
	if orders, err := s.ListOrders(ctx, other.ID); err != nil || len(orders) != 0 {
		t.Fatalf("other user orders = %+v, %v", orders, err)
	}
}

// PlaceOrderRollsBack makes PlaceOrder fail on the item insert, after the
// order row is written, and checks nothing of the order or the cart
// clearing is left behind. Only stores that bound ProductTitle (the
// relational schema, size 255) can run it.
func PlaceOrderRollsBack(t *testing.T, s shop.Store) {
	t.Helper()
	ctx := context.Background()
	user := createUser(t, s)
	a, _ := s.AddCartItem(ctx, user.ID, "A", 2, baseTime)
	b, _ := s.AddCartItem(ctx, user.ID, "B", 1, baseTime)

	order := newOrder(user.ID, baseTime)
	order.Items[1].ProductTitle = strings.Repeat("x", 300)
	if err := s.PlaceOrder(ctx, order, []uint{a.ID, b.ID}); err == nil {
		t.Fatal("expected PlaceOrder to fail on an oversized item")
	}

	orders, err := s.ListOrders(ctx, user.ID)
	if err != nil || len(orders) != 0 {
		t.Fatalf("orders after failed PlaceOrder = %+v, %v", orders, err)
	}
	items, err := s.ListCartItems(ctx, user.ID)
	if err != nil || len(items) != 2 {
		t.Fatalf("cart after failed PlaceOrder = %+v, %v; want both lines", items, err)
	}
}
