package shop_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopa-beauty/storefront-api/pkg/catalog"
	"github.com/shopa-beauty/storefront-api/pkg/memstore"
	"github.com/shopa-beauty/storefront-api/pkg/models"
	"github.com/shopa-beauty/storefront-api/pkg/shop"
)

type fakeCatalog struct {
	products []models.Product
	err      error
	calls    int
}

func (f *fakeCatalog) FetchAll(ctx context.Context) ([]models.Product, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.Product(nil), f.products...), nil
}

func (f *fakeCatalog) remove(id string) {
	kept := f.products[:0]
	for _, p := range f.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	f.products = kept
}

type recordingListener struct {
	orders []*models.Order
	err    error
}

func (r *recordingListener) OrderPlaced(ctx context.Context, user *models.User, order *models.Order) error {
	r.orders = append(r.orders, order)
	return r.err
}

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

func setup(t *testing.T, opts ...shop.Option) (*shop.Service, *memstore.Store, *fakeCatalog, uint) {
	t.Helper()
	store := memstore.New()
	cat := &fakeCatalog{products: []models.Product{
		{ID: "A", Title: "Product A", Price: 10.00, Image: "/a.jpg"},
		{ID: "B", Title: "Product B", Price: 5.00, Image: "/b.jpg"},
		{ID: "C", Title: "Product C", Price: 19.99, Image: "/c.jpg"},
	}}
	opts = append([]shop.Option{shop.WithClock(func() time.Time { return fixedNow })}, opts...)
	svc := shop.NewService(store, cat, opts...)

	user, err := svc.Register(context.Background(), models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "s3cret"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	return svc, store, cat, user.ID
}

func mustAdd(t *testing.T, svc *shop.Service, userID uint, productID string, qty int) *models.CartItem {
	t.Helper()
	item, err := svc.AddToCart(context.Background(), userID, productID, qty)
	if err != nil {
		t.Fatalf("add %s: %v", productID, err)
	}
	return item
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAddToCartMergesSamePair(t *testing.T) {
	svc, store, _, userID := setup(t)
	ctx := context.Background()

	first := mustAdd(t, svc, userID, "A", 2)
	second := mustAdd(t, svc, userID, "A", 3)

	if first.ID != second.ID {
		t.Errorf("expected the same cart item, got ids %d and %d", first.ID, second.ID)
	}

	items, _ := store.ListCartItems(ctx, userID)
	if len(items) != 1 {
		t.Fatalf("expected 1 cart row, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Errorf("expected quantity 5, got %d", items[0].Quantity)
	}
	if !items[0].AddedAt.Equal(fixedNow) {
		t.Errorf("expected added_at %v, got %v", fixedNow, items[0].AddedAt)
	}
}

func TestAddToCartDefaultsToOne(t *testing.T) {
	svc, _, _, userID := setup(t)

	item := mustAdd(t, svc, userID, "B", 0)
	if item.Quantity != 1 {
		t.Errorf("expected default quantity 1, got %d", item.Quantity)
	}

	if _, err := svc.AddToCart(context.Background(), userID, "B", -2); !errors.Is(err, shop.ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestAddToCartUnknownProduct(t *testing.T) {
	svc, store, _, userID := setup(t)

	_, err := svc.AddToCart(context.Background(), userID, "nope", 1)
	if !errors.Is(err, shop.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if items, _ := store.ListCartItems(context.Background(), userID); len(items) != 0 {
		t.Errorf("expected no cart rows, got %d", len(items))
	}
}

func TestAddToCartUnknownUser(t *testing.T) {
	svc, _, _, _ := setup(t)

	if _, err := svc.AddToCart(context.Background(), 999, "A", 1); !errors.Is(err, shop.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAddToCartUpstreamFailure(t *testing.T) {
	svc, _, cat, userID := setup(t)
	cat.err = catalog.ErrUpstreamUnavailable

	if _, err := svc.AddToCart(context.Background(), userID, "A", 1); !errors.Is(err, catalog.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
}

func TestUpdateCartItem(t *testing.T) {
	svc, store, _, userID := setup(t)
	ctx := context.Background()
	item := mustAdd(t, svc, userID, "A", 4)

	if err := svc.UpdateCartItem(ctx, item.ID, 2); err != nil {
		t.Fatalf("update: %v", err)
	}
	items, _ := store.ListCartItems(ctx, userID)
	if items[0].Quantity != 2 {
		t.Errorf("expected quantity set to 2, got %d", items[0].Quantity)
	}

	if err := svc.UpdateCartItem(ctx, item.ID, 0); !errors.Is(err, shop.ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestUpdateMissingCartItemDoesNotMutate(t *testing.T) {
	svc, store, _, userID := setup(t)
	ctx := context.Background()
	item := mustAdd(t, svc, userID, "A", 4)

	err := svc.UpdateCartItem(ctx, item.ID+100, 9)
	if !errors.Is(err, shop.ErrCartItemNotFound) {
		t.Fatalf("expected ErrCartItemNotFound, got %v", err)
	}

	items, _ := store.ListCartItems(ctx, userID)
	if len(items) != 1 || items[0].Quantity != 4 {
		t.Errorf("cart changed after failed update: %+v", items)
	}
}

func TestRemoveCartItem(t *testing.T) {
	svc, store, _, userID := setup(t)
	ctx := context.Background()
	item := mustAdd(t, svc, userID, "A", 1)

	if err := svc.RemoveCartItem(ctx, item.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if items, _ := store.ListCartItems(ctx, userID); len(items) != 0 {
		t.Errorf("expected empty cart, got %d items", len(items))
	}
	if err := svc.RemoveCartItem(ctx, item.ID); !errors.Is(err, shop.ErrCartItemNotFound) {
		t.Errorf("expected ErrCartItemNotFound on second remove, got %v", err)
	}
}

func TestListCartJoinsCatalogAndSkipsMissing(t *testing.T) {
	svc, _, cat, userID := setup(t)
	ctx := context.Background()
	mustAdd(t, svc, userID, "A", 2)
	mustAdd(t, svc, userID, "B", 1)
	cat.remove("A")

	lines, err := svc.ListCart(ctx, userID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line after skip, got %d", len(lines))
	}
	got := lines[0]
	if got.Product.ID != "B" || got.Product.Title != "Product B" || got.Product.Price != 5.00 || got.Product.Image != "/b.jpg" {
		t.Errorf("unexpected product join: %+v", got.Product)
	}
	if got.Quantity != 1 {
		t.Errorf("expected quantity 1, got %d", got.Quantity)
	}
}

func TestCheckoutScenario(t *testing.T) {
	listener := &recordingListener{}
	svc, _, cat, userID := setup(t, shop.WithListener(listener))
	ctx := context.Background()
	mustAdd(t, svc, userID, "A", 2)
	mustAdd(t, svc, userID, "B", 1)
	callsBefore := cat.calls

	order, err := svc.Checkout(ctx, userID, models.ShippingInfo{
		FirstName: "Alice", LastName: "Liddell", Phone: "555-0100",
		Address: "1 Main St", City: "Springfield", State: "IL", Zip: "62701",
	})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if cat.calls-callsBefore != 1 {
		t.Errorf("expected a single catalog fetch, got %d", cat.calls-callsBefore)
	}
	if !almostEqual(order.Total, 32.50) {
		t.Errorf("expected total 32.50, got %v", order.Total)
	}
	if order.Status != models.OrderStatusPending {
		t.Errorf("expected pending status, got %q", order.Status)
	}
	if order.ShippingAddress != "1 Main St, Springfield, IL 62701" {
		t.Errorf("unexpected shipping address %q", order.ShippingAddress)
	}
	if !order.CreatedAt.Equal(fixedNow) {
		t.Errorf("expected created_at %v, got %v", fixedNow, order.CreatedAt)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(order.Items))
	}
	if order.Items[0].ProductID != "A" || !almostEqual(order.Items[0].LineTotal, 20.00) || order.Items[0].Quantity != 2 {
		t.Errorf("expected line total 20.00 for A, got %+v", order.Items[0])
	}
	if order.Items[1].ProductTitle != "Product B" || !almostEqual(order.Items[1].LineTotal, 5.00) {
		t.Errorf("unexpected item B: %+v", order.Items[1])
	}

	receipt := shop.Receipt(order)
	if !almostEqual(receipt.Subtotal, 25.00) || !almostEqual(receipt.Tax, 2.50) || !almostEqual(receipt.Shipping, 5.00) {
		t.Errorf("unexpected receipt: %+v", receipt)
	}

	lines, err := svc.ListCart(ctx, userID)
	if err != nil {
		t.Fatalf("list after checkout: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("expected empty cart after checkout, got %d lines", len(lines))
	}

	if len(listener.orders) != 1 || listener.orders[0].ID != order.ID {
		t.Errorf("expected listener to see order %d, got %+v", order.ID, listener.orders)
	}
}

func TestCheckoutTotalProperty(t *testing.T) {
	svc, _, _, userID := setup(t)
	ctx := context.Background()
	mustAdd(t, svc, userID, "A", 3)
	mustAdd(t, svc, userID, "B", 7)
	mustAdd(t, svc, userID, "C", 2)

	order, err := svc.Checkout(ctx, userID, models.ShippingInfo{Address: "x", City: "y", State: "z", Zip: "0"})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	want := (10.00*3+5.00*7+19.99*2)*1.10 + 5.0
	if math.Abs(order.Total-want) > 1e-6 {
		t.Errorf("expected total %v, got %v", want, order.Total)
	}
}

func TestCheckoutSkipsMissingProducts(t *testing.T) {
	svc, _, cat, userID := setup(t)
	ctx := context.Background()
	mustAdd(t, svc, userID, "A", 2)
	mustAdd(t, svc, userID, "C", 1)
	cat.remove("C")

	order, err := svc.Checkout(ctx, userID, models.ShippingInfo{Address: "x", City: "y", State: "z", Zip: "0"})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(order.Items) != 1 || order.Items[0].ProductID != "A" {
		t.Fatalf("expected only item A, got %+v", order.Items)
	}
	if !almostEqual(order.Total, 20.00*1.10+5.0) {
		t.Errorf("missing line changed the total: %v", order.Total)
	}

	stored, err := svc.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if len(stored.Items) != 1 {
		t.Errorf("expected 1 stored item, got %d", len(stored.Items))
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc, store, _, userID := setup(t)
	ctx := context.Background()

	_, err := svc.Checkout(ctx, userID, models.ShippingInfo{})
	if !errors.Is(err, shop.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	orders, _ := store.ListOrders(ctx, userID)
	if len(orders) != 0 {
		t.Errorf("expected no orders, got %d", len(orders))
	}
}

func TestCheckoutRollsBackOnStoreFailure(t *testing.T) {
	svc, store, _, userID := setup(t)
	ctx := context.Background()
	mustAdd(t, svc, userID, "A", 1)
	store.FailPlaceOrder = errors.New("disk full")

	if _, err := svc.Checkout(ctx, userID, models.ShippingInfo{}); err == nil {
		t.Fatal("expected checkout to fail")
	}

	if items, _ := store.ListCartItems(ctx, userID); len(items) != 1 {
		t.Errorf("expected cart to be untouched, got %d items", len(items))
	}
	if orders, _ := store.ListOrders(ctx, userID); len(orders) != 0 {
		t.Errorf("expected no orders, got %d", len(orders))
	}
}

func TestCheckoutUpstreamMalformedKeepsCart(t *testing.T) {
	svc, store, cat, userID := setup(t)
	ctx := context.Background()
	mustAdd(t, svc, userID, "A", 1)
	cat.err = catalog.ErrUpstreamMalformed

	if _, err := svc.Checkout(ctx, userID, models.ShippingInfo{}); !errors.Is(err, catalog.ErrUpstreamMalformed) {
		t.Fatalf("expected ErrUpstreamMalformed, got %v", err)
	}
	if items, _ := store.ListCartItems(ctx, userID); len(items) != 1 {
		t.Errorf("expected cart to be untouched, got %d items", len(items))
	}
}

func TestListenerErrorDoesNotFailCheckout(t *testing.T) {
	listener := &recordingListener{err: errors.New("broker down")}
	svc, _, _, userID := setup(t, shop.WithListener(listener))
	mustAdd(t, svc, userID, "B", 1)

	if _, err := svc.Checkout(context.Background(), userID, models.ShippingInfo{}); err != nil {
		t.Fatalf("checkout should succeed despite listener error: %v", err)
	}
	if len(listener.orders) != 1 {
		t.Errorf("expected listener to be called once, got %d", len(listener.orders))
	}
}

func TestGetOrderNotFound(t *testing.T) {
	svc, _, _, _ := setup(t)

	if _, err := svc.GetOrder(context.Background(), 42); !errors.Is(err, shop.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	now := fixedNow
	svc, _, _, userID := setup(t, shop.WithClock(func() time.Time {
		now = now.Add(time.Minute)
		return now
	}))
	ctx := context.Background()

	mustAdd(t, svc, userID, "A", 1)
	first, _ := svc.Checkout(ctx, userID, models.ShippingInfo{})
	mustAdd(t, svc, userID, "B", 1)
	second, _ := svc.Checkout(ctx, userID, models.ShippingInfo{})

	orders, err := svc.ListOrders(ctx, userID)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 2 || orders[0].ID != second.ID || orders[1].ID != first.ID {
		t.Errorf("expected newest first, got %+v", orders)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Email: "other@example.com", Password: "x"})
	if !errors.Is(err, shop.ErrDuplicateUser) {
		t.Errorf("expected ErrDuplicateUser for username, got %v", err)
	}
	_, err = svc.Register(ctx, models.RegisterRequest{Username: "bob", Email: "ALICE@example.com", Password: "x"})
	if !errors.Is(err, shop.ErrDuplicateUser) {
		t.Errorf("expected ErrDuplicateUser for email, got %v", err)
	}

	user, err := svc.Login(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Username != "alice" || user.PasswordHash == "s3cret" {
		t.Errorf("unexpected user: %+v", user)
	}

	if _, err := svc.Login(ctx, "alice", "wrong"); !errors.Is(err, shop.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "s3cret"); !errors.Is(err, shop.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

// nilItemsStore drops empty item slices the way a driver preload can.
type nilItemsStore struct {
	*memstore.Store
}

func (s nilItemsStore) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.Store.GetOrder(ctx, id)
	if err == nil && len(order.Items) == 0 {
		order.Items = nil
	}
	return order, err
}

func (s nilItemsStore) ListOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	orders, err := s.Store.ListOrders(ctx, userID)
	for i := range orders {
		if len(orders[i].Items) == 0 {
			orders[i].Items = nil
		}
	}
	return orders, err
}

func TestOrdersWithEverySkippedLineHaveEmptyItems(t *testing.T) {
	ctx := context.Background()
	mem := memstore.New()
	cat := &fakeCatalog{products: []models.Product{{ID: "A", Title: "Product A", Price: 10}}}
	svc := shop.NewService(nilItemsStore{mem}, cat)

	user, err := svc.Register(ctx, models.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	mustAdd(t, svc, user.ID, "A", 1)
	cat.remove("A")

	order, err := svc.Checkout(ctx, user.ID, models.ShippingInfo{})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if !almostEqual(order.Total, 5.0) {
		t.Errorf("total = %v, want 5", order.Total)
	}

	got, err := svc.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.Items == nil || len(got.Items) != 0 {
		t.Errorf("items = %#v, want empty non-nil", got.Items)
	}

	orders, err := svc.ListOrders(ctx, user.ID)
	if err != nil || len(orders) != 1 {
		t.Fatalf("list orders = %v, %v", orders, err)
	}
	if orders[0].Items == nil {
		t.Error("listed order items are nil")
	}
}
