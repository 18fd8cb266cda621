package router

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shopa-beauty/storefront-api/pkg/ai"
	"github.com/shopa-beauty/storefront-api/pkg/catalog"
	"github.com/shopa-beauty/storefront-api/pkg/global"
	"github.com/shopa-beauty/storefront-api/pkg/models"
	storeredis "github.com/shopa-beauty/storefront-api/pkg/redis"
	"github.com/shopa-beauty/storefront-api/pkg/shop"
)

// CheckoutKeys deduplicates checkout retries by Idempotency-Key.
type CheckoutKeys interface {
	Begin(ctx context.Context, userID uint, key string) (*models.CheckoutResponse, error)
	Complete(ctx context.Context, userID uint, key string, resp *models.CheckoutResponse) error
	Release(ctx context.Context, userID uint, key string) error
}

type Handler struct {
	shop *shop.Service
	keys CheckoutKeys
	ai   *ai.Client
}

func NewHandler(deps Deps) *Handler {
	return &Handler{shop: deps.Shop, keys: deps.Keys, ai: deps.AI}
}

// errorKinds maps service errors to status and error code, most specific first.
var errorKinds = []struct {
	err    error
	status int
	code   string
}{
	{catalog.ErrUpstreamUnavailable, http.StatusServiceUnavailable, "upstream_unavailable"},
	{catalog.ErrUpstreamMalformed, http.StatusBadGateway, "upstream_malformed"},
	{shop.ErrProductNotFound, http.StatusNotFound, "product_not_found"},
	{shop.ErrCartItemNotFound, http.StatusNotFound, "cart_item_not_found"},
	{shop.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
	{shop.ErrUserNotFound, http.StatusNotFound, "user_not_found"},
	{shop.ErrEmptyCart, http.StatusBadRequest, "empty_cart"},
	{shop.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{shop.ErrDuplicateUser, http.StatusConflict, "duplicate_user"},
	{shop.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
}

// writeError answers with the envelope for err. field names the request
// field the error is about.
func writeError(c *gin.Context, err error, field string) {
	for _, kind := range errorKinds {
		if errors.Is(err, kind.err) {
			c.JSON(kind.status, global.ErrorResponse(kind.err.Error(), []global.ValidationError{
				{Field: field, Message: err.Error(), Code: kind.code},
			}))
			return
		}
	}

	log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, global.ErrorResponse("Internal server error", nil))
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid request data", []global.ValidationError{
		{Field: "request", Message: err.Error(), Code: "validation_error"},
	}))
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, global.FieldError("Invalid "+name+" format", name, "invalid_format"))
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) HealthCheck(c *gin.Context) {
	if err := h.shop.Store().Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Database connection failed", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"status": "OK", "database": "Connected"}))
}

func (h *Handler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.shop.Register(c.Request.Context(), req)
	if err != nil {
		writeError(c, err, "username")
		return
	}

	c.JSON(http.StatusCreated, global.SuccessResponse(map[string]interface{}{
		"message":  "User registered successfully",
		"user_id":  user.ID,
		"username": user.Username,
	}))
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.shop.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err, "username")
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(models.LoginResponse{
		Message:  "Login successful",
		UserID:   user.ID,
		Username: user.Username,
	}))
}

// ListProducts serves the live catalog, optionally filtered by ?search= and
// sliced by ?page= and ?per_page=.
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.shop.Catalog().FetchAll(c.Request.Context())
	if err != nil {
		writeError(c, err, "products")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", strconv.Itoa(catalog.DefaultPerPage)))

	filtered := catalog.Search(products, strings.TrimSpace(c.Query("search")))
	c.JSON(http.StatusOK, global.SuccessResponse(catalog.Paginate(filtered, page, perPage)))
}

// FetchProducts checks that the catalog is reachable and reports its size.
func (h *Handler) FetchProducts(c *gin.Context) {
	products, err := h.shop.Catalog().FetchAll(c.Request.Context())
	if err != nil {
		writeError(c, err, "products")
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]interface{}{
		"message": "Products fetched successfully",
		"count":   len(products),
	}))
}

func (h *Handler) GetCart(c *gin.Context) {
	userID := c.GetUint("user_id")

	lines, err := h.shop.ListCart(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "user_id")
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(models.CartResponse{CartItems: lines}))
}

func (h *Handler) AddToCart(c *gin.Context) {
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	item, err := h.shop.AddToCart(c.Request.Context(), req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		field := "product_id"
		if errors.Is(err, shop.ErrUserNotFound) {
			field = "user_id"
		}
		writeError(c, err, field)
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(map[string]interface{}{
		"message":   "Item added to cart successfully",
		"cart_item": item,
	}))
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.shop.UpdateCartItem(c.Request.Context(), req.CartItemID, req.Quantity); err != nil {
		field := "cart_item_id"
		if errors.Is(err, shop.ErrInvalidQuantity) {
			field = "quantity"
		}
		writeError(c, err, field)
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"message": "Cart item updated successfully"}))
}

func (h *Handler) RemoveFromCart(c *gin.Context) {
	if err := h.shop.RemoveCartItem(c.Request.Context(), c.GetUint("cart_item_id")); err != nil {
		writeError(c, err, "cart_item_id")
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"message": "Item removed from cart successfully"}))
}

// Checkout places an order from the user's cart. With an Idempotency-Key
// header, a retry of a completed checkout replays the first response.
func (h *Handler) Checkout(c *gin.Context) {
	var req models.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	key := strings.TrimSpace(c.GetHeader(IdempotencyHeader))
	claimed := false
	if key != "" && h.keys != nil {
		replay, err := h.keys.Begin(ctx, req.UserID, key)
		switch {
		case errors.Is(err, storeredis.ErrCheckoutInProgress):
			c.JSON(http.StatusConflict, global.FieldError(err.Error(), "idempotency_key", "checkout_in_progress"))
			return
		case err != nil:
			log.Printf("Idempotency store error: %v", err)
			c.JSON(http.StatusServiceUnavailable, global.FieldError("Idempotency store unavailable", "idempotency_key", "idempotency_unavailable"))
			return
		case replay != nil:
			c.Header(ReplayedHeader, "true")
			c.JSON(http.StatusOK, global.SuccessResponse(replay))
			return
		}
		claimed = true
	}

	order, err := h.shop.Checkout(ctx, req.UserID, req.ShippingInfo)
	if err != nil {
		if claimed {
			if relErr := h.keys.Release(context.WithoutCancel(ctx), req.UserID, key); relErr != nil {
				log.Printf("Warning: Failed to release idempotency key: %v", relErr)
			}
		}
		writeError(c, err, "user_id")
		return
	}

	resp := &models.CheckoutResponse{
		Message: "Order placed successfully",
		OrderID: order.ID,
		Total:   order.Total,
	}
	if claimed {
		// The order is committed; a failure here only loses replay.
		if err := h.keys.Complete(context.WithoutCancel(ctx), req.UserID, key, resp); err != nil {
			log.Printf("Warning: Failed to store checkout response for replay: %v", err)
		}
	}

	c.JSON(http.StatusOK, global.SuccessResponse(resp))
}

func (h *Handler) GetOrder(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := h.shop.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		writeError(c, err, "id")
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(order))
}

// GetReceipt returns the order's price breakdown, with a generated summary
// when the AI service is configured.
func (h *Handler) GetReceipt(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	order, err := h.shop.GetOrder(ctx, orderID)
	if err != nil {
		writeError(c, err, "id")
		return
	}

	report := h.ai.GenerateReceiptReport(ctx, order, shop.Receipt(order))
	c.JSON(http.StatusOK, global.SuccessResponse(report))
}

func (h *Handler) ListUserOrders(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	orders, err := h.shop.ListOrders(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err, "id")
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(map[string]interface{}{
		"orders": orders,
		"count":  len(orders),
	}))
}
