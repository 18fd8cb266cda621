package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/shopa-beauty/storefront-api/pkg/ai"
	"github.com/shopa-beauty/storefront-api/pkg/global"
	"github.com/shopa-beauty/storefront-api/pkg/metrics"
	"github.com/shopa-beauty/storefront-api/pkg/shop"
)

// Deps is everything the HTTP layer needs. Keys, AI and Metrics are optional.
type Deps struct {
	Config  global.Config
	Shop    *shop.Service
	Keys    CheckoutKeys
	AI      *ai.Client
	Metrics *metrics.ServerMetrics
}

func New(deps Deps) *gin.Engine {
	if deps.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     deps.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", IdempotencyHeader, RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", RequestIDHeader, ReplayedHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(RequestIDMiddleware())
	if deps.Metrics != nil {
		router.Use(MetricsMiddleware(deps.Metrics))
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	h := NewHandler(deps)
	InitializeRoutes(router, h)
	return router
}

func InitializeRoutes(router *gin.Engine, h *Handler) {
	router.GET("/products", h.ListProducts)
	router.GET("/fetch-products", h.FetchProducts)

	api := router.Group("/api")
	{
		api.GET("/health", h.HealthCheck)
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
		api.GET("/products", h.ListProducts)

		cart := api.Group("/cart")
		{
			cart.GET("", RequireUintQuery("user_id"), h.GetCart)
			cart.POST("/add", h.AddToCart)
			cart.PUT("/update", h.UpdateCartItem)
			cart.DELETE("/remove", RequireUintQuery("cart_item_id"), h.RemoveFromCart)
		}

		api.POST("/checkout", h.Checkout)

		orders := api.Group("/orders")
		{
			orders.GET("/:id", h.GetOrder)
			orders.GET("/:id/receipt", h.GetReceipt)
		}

		api.GET("/users/:id/orders", h.ListUserOrders)
	}
}
