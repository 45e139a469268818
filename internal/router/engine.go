package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"julianmorley.ca/con-plar/storefront/internal/service"
	"julianmorley.ca/con-plar/storefront/pkg/ai"
	"julianmorley.ca/con-plar/storefront/pkg/auth"
	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/store"
)

// Services are the dependencies the handlers call into.
type Services struct {
	Store      store.Store
	Catalog    *service.Catalog
	Cart       *service.Cart
	Orders     *service.Orders
	Account    *service.Account
	Engagement *service.Engagement
	Reporter   *ai.Reporter
}

type handler struct {
	Services
}

// NewEngine builds the gin engine with CORS, identity resolution and every route.
func NewEngine(cfg global.Config, svc Services, identity auth.Provider) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", adminKeyHeader},
		ExposeHeaders:    []string{"Content-Length", "X-Cache"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	h := &handler{Services: svc}
	h.initializeRoutes(router, cfg, identity)
	return router
}

func (h *handler) initializeRoutes(router *gin.Engine, cfg global.Config, identity auth.Provider) {
	api := router.Group("/api")
	api.Use(IdentityMiddleware(identity))
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/categories", h.GetCategories)

		products := api.Group("/products")
		{
			products.GET("", h.ListProducts)
			products.GET("/featured", h.ListFeaturedProducts)
			products.GET("/:id", h.GetProduct)
		}

		cart := api.Group("/cart")
		{
			cart.GET("", h.GetCart)
			cart.DELETE("", h.ClearCart)
			cart.GET("/items", h.GetCartItems)
			cart.POST("/items", h.AddToCart)
			cart.PUT("/items/:id", h.UpdateCartItem)
			cart.DELETE("/items/:id", h.RemoveFromCart)
		}

		orders := api.Group("/orders")
		{
			orders.POST("", h.CreateOrder)
			orders.GET("", h.GetUserOrders)
			orders.GET("/:orderNumber", h.GetOrderByNumber)
		}

		users := api.Group("/users")
		{
			users.GET("/me", h.GetCurrentUser)
			users.PUT("/me", h.CreateOrUpdateUser)
			users.PATCH("/me", h.UpdateProfile)
		}

		api.POST("/contact", h.SubmitContact)
		api.POST("/newsletter", h.SubscribeNewsletter)
		api.DELETE("/newsletter", h.UnsubscribeNewsletter)

		admin := api.Group("/admin")
		admin.Use(AdminMiddleware(cfg.AdminKeyHash))
		{
			admin.POST("/seed", h.SeedProducts)
			admin.PUT("/products/:id", h.UpdateProduct)
			admin.PUT("/orders/:id/status", h.UpdateOrderStatus)
			admin.GET("/contacts", h.ListContacts)

			analytics := admin.Group("/analytics")
			{
				analytics.GET("/orders", h.GetOrderStats)
				analytics.GET("/top-products", h.GetTopProducts)

				aiAnalytics := analytics.Group("/ai")
				{
					aiAnalytics.GET("/sales-report", h.GenerateAISalesReport)
					aiAnalytics.GET("/contact-digest", h.GenerateAIContactDigest)
				}
			}
		}
	}
}
