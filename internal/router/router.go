package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookshelf-backend/config"
	"github.com/ikkim/bookshelf-backend/internal/app/controller"
	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/ikkim/bookshelf-backend/internal/health"
	"github.com/ikkim/bookshelf-backend/internal/metrics"
	"github.com/ikkim/bookshelf-backend/internal/middleware"
)

// Controllers groups every HTTP handler set the router mounts.
type Controllers struct {
	Auth          *controller.AuthController
	Catalog       *controller.CatalogController
	Cart          *controller.CartController
	Review        *controller.ReviewController
	AdminCatalog  *controller.AdminCatalogController
	AdminCategory *controller.AdminCategoryController
	Order         *controller.OrderController
	AdminUser     *controller.AdminUserController
}

type Router struct {
	controllers    Controllers
	authMiddleware *middleware.AuthMiddleware
	metrics        *metrics.Metrics
	health         *health.Handler
	config         *config.Config
}

// NewRouter builds the router. Nil metrics or health handlers leave those endpoints unmounted.
func NewRouter(
	controllers Controllers,
	authMiddleware *middleware.AuthMiddleware,
	m *metrics.Metrics,
	h *health.Handler,
	cfg *config.Config,
) *Router {
	return &Router{
		controllers:    controllers,
		authMiddleware: authMiddleware,
		metrics:        m,
		health:         h,
		config:         cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	if r.metrics != nil {
		router.Use(r.metrics.Middleware())
		router.GET("/metrics", r.metrics.Handler())
	}
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	if r.health != nil {
		router.GET("/health", r.health.Handle)
	}

	authenticate := r.authMiddleware.Authenticate()
	ctl := r.controllers

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", ctl.Auth.Register)
			auth.POST("/login", ctl.Auth.Login)
			auth.GET("/profile", authenticate, ctl.Auth.Profile)
			auth.GET("/user-by-login/:login", authenticate, ctl.Auth.UserByLogin)
			auth.POST("/logout", authenticate, ctl.Auth.Logout)
		}

		customer := api.Group("/customer")
		{
			customer.GET("/catalog", ctl.Catalog.Browse)
			customer.GET("/product-details/:id", ctl.Catalog.ProductDetails)
			customer.GET("/average-rating/:productId", ctl.Review.AverageRating)
			customer.GET("/ws/reviews/:productId", ctl.Review.ReviewFeed)

			customer.POST("/add-to-cart", authenticate, ctl.Cart.AddToCart)
			customer.POST("/update-cart", authenticate, ctl.Cart.UpdateCart)
			customer.GET("/cart", authenticate, ctl.Cart.GetCart)
			customer.POST("/checkout", authenticate, ctl.Cart.Checkout)
			customer.POST("/add-review", authenticate, ctl.Review.AddReview)
		}

		admin := api.Group("/admin",
			authenticate,
			r.authMiddleware.RequireRole(model.RoleNameAdmin),
		)
		{
			catalogs := admin.Group("/catalogs")
			{
				catalogs.GET("", ctl.AdminCatalog.List)
				catalogs.GET("/export", ctl.AdminCatalog.Export)
				catalogs.POST("/import", ctl.AdminCatalog.Import)
				catalogs.GET("/:id", ctl.AdminCatalog.Get)
				catalogs.POST("", ctl.AdminCatalog.Create)
				catalogs.PUT("/:id", ctl.AdminCatalog.Replace)
				catalogs.DELETE("/:id", ctl.AdminCatalog.Delete)
				catalogs.POST("/:id/cover", ctl.AdminCatalog.Cover)
			}

			categories := admin.Group("/categories")
			{
				categories.GET("", ctl.AdminCategory.List)
				categories.GET("/:id", ctl.AdminCategory.Get)
				categories.POST("", ctl.AdminCategory.Create)
				categories.PUT("/:id", ctl.AdminCategory.Replace)
				categories.DELETE("/:id", ctl.AdminCategory.Delete)
			}

			orders := admin.Group("/orders")
			{
				orders.GET("", ctl.Order.ListOrders)
				orders.GET("/:id", ctl.Order.GetOrder)
				orders.POST("", ctl.Order.CreateOrder)
				orders.PUT("/:id", ctl.Order.ReplaceOrder)
				orders.DELETE("/:id", ctl.Order.DeleteOrder)
			}

			lines := admin.Group("/order-lines")
			{
				lines.GET("", ctl.Order.ListLines)
				lines.GET("/:id", ctl.Order.GetLine)
				lines.POST("", ctl.Order.CreateLine)
				lines.PUT("/:id", ctl.Order.ReplaceLine)
				lines.DELETE("/:id", ctl.Order.DeleteLine)
			}

			users := admin.Group("/users")
			{
				users.GET("", ctl.AdminUser.List)
				users.GET("/:id", ctl.AdminUser.Get)
				users.POST("", ctl.AdminUser.Create)
				users.PUT("/:id", ctl.AdminUser.Replace)
				users.DELETE("/:id", ctl.AdminUser.Delete)
			}

			admin.GET("/roles", ctl.AdminUser.Roles)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed && origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
