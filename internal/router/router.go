package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ikkim/pizza-delivery-backend/config"
	"github.com/ikkim/pizza-delivery-backend/internal/app/controller"
	"github.com/ikkim/pizza-delivery-backend/internal/app/model"
	"github.com/ikkim/pizza-delivery-backend/internal/middleware"
)

type Router struct {
	authController     *controller.AuthController
	pizzaController    *controller.PizzaController
	cartController     *controller.CartController
	orderController    *controller.OrderController
	deliveryController *controller.DeliveryController
	ratingController   *controller.RatingController
	trackingController *controller.TrackingController
	authMiddleware     *middleware.AuthMiddleware
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	pizzaController *controller.PizzaController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	deliveryController *controller.DeliveryController,
	ratingController *controller.RatingController,
	trackingController *controller.TrackingController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		pizzaController:    pizzaController,
		cartController:     cartController,
		orderController:    orderController,
		deliveryController: deliveryController,
		ratingController:   ratingController,
		trackingController: trackingController,
		authMiddleware:     authMiddleware,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Pizza delivery API is running",
		})
	})

	authenticated := r.authMiddleware.Authenticate()
	adminOnly := r.authMiddleware.RequireRole(model.RoleAdmin)
	partnerOnly := r.authMiddleware.RequireRole(model.RoleDeliveryPartner)

	api := router.Group("/api")
	{
		api.POST("/register", r.authController.Register)
		api.POST("/login", r.authController.Login)
		api.POST("/token/refresh", r.authController.Refresh)
		api.POST("/logout", authenticated, r.authController.Logout)
		api.GET("/me", authenticated, r.authController.GetMe)
		api.PATCH("/users/:id", authenticated, adminOnly, r.authController.UpdateUser)

		pizzas := api.Group("/pizzas")
		{
			pizzas.GET("", r.pizzaController.ListPizzas)
			pizzas.GET("/:id", r.pizzaController.GetPizza)
			pizzas.POST("", authenticated, adminOnly, r.pizzaController.CreatePizza)
			pizzas.POST("/image-upload-url", authenticated, adminOnly, r.pizzaController.CreateImageUploadURL)
			pizzas.PATCH("/:id", authenticated, adminOnly, r.pizzaController.UpdatePizza)
			pizzas.DELETE("/:id", authenticated, adminOnly, r.pizzaController.DeletePizza)
		}

		cart := api.Group("/cart")
		cart.Use(authenticated)
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("", r.cartController.AddToCart)
			cart.DELETE("", r.cartController.ClearCart)
		}

		api.POST("/checkout", authenticated, r.orderController.Checkout)

		orders := api.Group("/orders")
		orders.Use(authenticated)
		{
			orders.GET("", r.orderController.ListOrders)
			orders.GET("/:id", r.orderController.GetOrder)
			orders.GET("/:id/qrcode", r.orderController.GetTrackingQRCode)
			orders.PATCH("/:id/payment", adminOnly, r.orderController.UpdatePaymentStatus)
			orders.PATCH("/:id/update-status", partnerOnly, r.deliveryController.UpdateDelivery)
		}

		delivery := api.Group("/delivery")
		delivery.Use(authenticated, partnerOnly)
		{
			delivery.GET("/orders", r.deliveryController.ListAssignedOrders)
			delivery.POST("/:order_id", r.deliveryController.UpdateDelivery)
		}

		comments := api.Group("/delivery-comments")
		comments.Use(authenticated)
		{
			comments.GET("", r.deliveryController.ListComments)
			comments.POST("", partnerOnly, r.deliveryController.AddComment)
		}

		ratings := api.Group("/rate-pizza")
		{
			ratings.GET("", r.ratingController.ListRatings)
			ratings.POST("", authenticated, r.ratingController.CreateRating)
		}

		api.GET("/ws/orders", authenticated, r.trackingController.Connect)
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}

	for _, origin := range allowedOrigins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			return cors.New(cfg)
		}
	}
	if len(allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
		return cors.New(cfg)
	}

	cfg.AllowOrigins = allowedOrigins
	cfg.AllowCredentials = true
	return cors.New(cfg)
}
