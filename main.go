package main

import (
	"log"

	"shop-backend/config"
	"shop-backend/controllers"
	"shop-backend/middleware"
	"shop-backend/repositories"
	"shop-backend/routes"
	"shop-backend/services"

	"github.com/gin-gonic/gin"
)

// @title Shop Backend API
// @version 1.0
// @description Cart and order transaction engine with guest carts, exact
// @description decimal pricing, and all-or-nothing checkout.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {

	config.LoadConfig()

	if config.AppConfig.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	pool := config.ConnectDB()
	defer pool.Close()

	redisClient := config.ConnectRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	store := repositories.NewPgxStore(pool)
	cartRepo := repositories.NewCartRepository()
	productRepo := repositories.NewProductRepository()
	orderRepo := repositories.NewOrderRepository()
	userRepo := repositories.NewUserRepository()

	pricing := services.NewPricingEngine(
		config.AppConfig.TaxRate,
		config.AppConfig.ShippingFee,
		config.AppConfig.FreeShippingThreshold,
	)
	cartCache := services.NewCartCache(redisClient)

	var notifier services.OrderNotifier
	emailSvc, err := services.NewEmailService()
	if err != nil {
		log.Printf("Email disabled: %v", err)
		notifier = services.LogNotifier{}
	} else {
		notifier = emailSvc
	}

	cartSvc := services.NewCartService(
		store, cartRepo, productRepo,
		pricing, services.NoDiscount{}, cartCache,
		config.AppConfig.CartTTL, config.AppConfig.CartMaxItems,
	)
	orderSvc := services.NewOrderService(
		store, orderRepo, productRepo, userRepo, cartRepo,
		pricing, services.NoDiscount{}, cartCache, notifier,
	)
	authSvc := services.NewAuthService(store, userRepo)
	productSvc := services.NewProductService(store, productRepo)

	sweeper := services.NewCartSweeper(store, cartRepo, config.AppConfig.CartSweepInterval)
	sweeper.Start()
	defer sweeper.Stop()

	router := gin.Default()
	router.Use(middleware.CORSMiddleware())
	routes.SetupRoutes(router, routes.Controllers{
		Auth:    controllers.NewAuthController(authSvc, cartSvc),
		Cart:    controllers.NewCartController(cartSvc),
		Order:   controllers.NewOrderController(orderSvc),
		Product: controllers.NewProductController(productSvc),
	})

	port := ":" + config.AppConfig.Port
	log.Printf("Server starting on port %s", port)
	log.Printf("Environment: %s", config.AppConfig.AppEnv)
	log.Printf("Swagger UI: http://localhost:%s/swagger/index.html", config.AppConfig.Port)

	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
