package routes

import (
	"shop-backend/controllers"
	"shop-backend/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Controllers struct {
	Auth    *controllers.AuthController
	Cart    *controllers.CartController
	Order   *controllers.OrderController
	Product *controllers.ProductController
}

func SetupRoutes(router *gin.Engine, ctrl Controllers) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	router.POST("/auth/register", ctrl.Auth.Register)
	router.POST("/auth/login", ctrl.Auth.Login)
	router.GET("/products", ctrl.Product.ListProducts)
	router.GET("/products/:id", ctrl.Product.GetProduct)
	router.GET("/products/:id/stock", ctrl.Product.CheckStock)

	// Cart endpoints accept either a JWT or a guest session header.
	cart := router.Group("/cart")
	cart.Use(middleware.IdentityMiddleware())
	{
		cart.POST("", ctrl.Cart.CreateCart)
		cart.GET("", ctrl.Cart.GetCart)
		cart.DELETE("", ctrl.Cart.ClearCart)
		cart.POST("/items", ctrl.Cart.AddItem)
		cart.PATCH("/items/:id", ctrl.Cart.UpdateItem)
		cart.DELETE("/items/:id", ctrl.Cart.RemoveItem)
	}

	auth := router.Group("/")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.POST("/orders", ctrl.Order.CreateOrder)
		auth.GET("/orders", ctrl.Order.ListOrders)
		auth.GET("/orders/:id", ctrl.Order.GetOrder)

		auth.POST("/addresses", ctrl.Auth.CreateAddress)
		auth.GET("/addresses", ctrl.Auth.ListAddresses)
	}

	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("/products", ctrl.Product.CreateProduct)
		admin.PATCH("/products/:id", ctrl.Product.UpdateProduct)
		admin.DELETE("/products/:id", ctrl.Product.DeleteProduct)

		admin.PATCH("/orders/:id/status", ctrl.Order.UpdateOrderStatus)
	}
}
