package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/latum0/exonyb-sub001/controllers"
	"github.com/latum0/exonyb-sub001/middleware"
)

type Controllers struct {
	Orders        *controllers.OrderController
	Products      *controllers.ProductController
	Clients       *controllers.ClientController
	Notifications *controllers.NotificationController
	Returns       *controllers.ReturnController
	Audit         *controllers.AuditController
}

func Register(r *gin.Engine, c Controllers) {
	authed := r.Group("/")
	authed.Use(middleware.AuthMiddleware())

	orders := authed.Group("/orders")
	orders.POST("", c.Orders.CreateOrder)
	orders.GET("", c.Orders.GetOrders)
	orders.GET("/:id", c.Orders.GetOrderByID)
	orders.PATCH("/:id", c.Orders.UpdateOrder)
	orders.DELETE("/:id", c.Orders.DeleteOrder)
	orders.PATCH("/:id/total", c.Orders.OverrideTotal)

	products := authed.Group("/products")
	products.POST("", c.Products.CreateProduct)
	products.GET("", c.Products.GetProducts)
	products.GET("/:id", c.Products.GetProductByID)
	products.POST("/:id/restock", c.Products.Restock)

	suppliers := authed.Group("/suppliers")
	suppliers.POST("", c.Products.CreateSupplier)
	suppliers.GET("", c.Products.GetSuppliers)

	clients := authed.Group("/clients")
	clients.POST("", c.Clients.CreateClient)
	clients.GET("", c.Clients.GetClients)
	clients.GET("/:id", c.Clients.GetClientByID)

	returns := authed.Group("/returns")
	returns.POST("", c.Returns.CreateReturn)
	returns.GET("", c.Returns.GetReturns)

	authed.GET("/notifications", c.Notifications.GetNotifications)

	admin := authed.Group("/admin")
	admin.GET("/audit", c.Audit.GetAuditTrail)
}
