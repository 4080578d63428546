package handlers

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/matheusmosca/storefront/services/storefront/middleware"
)

// Router reúne os handlers e o que o roteador precisa para montá-los
type Router struct {
	Service   string
	JWTSecret string
	Logger    *zap.Logger

	Auth     *AuthHandler
	Products *ProductHandler
	Cart     *CartHandler
	Orders   *OrderHandler
	Webhook  *WebhookHandler
	Admin    *AdminHandler

	Users     *UserAdminHandler
	Dashboard *DashboardHandler
}

// Engine monta o gin.Engine com middlewares e rotas
func (r Router) Engine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(otelgin.Middleware(r.Service))
	engine.Use(middleware.LoggerMiddleware(r.Logger))
	engine.Use(middleware.MetricsMiddleware())

	engine.GET("/health", HealthCheck(r.Service))
	engine.GET("/metrics", middleware.PrometheusHandler())

	engine.POST("/auth/register", r.Auth.Register)
	engine.POST("/auth/login", r.Auth.Login)

	engine.GET("/products", r.Products.ListProducts)
	engine.GET("/products/:id", r.Products.GetProduct)

	// assinatura do processador no lugar de JWT
	engine.POST("/webhook", r.Webhook.HandleWebhook)
	engine.POST("/webhook/stripe", r.Webhook.HandleWebhook)

	authed := engine.Group("/", middleware.AuthMiddleware(r.JWTSecret))
	{
		authed.GET("/cart", r.Cart.GetCart)
		authed.POST("/cart", r.Cart.AddItem)
		authed.DELETE("/cart/:itemId", r.Cart.RemoveItem)
		authed.POST("/cart/checkout", r.Orders.CheckoutCart)

		authed.POST("/orders", r.Orders.CreateOrder)
		authed.GET("/orders", r.Orders.ListOrders)
		authed.GET("/orders/:id", r.Orders.GetOrder)
		authed.POST("/orders/stripe", r.Orders.CreatePaymentIntent)
	}

	admin := engine.Group("/admin", middleware.AuthMiddleware(r.JWTSecret), middleware.AdminOnly())
	{
		admin.GET("/orders", r.Admin.ListOrders)
		admin.GET("/orders/:id", r.Admin.GetOrder)
		admin.PATCH("/orders/:id/status", r.Admin.UpdateOrderStatus)
		admin.GET("/payments", r.Admin.ListPayments)
		admin.GET("/payments/:id", r.Admin.GetPayment)
		admin.PATCH("/payments/:id/status", r.Admin.UpdatePaymentStatus)
		admin.GET("/products", r.Products.ListProducts)
		admin.GET("/products/active", r.Products.ListActiveProducts)
		admin.POST("/products", r.Products.CreateProduct)
		admin.PATCH("/products/:id", r.Products.UpdateProduct)
		admin.DELETE("/products/:id", r.Products.DeleteProduct)
		admin.POST("/products/:id/restock", r.Products.Restock)

		admin.GET("/users", r.Users.ListUsers)
		admin.GET("/users/:id", r.Users.GetUser)
		admin.PATCH("/users/:id", r.Users.UpdateUser)
		admin.DELETE("/users/:id", r.Users.DeleteUser)

		admin.GET("/dashboard", r.Dashboard.GetDashboard)
	}

	return engine
}
