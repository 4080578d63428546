package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"

	"github.com/matheusmosca/storefront/services/storefront/models"
	"github.com/matheusmosca/storefront/services/storefront/usecases"
)

// AuthUseCaseInterface define a interface para o use case de autenticação
type AuthUseCaseInterface interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
}

// CatalogUseCaseInterface define a interface para o use case de catálogo
type CatalogUseCaseInterface interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListActiveProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	CreateProduct(ctx context.Context, name string, price decimal.Decimal, stock int) (*models.Product, error)
	UpdateProduct(ctx context.Context, id int64, update usecases.ProductUpdate) (*models.Product, error)
	Restock(ctx context.Context, id int64, quantity int) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

// CartUseCaseInterface define a interface para o use case de carrinho
type CartUseCaseInterface interface {
	GetCart(ctx context.Context, userID int64) (*models.Cart, error)
	AddItem(ctx context.Context, userID, productID int64, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID int64) error
}

// CheckoutUseCaseInterface define a interface para o use case de checkout e pedidos
type CheckoutUseCaseInterface interface {
	CheckoutCart(ctx context.Context, userID int64, paymentMethod string) (*models.Order, error)
	CreateOrderDirect(ctx context.Context, userID int64, items []models.LineItem, paymentMethod string) (*models.Order, error)
	GetUserOrders(ctx context.Context, userID int64) ([]models.Order, error)
	GetOrderByID(ctx context.Context, userID, orderID int64) (*models.Order, error)
}

// PaymentIntentUseCaseInterface define a interface para a criação de payment intents
type PaymentIntentUseCaseInterface interface {
	CreatePaymentIntent(ctx context.Context, userID, orderID int64) (*models.PaymentIntent, error)
}

// WebhookUseCaseInterface define a interface para o processamento de webhooks
type WebhookUseCaseInterface interface {
	Process(ctx context.Context, payload []byte, signature string) (*usecases.WebhookResult, error)
}

// AdminUseCaseInterface define a interface para o use case administrativo
type AdminUseCaseInterface interface {
	ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*usecases.OrderDetails, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, next models.OrderStatus, adminID int64, trackingCode *string) (*models.Order, error)
	ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error)
	GetPayment(ctx context.Context, paymentID int64) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, paymentID int64, status models.PaymentStatus, adminID int64) (*models.Payment, error)
}

// UserAdminUseCaseInterface define a interface para a gestão de usuários
type UserAdminUseCaseInterface interface {
	ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	GetUser(ctx context.Context, userID int64) (*usecases.UserDetails, error)
	UpdateUser(ctx context.Context, userID int64, update usecases.UserUpdate, adminID int64) (*models.User, error)
	DeleteUser(ctx context.Context, userID int64, confirmName string, adminID int64) error
}

// DashboardUseCaseInterface define a interface para o painel de vendas
type DashboardUseCaseInterface interface {
	GetDashboard(ctx context.Context) (*models.Dashboard, error)
}

const internalErrorMessage = "Erro interno"

// statusFor traduz o tipo do erro de domínio para o status HTTP
func statusFor(err error) int {
	switch models.KindOf(err) {
	case models.KindValidation, models.KindConflict:
		return http.StatusBadRequest
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindAccessDenied:
		return http.StatusForbidden
	case models.KindUnauthenticated:
		return http.StatusUnauthorized
	case models.KindDuplicate:
		return http.StatusConflict
	case models.KindExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError escreve {"error": ...}. Erros internos não vazam detalhes
// para o cliente; ficam em c.Errors para o log de acesso.
func respondError(c *gin.Context, span trace.Span, err error) {
	span.RecordError(err)

	status := statusFor(err)
	message := err.Error()
	switch models.KindOf(err) {
	case models.KindInternal:
		_ = c.Error(err)
		message = internalErrorMessage
	case models.KindExternal:
		_ = c.Error(err)
		var gwErr *models.GatewayError
		if errors.As(err, &gwErr) {
			message = gwErr.PublicMessage()
		}
	}
	c.JSON(status, gin.H{"error": message})
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return 0, false
	}
	return id, true
}

// HealthCheck verifica a saúde do serviço
func HealthCheck(service string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": service,
		})
	}
}
