package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/matheusmosca/storefront/services/storefront/middleware"
	"github.com/matheusmosca/storefront/services/storefront/models"
)

type CheckoutRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

type CreateOrderRequest struct {
	Items         []models.LineItem `json:"items"`
	PaymentMethod string            `json:"paymentMethod"`
}

// PaymentIntentRequest aceita orderId como número ou string numérica
type PaymentIntentRequest struct {
	OrderID json.Number `json:"orderId" binding:"required"`
}

// OrderHandler contém os handlers de checkout, pedidos e pagamento
type OrderHandler struct {
	checkout CheckoutUseCaseInterface
	intents  PaymentIntentUseCaseInterface
	tracer   trace.Tracer
}

// NewOrderHandler cria uma nova instância de OrderHandler
func NewOrderHandler(checkout CheckoutUseCaseInterface, intents PaymentIntentUseCaseInterface, tracer trace.Tracer) *OrderHandler {
	return &OrderHandler{checkout: checkout, intents: intents, tracer: tracer}
}

// CheckoutCart converte o carrinho do usuário em pedido. O corpo é opcional.
func (h *OrderHandler) CheckoutCart(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "checkout_cart")
	defer span.End()

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, _ := middleware.CurrentUser(c)
	span.SetAttributes(attribute.Int64("user_id", user.UserID))

	order, err := h.checkout.CheckoutCart(ctx, user.UserID, req.PaymentMethod)
	if err != nil {
		respondError(c, span, err)
		return
	}

	span.SetAttributes(attribute.Int64("order_id", order.ID))
	c.JSON(http.StatusCreated, gin.H{
		"message": "Checkout concluído",
		"order":   order,
	})
}

// CreateOrder cria um pedido com itens explícitos, sem passar pelo carrinho
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "create_order")
	defer span.End()

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, _ := middleware.CurrentUser(c)
	span.SetAttributes(
		attribute.Int64("user_id", user.UserID),
		attribute.Int("items", len(req.Items)),
	)

	order, err := h.checkout.CreateOrderDirect(ctx, user.UserID, req.Items, req.PaymentMethod)
	if err != nil {
		respondError(c, span, err)
		return
	}

	span.SetAttributes(attribute.Int64("order_id", order.ID))
	c.JSON(http.StatusCreated, gin.H{
		"message": "Pedido criado",
		"order":   order,
	})
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "list_orders")
	defer span.End()

	user, _ := middleware.CurrentUser(c)
	span.SetAttributes(attribute.Int64("user_id", user.UserID))

	orders, err := h.checkout.GetUserOrders(ctx, user.UserID)
	if err != nil {
		respondError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "get_order")
	defer span.End()

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user, _ := middleware.CurrentUser(c)
	span.SetAttributes(attribute.Int64("user_id", user.UserID), attribute.Int64("order_id", orderID))

	order, err := h.checkout.GetOrderByID(ctx, user.UserID, orderID)
	if err != nil {
		respondError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// CreatePaymentIntent devolve o client secret para o front concluir o pagamento
func (h *OrderHandler) CreatePaymentIntent(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "create_payment_intent")
	defer span.End()

	var req PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "orderId inválido"})
		return
	}
	orderID, err := req.OrderID.Int64()
	if err != nil || orderID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "orderId inválido"})
		return
	}

	user, _ := middleware.CurrentUser(c)
	span.SetAttributes(attribute.Int64("user_id", user.UserID), attribute.Int64("order_id", orderID))

	intent, err := h.intents.CreatePaymentIntent(ctx, user.UserID, orderID)
	if err != nil {
		respondError(c, span, err)
		return
	}

	span.SetAttributes(attribute.String("intent_id", intent.ID))
	c.JSON(http.StatusOK, intent)
}
