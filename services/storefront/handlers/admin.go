package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/matheusmosca/storefront/services/storefront/middleware"
	"github.com/matheusmosca/storefront/services/storefront/models"
)

type UpdateOrderStatusRequest struct {
	Status       models.OrderStatus `json:"status" binding:"required"`
	TrackingCode *string            `json:"trackingCode"`
}

type UpdatePaymentStatusRequest struct {
	Status models.PaymentStatus `json:"status" binding:"required"`
}

// AdminHandler contém os handlers do painel administrativo
type AdminHandler struct {
	useCase AdminUseCaseInterface
	tracer  trace.Tracer
}

// NewAdminHandler cria uma nova instância de AdminHandler
func NewAdminHandler(useCase AdminUseCaseInterface, tracer trace.Tracer) *AdminHandler {
	return &AdminHandler{useCase: useCase, tracer: tracer}
}

// ListOrders aceita os filtros status, userId, from, to (RFC3339), skip e take
func (h *AdminHandler) ListOrders(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "admin_list_orders")
	defer span.End()

	filter, err := orderFilterFromQuery(c)
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orders, err := h.useCase.ListOrders(ctx, filter)
	if err != nil {
		respondError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *AdminHandler) GetOrder(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "admin_get_order")
	defer span.End()

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int64("order_id", orderID))

	details, err := h.useCase.GetOrder(ctx, orderID)
	if err != nil {
		respondError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "admin_update_order_status")
	defer span.End()

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	admin, _ := middleware.CurrentUser(c)
	span.SetAttributes(
		attribute.Int64("order_id", orderID),
		attribute.String("status", string(req.Status)),
		attribute.Int64("admin_id", admin.UserID),
	)

	order, err := h.useCase.UpdateOrderStatus(ctx, orderID, req.Status, admin.UserID, req.TrackingCode)
	if err != nil {
		respondError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *AdminHandler) ListPayments(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "admin_list_payments")
	defer span.End()

	var filter models.PaymentFilter
	if status := c.Query("status"); status != "" {
		s := models.PaymentStatus(status)
		filter.Status = &s
	}
	if raw := c.Query("orderId"); raw != "" {
		orderID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderId inválido"})
			return
		}
		filter.OrderID = &orderID
	}
	filter.Skip, _ = strconv.Atoi(c.Query("skip"))
	filter.Take, _ = strconv.Atoi(c.Query("take"))

	payments, err := h.useCase.ListPayments(ctx, filter)
	if err != nil {
		respondError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (h *AdminHandler) GetPayment(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "admin_get_payment")
	defer span.End()

	paymentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int64("payment_id", paymentID))

	payment, err := h.useCase.GetPayment(ctx, paymentID)
	if err != nil {
		respondError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (h *AdminHandler) UpdatePaymentStatus(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "admin_update_payment_status")
	defer span.End()

	paymentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdatePaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	admin, _ := middleware.CurrentUser(c)
	span.SetAttributes(
		attribute.Int64("payment_id", paymentID),
		attribute.String("status", string(req.Status)),
	)

	payment, err := h.useCase.UpdatePaymentStatus(ctx, paymentID, req.Status, admin.UserID)
	if err != nil {
		respondError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func orderFilterFromQuery(c *gin.Context) (models.OrderFilter, error) {
	var filter models.OrderFilter
	if status := c.Query("status"); status != "" {
		s := models.OrderStatus(status)
		if !s.Valid() {
			return filter, &models.ValidationError{Message: "Status inválido: " + status}
		}
		filter.Status = &s
	}
	if raw := c.Query("userId"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, &models.ValidationError{Message: "userId inválido"}
		}
		filter.UserID = &userID
	}
	for key, target := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		raw := c.Query(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, &models.ValidationError{Message: key + " deve estar em RFC3339"}
		}
		*target = &t
	}
	filter.Skip, _ = strconv.Atoi(c.Query("skip"))
	filter.Take, _ = strconv.Atoi(c.Query("take"))
	return filter, nil
}
