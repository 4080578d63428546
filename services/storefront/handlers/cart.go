package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/matheusmosca/storefront/services/storefront/middleware"
)

type AddCartItemRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity"`
}

// CartHandler contém os handlers do carrinho do usuário autenticado
type CartHandler struct {
	useCase CartUseCaseInterface
	tracer  trace.Tracer
}

// NewCartHandler cria uma nova instância de CartHandler
func NewCartHandler(useCase CartUseCaseInterface, tracer trace.Tracer) *CartHandler {
	return &CartHandler{useCase: useCase, tracer: tracer}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "get_cart")
	defer span.End()

	user, _ := middleware.CurrentUser(c)
	span.SetAttributes(attribute.Int64("user_id", user.UserID))

	cart, err := h.useCase.GetCart(ctx, user.UserID)
	if err != nil {
		respondError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "add_cart_item")
	defer span.End()

	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, _ := middleware.CurrentUser(c)
	span.SetAttributes(
		attribute.Int64("user_id", user.UserID),
		attribute.Int64("product_id", req.ProductID),
		attribute.Int("quantity", req.Quantity),
	)

	cart, err := h.useCase.AddItem(ctx, user.UserID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "remove_cart_item")
	defer span.End()

	itemID, ok := parseIDParam(c, "itemId")
	if !ok {
		return
	}
	user, _ := middleware.CurrentUser(c)
	span.SetAttributes(attribute.Int64("user_id", user.UserID), attribute.Int64("item_id", itemID))

	if err := h.useCase.RemoveItem(ctx, user.UserID, itemID); err != nil {
		respondError(c, span, err)
		return
	}
	c.Status(http.StatusNoContent)
}
