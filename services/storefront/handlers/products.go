package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/matheusmosca/storefront/services/storefront/usecases"
)

type CreateProductRequest struct {
	Name  string          `json:"name" binding:"required"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

type UpdateProductRequest struct {
	Name  *string          `json:"name"`
	Price *decimal.Decimal `json:"price"`
}

type RestockRequest struct {
	Quantity int `json:"quantity"`
}

// ProductHandler expõe o catálogo e a manutenção de produtos
type ProductHandler struct {
	useCase CatalogUseCaseInterface
	tracer  trace.Tracer
}

// NewProductHandler cria uma nova instância de ProductHandler
func NewProductHandler(useCase CatalogUseCaseInterface, tracer trace.Tracer) *ProductHandler {
	return &ProductHandler{useCase: useCase, tracer: tracer}
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "list_products")
	defer span.End()

	products, err := h.useCase.ListProducts(ctx)
	if err != nil {
		respondError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) ListActiveProducts(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "list_active_products")
	defer span.End()

	products, err := h.useCase.ListActiveProducts(ctx)
	if err != nil {
		respondError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "get_product")
	defer span.End()

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int64("product_id", id))

	product, err := h.useCase.GetProduct(ctx, id)
	if err != nil {
		respondError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "create_product")
	defer span.End()

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.useCase.CreateProduct(ctx, req.Name, req.Price, req.Stock)
	if err != nil {
		respondError(c, span, err)
		return
	}
	span.SetAttributes(attribute.Int64("product_id", product.ID))
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "update_product")
	defer span.End()

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	span.SetAttributes(attribute.Int64("product_id", id))

	product, err := h.useCase.UpdateProduct(ctx, id, usecases.ProductUpdate{Name: req.Name, Price: req.Price})
	if err != nil {
		respondError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) Restock(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "restock_product")
	defer span.End()

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	span.SetAttributes(attribute.Int64("product_id", id), attribute.Int("quantity", req.Quantity))

	product, err := h.useCase.Restock(ctx, id, req.Quantity)
	if err != nil {
		respondError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "delete_product")
	defer span.End()

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int64("product_id", id))

	if err := h.useCase.DeleteProduct(ctx, id); err != nil {
		respondError(c, span, err)
		return
	}
	c.Status(http.StatusNoContent)
}
