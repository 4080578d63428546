package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthHandler contém os handlers de cadastro e login
type AuthHandler struct {
	useCase AuthUseCaseInterface
	tracer  trace.Tracer
}

// NewAuthHandler cria uma nova instância de AuthHandler
func NewAuthHandler(useCase AuthUseCaseInterface, tracer trace.Tracer) *AuthHandler {
	return &AuthHandler{useCase: useCase, tracer: tracer}
}

func (h *AuthHandler) Register(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "register")
	defer span.End()

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.useCase.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, span, err)
		return
	}

	span.SetAttributes(attribute.Int64("user_id", user.ID))
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (h *AuthHandler) Login(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "login")
	defer span.End()

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, user, err := h.useCase.Login(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, span, err)
		return
	}

	span.SetAttributes(attribute.Int64("user_id", user.ID))
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}
