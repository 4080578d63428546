package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/matheusmosca/storefront/services/storefront/middleware"
	"github.com/matheusmosca/storefront/services/storefront/models"
	"github.com/matheusmosca/storefront/services/storefront/usecases"
)

type UpdateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

type DeleteUserRequest struct {
	ConfirmName string `json:"confirmName" binding:"required"`
}

// UserAdminHandler contém os handlers de gestão de usuários
type UserAdminHandler struct {
	useCase UserAdminUseCaseInterface
	tracer  trace.Tracer
}

// NewUserAdminHandler cria uma nova instância de UserAdminHandler
func NewUserAdminHandler(useCase UserAdminUseCaseInterface, tracer trace.Tracer) *UserAdminHandler {
	return &UserAdminHandler{useCase: useCase, tracer: tracer}
}

// ListUsers aceita os filtros role, email, name, skip e take
func (h *UserAdminHandler) ListUsers(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "admin_list_users")
	defer span.End()

	filter := models.UserFilter{
		Email: c.Query("email"),
		Name:  c.Query("name"),
	}
	if role := c.Query("role"); role != "" {
		filter.Role = &role
	}
	filter.Skip, _ = strconv.Atoi(c.Query("skip"))
	filter.Take, _ = strconv.Atoi(c.Query("take"))

	users, err := h.useCase.ListUsers(ctx, filter)
	if err != nil {
		respondError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *UserAdminHandler) GetUser(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "admin_get_user")
	defer span.End()

	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int64("user_id", userID))

	details, err := h.useCase.GetUser(ctx, userID)
	if err != nil {
		respondError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *UserAdminHandler) UpdateUser(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "admin_update_user")
	defer span.End()

	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	admin, _ := middleware.CurrentUser(c)
	span.SetAttributes(attribute.Int64("user_id", userID), attribute.Int64("admin_id", admin.UserID))

	user, err := h.useCase.UpdateUser(ctx, userID, usecases.UserUpdate{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	}, admin.UserID)
	if err != nil {
		respondError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser exige {"confirmName": <nome do usuário>} no corpo
func (h *UserAdminHandler) DeleteUser(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "admin_delete_user")
	defer span.End()

	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req DeleteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "confirmName é obrigatório"})
		return
	}

	admin, _ := middleware.CurrentUser(c)
	span.SetAttributes(attribute.Int64("user_id", userID), attribute.Int64("admin_id", admin.UserID))

	if err := h.useCase.DeleteUser(ctx, userID, req.ConfirmName, admin.UserID); err != nil {
		respondError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Usuário e entidades relacionadas excluídos com sucesso"})
}
