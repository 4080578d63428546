package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type DashboardHandler struct {
	useCase DashboardUseCaseInterface
	tracer  trace.Tracer
}

func NewDashboardHandler(useCase DashboardUseCaseInterface, tracer trace.Tracer) *DashboardHandler {
	return &DashboardHandler{useCase: useCase, tracer: tracer}
}

func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "admin_dashboard")
	defer span.End()

	dashboard, err := h.useCase.GetDashboard(ctx)
	if err != nil {
		respondError(c, span, err)
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
