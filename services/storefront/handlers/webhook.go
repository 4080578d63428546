package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/matheusmosca/storefront/services/storefront/gateway"
	"github.com/matheusmosca/storefront/services/storefront/middleware"
	"github.com/matheusmosca/storefront/services/storefront/models"
	"github.com/matheusmosca/storefront/services/storefront/usecases"
)

// WebhookHandler recebe os callbacks do processador de pagamentos.
// 200 significa "não reenvie"; 500 pede nova tentativa.
type WebhookHandler struct {
	useCase WebhookUseCaseInterface
	tracer  trace.Tracer
	logger  *zap.Logger
}

// NewWebhookHandler cria uma nova instância de WebhookHandler
func NewWebhookHandler(useCase WebhookUseCaseInterface, tracer trace.Tracer, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{useCase: useCase, tracer: tracer, logger: logger}
}

func (h *WebhookHandler) HandleWebhook(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "payment_webhook")
	defer span.End()

	// a assinatura cobre os bytes exatos do corpo
	payload, err := c.GetRawData()
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Webhook Error: unreadable body"})
		return
	}

	result, err := h.useCase.Process(ctx, payload, c.GetHeader(gateway.SignatureHeader))
	if err != nil {
		span.RecordError(err)
		middleware.RecordWebhookOutcome(webhookErrorOutcome(err))
		switch models.KindOf(err) {
		case models.KindValidation:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case models.KindConfiguration:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			h.logger.Error("❌ [WEBHOOK] Processing FAILED, asking for redelivery", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
		}
		return
	}

	span.SetAttributes(
		attribute.String("event_id", result.EventID),
		attribute.String("outcome", string(result.Outcome)),
	)
	middleware.RecordWebhookOutcome(string(result.Outcome))

	switch result.Outcome {
	case usecases.WebhookDuplicate:
		c.JSON(http.StatusOK, gin.H{"received": true, "duplicate": true})
	case usecases.WebhookOrderNotFound:
		c.JSON(http.StatusOK, gin.H{"received": true, "message": "Pedido não encontrado"})
	default:
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

// webhookErrorOutcome nomeia a falha com os mesmos rótulos dos resultados de sucesso
func webhookErrorOutcome(err error) string {
	var (
		sigErr  *models.SignatureError
		metaErr *models.InvalidMetadataError
	)
	switch {
	case errors.As(err, &sigErr):
		return "rejected"
	case errors.As(err, &metaErr):
		return "invalid_metadata"
	case models.KindOf(err) == models.KindConfiguration:
		return "misconfigured"
	default:
		return "error"
	}
}
