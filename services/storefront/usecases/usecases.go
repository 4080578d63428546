package usecases

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/matheusmosca/storefront/services/storefront/cache"
	"github.com/matheusmosca/storefront/services/storefront/events"
	"github.com/matheusmosca/storefront/services/storefront/models"
)

const instrumentationName = "storefront"

var tracer = otel.Tracer(instrumentationName)

// PaymentGateway é o processador de pagamentos externo
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, req models.PaymentIntentRequest) (*models.PaymentIntent, error)
}

// WebhookVerifier valida a assinatura sobre o corpo bruto e decodifica o evento
type WebhookVerifier interface {
	ConstructEvent(payload []byte, header, secret string) (*models.WebhookEvent, error)
}

func newCounter(name, description string) metric.Int64Counter {
	counter, err := otel.Meter(instrumentationName).Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		otel.Handle(err)
	}
	return counter
}

// publish é best-effort: roda depois do commit e nunca desfaz a operação
func publish(ctx context.Context, publisher events.Publisher, logger *zap.Logger, event events.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn("⚠️ [EVENT] Failed to publish",
			zap.String("type", event.Type),
			zap.Int64("order_id", event.OrderID),
			zap.Error(err),
		)
	}
}

// invalidateProducts descarta do cache os produtos cujo estoque ou dados
// mudaram. Roda depois do commit; falhas do cache só são registradas.
func invalidateProducts(ctx context.Context, productCache cache.ProductCache, logger *zap.Logger, ids ...int64) {
	for _, id := range ids {
		if err := productCache.Invalidate(ctx, id); err != nil {
			logger.Warn("⚠️ [CACHE] Product invalidation failed", zap.Int64("product_id", id), zap.Error(err))
		}
	}
}

func productIDs(items []models.OrderItem) []int64 {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}
