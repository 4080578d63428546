package usecases

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/matheusmosca/storefront/services/storefront/models"
	"github.com/matheusmosca/storefront/services/storefront/repository"
)

// PaymentIntentUseCase pede ao processador um handle de pagamento para o pedido.
// Não altera pedido nem pagamento: a liquidação só acontece pelo webhook.
type PaymentIntentUseCase struct {
	orders   repository.OrderRepository
	gateway  PaymentGateway
	currency string
	logger   *zap.Logger

	intentCounter metric.Int64Counter
}

// NewPaymentIntentUseCase cria uma nova instância de PaymentIntentUseCase
func NewPaymentIntentUseCase(orders repository.OrderRepository, gateway PaymentGateway, currency string, logger *zap.Logger) *PaymentIntentUseCase {
	return &PaymentIntentUseCase{
		orders:        orders,
		gateway:       gateway,
		currency:      currency,
		logger:        logger,
		intentCounter: newCounter("storefront.payment_intents", "Payment intents requested by result"),
	}
}

// CreatePaymentIntent cria o intent com o total do pedido em centavos
func (uc *PaymentIntentUseCase) CreatePaymentIntent(ctx context.Context, userID, orderID int64) (*models.PaymentIntent, error) {
	ctx, span := tracer.Start(ctx, "create_payment_intent")
	defer span.End()
	span.SetAttributes(attribute.Int64("user_id", userID), attribute.Int64("order_id", orderID))

	order, err := uc.orders.FindByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &models.OrderNotFoundError{OrderID: orderID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if !order.BelongsTo(userID) {
		return nil, models.AccessDeniedError{}
	}
	if order.Status != models.OrderStatusPending {
		return nil, &models.InvalidOrderStateError{OrderID: order.ID, Status: order.Status}
	}

	amount := models.ToMinorUnits(order.Total)
	intent, err := uc.gateway.CreatePaymentIntent(ctx, models.PaymentIntentRequest{
		AmountMinor: amount,
		Currency:    uc.currency,
		Metadata: map[string]string{
			models.OrderIDMetadataKey: strconv.FormatInt(order.ID, 10),
		},
	})
	if err != nil {
		span.RecordError(err)
		uc.intentCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "failed")))
		uc.logger.Error("❌ [PAYMENT INTENT] FAILED",
			zap.Int64("order_id", order.ID),
			zap.Int64("amount", amount),
			zap.Error(err),
		)
		var gwErr *models.GatewayError
		if !errors.As(err, &gwErr) {
			err = &models.GatewayError{Op: "create payment intent", Err: err}
		}
		return nil, err
	}

	uc.intentCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("result", "created")))
	uc.logger.Info("💳 [PAYMENT INTENT] Created",
		zap.Int64("order_id", order.ID),
		zap.Int64("amount", amount),
		zap.String("intent_id", intent.ID),
	)
	return intent, nil
}
