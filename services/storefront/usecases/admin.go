package usecases

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/matheusmosca/storefront/services/storefront/cache"
	"github.com/matheusmosca/storefront/services/storefront/events"
	"github.com/matheusmosca/storefront/services/storefront/models"
	"github.com/matheusmosca/storefront/services/storefront/repository"
)

const defaultPageSize = 50

// OrderDetails é a visão administrativa completa de um pedido
type OrderDetails struct {
	*models.Order
	History []models.OrderStatusHistory `json:"history"`
}

// AdminUseCase concentra as operações administrativas sobre pedidos e pagamentos
type AdminUseCase struct {
	store     repository.Store
	cache     cache.ProductCache
	publisher events.Publisher
	logger    *zap.Logger
}

// NewAdminUseCase cria uma nova instância de AdminUseCase
func NewAdminUseCase(store repository.Store, productCache cache.ProductCache, publisher events.Publisher, logger *zap.Logger) *AdminUseCase {
	return &AdminUseCase{store: store, cache: productCache, publisher: publisher, logger: logger}
}

func (uc *AdminUseCase) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	if filter.Take <= 0 {
		filter.Take = defaultPageSize
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}
	orders, err := uc.store.Orders().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (uc *AdminUseCase) GetOrder(ctx context.Context, orderID int64) (*OrderDetails, error) {
	order, err := uc.store.Orders().FindByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &models.OrderNotFoundError{OrderID: orderID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order.Payments, err = uc.store.Payments().ListByOrder(ctx, orderID); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	history, err := uc.store.Orders().StatusHistory(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderDetails{Order: order, History: history}, nil
}

// UpdateOrderStatus aplica uma transição administrativa com auditoria.
// Cancelamento e falha devolvem o estoque; reembolso estorna os pagamentos pagos.
func (uc *AdminUseCase) UpdateOrderStatus(ctx context.Context, orderID int64, next models.OrderStatus, adminID int64, trackingCode *string) (*models.Order, error) {
	if !next.Valid() {
		return nil, &models.ValidationError{Message: fmt.Sprintf("Status inválido: %s", next)}
	}
	if trackingCode != nil && next != models.OrderStatusShipped {
		return nil, &models.ValidationError{Message: "Código de rastreio só pode ser informado no envio"}
	}

	var order *models.Order
	err := uc.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		order, err = repos.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repository.ErrNotFound) {
			return &models.OrderNotFoundError{OrderID: orderID}
		}
		if err != nil {
			return err
		}

		current := order.Status
		if !current.CanTransitionTo(next) {
			return &models.InvalidTransitionError{From: current, To: next}
		}

		moved, err := repos.Orders().UpdateStatusIf(ctx, orderID, current, next, trackingCode)
		if err != nil {
			return err
		}
		if !moved {
			// outro processo mudou o status entre a leitura e a escrita
			return &models.InvalidTransitionError{From: current, To: next}
		}

		changedBy := adminID
		if err := repos.Orders().AppendStatusHistory(ctx, &models.OrderStatusHistory{
			OrderID:   orderID,
			Status:    next,
			ChangedBy: &changedBy,
		}); err != nil {
			return err
		}

		switch next {
		case models.OrderStatusCancelled, models.OrderStatusFailed:
			for _, item := range order.Items {
				if _, err := repos.Products().IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
			paymentStatus := models.PaymentStatusCancelled
			if next == models.OrderStatusFailed {
				paymentStatus = models.PaymentStatusFailed
			}
			if _, err := repos.Payments().TransitionByOrder(ctx, orderID, models.PaymentStatusPending, paymentStatus, nil); err != nil {
				return err
			}
		case models.OrderStatusRefunded:
			if _, err := repos.Payments().TransitionByOrder(ctx, orderID, models.PaymentStatusPaid, models.PaymentStatusRefunded, nil); err != nil {
				return err
			}
		}

		order.Status = next
		if trackingCode != nil {
			order.TrackingCode = trackingCode
		}
		return nil
	})
	if err != nil {
		if models.KindOf(err) == models.KindInternal {
			uc.logger.Error("❌ [ADMIN] Status update FAILED", zap.Int64("order_id", orderID), zap.Error(err))
		}
		return nil, err
	}

	uc.logger.Info("✅ [ADMIN] Order status changed",
		zap.Int64("order_id", orderID),
		zap.String("status", string(next)),
		zap.Int64("admin_id", adminID),
	)
	if next == models.OrderStatusCancelled || next == models.OrderStatusFailed {
		invalidateProducts(ctx, uc.cache, uc.logger, productIDs(order.Items)...)
	}
	publish(ctx, uc.publisher, uc.logger, events.Event{
		Type:    events.TypeOrderStatusChanged,
		OrderID: orderID,
		UserID:  order.UserID,
		Status:  string(next),
	})
	return order, nil
}

func (uc *AdminUseCase) ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error) {
	if filter.Take <= 0 {
		filter.Take = defaultPageSize
	}
	payments, err := uc.store.Payments().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	if payments == nil {
		payments = []models.Payment{}
	}
	return payments, nil
}

func (uc *AdminUseCase) GetPayment(ctx context.Context, paymentID int64) (*models.Payment, error) {
	payment, err := uc.store.Payments().FindByID(ctx, paymentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &models.PaymentNotFoundError{PaymentID: paymentID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

// UpdatePaymentStatus é um ajuste manual; não altera o pedido
func (uc *AdminUseCase) UpdatePaymentStatus(ctx context.Context, paymentID int64, status models.PaymentStatus, adminID int64) (*models.Payment, error) {
	if !status.Valid() {
		return nil, &models.ValidationError{Message: fmt.Sprintf("Status inválido: %s", status)}
	}

	updated, err := uc.store.Payments().UpdateStatus(ctx, paymentID, status)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, &models.PaymentNotFoundError{PaymentID: paymentID}
	}

	uc.logger.Info("✅ [ADMIN] Payment status changed",
		zap.Int64("payment_id", paymentID),
		zap.String("status", string(status)),
		zap.Int64("admin_id", adminID),
	)
	return uc.GetPayment(ctx, paymentID)
}
