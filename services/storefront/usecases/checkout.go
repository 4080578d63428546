package usecases

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/matheusmosca/storefront/services/storefront/cache"
	"github.com/matheusmosca/storefront/services/storefront/events"
	"github.com/matheusmosca/storefront/services/storefront/models"
	"github.com/matheusmosca/storefront/services/storefront/repository"
)

// CheckoutMode define a origem dos itens do pedido
type CheckoutMode int

const (
	// CheckoutFromCart usa o carrinho persistido e o esvazia no final
	CheckoutFromCart CheckoutMode = iota
	// CheckoutDirect usa uma lista explícita e não toca no carrinho
	CheckoutDirect
)

func (m CheckoutMode) String() string {
	if m == CheckoutDirect {
		return "direct"
	}
	return "cart"
}

// CheckoutRequest descreve uma tentativa de checkout
type CheckoutRequest struct {
	Mode          CheckoutMode
	UserID        int64
	Items         []models.LineItem
	PaymentMethod string
}

// CheckoutUseCase transforma um carrinho ou lista de itens em pedido,
// pagamento pendente e baixa de estoque numa única transação.
type CheckoutUseCase struct {
	store     repository.Store
	cache     cache.ProductCache
	publisher events.Publisher
	logger    *zap.Logger

	checkoutCounter metric.Int64Counter
}

// NewCheckoutUseCase cria uma nova instância de CheckoutUseCase
func NewCheckoutUseCase(store repository.Store, productCache cache.ProductCache, publisher events.Publisher, logger *zap.Logger) *CheckoutUseCase {
	return &CheckoutUseCase{
		store:           store,
		cache:           productCache,
		publisher:       publisher,
		logger:          logger,
		checkoutCounter: newCounter("storefront.checkouts", "Checkout attempts by mode and result"),
	}
}

// CheckoutCart fecha o pedido a partir do carrinho do usuário
func (uc *CheckoutUseCase) CheckoutCart(ctx context.Context, userID int64, paymentMethod string) (*models.Order, error) {
	return uc.Checkout(ctx, CheckoutRequest{Mode: CheckoutFromCart, UserID: userID, PaymentMethod: paymentMethod})
}

// CreateOrderDirect cria o pedido a partir de uma lista explícita de itens
func (uc *CheckoutUseCase) CreateOrderDirect(ctx context.Context, userID int64, items []models.LineItem, paymentMethod string) (*models.Order, error) {
	return uc.Checkout(ctx, CheckoutRequest{Mode: CheckoutDirect, UserID: userID, Items: items, PaymentMethod: paymentMethod})
}

// Checkout executa os dois modos pelo mesmo caminho transacional
func (uc *CheckoutUseCase) Checkout(ctx context.Context, req CheckoutRequest) (*models.Order, error) {
	ctx, span := tracer.Start(ctx, "checkout")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("user_id", req.UserID),
		attribute.String("checkout.mode", req.Mode.String()),
	)

	uc.logger.Info("➡️ [CHECKOUT] Starting",
		zap.Int64("user_id", req.UserID),
		zap.String("mode", req.Mode.String()),
	)

	if req.Mode == CheckoutDirect {
		if err := validateLineItems(req.Items); err != nil {
			uc.recordResult(ctx, req.Mode, "rejected")
			return nil, err
		}
	}

	var order *models.Order
	err := uc.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		order, err = uc.checkoutInTx(ctx, repos, req)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		uc.recordResult(ctx, req.Mode, "rejected")

		var stockErr *models.InsufficientStockError
		if errors.As(err, &stockErr) {
			uc.logger.Info("❌ [CHECKOUT] Insufficient stock",
				zap.Int64("user_id", req.UserID),
				zap.Int64("product_id", stockErr.ProductID),
				zap.Int("requested", stockErr.Requested),
				zap.Int("available", stockErr.Available),
			)
		} else if models.KindOf(err) == models.KindInternal {
			uc.logger.Error("❌ [CHECKOUT] FAILED", zap.Int64("user_id", req.UserID), zap.Error(err))
		}
		return nil, err
	}

	span.SetAttributes(attribute.Int64("order_id", order.ID))
	invalidateProducts(ctx, uc.cache, uc.logger, productIDs(order.Items)...)
	uc.recordResult(ctx, req.Mode, "created")
	uc.logger.Info("✅ [CHECKOUT] Order created",
		zap.Int64("user_id", req.UserID),
		zap.Int64("order_id", order.ID),
		zap.String("total", order.Total.StringFixed(2)),
	)

	publish(ctx, uc.publisher, uc.logger, events.Event{
		Type:    events.TypeOrderCreated,
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  string(order.Status),
		Total:   order.Total.StringFixed(2),
	})
	return order, nil
}

func (uc *CheckoutUseCase) checkoutInTx(ctx context.Context, repos repository.Repositories, req CheckoutRequest) (*models.Order, error) {
	// 1. Carrega as linhas do pedido
	lines := req.Items
	var cart *models.Cart
	if req.Mode == CheckoutFromCart {
		var err error
		cart, err = repos.Carts().FindByUserID(ctx, req.UserID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.EmptyCartError{}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load cart: %w", err)
		}
		if cart.IsEmpty() {
			return nil, models.EmptyCartError{}
		}
		lines = make([]models.LineItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			lines = append(lines, models.LineItem{ProductID: item.ProductID, Quantity: item.Quantity})
		}
	}
	lines = models.MergeLineItems(lines)

	// 2. Valida estoque e congela o preço atual de cada produto
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		product, err := repos.Products().FindByID(ctx, line.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &models.ProductNotFoundError{ProductID: line.ProductID}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load product %d: %w", line.ProductID, err)
		}
		if !product.HasStock(line.Quantity) {
			return nil, &models.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   line.Quantity,
				Available:   product.Stock,
			}
		}
		items = append(items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
			Price:       product.Price,
		})
	}

	// 3. Cria o pedido com o total calculado no servidor
	order := models.NewOrder(req.UserID, items)
	if err := repos.Orders().Create(ctx, order); err != nil {
		return nil, err
	}

	// 4. Baixa condicional do estoque, sempre na mesma ordem de produtos
	byProduct := make([]models.OrderItem, len(order.Items))
	copy(byProduct, order.Items)
	sort.Slice(byProduct, func(i, j int) bool { return byProduct[i].ProductID < byProduct[j].ProductID })

	for _, item := range byProduct {
		affected, err := repos.Products().DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			available := 0
			if current, err := repos.Products().FindByID(ctx, item.ProductID); err == nil {
				available = current.Stock
			}
			return nil, &models.InsufficientStockError{
				ProductID:   item.ProductID,
				ProductName: item.ProductName,
				Requested:   item.Quantity,
				Available:   available,
			}
		}
	}

	// 5. Pagamento pendente com o mesmo total
	payment := models.NewPayment(order.ID, req.UserID, req.PaymentMethod, order.Total)
	if err := repos.Payments().Create(ctx, payment); err != nil {
		return nil, err
	}
	order.Payments = []models.Payment{*payment}

	// 6. Esvazia o carrinho; o próximo acesso cria um novo. O DELETE espera
	// o lock de um checkout concorrente do mesmo carrinho: se ele confirmou
	// primeiro, nada é removido e este pedido é desfeito.
	if cart != nil {
		if err := repos.Carts().ClearItems(ctx, cart.ID); err != nil {
			return nil, err
		}
		removed, err := repos.Carts().Delete(ctx, cart.ID)
		if err != nil {
			return nil, err
		}
		if removed == 0 {
			return nil, models.EmptyCartError{}
		}
	}

	return order, nil
}

func validateLineItems(items []models.LineItem) error {
	if len(items) == 0 {
		return &models.ValidationError{Message: "Pedido precisa ter ao menos 1 item"}
	}
	for _, item := range items {
		if item.ProductID <= 0 {
			return &models.ValidationError{Message: "productId inválido"}
		}
		if item.Quantity <= 0 {
			return &models.ValidationError{Message: "Quantidade deve ser maior que zero"}
		}
	}
	return nil
}

func (uc *CheckoutUseCase) recordResult(ctx context.Context, mode CheckoutMode, result string) {
	uc.checkoutCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode.String()),
		attribute.String("result", result),
	))
}

// GetUserOrders lista os pedidos do usuário
func (uc *CheckoutUseCase) GetUserOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	orders, err := uc.store.Orders().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// GetOrderByID busca o pedido e confere o dono por valor, distinguindo
// pedido inexistente de pedido de outro usuário
func (uc *CheckoutUseCase) GetOrderByID(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	order, err := uc.store.Orders().FindByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &models.OrderNotFoundError{OrderID: orderID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if !order.BelongsTo(userID) {
		uc.logger.Warn("🚫 [ORDER] Access denied",
			zap.Int64("user_id", userID),
			zap.Int64("order_id", orderID),
		)
		return nil, models.AccessDeniedError{}
	}

	payments, err := uc.store.Payments().ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	order.Payments = payments
	return order, nil
}
