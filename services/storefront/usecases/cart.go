package usecases

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/matheusmosca/storefront/services/storefront/models"
	"github.com/matheusmosca/storefront/services/storefront/repository"
)

// CartUseCase mantém o carrinho do usuário. O estoque é conferido na
// inclusão mas não reservado; o checkout decide.
type CartUseCase struct {
	store  repository.Store
	logger *zap.Logger
}

func NewCartUseCase(store repository.Store, logger *zap.Logger) *CartUseCase {
	return &CartUseCase{store: store, logger: logger}
}

// GetCart devolve o carrinho, criando um vazio no primeiro acesso
func (uc *CartUseCase) GetCart(ctx context.Context, userID int64) (*models.Cart, error) {
	cart, err := uc.store.Carts().FindByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		cart, err = uc.store.Carts().Create(ctx, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return cart, nil
}

// AddItem inclui o produto ou soma à linha existente
func (uc *CartUseCase) AddItem(ctx context.Context, userID, productID int64, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, &models.ValidationError{Message: "Quantidade deve ser maior que zero"}
	}

	err := uc.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		product, err := repos.Products().FindByID(ctx, productID)
		if errors.Is(err, repository.ErrNotFound) {
			return &models.ProductNotFoundError{ProductID: productID}
		}
		if err != nil {
			return err
		}

		cart, err := repos.Carts().FindByUserID(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			cart, err = repos.Carts().Create(ctx, userID)
		}
		if err != nil {
			return err
		}

		inCart := 0
		for _, item := range cart.Items {
			if item.ProductID == productID {
				inCart = item.Quantity
			}
		}
		if !product.HasStock(inCart + quantity) {
			return &models.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   inCart + quantity,
				Available:   product.Stock,
			}
		}

		_, err = repos.Carts().AddItem(ctx, cart.ID, productID, quantity)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Debug("🛒 [CART] Item added",
		zap.Int64("user_id", userID),
		zap.Int64("product_id", productID),
		zap.Int("quantity", quantity),
	)
	return uc.GetCart(ctx, userID)
}

// RemoveItem remove uma linha do carrinho do próprio usuário
func (uc *CartUseCase) RemoveItem(ctx context.Context, userID, itemID int64) error {
	cart, err := uc.store.Carts().FindByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return &models.CartItemNotFoundError{ItemID: itemID}
	}
	if err != nil {
		return fmt.Errorf("failed to get cart: %w", err)
	}

	removed, err := uc.store.Carts().RemoveItem(ctx, cart.ID, itemID)
	if err != nil {
		return err
	}
	if removed == 0 {
		return &models.CartItemNotFoundError{ItemID: itemID}
	}
	return nil
}
