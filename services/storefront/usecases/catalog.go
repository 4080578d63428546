package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/matheusmosca/storefront/services/storefront/cache"
	"github.com/matheusmosca/storefront/services/storefront/models"
	"github.com/matheusmosca/storefront/services/storefront/repository"
)

// CatalogUseCase lê e mantém produtos. Leituras por ID passam pelo cache;
// falhas do cache são registradas e ignoradas.
type CatalogUseCase struct {
	products repository.ProductRepository
	cache    cache.ProductCache
	logger   *zap.Logger
}

func NewCatalogUseCase(products repository.ProductRepository, productCache cache.ProductCache, logger *zap.Logger) *CatalogUseCase {
	return &CatalogUseCase{products: products, cache: productCache, logger: logger}
}

// ProductUpdate traz os campos opcionais de uma alteração de produto
type ProductUpdate struct {
	Name  *string
	Price *decimal.Decimal
}

func (uc *CatalogUseCase) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := uc.products.List(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// ListActiveProducts devolve só os produtos com estoque
func (uc *CatalogUseCase) ListActiveProducts(ctx context.Context) ([]models.Product, error) {
	products, err := uc.products.ListInStock(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

func (uc *CatalogUseCase) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	cached, err := uc.cache.Get(ctx, id)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		uc.logger.Warn("⚠️ [CATALOG] Cache read failed", zap.Int64("product_id", id), zap.Error(err))
	}

	product, err := uc.products.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &models.ProductNotFoundError{ProductID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if err := uc.cache.Set(ctx, product); err != nil {
		uc.logger.Warn("⚠️ [CATALOG] Cache write failed", zap.Int64("product_id", id), zap.Error(err))
	}
	return product, nil
}

// CreateProduct cadastra um produto (uso administrativo)
func (uc *CatalogUseCase) CreateProduct(ctx context.Context, name string, price decimal.Decimal, stock int) (*models.Product, error) {
	if err := validateProduct(name, price); err != nil {
		return nil, err
	}
	if stock < 0 {
		return nil, &models.ValidationError{Message: "Estoque não pode ser negativo"}
	}

	product := models.NewProduct(name, price, stock)
	if err := uc.products.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	uc.logger.Info("✅ [CATALOG] Product created", zap.Int64("product_id", product.ID))
	return product, nil
}

// UpdateProduct altera nome e preço. Pedidos já criados mantêm o preço congelado.
func (uc *CatalogUseCase) UpdateProduct(ctx context.Context, id int64, update ProductUpdate) (*models.Product, error) {
	product, err := uc.products.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &models.ProductNotFoundError{ProductID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if update.Name != nil {
		product.Name = *update.Name
	}
	if update.Price != nil {
		product.Price = *update.Price
	}
	if err := validateProduct(product.Name, product.Price); err != nil {
		return nil, err
	}

	if err := uc.products.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	uc.invalidate(ctx, id)
	return product, nil
}

// Restock soma unidades ao estoque com o incremento atômico
func (uc *CatalogUseCase) Restock(ctx context.Context, id int64, quantity int) (*models.Product, error) {
	if quantity <= 0 {
		return nil, &models.ValidationError{Message: "Quantidade deve ser maior que zero"}
	}

	affected, err := uc.products.IncrementStock(ctx, id, quantity)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, &models.ProductNotFoundError{ProductID: id}
	}
	uc.invalidate(ctx, id)

	product, err := uc.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	uc.logger.Info("📦 [CATALOG] Restocked", zap.Int64("product_id", id), zap.Int("quantity", quantity), zap.Int("stock", product.Stock))
	return product, nil
}

// DeleteProduct remove um produto que nunca foi vendido
func (uc *CatalogUseCase) DeleteProduct(ctx context.Context, id int64) error {
	err := uc.products.Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return &models.ProductNotFoundError{ProductID: id}
	case errors.Is(err, repository.ErrReferenced):
		return &models.ProductInUseError{ProductID: id}
	case err != nil:
		return fmt.Errorf("failed to delete product: %w", err)
	}

	uc.invalidate(ctx, id)
	uc.logger.Info("🗑️ [CATALOG] Product deleted", zap.Int64("product_id", id))
	return nil
}

func (uc *CatalogUseCase) invalidate(ctx context.Context, id int64) {
	invalidateProducts(ctx, uc.cache, uc.logger, id)
}

func validateProduct(name string, price decimal.Decimal) error {
	if name == "" {
		return &models.ValidationError{Message: "Nome é obrigatório"}
	}
	if price.IsNegative() {
		return &models.ValidationError{Message: "Preço não pode ser negativo"}
	}
	return nil
}
