package usecases

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/matheusmosca/storefront/services/storefront/cache"
	"github.com/matheusmosca/storefront/services/storefront/events"
	"github.com/matheusmosca/storefront/services/storefront/models"
)

// MockPublisher simula o publicador de eventos
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockPublisher) Close() error {
	return nil
}

// MockGateway simula o processador de pagamentos
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreatePaymentIntent(ctx context.Context, req models.PaymentIntentRequest) (*models.PaymentIntent, error) {
	args := m.Called(ctx, req)
	intent, _ := args.Get(0).(*models.PaymentIntent)
	return intent, args.Error(1)
}

// memProductCache é um cache de produtos em memória, sem expiração
type memProductCache struct {
	mu       sync.Mutex
	products map[int64]models.Product
}

func newMemProductCache() *memProductCache {
	return &memProductCache{products: map[int64]models.Product{}}
}

func (c *memProductCache) Get(_ context.Context, id int64) (*models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok {
		return nil, cache.ErrMiss
	}
	return &p, nil
}

func (c *memProductCache) Set(_ context.Context, product *models.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[product.ID] = *product
	return nil
}

func (c *memProductCache) Invalidate(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.products, id)
	return nil
}

func eventOfType(eventType string) any {
	return mock.MatchedBy(func(e events.Event) bool { return e.Type == eventType })
}

func seedProduct(t *testing.T, store *memStore, name, price string, stock int) models.Product {
	t.Helper()
	p := models.NewProduct(name, decimal.RequireFromString(price), stock)
	require.NoError(t, store.Products().Create(context.Background(), p))
	return *p
}

func seedCart(t *testing.T, store *memStore, userID int64, lines ...models.LineItem) *models.Cart {
	t.Helper()
	ctx := context.Background()
	cart, err := store.Carts().Create(ctx, userID)
	require.NoError(t, err)
	for _, line := range lines {
		_, err := store.Carts().AddItem(ctx, cart.ID, line.ProductID, line.Quantity)
		require.NoError(t, err)
	}
	return cart
}

func stockOf(store *memStore, productID int64) int {
	return store.snapshot().products[productID].Stock
}
