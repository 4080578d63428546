package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap/zaptest"

	"github.com/matheusmosca/storefront/services/storefront/models"
	"github.com/matheusmosca/storefront/services/storefront/usecases"
)

const testSecret = "test-secret"

type MockAuthUseCase struct{ mock.Mock }

func (m *MockAuthUseCase) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	args := m.Called(ctx, name, email, password)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockAuthUseCase) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(1).(*models.User)
	return args.String(0), user, args.Error(2)
}

type MockCatalogUseCase struct{ mock.Mock }

func (m *MockCatalogUseCase) ListProducts(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]models.Product)
	return products, args.Error(1)
}

func (m *MockCatalogUseCase) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	args := m.Called(ctx, id)
	product, _ := args.Get(0).(*models.Product)
	return product, args.Error(1)
}

func (m *MockCatalogUseCase) CreateProduct(ctx context.Context, name string, price decimal.Decimal, stock int) (*models.Product, error) {
	args := m.Called(ctx, name, price, stock)
	product, _ := args.Get(0).(*models.Product)
	return product, args.Error(1)
}

func (m *MockCatalogUseCase) UpdateProduct(ctx context.Context, id int64, update usecases.ProductUpdate) (*models.Product, error) {
	args := m.Called(ctx, id, update)
	product, _ := args.Get(0).(*models.Product)
	return product, args.Error(1)
}

func (m *MockCatalogUseCase) Restock(ctx context.Context, id int64, quantity int) (*models.Product, error) {
	args := m.Called(ctx, id, quantity)
	product, _ := args.Get(0).(*models.Product)
	return product, args.Error(1)
}

func (m *MockCatalogUseCase) ListActiveProducts(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	products, _ := args.Get(0).([]models.Product)
	return products, args.Error(1)
}

func (m *MockCatalogUseCase) DeleteProduct(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockCartUseCase struct{ mock.Mock }

func (m *MockCartUseCase) GetCart(ctx context.Context, userID int64) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	cart, _ := args.Get(0).(*models.Cart)
	return cart, args.Error(1)
}

func (m *MockCartUseCase) AddItem(ctx context.Context, userID, productID int64, quantity int) (*models.Cart, error) {
	args := m.Called(ctx, userID, productID, quantity)
	cart, _ := args.Get(0).(*models.Cart)
	return cart, args.Error(1)
}

func (m *MockCartUseCase) RemoveItem(ctx context.Context, userID, itemID int64) error {
	return m.Called(ctx, userID, itemID).Error(0)
}

type MockCheckoutUseCase struct{ mock.Mock }

func (m *MockCheckoutUseCase) CheckoutCart(ctx context.Context, userID int64, paymentMethod string) (*models.Order, error) {
	args := m.Called(ctx, userID, paymentMethod)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Error(1)
}

func (m *MockCheckoutUseCase) CreateOrderDirect(ctx context.Context, userID int64, items []models.LineItem, paymentMethod string) (*models.Order, error) {
	args := m.Called(ctx, userID, items, paymentMethod)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Error(1)
}

func (m *MockCheckoutUseCase) GetUserOrders(ctx context.Context, userID int64) ([]models.Order, error) {
	args := m.Called(ctx, userID)
	orders, _ := args.Get(0).([]models.Order)
	return orders, args.Error(1)
}

func (m *MockCheckoutUseCase) GetOrderByID(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	args := m.Called(ctx, userID, orderID)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Error(1)
}

type MockPaymentIntentUseCase struct{ mock.Mock }

func (m *MockPaymentIntentUseCase) CreatePaymentIntent(ctx context.Context, userID, orderID int64) (*models.PaymentIntent, error) {
	args := m.Called(ctx, userID, orderID)
	intent, _ := args.Get(0).(*models.PaymentIntent)
	return intent, args.Error(1)
}

type MockWebhookUseCase struct{ mock.Mock }

func (m *MockWebhookUseCase) Process(ctx context.Context, payload []byte, signature string) (*usecases.WebhookResult, error) {
	args := m.Called(ctx, payload, signature)
	result, _ := args.Get(0).(*usecases.WebhookResult)
	return result, args.Error(1)
}

type MockAdminUseCase struct{ mock.Mock }

func (m *MockAdminUseCase) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	args := m.Called(ctx, filter)
	orders, _ := args.Get(0).([]models.Order)
	return orders, args.Error(1)
}

func (m *MockAdminUseCase) GetOrder(ctx context.Context, orderID int64) (*usecases.OrderDetails, error) {
	args := m.Called(ctx, orderID)
	details, _ := args.Get(0).(*usecases.OrderDetails)
	return details, args.Error(1)
}

func (m *MockAdminUseCase) UpdateOrderStatus(ctx context.Context, orderID int64, next models.OrderStatus, adminID int64, trackingCode *string) (*models.Order, error) {
	args := m.Called(ctx, orderID, next, adminID, trackingCode)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Error(1)
}

func (m *MockAdminUseCase) ListPayments(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error) {
	args := m.Called(ctx, filter)
	payments, _ := args.Get(0).([]models.Payment)
	return payments, args.Error(1)
}

func (m *MockAdminUseCase) GetPayment(ctx context.Context, paymentID int64) (*models.Payment, error) {
	args := m.Called(ctx, paymentID)
	payment, _ := args.Get(0).(*models.Payment)
	return payment, args.Error(1)
}

func (m *MockAdminUseCase) UpdatePaymentStatus(ctx context.Context, paymentID int64, status models.PaymentStatus, adminID int64) (*models.Payment, error) {
	args := m.Called(ctx, paymentID, status, adminID)
	payment, _ := args.Get(0).(*models.Payment)
	return payment, args.Error(1)
}

type MockUserAdminUseCase struct{ mock.Mock }

func (m *MockUserAdminUseCase) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	args := m.Called(ctx, filter)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *MockUserAdminUseCase) GetUser(ctx context.Context, userID int64) (*usecases.UserDetails, error) {
	args := m.Called(ctx, userID)
	details, _ := args.Get(0).(*usecases.UserDetails)
	return details, args.Error(1)
}

func (m *MockUserAdminUseCase) UpdateUser(ctx context.Context, userID int64, update usecases.UserUpdate, adminID int64) (*models.User, error) {
	args := m.Called(ctx, userID, update, adminID)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *MockUserAdminUseCase) DeleteUser(ctx context.Context, userID int64, confirmName string, adminID int64) error {
	return m.Called(ctx, userID, confirmName, adminID).Error(0)
}

type MockDashboardUseCase struct{ mock.Mock }

func (m *MockDashboardUseCase) GetDashboard(ctx context.Context) (*models.Dashboard, error) {
	args := m.Called(ctx)
	dashboard, _ := args.Get(0).(*models.Dashboard)
	return dashboard, args.Error(1)
}

// testServer agrupa o roteador completo e os mocks por trás dele
type testServer struct {
	engine   *gin.Engine
	auth     *MockAuthUseCase
	catalog  *MockCatalogUseCase
	cart     *MockCartUseCase
	checkout *MockCheckoutUseCase
	intents  *MockPaymentIntentUseCase
	webhook  *MockWebhookUseCase
	admin    *MockAdminUseCase
	users    *MockUserAdminUseCase
	dash     *MockDashboardUseCase
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &testServer{
		auth:     new(MockAuthUseCase),
		catalog:  new(MockCatalogUseCase),
		cart:     new(MockCartUseCase),
		checkout: new(MockCheckoutUseCase),
		intents:  new(MockPaymentIntentUseCase),
		webhook:  new(MockWebhookUseCase),
		admin:    new(MockAdminUseCase),
		users:    new(MockUserAdminUseCase),
		dash:     new(MockDashboardUseCase),
	}
	tracer := noop.NewTracerProvider().Tracer("test")
	logger := zaptest.NewLogger(t)

	s.engine = Router{
		Service:   "storefront-test",
		JWTSecret: testSecret,
		Logger:    logger,
		Auth:      NewAuthHandler(s.auth, tracer),
		Products:  NewProductHandler(s.catalog, tracer),
		Cart:      NewCartHandler(s.cart, tracer),
		Orders:    NewOrderHandler(s.checkout, s.intents, tracer),
		Webhook:   NewWebhookHandler(s.webhook, tracer, logger),
		Admin:     NewAdminHandler(s.admin, tracer),
		Users:     NewUserAdminHandler(s.users, tracer),
		Dashboard: NewDashboardHandler(s.dash, tracer),
	}.Engine()
	return s
}

func bearer(t *testing.T, userID int64, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, usecases.Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}
