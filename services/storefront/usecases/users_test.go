package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/matheusmosca/storefront/services/storefront/cache"
	"github.com/matheusmosca/storefront/services/storefront/models"
)

func newUserAdmin(t *testing.T) (*UserAdminUseCase, *memStore, *memProductCache) {
	t.Helper()
	store := newMemStore()
	productCache := newMemProductCache()
	return NewUserAdminUseCase(store, productCache, zaptest.NewLogger(t)), store, productCache
}

func seedUser(t *testing.T, store *memStore, name, email, role string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email, PasswordHash: "hash", Role: role}
	require.NoError(t, store.Users().Create(context.Background(), user))
	return user
}

func ptr[T any](v T) *T { return &v }

func TestListUsers_Filters(t *testing.T) {
	// Arrange
	uc, store, _ := newUserAdmin(t)
	seedUser(t, store, "Ana Souza", "ana@example.com", models.RoleAdmin)
	seedUser(t, store, "Bruno", "bruno@example.com", models.RoleCustomer)
	seedUser(t, store, "Carla", "carla@loja.com", models.RoleCustomer)
	ctx := context.Background()

	// Act
	all, errAll := uc.ListUsers(ctx, models.UserFilter{})
	admins, errAdmins := uc.ListUsers(ctx, models.UserFilter{Role: ptr(models.RoleAdmin)})
	byEmail, errEmail := uc.ListUsers(ctx, models.UserFilter{Email: "EXAMPLE"})
	byName, errName := uc.ListUsers(ctx, models.UserFilter{Name: "souza"})
	paged, errPaged := uc.ListUsers(ctx, models.UserFilter{Skip: 1, Take: 1})
	empty, errEmpty := uc.ListUsers(ctx, models.UserFilter{Name: "ninguém"})
	_, errRole := uc.ListUsers(ctx, models.UserFilter{Role: ptr("ROOT")})

	// Assert
	require.NoError(t, errAll)
	require.NoError(t, errAdmins)
	require.NoError(t, errEmail)
	require.NoError(t, errName)
	require.NoError(t, errPaged)
	require.NoError(t, errEmpty)
	assert.Len(t, all, 3)
	require.Len(t, admins, 1)
	assert.Equal(t, "Ana Souza", admins[0].Name)
	assert.Len(t, byEmail, 2)
	require.Len(t, byName, 1)
	assert.Equal(t, "ana@example.com", byName[0].Email)
	require.Len(t, paged, 1)
	assert.Equal(t, "Bruno", paged[0].Name)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	var validation *models.ValidationError
	require.ErrorAs(t, errRole, &validation)
	assert.Equal(t, "Role inválido", validation.Message)
}

func TestGetUser_IncludesOrders(t *testing.T) {
	// Arrange
	uc, store, _ := newUserAdmin(t)
	user := seedUser(t, store, "Ana", "ana@example.com", models.RoleCustomer)
	other := seedUser(t, store, "Bruno", "bruno@example.com", models.RoleCustomer)
	product := seedProduct(t, store, "Caneca", "19.90", 10)
	order := placeOrder(t, store, user.ID, product, 2)
	placeOrder(t, store, other.ID, product, 1)

	// Act
	details, err := uc.GetUser(context.Background(), user.ID)
	_, errMissing := uc.GetUser(context.Background(), 404)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Ana", details.Name)
	require.Len(t, details.Orders, 1)
	assert.Equal(t, order.ID, details.Orders[0].ID)

	var notFound *models.UserNotFoundError
	require.ErrorAs(t, errMissing, &notFound)
	assert.Equal(t, int64(404), notFound.UserID)
}

func TestUpdateUser_ChangesFieldsAndRole(t *testing.T) {
	// Arrange
	uc, store, _ := newUserAdmin(t)
	admin := seedUser(t, store, "Admin", "admin@example.com", models.RoleAdmin)
	user := seedUser(t, store, "Ana", "ana@example.com", models.RoleCustomer)

	// Act
	updated, err := uc.UpdateUser(context.Background(), user.ID, UserUpdate{
		Name:  ptr(" Ana Souza "),
		Email: ptr("ANA.SOUZA@example.com"),
		Role:  ptr(models.RoleAdmin),
	}, admin.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", updated.Name)
	assert.Equal(t, "ana.souza@example.com", updated.Email)
	assert.Equal(t, models.RoleAdmin, updated.Role)

	stored := store.snapshot().users[user.ID]
	assert.Equal(t, models.RoleAdmin, stored.Role)
	assert.Equal(t, "hash", stored.PasswordHash)
}

func TestUpdateUser_Rejections(t *testing.T) {
	uc, store, _ := newUserAdmin(t)
	admin := seedUser(t, store, "Admin", "admin@example.com", models.RoleAdmin)
	user := seedUser(t, store, "Ana", "ana@example.com", models.RoleCustomer)
	seedUser(t, store, "Bruno", "bruno@example.com", models.RoleCustomer)

	tests := map[string]struct {
		userID  int64
		update  UserUpdate
		message string
	}{
		"empty name":    {userID: user.ID, update: UserUpdate{Name: ptr("  ")}, message: "Nome é obrigatório"},
		"invalid email": {userID: user.ID, update: UserUpdate{Email: ptr("ana")}, message: "Email inválido"},
		"invalid role":  {userID: user.ID, update: UserUpdate{Role: ptr("ROOT")}, message: "Role inválido"},
		"self demotion": {
			userID:  admin.ID,
			update:  UserUpdate{Role: ptr(models.RoleCustomer)},
			message: "Não é possível remover o próprio acesso de administrador",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			// Act
			updated, err := uc.UpdateUser(context.Background(), tt.userID, tt.update, admin.ID)

			// Assert
			assert.Nil(t, updated)
			var validation *models.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.message, validation.Message)
		})
	}

	t.Run("email taken", func(t *testing.T) {
		_, err := uc.UpdateUser(context.Background(), user.ID, UserUpdate{Email: ptr("bruno@example.com")}, admin.ID)

		var taken *models.EmailTakenError
		require.ErrorAs(t, err, &taken)
		assert.Equal(t, "ana@example.com", store.snapshot().users[user.ID].Email)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := uc.UpdateUser(context.Background(), 404, UserUpdate{Name: ptr("X")}, admin.ID)

		var notFound *models.UserNotFoundError
		require.ErrorAs(t, err, &notFound)
	})
}

func TestDeleteUser_CascadesAndRestoresPendingStock(t *testing.T) {
	// Arrange
	uc, store, productCache := newUserAdmin(t)
	ctx := context.Background()
	admin := seedUser(t, store, "Admin", "admin@example.com", models.RoleAdmin)
	user := seedUser(t, store, "Ana", "ana@example.com", models.RoleAdmin)
	other := seedUser(t, store, "Bruno", "bruno@example.com", models.RoleCustomer)
	product := seedProduct(t, store, "Caneca", "19.90", 10)

	pending := placeOrder(t, store, user.ID, product, 3)
	paid := placeOrder(t, store, user.ID, product, 2)
	_, err := store.Orders().UpdateStatusIf(ctx, paid.ID, models.OrderStatusPending, models.OrderStatusPaid, nil)
	require.NoError(t, err)
	othersOrder := placeOrder(t, store, other.ID, product, 1)
	require.NoError(t, store.Orders().AppendStatusHistory(ctx, &models.OrderStatusHistory{
		OrderID: othersOrder.ID, Status: models.OrderStatusCancelled, ChangedBy: &user.ID,
	}))
	seedCart(t, store, user.ID, models.LineItem{ProductID: product.ID, Quantity: 1})
	require.NoError(t, productCache.Set(ctx, &models.Product{ID: product.ID, Stock: 4}))
	require.Equal(t, 4, stockOf(store, product.ID))

	// Act
	err = uc.DeleteUser(ctx, user.ID, "Ana", admin.ID)

	// Assert
	require.NoError(t, err)
	snap := store.snapshot()
	assert.NotContains(t, snap.users, user.ID)
	assert.NotContains(t, snap.orders, pending.ID)
	assert.NotContains(t, snap.orders, paid.ID)
	assert.Contains(t, snap.orders, othersOrder.ID)
	assert.Empty(t, paymentsOf(store, pending.ID))
	assert.Empty(t, paymentsOf(store, paid.ID))
	assert.Len(t, paymentsOf(store, othersOrder.ID), 1)
	for _, c := range snap.carts {
		assert.NotEqual(t, user.ID, c.UserID)
	}
	assert.Empty(t, snap.cartItems)

	// só o pedido pendente devolve estoque
	assert.Equal(t, 7, stockOf(store, product.ID))
	_, cacheErr := productCache.Get(ctx, product.ID)
	assert.ErrorIs(t, cacheErr, cache.ErrMiss)

	require.Len(t, snap.history, 1)
	assert.Nil(t, snap.history[0].ChangedBy)
}

func TestDeleteUser_Rejections(t *testing.T) {
	// Arrange
	uc, store, _ := newUserAdmin(t)
	admin := seedUser(t, store, "Admin", "admin@example.com", models.RoleAdmin)
	user := seedUser(t, store, "Ana", "ana@example.com", models.RoleCustomer)
	product := seedProduct(t, store, "Caneca", "19.90", 10)
	placeOrder(t, store, user.ID, product, 3)
	ctx := context.Background()

	// Act
	errMismatch := uc.DeleteUser(ctx, user.ID, "ana", admin.ID)
	errSelf := uc.DeleteUser(ctx, admin.ID, "Admin", admin.ID)
	errMissing := uc.DeleteUser(ctx, 404, "Ninguém", admin.ID)

	// Assert
	var validation *models.ValidationError
	require.ErrorAs(t, errMismatch, &validation)
	assert.Equal(t, "Nome informado não confere. Exclusão cancelada.", validation.Message)
	require.ErrorAs(t, errSelf, &validation)
	assert.Equal(t, "Não é possível excluir o próprio usuário", validation.Message)
	var notFound *models.UserNotFoundError
	require.ErrorAs(t, errMissing, &notFound)

	snap := store.snapshot()
	assert.Contains(t, snap.users, user.ID)
	assert.Contains(t, snap.users, admin.ID)
	assert.Len(t, snap.orders, 1)
	assert.Equal(t, 7, stockOf(store, product.ID))
}

func TestPromoteToAdmin(t *testing.T) {
	// Arrange
	uc, store, _ := newUserAdmin(t)
	user := seedUser(t, store, "Ana", "ana@example.com", models.RoleCustomer)
	ctx := context.Background()

	// Act
	promoted, err := uc.PromoteToAdmin(ctx, "  ANA@example.com ")
	writes := store.writeCount()
	again, errAgain := uc.PromoteToAdmin(ctx, "ana@example.com")
	_, errMissing := uc.PromoteToAdmin(ctx, "ninguem@example.com")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, user.ID, promoted.ID)
	assert.Equal(t, models.RoleAdmin, store.snapshot().users[user.ID].Role)
	require.NoError(t, errAgain)
	assert.Equal(t, models.RoleAdmin, again.Role)
	assert.Equal(t, writes, store.writeCount())

	var notFound *models.UserNotFoundError
	require.ErrorAs(t, errMissing, &notFound)
}
