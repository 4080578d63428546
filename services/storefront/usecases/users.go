package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/matheusmosca/storefront/services/storefront/cache"
	"github.com/matheusmosca/storefront/services/storefront/models"
	"github.com/matheusmosca/storefront/services/storefront/repository"
)

// UserDetails é o usuário com o histórico de pedidos
type UserDetails struct {
	*models.User
	Orders []models.Order `json:"orders"`
}

// UserUpdate traz os campos opcionais de uma alteração de usuário
type UserUpdate struct {
	Name  *string
	Email *string
	Role  *string
}

// UserAdminUseCase é a gestão de usuários do painel administrativo
type UserAdminUseCase struct {
	store  repository.Store
	cache  cache.ProductCache
	logger *zap.Logger
}

func NewUserAdminUseCase(store repository.Store, productCache cache.ProductCache, logger *zap.Logger) *UserAdminUseCase {
	return &UserAdminUseCase{store: store, cache: productCache, logger: logger}
}

func (uc *UserAdminUseCase) ListUsers(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	if filter.Role != nil && !models.ValidRole(*filter.Role) {
		return nil, &models.ValidationError{Message: "Role inválido"}
	}
	if filter.Take <= 0 {
		filter.Take = defaultPageSize
	}
	if filter.Skip < 0 {
		filter.Skip = 0
	}

	users, err := uc.store.Users().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (uc *UserAdminUseCase) GetUser(ctx context.Context, userID int64) (*UserDetails, error) {
	user, err := uc.findUser(ctx, uc.store, userID)
	if err != nil {
		return nil, err
	}

	orders, err := uc.store.Orders().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return &UserDetails{User: user, Orders: orders}, nil
}

// UpdateUser altera nome, email e papel. O administrador não pode tirar o
// próprio papel de ADMIN.
func (uc *UserAdminUseCase) UpdateUser(ctx context.Context, userID int64, update UserUpdate, adminID int64) (*models.User, error) {
	user, err := uc.findUser(ctx, uc.store, userID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, &models.ValidationError{Message: "Nome é obrigatório"}
		}
		user.Name = name
	}
	if update.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*update.Email))
		if !strings.Contains(email, "@") {
			return nil, &models.ValidationError{Message: "Email inválido"}
		}
		user.Email = email
	}
	if update.Role != nil {
		if !models.ValidRole(*update.Role) {
			return nil, &models.ValidationError{Message: "Role inválido"}
		}
		if userID == adminID && *update.Role != models.RoleAdmin {
			return nil, &models.ValidationError{Message: "Não é possível remover o próprio acesso de administrador"}
		}
		user.Role = *update.Role
	}

	if err := uc.store.Users().Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, &models.EmailTakenError{Email: user.Email}
		case errors.Is(err, repository.ErrNotFound):
			return nil, &models.UserNotFoundError{UserID: userID}
		}
		return nil, err
	}

	uc.logger.Info("✅ [ADMIN] User updated",
		zap.Int64("user_id", userID),
		zap.String("role", user.Role),
		zap.Int64("admin_id", adminID),
	)
	return user, nil
}

// DeleteUser exige o nome exato do usuário como confirmação. Pedidos ainda
// pendentes devolvem o estoque antes de serem apagados com o restante.
func (uc *UserAdminUseCase) DeleteUser(ctx context.Context, userID int64, confirmName string, adminID int64) error {
	if userID == adminID {
		return &models.ValidationError{Message: "Não é possível excluir o próprio usuário"}
	}

	var restocked []int64
	err := uc.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		user, err := uc.findUser(ctx, repos, userID)
		if err != nil {
			return err
		}
		if user.Name != confirmName {
			return &models.ValidationError{Message: "Nome informado não confere. Exclusão cancelada."}
		}

		orders, err := repos.Orders().ListByUser(ctx, userID)
		if err != nil {
			return err
		}
		for _, order := range orders {
			if order.Status != models.OrderStatusPending {
				continue
			}
			for _, item := range order.Items {
				if _, err := repos.Products().IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
					return err
				}
				restocked = append(restocked, item.ProductID)
			}
		}

		return repos.Users().Delete(ctx, userID)
	})
	if err != nil {
		if models.KindOf(err) == models.KindInternal {
			uc.logger.Error("❌ [ADMIN] User deletion FAILED", zap.Int64("user_id", userID), zap.Error(err))
		}
		return err
	}

	invalidateProducts(ctx, uc.cache, uc.logger, restocked...)
	uc.logger.Info("🗑️ [ADMIN] User deleted", zap.Int64("user_id", userID), zap.Int64("admin_id", adminID))
	return nil
}

// PromoteToAdmin concede o papel ADMIN ao dono do email
func (uc *UserAdminUseCase) PromoteToAdmin(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := uc.store.Users().FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &models.UserNotFoundError{}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user.Role == models.RoleAdmin {
		return user, nil
	}

	user.Role = models.RoleAdmin
	if err := uc.store.Users().Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to promote user: %w", err)
	}
	uc.logger.Info("🔑 [ADMIN] User promoted", zap.Int64("user_id", user.ID))
	return user, nil
}

func (uc *UserAdminUseCase) findUser(ctx context.Context, repos repository.Repositories, userID int64) (*models.User, error) {
	user, err := repos.Users().FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &models.UserNotFoundError{UserID: userID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
