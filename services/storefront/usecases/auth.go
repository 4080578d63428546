package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/matheusmosca/storefront/services/storefront/models"
	"github.com/matheusmosca/storefront/services/storefront/repository"
)

const tokenTTL = 24 * time.Hour

// Claims é o conteúdo do token de acesso
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// AuthUseCase cadastra usuários e emite tokens JWT
type AuthUseCase struct {
	users  repository.UserRepository
	secret []byte
	logger *zap.Logger
	now    func() time.Time
}

func NewAuthUseCase(users repository.UserRepository, secret string, logger *zap.Logger) *AuthUseCase {
	return &AuthUseCase{users: users, secret: []byte(secret), logger: logger, now: time.Now}
}

// Register cria um cliente com a senha em bcrypt
func (uc *AuthUseCase) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, &models.ValidationError{Message: "Nome é obrigatório"}
	}
	if !strings.Contains(email, "@") {
		return nil, &models.ValidationError{Message: "Email inválido"}
	}
	if len(password) < 6 {
		return nil, &models.ValidationError{Message: "Senha deve ter ao menos 6 caracteres"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Name: name, Email: email, PasswordHash: string(hash), Role: models.RoleCustomer}
	if err := uc.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, &models.EmailTakenError{Email: email}
		}
		return nil, err
	}

	uc.logger.Info("✅ [AUTH] User registered", zap.Int64("user_id", user.ID))
	return user, nil
}

// Login confere a senha e devolve um token assinado com HS256
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := uc.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, models.InvalidCredentialsError{}
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, models.InvalidCredentialsError{}
	}

	now := uc.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	})
	signed, err := token.SignedString(uc.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, user, nil
}

// ParseToken valida assinatura e expiração do token. Tokens sem exp são recusados.
func ParseToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
