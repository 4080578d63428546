package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/matheusmosca/storefront/services/storefront/models"
)

const userColumns = `id, name, email, password_hash, role, created_at`

type PostgresUserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// Create insere o usuário. Email repetido devolve ErrDuplicate.
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, user.Name, user.Email, user.PasswordHash, user.Role).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// List aplica os filtros administrativos, mais recentes primeiro
func (r *PostgresUserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	var (
		conditions []string
		args       []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.Role != nil {
		add("role = $%d", *filter.Role)
	}
	if filter.Email != "" {
		add("email ILIKE '%%' || $%d || '%%'", filter.Email)
	}
	if filter.Name != "" {
		add("name ILIKE '%%' || $%d || '%%'", filter.Name)
	}

	query := `SELECT ` + userColumns + ` FROM users`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	args = append(args, filter.Skip)
	query += fmt.Sprintf(" OFFSET $%d", len(args))
	if filter.Take > 0 {
		args = append(args, filter.Take)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.User, error) {
		var u models.User
		err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
		return u, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan users: %w", err)
	}
	return users, nil
}

func (r *PostgresUserRepository) Update(ctx context.Context, user *models.User) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users SET name = $2, email = $3, role = $4 WHERE id = $1
	`, user.ID, user.Name, user.Email, user.Role)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete apaga o usuário e tudo o que é dele. O histórico de status que
// ele alterou como administrador fica sem autor.
func (r *PostgresUserRepository) Delete(ctx context.Context, id int64) error {
	steps := []struct {
		name string
		sql  string
	}{
		{"detach status history", `UPDATE order_status_history SET changed_by = NULL WHERE changed_by = $1`},
		{"delete status history", `DELETE FROM order_status_history WHERE order_id IN (SELECT id FROM orders WHERE user_id = $1)`},
		{"delete order items", `DELETE FROM order_items WHERE order_id IN (SELECT id FROM orders WHERE user_id = $1)`},
		{"delete payments", `DELETE FROM payments WHERE user_id = $1 OR order_id IN (SELECT id FROM orders WHERE user_id = $1)`},
		{"delete orders", `DELETE FROM orders WHERE user_id = $1`},
		{"delete cart", `DELETE FROM carts WHERE user_id = $1`},
	}
	for _, step := range steps {
		if _, err := r.db.Exec(ctx, step.sql, id); err != nil {
			return fmt.Errorf("failed to %s: %w", step.name, err)
		}
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) findOne(ctx context.Context, sql string, arg any) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx, sql, arg).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}
