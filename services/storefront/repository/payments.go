package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/matheusmosca/storefront/services/storefront/models"
)

const paymentColumns = `id, order_id, user_id, method, amount, status, transaction_code, created_at`

// PostgresPaymentRepository implementa PaymentRepository usando PostgreSQL
type PostgresPaymentRepository struct {
	db DBTX
}

// NewPaymentRepository cria uma nova instância de PostgresPaymentRepository
func NewPaymentRepository(db DBTX) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{db: db}
}

// Create registra um pagamento
func (r *PostgresPaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO payments (order_id, user_id, method, amount, status, transaction_code, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, payment.OrderID, payment.UserID, payment.Method, payment.Amount, payment.Status,
		payment.TransactionCode, payment.CreatedAt).Scan(&payment.ID)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

// FindByID busca um pagamento pelo ID
func (r *PostgresPaymentRepository) FindByID(ctx context.Context, id int64) (*models.Payment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	payment, err := pgx.CollectOneRow(rows, scanPayment)
	if err != nil {
		return nil, notFound(err)
	}
	return &payment, nil
}

func (r *PostgresPaymentRepository) ListByOrder(ctx context.Context, orderID int64) ([]models.Payment, error) {
	return r.query(ctx, `SELECT `+paymentColumns+` FROM payments WHERE order_id = $1 ORDER BY id`, orderID)
}

func (r *PostgresPaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.OrderID != nil {
		args = append(args, *filter.OrderID)
		conditions = append(conditions, fmt.Sprintf("order_id = $%d", len(args)))
	}

	query := `SELECT ` + paymentColumns + ` FROM payments`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	args = append(args, filter.Skip)
	query += fmt.Sprintf(" ORDER BY id DESC OFFSET $%d", len(args))
	if filter.Take > 0 {
		args = append(args, filter.Take)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	return r.query(ctx, query, args...)
}

// UpdateStatus altera o status manualmente (uso administrativo)
func (r *PostgresPaymentRepository) UpdateStatus(ctx context.Context, id int64, status models.PaymentStatus) (bool, error) {
	tag, err := r.db.Exec(ctx, `UPDATE payments SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return false, fmt.Errorf("failed to update payment status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// TransitionByOrder é condicionado ao status atual de cada pagamento
func (r *PostgresPaymentRepository) TransitionByOrder(ctx context.Context, orderID int64, from, to models.PaymentStatus, transactionCode *string) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE payments
		SET status = $3, transaction_code = COALESCE($4, transaction_code)
		WHERE order_id = $1 AND status = $2
	`, orderID, from, to, transactionCode)
	if err != nil {
		return 0, fmt.Errorf("failed to transition payments: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresPaymentRepository) query(ctx context.Context, sql string, args ...any) ([]models.Payment, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	payments, err := pgx.CollectRows(rows, scanPayment)
	if err != nil {
		return nil, fmt.Errorf("failed to scan payments: %w", err)
	}
	return payments, nil
}

func scanPayment(row pgx.CollectableRow) (models.Payment, error) {
	var p models.Payment
	err := row.Scan(&p.ID, &p.OrderID, &p.UserID, &p.Method, &p.Amount, &p.Status, &p.TransactionCode, &p.CreatedAt)
	return p, err
}
