package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/matheusmosca/storefront/services/storefront/models"
)

const orderColumns = `id, user_id, total, status, tracking_code, created_at, updated_at`

// PostgresOrderRepository implementa OrderRepository usando PostgreSQL
type PostgresOrderRepository struct {
	db DBTX
}

// NewOrderRepository cria uma nova instância de PostgresOrderRepository
func NewOrderRepository(db DBTX) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

// Create insere o pedido e os itens com o preço congelado
func (r *PostgresOrderRepository) Create(ctx context.Context, order *models.Order) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO orders (user_id, total, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, order.UserID, order.Total, order.Status, order.CreatedAt, order.UpdatedAt).Scan(&order.ID)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		err := r.db.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, product_name, quantity, price)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, item.OrderID, item.ProductID, item.ProductName, item.Quantity, item.Price).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}
	return nil
}

// FindByID busca um pedido com seus itens
func (r *PostgresOrderRepository) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	var o models.Order
	err := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id).
		Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.TrackingCode, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}

	orders := []models.Order{o}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

// ListByUser lista os pedidos do usuário, mais recentes primeiro
func (r *PostgresOrderRepository) ListByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	return r.query(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
}

// List aplica os filtros administrativos
func (r *PostgresOrderRepository) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	var (
		conditions []string
		args       []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}
	if filter.UserID != nil {
		add("user_id = $%d", *filter.UserID)
	}
	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at <= $%d", *filter.To)
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
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

	return r.query(ctx, query, args...)
}

// UpdateStatusIf é um compare-and-swap do status do pedido
func (r *PostgresOrderRepository) UpdateStatusIf(ctx context.Context, id int64, from, to models.OrderStatus, trackingCode *string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = $3, tracking_code = COALESCE($4, tracking_code), updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, from, to, trackingCode)
	if err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresOrderRepository) AppendStatusHistory(ctx context.Context, entry *models.OrderStatusHistory) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO order_status_history (order_id, status, changed_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, entry.OrderID, entry.Status, entry.ChangedBy).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append status history: %w", err)
	}
	return nil
}

func (r *PostgresOrderRepository) StatusHistory(ctx context.Context, orderID int64) ([]models.OrderStatusHistory, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, status, changed_by, created_at
		FROM order_status_history WHERE order_id = $1 ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load status history: %w", err)
	}
	defer rows.Close()

	var history []models.OrderStatusHistory
	for rows.Next() {
		var h models.OrderStatusHistory
		if err := rows.Scan(&h.ID, &h.OrderID, &h.Status, &h.ChangedBy, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status history: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// SalesSummary conta todos os pedidos e soma receita e ticket médio dos que estão em statuses
func (r *PostgresOrderRepository) SalesSummary(ctx context.Context, statuses []models.OrderStatus) (models.SalesSummary, error) {
	var summary models.SalesSummary
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(total) FILTER (WHERE status = ANY($1)), 0),
		       COALESCE(ROUND(AVG(total) FILTER (WHERE status = ANY($1)), 2), 0)
		FROM orders
	`, statusStrings(statuses)).Scan(&summary.TotalOrders, &summary.TotalRevenue, &summary.AvgTicket)
	if err != nil {
		return summary, fmt.Errorf("failed to summarize sales: %w", err)
	}
	return summary, nil
}

// SalesByDay agrupa a receita por dia (UTC) a partir de since
func (r *PostgresOrderRepository) SalesByDay(ctx context.Context, statuses []models.OrderStatus, since time.Time) ([]models.DailySales, error) {
	rows, err := r.db.Query(ctx, `
		SELECT date_trunc('day', created_at AT TIME ZONE 'UTC') AS day, SUM(total)
		FROM orders
		WHERE status = ANY($1) AND created_at >= $2
		GROUP BY day
		ORDER BY day
	`, statusStrings(statuses), since)
	if err != nil {
		return nil, fmt.Errorf("failed to group sales by day: %w", err)
	}

	sales, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.DailySales, error) {
		var d models.DailySales
		err := row.Scan(&d.Date, &d.Total)
		d.Date = d.Date.UTC()
		return d, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan daily sales: %w", err)
	}
	return sales, nil
}

// TopProducts soma as quantidades vendidas por produto, maiores primeiro
func (r *PostgresOrderRepository) TopProducts(ctx context.Context, statuses []models.OrderStatus, limit int) ([]models.ProductSales, error) {
	rows, err := r.db.Query(ctx, `
		SELECT oi.product_id, MAX(oi.product_name), SUM(oi.quantity)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.status = ANY($1)
		GROUP BY oi.product_id
		ORDER BY SUM(oi.quantity) DESC, oi.product_id
		LIMIT $2
	`, statusStrings(statuses), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank products: %w", err)
	}

	top, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ProductSales, error) {
		var p models.ProductSales
		err := row.Scan(&p.ProductID, &p.ProductName, &p.Quantity)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan top products: %w", err)
	}
	return top, nil
}

func (r *PostgresOrderRepository) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}

	counts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.StatusCount, error) {
		var c models.StatusCount
		err := row.Scan(&c.Status, &c.Count)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan status counts: %w", err)
	}
	return counts, nil
}

func (r *PostgresOrderRepository) query(ctx context.Context, sql string, args ...any) ([]models.Order, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Order, error) {
		var o models.Order
		err := row.Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.TrackingCode, &o.CreatedAt, &o.UpdatedAt)
		return o, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan orders: %w", err)
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *PostgresOrderRepository) attachItems(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, price
		FROM order_items WHERE order_id = ANY($1) ORDER BY id
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.Price); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	return rows.Err()
}
