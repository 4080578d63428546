package repository

import (
	"context"
	"fmt"

	"github.com/matheusmosca/storefront/services/storefront/models"
)

// PostgresProductRepository implementa ProductRepository usando PostgreSQL
type PostgresProductRepository struct {
	db DBTX
}

// NewProductRepository cria uma nova instância de PostgresProductRepository
func NewProductRepository(db DBTX) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

// FindByID busca um produto pelo ID
func (r *PostgresProductRepository) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	err := r.db.QueryRow(ctx, `
		SELECT id, name, price, stock, created_at, updated_at
		FROM products WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// List devolve o catálogo ordenado por ID
func (r *PostgresProductRepository) List(ctx context.Context) ([]models.Product, error) {
	return r.list(ctx, `
		SELECT id, name, price, stock, created_at, updated_at
		FROM products ORDER BY id
	`)
}

// ListInStock devolve só os produtos com estoque disponível
func (r *PostgresProductRepository) ListInStock(ctx context.Context) ([]models.Product, error) {
	return r.list(ctx, `
		SELECT id, name, price, stock, created_at, updated_at
		FROM products WHERE stock > 0 ORDER BY id
	`)
}

func (r *PostgresProductRepository) list(ctx context.Context, sql string) ([]models.Product, error) {
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Create insere um produto novo
func (r *PostgresProductRepository) Create(ctx context.Context, product *models.Product) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO products (name, price, stock, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, product.Name, product.Price, product.Stock, product.CreatedAt, product.UpdatedAt).Scan(&product.ID)
}

// Update altera nome e preço. O estoque só muda pelas operações condicionais.
func (r *PostgresProductRepository) Update(ctx context.Context, product *models.Product) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = $2, price = $3, updated_at = NOW()
		WHERE id = $1
	`, product.ID, product.Name, product.Price)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete remove o produto e as linhas de carrinho que apontam para ele
func (r *PostgresProductRepository) Delete(ctx context.Context, id int64) error {
	var referenced bool
	if err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM order_items WHERE product_id = $1)
	`, id).Scan(&referenced); err != nil {
		return fmt.Errorf("failed to check product references: %w", err)
	}
	if referenced {
		return ErrReferenced
	}

	if _, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE product_id = $1`, id); err != nil {
		return fmt.Errorf("failed to remove product from carts: %w", err)
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrReferenced
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementStock decrementa o estoque de forma atômica e condicional
func (r *PostgresProductRepository) DecrementStock(ctx context.Context, id int64, quantity int) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE id = $1 AND stock >= $2
	`, id, quantity)
	if err != nil {
		return 0, fmt.Errorf("failed to decrement stock: %w", err)
	}
	return tag.RowsAffected(), nil
}

// IncrementStock devolve unidades ao estoque
func (r *PostgresProductRepository) IncrementStock(ctx context.Context, id int64, quantity int) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1 AND $2 > 0
	`, id, quantity)
	if err != nil {
		return 0, fmt.Errorf("failed to increment stock: %w", err)
	}
	return tag.RowsAffected(), nil
}
