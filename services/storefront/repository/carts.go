package repository

import (
	"context"
	"fmt"

	"github.com/matheusmosca/storefront/services/storefront/models"
)

type PostgresCartRepository struct {
	db DBTX
}

func NewCartRepository(db DBTX) *PostgresCartRepository {
	return &PostgresCartRepository{db: db}
}

// FindByUserID carrega o carrinho do usuário com os dados atuais dos produtos
func (r *PostgresCartRepository) FindByUserID(ctx context.Context, userID int64) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, created_at FROM carts WHERE user_id = $1
	`, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity,
		       p.id, p.name, p.price, p.stock, p.created_at, p.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id
	`, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.CartItem
		var p models.Product
		if err := rows.Scan(
			&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
			&p.ID, &p.Name, &p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		item.Product = &p
		cart.Items = append(cart.Items, item)
	}
	return &cart, rows.Err()
}

// Create cria o carrinho do usuário, ou devolve o existente
func (r *PostgresCartRepository) Create(ctx context.Context, userID int64) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.QueryRow(ctx, `
		INSERT INTO carts (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, created_at
	`, userID).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return &cart, nil
}

// AddItem inclui o produto no carrinho ou soma a quantidade à linha existente
func (r *PostgresCartRepository) AddItem(ctx context.Context, cartID, productID int64, quantity int) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.QueryRow(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING id, cart_id, product_id, quantity
	`, cartID, productID, quantity).Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}
	return &item, nil
}

func (r *PostgresCartRepository) RemoveItem(ctx context.Context, cartID, itemID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND cart_id = $2`, itemID, cartID)
	if err != nil {
		return 0, fmt.Errorf("failed to remove cart item: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *PostgresCartRepository) ClearItems(ctx context.Context, cartID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (r *PostgresCartRepository) Delete(ctx context.Context, cartID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM carts WHERE id = $1`, cartID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete cart: %w", err)
	}
	return tag.RowsAffected(), nil
}
