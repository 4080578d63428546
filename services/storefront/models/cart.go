package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart é o carrinho de um usuário. Existe no máximo um por usuário.
type Cart struct {
	ID        int64      `json:"id" db:"id"`
	UserID    int64      `json:"user_id" db:"user_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// CartItem é uma linha do carrinho. A quantidade é validada contra o estoque
// no momento da inclusão, sem reserva.
type CartItem struct {
	ID        int64    `json:"id" db:"id"`
	CartID    int64    `json:"cart_id" db:"cart_id"`
	ProductID int64    `json:"product_id" db:"product_id"`
	Quantity  int      `json:"quantity" db:"quantity"`
	Product   *Product `json:"product,omitempty"`
}

// IsEmpty indica se o carrinho não tem itens
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// Subtotal calcula o valor do carrinho com os preços atuais dos produtos
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	if c == nil {
		return total
	}
	for _, item := range c.Items {
		if item.Product == nil {
			continue
		}
		total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// LineItem é um par produto/quantidade pedido pelo cliente
type LineItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// MergeLineItems soma as quantidades de linhas repetidas do mesmo produto,
// mantendo a ordem da primeira ocorrência.
func MergeLineItems(items []LineItem) []LineItem {
	index := make(map[int64]int, len(items))
	merged := make([]LineItem, 0, len(items))
	for _, item := range items {
		if i, ok := index[item.ProductID]; ok {
			merged[i].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}
