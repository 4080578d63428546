package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa um item do catálogo com seu estoque
type Product struct {
	ID        int64           `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Stock     int             `json:"stock" db:"stock"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// NewProduct cria um produto novo
func NewProduct(name string, price decimal.Decimal, stock int) *Product {
	now := time.Now()
	return &Product{
		Name:      name,
		Price:     price,
		Stock:     stock,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// HasStock indica se há estoque suficiente para a quantidade pedida
func (p *Product) HasStock(quantity int) bool {
	return quantity > 0 && p.Stock >= quantity
}
