package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus representa os possíveis status de um pedido
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
	OrderStatusFailed    OrderStatus = "failed"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusPaid, OrderStatusCancelled, OrderStatusFailed},
	OrderStatusPaid:      {OrderStatusShipped, OrderStatusRefunded, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered},
	OrderStatusDelivered: {OrderStatusRefunded},
}

// Valid indica se o status é conhecido
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered,
		OrderStatusCancelled, OrderStatusRefunded, OrderStatusFailed:
		return true
	}
	return false
}

// CanTransitionTo verifica se a transição de status é permitida
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Order representa um pedido. Depois de criado só mudam o status e os
// dados de envio.
type Order struct {
	ID           int64           `json:"id" db:"id"`
	UserID       int64           `json:"user_id" db:"user_id"`
	Items        []OrderItem     `json:"items"`
	Total        decimal.Decimal `json:"total" db:"total"`
	Status       OrderStatus     `json:"status" db:"status"`
	TrackingCode *string         `json:"tracking_code,omitempty" db:"tracking_code"`
	Payments     []Payment       `json:"payments,omitempty"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// OrderItem guarda o preço do produto no momento da compra
type OrderItem struct {
	ID          int64           `json:"id" db:"id"`
	OrderID     int64           `json:"order_id" db:"order_id"`
	ProductID   int64           `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Price       decimal.Decimal `json:"price" db:"price"`
}

// Subtotal retorna preço × quantidade do item
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewOrder cria um pedido pendente e calcula o total a partir dos itens
func NewOrder(userID int64, items []OrderItem) *Order {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}

	now := time.Now()
	return &Order{
		UserID:    userID,
		Items:     items,
		Total:     total,
		Status:    OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// BelongsTo compara o dono do pedido por valor
func (o *Order) BelongsTo(userID int64) bool {
	return o.UserID == userID
}

// OrderStatusHistory é a trilha de auditoria das mudanças de status.
// ChangedBy nulo indica uma mudança feita pelo sistema (webhook).
type OrderStatusHistory struct {
	ID        int64       `json:"id" db:"id"`
	OrderID   int64       `json:"order_id" db:"order_id"`
	Status    OrderStatus `json:"status" db:"status"`
	ChangedBy *int64      `json:"changed_by" db:"changed_by"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}

// OrderFilter filtra a listagem administrativa de pedidos
type OrderFilter struct {
	Status *OrderStatus
	UserID *int64
	From   *time.Time
	To     *time.Time
	Skip   int
	Take   int
}
