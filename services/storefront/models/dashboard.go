package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RevenueStatuses são os status de pedido que contam como venda
var RevenueStatuses = []OrderStatus{OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered}

// SalesSummary conta todos os pedidos; receita e ticket médio consideram
// só os pedidos em RevenueStatuses
type SalesSummary struct {
	TotalOrders  int64           `json:"total_orders"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	AvgTicket    decimal.Decimal `json:"avg_ticket"`
}

// DailySales é a receita de um dia
type DailySales struct {
	Date  time.Time       `json:"date"`
	Total decimal.Decimal `json:"total"`
}

type ProductSales struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
}

type StatusCount struct {
	Status OrderStatus `json:"status"`
	Count  int64       `json:"count"`
}

// Dashboard é o painel de vendas do administrador
type Dashboard struct {
	Summary        SalesSummary   `json:"summary"`
	Evolution      []DailySales   `json:"evolution"`
	TopProducts    []ProductSales `json:"top_products"`
	OrdersByStatus []StatusCount  `json:"orders_by_status"`
}
