package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus representa os possíveis status de um pagamento
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// DefaultPaymentMethod é usado quando o cliente não informa o método
const DefaultPaymentMethod = "card"

// Valid indica se o status é conhecido
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed,
		PaymentStatusRefunded, PaymentStatusCancelled:
		return true
	}
	return false
}

// Payment representa uma tentativa de pagamento de um pedido
type Payment struct {
	ID              int64           `json:"id" db:"id"`
	OrderID         int64           `json:"order_id" db:"order_id"`
	UserID          int64           `json:"user_id" db:"user_id"`
	Method          string          `json:"method" db:"method"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	Status          PaymentStatus   `json:"status" db:"status"`
	TransactionCode *string         `json:"transaction_code" db:"transaction_code"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// NewPayment cria um pagamento pendente para o pedido
func NewPayment(orderID, userID int64, method string, amount decimal.Decimal) *Payment {
	if method == "" {
		method = DefaultPaymentMethod
	}
	return &Payment{
		OrderID:   orderID,
		UserID:    userID,
		Method:    method,
		Amount:    amount,
		Status:    PaymentStatusPending,
		CreatedAt: time.Now(),
	}
}

// PaymentFilter filtra a listagem administrativa de pagamentos
type PaymentFilter struct {
	Status  *PaymentStatus
	OrderID *int64
	Skip    int
	Take    int
}

// ToMinorUnits converte um valor monetário para a menor unidade da moeda
// (centavos), arredondando total × 100 para o inteiro mais próximo.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// PaymentIntentRequest é o pedido de autorização enviado ao processador
type PaymentIntentRequest struct {
	AmountMinor    int64
	Currency       string
	Metadata       map[string]string
	IdempotencyKey string
}

// PaymentIntent é o handle externo devolvido pelo processador
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
}

// ProcessedWebhookEvent registra um evento externo já processado
type ProcessedWebhookEvent struct {
	EventID   string    `json:"event_id" db:"event_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// WebhookEvent é o envelope de um evento assinado do processador
type WebhookEvent struct {
	ID      string           `json:"id"`
	Type    string           `json:"type"`
	Created int64            `json:"created"`
	Data    WebhookEventData `json:"data"`
}

type WebhookEventData struct {
	Object json.RawMessage `json:"object"`
}

// EventPaymentIntentSucceeded é o único tipo de evento que liquida pedidos
const EventPaymentIntentSucceeded = "payment_intent.succeeded"

// PaymentIntentObject é o objeto carregado por eventos payment_intent.*
type PaymentIntentObject struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Status   string            `json:"status"`
	Metadata map[string]string `json:"metadata"`
}

// OrderIDMetadataKey é a chave de metadata que liga o intent ao pedido
const OrderIDMetadataKey = "orderId"
