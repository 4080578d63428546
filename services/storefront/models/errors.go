package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifica os erros de domínio para a camada HTTP
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindAccessDenied
	KindUnauthenticated
	KindDuplicate
	KindConfiguration
	KindExternal
)

// DomainError é implementado por todos os erros tipados do domínio
type DomainError interface {
	error
	Kind() ErrorKind
}

// KindOf devolve a classificação de err, ou KindInternal para erros não tipados
func KindOf(err error) ErrorKind {
	var de DomainError
	if errors.As(err, &de) {
		return de.Kind()
	}
	return KindInternal
}

// EmptyCartError indica checkout de um carrinho inexistente ou vazio
type EmptyCartError struct{}

func (EmptyCartError) Error() string   { return "Carrinho vazio" }
func (EmptyCartError) Kind() ErrorKind { return KindValidation }

// InsufficientStockError indica que o produto não tem estoque para a quantidade pedida
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Estoque insuficiente para %s", e.ProductName)
}
func (e *InsufficientStockError) Kind() ErrorKind { return KindConflict }

type ProductNotFoundError struct {
	ProductID int64
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("Produto %d não encontrado", e.ProductID)
}
func (e *ProductNotFoundError) Kind() ErrorKind { return KindNotFound }

type OrderNotFoundError struct {
	OrderID int64
}

func (e *OrderNotFoundError) Error() string   { return "Pedido não encontrado" }
func (e *OrderNotFoundError) Kind() ErrorKind { return KindNotFound }

type PaymentNotFoundError struct {
	PaymentID int64
}

func (e *PaymentNotFoundError) Error() string   { return "Pagamento não encontrado" }
func (e *PaymentNotFoundError) Kind() ErrorKind { return KindNotFound }

type CartItemNotFoundError struct {
	ItemID int64
}

func (e *CartItemNotFoundError) Error() string   { return "Item não encontrado no carrinho" }
func (e *CartItemNotFoundError) Kind() ErrorKind { return KindNotFound }

// AccessDeniedError não revela nada sobre o recurso de outro usuário
type AccessDeniedError struct{}

func (AccessDeniedError) Error() string   { return "Acesso negado" }
func (AccessDeniedError) Kind() ErrorKind { return KindAccessDenied }

// ValidationError é um erro de entrada corrigível pelo cliente
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string   { return e.Message }
func (e *ValidationError) Kind() ErrorKind { return KindValidation }

type InvalidTransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("Transição de status inválida: %s -> %s", e.From, e.To)
}
func (e *InvalidTransitionError) Kind() ErrorKind { return KindConflict }

// InvalidOrderStateError indica operação sobre um pedido que não está no status esperado
type InvalidOrderStateError struct {
	OrderID int64
	Status  OrderStatus
}

func (e *InvalidOrderStateError) Error() string {
	return fmt.Sprintf("Pedido com status %s não pode ser pago", e.Status)
}
func (e *InvalidOrderStateError) Kind() ErrorKind { return KindConflict }

type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string   { return e.Message }
func (e *ConfigurationError) Kind() ErrorKind { return KindConfiguration }

// SignatureError indica que a assinatura do webhook não confere
type SignatureError struct {
	Reason string
	Err    error
}

func (e *SignatureError) Error() string   { return "Webhook Error: " + e.Reason }
func (e *SignatureError) Unwrap() error   { return e.Err }
func (e *SignatureError) Kind() ErrorKind { return KindValidation }

// InvalidMetadataError indica que o evento não carrega um orderId numérico
type InvalidMetadataError struct {
	Value string
}

func (e *InvalidMetadataError) Error() string   { return "orderId inválido" }
func (e *InvalidMetadataError) Kind() ErrorKind { return KindValidation }

// GatewayError embrulha falhas de comunicação com o processador de pagamentos
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway %s: %v", e.Op, e.Err)
}
func (e *GatewayError) Unwrap() error   { return e.Err }
func (e *GatewayError) Kind() ErrorKind { return KindExternal }
func (e *GatewayError) PublicMessage() string {
	return "Falha ao comunicar com o processador de pagamentos"
}

type InvalidCredentialsError struct{}

func (InvalidCredentialsError) Error() string   { return "Credenciais inválidas" }
func (InvalidCredentialsError) Kind() ErrorKind { return KindUnauthenticated }

type EmailTakenError struct {
	Email string
}

func (e *EmailTakenError) Error() string   { return "Email já cadastrado" }
func (e *EmailTakenError) Kind() ErrorKind { return KindDuplicate }

type UserNotFoundError struct {
	UserID int64
}

func (e *UserNotFoundError) Error() string   { return "Usuário não encontrado" }
func (e *UserNotFoundError) Kind() ErrorKind { return KindNotFound }

// ProductInUseError indica produto referenciado por itens de pedido
type ProductInUseError struct {
	ProductID int64
}

func (e *ProductInUseError) Error() string {
	return "Produto possui pedidos e não pode ser removido"
}
func (e *ProductInUseError) Kind() ErrorKind { return KindConflict }
