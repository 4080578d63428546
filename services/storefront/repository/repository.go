package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/matheusmosca/storefront/services/storefront/models"
)

var (
	// ErrNotFound é devolvido quando a linha procurada não existe
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate é devolvido quando uma restrição de unicidade é violada
	ErrDuplicate = errors.New("duplicate record")
	// ErrReferenced é devolvido quando outra tabela ainda aponta para a linha
	ErrReferenced = errors.New("record still referenced")
)

// DBTX é satisfeita tanto pelo pool quanto por uma transação pgx
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ProductRepository é o livro de estoque do catálogo
type ProductRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	ListInStock(ctx context.Context) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	// Delete remove o produto e suas linhas em carrinhos. Produtos com
	// itens de pedido devolvem ErrReferenced.
	Delete(ctx context.Context, id int64) error

	// DecrementStock decrementa o estoque somente se stock >= quantity.
	// Devolve o número de linhas afetadas; zero significa estoque insuficiente.
	DecrementStock(ctx context.Context, id int64, quantity int) (int64, error)
	IncrementStock(ctx context.Context, id int64, quantity int) (int64, error)
}

type CartRepository interface {
	// FindByUserID carrega o carrinho com itens e dados atuais dos produtos
	FindByUserID(ctx context.Context, userID int64) (*models.Cart, error)
	Create(ctx context.Context, userID int64) (*models.Cart, error)
	AddItem(ctx context.Context, cartID, productID int64, quantity int) (*models.CartItem, error)
	RemoveItem(ctx context.Context, cartID, itemID int64) (int64, error)
	ClearItems(ctx context.Context, cartID int64) error
	// Delete remove o carrinho e devolve as linhas afetadas; zero indica
	// que outra transação já o removeu
	Delete(ctx context.Context, cartID int64) (int64, error)
}

type OrderRepository interface {
	// Create insere o pedido e seus itens, preenchendo os IDs
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id int64) (*models.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Order, error)
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)

	// UpdateStatusIf troca o status somente se o status atual for from
	UpdateStatusIf(ctx context.Context, id int64, from, to models.OrderStatus, trackingCode *string) (bool, error)
	AppendStatusHistory(ctx context.Context, entry *models.OrderStatusHistory) error
	StatusHistory(ctx context.Context, orderID int64) ([]models.OrderStatusHistory, error)

	// Agregações do painel; statuses limita quais pedidos contam como venda
	SalesSummary(ctx context.Context, statuses []models.OrderStatus) (models.SalesSummary, error)
	SalesByDay(ctx context.Context, statuses []models.OrderStatus, since time.Time) ([]models.DailySales, error)
	TopProducts(ctx context.Context, statuses []models.OrderStatus, limit int) ([]models.ProductSales, error)
	CountByStatus(ctx context.Context) ([]models.StatusCount, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id int64) (*models.Payment, error)
	ListByOrder(ctx context.Context, orderID int64) ([]models.Payment, error)
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error)
	UpdateStatus(ctx context.Context, id int64, status models.PaymentStatus) (bool, error)

	// TransitionByOrder move todos os pagamentos do pedido em from para to,
	// gravando o código da transação externa quando informado
	TransitionByOrder(ctx context.Context, orderID int64, from, to models.PaymentStatus, transactionCode *string) (int64, error)
}

// WebhookEventRepository é o ledger de idempotência dos webhooks
type WebhookEventRepository interface {
	Exists(ctx context.Context, eventID string) (bool, error)
	// Record devolve false se o evento já estava registrado
	Record(ctx context.Context, eventID string) (bool, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	// Update grava nome, email e papel. Email repetido devolve ErrDuplicate.
	Update(ctx context.Context, user *models.User) error
	// Delete remove o usuário com pedidos, pagamentos e carrinho. Deve
	// rodar dentro de WithinTx.
	Delete(ctx context.Context, id int64) error
}

// Repositories agrupa os repositórios de um mesmo escopo (pool ou transação)
type Repositories interface {
	Products() ProductRepository
	Carts() CartRepository
	Orders() OrderRepository
	Payments() PaymentRepository
	WebhookEvents() WebhookEventRepository
	Users() UserRepository
}

// Store é a unit of work: WithinTx abre uma transação, entrega os
// repositórios transacionais a fn e faz commit se fn não falhar.
type Store interface {
	Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

type postgresRepositories struct {
	db DBTX
}

func (r postgresRepositories) Products() ProductRepository { return NewProductRepository(r.db) }
func (r postgresRepositories) Carts() CartRepository       { return NewCartRepository(r.db) }
func (r postgresRepositories) Orders() OrderRepository     { return NewOrderRepository(r.db) }
func (r postgresRepositories) Payments() PaymentRepository { return NewPaymentRepository(r.db) }
func (r postgresRepositories) WebhookEvents() WebhookEventRepository {
	return NewWebhookEventRepository(r.db)
}
func (r postgresRepositories) Users() UserRepository { return NewUserRepository(r.db) }

// PostgresStore implementa Store usando PostgreSQL
type PostgresStore struct {
	postgresRepositories
	pool *pgxpool.Pool
}

// NewPostgresStore cria uma nova instância de PostgresStore
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		postgresRepositories: postgresRepositories{db: pool},
		pool:                 pool,
	}
}

// WithinTx executa fn dentro de uma transação read committed.
// Qualquer erro de fn desfaz a transação inteira.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(context.Background())

	if err := fn(ctx, postgresRepositories{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func statusStrings(statuses []models.OrderStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
