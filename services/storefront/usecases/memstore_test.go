package usecases

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matheusmosca/storefront/services/storefront/models"
	"github.com/matheusmosca/storefront/services/storefront/repository"
)

// memData é o estado completo do banco em memória
type memData struct {
	nextID    int64
	products  map[int64]models.Product
	carts     map[int64]models.Cart
	cartItems map[int64]models.CartItem
	orders    map[int64]models.Order
	payments  map[int64]models.Payment
	history   []models.OrderStatusHistory
	events    map[string]time.Time
	users     map[int64]models.User
}

func newMemData() *memData {
	return &memData{
		products:  map[int64]models.Product{},
		carts:     map[int64]models.Cart{},
		cartItems: map[int64]models.CartItem{},
		orders:    map[int64]models.Order{},
		payments:  map[int64]models.Payment{},
		events:    map[string]time.Time{},
		users:     map[int64]models.User{},
	}
}

func (d *memData) id() int64 {
	d.nextID++
	return d.nextID
}

func (d *memData) clone() *memData {
	c := newMemData()
	c.nextID = d.nextID
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.carts {
		c.carts[k] = v
	}
	for k, v := range d.cartItems {
		c.cartItems[k] = v
	}
	for k, v := range d.orders {
		v.Items = append([]models.OrderItem(nil), v.Items...)
		c.orders[k] = v
	}
	for k, v := range d.payments {
		c.payments[k] = v
	}
	c.history = append([]models.OrderStatusHistory(nil), d.history...)
	for k, v := range d.events {
		c.events[k] = v
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	return c
}

// memStore implementa repository.Store com transações serializadas:
// WithinTx trabalha numa cópia e só a publica se fn não falhar.
type memStore struct {
	mu      sync.Mutex
	data    *memData
	writes  int
	commits int

	// failOn injeta erros por operação, ex.: "payments.create"
	failOn map[string]error
	// before roda antes da operação com o estado visível a ela
	before map[string]func(d *memData)
}

func newMemStore() *memStore {
	return &memStore{
		data:   newMemData(),
		failOn: map[string]error{},
		before: map[string]func(d *memData){},
	}
}

func (s *memStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.data.clone()
	if err := fn(ctx, memRepos{view: memView{s: s, tx: tx}}); err != nil {
		return err
	}
	s.data = tx
	s.commits++
	return nil
}

func (s *memStore) repos() memRepos { return memRepos{view: memView{s: s}} }

func (s *memStore) Products() repository.ProductRepository           { return s.repos().Products() }
func (s *memStore) Carts() repository.CartRepository                 { return s.repos().Carts() }
func (s *memStore) Orders() repository.OrderRepository               { return s.repos().Orders() }
func (s *memStore) Payments() repository.PaymentRepository           { return s.repos().Payments() }
func (s *memStore) WebhookEvents() repository.WebhookEventRepository { return s.repos().WebhookEvents() }
func (s *memStore) Users() repository.UserRepository                 { return s.repos().Users() }

// snapshot devolve o estado confirmado atual, para asserções
func (s *memStore) snapshot() *memData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.clone()
}

func (s *memStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

type memView struct {
	s  *memStore
	tx *memData
}

func (v memView) read(op string, fn func(d *memData) error) error {
	return v.run(op, false, fn)
}

func (v memView) write(op string, fn func(d *memData) error) error {
	return v.run(op, true, fn)
}

func (v memView) run(op string, mutates bool, fn func(d *memData) error) error {
	d := v.tx
	if d == nil {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
		d = v.s.data
	}
	if hook := v.s.before[op]; hook != nil {
		hook(d)
	}
	if err := v.s.failOn[op]; err != nil {
		return err
	}
	if mutates {
		v.s.writes++
	}
	return fn(d)
}

type memRepos struct {
	view memView
}

func (r memRepos) Products() repository.ProductRepository { return memProducts{r.view} }
func (r memRepos) Carts() repository.CartRepository       { return memCarts{r.view} }
func (r memRepos) Orders() repository.OrderRepository     { return memOrders{r.view} }
func (r memRepos) Payments() repository.PaymentRepository { return memPayments{r.view} }
func (r memRepos) WebhookEvents() repository.WebhookEventRepository {
	return memWebhookEvents{r.view}
}
func (r memRepos) Users() repository.UserRepository { return memUsers{r.view} }

type memProducts struct{ v memView }

func (r memProducts) FindByID(_ context.Context, id int64) (*models.Product, error) {
	var out *models.Product
	err := r.v.read("products.find", func(d *memData) error {
		p, ok := d.products[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r memProducts) List(_ context.Context) ([]models.Product, error) {
	var out []models.Product
	err := r.v.read("products.list", func(d *memData) error {
		for _, p := range d.products {
			out = append(out, p)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

func (r memProducts) ListInStock(ctx context.Context) ([]models.Product, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []models.Product
	for _, p := range all {
		if p.Stock > 0 {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProducts) Delete(_ context.Context, id int64) error {
	return r.v.write("products.delete", func(d *memData) error {
		if _, ok := d.products[id]; !ok {
			return repository.ErrNotFound
		}
		for _, o := range d.orders {
			for _, item := range o.Items {
				if item.ProductID == id {
					return repository.ErrReferenced
				}
			}
		}
		for itemID, item := range d.cartItems {
			if item.ProductID == id {
				delete(d.cartItems, itemID)
			}
		}
		delete(d.products, id)
		return nil
	})
}

func (r memProducts) Create(_ context.Context, product *models.Product) error {
	return r.v.write("products.create", func(d *memData) error {
		product.ID = d.id()
		d.products[product.ID] = *product
		return nil
	})
}

func (r memProducts) Update(_ context.Context, product *models.Product) error {
	return r.v.write("products.update", func(d *memData) error {
		p, ok := d.products[product.ID]
		if !ok {
			return repository.ErrNotFound
		}
		p.Name, p.Price = product.Name, product.Price
		d.products[p.ID] = p
		return nil
	})
}

func (r memProducts) DecrementStock(_ context.Context, id int64, quantity int) (int64, error) {
	var affected int64
	err := r.v.write("products.decrement", func(d *memData) error {
		p, ok := d.products[id]
		if ok && p.Stock >= quantity {
			p.Stock -= quantity
			d.products[id] = p
			affected = 1
		}
		return nil
	})
	return affected, err
}

func (r memProducts) IncrementStock(_ context.Context, id int64, quantity int) (int64, error) {
	var affected int64
	err := r.v.write("products.increment", func(d *memData) error {
		p, ok := d.products[id]
		if ok && quantity > 0 {
			p.Stock += quantity
			d.products[id] = p
			affected = 1
		}
		return nil
	})
	return affected, err
}

type memCarts struct{ v memView }

func (r memCarts) FindByUserID(_ context.Context, userID int64) (*models.Cart, error) {
	var out *models.Cart
	err := r.v.read("carts.find", func(d *memData) error {
		for _, c := range d.carts {
			if c.UserID != userID {
				continue
			}
			cart := c
			for _, item := range d.cartItems {
				if item.CartID != cart.ID {
					continue
				}
				p := d.products[item.ProductID]
				item.Product = &p
				cart.Items = append(cart.Items, item)
			}
			sort.Slice(cart.Items, func(i, j int) bool { return cart.Items[i].ID < cart.Items[j].ID })
			out = &cart
			return nil
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r memCarts) Create(_ context.Context, userID int64) (*models.Cart, error) {
	var out *models.Cart
	err := r.v.write("carts.create", func(d *memData) error {
		for _, c := range d.carts {
			if c.UserID == userID {
				out = &c
				return nil
			}
		}
		c := models.Cart{ID: d.id(), UserID: userID, CreatedAt: time.Now()}
		d.carts[c.ID] = c
		out = &c
		return nil
	})
	return out, err
}

func (r memCarts) AddItem(_ context.Context, cartID, productID int64, quantity int) (*models.CartItem, error) {
	var out *models.CartItem
	err := r.v.write("carts.add_item", func(d *memData) error {
		for id, item := range d.cartItems {
			if item.CartID == cartID && item.ProductID == productID {
				item.Quantity += quantity
				d.cartItems[id] = item
				out = &item
				return nil
			}
		}
		item := models.CartItem{ID: d.id(), CartID: cartID, ProductID: productID, Quantity: quantity}
		d.cartItems[item.ID] = item
		out = &item
		return nil
	})
	return out, err
}

func (r memCarts) RemoveItem(_ context.Context, cartID, itemID int64) (int64, error) {
	var removed int64
	err := r.v.write("carts.remove_item", func(d *memData) error {
		if item, ok := d.cartItems[itemID]; ok && item.CartID == cartID {
			delete(d.cartItems, itemID)
			removed = 1
		}
		return nil
	})
	return removed, err
}

func (r memCarts) ClearItems(_ context.Context, cartID int64) error {
	return r.v.write("carts.clear", func(d *memData) error {
		for id, item := range d.cartItems {
			if item.CartID == cartID {
				delete(d.cartItems, id)
			}
		}
		return nil
	})
}

func (r memCarts) Delete(_ context.Context, cartID int64) (int64, error) {
	var removed int64
	err := r.v.write("carts.delete", func(d *memData) error {
		if _, ok := d.carts[cartID]; ok {
			delete(d.carts, cartID)
			removed = 1
		}
		return nil
	})
	return removed, err
}

type memOrders struct{ v memView }

func (r memOrders) Create(_ context.Context, order *models.Order) error {
	return r.v.write("orders.create", func(d *memData) error {
		order.ID = d.id()
		for i := range order.Items {
			order.Items[i].ID = d.id()
			order.Items[i].OrderID = order.ID
		}
		stored := *order
		stored.Items = append([]models.OrderItem(nil), order.Items...)
		stored.Payments = nil
		d.orders[order.ID] = stored
		return nil
	})
}

func (r memOrders) FindByID(_ context.Context, id int64) (*models.Order, error) {
	var out *models.Order
	err := r.v.read("orders.find", func(d *memData) error {
		o, ok := d.orders[id]
		if !ok {
			return repository.ErrNotFound
		}
		o.Items = append([]models.OrderItem(nil), o.Items...)
		out = &o
		return nil
	})
	return out, err
}

func (r memOrders) ListByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	return r.List(ctx, models.OrderFilter{UserID: &userID})
}

func (r memOrders) List(_ context.Context, filter models.OrderFilter) ([]models.Order, error) {
	var out []models.Order
	err := r.v.read("orders.list", func(d *memData) error {
		for _, o := range d.orders {
			if filter.Status != nil && o.Status != *filter.Status {
				continue
			}
			if filter.UserID != nil && o.UserID != *filter.UserID {
				continue
			}
			if filter.From != nil && o.CreatedAt.Before(*filter.From) {
				continue
			}
			if filter.To != nil && o.CreatedAt.After(*filter.To) {
				continue
			}
			o.Items = append([]models.OrderItem(nil), o.Items...)
			out = append(out, o)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
		if filter.Skip >= len(out) {
			out = nil
			return nil
		}
		out = out[filter.Skip:]
		if filter.Take > 0 && filter.Take < len(out) {
			out = out[:filter.Take]
		}
		return nil
	})
	return out, err
}

func (r memOrders) UpdateStatusIf(_ context.Context, id int64, from, to models.OrderStatus, trackingCode *string) (bool, error) {
	moved := false
	err := r.v.write("orders.update_status", func(d *memData) error {
		o, ok := d.orders[id]
		if !ok || o.Status != from {
			return nil
		}
		o.Status = to
		if trackingCode != nil {
			o.TrackingCode = trackingCode
		}
		o.UpdatedAt = time.Now()
		d.orders[id] = o
		moved = true
		return nil
	})
	return moved, err
}

func (r memOrders) AppendStatusHistory(_ context.Context, entry *models.OrderStatusHistory) error {
	return r.v.write("orders.append_history", func(d *memData) error {
		entry.ID = d.id()
		entry.CreatedAt = time.Now()
		d.history = append(d.history, *entry)
		return nil
	})
}

func (r memOrders) StatusHistory(_ context.Context, orderID int64) ([]models.OrderStatusHistory, error) {
	var out []models.OrderStatusHistory
	err := r.v.read("orders.history", func(d *memData) error {
		for _, h := range d.history {
			if h.OrderID == orderID {
				out = append(out, h)
			}
		}
		return nil
	})
	return out, err
}

func countsAsSale(status models.OrderStatus, statuses []models.OrderStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (r memOrders) SalesSummary(_ context.Context, statuses []models.OrderStatus) (models.SalesSummary, error) {
	var summary models.SalesSummary
	err := r.v.read("orders.sales_summary", func(d *memData) error {
		var sold int64
		summary.TotalRevenue = decimal.Zero
		for _, o := range d.orders {
			summary.TotalOrders++
			if countsAsSale(o.Status, statuses) {
				sold++
				summary.TotalRevenue = summary.TotalRevenue.Add(o.Total)
			}
		}
		summary.AvgTicket = decimal.Zero
		if sold > 0 {
			summary.AvgTicket = summary.TotalRevenue.Div(decimal.NewFromInt(sold)).Round(2)
		}
		return nil
	})
	return summary, err
}

func (r memOrders) SalesByDay(_ context.Context, statuses []models.OrderStatus, since time.Time) ([]models.DailySales, error) {
	var out []models.DailySales
	err := r.v.read("orders.sales_by_day", func(d *memData) error {
		byDay := map[time.Time]decimal.Decimal{}
		for _, o := range d.orders {
			if !countsAsSale(o.Status, statuses) || o.CreatedAt.Before(since) {
				continue
			}
			day := o.CreatedAt.UTC().Truncate(24 * time.Hour)
			byDay[day] = byDay[day].Add(o.Total)
		}
		for day, total := range byDay {
			out = append(out, models.DailySales{Date: day, Total: total})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
		return nil
	})
	return out, err
}

func (r memOrders) TopProducts(_ context.Context, statuses []models.OrderStatus, limit int) ([]models.ProductSales, error) {
	var out []models.ProductSales
	err := r.v.read("orders.top_products", func(d *memData) error {
		byProduct := map[int64]*models.ProductSales{}
		for _, o := range d.orders {
			if !countsAsSale(o.Status, statuses) {
				continue
			}
			for _, item := range o.Items {
				ps, ok := byProduct[item.ProductID]
				if !ok {
					ps = &models.ProductSales{ProductID: item.ProductID, ProductName: item.ProductName}
					byProduct[item.ProductID] = ps
				}
				ps.Quantity += int64(item.Quantity)
			}
		}
		for _, ps := range byProduct {
			out = append(out, *ps)
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Quantity != out[j].Quantity {
				return out[i].Quantity > out[j].Quantity
			}
			return out[i].ProductID < out[j].ProductID
		})
		if limit > 0 && len(out) > limit {
			out = out[:limit]
		}
		return nil
	})
	return out, err
}

func (r memOrders) CountByStatus(_ context.Context) ([]models.StatusCount, error) {
	var out []models.StatusCount
	err := r.v.read("orders.count_by_status", func(d *memData) error {
		counts := map[models.OrderStatus]int64{}
		for _, o := range d.orders {
			counts[o.Status]++
		}
		for status, count := range counts {
			out = append(out, models.StatusCount{Status: status, Count: count})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
		return nil
	})
	return out, err
}

type memPayments struct{ v memView }

func (r memPayments) Create(_ context.Context, payment *models.Payment) error {
	return r.v.write("payments.create", func(d *memData) error {
		payment.ID = d.id()
		d.payments[payment.ID] = *payment
		return nil
	})
}

func (r memPayments) FindByID(_ context.Context, id int64) (*models.Payment, error) {
	var out *models.Payment
	err := r.v.read("payments.find", func(d *memData) error {
		p, ok := d.payments[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r memPayments) ListByOrder(ctx context.Context, orderID int64) ([]models.Payment, error) {
	return r.List(ctx, models.PaymentFilter{OrderID: &orderID})
}

func (r memPayments) List(_ context.Context, filter models.PaymentFilter) ([]models.Payment, error) {
	var out []models.Payment
	err := r.v.read("payments.list", func(d *memData) error {
		for _, p := range d.payments {
			if filter.Status != nil && p.Status != *filter.Status {
				continue
			}
			if filter.OrderID != nil && p.OrderID != *filter.OrderID {
				continue
			}
			out = append(out, p)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

func (r memPayments) UpdateStatus(_ context.Context, id int64, status models.PaymentStatus) (bool, error) {
	updated := false
	err := r.v.write("payments.update_status", func(d *memData) error {
		p, ok := d.payments[id]
		if !ok {
			return nil
		}
		p.Status = status
		d.payments[id] = p
		updated = true
		return nil
	})
	return updated, err
}

func (r memPayments) TransitionByOrder(_ context.Context, orderID int64, from, to models.PaymentStatus, transactionCode *string) (int64, error) {
	var affected int64
	err := r.v.write("payments.transition", func(d *memData) error {
		for id, p := range d.payments {
			if p.OrderID != orderID || p.Status != from {
				continue
			}
			p.Status = to
			if transactionCode != nil {
				code := *transactionCode
				p.TransactionCode = &code
			}
			d.payments[id] = p
			affected++
		}
		return nil
	})
	return affected, err
}

type memWebhookEvents struct{ v memView }

func (r memWebhookEvents) Exists(_ context.Context, eventID string) (bool, error) {
	exists := false
	err := r.v.read("webhook_events.exists", func(d *memData) error {
		_, exists = d.events[eventID]
		return nil
	})
	return exists, err
}

func (r memWebhookEvents) Record(_ context.Context, eventID string) (bool, error) {
	inserted := false
	err := r.v.write("webhook_events.record", func(d *memData) error {
		if _, ok := d.events[eventID]; ok {
			return nil
		}
		d.events[eventID] = time.Now()
		inserted = true
		return nil
	})
	return inserted, err
}

type memUsers struct{ v memView }

func (r memUsers) Create(_ context.Context, user *models.User) error {
	return r.v.write("users.create", func(d *memData) error {
		for _, u := range d.users {
			if u.Email == user.Email {
				return repository.ErrDuplicate
			}
		}
		user.ID = d.id()
		user.CreatedAt = time.Now()
		d.users[user.ID] = *user
		return nil
	})
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	var out *models.User
	err := r.v.read("users.find_by_email", func(d *memData) error {
		for _, u := range d.users {
			if u.Email == email {
				out = &u
				return nil
			}
		}
		return repository.ErrNotFound
	})
	return out, err
}

func (r memUsers) FindByID(_ context.Context, id int64) (*models.User, error) {
	var out *models.User
	err := r.v.read("users.find", func(d *memData) error {
		u, ok := d.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r memUsers) List(_ context.Context, filter models.UserFilter) ([]models.User, error) {
	var out []models.User
	err := r.v.read("users.list", func(d *memData) error {
		for _, u := range d.users {
			if filter.Role != nil && u.Role != *filter.Role {
				continue
			}
			if filter.Email != "" && !strings.Contains(strings.ToLower(u.Email), strings.ToLower(filter.Email)) {
				continue
			}
			if filter.Name != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(filter.Name)) {
				continue
			}
			out = append(out, u)
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
		if filter.Skip >= len(out) {
			out = nil
			return nil
		}
		out = out[filter.Skip:]
		if filter.Take > 0 && filter.Take < len(out) {
			out = out[:filter.Take]
		}
		return nil
	})
	return out, err
}

func (r memUsers) Update(_ context.Context, user *models.User) error {
	return r.v.write("users.update", func(d *memData) error {
		stored, ok := d.users[user.ID]
		if !ok {
			return repository.ErrNotFound
		}
		for _, u := range d.users {
			if u.ID != user.ID && u.Email == user.Email {
				return repository.ErrDuplicate
			}
		}
		stored.Name, stored.Email, stored.Role = user.Name, user.Email, user.Role
		d.users[user.ID] = stored
		return nil
	})
}

func (r memUsers) Delete(_ context.Context, id int64) error {
	return r.v.write("users.delete", func(d *memData) error {
		if _, ok := d.users[id]; !ok {
			return repository.ErrNotFound
		}
		owned := map[int64]bool{}
		for orderID, o := range d.orders {
			if o.UserID == id {
				owned[orderID] = true
				delete(d.orders, orderID)
			}
		}
		history := d.history[:0]
		for _, h := range d.history {
			if owned[h.OrderID] {
				continue
			}
			if h.ChangedBy != nil && *h.ChangedBy == id {
				h.ChangedBy = nil
			}
			history = append(history, h)
		}
		d.history = history
		for paymentID, p := range d.payments {
			if p.UserID == id || owned[p.OrderID] {
				delete(d.payments, paymentID)
			}
		}
		for cartID, c := range d.carts {
			if c.UserID != id {
				continue
			}
			for itemID, item := range d.cartItems {
				if item.CartID == cartID {
					delete(d.cartItems, itemID)
				}
			}
			delete(d.carts, cartID)
		}
		delete(d.users, id)
		return nil
	})
}
