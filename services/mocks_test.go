package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"shop-backend/models"
	"shop-backend/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// fakeBackend is an in-memory stand-in for the Postgres store. Begin
// serializes transactions the way row locks do in production, and Rollback
// restores a snapshot taken at Begin, so the all-or-nothing tests exercise
// real transactional behavior. The fake repositories (fakeProducts,
// fakeCarts, fakeOrders, fakeUsers) all share its state.
type fakeBackend struct {
	txMu sync.Mutex
	mu   sync.Mutex

	state    *fakeState
	snapshot *fakeState

	// decrementLog records the product IDs handed to DecrementIfAvailable
	// in call order. It lives outside fakeState on purpose: a rollback must
	// not erase the record of which rows a transaction tried to lock.
	decrementLog []int
}

type fakeState struct {
	nextID       int
	users        map[int]models.User
	addresses    map[int]models.Address
	products     map[int]models.Product
	carts        map[int]models.Cart
	cartItems    map[int]models.CartItem
	orders       map[int]models.Order
	orderItems   map[int][]models.OrderItem
	transactions []models.PaymentTransaction
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{state: &fakeState{
		users:      map[int]models.User{},
		addresses:  map[int]models.Address{},
		products:   map[int]models.Product{},
		carts:      map[int]models.Cart{},
		cartItems:  map[int]models.CartItem{},
		orders:     map[int]models.Order{},
		orderItems: map[int][]models.OrderItem{},
	}}
}

func (s *fakeState) clone() *fakeState {
	c := &fakeState{
		nextID:       s.nextID,
		users:        make(map[int]models.User, len(s.users)),
		addresses:    make(map[int]models.Address, len(s.addresses)),
		products:     make(map[int]models.Product, len(s.products)),
		carts:        make(map[int]models.Cart, len(s.carts)),
		cartItems:    make(map[int]models.CartItem, len(s.cartItems)),
		orders:       make(map[int]models.Order, len(s.orders)),
		orderItems:   make(map[int][]models.OrderItem, len(s.orderItems)),
		transactions: append([]models.PaymentTransaction{}, s.transactions...),
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.addresses {
		c.addresses[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.carts {
		if v.UserID != nil {
			id := *v.UserID
			v.UserID = &id
		}
		if v.GuestSessionID != nil {
			sid := *v.GuestSessionID
			v.GuestSessionID = &sid
		}
		v.Items = nil
		c.carts[k] = v
	}
	for k, v := range s.cartItems {
		c.cartItems[k] = v
	}
	for k, v := range s.orders {
		v.Items = nil
		c.orders[k] = v
	}
	for k, v := range s.orderItems {
		c.orderItems[k] = append([]models.OrderItem{}, v...)
	}
	return c
}

func (b *fakeBackend) id() int {
	b.state.nextID++
	return b.state.nextID
}

// Raw query methods exist only to satisfy the DBTX interface; the fake
// repositories never touch SQL.
func (b *fakeBackend) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	panic("fakeBackend: raw SQL not supported")
}

func (b *fakeBackend) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("fakeBackend: raw SQL not supported")
}

func (b *fakeBackend) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("fakeBackend: raw SQL not supported")
}

func (b *fakeBackend) Begin(context.Context) (repositories.Tx, error) {
	b.txMu.Lock()
	b.mu.Lock()
	b.snapshot = b.state.clone()
	b.mu.Unlock()
	return &fakeTx{backend: b}, nil
}

type fakeTx struct {
	backend *fakeBackend
	done    bool
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return t.backend.Exec(ctx, sql, args...)
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return t.backend.Query(ctx, sql, args...)
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return t.backend.QueryRow(ctx, sql, args...)
}

func (t *fakeTx) Commit(context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.backend.mu.Lock()
	t.backend.snapshot = nil
	t.backend.mu.Unlock()
	t.backend.txMu.Unlock()
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.backend.mu.Lock()
	t.backend.state = t.backend.snapshot
	t.backend.snapshot = nil
	t.backend.mu.Unlock()
	t.backend.txMu.Unlock()
	return nil
}

// ---- seeding helpers ----

func (b *fakeBackend) seedProduct(name string, price string, stock int) models.Product {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := models.Product{
		ID:       b.id(),
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
	}
	b.state.products[p.ID] = p
	return p
}

func (b *fakeBackend) seedUser(email string) models.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := models.User{ID: b.id(), Email: email, Role: "customer", FullName: "Test User"}
	b.state.users[u.ID] = u
	return u
}

func (b *fakeBackend) seedAddress(userID int) models.Address {
	b.mu.Lock()
	defer b.mu.Unlock()
	a := models.Address{ID: b.id(), UserID: userID, Label: "home", Line1: "12 Lake Road", City: "Dhaka"}
	b.state.addresses[a.ID] = a
	return a
}

func (b *fakeBackend) productStock(id int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.products[id].Stock
}

func (b *fakeBackend) cartCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.state.carts)
}

func (b *fakeBackend) orderCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.state.orders)
}

func (b *fakeBackend) transactionCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.state.transactions)
}

func (b *fakeBackend) decrementOrder() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]int{}, b.decrementLog...)
}

// ---- ProductRepository ----

type fakeProducts struct{ b *fakeBackend }

func (f fakeProducts) GetByID(ctx context.Context, db repositories.DBTX, id int) (*models.Product, error) {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	p, ok := f.b.state.products[id]
	if !ok || !p.IsActive {
		return nil, models.NewNotFoundError("product")
	}
	return &p, nil
}

func (f fakeProducts) List(ctx context.Context, db repositories.DBTX, page, limit int) ([]models.Product, int, error) {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	all := []models.Product{}
	for _, p := range f.b.state.products {
		if p.IsActive {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (f fakeProducts) Create(ctx context.Context, db repositories.DBTX, product *models.Product) error {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	product.ID = f.b.id()
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	f.b.state.products[product.ID] = *product
	return nil
}

func (f fakeProducts) Update(ctx context.Context, db repositories.DBTX, product *models.Product) error {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	if _, ok := f.b.state.products[product.ID]; !ok {
		return models.NewNotFoundError("product")
	}
	f.b.state.products[product.ID] = *product
	return nil
}

func (f fakeProducts) Deactivate(ctx context.Context, db repositories.DBTX, id int) error {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	p, ok := f.b.state.products[id]
	if !ok {
		return models.NewNotFoundError("product")
	}
	p.IsActive = false
	f.b.state.products[id] = p
	return nil
}

func (f fakeProducts) CheckAvailable(ctx context.Context, db repositories.DBTX, productID, quantity int) (models.StockCheck, error) {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	p, ok := f.b.state.products[productID]
	if !ok || !p.IsActive {
		return models.StockCheck{}, models.NewNotFoundError("product")
	}
	return models.StockCheck{ProductID: productID, Available: p.Stock >= quantity, CurrentStock: p.Stock}, nil
}

func (f fakeProducts) DecrementIfAvailable(ctx context.Context, db repositories.DBTX, productID, quantity int) (int, error) {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	f.b.decrementLog = append(f.b.decrementLog, productID)
	p, ok := f.b.state.products[productID]
	if !ok || !p.IsActive {
		return 0, models.NewNotFoundError("product")
	}
	if p.Stock < quantity {
		return 0, &models.InsufficientStockError{ProductID: productID, Requested: quantity, Available: p.Stock}
	}
	p.Stock -= quantity
	f.b.state.products[productID] = p
	return p.Stock, nil
}

// ---- CartRepository ----

type fakeCarts struct{ b *fakeBackend }

func ownerMatches(c models.Cart, owner models.CartOwner) bool {
	if owner.UserID != nil {
		return c.UserID != nil && *c.UserID == *owner.UserID
	}
	return c.GuestSessionID != nil && *c.GuestSessionID == *owner.GuestSessionID
}

func (f fakeCarts) findByOwnerLocked(owner models.CartOwner) (*models.Cart, error) {
	now := time.Now()
	for _, c := range f.b.state.carts {
		if ownerMatches(c, owner) && c.ExpiresAt.After(now) {
			return &c, nil
		}
	}
	return nil, models.NewNotFoundError("cart")
}

func (f fakeCarts) GetByOwner(ctx context.Context, db repositories.DBTX, owner models.CartOwner) (*models.Cart, error) {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	return f.findByOwnerLocked(owner)
}

func (f fakeCarts) GetByID(ctx context.Context, db repositories.DBTX, cartID int) (*models.Cart, error) {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	c, ok := f.b.state.carts[cartID]
	if !ok || !c.ExpiresAt.After(time.Now()) {
		return nil, models.NewNotFoundError("cart")
	}
	return &c, nil
}

func (f fakeCarts) Create(ctx context.Context, db repositories.DBTX, owner models.CartOwner, expiresAt time.Time) (*models.Cart, error) {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	now := time.Now()
	for id, c := range f.b.state.carts {
		if !ownerMatches(c, owner) {
			continue
		}
		if c.ExpiresAt.After(now) {
			// One live cart per owner, like the partial unique index.
			return nil, &pgconn.PgError{Code: "23505"}
		}
		f.deleteCartLocked(id)
	}
	c := models.Cart{ID: f.b.id(), ExpiresAt: expiresAt, CreatedAt: now, UpdatedAt: now}
	if owner.UserID != nil {
		id := *owner.UserID
		c.UserID = &id
	}
	if owner.GuestSessionID != nil {
		sid := *owner.GuestSessionID
		c.GuestSessionID = &sid
	}
	f.b.state.carts[c.ID] = c
	return &c, nil
}

func (f fakeCarts) Lock(ctx context.Context, db repositories.DBTX, cartID int) (*models.Cart, error) {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	c, ok := f.b.state.carts[cartID]
	if !ok || !c.ExpiresAt.After(time.Now()) {
		return nil, models.NewNotFoundError("cart")
	}
	c.Version++
	f.b.state.carts[cartID] = c
	return &c, nil
}

func (f fakeCarts) LockByOwner(ctx context.Context, db repositories.DBTX, owner models.CartOwner) (*models.Cart, error) {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	c, err := f.findByOwnerLocked(owner)
	if err != nil {
		return nil, err
	}
	locked := f.b.state.carts[c.ID]
	locked.Version++
	f.b.state.carts[c.ID] = locked
	return &locked, nil
}

func (f fakeCarts) Touch(ctx context.Context, db repositories.DBTX, cartID int, expiresAt time.Time) error {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	c, ok := f.b.state.carts[cartID]
	if !ok {
		return models.NewNotFoundError("cart")
	}
	c.ExpiresAt = expiresAt
	c.UpdatedAt = time.Now()
	f.b.state.carts[cartID] = c
	return nil
}

func (f fakeCarts) Delete(ctx context.Context, db repositories.DBTX, cartID int) error {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	f.deleteCartLocked(cartID)
	return nil
}

func (f fakeCarts) deleteCartLocked(cartID int) {
	for id, it := range f.b.state.cartItems {
		if it.CartID == cartID {
			delete(f.b.state.cartItems, id)
		}
	}
	delete(f.b.state.carts, cartID)
}

func (f fakeCarts) DeleteExpired(ctx context.Context, db repositories.DBTX, now time.Time) (int64, error) {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	var n int64
	for id, c := range f.b.state.carts {
		if !c.ExpiresAt.After(now) {
			f.deleteCartLocked(id)
			n++
		}
	}
	return n, nil
}

func (f fakeCarts) ListItems(ctx context.Context, db repositories.DBTX, cartID int) ([]models.CartItem, error) {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	items := []models.CartItem{}
	for _, it := range f.b.state.cartItems {
		if it.CartID == cartID {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (f fakeCarts) CountItems(ctx context.Context, db repositories.DBTX, cartID int) (int, error) {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	n := 0
	for _, it := range f.b.state.cartItems {
		if it.CartID == cartID {
			n++
		}
	}
	return n, nil
}

func (f fakeCarts) GetItem(ctx context.Context, db repositories.DBTX, cartID, itemID int) (*models.CartItem, error) {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	it, ok := f.b.state.cartItems[itemID]
	if !ok || it.CartID != cartID {
		return nil, models.NewNotFoundError("cart item")
	}
	return &it, nil
}

func (f fakeCarts) UpsertItem(ctx context.Context, db repositories.DBTX, cartID, productID, quantity int, unitPrice decimal.Decimal) (*models.CartItem, error) {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	for id, it := range f.b.state.cartItems {
		if it.CartID == cartID && it.ProductID == productID {
			it.Quantity += quantity
			it.UnitPrice = unitPrice
			it.UpdatedAt = time.Now()
			f.b.state.cartItems[id] = it
			return &it, nil
		}
	}
	now := time.Now()
	it := models.CartItem{
		ID: f.b.id(), CartID: cartID, ProductID: productID,
		Quantity: quantity, UnitPrice: unitPrice, CreatedAt: now, UpdatedAt: now,
	}
	f.b.state.cartItems[it.ID] = it
	return &it, nil
}

func (f fakeCarts) SetItemQuantity(ctx context.Context, db repositories.DBTX, itemID, quantity int) error {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	it, ok := f.b.state.cartItems[itemID]
	if !ok {
		return models.NewNotFoundError("cart item")
	}
	it.Quantity = quantity
	f.b.state.cartItems[itemID] = it
	return nil
}

func (f fakeCarts) RefreshItemPrice(ctx context.Context, db repositories.DBTX, itemID int, unitPrice decimal.Decimal) error {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	it, ok := f.b.state.cartItems[itemID]
	if !ok {
		return models.NewNotFoundError("cart item")
	}
	it.UnitPrice = unitPrice
	f.b.state.cartItems[itemID] = it
	return nil
}

func (f fakeCarts) MoveItem(ctx context.Context, db repositories.DBTX, itemID, toCartID int) error {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	it, ok := f.b.state.cartItems[itemID]
	if !ok {
		return models.NewNotFoundError("cart item")
	}
	it.CartID = toCartID
	f.b.state.cartItems[itemID] = it
	return nil
}

func (f fakeCarts) DeleteItem(ctx context.Context, db repositories.DBTX, itemID int) error {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	if _, ok := f.b.state.cartItems[itemID]; !ok {
		return models.NewNotFoundError("cart item")
	}
	delete(f.b.state.cartItems, itemID)
	return nil
}

func (f fakeCarts) ClearItems(ctx context.Context, db repositories.DBTX, cartID int) error {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	for id, it := range f.b.state.cartItems {
		if it.CartID == cartID {
			delete(f.b.state.cartItems, id)
		}
	}
	return nil
}

// ---- OrderRepository ----

type fakeOrders struct{ b *fakeBackend }

func (f fakeOrders) Insert(ctx context.Context, db repositories.DBTX, order *models.Order) error {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	if order.IdempotencyKey != "" {
		for _, o := range f.b.state.orders {
			if o.UserID == order.UserID && o.IdempotencyKey == order.IdempotencyKey {
				return &pgconn.PgError{Code: "23505"}
			}
		}
	}
	order.ID = f.b.id()
	order.CreatedAt = time.Now()
	f.b.state.orders[order.ID] = *order
	return nil
}

func (f fakeOrders) InsertItems(ctx context.Context, db repositories.DBTX, orderID int, items []models.OrderItem) error {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	for i := range items {
		items[i].ID = f.b.id()
		items[i].OrderID = orderID
	}
	f.b.state.orderItems[orderID] = append([]models.OrderItem{}, items...)
	return nil
}

func (f fakeOrders) InsertTransaction(ctx context.Context, db repositories.DBTX, t *models.PaymentTransaction) error {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	t.ID = f.b.id()
	t.CreatedAt = time.Now()
	f.b.state.transactions = append(f.b.state.transactions, *t)
	return nil
}

func (f fakeOrders) GetByID(ctx context.Context, db repositories.DBTX, orderID int) (*models.Order, error) {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	o, ok := f.b.state.orders[orderID]
	if !ok {
		return nil, models.NewNotFoundError("order")
	}
	o.Items = append([]models.OrderItem{}, f.b.state.orderItems[orderID]...)
	return &o, nil
}

func (f fakeOrders) GetByIdempotencyKey(ctx context.Context, db repositories.DBTX, userID int, key string) (*models.Order, error) {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	for _, o := range f.b.state.orders {
		if o.UserID == userID && o.IdempotencyKey == key {
			o.Items = append([]models.OrderItem{}, f.b.state.orderItems[o.ID]...)
			return &o, nil
		}
	}
	return nil, models.NewNotFoundError("order")
}

func (f fakeOrders) List(ctx context.Context, db repositories.DBTX, filter models.OrderFilter) ([]models.Order, int, error) {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	all := []models.Order{}
	for _, o := range f.b.state.orders {
		if filter.UserID > 0 && o.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		all = append(all, o)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := len(all)
	start := (filter.Page - 1) * filter.Limit
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (f fakeOrders) LockStatus(ctx context.Context, db repositories.DBTX, orderID int) (models.OrderStatus, error) {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	o, ok := f.b.state.orders[orderID]
	if !ok {
		return "", models.NewNotFoundError("order")
	}
	return o.Status, nil
}

func (f fakeOrders) UpdateStatus(ctx context.Context, db repositories.DBTX, orderID int, status models.OrderStatus, notes *string, stampedAt time.Time) error {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	o, ok := f.b.state.orders[orderID]
	if !ok {
		return models.NewNotFoundError("order")
	}
	o.Status = status
	if notes != nil {
		o.Notes = notes
	}
	switch status {
	case models.OrderConfirmed:
		o.ConfirmedAt = &stampedAt
	case models.OrderShipped:
		o.ShippedAt = &stampedAt
	case models.OrderDelivered:
		o.DeliveredAt = &stampedAt
	}
	f.b.state.orders[orderID] = o
	return nil
}

// ---- UserRepository ----

type fakeUsers struct{ b *fakeBackend }

func (f fakeUsers) FindByID(ctx context.Context, db repositories.DBTX, id int) (*models.User, error) {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	u, ok := f.b.state.users[id]
	if !ok {
		return nil, models.NewNotFoundError("user")
	}
	return &u, nil
}

func (f fakeUsers) FindByEmail(ctx context.Context, db repositories.DBTX, email string) (*models.User, error) {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	for _, u := range f.b.state.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, models.NewNotFoundError("user")
}

func (f fakeUsers) Create(ctx context.Context, db repositories.DBTX, user *models.User) error {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	user.ID = f.b.id()
	user.CreatedAt = time.Now()
	f.b.state.users[user.ID] = *user
	return nil
}

func (f fakeUsers) GetAddress(ctx context.Context, db repositories.DBTX, addressID int) (*models.Address, error) {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	a, ok := f.b.state.addresses[addressID]
	if !ok {
		return nil, models.NewNotFoundError("address")
	}
	return &a, nil
}

func (f fakeUsers) ListAddresses(ctx context.Context, db repositories.DBTX, userID int) ([]models.Address, error) {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	out := []models.Address{}
	for _, a := range f.b.state.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f fakeUsers) CreateAddress(ctx context.Context, db repositories.DBTX, address *models.Address) error {
	f.b.mu.Lock()
	defer f.b.mu.Unlock()
	address.ID = f.b.id()
	f.b.state.addresses[address.ID] = *address
	return nil
}

// ---- service wiring helpers ----

func testPricing() *PricingEngine {
	return NewPricingEngine(
		decimal.RequireFromString("0.15"),
		decimal.RequireFromString("100"),
		decimal.Zero,
	)
}

func newTestCartService(b *fakeBackend) *CartService {
	return NewCartService(
		b, fakeCarts{b}, fakeProducts{b},
		testPricing(), NoDiscount{}, NewCartCache(nil),
		time.Hour, 0,
	)
}

func newTestOrderService(b *fakeBackend, notifier OrderNotifier) *OrderService {
	return NewOrderService(
		b, fakeOrders{b}, fakeProducts{b}, fakeUsers{b}, fakeCarts{b},
		testPricing(), NoDiscount{}, NewCartCache(nil), notifier,
	)
}

// memoryCartCache is a map-backed CartCache for tests that need cache hits
// to actually happen, unlike the noop cache the other tests wire in.
type memoryCartCache struct {
	mu      sync.Mutex
	entries map[string]*models.CartView
}

func newMemoryCartCache() *memoryCartCache {
	return &memoryCartCache{entries: map[string]*models.CartView{}}
}

func (c *memoryCartCache) Get(ctx context.Context, key string) (*models.CartView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	view, ok := c.entries[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return view, nil
}

func (c *memoryCartCache) Set(ctx context.Context, key string, view *models.CartView) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = view
	return nil
}

func (c *memoryCartCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	orders []string
}

func (n *recordingNotifier) NotifyOrderCreated(order *models.Order, email string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, order.OrderNumber)
}
