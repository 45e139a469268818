// Package memory is an in-process store.Store backed by maps.
//
// It is used by the test suites and by `STORE_DRIVER=memory` local runs.
// Transactions are serialised and rolled back by restoring a snapshot. Writes
// outside a transaction wait for the running one to finish.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"julianmorley.ca/con-plar/storefront/pkg/global"
	"julianmorley.ca/con-plar/storefront/pkg/models"
	"julianmorley.ca/con-plar/storefront/pkg/store"
)

type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	products    map[bson.ObjectID]models.Product
	cart        map[bson.ObjectID]models.CartItem
	orders      map[bson.ObjectID]models.Order
	users       map[bson.ObjectID]models.User
	contacts    map[bson.ObjectID]models.Contact
	newsletters map[bson.ObjectID]models.Newsletter
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		products:    make(map[bson.ObjectID]models.Product),
		cart:        make(map[bson.ObjectID]models.CartItem),
		orders:      make(map[bson.ObjectID]models.Order),
		users:       make(map[bson.ObjectID]models.User),
		contacts:    make(map[bson.ObjectID]models.Contact),
		newsletters: make(map[bson.ObjectID]models.Newsletter),
	}
}

func (s *Store) Products() store.ProductRepository       { return productRepo{s} }
func (s *Store) Cart() store.CartRepository              { return cartRepo{s} }
func (s *Store) Orders() store.OrderRepository           { return orderRepo{s} }
func (s *Store) Users() store.UserRepository             { return userRepo{s} }
func (s *Store) Contacts() store.ContactRepository       { return contactRepo{s} }
func (s *Store) Newsletters() store.NewsletterRepository { return newsletterRepo{s} }

func (s *Store) Transactional() bool { return true }

func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

type snapshot struct {
	products    map[bson.ObjectID]models.Product
	cart        map[bson.ObjectID]models.CartItem
	orders      map[bson.ObjectID]models.Order
	users       map[bson.ObjectID]models.User
	contacts    map[bson.ObjectID]models.Contact
	newsletters map[bson.ObjectID]models.Newsletter
}

type txKey struct{}

// lockWrites holds back a write made outside a transaction until the running
// transaction commits or rolls back, so a rollback cannot erase it.
func (s *Store) lockWrites(ctx context.Context) (unlock func()) {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

// WithTransaction serialises transactions and restores the previous state when
// fn fails. Only writes made with the context passed to fn belong to the
// transaction; a nested call joins the outer one.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snap := snapshot{
		products:    maps.Clone(s.products),
		cart:        maps.Clone(s.cart),
		orders:      maps.Clone(s.orders),
		users:       maps.Clone(s.users),
		contacts:    maps.Clone(s.contacts),
		newsletters: maps.Clone(s.newsletters),
	}
	s.mu.RUnlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.products = snap.products
		s.cart = snap.cart
		s.orders = snap.orders
		s.users = snap.users
		s.contacts = snap.contacts
		s.newsletters = snap.newsletters
		s.mu.Unlock()
		return err
	}
	return nil
}

func notFound(kind string, key interface{}) error {
	return fmt.Errorf("%s %v: %w", kind, key, global.ErrNotFound)
}

// newestFirst sorts by ObjectID descending, which follows creation order.
func newestFirst[T any](items []T, idOf func(T) bson.ObjectID) {
	sort.Slice(items, func(i, j int) bool {
		a, b := idOf(items[i]), idOf(items[j])
		return bytes.Compare(a[:], b[:]) > 0
	})
}

// paginate applies the cursor to a newest-first slice.
func paginate[T any](items []T, req models.PageRequest, defaultSize int, idOf func(T) bson.ObjectID) (models.Page[T], error) {
	after, ok, err := req.After()
	if err != nil {
		return models.Page[T]{}, global.NewValidationFailure("cursor", "invalid cursor", "invalid_format")
	}
	size := req.Size(defaultSize)

	out := make([]T, 0, size+1)
	for _, item := range items {
		id := idOf(item)
		if ok && bytes.Compare(id[:], after[:]) >= 0 {
			continue
		}
		out = append(out, item)
		if len(out) > size {
			break
		}
	}
	return models.NewPage(out, size, idOf), nil
}

func productID(p models.Product) bson.ObjectID { return p.ID }
func orderID(o models.Order) bson.ObjectID     { return o.ID }

// cloneProduct copies the slices and pointers so stored records are never shared.
func cloneProduct(p models.Product) models.Product {
	p.Images = slices.Clone(p.Images)
	p.Tags = slices.Clone(p.Tags)
	p.OriginalPrice = clonePtr(p.OriginalPrice)
	p.Featured = clonePtr(p.Featured)
	p.Rating = clonePtr(p.Rating)
	p.ReviewCount = clonePtr(p.ReviewCount)
	return p
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneOrder(o models.Order) models.Order {
	o.Items = slices.Clone(o.Items)
	return o
}

// Products

type productRepo struct{ s *Store }

func (r productRepo) List(ctx context.Context, filter models.ProductFilter, page models.PageRequest, defaultSize int) (models.Page[models.Product], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var items []models.Product
	for _, p := range r.s.products {
		switch {
		case filter.Category != nil:
			if p.Category != *filter.Category {
				continue
			}
		case filter.Featured != nil:
			if p.IsFeatured() != *filter.Featured {
				continue
			}
		}
		items = append(items, cloneProduct(p))
	}
	newestFirst(items, productID)
	return paginate(items, page, defaultSize, productID)
}

func (r productRepo) Featured(ctx context.Context, limit int) ([]models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := []models.Product{}
	for _, p := range r.s.products {
		if p.IsFeatured() {
			items = append(items, cloneProduct(p))
		}
	}
	newestFirst(items, productID)
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (r productRepo) Get(ctx context.Context, id bson.ObjectID) (*models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, notFound("product", id.Hex())
	}
	p = cloneProduct(p)
	return &p, nil
}

func (r productRepo) InsertMany(ctx context.Context, products []*models.Product) error {
	defer r.s.lockWrites(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range products {
		if p.ID.IsZero() {
			p.ID = bson.NewObjectID()
		}
		p.SetTimestamps()
		r.s.products[p.ID] = cloneProduct(*p)
	}
	return nil
}

func (r productRepo) Update(ctx context.Context, id bson.ObjectID, update models.ProductUpdate) (*models.Product, error) {
	defer r.s.lockWrites(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, notFound("product", id.Hex())
	}
	update.Apply(&p)
	r.s.products[id] = p
	p = cloneProduct(p)
	return &p, nil
}

func (r productRepo) Categories(ctx context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[string]struct{})
	categories := []string{}
	for _, p := range r.s.products {
		if _, dup := seen[p.Category]; dup {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	return categories, nil
}

// Cart

type cartRepo struct{ s *Store }

func (r cartRepo) AddQuantity(ctx context.Context, userID string, productID bson.ObjectID, quantity int) (*models.CartItem, error) {
	defer r.s.lockWrites(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now()
	for id, item := range r.s.cart {
		if item.UserID == userID && item.ProductID == productID {
			item.Quantity += quantity
			item.UpdatedAt = now
			r.s.cart[id] = item
			return &item, nil
		}
	}

	item := models.CartItem{
		ID:        bson.NewObjectID(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.s.cart[item.ID] = item
	return &item, nil
}

func (r cartRepo) Get(ctx context.Context, id bson.ObjectID) (*models.CartItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.cart[id]
	if !ok {
		return nil, notFound("cart item", id.Hex())
	}
	return &item, nil
}

func (r cartRepo) ListByUser(ctx context.Context, userID string) ([]models.CartItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := []models.CartItem{}
	for _, item := range r.s.cart {
		if item.UserID == userID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return bytes.Compare(items[i].ID[:], items[j].ID[:]) < 0
	})
	return items, nil
}

func (r cartRepo) SetQuantity(ctx context.Context, id bson.ObjectID, quantity int) error {
	defer r.s.lockWrites(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.cart[id]
	if !ok {
		return notFound("cart item", id.Hex())
	}
	item.Quantity = quantity
	item.UpdatedAt = time.Now()
	r.s.cart[id] = item
	return nil
}

func (r cartRepo) Delete(ctx context.Context, id bson.ObjectID) error {
	defer r.s.lockWrites(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.cart[id]; !ok {
		return notFound("cart item", id.Hex())
	}
	delete(r.s.cart, id)
	return nil
}

func (r cartRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	defer r.s.lockWrites(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var deleted int64
	for id, item := range r.s.cart {
		if item.UserID == userID {
			delete(r.s.cart, id)
			deleted++
		}
	}
	return deleted, nil
}

// Orders

type orderRepo struct{ s *Store }

func (r orderRepo) Insert(ctx context.Context, order *models.Order) error {
	defer r.s.lockWrites(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.orders {
		if existing.OrderNumber == order.OrderNumber {
			return fmt.Errorf("order number %s: %w", order.OrderNumber, store.ErrDuplicateKey)
		}
	}
	if order.ID.IsZero() {
		order.ID = bson.NewObjectID()
	}
	order.SetTimestamps()
	r.s.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (r orderRepo) Get(ctx context.Context, id bson.ObjectID) (*models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok {
		return nil, notFound("order", id.Hex())
	}
	o = cloneOrder(o)
	return &o, nil
}

func (r orderRepo) GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, o := range r.s.orders {
		if o.OrderNumber == orderNumber {
			o = cloneOrder(o)
			return &o, nil
		}
	}
	return nil, notFound("order", orderNumber)
}

func (r orderRepo) ListByUser(ctx context.Context, userID string, page models.PageRequest, defaultSize int) (models.Page[models.Order], error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var items []models.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			items = append(items, cloneOrder(o))
		}
	}
	newestFirst(items, orderID)
	return paginate(items, page, defaultSize, orderID)
}

func (r orderRepo) UpdateStatus(ctx context.Context, id bson.ObjectID, status models.OrderStatus) error {
	defer r.s.lockWrites(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.orders[id]
	if !ok {
		return notFound("order", id.Hex())
	}
	o.Status = status
	o.UpdatedAt = time.Now()
	r.s.orders[id] = o
	return nil
}

func (r orderRepo) Delete(ctx context.Context, id bson.ObjectID) error {
	defer r.s.lockWrites(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.orders[id]; !ok {
		return notFound("order", id.Hex())
	}
	delete(r.s.orders, id)
	return nil
}

func (r orderRepo) StatusSummaries(ctx context.Context) ([]store.StatusSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byStatus := make(map[models.OrderStatus]*store.StatusSummary)
	for _, o := range r.s.orders {
		sum, ok := byStatus[o.Status]
		if !ok {
			sum = &store.StatusSummary{Status: o.Status}
			byStatus[o.Status] = sum
		}
		sum.Count++
		sum.Revenue += o.Total
	}

	out := []store.StatusSummary{}
	for _, status := range models.OrderStatuses {
		if sum, ok := byStatus[status]; ok {
			out = append(out, *sum)
		}
	}
	return out, nil
}

func (r orderRepo) TopProducts(ctx context.Context, limit int) ([]store.ProductSales, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byProduct := make(map[bson.ObjectID]*store.ProductSales)
	for _, o := range r.s.orders {
		if o.Status == models.OrderStatusCancelled {
			continue
		}
		for _, item := range o.Items {
			sales, ok := byProduct[item.ProductID]
			if !ok {
				sales = &store.ProductSales{ProductID: item.ProductID, Name: item.Name}
				byProduct[item.ProductID] = sales
			}
			sales.Units += item.Quantity
			sales.Revenue += item.Price * float64(item.Quantity)
		}
	}

	out := make([]store.ProductSales, 0, len(byProduct))
	for _, sales := range byProduct {
		out = append(out, *sales)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Units != out[j].Units {
			return out[i].Units > out[j].Units
		}
		return out[i].Revenue > out[j].Revenue
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Users

type userRepo struct{ s *Store }

func (r userRepo) find(userID string) (models.User, bool) {
	for _, u := range r.s.users {
		if u.UserID == userID {
			return u, true
		}
	}
	return models.User{}, false
}

func (r userRepo) GetBySubject(ctx context.Context, userID string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.find(userID)
	if !ok {
		return nil, notFound("user", userID)
	}
	return &u, nil
}

func (r userRepo) Upsert(ctx context.Context, userID string, input models.UserInput) (bson.ObjectID, error) {
	defer r.s.lockWrites(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.find(userID)
	if !ok {
		u = models.User{ID: bson.NewObjectID(), UserID: userID}
	}
	input.Apply(&u)
	r.s.users[u.ID] = u
	return u.ID, nil
}

func (r userRepo) Patch(ctx context.Context, userID string, update models.ProfileUpdate) (bson.ObjectID, error) {
	defer r.s.lockWrites(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.find(userID)
	if !ok {
		return bson.ObjectID{}, notFound("user", userID)
	}
	update.Apply(&u)
	r.s.users[u.ID] = u
	return u.ID, nil
}

// Contacts

type contactRepo struct{ s *Store }

func (r contactRepo) Insert(ctx context.Context, contact *models.Contact) error {
	defer r.s.lockWrites(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if contact.ID.IsZero() {
		contact.ID = bson.NewObjectID()
	}
	r.s.contacts[contact.ID] = *contact
	return nil
}

func (r contactRepo) ListRecent(ctx context.Context, limit int) ([]models.Contact, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := make([]models.Contact, 0, len(r.s.contacts))
	for _, c := range r.s.contacts {
		items = append(items, c)
	}
	newestFirst(items, func(c models.Contact) bson.ObjectID { return c.ID })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Newsletters

type newsletterRepo struct{ s *Store }

func (r newsletterRepo) GetByEmail(ctx context.Context, email string) (*models.Newsletter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, n := range r.s.newsletters {
		if n.Email == email {
			return &n, nil
		}
	}
	return nil, notFound("newsletter subscription", email)
}

func (r newsletterRepo) Insert(ctx context.Context, sub *models.Newsletter) error {
	defer r.s.lockWrites(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, n := range r.s.newsletters {
		if n.Email == sub.Email {
			return fmt.Errorf("newsletter %s: %w", sub.Email, store.ErrDuplicateKey)
		}
	}
	if sub.ID.IsZero() {
		sub.ID = bson.NewObjectID()
	}
	r.s.newsletters[sub.ID] = *sub
	return nil
}

func (r newsletterRepo) Reactivate(ctx context.Context, id bson.ObjectID, subscribedAt time.Time) error {
	defer r.s.lockWrites(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.newsletters[id]
	if !ok {
		return notFound("newsletter subscription", id.Hex())
	}
	n.Active = true
	n.SubscribedAt = subscribedAt
	r.s.newsletters[id] = n
	return nil
}

func (r newsletterRepo) Deactivate(ctx context.Context, id bson.ObjectID) error {
	defer r.s.lockWrites(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n, ok := r.s.newsletters[id]
	if !ok {
		return notFound("newsletter subscription", id.Hex())
	}
	n.Active = false
	r.s.newsletters[id] = n
	return nil
}
