package service

import (
	"context"
	"sync"
	"time"

	"order-lifecycle-service/internal/fallback"
	"order-lifecycle-service/internal/model"
	"order-lifecycle-service/internal/repository"
)

// Fakes en memoria para los tests del paquete.

type memOrderRepo struct {
	mu        sync.Mutex
	orders    []model.Order
	insertErr error
	findErr   error
	findDelay time.Duration
	dupsLeft  int // cuántos Insert seguidos fallan con ErrDuplicate
}

func (m *memOrderRepo) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.orders)), nil
}

func (m *memOrderRepo) Insert(ctx context.Context, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	if m.dupsLeft > 0 {
		m.dupsLeft--
		return repository.ErrDuplicate
	}
	for _, existing := range m.orders {
		if existing.OrderNumber == o.OrderNumber {
			return repository.ErrDuplicate
		}
	}
	m.orders = append(m.orders, *o)
	return nil
}

func (m *memOrderRepo) find(userID, email string) []model.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Order
	for _, o := range m.orders {
		if (userID != "" && o.UserID == userID) || (email != "" && o.CustomerEmail == email) {
			out = append(out, o)
		}
	}
	return out
}

func (m *memOrderRepo) FindByUserOrEmail(ctx context.Context, userID, email string) ([]model.Order, error) {
	if m.findDelay > 0 {
		time.Sleep(m.findDelay)
	}
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.find(userID, email), nil
}

func (m *memOrderRepo) FindSummaries(ctx context.Context, userID, email string) ([]model.OrderSummary, error) {
	if m.findDelay > 0 {
		time.Sleep(m.findDelay)
	}
	if m.findErr != nil {
		return nil, m.findErr
	}
	return model.SummarizeAll(m.find(userID, email)), nil
}

func (m *memOrderRepo) FindByTrackingOrNumber(ctx context.Context, number string) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.TrackingNumber == number || o.OrderNumber == number {
			out := o
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memOrderRepo) UpdateStatus(ctx context.Context, orderNumber, status string) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, o := range m.orders {
		if o.OrderNumber == orderNumber {
			prev := o
			m.orders[i].Status = status
			return &prev, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memOrderRepo) FindAll(ctx context.Context) ([]model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Order(nil), m.orders...), nil
}

type memProductRepo struct {
	mu       sync.Mutex
	products map[string]*model.Product
}

func newMemProductRepo(products ...*model.Product) *memProductRepo {
	m := &memProductRepo{products: map[string]*model.Product{}}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *memProductRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProductRepo) UpdateStock(ctx context.Context, id string, newStock int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Stock = newStock
	return nil
}

type memBroadcaster struct {
	mu     sync.Mutex
	events []model.NotificationEvent
}

func (m *memBroadcaster) Broadcast(ev model.NotificationEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
}

func (m *memBroadcaster) all() []model.NotificationEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.NotificationEvent(nil), m.events...)
}

type memMailer struct {
	mu     sync.Mutex
	orders []model.Order
}

func (m *memMailer) ScheduleOrderEmails(o model.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders = append(m.orders, o)
}

type memFallback struct {
	mu        sync.Mutex
	snapshots map[string]*model.FallbackSnapshot
	writeErr  error
	writes    int
}

func newMemFallback() *memFallback {
	return &memFallback{snapshots: map[string]*model.FallbackSnapshot{}}
}

func (m *memFallback) Write(userID string, summaries []model.OrderSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes++
	m.snapshots[userID] = &model.FallbackSnapshot{
		UserID:     userID,
		CapturedAt: time.Now().UTC(),
		Orders:     summaries,
	}
	return nil
}

func (m *memFallback) Read(userID string) (*model.FallbackSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snapshots[userID]
	if !ok {
		return nil, fallback.ErrNoSnapshot
	}
	return snap, nil
}

func (m *memFallback) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

type memCache struct {
	mu      sync.Mutex
	entries map[string][]model.OrderSummary
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]model.OrderSummary{}}
}

func (m *memCache) Get(key string) ([]model.OrderSummary, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.entries[key]
	return s, ok
}

func (m *memCache) Set(key string, s []model.OrderSummary) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = s
}
