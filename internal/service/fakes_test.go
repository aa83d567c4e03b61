package service

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/max-strong-1/-milestone-voice-agent/internal/lib/logger"
	"github.com/max-strong-1/-milestone-voice-agent/internal/model"
	"github.com/max-strong-1/-milestone-voice-agent/internal/repository/cache"
	"github.com/max-strong-1/-milestone-voice-agent/internal/repository/postgres"
)

var errUpstream = errors.New("store unavailable")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fakeSource — каталог в памяти со счётчиком обращений
type fakeSource struct {
	mu       sync.Mutex
	products []model.CatalogItem
	tags     map[string]int64
	byTag    map[int64][]model.CatalogItem
	fail     bool
	calls    map[string]int
}

func newFakeSource(products ...model.CatalogItem) *fakeSource {
	return &fakeSource{
		products: products,
		tags:     map[string]int64{},
		byTag:    map[int64][]model.CatalogItem{},
		calls:    map[string]int{},
	}
}

func (f *fakeSource) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeSource) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *fakeSource) hit(method string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[method]++
	return f.fail
}

func (f *fakeSource) ProductBySKU(_ context.Context, sku string) (*model.CatalogItem, error) {
	if f.hit("ProductBySKU") {
		return nil, errUpstream
	}
	for _, p := range f.products {
		if p.SKU == sku {
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) ProductByID(_ context.Context, id int64) (*model.CatalogItem, error) {
	if f.hit("ProductByID") {
		return nil, errUpstream
	}
	for _, p := range f.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) ProductsByTag(_ context.Context, tagID int64) ([]model.CatalogItem, error) {
	if f.hit("ProductsByTag") {
		return nil, errUpstream
	}
	return f.byTag[tagID], nil
}

func (f *fakeSource) TagIDByRegion(_ context.Context, zip string) (int64, bool, error) {
	if f.hit("TagIDByRegion") {
		return 0, false, errUpstream
	}
	id, ok := f.tags[zip]
	return id, ok, nil
}

// fakeStore — магазин заказов в памяти
type fakeStore struct {
	createErr error
	updateErr error
	created   []model.PendingOrder
	updates   map[int64]model.OrderUpdate
	nextID    int64
	updateKey string // ключ, который магазин вернёт после обновления
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1001, updates: map[int64]model.OrderUpdate{}}
}

func (f *fakeStore) CreateOrder(_ context.Context, order model.PendingOrder) (model.OrderRef, error) {
	if f.createErr != nil {
		return model.OrderRef{}, f.createErr
	}
	f.created = append(f.created, order)
	ref := model.OrderRef{ID: f.nextID, Key: "wc_order_abc"}
	f.nextID++
	return ref, nil
}

func (f *fakeStore) UpdateOrder(_ context.Context, id int64, update model.OrderUpdate) (model.OrderRef, error) {
	if f.updateErr != nil {
		return model.OrderRef{}, f.updateErr
	}
	f.updates[id] = update
	return model.OrderRef{ID: id, Key: f.updateKey}, nil
}

// fakeSessions — хранилище сессий в памяти
type fakeSessions struct {
	byID    map[string]model.CheckoutSession
	updated []int64
	err     error
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byID: map[string]model.CheckoutSession{}}
}

func (f *fakeSessions) SaveSession(_ context.Context, s model.CheckoutSession) error {
	if f.err != nil {
		return f.err
	}
	f.byID[s.SessionID] = s
	return nil
}

func (f *fakeSessions) GetSession(_ context.Context, sessionID string) (model.CheckoutSession, error) {
	if f.err != nil {
		return model.CheckoutSession{}, f.err
	}
	s, ok := f.byID[sessionID]
	if !ok {
		return model.CheckoutSession{}, postgres.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessions) MarkUpdated(_ context.Context, orderID int64, _ string) error {
	f.updated = append(f.updated, orderID)
	return f.err
}

// fakePublisher запоминает опубликованные события
type fakePublisher struct {
	events []model.OrderEvent
	err    error
}

func (f *fakePublisher) PublishOrderEvent(_ context.Context, event model.OrderEvent) error {
	f.events = append(f.events, event)
	return f.err
}

func limestone() model.CatalogItem {
	return model.CatalogItem{
		ID:            42,
		SKU:           "OHMS-6",
		Name:          "#57 Limestone | STONE DELIVERY | Columbus",
		Price:         dec("42.50"),
		Density:       model.DefaultDensity,
		TruckCapacity: model.DefaultTruckCapacity,
		MinimumOrder:  model.DefaultMinimumOrder,
	}
}

func topsoil() model.CatalogItem {
	return model.CatalogItem{ID: 7, SKU: "TOP-1", Name: "Screened Topsoil", Price: dec("50")}
}

type harness struct {
	source   *fakeSource
	store    *fakeStore
	sessions *fakeSessions
	events   *fakePublisher
	cache    *cache.CatalogCache
	resolver *CatalogResolver
	engine   *CartEngine
	orders   *OrderLifecycle
	svc      *CheckoutService
}

func newHarness(products ...model.CatalogItem) *harness {
	h := &harness{
		source:   newFakeSource(products...),
		store:    newFakeStore(),
		sessions: newFakeSessions(),
		events:   &fakePublisher{},
		cache:    cache.NewCatalogCache(cache.DefaultTTLs(), nil),
	}
	log := logger.Discard()
	h.resolver = NewCatalogResolver(h.source, h.cache, log)
	h.engine = NewCartEngine(h.resolver, DefaultTaxRate, log)
	h.engine.newSessionID = func() string { return "session_test" }
	h.orders = NewOrderLifecycle(h.store, h.resolver, h.sessions, h.events, OrderLifecycleConfig{
		BaseURL:      "https://milestonetrucks.com/",
		CreatedBy:    "voice_agent_robert",
		DefaultState: "OH",
	}, log)
	h.svc = NewCheckoutService(h.engine, h.orders, h.resolver, h.cache, log)
	return h
}
