package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/max-strong-1/-milestone-voice-agent/internal/metrics"
	"github.com/max-strong-1/-milestone-voice-agent/internal/model"
	"github.com/max-strong-1/-milestone-voice-agent/internal/repository/postgres"
)

// ключи мета-полей черновика заказа
const (
	metaSession     = "_voice_agent_session"
	metaCreatedBy   = "_created_by"
	metaDeliveryZip = "_delivery_zip"
)

var errNoOrderableItems = errors.New("no cart item maps to a store product")

// OrderLifecycleConfig — настройки черновиков заказа
type OrderLifecycleConfig struct {
	BaseURL      string // адрес магазина для ссылок на оплату
	CreatedBy    string
	DefaultState string
}

// OrderLifecycle ведёт черновик заказа, который живёт между репликами разговора
// все сбои магазина здесь некритичны: корзина и данные клиента возвращаются в любом случае
type OrderLifecycle struct {
	store    OrderStore
	resolver ItemResolver
	sessions SessionRepository // может быть nil, если учёт сессий выключен
	events   EventPublisher    // может быть nil, если kafka не настроена
	cfg      OrderLifecycleConfig
	log      *slog.Logger
}

// NewOrderLifecycle создаёт менеджер черновиков заказа
func NewOrderLifecycle(
	store OrderStore,
	resolver ItemResolver,
	sessions SessionRepository,
	events EventPublisher,
	cfg OrderLifecycleConfig,
	log *slog.Logger,
) *OrderLifecycle {
	return &OrderLifecycle{
		store:    store,
		resolver: resolver,
		sessions: sessions,
		events:   events,
		cfg:      cfg,
		log:      log,
	}
}

// CreatePendingOrder сохраняет корзину как заказ в статусе pending
// при ошибке магазина возвращает исход со статусом none, а не ошибку
func (m *OrderLifecycle) CreatePendingOrder(ctx context.Context, cart model.Cart) model.OrderOutcome {
	const op = "service.OrderLifecycle.CreatePendingOrder"
	log := m.log.With(slog.String("op", op), slog.String("session_id", cart.SessionID))

	// 1. Переводим позиции в id товаров магазина, при необходимости ищем по sku
	lineItems := make([]model.OrderLineItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		productID := item.ProductID
		if productID == 0 && item.SKU != "" {
			if product, ok := m.resolver.ResolveBySKU(ctx, item.SKU); ok {
				productID = product.ID
			}
		}
		if productID == 0 {
			log.Warn("cart item has no store product, left out of order", slog.String("item", item.Identifier()))
			continue
		}
		lineItems = append(lineItems, model.OrderLineItem{ProductID: productID, Quantity: item.Quantity})
	}
	if len(lineItems) == 0 {
		log.Warn("pending order not created", slog.String("error", errNoOrderableItems.Error()))
		return model.OrderOutcome{Status: model.OrderNone, Failure: errNoOrderableItems}
	}

	order := model.PendingOrder{
		Status:    "pending",
		LineItems: lineItems,
		Meta: []model.MetaEntry{
			{Key: metaSession, Value: cart.SessionID},
			{Key: metaCreatedBy, Value: m.cfg.CreatedBy},
			{Key: metaDeliveryZip, Value: cart.RegionZip},
		},
	}
	if cart.HasDelivery() {
		order.ShippingLines = []model.ShippingLine{{
			MethodID:    "flat_rate",
			MethodTitle: "Truck Delivery",
			Total:       cart.Totals.DeliveryFee.StringFixed(2),
		}}
	}

	// 2. Создаём заказ в магазине
	ref, err := m.store.CreateOrder(ctx, order)
	metrics.OrderOperation("create", err == nil)
	if err != nil {
		log.Error("failed to create pending order, continuing without it", slog.String("error", err.Error()))
		return model.OrderOutcome{Status: model.OrderNone, Failure: fmt.Errorf("%s: %w", op, err)}
	}

	log = log.With(slog.Int64("order_id", ref.ID))
	log.Info("pending order created")

	// 3. Запоминаем ссылку и сообщаем о заказе, оба шага best-effort
	now := time.Now().UTC()
	m.saveSession(ctx, log, model.CheckoutSession{
		SessionID:   cart.SessionID,
		OrderID:     ref.ID,
		OrderKey:    ref.Key,
		DeliveryZip: cart.RegionZip,
		Status:      model.OrderPendingCreated,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	m.publish(ctx, log, model.OrderEvent{
		Type:        model.OrderEventCreated,
		OrderID:     ref.ID,
		SessionID:   cart.SessionID,
		DeliveryZip: cart.RegionZip,
		GrandTotal:  cart.Totals.GrandTotal.InexactFloat64(),
		OccurredAt:  now,
	})

	return model.OrderOutcome{
		Status:      model.OrderPendingCreated,
		Ref:         &ref,
		CheckoutURL: BuildCheckoutURL(m.cfg.BaseURL, ref.ID, ref.Key),
	}
}

// AttachCustomerInfo дописывает данные клиента в черновик заказа
// при сбое магазина ключ заказа не меняется, а ссылка на оплату становится общей
func (m *OrderLifecycle) AttachCustomerInfo(ctx context.Context, orderID int64, orderKey string, req model.CheckoutRequest) (model.OrderOutcome, model.CustomerData) {
	const op = "service.OrderLifecycle.AttachCustomerInfo"
	log := m.log.With(slog.String("op", op), slog.Int64("order_id", orderID))

	update, customer := BuildOrderUpdate(req, m.cfg.DefaultState)

	unchanged := model.OrderOutcome{
		Status:      model.OrderPendingCreated,
		Ref:         &model.OrderRef{ID: orderID, Key: orderKey},
		CheckoutURL: BuildCheckoutURL(m.cfg.BaseURL, 0, ""),
	}

	ref, err := m.store.UpdateOrder(ctx, orderID, update)
	metrics.OrderOperation("update", err == nil)
	if err != nil {
		log.Error("failed to update order with customer info, using generic checkout", slog.String("error", err.Error()))
		unchanged.Failure = fmt.Errorf("%s: %w", op, err)
		return unchanged, customer
	}

	if ref.ID == 0 {
		ref.ID = orderID
	}
	if ref.Key == "" {
		ref.Key = orderKey
	}
	log.Info("order updated with customer info")

	if m.sessions != nil {
		if err := m.sessions.MarkUpdated(ctx, ref.ID, ref.Key); err != nil {
			log.Warn("failed to mark checkout session updated", slog.String("error", err.Error()))
		}
	}
	m.publish(ctx, log, model.OrderEvent{
		Type:        model.OrderEventCustomerInfo,
		OrderID:     ref.ID,
		DeliveryZip: customer.ZipCode,
		OccurredAt:  time.Now().UTC(),
	})

	return model.OrderOutcome{
		Status:      model.OrderPendingUpdated,
		Ref:         &ref,
		CheckoutURL: BuildCheckoutURL(m.cfg.BaseURL, ref.ID, ref.Key),
	}, customer
}

// SessionOrder возвращает черновик заказа, привязанный к сессии разговора
func (m *OrderLifecycle) SessionOrder(ctx context.Context, sessionID string) (model.CheckoutSession, error) {
	const op = "service.OrderLifecycle.SessionOrder"

	if m.sessions == nil || strings.TrimSpace(sessionID) == "" {
		return model.CheckoutSession{}, fmt.Errorf("%s: %w", op, postgres.ErrSessionNotFound)
	}
	session, err := m.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return model.CheckoutSession{}, fmt.Errorf("%s: %w", op, err)
	}
	return session, nil
}

// CheckoutURL строит ссылку на оплату для известного заказа
func (m *OrderLifecycle) CheckoutURL(orderID int64, orderKey string) string {
	return BuildCheckoutURL(m.cfg.BaseURL, orderID, orderKey)
}

func (m *OrderLifecycle) saveSession(ctx context.Context, log *slog.Logger, session model.CheckoutSession) {
	if m.sessions == nil {
		return
	}
	if err := m.sessions.SaveSession(ctx, session); err != nil {
		log.Warn("failed to save checkout session", slog.String("error", err.Error()))
	}
}

func (m *OrderLifecycle) publish(ctx context.Context, log *slog.Logger, event model.OrderEvent) {
	if m.events == nil {
		return
	}
	if err := m.events.PublishOrderEvent(ctx, event); err != nil {
		log.Warn("failed to publish order event", slog.String("type", event.Type), slog.String("error", err.Error()))
	}
}

// BuildCheckoutURL возвращает ссылку на оплату конкретного заказа,
// а без id или ключа — общую страницу оформления
func BuildCheckoutURL(base string, orderID int64, orderKey string) string {
	base = strings.TrimRight(base, "/")
	if orderID <= 0 || orderKey == "" {
		return base + "/checkout/"
	}
	return fmt.Sprintf("%s/checkout/order-pay/%d/?pay_for_order=true&key=%s", base, orderID, url.QueryEscape(orderKey))
}

// BuildOrderUpdate готовит billing/shipping и заметку к заказу из запроса клиента
func BuildOrderUpdate(req model.CheckoutRequest, defaultState string) (model.OrderUpdate, model.CustomerData) {
	first, last := model.SplitName(req.CustomerName)
	phone := model.CleanPhone(req.Phone)

	state := strings.TrimSpace(req.State)
	if state == "" {
		state = defaultState
	}

	var note strings.Builder
	if req.DeliveryDate != "" {
		fmt.Fprintf(&note, "Requested delivery date: %s. ", req.DeliveryDate)
	}
	note.WriteString(req.DeliveryNotes)

	shipping := model.Address{
		FirstName: first,
		LastName:  last,
		Company:   req.Company,
		Address1:  req.Address,
		City:      req.City,
		State:     state,
		Postcode:  req.ZipCode,
	}
	billing := shipping
	billing.Phone = phone
	billing.Email = req.Email

	customer := model.CustomerData{
		FirstName: first,
		LastName:  last,
		Phone:     phone,
		Email:     req.Email,
		Address:   req.Address,
		City:      req.City,
		State:     state,
		ZipCode:   req.ZipCode,
	}

	return model.OrderUpdate{
		Billing:      billing,
		Shipping:     shipping,
		CustomerNote: strings.TrimSpace(note.String()),
	}, customer
}
