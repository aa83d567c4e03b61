package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/max-strong-1/-milestone-voice-agent/internal/model"
	"github.com/max-strong-1/-milestone-voice-agent/internal/repository/postgres"
)

// CheckoutService — то, что видит транспортный слой:
// корзина -> черновик заказа -> ответ голосовому агенту
type CheckoutService struct {
	engine   *CartEngine
	orders   *OrderLifecycle
	resolver *CatalogResolver
	cache    CatalogCache
	log      *slog.Logger
}

// NewCheckoutService собирает сервис из готовых компонентов
func NewCheckoutService(engine *CartEngine, orders *OrderLifecycle, resolver *CatalogResolver, cache CatalogCache, log *slog.Logger) *CheckoutService {
	return &CheckoutService{
		engine:   engine,
		orders:   orders,
		resolver: resolver,
		cache:    cache,
		log:      log,
	}
}

// AddToCart считает корзину и пытается сохранить её как черновик заказа
// ошибка возвращается только для невалидной корзины; сбой магазина даёт ответ без заказа
func (s *CheckoutService) AddToCart(ctx context.Context, req model.CartRequest) (model.CartResponse, error) {
	const op = "service.CheckoutService.AddToCart"

	cart, err := s.engine.ComputeCart(ctx, req)
	if err != nil {
		return model.CartResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	outcome := s.orders.CreatePendingOrder(ctx, cart)
	return ComposeCartResponse(cart, outcome), nil
}

// Quote считает корзину без создания заказа
func (s *CheckoutService) Quote(ctx context.Context, req model.CartRequest) (model.CartResponse, error) {
	const op = "service.CheckoutService.Quote"

	cart, err := s.engine.ComputeCart(ctx, req)
	if err != nil {
		return model.CartResponse{}, fmt.Errorf("%s: %w", op, err)
	}
	return ComposeCartResponse(cart, model.OrderOutcome{Status: model.OrderNone}), nil
}

// SubmitCustomerInfo дописывает данные клиента в черновик заказа и отдаёт ссылку на оплату
// если order_id не передан, заказ ищется по session_id
func (s *CheckoutService) SubmitCustomerInfo(ctx context.Context, req model.CheckoutRequest) (model.CheckoutResponse, error) {
	const op = "service.CheckoutService.SubmitCustomerInfo"

	if err := req.Validate(); err != nil {
		return model.CheckoutResponse{}, fmt.Errorf("%s: %w", op, err)
	}

	orderID, orderKey := int64(req.OrderID), req.OrderKey
	if orderID == 0 {
		log := s.log.With(slog.String("op", op), slog.String("session_id", req.SessionID))

		session, err := s.orders.SessionOrder(ctx, req.SessionID)
		if err != nil {
			// сбой хранилища сессий для клиента выглядит так же, как отсутствие заказа
			if !errors.Is(err, postgres.ErrSessionNotFound) {
				log.Error("failed to look up checkout session", slog.String("error", err.Error()))
			}
			return model.CheckoutResponse{}, fmt.Errorf("%s: %w", op, model.ErrMissingOrderID())
		}
		orderID = session.OrderID
		if orderKey == "" {
			orderKey = session.OrderKey
		}
		log.Info("order resumed from checkout session", slog.Int64("order_id", orderID))
	}

	outcome, customer := s.orders.AttachCustomerInfo(ctx, orderID, orderKey, req)
	return ComposeCheckoutResponse(req, customer, outcome), nil
}

// SessionOrder возвращает черновик заказа сессии вместе со ссылкой на оплату
func (s *CheckoutService) SessionOrder(ctx context.Context, sessionID string) (model.SessionOrderResponse, error) {
	const op = "service.CheckoutService.SessionOrder"

	session, err := s.orders.SessionOrder(ctx, sessionID)
	if err != nil {
		return model.SessionOrderResponse{}, fmt.Errorf("%s: %w", op, err)
	}
	return model.SessionOrderResponse{
		CheckoutSession: session,
		CheckoutURL:     s.orders.CheckoutURL(session.OrderID, session.OrderKey),
	}, nil
}

// ServiceArea проверяет, доставляем ли мы в zip, и какие материалы там доступны
func (s *CheckoutService) ServiceArea(ctx context.Context, zip string) model.ServiceAreaResponse {
	return ComposeServiceArea(zip, s.resolver.ResolveByRegion(ctx, zip))
}

// InvalidateCache сбрасывает кэш каталога, например после смены цен в магазине
func (s *CheckoutService) InvalidateCache(ctx context.Context, reason string) model.CacheInvalidation {
	const op = "service.CheckoutService.InvalidateCache"

	before := s.cache.Stats()
	s.cache.Clear()
	after := s.cache.Stats()

	s.log.Info("catalog cache cleared",
		slog.String("op", op),
		slog.String("reason", reason),
		slog.Int("entries_before", before.Total()),
	)

	return model.CacheInvalidation{
		Success:   true,
		Message:   "Cache cleared successfully",
		Before:    before,
		After:     after,
		Timestamp: time.Now().UTC(),
	}
}

// CacheStats возвращает размер кэша по пространствам
func (s *CheckoutService) CacheStats() model.CacheStats {
	return s.cache.Stats()
}
