package service

import (
	"context"

	"github.com/max-strong-1/-milestone-voice-agent/internal/model"
)

// CatalogSource определяет контракт внешнего каталога (магазина)
// (nil, nil) и (0, false, nil) означают "не найдено", ошибка — сбой сети/авторизации
type CatalogSource interface {
	ProductBySKU(ctx context.Context, sku string) (*model.CatalogItem, error)
	ProductByID(ctx context.Context, id int64) (*model.CatalogItem, error)
	ProductsByTag(ctx context.Context, tagID int64) ([]model.CatalogItem, error)
	TagIDByRegion(ctx context.Context, zip string) (int64, bool, error)
}

// OrderStore определяет контракт внешнего хранилища заказов
type OrderStore interface {
	CreateOrder(ctx context.Context, order model.PendingOrder) (model.OrderRef, error)
	UpdateOrder(ctx context.Context, id int64, update model.OrderUpdate) (model.OrderRef, error)
}

// CatalogCache определяет контракт кэша каталога
type CatalogCache interface {
	Product(key string) (*model.CatalogItem, bool)
	SetProduct(key string, item *model.CatalogItem)
	RegionProducts(zip string) ([]model.CatalogItem, bool)
	SetRegionProducts(zip string, items []model.CatalogItem)
	RegionTag(zip string) (int64, bool)
	SetRegionTag(zip string, tagID int64)
	Clear()
	Stats() model.CacheStats
}

// SessionRepository определяет контракт хранилища ссылок "сессия -> черновик заказа"
type SessionRepository interface {
	SaveSession(ctx context.Context, session model.CheckoutSession) error
	GetSession(ctx context.Context, sessionID string) (model.CheckoutSession, error)
	MarkUpdated(ctx context.Context, orderID int64, orderKey string) error
}

// EventPublisher определяет контракт публикации событий заказа
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event model.OrderEvent) error
}

// ItemResolver определяет контракт поиска отдельного товара для расчёта корзины
type ItemResolver interface {
	ResolveBySKU(ctx context.Context, sku string) (model.CatalogItem, bool)
	ResolveByID(ctx context.Context, id int64) (model.CatalogItem, bool)
}
