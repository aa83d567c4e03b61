package cache

import (
	"strconv"
	"sync"
	"time"

	"github.com/max-strong-1/-milestone-voice-agent/internal/metrics"
	"github.com/max-strong-1/-milestone-voice-agent/internal/model"
)

// имена пространств, они же метки метрик
const (
	NamespaceProducts = "products"
	NamespaceTags     = "tags"
	NamespaceSKUs     = "skus"
)

// TTL по умолчанию
const (
	DefaultProductsTTL = 5 * time.Minute
	DefaultTagsTTL     = 30 * time.Minute
	DefaultSKUsTTL     = 10 * time.Minute
)

// TTLs — сроки жизни записей по пространствам
type TTLs struct {
	Products time.Duration // zip -> список товаров
	Tags     time.Duration // zip -> id тега, меняется редко
	SKUs     time.Duration // sku или id -> товар
}

// DefaultTTLs возвращает сроки жизни по умолчанию
func DefaultTTLs() TTLs {
	return TTLs{Products: DefaultProductsTTL, Tags: DefaultTagsTTL, SKUs: DefaultSKUsTTL}
}

// CatalogCache — кэш каталога на весь процесс
// создаётся один раз в main и передаётся резолверу явно
// кэшируются и отрицательные ответы: nil-товар и пустой список означают "точно не найдено"
type CatalogCache struct {
	// gate делает Clear атомарным для читателей: обычные операции берут RLock
	gate sync.RWMutex

	products *Namespace[[]model.CatalogItem]
	tags     *Namespace[int64]
	skus     *Namespace[*model.CatalogItem]
}

// NewCatalogCache создаёт пустой кэш; now можно подменить в тестах
func NewCatalogCache(ttl TTLs, now func() time.Time) *CatalogCache {
	return &CatalogCache{
		products: NewNamespace[[]model.CatalogItem](NamespaceProducts, ttl.Products, now),
		tags:     NewNamespace[int64](NamespaceTags, ttl.Tags, now),
		skus:     NewNamespace[*model.CatalogItem](NamespaceSKUs, ttl.SKUs, now),
	}
}

// SKUKey и IDKey разводят ключи sku и id в одном пространстве
func SKUKey(sku string) string { return "sku:" + sku }
func IDKey(id int64) string    { return "id:" + strconv.FormatInt(id, 10) }

// Product ищет товар по ключу SKUKey/IDKey
// (nil, true) — товар закэширован как отсутствующий
func (c *CatalogCache) Product(key string) (*model.CatalogItem, bool) {
	c.gate.RLock()
	defer c.gate.RUnlock()
	return lookup(c.skus, key)
}

// SetProduct кладёт товар (или nil для "не найдено") по ключу
func (c *CatalogCache) SetProduct(key string, item *model.CatalogItem) {
	c.gate.RLock()
	defer c.gate.RUnlock()
	c.skus.Set(key, item)
}

// RegionProducts возвращает товары для zip; пустой список — zip вне зоны обслуживания
func (c *CatalogCache) RegionProducts(zip string) ([]model.CatalogItem, bool) {
	c.gate.RLock()
	defer c.gate.RUnlock()
	return lookup(c.products, zip)
}

// SetRegionProducts кладёт список товаров для zip
func (c *CatalogCache) SetRegionProducts(zip string, items []model.CatalogItem) {
	c.gate.RLock()
	defer c.gate.RUnlock()
	if items == nil {
		items = []model.CatalogItem{}
	}
	c.products.Set(zip, items)
}

// RegionTag возвращает id тега для zip
func (c *CatalogCache) RegionTag(zip string) (int64, bool) {
	c.gate.RLock()
	defer c.gate.RUnlock()
	return lookup(c.tags, zip)
}

// SetRegionTag кладёт id тега для zip
func (c *CatalogCache) SetRegionTag(zip string, tagID int64) {
	c.gate.RLock()
	defer c.gate.RUnlock()
	c.tags.Set(zip, tagID)
}

// Clear очищает все три пространства разом
// используется после смены цен в магазине
func (c *CatalogCache) Clear() {
	c.gate.Lock()
	defer c.gate.Unlock()
	c.products.clear()
	c.tags.clear()
	c.skus.clear()
}

// Stats возвращает количество записей по пространствам
func (c *CatalogCache) Stats() model.CacheStats {
	c.gate.RLock()
	defer c.gate.RUnlock()
	return model.CacheStats{
		Products: c.products.Len(),
		Tags:     c.tags.Len(),
		SKUs:     c.skus.Len(),
	}
}

func lookup[T any](ns *Namespace[T], key string) (T, bool) {
	v, ok, expired := ns.Get(key)
	switch {
	case ok:
		metrics.CacheLookup(ns.name, "hit")
	case expired:
		metrics.CacheLookup(ns.name, "expired")
	default:
		metrics.CacheLookup(ns.name, "miss")
	}
	return v, ok
}
