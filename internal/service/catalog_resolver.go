package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/max-strong-1/-milestone-voice-agent/internal/model"
	"github.com/max-strong-1/-milestone-voice-agent/internal/repository/cache"
)

// CatalogResolver отдаёт данные каталога, сначала заглядывая в кэш
// сбои внешнего каталога здесь проглатываются и превращаются в "не найдено":
// повторять запрос или нет, решает голосовой агент
type CatalogResolver struct {
	source CatalogSource
	cache  CatalogCache
	log    *slog.Logger
}

// NewCatalogResolver создаёт резолвер поверх каталога и кэша
func NewCatalogResolver(source CatalogSource, cache CatalogCache, log *slog.Logger) *CatalogResolver {
	return &CatalogResolver{
		source: source,
		cache:  cache,
		log:    log,
	}
}

// ResolveBySKU ищет товар по SKU
func (r *CatalogResolver) ResolveBySKU(ctx context.Context, sku string) (model.CatalogItem, bool) {
	const op = "service.CatalogResolver.ResolveBySKU"
	log := r.log.With(slog.String("op", op), slog.String("sku", sku))

	sku = strings.TrimSpace(sku)
	if sku == "" {
		return model.CatalogItem{}, false
	}

	key := cache.SKUKey(sku)
	if item, ok := r.cache.Product(key); ok {
		log.Debug("product found in cache", slog.Bool("negative", item == nil))
		return deref(item)
	}

	item, err := r.source.ProductBySKU(ctx, sku)
	if err != nil {
		log.Error("failed to fetch product from catalog", slog.String("error", err.Error()))
		return model.CatalogItem{}, false
	}

	r.remember(key, item)
	log.Debug("product cached", slog.Bool("found", item != nil))
	return deref(item)
}

// ResolveByID ищет товар по id в магазине
func (r *CatalogResolver) ResolveByID(ctx context.Context, id int64) (model.CatalogItem, bool) {
	const op = "service.CatalogResolver.ResolveByID"
	log := r.log.With(slog.String("op", op), slog.Int64("product_id", id))

	if id <= 0 {
		return model.CatalogItem{}, false
	}

	key := cache.IDKey(id)
	if item, ok := r.cache.Product(key); ok {
		log.Debug("product found in cache", slog.Bool("negative", item == nil))
		return deref(item)
	}

	item, err := r.source.ProductByID(ctx, id)
	if err != nil {
		log.Error("failed to fetch product from catalog", slog.String("error", err.Error()))
		return model.CatalogItem{}, false
	}

	r.remember(key, item)
	log.Debug("product cached", slog.Bool("found", item != nil))
	return deref(item)
}

// ResolveByRegion возвращает товары, которые доставляются в zip
// пустой список означает "вне зоны обслуживания", а не ошибку
func (r *CatalogResolver) ResolveByRegion(ctx context.Context, zip string) []model.CatalogItem {
	const op = "service.CatalogResolver.ResolveByRegion"
	log := r.log.With(slog.String("op", op), slog.String("zip", zip))

	zip = strings.TrimSpace(zip)
	if zip == "" {
		return []model.CatalogItem{}
	}

	if items, ok := r.cache.RegionProducts(zip); ok {
		log.Debug("products found in cache", slog.Int("count", len(items)))
		return slices.Clone(items)
	}

	// 1. zip -> id тега, кэшируется дольше: привязки тегов меняются редко
	tagID, ok := r.cache.RegionTag(zip)
	if !ok {
		id, found, err := r.source.TagIDByRegion(ctx, zip)
		if err != nil {
			log.Error("failed to fetch region tag from catalog", slog.String("error", err.Error()))
			return []model.CatalogItem{}
		}
		if !found {
			// запоминаем и отрицательный ответ, чтобы не дёргать магазин на каждый неверный zip
			r.cache.SetRegionProducts(zip, []model.CatalogItem{})
			log.Info("zip is outside service area")
			return []model.CatalogItem{}
		}
		tagID = id
		r.cache.SetRegionTag(zip, tagID)
	}

	// 2. id тега -> товары
	items, err := r.source.ProductsByTag(ctx, tagID)
	if err != nil {
		log.Error("failed to fetch products by tag", slog.Int64("tag_id", tagID), slog.String("error", err.Error()))
		return []model.CatalogItem{}
	}
	if items == nil {
		items = []model.CatalogItem{}
	}

	r.cache.SetRegionProducts(zip, items)
	log.Debug("products cached", slog.Int64("tag_id", tagID), slog.Int("count", len(items)))
	return slices.Clone(items)
}

// remember кладёт товар под запрошенным ключом и под вторым идентификатором,
// чтобы поиск по id после поиска по sku (и наоборот) не ходил в магазин
func (r *CatalogResolver) remember(key string, item *model.CatalogItem) {
	r.cache.SetProduct(key, item)
	if item == nil {
		return
	}
	if item.ID > 0 && key != cache.IDKey(item.ID) {
		r.cache.SetProduct(cache.IDKey(item.ID), item)
	}
	if item.SKU != "" && key != cache.SKUKey(item.SKU) {
		r.cache.SetProduct(cache.SKUKey(item.SKU), item)
	}
}

func deref(item *model.CatalogItem) (model.CatalogItem, bool) {
	if item == nil {
		return model.CatalogItem{}, false
	}
	return *item, true
}
