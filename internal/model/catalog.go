package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// значения по умолчанию, если у товара в магазине не заполнены мета-поля
const (
	DefaultDensity       = 1.4
	DefaultTruckCapacity = 18
	DefaultMinimumOrder  = 3
)

// CatalogItem — копия товара из каталога магазина
// владелец данных — внешний каталог, у нас только закэшированные копии, поэтому не мутируем
type CatalogItem struct {
	ID            int64           `json:"id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Density       float64         `json:"density"`        // тонн на кубический ярд
	TruckCapacity int             `json:"truck_capacity"` // максимум тонн на одну машину
	MinimumOrder  int             `json:"minimum_order"`  // минимальный заказ в тоннах
	Yard          string          `json:"yard"`           // площадка, с которой везут материал
}

// DisplayName возвращает название без суффикса вида " | STONE DELIVERY | Columbus"
func (c CatalogItem) DisplayName() string {
	name, _, _ := strings.Cut(c.Name, "|")
	return strings.TrimSpace(name)
}

// HasPrice сообщает, есть ли у товара пригодная (строго положительная) цена
func (c CatalogItem) HasPrice() bool {
	return c.Price.IsPositive()
}

// CacheStats — количество записей в каждом пространстве имён кэша
type CacheStats struct {
	Products int `json:"products"`
	Tags     int `json:"tags"`
	SKUs     int `json:"skus"`
}

// Total — суммарное число записей
func (s CacheStats) Total() int {
	return s.Products + s.Tags + s.SKUs
}
