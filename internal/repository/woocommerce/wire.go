package woocommerce

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/max-strong-1/-milestone-voice-agent/internal/model"
)

// мета-поля товара, которые заполняет магазин
const (
	metaDensity       = "density"
	metaTruckCapacity = "truck_max_quantity"
	metaMinimumOrder  = "minimum_quantity"
	metaMapTitle      = "map_title"
)

// DefaultYard — площадка, если магазин о ней ничего не сообщает
const DefaultYard = "Local Yard"

const yardCategoryPrefix = "Gravel & Stone "

type metaField struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

type category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type product struct {
	ID         int64       `json:"id"`
	SKU        string      `json:"sku"`
	Name       string      `json:"name"`
	Price      string      `json:"price"`
	Categories []category  `json:"categories"`
	Meta       []metaField `json:"meta_data"`
}

type tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type orderResponse struct {
	ID       int64  `json:"id"`
	OrderKey string `json:"order_key"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// количество уходит в магазин числом, а не строкой, как по умолчанию у decimal
type orderLine struct {
	ProductID int64       `json:"product_id"`
	Quantity  json.Number `json:"quantity"`
}

type orderRequest struct {
	Status        string               `json:"status"`
	LineItems     []orderLine          `json:"line_items"`
	Meta          []model.MetaEntry    `json:"meta_data"`
	ShippingLines []model.ShippingLine `json:"shipping_lines,omitempty"`
}

func newOrderRequest(order model.PendingOrder) orderRequest {
	lines := make([]orderLine, 0, len(order.LineItems))
	for _, li := range order.LineItems {
		lines = append(lines, orderLine{
			ProductID: li.ProductID,
			Quantity:  json.Number(li.Quantity.String()),
		})
	}
	return orderRequest{
		Status:        order.Status,
		LineItems:     lines,
		Meta:          order.Meta,
		ShippingLines: order.ShippingLines,
	}
}

func (p product) toModel() model.CatalogItem {
	price, err := decimal.NewFromString(strings.TrimSpace(p.Price))
	if err != nil {
		price = decimal.Zero
	}
	return model.CatalogItem{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Price:         price,
		Density:       p.metaFloat(metaDensity, model.DefaultDensity),
		TruckCapacity: p.metaInt(metaTruckCapacity, model.DefaultTruckCapacity),
		MinimumOrder:  p.metaInt(metaMinimumOrder, model.DefaultMinimumOrder),
		Yard:          p.yard(),
	}
}

// yard определяет площадку отгрузки: мета map_title, затем первая категория,
// затем третья часть названия вида "Товар | ДОСТАВКА | Площадка"
func (p product) yard() string {
	if title := p.meta(metaMapTitle); title != "" {
		return title
	}
	if len(p.Categories) > 0 {
		name := strings.TrimSpace(p.Categories[0].Name)
		if i := strings.Index(name, yardCategoryPrefix); i >= 0 && len(name) > i+len(yardCategoryPrefix) {
			return strings.TrimSpace(name[i+len(yardCategoryPrefix):])
		}
		if name != "" {
			return name
		}
	}
	if parts := strings.Split(p.Name, "|"); len(parts) >= 3 {
		if yard := strings.TrimSpace(parts[2]); yard != "" {
			return yard
		}
	}
	return DefaultYard
}

func (p product) meta(key string) string {
	for _, m := range p.Meta {
		if m.Key != key || m.Value == nil {
			continue
		}
		switch v := m.Value.(type) {
		case string:
			return strings.TrimSpace(v)
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		default:
			return fmt.Sprint(v)
		}
	}
	return ""
}

// пустое, нулевое или нечисловое значение заменяется значением по умолчанию
func (p product) metaFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(p.meta(key), 64)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// дробная часть отбрасывается: вместимость и минимум считаются в целых тоннах
func (p product) metaInt(key string, def int) int {
	v, err := strconv.ParseFloat(p.meta(key), 64)
	if err != nil || int(v) <= 0 {
		return def
	}
	return int(v)
}
