package model

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// UnitTons — единица измерения по умолчанию для сыпучих материалов
const UnitTons = "tons"

// NumericID — id в магазине; голосовой агент присылает его то числом, то строкой
type NumericID int64

// UnmarshalJSON принимает 123, 123.0, "123" и null; дробный id — ошибка
func (id *NumericID) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(bytes.Trim(b, `"`)))
	if s == "" || s == "null" {
		*id = 0
		return nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		*id = NumericID(v)
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid numeric id %q: %w", s, err)
	}
	if !d.IsInteger() {
		return fmt.Errorf("invalid numeric id %q: not an integer", s)
	}
	*id = NumericID(d.IntPart())
	return nil
}

// LineItemRequest — позиция в текущем формате запроса
type LineItemRequest struct {
	SKU         string          `json:"sku"`
	ProductID   NumericID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	PricePerTon decimal.Decimal `json:"price_per_ton"`
}

// DeliveryRequest — данные о доставке, посчитанные компонентом доставки
type DeliveryRequest struct {
	Fee     decimal.Decimal `json:"fee"`
	Trucks  int             `json:"trucks"`
	ZipCode string          `json:"zip_code"`
	Address string          `json:"address"`
}

// CartRequest — тело запроса add-to-cart
// поддерживает два формата: текущий (items) и устаревший (product_id + quantity)
type CartRequest struct {
	SessionID   string            `json:"session_id"`
	Items       []LineItemRequest `json:"items"`
	Delivery    *DeliveryRequest  `json:"delivery"`
	CustomerZip string            `json:"customer_zip"`

	// устаревший формат
	ProductID NumericID       `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// IsLegacy сообщает, пришёл ли запрос в устаревшем формате
func (r CartRequest) IsLegacy() bool {
	return r.Items == nil && r.ProductID > 0 && r.Quantity.IsPositive()
}

// CartLine — позиция в каноническом виде, общем для обоих форматов
type CartLine struct {
	SKU         string
	ProductID   int64
	ProductName string
	Quantity    decimal.Decimal
	Unit        string
	Price       decimal.Decimal // цена от вызывающей стороны, ноль если не передана
}

// Identifier возвращает то, по чему позицию можно найти в каталоге
func (l CartLine) Identifier() string {
	if l.SKU != "" {
		return l.SKU
	}
	return strconv.FormatInt(l.ProductID, 10)
}

// DeliveryInfo — нормализованная доставка
type DeliveryInfo struct {
	Fee     decimal.Decimal
	Trucks  int
	ZipCode string
	Address string
}

// NormalizedCart — запрос после приведения к единому виду
type NormalizedCart struct {
	SessionID string
	Legacy    bool
	Lines     []CartLine
	Delivery  *DeliveryInfo
	RegionZip string
}

// Normalize — единственное место, где устаревший формат превращается в текущий
// newSessionID вызывается только для устаревшего формата без session_id
func (r CartRequest) Normalize(newSessionID func() string) (NormalizedCart, error) {
	out := NormalizedCart{
		SessionID: strings.TrimSpace(r.SessionID),
		Legacy:    r.IsLegacy(),
	}

	if out.Legacy {
		if out.SessionID == "" {
			out.SessionID = newSessionID()
		}
		out.Lines = []CartLine{{
			ProductID: int64(r.ProductID),
			Quantity:  r.Quantity,
			Unit:      UnitTons,
		}}
	} else {
		for _, item := range r.Items {
			line := CartLine{
				SKU:         strings.TrimSpace(item.SKU),
				ProductID:   int64(item.ProductID),
				ProductName: strings.TrimSpace(item.ProductName),
				Quantity:    item.Quantity,
				Unit:        strings.TrimSpace(item.Unit),
				Price:       item.PricePerTon,
			}
			// без идентификатора или количества позицию молча пропускаем
			if line.SKU == "" && line.ProductID <= 0 {
				continue
			}
			if !line.Quantity.IsPositive() {
				continue
			}
			if line.Unit == "" {
				line.Unit = UnitTons
			}
			out.Lines = append(out.Lines, line)
		}
	}

	if out.SessionID == "" {
		return NormalizedCart{}, ErrMissingSessionID()
	}
	if len(out.Lines) == 0 {
		return NormalizedCart{}, ErrNoItems()
	}

	out.RegionZip = strings.TrimSpace(r.CustomerZip)
	if r.Delivery != nil {
		if r.Delivery.Fee.IsNegative() {
			return NormalizedCart{}, ErrInvalidDeliveryFee()
		}
		d := &DeliveryInfo{
			Fee:     r.Delivery.Fee,
			Trucks:  r.Delivery.Trucks,
			ZipCode: strings.TrimSpace(r.Delivery.ZipCode),
			Address: strings.TrimSpace(r.Delivery.Address),
		}
		if d.Trucks < 1 {
			d.Trucks = 1
		}
		if d.ZipCode == "" {
			d.ZipCode = out.RegionZip
		}
		out.RegionZip = d.ZipCode
		out.Delivery = d
	}

	return out, nil
}

// ResolvedLineItem — позиция с подтверждённой ценой
type ResolvedLineItem struct {
	SKU       string
	ProductID int64 // 0, если цену передал вызывающий и каталог не опрашивался
	Name      string
	Quantity  decimal.Decimal
	Unit      string
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// Identifier — sku, а если его нет, id товара
func (i ResolvedLineItem) Identifier() string {
	if i.SKU != "" {
		return i.SKU
	}
	return strconv.FormatInt(i.ProductID, 10)
}

// CartTotals — итоги корзины, все суммы уже округлены до центов
// Subtotal включает стоимость доставки, TaxEstimate — оценка, точный налог считает магазин при оплате
type CartTotals struct {
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	TaxEstimate decimal.Decimal
	GrandTotal  decimal.Decimal
}

// Cart — результат расчёта корзины, пересчитывается на каждый вызов и никуда не сохраняется
type Cart struct {
	SessionID string
	Items     []ResolvedLineItem
	Delivery  *DeliveryInfo
	RegionZip string
	Totals    CartTotals
}

// HasDelivery сообщает, есть ли в корзине платная доставка
func (c Cart) HasDelivery() bool {
	return c.Totals.DeliveryFee.IsPositive()
}
