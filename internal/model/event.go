package model

import "time"

// типы событий каталога, после которых кэш надо сбросить
const (
	CatalogPriceChanged    = "price_changed"
	CatalogRefreshed       = "catalog_refreshed"
	OrderEventCreated      = "pending_order_created"
	OrderEventCustomerInfo = "pending_order_updated"
)

// CatalogEvent — сообщение из топика каталога
type CatalogEvent struct {
	Type       string    `json:"type" validate:"required,oneof=price_changed catalog_refreshed"`
	SKU        string    `json:"sku"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Validate проверяет событие по тегам validate
func (e *CatalogEvent) Validate() error {
	return validate.Struct(e)
}

// OrderEvent — сообщение о жизненном цикле черновика заказа
type OrderEvent struct {
	Type        string    `json:"type"`
	OrderID     int64     `json:"order_id"`
	SessionID   string    `json:"session_id,omitempty"`
	DeliveryZip string    `json:"delivery_zip,omitempty"`
	GrandTotal  float64   `json:"grand_total,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
