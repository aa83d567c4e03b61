package model

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// OrderStatus — состояние черновика заказа с точки зрения нашего сервиса
// переходы только вперёд: none -> pending_created -> pending_updated
type OrderStatus string

const (
	OrderNone           OrderStatus = "none"
	OrderPendingCreated OrderStatus = "pending_created"
	OrderPendingUpdated OrderStatus = "pending_updated"
)

// OrderRef — ссылка на заказ во внешнем магазине, сам заказ хранится там
type OrderRef struct {
	ID  int64  `json:"order_id"`
	Key string `json:"order_key"`
}

// OrderOutcome — результат работы с заказом
// заказ может не создаться, и это не ошибка запроса: вызывающий обязан обработать случай Ref == nil
type OrderOutcome struct {
	Status      OrderStatus
	Ref         *OrderRef
	CheckoutURL string
	Failure     error // почему заказ не создан/не обновлён, только для логов
}

// Persisted сообщает, есть ли у корзины сохранённый заказ
func (o OrderOutcome) Persisted() bool {
	return o.Ref != nil
}

// MetaEntry — произвольное мета-поле заказа в магазине
type MetaEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// OrderLineItem — позиция заказа, цену магазин подставит сам по product_id
type OrderLineItem struct {
	ProductID int64           `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// ShippingLine — строка доставки в заказе
type ShippingLine struct {
	MethodID    string `json:"method_id"`
	MethodTitle string `json:"method_title"`
	Total       string `json:"total"`
}

// PendingOrder — черновик заказа, который заменяет корзину между репликами разговора
type PendingOrder struct {
	Status        string          `json:"status"`
	LineItems     []OrderLineItem `json:"line_items"`
	Meta          []MetaEntry     `json:"meta_data"`
	ShippingLines []ShippingLine  `json:"shipping_lines,omitempty"`
}

// Address — адрес для billing/shipping
type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Company   string `json:"company"`
	Address1  string `json:"address_1"`
	City      string `json:"city"`
	State     string `json:"state"`
	Postcode  string `json:"postcode"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
}

// OrderUpdate — данные клиента, которые дописываются в черновик заказа
type OrderUpdate struct {
	Billing      Address `json:"billing"`
	Shipping     Address `json:"shipping"`
	CustomerNote string  `json:"customer_note"`
}

// CheckoutRequest — тело запроса prefill-checkout
// порядок полей важен: при нескольких ошибках клиенту называем первую по порядку
type CheckoutRequest struct {
	OrderID       NumericID `json:"order_id" validate:"required_without=SessionID"`
	SessionID     string    `json:"session_id"`
	OrderKey      string    `json:"order_key"`
	CustomerName  string    `json:"customer_name" validate:"required"`
	Phone         string    `json:"phone" validate:"required"`
	Address       string    `json:"delivery_address"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	ZipCode       string    `json:"zip_code"`
	Email         string    `json:"email"`
	Company       string    `json:"company"`
	DeliveryNotes string    `json:"delivery_notes"`
	DeliveryDate  string    `json:"delivery_date"`
}

var validate = validator.New()

var nonDigits = regexp.MustCompile(`[^0-9]`)

// CleanPhone оставляет в номере только цифры
func CleanPhone(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}

// SplitName делит полное имя на первое слово и всё остальное
func SplitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// Validate проверяет корректность запроса на основе тегов validate
// и переводит ошибки валидатора в ошибки, понятные голосовому агенту
func (r *CheckoutRequest) Validate() error {
	r.CustomerName = strings.TrimSpace(r.CustomerName)
	r.SessionID = strings.TrimSpace(r.SessionID)

	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return ErrInvalidRequest()
		}
		switch verrs[0].Field() {
		case "OrderID":
			return ErrMissingOrderID()
		case "CustomerName":
			return ErrMissingCustomerName()
		case "Phone":
			return ErrMissingPhone()
		default:
			return ErrInvalidRequest()
		}
	}

	if CleanPhone(r.Phone) == "" {
		return ErrMissingPhone()
	}
	return nil
}

// CheckoutSession — ссылка сессии разговора на черновик заказа
type CheckoutSession struct {
	SessionID   string      `json:"session_id"`
	OrderID     int64       `json:"order_id"`
	OrderKey    string      `json:"order_key"`
	DeliveryZip string      `json:"delivery_zip"`
	Status      OrderStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
