package model

import "time"

// TaxNote сопровождает оценку налога в каждом ответе
const TaxNote = "Tax calculated at checkout based on delivery address"

// ErrorResponse — тело ответа с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// CartItemPayload — позиция корзины в ответе
type CartItemPayload struct {
	SKU          string  `json:"sku,omitempty"`
	ProductID    int64   `json:"product_id,omitempty"`
	ProductName  string  `json:"product_name"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
	PricePerUnit float64 `json:"price_per_unit"`
	LineTotal    float64 `json:"line_total"`
}

// DeliveryPayload — доставка в ответе
type DeliveryPayload struct {
	Fee     float64 `json:"fee"`
	Trucks  int     `json:"trucks"`
	ZipCode string  `json:"zip_code"`
	Address string  `json:"address"`
}

// CartResponse — ответ add-to-cart
// поле итога называется cart_total: так его уже читает голосовой агент
type CartResponse struct {
	OrderID       *int64            `json:"order_id"`
	OrderKey      *string           `json:"order_key"`
	CheckoutURL   *string           `json:"checkout_url"`
	SessionID     string            `json:"session_id"`
	ItemsAdded    int               `json:"items_added"`
	Items         []CartItemPayload `json:"items"`
	Delivery      *DeliveryPayload  `json:"delivery"`
	Subtotal      float64           `json:"subtotal"`
	TaxEstimate   float64           `json:"tax_estimate"`
	TaxNote       string            `json:"tax_note"`
	GrandTotal    float64           `json:"cart_total"`
	CheckoutReady bool              `json:"checkout_ready"`
	Message       string            `json:"message"`
}

// CustomerData — данные клиента в ответе prefill-checkout
type CustomerData struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
}

// CheckoutResponse — ответ prefill-checkout
type CheckoutResponse struct {
	CheckoutURL      string       `json:"checkout_url"`
	OrderID          *int64       `json:"order_id"`
	OrderKey         *string      `json:"order_key"`
	CustomerData     CustomerData `json:"customer_data"`
	DeliveryDate     *string      `json:"delivery_date"`
	DeliveryNotes    *string      `json:"delivery_notes"`
	ReadyForCheckout bool         `json:"ready_for_checkout"`
	Message          string       `json:"message"`
}

// CacheInvalidation — ответ clear-cache
type CacheInvalidation struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	Before    CacheStats `json:"before"`
	After     CacheStats `json:"after"`
	Timestamp time.Time  `json:"timestamp"`
}

// ProductPayload — товар в ответе проверки зоны обслуживания
type ProductPayload struct {
	ID            int64   `json:"id"`
	SKU           string  `json:"sku"`
	Name          string  `json:"name"`
	PricePerTon   float64 `json:"price_per_ton"`
	Density       float64 `json:"density"`
	TruckCapacity int     `json:"truck_capacity"`
	MinimumOrder  int     `json:"minimum_order"`
	Yard          string  `json:"yard,omitempty"`
}

// ServiceAreaResponse — ответ проверки зоны обслуживания
type ServiceAreaResponse struct {
	ZipCode       string           `json:"zip_code"`
	InServiceArea bool             `json:"in_service_area"`
	Products      []ProductPayload `json:"products"`
	Message       string           `json:"message"`
}

// SessionOrderResponse — черновик заказа, привязанный к сессии разговора
type SessionOrderResponse struct {
	CheckoutSession
	CheckoutURL string `json:"checkout_url"`
}
