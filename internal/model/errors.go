package model

import (
	"errors"
	"fmt"
)

// машиночитаемые коды ошибок валидации
const (
	CodeMissingSessionID   = "missing_session_id"
	CodeNoItems            = "no_items"
	CodeInvalidPricing     = "invalid_pricing"
	CodeInvalidDeliveryFee = "invalid_delivery_fee"
	CodeMissingOrderID     = "missing_order_id"
	CodeMissingName        = "missing_customer_name"
	CodeMissingPhone       = "missing_phone"
	CodeInvalidRequest     = "invalid_request"
)

// ValidationError — ошибка во входных данных
// Message — фраза, которую голосовой агент может произнести клиенту как есть
type ValidationError struct {
	Code       string
	Message    string
	Identifier string // sku или id товара, если ошибка относится к конкретной позиции
}

func (e *ValidationError) Error() string {
	if e.Identifier != "" {
		return fmt.Sprintf("validation failed: %s (%s)", e.Code, e.Identifier)
	}
	return fmt.Sprintf("validation failed: %s", e.Code)
}

// AsValidationError достаёт ValidationError из цепочки обёрток
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

func ErrMissingSessionID() error {
	return &ValidationError{
		Code:    CodeMissingSessionID,
		Message: "There was a technical issue. Let me start over - what materials did you want to order?",
	}
}

func ErrNoItems() error {
	return &ValidationError{
		Code:    CodeNoItems,
		Message: "I don't have any items to add to your cart. Let me help you calculate what you need first.",
	}
}

func ErrInvalidPricing(identifier string) error {
	return &ValidationError{
		Code:       CodeInvalidPricing,
		Message:    fmt.Sprintf("I couldn't find pricing for %s. Let me recalculate your materials and try again.", identifier),
		Identifier: identifier,
	}
}

func ErrInvalidDeliveryFee() error {
	return &ValidationError{
		Code:    CodeInvalidDeliveryFee,
		Message: "Something looks off with the delivery price. Let me recalculate delivery for you.",
	}
}

func ErrMissingOrderID() error {
	return &ValidationError{
		Code:    CodeMissingOrderID,
		Message: "I don't have your order information. Let me add your items to the cart first.",
	}
}

func ErrMissingCustomerName() error {
	return &ValidationError{
		Code:    CodeMissingName,
		Message: "I'll need your name for the order. What name should I put this under?",
	}
}

func ErrMissingPhone() error {
	return &ValidationError{
		Code:    CodeMissingPhone,
		Message: "I'll need a phone number so our driver can reach you before delivery. What's the best number?",
	}
}

func ErrInvalidRequest() error {
	return &ValidationError{
		Code:    CodeInvalidRequest,
		Message: "I didn't quite catch that. Could you tell me again what you'd like to order?",
	}
}
