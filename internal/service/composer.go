package service

import (
	"fmt"
	"strings"

	"github.com/max-strong-1/-milestone-voice-agent/internal/model"
)

// ComposeCartResponse собирает ответ add-to-cart из корзины и исхода работы с заказом
func ComposeCartResponse(cart model.Cart, outcome model.OrderOutcome) model.CartResponse {
	resp := model.CartResponse{
		SessionID:     cart.SessionID,
		ItemsAdded:    len(cart.Items),
		Items:         make([]model.CartItemPayload, 0, len(cart.Items)),
		Subtotal:      cart.Totals.Subtotal.InexactFloat64(),
		TaxEstimate:   cart.Totals.TaxEstimate.InexactFloat64(),
		TaxNote:       model.TaxNote,
		GrandTotal:    cart.Totals.GrandTotal.InexactFloat64(),
		CheckoutReady: outcome.Persisted(),
		Message:       CartMessage(cart, outcome),
	}

	for _, item := range cart.Items {
		resp.Items = append(resp.Items, model.CartItemPayload{
			SKU:          item.SKU,
			ProductID:    item.ProductID,
			ProductName:  item.Name,
			Quantity:     item.Quantity.InexactFloat64(),
			Unit:         item.Unit,
			PricePerUnit: item.UnitPrice.InexactFloat64(),
			LineTotal:    item.LineTotal.InexactFloat64(),
		})
	}

	if cart.Delivery != nil {
		resp.Delivery = &model.DeliveryPayload{
			Fee:     cart.Totals.DeliveryFee.InexactFloat64(),
			Trucks:  cart.Delivery.Trucks,
			ZipCode: cart.Delivery.ZipCode,
			Address: cart.Delivery.Address,
		}
	}

	if outcome.Persisted() {
		id, key, checkoutURL := outcome.Ref.ID, outcome.Ref.Key, outcome.CheckoutURL
		resp.OrderID = &id
		resp.OrderKey = &key
		resp.CheckoutURL = &checkoutURL
	}

	return resp
}

// CartMessage — фраза подтверждения для голосового агента
func CartMessage(cart model.Cart, outcome model.OrderOutcome) string {
	items := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		items = append(items, fmt.Sprintf("%s tons of %s", item.Quantity.String(), item.Name))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I've added %s to your order.", strings.Join(items, ", "))

	if cart.HasDelivery() {
		fmt.Fprintf(&b, " With delivery, your subtotal is $%s.", cart.Totals.Subtotal.StringFixed(2))
	} else {
		fmt.Fprintf(&b, " Your subtotal is $%s.", cart.Totals.Subtotal.StringFixed(2))
	}

	fmt.Fprintf(&b, " Including estimated tax, your total is about $%s.", cart.Totals.GrandTotal.StringFixed(2))

	if outcome.Persisted() {
		fmt.Fprintf(&b, " Your order number is %d.", outcome.Ref.ID)
	}
	b.WriteString(" Would you like to proceed to checkout?")

	return b.String()
}

// ComposeCheckoutResponse собирает ответ prefill-checkout
func ComposeCheckoutResponse(req model.CheckoutRequest, customer model.CustomerData, outcome model.OrderOutcome) model.CheckoutResponse {
	resp := model.CheckoutResponse{
		CheckoutURL:      outcome.CheckoutURL,
		CustomerData:     customer,
		ReadyForCheckout: true,
		Message:          CheckoutMessage(req),
	}

	if outcome.Ref != nil {
		id := outcome.Ref.ID
		resp.OrderID = &id
		if outcome.Ref.Key != "" {
			key := outcome.Ref.Key
			resp.OrderKey = &key
		}
	}
	if req.DeliveryDate != "" {
		date := req.DeliveryDate
		resp.DeliveryDate = &date
	}
	if req.DeliveryNotes != "" {
		notes := req.DeliveryNotes
		resp.DeliveryNotes = &notes
	}

	return resp
}

// CheckoutMessage — фраза для голосового агента перед переходом к оплате
func CheckoutMessage(req model.CheckoutRequest) string {
	var b strings.Builder
	b.WriteString("Perfect! I'm sending you to checkout now.")

	if req.DeliveryDate != "" {
		fmt.Fprintf(&b, " I've noted that you'd like delivery on %s.", req.DeliveryDate)
	}

	b.WriteString(" Your information is ready - you'll just need to review it and add your payment details to complete the order.")

	if req.DeliveryNotes != "" {
		b.WriteString(" I've included your delivery instructions.")
	}

	b.WriteString(" After you place the order, you'll get a confirmation email and our driver will call you 24 hours before delivery.")
	return b.String()
}

// ComposeServiceArea собирает ответ проверки зоны обслуживания
func ComposeServiceArea(zip string, items []model.CatalogItem) model.ServiceAreaResponse {
	resp := model.ServiceAreaResponse{
		ZipCode:       zip,
		InServiceArea: len(items) > 0,
		Products:      make([]model.ProductPayload, 0, len(items)),
	}

	for _, item := range items {
		resp.Products = append(resp.Products, model.ProductPayload{
			ID:            item.ID,
			SKU:           item.SKU,
			Name:          item.DisplayName(),
			PricePerTon:   item.Price.InexactFloat64(),
			Density:       item.Density,
			TruckCapacity: item.TruckCapacity,
			MinimumOrder:  item.MinimumOrder,
			Yard:          item.Yard,
		})
	}

	if resp.InServiceArea {
		resp.Message = fmt.Sprintf("Good news - we deliver to %s. We have %d materials available there.", zip, len(items))
	} else {
		resp.Message = fmt.Sprintf("I'm sorry, it looks like %s is outside our delivery area right now.", zip)
	}
	return resp
}
