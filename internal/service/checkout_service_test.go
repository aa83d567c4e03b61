package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/max-strong-1/-milestone-voice-agent/internal/model"
	"github.com/max-strong-1/-milestone-voice-agent/internal/repository/postgres"
)

func TestAddToCart(t *testing.T) {
	h := newHarness(limestone())

	resp, err := h.svc.AddToCart(context.Background(), model.CartRequest{
		SessionID: "call-1",
		Items:     []model.LineItemRequest{{SKU: "OHMS-6", Quantity: dec("5")}},
		Delivery:  &model.DeliveryRequest{Fee: dec("75"), Trucks: 1, ZipCode: "43215"},
	})
	require.NoError(t, err)

	require.NotNil(t, resp.OrderID)
	assert.Equal(t, int64(1001), *resp.OrderID)
	assert.True(t, resp.CheckoutReady)
	assert.Equal(t, 307.63, resp.GrandTotal)
	assert.Equal(t, 20.13, resp.TaxEstimate)
	assert.Equal(t, model.TaxNote, resp.TaxNote)
	require.NotNil(t, resp.Delivery)
	assert.Equal(t, 75.0, resp.Delivery.Fee)
	assert.Equal(t,
		"I've added 5 tons of #57 Limestone to your order. With delivery, your subtotal is $287.50. "+
			"Including estimated tax, your total is about $307.63. Your order number is 1001. "+
			"Would you like to proceed to checkout?",
		resp.Message)
}

func TestAddToCart_StoreDownStillReturnsCart(t *testing.T) {
	h := newHarness(limestone())
	h.store.createErr = errors.New("store down")

	resp, err := h.svc.AddToCart(context.Background(), model.CartRequest{
		SessionID: "call-1",
		Items:     []model.LineItemRequest{{SKU: "OHMS-6", Quantity: dec("2")}},
	})
	require.NoError(t, err)

	assert.Nil(t, resp.OrderID)
	assert.Nil(t, resp.OrderKey)
	assert.Nil(t, resp.CheckoutURL)
	assert.False(t, resp.CheckoutReady)
	assert.Equal(t, 85.0, resp.Subtotal)
	assert.NotContains(t, resp.Message, "order number")
	assert.Contains(t, resp.Message, " Your subtotal is $85.00.")
}

func TestAddToCart_InvalidCart(t *testing.T) {
	h := newHarness()

	_, err := h.svc.AddToCart(context.Background(), model.CartRequest{SessionID: "call-1", Items: []model.LineItemRequest{}})
	verr, ok := model.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, model.CodeNoItems, verr.Code)
	assert.Empty(t, h.store.created)
}

func TestQuote_DoesNotCreateOrder(t *testing.T) {
	h := newHarness(limestone())

	resp, err := h.svc.Quote(context.Background(), model.CartRequest{
		SessionID: "call-1",
		Items:     []model.LineItemRequest{{SKU: "OHMS-6", Quantity: dec("2")}},
	})
	require.NoError(t, err)

	assert.Nil(t, resp.OrderID)
	assert.Empty(t, h.store.created)
}

func TestSubmitCustomerInfo(t *testing.T) {
	h := newHarness()

	resp, err := h.svc.SubmitCustomerInfo(context.Background(), checkoutRequest())
	require.NoError(t, err)

	require.NotNil(t, resp.OrderID)
	assert.Equal(t, int64(1001), *resp.OrderID)
	require.NotNil(t, resp.OrderKey)
	assert.True(t, resp.ReadyForCheckout)
	require.NotNil(t, resp.DeliveryDate)
	assert.Equal(t, "May 3", *resp.DeliveryDate)
	assert.Equal(t,
		"Perfect! I'm sending you to checkout now. I've noted that you'd like delivery on May 3. "+
			"Your information is ready - you'll just need to review it and add your payment details to complete the order. "+
			"I've included your delivery instructions. "+
			"After you place the order, you'll get a confirmation email and our driver will call you 24 hours before delivery.",
		resp.Message)
}

func TestSubmitCustomerInfo_Idempotent(t *testing.T) {
	h := newHarness()

	first, err := h.svc.SubmitCustomerInfo(context.Background(), checkoutRequest())
	require.NoError(t, err)
	second, err := h.svc.SubmitCustomerInfo(context.Background(), checkoutRequest())
	require.NoError(t, err)

	assert.Equal(t, first.CheckoutURL, second.CheckoutURL)
	assert.Equal(t, "https://milestonetrucks.com/checkout/order-pay/1001/?pay_for_order=true&key=wc_order_abc", second.CheckoutURL)
}

func TestSubmitCustomerInfo_URLFollowsRotatedKey(t *testing.T) {
	h := newHarness()

	first, err := h.svc.SubmitCustomerInfo(context.Background(), checkoutRequest())
	require.NoError(t, err)
	assert.Contains(t, first.CheckoutURL, "key=wc_order_abc")

	h.store.updateKey = "wc_order_rotated"
	second, err := h.svc.SubmitCustomerInfo(context.Background(), checkoutRequest())
	require.NoError(t, err)

	assert.Equal(t, "https://milestonetrucks.com/checkout/order-pay/1001/?pay_for_order=true&key=wc_order_rotated", second.CheckoutURL)
	require.NotNil(t, second.OrderKey)
	assert.Equal(t, "wc_order_rotated", *second.OrderKey)
}

func TestSubmitCustomerInfo_ResumesBySession(t *testing.T) {
	h := newHarness(limestone())
	_, err := h.svc.AddToCart(context.Background(), model.CartRequest{
		SessionID: "call-1",
		Items:     []model.LineItemRequest{{SKU: "OHMS-6", Quantity: dec("2")}},
	})
	require.NoError(t, err)

	req := checkoutRequest()
	req.OrderID = 0
	req.OrderKey = ""
	req.SessionID = "call-1"

	resp, err := h.svc.SubmitCustomerInfo(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, resp.OrderID)
	assert.Equal(t, int64(1001), *resp.OrderID)
	assert.Contains(t, resp.CheckoutURL, "key=wc_order_abc")
	assert.Contains(t, h.store.updates, int64(1001))
}

func TestSubmitCustomerInfo_UnknownSession(t *testing.T) {
	h := newHarness()
	req := checkoutRequest()
	req.OrderID = 0
	req.SessionID = "never-seen"

	_, err := h.svc.SubmitCustomerInfo(context.Background(), req)
	verr, ok := model.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, model.CodeMissingOrderID, verr.Code)
}

func TestSubmitCustomerInfo_StoreFailureGivesGenericCheckout(t *testing.T) {
	h := newHarness()
	h.store.updateErr = errors.New("store down")

	resp, err := h.svc.SubmitCustomerInfo(context.Background(), checkoutRequest())
	require.NoError(t, err)

	assert.Equal(t, "https://milestonetrucks.com/checkout/", resp.CheckoutURL)
	require.NotNil(t, resp.OrderKey)
	assert.Equal(t, "wc_order_abc", *resp.OrderKey)
	assert.True(t, resp.ReadyForCheckout)
}

func TestSessionOrder(t *testing.T) {
	h := newHarness(limestone())
	_, err := h.svc.AddToCart(context.Background(), model.CartRequest{
		SessionID: "call-1",
		Items:     []model.LineItemRequest{{SKU: "OHMS-6", Quantity: dec("2")}},
	})
	require.NoError(t, err)

	resp, err := h.svc.SessionOrder(context.Background(), "call-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1001), resp.OrderID)
	assert.Contains(t, resp.CheckoutURL, "order-pay/1001")

	_, err = h.svc.SessionOrder(context.Background(), "other")
	assert.ErrorIs(t, err, postgres.ErrSessionNotFound)
}

func TestServiceArea(t *testing.T) {
	h := newHarness()
	h.source.tags["43215"] = 99
	h.source.byTag[99] = []model.CatalogItem{limestone()}

	in := h.svc.ServiceArea(context.Background(), "43215")
	assert.True(t, in.InServiceArea)
	require.Len(t, in.Products, 1)
	assert.Equal(t, "#57 Limestone", in.Products[0].Name)
	assert.Equal(t, 42.5, in.Products[0].PricePerTon)

	out := h.svc.ServiceArea(context.Background(), "90210")
	assert.False(t, out.InServiceArea)
	assert.NotNil(t, out.Products)
	assert.Contains(t, out.Message, "outside our delivery area")
}

func TestInvalidateCache(t *testing.T) {
	h := newHarness(limestone())
	h.source.tags["43215"] = 99
	h.source.byTag[99] = []model.CatalogItem{limestone()}
	h.resolver.ResolveByRegion(context.Background(), "43215")
	h.resolver.ResolveBySKU(context.Background(), "OHMS-6")

	result := h.svc.InvalidateCache(context.Background(), "test")

	assert.True(t, result.Success)
	assert.Equal(t, "Cache cleared successfully", result.Message)
	assert.Equal(t, model.CacheStats{Products: 1, Tags: 1, SKUs: 2}, result.Before)
	assert.Equal(t, model.CacheStats{}, result.After)
	assert.Equal(t, model.CacheStats{}, h.svc.CacheStats())
	assert.False(t, result.Timestamp.IsZero())
}
