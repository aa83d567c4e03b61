package woocommerce

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/max-strong-1/-milestone-voice-agent/internal/config"
	"github.com/max-strong-1/-milestone-voice-agent/internal/lib/logger"
	"github.com/max-strong-1/-milestone-voice-agent/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return New(config.WooCommerce{
		URL:            srv.URL + "/",
		ConsumerKey:    "ck_test",
		ConsumerSecret: "cs_test",
		Timeout:        2 * time.Second,
	}, logger.Discard())
}

func TestProductBySKU_MapsMetaAndAuth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/products", r.URL.Path)
		assert.Equal(t, "ck_test", r.URL.Query().Get("consumer_key"))
		assert.Equal(t, "cs_test", r.URL.Query().Get("consumer_secret"))
		assert.Equal(t, "OHMS-6", r.URL.Query().Get("sku"))
		assert.Equal(t, "1", r.URL.Query().Get("per_page"))

		w.Write([]byte(`[{
			"id": 42, "sku": "OHMS-6", "name": "#57 Limestone | STONE DELIVERY | Columbus", "price": "45.00",
			"meta_data": [
				{"id": 1, "key": "density", "value": "1.6"},
				{"id": 2, "key": "truck_max_quantity", "value": 20},
				{"id": 3, "key": "minimum_quantity", "value": "oops"}
			]
		}]`))
	})

	item, err := client.ProductBySKU(context.Background(), "OHMS-6")
	require.NoError(t, err)
	require.NotNil(t, item)

	assert.Equal(t, int64(42), item.ID)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("45")))
	assert.Equal(t, 1.6, item.Density)
	assert.Equal(t, 20, item.TruckCapacity)
	assert.Equal(t, model.DefaultMinimumOrder, item.MinimumOrder)
	assert.Equal(t, "#57 Limestone", item.DisplayName())
	assert.Equal(t, "Columbus", item.Yard)
}

func TestProductBySKU_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	item, err := client.ProductBySKU(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestProductByID_404IsNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/products/7", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":"woocommerce_rest_product_invalid_id","message":"Invalid ID."}`))
	})

	item, err := client.ProductByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestProductByID_ServerErrorIsReturned(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"woocommerce_rest_cannot_view","message":"Sorry, you cannot list resources."}`))
	})

	_, err := client.ProductByID(context.Background(), 7)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "woocommerce_rest_cannot_view", apiErr.Code)
}

func TestTagIDByRegion(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/wp-json/wc/v3/products/tags", r.URL.Path)
		if r.URL.Query().Get("search") == "43215" {
			w.Write([]byte(`[{"id": 99, "name": "43215"}]`))
			return
		}
		w.Write([]byte(`[]`))
	})

	id, found, err := client.TagIDByRegion(context.Background(), "43215")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(99), id)

	_, found, err = client.TagIDByRegion(context.Background(), "90210")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestProductsByTag(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "99", q.Get("tag"))
		assert.Equal(t, "100", q.Get("per_page"))
		assert.Equal(t, "publish", q.Get("status"))
		w.Write([]byte(`[{"id": 1, "sku": "A", "name": "A", "price": "10"}, {"id": 2, "sku": "B", "name": "B", "price": ""}]`))
	})

	items, err := client.ProductsByTag(context.Background(), 99)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].HasPrice())
	assert.False(t, items[1].HasPrice())
	assert.Equal(t, model.DefaultDensity, items[1].Density)
	assert.Equal(t, model.DefaultTruckCapacity, items[1].TruckCapacity)
}

func TestCreateOrder_SendsNumericQuantity(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/wp-json/wc/v3/orders", r.URL.Path)

		raw, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		var body map[string]any
		assert.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "pending", body["status"])

		lines := body["line_items"].([]any)
		if !assert.Len(t, lines, 1) {
			return
		}
		line := lines[0].(map[string]any)
		assert.Equal(t, 12.5, line["quantity"])
		assert.Equal(t, float64(42), line["product_id"])

		shipping := body["shipping_lines"].([]any)
		assert.Len(t, shipping, 1)
		assert.Equal(t, "flat_rate", shipping[0].(map[string]any)["method_id"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 1001, "order_key": "wc_order_abc"}`))
	})

	ref, err := client.CreateOrder(context.Background(), model.PendingOrder{
		Status:        "pending",
		LineItems:     []model.OrderLineItem{{ProductID: 42, Quantity: decimal.RequireFromString("12.5")}},
		Meta:          []model.MetaEntry{{Key: "_voice_agent_session", Value: "s-1"}},
		ShippingLines: []model.ShippingLine{{MethodID: "flat_rate", MethodTitle: "Truck Delivery", Total: "75.00"}},
	})
	require.NoError(t, err)
	assert.Equal(t, model.OrderRef{ID: 1001, Key: "wc_order_abc"}, ref)
}

func TestUpdateOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/wp-json/wc/v3/orders/1001", r.URL.Path)

		var update model.OrderUpdate
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&update))
		assert.Equal(t, "Jane", update.Billing.FirstName)
		assert.Equal(t, "6145551234", update.Billing.Phone)
		assert.Empty(t, update.Shipping.Phone)

		w.Write([]byte(`{"id": 1001, "order_key": "wc_order_abc"}`))
	})

	ref, err := client.UpdateOrder(context.Background(), 1001, model.OrderUpdate{
		Billing:  model.Address{FirstName: "Jane", Phone: "6145551234"},
		Shipping: model.Address{FirstName: "Jane"},
	})
	require.NoError(t, err)
	assert.Equal(t, "wc_order_abc", ref.Key)
}

func TestPing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-WP-Total", "128")
		w.Write([]byte(`[{"id": 1}]`))
	})

	total, err := client.Ping(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "128", total)
}

func TestNotConfigured(t *testing.T) {
	client := New(config.WooCommerce{}, logger.Discard())

	_, err := client.ProductBySKU(context.Background(), "X")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
