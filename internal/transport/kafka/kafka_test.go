package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/max-strong-1/-milestone-voice-agent/internal/lib/logger"
	"github.com/max-strong-1/-milestone-voice-agent/internal/model"
)

type fakeInvalidator struct {
	reasons []string
}

func (f *fakeInvalidator) InvalidateCache(_ context.Context, reason string) model.CacheInvalidation {
	f.reasons = append(f.reasons, reason)
	return model.CacheInvalidation{Success: true, Before: model.CacheStats{Products: 2, SKUs: 1}}
}

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestHandleMessage_PriceChangedClearsCache(t *testing.T) {
	inv := &fakeInvalidator{}
	c := &Consumer{service: inv, log: logger.Discard()}

	err := c.handleMessage(context.Background(), []byte(`{"type":"price_changed","sku":"OHMS-6"}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"kafka: price_changed: OHMS-6"}, inv.reasons)
}

func TestHandleMessage_InvalidMessagesAreSkipped(t *testing.T) {
	inv := &fakeInvalidator{}
	c := &Consumer{service: inv, log: logger.Discard()}

	cases := map[string]string{
		"not json":     `{{{`,
		"missing type": `{"sku":"X"}`,
		"unknown type": `{"type":"stock_changed"}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, c.handleMessage(context.Background(), []byte(payload)))
		})
	}
	assert.Empty(t, inv.reasons)
}

func TestHandleMessage_CancelledContextIsNotCommitted(t *testing.T) {
	inv := &fakeInvalidator{}
	c := &Consumer{service: inv, log: logger.Discard()}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.handleMessage(ctx, []byte(`{"type":"catalog_refreshed"}`))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, inv.reasons)
}

func TestProducer_PublishOrderEvent(t *testing.T) {
	orders, catalog := &fakeWriter{}, &fakeWriter{}
	p := &Producer{orders: orders, catalog: catalog, log: logger.Discard()}

	err := p.PublishOrderEvent(context.Background(), model.OrderEvent{
		Type:       model.OrderEventCreated,
		OrderID:    1001,
		SessionID:  "s-1",
		GrandTotal: 307.63,
	})
	require.NoError(t, err)
	require.Len(t, orders.msgs, 1)
	assert.Empty(t, catalog.msgs)

	assert.Equal(t, "1001", string(orders.msgs[0].Key))
	var got model.OrderEvent
	require.NoError(t, json.Unmarshal(orders.msgs[0].Value, &got))
	assert.Equal(t, "s-1", got.SessionID)
	assert.Equal(t, 307.63, got.GrandTotal)
}

func TestProducer_PublishCatalogEventValidates(t *testing.T) {
	orders, catalog := &fakeWriter{}, &fakeWriter{}
	p := &Producer{orders: orders, catalog: catalog, log: logger.Discard()}

	err := p.PublishCatalogEvent(context.Background(), model.CatalogEvent{Type: "bogus"})
	require.Error(t, err)
	assert.Empty(t, catalog.msgs)

	require.NoError(t, p.PublishCatalogEvent(context.Background(), model.CatalogEvent{Type: model.CatalogRefreshed}))
	assert.Len(t, catalog.msgs, 1)
}

func TestProducer_WriteError(t *testing.T) {
	boom := errors.New("broker down")
	p := &Producer{orders: &fakeWriter{err: boom}, catalog: &fakeWriter{}, log: logger.Discard()}

	err := p.PublishOrderEvent(context.Background(), model.OrderEvent{OrderID: 1})
	assert.ErrorIs(t, err, boom)
}

func TestProducer_CloseClosesBothWriters(t *testing.T) {
	orders, catalog := &fakeWriter{}, &fakeWriter{}
	p := &Producer{orders: orders, catalog: catalog, log: logger.Discard()}

	require.NoError(t, p.Close())
	assert.True(t, orders.closed)
	assert.True(t, catalog.closed)
}
