package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/max-strong-1/-milestone-voice-agent/internal/model"
)

// messageWriter — часть kafka.Writer, которая нужна продьюсеру
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer публикует события заказов и каталога
type Producer struct {
	orders  messageWriter
	catalog messageWriter
	log     *slog.Logger
}

// NewProducer создаёт продьюсер для двух топиков
func NewProducer(brokers []string, orderTopic, catalogTopic string, log *slog.Logger) *Producer {
	return &Producer{
		orders:  newWriter(brokers, orderTopic),
		catalog: newWriter(brokers, catalogTopic),
		log:     log,
	}
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
}

// PublishOrderEvent отправляет событие черновика заказа, ключ сообщения — id заказа
func (p *Producer) PublishOrderEvent(ctx context.Context, event model.OrderEvent) error {
	const op = "kafka.Producer.PublishOrderEvent"

	if err := p.write(ctx, p.orders, strconv.FormatInt(event.OrderID, 10), event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	p.log.Debug("order event published", slog.String("type", event.Type), slog.Int64("order_id", event.OrderID))
	return nil
}

// PublishCatalogEvent отправляет событие каталога, его прочитают все запущенные экземпляры
func (p *Producer) PublishCatalogEvent(ctx context.Context, event model.CatalogEvent) error {
	const op = "kafka.Producer.PublishCatalogEvent"

	if err := event.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := p.write(ctx, p.catalog, event.SKU, event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	p.log.Info("catalog event published", slog.String("type", event.Type), slog.String("sku", event.SKU))
	return nil
}

func (p *Producer) write(ctx context.Context, w messageWriter, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return w.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: value})
}

// Close закрывает оба писателя
func (p *Producer) Close() error {
	errOrders := p.orders.Close()
	errCatalog := p.catalog.Close()
	if errOrders != nil {
		return errOrders
	}
	return errCatalog
}
