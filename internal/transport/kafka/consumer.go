package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/segmentio/kafka-go"

	"github.com/max-strong-1/-milestone-voice-agent/internal/model"
)

// CacheInvalidator — то, что консьюмер умеет делать с сервисом: сбросить кэш каталога
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context, reason string) model.CacheInvalidation
}

// Consumer читает события каталога и сбрасывает кэш, когда в магазине поменялись цены
type Consumer struct {
	reader  *kafka.Reader
	service CacheInvalidator
	log     *slog.Logger
}

// NewConsumer создает новый экземпляр консьюмера
func NewConsumer(brokers []string, topic, groupID string, service CacheInvalidator, log *slog.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   topic,
		// старые события не нужны: кэш живёт минуты, а не часы
		StartOffset: kafka.LastOffset,
	})

	return &Consumer{
		reader:  reader,
		service: service,
		log:     log,
	}
}

// Run запускает цикл чтения сообщений из Kafka
// функция блокирующая, поэтому запускается в отдельной горутине
func (c *Consumer) Run(ctx context.Context) {
	log := c.log.With(slog.String("component", "kafka_catalog_consumer"))
	log.Info("Kafka consumer started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Context cancelled, stopping consumer.")
			return
		default:
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				if errors.Is(err, io.EOF) {
					log.Info("Kafka reader closed")
					return
				}
				log.Error("failed to fetch message", slog.String("error", err.Error()))
				continue
			}

			log.Debug("received message", slog.String("topic", msg.Topic), slog.Int("partition", msg.Partition), slog.Int64("offset", msg.Offset))

			// сообщение подтверждаем только после успешной обработки
			if err := c.handleMessage(ctx, msg.Value); err != nil {
				log.Error("failed to handle message", slog.String("error", err.Error()))
				continue
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				log.Error("failed to commit message", slog.String("error", err.Error()))
			}
		}
	}
}

// handleMessage разбирает одно событие каталога
// невалидные сообщения пропускаются: перечитывать их бессмысленно
func (c *Consumer) handleMessage(ctx context.Context, value []byte) error {
	var event model.CatalogEvent
	if err := json.Unmarshal(value, &event); err != nil {
		c.log.Warn("failed to unmarshal catalog event, skipping", slog.String("error", err.Error()))
		return nil
	}

	if err := event.Validate(); err != nil {
		c.log.Warn("catalog event validation failed, skipping",
			slog.String("error", err.Error()),
			slog.String("type", event.Type),
		)
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	result := c.service.InvalidateCache(ctx, eventReason(event))
	c.log.Info("catalog event processed",
		slog.String("type", event.Type),
		slog.String("sku", event.SKU),
		slog.Int("entries_cleared", result.Before.Total()),
	)
	return nil
}

func eventReason(event model.CatalogEvent) string {
	parts := []string{"kafka", event.Type}
	if event.SKU != "" {
		parts = append(parts, event.SKU)
	}
	if event.Reason != "" {
		parts = append(parts, event.Reason)
	}
	return strings.Join(parts, ": ")
}

// Close останавливает консьюмер
func (c *Consumer) Close() error {
	c.log.Info("Closing kafka consumer")
	return c.reader.Close()
}
