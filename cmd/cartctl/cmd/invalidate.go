package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/max-strong-1/-milestone-voice-agent/internal/model"
	"github.com/max-strong-1/-milestone-voice-agent/internal/transport/kafka"
)

var (
	invalidateReason string
	invalidateSKU    string
)

var invalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Tell every running instance to drop its catalog cache",
	Long: `Publishes a catalog event to Kafka. Each instance consumes it and clears its cache.
With --sku the event is a price change for that product, otherwise a full catalog refresh.

Examples:
  cartctl invalidate --reason "spring price list"
  cartctl invalidate --sku OHMS-6`,
	Args: cobra.NoArgs,
	RunE: runInvalidate,
}

func init() {
	invalidateCmd.Flags().StringVar(&invalidateReason, "reason", "manual invalidation", "reason recorded in the event")
	invalidateCmd.Flags().StringVar(&invalidateSKU, "sku", "", "product whose price changed")
}

func runInvalidate(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.Kafka.Enabled() {
		return errors.New("kafka.brokers is empty, nothing to publish to")
	}

	event := model.CatalogEvent{
		Type:       model.CatalogRefreshed,
		SKU:        invalidateSKU,
		Reason:     invalidateReason,
		OccurredAt: time.Now().UTC(),
	}
	if invalidateSKU != "" {
		event.Type = model.CatalogPriceChanged
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic, cfg.Kafka.CatalogTopic, log)
	defer producer.Close()

	if err := producer.PublishCatalogEvent(cmd.Context(), event); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "published %s to %s\n", event.Type, cfg.Kafka.CatalogTopic)
	return nil
}
