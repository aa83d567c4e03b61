package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/max-strong-1/-milestone-voice-agent/internal/config"
	"github.com/max-strong-1/-milestone-voice-agent/internal/lib/logger"
	"github.com/max-strong-1/-milestone-voice-agent/internal/repository/cache"
	"github.com/max-strong-1/-milestone-voice-agent/internal/repository/postgres"
	"github.com/max-strong-1/-milestone-voice-agent/internal/repository/woocommerce"
	"github.com/max-strong-1/-milestone-voice-agent/internal/service"
	httptransport "github.com/max-strong-1/-milestone-voice-agent/internal/transport/http"
	"github.com/max-strong-1/-milestone-voice-agent/internal/transport/kafka"
)

func main() {
	// 1. Инициализация конфигурации
	cfg := config.MustLoad(config.Path())

	// 2. Инициализация логгера
	log := logger.New(cfg.Logger.Level, cfg.Logger.Format)
	log.Info("starting voice cart service", slog.String("log_level", cfg.Logger.Level))

	if missing := cfg.MissingWooCommerce(); len(missing) > 0 {
		// сервис всё равно стартует: health-check покажет, чего не хватает
		log.Warn("woocommerce is not fully configured", slog.Any("missing", missing))
	}

	// 3. Магазин и кэш каталога
	store := woocommerce.New(cfg.WooCommerce, log)
	catalogCache := cache.NewCatalogCache(cache.TTLs{
		Products: cfg.Cache.ProductsTTL,
		Tags:     cfg.Cache.TagsTTL,
		SKUs:     cfg.Cache.SKUsTTL,
	}, nil)

	// 4. Учёт сессий в postgres, если настроен
	var sessions service.SessionRepository
	if cfg.Postgres.Enabled() {
		initCtx, initCancel := context.WithTimeout(context.Background(), 10*time.Second)
		dbpool, err := postgres.New(initCtx, cfg.Postgres)
		if err == nil {
			err = postgres.EnsureSchema(initCtx, dbpool)
		}
		initCancel()
		if err != nil {
			log.Error("failed to connect to postgres", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer dbpool.Close()
		sessions = postgres.NewSessionRepository(dbpool)
		log.Info("successfully connected to postgres")
	} else {
		log.Info("postgres is not configured, checkout sessions are not tracked")
	}

	// 5. Продьюсер событий заказов, если настроена кафка
	var (
		events   service.EventPublisher
		producer *kafka.Producer
	)
	if cfg.Kafka.Enabled() {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic, cfg.Kafka.CatalogTopic, log)
		events = producer
	}

	// 6. Инициализация сервисного слоя
	resolver := service.NewCatalogResolver(store, catalogCache, log)
	engine := service.NewCartEngine(resolver, decimal.NewFromFloat(cfg.Checkout.TaxRate), log)
	orders := service.NewOrderLifecycle(store, resolver, sessions, events, service.OrderLifecycleConfig{
		BaseURL:      cfg.Checkout.BaseURL,
		CreatedBy:    cfg.WooCommerce.CreatedBy,
		DefaultState: cfg.Checkout.DefaultState,
	}, log)
	checkoutSvc := service.NewCheckoutService(engine, orders, resolver, catalogCache, log)

	// 7. Консьюмер событий каталога
	ctx, cancel := context.WithCancel(context.Background())
	var consumer *kafka.Consumer
	if cfg.Kafka.Enabled() {
		consumer = kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.CatalogTopic, cfg.Kafka.GroupID, checkoutSvc, log)
		go consumer.Run(ctx)
	}

	// 8. Инициализация и запуск HTTP-сервера
	handler := httptransport.NewHandler(checkoutSvc, store, httptransport.Options{
		MissingConfig:  cfg.MissingWooCommerce(),
		MetricsEnabled: cfg.Metrics.Enabled,
	}, log)
	httpServer := httptransport.NewServer(cfg.HTTPServer, handler)
	log.Info("starting http server", slog.String("port", httpServer.Addr()))

	go func() {
		if err := httpServer.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed to start", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// 9. Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down application")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http server shutdown failed", slog.String("error", err.Error()))
	}

	if consumer != nil {
		if err := consumer.Close(); err != nil {
			log.Error("error closing kafka consumer", slog.String("error", err.Error()))
		}
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Error("error closing kafka producer", slog.String("error", err.Error()))
		}
	}

	log.Info("application stopped")
}
