package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath — где искать конфиг, если CONFIG_PATH не задан
const DefaultPath = "config/config.yaml"

// адрес магазина на случай, если ни конфиг, ни окружение его не задали
const fallbackStoreURL = "https://milestonetrucks.com"

// Config определяет структуру конфигурации всего приложения целиком
type Config struct {
	HTTPServer  `yaml:"http_server"`
	WooCommerce `yaml:"woocommerce"`
	Checkout    `yaml:"checkout"`
	Cache       `yaml:"cache"`
	Postgres    `yaml:"postgres"`
	Kafka       `yaml:"kafka"`
	Logger      `yaml:"logger"`
	Metrics     `yaml:"metrics"`
}

// HTTPServer содержит конфигурацию для HTTP-сервера
type HTTPServer struct {
	Port    string        `yaml:"port"`
	Timeout time.Duration `yaml:"timeout"`
}

// WooCommerce содержит адрес магазина и ключи REST API
// ключи обычно приходят из окружения, а не из файла
type WooCommerce struct {
	URL            string        `yaml:"url"`
	ConsumerKey    string        `yaml:"consumer_key"`
	ConsumerSecret string        `yaml:"consumer_secret"`
	Timeout        time.Duration `yaml:"timeout"`
	CreatedBy      string        `yaml:"created_by"`
}

// Checkout содержит параметры оформления заказа
type Checkout struct {
	BaseURL      string  `yaml:"base_url"`
	DefaultState string  `yaml:"default_state"`
	TaxRate      float64 `yaml:"tax_rate"`
}

// Cache содержит сроки жизни записей кэша каталога
type Cache struct {
	ProductsTTL time.Duration `yaml:"products_ttl"`
	TagsTTL     time.Duration `yaml:"tags_ttl"`
	SKUsTTL     time.Duration `yaml:"skus_ttl"`
}

// Postgres содержит конфигурацию для подключения к базе данных
// пустой host выключает учёт сессий
type Postgres struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	DBName   string `yaml:"db_name"`
	SSLMode  string `yaml:"ssl_mode"`
}

// Enabled сообщает, настроена ли база
func (p Postgres) Enabled() bool {
	return p.Host != ""
}

// DSN собирает строку подключения для pgx
func (p Postgres) DSN() string {
	return fmt.Sprintf("user=%s password=%s host=%s port=%s dbname=%s sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode,
	)
}

// Kafka содержит конфигурацию для подключения к кафке
// без брокеров консьюмер и продьюсер не запускаются
type Kafka struct {
	Brokers      []string `yaml:"brokers"`
	CatalogTopic string   `yaml:"catalog_topic"`
	OrderTopic   string   `yaml:"order_topic"`
	GroupID      string   `yaml:"group_id"`
}

// Enabled сообщает, настроена ли кафка
func (k Kafka) Enabled() bool {
	return len(k.Brokers) > 0
}

// Logger содержит конфигурацию для логгера
type Logger struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Metrics включает эндпоинт /metrics
type Metrics struct {
	Enabled bool `yaml:"enabled"`
}

// MustLoad загружает конфигурацию из файла по указанному пути
// в случае ошибки программа завершается с фатальной ошибкой
func MustLoad(configPath string) *Config {
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %s", err)
	}
	return cfg
}

// Load читает конфиг, накладывает переменные окружения и значения по умолчанию
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(file)
}

// Parse разбирает yaml и доводит конфиг до рабочего состояния
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

// Path возвращает путь к конфигу из CONFIG_PATH или путь по умолчанию
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// MissingWooCommerce перечисляет незаданные параметры магазина, нужен для health-check
func (c *Config) MissingWooCommerce() []string {
	var missing []string
	if c.WooCommerce.URL == "" {
		missing = append(missing, "WOOCOMMERCE_URL")
	}
	if c.WooCommerce.ConsumerKey == "" {
		missing = append(missing, "WOOCOMMERCE_CONSUMER_KEY")
	}
	if c.WooCommerce.ConsumerSecret == "" {
		missing = append(missing, "WOOCOMMERCE_CONSUMER_SECRET")
	}
	return missing
}

func (c *Config) applyEnv() {
	overrides := []struct {
		env string
		dst *string
	}{
		{"WOOCOMMERCE_URL", &c.WooCommerce.URL},
		{"WOOCOMMERCE_CONSUMER_KEY", &c.WooCommerce.ConsumerKey},
		{"WOOCOMMERCE_CONSUMER_SECRET", &c.WooCommerce.ConsumerSecret},
		{"CHECKOUT_BASE_URL", &c.Checkout.BaseURL},
		{"LOG_LEVEL", &c.Logger.Level},
		{"HTTP_PORT", &c.HTTPServer.Port},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
}

func (c *Config) applyDefaults() {
	if c.HTTPServer.Port == "" {
		c.HTTPServer.Port = ":8080"
	}
	if c.HTTPServer.Timeout == 0 {
		c.HTTPServer.Timeout = 15 * time.Second
	}
	if c.WooCommerce.Timeout == 0 {
		c.WooCommerce.Timeout = 10 * time.Second
	}
	if c.WooCommerce.CreatedBy == "" {
		c.WooCommerce.CreatedBy = "voice_agent_robert"
	}
	if c.Checkout.BaseURL == "" {
		c.Checkout.BaseURL = c.WooCommerce.URL
	}
	if c.Checkout.BaseURL == "" {
		c.Checkout.BaseURL = fallbackStoreURL
	}
	if c.Checkout.DefaultState == "" {
		c.Checkout.DefaultState = "OH"
	}
	if c.Checkout.TaxRate <= 0 {
		c.Checkout.TaxRate = 0.07
	}
	if c.Cache.ProductsTTL == 0 {
		c.Cache.ProductsTTL = 5 * time.Minute
	}
	if c.Cache.TagsTTL == 0 {
		c.Cache.TagsTTL = 30 * time.Minute
	}
	if c.Cache.SKUsTTL == 0 {
		c.Cache.SKUsTTL = 10 * time.Minute
	}
	if c.Kafka.CatalogTopic == "" {
		c.Kafka.CatalogTopic = "catalog-events"
	}
	if c.Kafka.OrderTopic == "" {
		c.Kafka.OrderTopic = "order-events"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "voice-cart"
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "INFO"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "text"
	}
}
