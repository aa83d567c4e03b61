package woocommerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/max-strong-1/-milestone-voice-agent/internal/config"
	"github.com/max-strong-1/-milestone-voice-agent/internal/model"
)

const apiPrefix = "/wp-json/wc/v3/"

// ErrNotConfigured возвращается, если у клиента нет адреса магазина или ключей
var ErrNotConfigured = errors.New("woocommerce client is not configured")

// APIError — ответ магазина с кодом не 2xx
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("woocommerce: status %d", e.Status)
	}
	return fmt.Sprintf("woocommerce: status %d: %s (%s)", e.Status, e.Message, e.Code)
}

// Client — клиент REST API WooCommerce (wc/v3) с авторизацией через query string
// реализует и каталог, и хранилище заказов для сервисного слоя
type Client struct {
	baseURL string
	key     string
	secret  string
	http    *http.Client
	log     *slog.Logger
}

// New создаёт клиент из конфига магазина
func New(cfg config.WooCommerce, log *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		key:     cfg.ConsumerKey,
		secret:  cfg.ConsumerSecret,
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     log,
	}
}

// ProductBySKU ищет товар по SKU, (nil, nil) если такого нет
func (c *Client) ProductBySKU(ctx context.Context, sku string) (*model.CatalogItem, error) {
	const op = "woocommerce.Client.ProductBySKU"

	var products []product
	q := url.Values{"sku": {sku}, "per_page": {"1"}}
	if _, err := c.do(ctx, http.MethodGet, "products", q, nil, &products); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(products) == 0 {
		return nil, nil
	}
	item := products[0].toModel()
	return &item, nil
}

// ProductByID получает товар по id, (nil, nil) если магазин ответил 404
func (c *Client) ProductByID(ctx context.Context, id int64) (*model.CatalogItem, error) {
	const op = "woocommerce.Client.ProductByID"

	var p product
	if _, err := c.do(ctx, http.MethodGet, "products/"+strconv.FormatInt(id, 10), nil, nil, &p); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	item := p.toModel()
	return &item, nil
}

// TagIDByRegion ищет тег товаров, которым помечен zip
func (c *Client) TagIDByRegion(ctx context.Context, zip string) (int64, bool, error) {
	const op = "woocommerce.Client.TagIDByRegion"

	var tags []tag
	q := url.Values{"search": {zip}, "per_page": {"1"}}
	if _, err := c.do(ctx, http.MethodGet, "products/tags", q, nil, &tags); err != nil {
		return 0, false, fmt.Errorf("%s: %w", op, err)
	}
	if len(tags) == 0 {
		return 0, false, nil
	}
	return tags[0].ID, true, nil
}

// ProductsByTag возвращает опубликованные товары с тегом (до 100 штук)
func (c *Client) ProductsByTag(ctx context.Context, tagID int64) ([]model.CatalogItem, error) {
	const op = "woocommerce.Client.ProductsByTag"

	var products []product
	q := url.Values{
		"tag":      {strconv.FormatInt(tagID, 10)},
		"per_page": {"100"},
		"status":   {"publish"},
	}
	if _, err := c.do(ctx, http.MethodGet, "products", q, nil, &products); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items := make([]model.CatalogItem, 0, len(products))
	for _, p := range products {
		items = append(items, p.toModel())
	}
	return items, nil
}

// CreateOrder создаёт заказ и возвращает его id и ключ
func (c *Client) CreateOrder(ctx context.Context, order model.PendingOrder) (model.OrderRef, error) {
	const op = "woocommerce.Client.CreateOrder"

	var resp orderResponse
	if _, err := c.do(ctx, http.MethodPost, "orders", nil, newOrderRequest(order), &resp); err != nil {
		return model.OrderRef{}, fmt.Errorf("%s: %w", op, err)
	}
	return model.OrderRef{ID: resp.ID, Key: resp.OrderKey}, nil
}

// UpdateOrder дописывает billing/shipping и заметку в существующий заказ
func (c *Client) UpdateOrder(ctx context.Context, id int64, update model.OrderUpdate) (model.OrderRef, error) {
	const op = "woocommerce.Client.UpdateOrder"

	var resp orderResponse
	if _, err := c.do(ctx, http.MethodPut, "orders/"+strconv.FormatInt(id, 10), nil, update, &resp); err != nil {
		return model.OrderRef{}, fmt.Errorf("%s: %w", op, err)
	}
	return model.OrderRef{ID: resp.ID, Key: resp.OrderKey}, nil
}

// Ping проверяет доступность магазина и возвращает число товаров из X-WP-Total
func (c *Client) Ping(ctx context.Context) (string, error) {
	const op = "woocommerce.Client.Ping"

	var products []json.RawMessage
	header, err := c.do(ctx, http.MethodGet, "products", url.Values{"per_page": {"1"}}, nil, &products)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	total := header.Get("X-WP-Total")
	if total == "" {
		total = "unknown"
	}
	return total, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (http.Header, error) {
	if c.baseURL == "" || c.key == "" || c.secret == "" {
		return nil, ErrNotConfigured
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("consumer_key", c.key)
	query.Set("consumer_secret", c.secret)
	endpoint := c.baseURL + apiPrefix + path + "?" + query.Encode()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("woocommerce call",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var errBody errorBody
		if json.Unmarshal(data, &errBody) == nil {
			apiErr.Code, apiErr.Message = errBody.Code, errBody.Message
		}
		return resp.Header, apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.Header, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.Header, nil
}
