package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/max-strong-1/-milestone-voice-agent/internal/model"
)

// DefaultTaxRate — усреднённая ставка налога штата Огайо на материалы
// это только оценка, точный налог магазин считает по адресу доставки при оплате
var DefaultTaxRate = decimal.RequireFromString("0.07")

// сколько позиций одного запроса резолвим параллельно
const maxConcurrentLookups = 4

// CartEngine считает корзину: цены позиций, подытог, доставку, налог и итог
type CartEngine struct {
	resolver     ItemResolver
	taxRate      decimal.Decimal
	newSessionID func() string
	log          *slog.Logger
}

// NewCartEngine создаёт движок расчёта корзины
func NewCartEngine(resolver ItemResolver, taxRate decimal.Decimal, log *slog.Logger) *CartEngine {
	if !taxRate.IsPositive() {
		taxRate = DefaultTaxRate
	}
	return &CartEngine{
		resolver:     resolver,
		taxRate:      taxRate,
		newSessionID: func() string { return "session_" + uuid.NewString() },
		log:          log,
	}
}

// ComputeCart нормализует запрос, подтверждает цену каждой позиции и считает итоги
// если хоть у одной позиции нет положительной цены, падает весь расчёт: частичную корзину не отдаём
func (e *CartEngine) ComputeCart(ctx context.Context, req model.CartRequest) (model.Cart, error) {
	const op = "service.CartEngine.ComputeCart"

	norm, err := req.Normalize(e.newSessionID)
	if err != nil {
		return model.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	log := e.log.With(slog.String("op", op), slog.String("session_id", norm.SessionID))
	if norm.Legacy {
		log.Debug("legacy single-item request normalized")
	}

	items, err := e.resolveLines(ctx, norm.Lines)
	if err != nil {
		log.Warn("cart pricing validation failed", slog.String("error", err.Error()))
		return model.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	cart := model.Cart{
		SessionID: norm.SessionID,
		Items:     items,
		Delivery:  norm.Delivery,
		RegionZip: norm.RegionZip,
		Totals:    ComputeTotals(items, norm.Delivery, e.taxRate),
	}

	log.Info("cart computed",
		slog.Int("items", len(items)),
		slog.String("subtotal", cart.Totals.Subtotal.StringFixed(2)),
		slog.String("grand_total", cart.Totals.GrandTotal.StringFixed(2)),
	)
	return cart, nil
}

// resolveLines резолвит позиции параллельно, порядок позиций сохраняется
// при нескольких позициях без цены в ошибке называется первая по порядку
func (e *CartEngine) resolveLines(ctx context.Context, lines []model.CartLine) ([]model.ResolvedLineItem, error) {
	resolved := make([]model.ResolvedLineItem, len(lines))
	failed := make([]bool, len(lines))

	var g errgroup.Group
	g.SetLimit(maxConcurrentLookups)
	for i, line := range lines {
		g.Go(func() error {
			item, ok := e.resolveLine(ctx, line)
			if !ok {
				failed[i] = true
				return model.ErrInvalidPricing(line.Identifier())
			}
			resolved[i] = item
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for i, f := range failed {
			if f {
				return nil, model.ErrInvalidPricing(lines[i].Identifier())
			}
		}
		return nil, err
	}
	return resolved, nil
}

// resolveLine берёт цену вызывающего, если она положительна; иначе идёт в каталог
func (e *CartEngine) resolveLine(ctx context.Context, line model.CartLine) (model.ResolvedLineItem, bool) {
	sku := line.SKU
	productID := line.ProductID
	name := line.ProductName
	price := line.Price

	if !price.IsPositive() {
		var (
			product model.CatalogItem
			found   bool
		)
		if sku != "" {
			product, found = e.resolver.ResolveBySKU(ctx, sku)
		}
		if !found && productID > 0 {
			product, found = e.resolver.ResolveByID(ctx, productID)
		}
		if found {
			price = product.Price
			productID = product.ID
			if sku == "" {
				sku = product.SKU
			}
			if name == "" {
				name = product.DisplayName()
			}
		}
	}

	if !price.IsPositive() {
		return model.ResolvedLineItem{}, false
	}
	if name == "" {
		name = line.Identifier()
	}

	return model.ResolvedLineItem{
		SKU:       sku,
		ProductID: productID,
		Name:      name,
		Quantity:  line.Quantity,
		Unit:      line.Unit,
		UnitPrice: price,
		LineTotal: model.Round2(line.Quantity.Mul(price)),
	}, true
}

// ComputeTotals считает итоги; доставка входит в подытог до налога
func ComputeTotals(items []model.ResolvedLineItem, delivery *model.DeliveryInfo, taxRate decimal.Decimal) model.CartTotals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal)
	}

	fee := decimal.Zero
	if delivery != nil && delivery.Fee.IsPositive() {
		fee = model.Round2(delivery.Fee)
		subtotal = subtotal.Add(fee)
	}

	subtotal = model.Round2(subtotal)
	tax := model.Round2(subtotal.Mul(taxRate))

	return model.CartTotals{
		Subtotal:    subtotal,
		DeliveryFee: fee,
		TaxEstimate: tax,
		GrandTotal:  model.Round2(subtotal.Add(tax)),
	}
}
