package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/max-strong-1/-milestone-voice-agent/internal/model"
	"github.com/max-strong-1/-milestone-voice-agent/internal/repository/cache"
	"github.com/max-strong-1/-milestone-voice-agent/internal/repository/woocommerce"
	"github.com/max-strong-1/-milestone-voice-agent/internal/service"
)

var (
	requestFile  string
	outputFormat string
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price an add-to-cart request against the live catalog without creating an order",
	Long: `Reads an add-to-cart request body and prints the computed cart.

Examples:
  cartctl quote -f request.json
  cat request.json | cartctl quote -f - --format json`,
	Args: cobra.NoArgs,
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVarP(&requestFile, "file", "f", "-", "request JSON file, - for stdin")
	quoteCmd.Flags().StringVar(&outputFormat, "format", "text", "output format (text, json)")
}

func runQuote(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	req, err := readCartRequest(cmd, requestFile)
	if err != nil {
		return err
	}

	store := woocommerce.New(cfg.WooCommerce, log)
	catalogCache := cache.NewCatalogCache(cache.TTLs{
		Products: cfg.Cache.ProductsTTL,
		Tags:     cfg.Cache.TagsTTL,
		SKUs:     cfg.Cache.SKUsTTL,
	}, nil)
	resolver := service.NewCatalogResolver(store, catalogCache, log)
	engine := service.NewCartEngine(resolver, decimal.NewFromFloat(cfg.Checkout.TaxRate), log)
	orders := service.NewOrderLifecycle(store, resolver, nil, nil, service.OrderLifecycleConfig{
		BaseURL:      cfg.Checkout.BaseURL,
		CreatedBy:    cfg.WooCommerce.CreatedBy,
		DefaultState: cfg.Checkout.DefaultState,
	}, log)
	svc := service.NewCheckoutService(engine, orders, resolver, catalogCache, log)

	resp, err := svc.Quote(cmd.Context(), req)
	if err != nil {
		if verr, ok := model.AsValidationError(err); ok {
			return fmt.Errorf("%s: %s", verr.Code, verr.Message)
		}
		return err
	}

	return printQuote(cmd.OutOrStdout(), resp, outputFormat)
}

func readCartRequest(cmd *cobra.Command, path string) (model.CartRequest, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return model.CartRequest{}, fmt.Errorf("failed to open request: %w", err)
		}
		defer f.Close()
		r = f
	}

	var req model.CartRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return model.CartRequest{}, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

func printQuote(w io.Writer, resp model.CartResponse, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Fprintf(w, "Session %s\n\n", resp.SessionID)
	for _, item := range resp.Items {
		fmt.Fprintf(w, "  %-40s %8.2f %-5s x %8.2f = %10.2f\n",
			item.ProductName, item.Quantity, item.Unit, item.PricePerUnit, item.LineTotal)
	}
	if resp.Delivery != nil {
		fmt.Fprintf(w, "  %-40s %8d trucks %22.2f\n", "Delivery", resp.Delivery.Trucks, resp.Delivery.Fee)
	}
	fmt.Fprintf(w, "\n  Subtotal: %10.2f\n  Tax:      %10.2f\n  Total:    %10.2f\n\n%s\n",
		resp.Subtotal, resp.TaxEstimate, resp.GrandTotal, resp.Message)
	return nil
}
