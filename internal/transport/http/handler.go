package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/max-strong-1/-milestone-voice-agent/internal/model"
	"github.com/max-strong-1/-milestone-voice-agent/internal/repository/postgres"
)

// фразы, которые голосовой агент произносит, если что-то пошло не так на нашей стороне
const (
	cartApology     = "I had trouble adding items to your cart. Let me try again - what materials did you want to order?"
	genericApology  = "Sorry, something went wrong on my end. Could you say that again?"
	checkoutApology = "I had trouble setting up checkout. Let me give you the checkout link and you can enter your information there. Or I can give you our phone number to complete the order."
)

// CheckoutAPI определяет интерфейс сервиса, который обслуживает голосового агента
type CheckoutAPI interface {
	AddToCart(ctx context.Context, req model.CartRequest) (model.CartResponse, error)
	SubmitCustomerInfo(ctx context.Context, req model.CheckoutRequest) (model.CheckoutResponse, error)
	SessionOrder(ctx context.Context, sessionID string) (model.SessionOrderResponse, error)
	ServiceArea(ctx context.Context, zip string) model.ServiceAreaResponse
	InvalidateCache(ctx context.Context, reason string) model.CacheInvalidation
	CacheStats() model.CacheStats
}

// StorePinger проверяет связь с магазином для health-check
type StorePinger interface {
	Ping(ctx context.Context) (string, error)
}

// Options — необязательные части роутинга
type Options struct {
	MissingConfig  []string // незаданные параметры магазина, делают health-check красным
	MetricsEnabled bool
}

// Handler обрабатывает HTTP-запросы
type Handler struct {
	service CheckoutAPI
	store   StorePinger
	opts    Options
	log     *slog.Logger
	mux     *http.ServeMux
	handler http.Handler
}

// NewHandler создает новый экземпляр Handler
func NewHandler(service CheckoutAPI, store StorePinger, opts Options, log *slog.Logger) *Handler {
	h := &Handler{
		service: service,
		store:   store,
		opts:    opts,
		log:     log,
		mux:     http.NewServeMux(),
	}
	h.registerRoutes()
	h.handler = h.recoverer(h.cors(h.logRequests(h.mux)))
	return h
}

// ServeHTTP делает Handler совместимым с http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.handler.ServeHTTP(w, r)
}

// registerRoutes регистрирует все эндпоинты
// для каждого пути есть запасной обработчик без метода, он отвечает 405 в JSON
func (h *Handler) registerRoutes() {
	routes := []struct {
		path    string
		methods []string
		handler http.HandlerFunc
	}{
		{"/api/add-to-cart", []string{http.MethodPost}, h.addToCart},
		{"/api/prefill-checkout", []string{http.MethodPost}, h.prefillCheckout},
		{"/api/clear-cache", []string{http.MethodGet, http.MethodPost}, h.clearCache},
		{"/api/cache-stats", []string{http.MethodGet}, h.cacheStats},
		{"/api/health", []string{http.MethodGet}, h.health},
		{"/api/service-area/{zip}", []string{http.MethodGet}, h.serviceArea},
		{"/api/sessions/{session_id}/order", []string{http.MethodGet}, h.sessionOrder},
	}

	for _, route := range routes {
		for _, method := range route.methods {
			h.mux.HandleFunc(method+" "+route.path, route.handler)
		}
		h.mux.HandleFunc(route.path, h.methodNotAllowed)
	}

	if h.opts.MetricsEnabled {
		h.mux.Handle("GET /metrics", promhttp.Handler())
	}
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req model.CartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondServiceError(w, model.ErrInvalidRequest(), cartApology)
		return
	}

	resp, err := h.service.AddToCart(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, cartApology)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) prefillCheckout(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondServiceError(w, model.ErrInvalidRequest(), checkoutApology)
		return
	}

	resp, err := h.service.SubmitCustomerInfo(r.Context(), req)
	if err != nil {
		h.respondServiceError(w, err, checkoutApology)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) clearCache(w http.ResponseWriter, r *http.Request) {
	reason := strings.TrimSpace(r.URL.Query().Get("reason"))
	if reason == "" {
		reason = "http: " + r.Method + " /api/clear-cache"
	}
	h.respondJSON(w, http.StatusOK, h.service.InvalidateCache(r.Context(), reason))
}

func (h *Handler) cacheStats(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.service.CacheStats())
}

func (h *Handler) serviceArea(w http.ResponseWriter, r *http.Request) {
	zip := strings.TrimSpace(r.PathValue("zip"))
	if zip == "" {
		h.respondError(w, http.StatusBadRequest, "zip is required")
		return
	}
	h.respondJSON(w, http.StatusOK, h.service.ServiceArea(r.Context(), zip))
}

func (h *Handler) sessionOrder(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")
	if sessionID == "" {
		h.respondError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	resp, err := h.service.SessionOrder(r.Context(), sessionID)
	if err != nil {
		h.respondServiceError(w, err, checkoutApology)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

type healthCheck struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	DurationMS   int64  `json:"duration_ms"`
	ProductCount string `json:"product_count,omitempty"`
}

type healthCache struct {
	ProductsCached int    `json:"products_cached"`
	TagsCached     int    `json:"tags_cached"`
	SKUsCached     int    `json:"skus_cached"`
	Status         string `json:"status"`
}

type healthResponse struct {
	Status         string                 `json:"status"`
	Timestamp      time.Time              `json:"timestamp"`
	Checks         map[string]healthCheck `json:"checks"`
	Cache          healthCache            `json:"cache"`
	ResponseTimeMS int64                  `json:"response_time_ms"`
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	resp := healthResponse{
		Status:    "healthy",
		Timestamp: start.UTC(),
		Checks:    make(map[string]healthCheck, 2),
	}
	failed := false

	env := healthCheck{Status: "pass", Message: "All required configuration set"}
	if len(h.opts.MissingConfig) > 0 {
		env = healthCheck{Status: "fail", Message: "Missing: " + strings.Join(h.opts.MissingConfig, ", ")}
		failed = true
	}
	resp.Checks["environment"] = env

	storeStart := time.Now()
	total, err := h.store.Ping(r.Context())
	store := healthCheck{
		Status:       "pass",
		Message:      "WooCommerce API responding",
		ProductCount: total,
	}
	if err != nil {
		store = healthCheck{Status: "fail", Message: err.Error()}
		failed = true
	}
	store.DurationMS = time.Since(storeStart).Milliseconds()
	resp.Checks["woocommerce"] = store

	stats := h.service.CacheStats()
	resp.Cache = healthCache{
		ProductsCached: stats.Products,
		TagsCached:     stats.Tags,
		SKUsCached:     stats.SKUs,
		Status:         "active",
	}

	status := http.StatusOK
	if failed {
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}
	resp.ResponseTimeMS = time.Since(start).Milliseconds()

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	h.respondJSON(w, status, resp)
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// respondServiceError переводит ошибку сервиса в HTTP-ответ
// apology — фраза для голосового агента на случай внутренней ошибки
func (h *Handler) respondServiceError(w http.ResponseWriter, err error, apology string) {
	if verr, ok := model.AsValidationError(err); ok {
		h.respondJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: verr.Code, Message: verr.Message})
		return
	}
	if errors.Is(err, postgres.ErrSessionNotFound) {
		h.respondJSON(w, http.StatusNotFound, model.ErrorResponse{
			Error:   "session not found",
			Message: "I don't have your order information. Let me add your items to the cart first.",
		})
		return
	}

	h.log.Error("internal server error", slog.String("error", err.Error()))
	h.respondJSON(w, http.StatusInternalServerError, model.ErrorResponse{
		Error:   "Internal server error",
		Message: apology,
	})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("failed to marshal JSON response", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(response)
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, model.ErrorResponse{Error: message})
}
