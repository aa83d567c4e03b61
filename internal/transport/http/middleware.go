package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/max-strong-1/-milestone-voice-agent/internal/metrics"
	"github.com/max-strong-1/-milestone-voice-agent/internal/model"
)

// statusRecorder запоминает код ответа для лога и метрик
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// cors разрешает вызовы из браузера и отвечает на preflight
func (h *Handler) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// logRequests пишет одну строку на запрос; тело не логируется, в нём адреса клиентов
func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		// ServeMux записывает найденный шаблон в тот же запрос
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequest(route, rec.status)

		h.log.Info("request handled",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
	})
}

// recoverer превращает панику обработчика в 500 с извинением для голосового агента
func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				h.log.Error("panic while handling request",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("panic", fmt.Sprint(p)),
					slog.String("stack", string(debug.Stack())),
				)
				h.respondJSON(w, http.StatusInternalServerError, model.ErrorResponse{
					Error:   "Internal server error",
					Message: apologyFor(r.URL.Path),
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func apologyFor(path string) string {
	switch path {
	case "/api/add-to-cart":
		return cartApology
	case "/api/prefill-checkout":
		return checkoutApology
	default:
		return genericApology
	}
}
