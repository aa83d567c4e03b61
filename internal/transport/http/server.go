package http

import (
	"context"
	"net/http"

	"github.com/max-strong-1/-milestone-voice-agent/internal/config"
)

// Server — обёртка над стандартным http.Server
type Server struct {
	httpServer *http.Server
}

// NewServer создаёт сервер из секции http_server конфига
// запись ответа ждёт дольше чтения: add-to-cart ходит в магазин дважды
func NewServer(cfg config.HTTPServer, handler http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Port,
			Handler:           handler,
			ReadHeaderTimeout: cfg.Timeout,
			ReadTimeout:       cfg.Timeout,
			WriteTimeout:      2 * cfg.Timeout,
		},
	}
}

// Addr возвращает адрес, который слушает сервер
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Run запускает HTTP-сервер
func (s *Server) Run() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown останавливает сервер
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
