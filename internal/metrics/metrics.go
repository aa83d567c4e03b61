package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_cart_cache_lookups_total",
		Help: "Catalog cache lookups by namespace and result (hit, miss, expired).",
	}, []string{"namespace", "result"})

	orderOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_cart_order_operations_total",
		Help: "Pending order create/update calls against the commerce platform.",
	}, []string{"operation", "result"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voice_cart_http_requests_total",
		Help: "Handled HTTP requests by route and status code.",
	}, []string{"route", "status"})
)

// CacheLookup учитывает одно обращение к кэшу
func CacheLookup(namespace, result string) {
	cacheLookups.WithLabelValues(namespace, result).Inc()
}

// OrderOperation учитывает вызов магазина на создание/обновление заказа
func OrderOperation(operation string, ok bool) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	orderOperations.WithLabelValues(operation, result).Inc()
}

// HTTPRequest учитывает обработанный запрос
func HTTPRequest(route string, status int) {
	httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}
