package cache

import (
	"sync"
	"time"
)

// entry — значение вместе с моментом записи
type entry[T any] struct {
	data      T
	timestamp time.Time
}

// Namespace — потокобезопасное пространство имён с единым TTL на все ключи
// фоновой очистки нет: просрочка проверяется лениво при чтении
type Namespace[T any] struct {
	mu    sync.Mutex
	name  string
	ttl   time.Duration
	now   func() time.Time
	items map[string]entry[T]
}

// NewNamespace создаёт пространство имён с заданным TTL
func NewNamespace[T any](name string, ttl time.Duration, now func() time.Time) *Namespace[T] {
	if now == nil {
		now = time.Now
	}
	return &Namespace[T]{
		name:  name,
		ttl:   ttl,
		now:   now,
		items: make(map[string]entry[T]),
	}
}

// Get возвращает значение и true, если запись есть и не старше TTL
// просроченная запись удаляется прямо здесь и считается отсутствующей, третий результат сообщает об этом
func (n *Namespace[T]) Get(key string) (T, bool, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	var zero T
	e, ok := n.items[key]
	if !ok {
		return zero, false, false
	}
	if n.now().Sub(e.timestamp) >= n.ttl {
		delete(n.items, key)
		return zero, false, true
	}
	return e.data, true, false
}

// Set добавляет или перезаписывает значение, побеждает последний писатель
func (n *Namespace[T]) Set(key string, value T) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items[key] = entry[T]{data: value, timestamp: n.now()}
}

// Len — число записей, включая ещё не вычищенные просроченные
func (n *Namespace[T]) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.items)
}

func (n *Namespace[T]) clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = make(map[string]entry[T])
}
