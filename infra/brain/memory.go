package brain

import (
	"context"
	"sync"

	"foodbot/domain/order"
)

// Memory keeps the registry in process. Used by tests and the shell.
type Memory struct {
	mu     sync.RWMutex
	orders map[string]order.Order
}

func NewMemory() *Memory {
	return &Memory{orders: map[string]order.Order{}}
}

func (m *Memory) Load(_ context.Context) (map[string]order.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneAll(m.orders), nil
}

func (m *Memory) Save(_ context.Context, orders map[string]order.Order) error {
	m.mu.Lock()
	m.orders = cloneAll(orders)
	m.mu.Unlock()
	return nil
}

func cloneAll(in map[string]order.Order) map[string]order.Order {
	out := make(map[string]order.Order, len(in))
	for name, o := range in {
		out[name] = o.Clone()
	}
	return out
}
