package service

import "sync"

// InFlightGuard allows one action at a time per order across all sessions
type InFlightGuard struct {
	mu     sync.Mutex
	orders map[int64]struct{}
}

func NewInFlightGuard() *InFlightGuard {
	return &InFlightGuard{orders: make(map[int64]struct{})}
}

// Acquire claims orderID. ok is false when another action holds it.
func (g *InFlightGuard) Acquire(orderID int64) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.orders[orderID]; busy {
		return nil, false
	}
	g.orders[orderID] = struct{}{}
	return func() {
		g.mu.Lock()
		delete(g.orders, orderID)
		g.mu.Unlock()
	}, true
}
