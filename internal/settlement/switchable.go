package settlement

import (
	"context"
	"sync"
)

// Switchable delegates to the current backend, letting the server swap the
// in-memory wallet for the DB-backed one once the database attaches.
type Switchable struct {
	mu    sync.RWMutex
	inner Wallet
}

func NewSwitchable(inner Wallet) *Switchable {
	return &Switchable{inner: inner}
}

func (s *Switchable) Swap(w Wallet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner = w
}

func (s *Switchable) backend() Wallet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inner
}

func (s *Switchable) Transfer(ctx context.Context, from, to string, amount uint64) error {
	return s.backend().Transfer(ctx, from, to, amount)
}

func (s *Switchable) Deposit(ctx context.Context, uid string, amount uint64) (uint64, error) {
	return s.backend().Deposit(ctx, uid, amount)
}

func (s *Switchable) Balance(ctx context.Context, uid string) (uint64, error) {
	return s.backend().Balance(ctx, uid)
}
