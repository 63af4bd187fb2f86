package settlement

import (
	"context"
	"errors"
	"sync"
)

var ErrInsufficientFunds = errors.New("insufficient_funds")

// Settlement moves value from one caller to another. The ledger engine never
// inspects balances; it only asks for a transfer and treats any error as a
// failed purchase.
type Settlement interface {
	Transfer(ctx context.Context, from, to string, amount uint64) error
}

// Wallet is a settlement backend that also exposes per-caller balances, used
// by the wallet endpoints.
type Wallet interface {
	Settlement
	Deposit(ctx context.Context, uid string, amount uint64) (uint64, error)
	Balance(ctx context.Context, uid string) (uint64, error)
}

// MemoryWallet keeps balances in process. It backs tests and the DB-less dev
// mode of the API server.
type MemoryWallet struct {
	mu       sync.Mutex
	balances map[string]uint64
}

func NewMemoryWallet() *MemoryWallet {
	return &MemoryWallet{balances: make(map[string]uint64)}
}

func (w *MemoryWallet) Transfer(ctx context.Context, from, to string, amount uint64) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.balances[from] < amount {
		return ErrInsufficientFunds
	}
	w.balances[from] -= amount
	w.balances[to] += amount
	return nil
}

func (w *MemoryWallet) Deposit(ctx context.Context, uid string, amount uint64) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balances[uid] += amount
	return w.balances[uid], nil
}

func (w *MemoryWallet) Balance(ctx context.Context, uid string) (uint64, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balances[uid], nil
}
