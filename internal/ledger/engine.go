// Package ledger implements the marketplace ledger engine: an append-only
// listing store plus a per-seller reputation ledger, driven as a single
// serialized state machine. Every operation either fully commits or fails
// with a sentinel error and no visible mutation.
package ledger

import (
	"context"
	"errors"
	"sync"

	"github.com/hyoshino/fruitledger/internal/model"
	"github.com/hyoshino/fruitledger/internal/settlement"
)

// Store is the optional write-through persistence behind the engine. A nil
// store means memory-only operation.
type Store interface {
	SaveListing(ctx context.Context, listing *model.Listing) error
	RecordRating(ctx context.Context, listing *model.Listing, rep *model.Reputation) error
}

// Engine owns the ledger state. Mutating operations take the write lock for
// their full duration, so effects never interleave; reads share the lock and
// observe a consistent snapshot. Independent engines are fully isolated,
// which is how the tests run several ledgers side by side.
type Engine struct {
	mu         sync.RWMutex
	listings   []model.Listing
	reputation map[string]*model.Reputation
	settle     settlement.Settlement
	store      Store
}

func New(settle settlement.Settlement, store Store) *Engine {
	return &Engine{
		reputation: make(map[string]*model.Reputation),
		settle:     settle,
		store:      store,
	}
}

// AttachStore starts write-through persistence. Used when the database
// becomes available after the engine is already constructed.
func (e *Engine) AttachStore(store Store) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store = store
}

// Restore replaces the engine's state with previously persisted rows. Called
// once at startup, before the engine is serving.
func (e *Engine) Restore(listings []model.Listing, reps []model.Reputation) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listings = append([]model.Listing(nil), listings...)
	e.reputation = make(map[string]*model.Reputation, len(reps))
	for i := range reps {
		rep := reps[i]
		e.reputation[rep.SellerUID] = &rep
	}
}

// Create appends a new unsold listing owned by caller and returns its index.
func (e *Engine) Create(ctx context.Context, caller, name string, price uint64) (uint64, error) {
	if caller == "" || name == "" || price == 0 {
		return 0, ErrInvalidInput
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	listing := model.Listing{
		Idx:       uint64(len(e.listings)),
		Name:      name,
		Price:     price,
		SellerUID: caller,
	}
	if err := e.persistListing(ctx, &listing); err != nil {
		return 0, err
	}
	e.listings = append(e.listings, listing)
	return listing.Idx, nil
}

// Purchase transfers the attached payment to the seller and marks the listing
// sold. The full attached amount is routed to the seller; only a payment
// below the price is rejected.
func (e *Engine) Purchase(ctx context.Context, caller string, idx, payment uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if idx >= uint64(len(e.listings)) {
		return ErrNotFound
	}
	if caller == "" {
		return ErrInvalidInput
	}
	listing := e.listings[idx]
	if listing.Sold() {
		return ErrAlreadySold
	}
	if payment < listing.Price {
		return ErrInsufficientPayment
	}

	if err := e.settle.Transfer(ctx, caller, listing.SellerUID, payment); err != nil {
		return err
	}
	buyer := caller
	listing.BuyerUID = &buyer
	if err := e.persistListing(ctx, &listing); err != nil {
		// Funds already moved; send them back before reporting failure. A
		// failed refund leaves settlement inconsistent, so it surfaces too.
		if refundErr := e.settle.Transfer(ctx, listing.SellerUID, caller, payment); refundErr != nil {
			return errors.Join(err, refundErr)
		}
		return err
	}
	e.listings[idx] = listing
	return nil
}

// Reprice overwrites the price of an unsold listing. Seller only.
func (e *Engine) Reprice(ctx context.Context, caller string, idx, newPrice uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if idx >= uint64(len(e.listings)) {
		return ErrNotFound
	}
	listing := e.listings[idx]
	if caller != listing.SellerUID {
		return ErrUnauthorized
	}
	if listing.Sold() {
		return ErrAlreadySold
	}
	if newPrice == 0 {
		return ErrInvalidInput
	}

	listing.Price = newPrice
	if err := e.persistListing(ctx, &listing); err != nil {
		return err
	}
	e.listings[idx] = listing
	return nil
}

// Rate lets the buyer of a sold listing score its seller exactly once. The
// rated flag and the reputation row commit together or not at all. A caller
// who is not the buyer and a buyer rating twice get the same error on
// purpose, so the response does not reveal which case applied.
func (e *Engine) Rate(ctx context.Context, caller string, idx uint64, score int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if idx >= uint64(len(e.listings)) {
		return ErrNotFound
	}
	listing := e.listings[idx]
	if listing.BuyerUID == nil || *listing.BuyerUID != caller {
		return ErrNotEligible
	}
	if listing.Rated {
		return ErrNotEligible
	}
	if score < 1 || score > 5 {
		return ErrInvalidInput
	}

	rep := model.Reputation{SellerUID: listing.SellerUID}
	if cur, ok := e.reputation[listing.SellerUID]; ok {
		rep = *cur
	}
	rep.TotalScore += uint64(score)
	rep.Count++
	listing.Rated = true

	if e.store != nil {
		if err := e.store.RecordRating(ctx, &listing, &rep); err != nil {
			return err
		}
	}
	e.listings[idx] = listing
	e.reputation[rep.SellerUID] = &rep
	return nil
}

// ListAll returns every listing ever created, in creation order, sold ones
// included. The returned slice is a copy.
func (e *Engine) ListAll(ctx context.Context) []model.Listing {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]model.Listing(nil), e.listings...)
}

// AverageRating returns the seller's truncating integer average, and false
// if the seller has never been rated.
func (e *Engine) AverageRating(ctx context.Context, sellerUID string) (uint64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	rep, ok := e.reputation[sellerUID]
	if !ok {
		return 0, false
	}
	return rep.Average(), true
}

func (e *Engine) persistListing(ctx context.Context, listing *model.Listing) error {
	if e.store == nil {
		return nil
	}
	return e.store.SaveListing(ctx, listing)
}
