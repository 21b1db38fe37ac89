package cart

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/domain"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/storage"
)

// Store owns the live cart. Every mutation rewrites the full snapshot to
// durable storage under a single key; each write is a complete snapshot,
// so last-writer-wins is safe and no merging is ever needed.
type Store struct {
	mu      sync.RWMutex
	items   []domain.CartLineItem
	storage storage.Store
	logger  *zap.Logger
}

func NewStore(st storage.Store, logger *zap.Logger) *Store {
	return &Store{
		storage: st,
		logger:  logger,
	}
}

// Load rebuilds the in-memory cart from the durable snapshot. Each stored
// item is replayed through Add semantics; a stored quantity above one is
// reconstructed with a corrective quantity update, reaching the same end
// state. Corrupted snapshots are treated as an empty cart.
func (s *Store) Load(ctx context.Context) {
	var stored []domain.CartLineItem
	found, err := storage.ReadJSON(ctx, s.storage, storage.KeyCart, s.logger, &stored)
	if err != nil {
		s.logger.Warn("cart snapshot read failed, starting empty", zap.Error(err))
		return
	}
	if !found {
		return
	}

	for _, item := range stored {
		if item.ID == "" || item.Quantity < 1 {
			continue
		}
		s.Add(ctx, domain.Product{
			ID:    item.ID,
			Name:  item.Name,
			Price: item.Price,
			Image: item.Image,
		})
		if item.Quantity > 1 {
			s.UpdateQuantity(ctx, item.ID, item.Quantity)
		}
	}
}

// Add inserts product with quantity 1, or increments the existing line by
// one. Stock limits are the caller's concern.
func (s *Store) Add(ctx context.Context, product domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == product.ID {
			s.items[i].Quantity++
			s.mirrorLocked(ctx)
			return
		}
	}
	s.items = append(s.items, domain.CartLineItem{
		ID:       product.ID,
		Name:     product.Name,
		Price:    product.Price,
		Quantity: 1,
		Image:    product.Image,
	})
	s.mirrorLocked(ctx)
}

// Remove deletes the line with the given id. No-op when absent.
func (s *Store) Remove(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, item := range s.items {
		if item.ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.mirrorLocked(ctx)
}

// UpdateQuantity sets the line's quantity. A quantity of zero or less
// removes the line entirely rather than leaving a zero-quantity entry.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) {
	if quantity <= 0 {
		s.Remove(ctx, id)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Quantity = quantity
			break
		}
	}
	s.mirrorLocked(ctx)
}

// Clear empties the cart unconditionally.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.mirrorLocked(ctx)
}

// Items returns a copy of the live cart.
func (s *Store) Items() []domain.CartLineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CopyItems(s.items)
}

// Quantity returns the quantity of the line with the given id, zero when
// the item is not in the cart.
func (s *Store) Quantity(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			return item.Quantity
		}
	}
	return 0
}

// Total sums price times quantity over the live cart.
func (s *Store) Total() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CartTotal(s.items)
}

// mirrorLocked writes the full current snapshot to durable storage. It
// runs inside the mutation's critical section so snapshots reach storage
// in mutation order; a slow write can never land after a later one and
// leave the durable value stale. Mirror failures are logged and never
// fail the mutation: the in-memory cart is the source of truth while the
// process lives.
func (s *Store) mirrorLocked(ctx context.Context) {
	items := domain.CopyItems(s.items)
	if items == nil {
		items = []domain.CartLineItem{}
	}
	if err := storage.WriteJSON(ctx, s.storage, storage.KeyCart, items); err != nil {
		s.logger.Warn("cart snapshot write failed", zap.Error(err))
	}
}
