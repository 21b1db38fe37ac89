// Package reconcile chooses one authoritative display cart out of the
// candidate sources (live session cart, remote per-user cart, durable
// local snapshot) and guarantees each displayed item a best-effort image.
package reconcile

import (
	"context"

	"go.uber.org/zap"

	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/cart"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/domain"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/storage"
)

// RemoteCartFetcher is the slice of the remote service the reconciler
// needs beyond product lookups.
type RemoteCartFetcher interface {
	GetCart(ctx context.Context, userID string) ([]domain.CartLineItem, error)
}

type Reconciler struct {
	cart       *cart.Store
	remote     RemoteCartFetcher
	storage    storage.Store
	backfiller *Backfiller
	logger     *zap.Logger
}

func New(c *cart.Store, remote RemoteCartFetcher, st storage.Store, bf *Backfiller, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		cart:       c,
		remote:     remote,
		storage:    st,
		backfiller: bf,
		logger:     logger,
	}
}

// DisplayCart resolves the cart to present at checkout. The fallback order
// is total: live cart, then the remote per-user cart when a user id is
// known, then the durable local snapshot, then empty. The returned total
// is recomputed over the final list and is display-only.
func (r *Reconciler) DisplayCart(ctx context.Context, userID string) ([]domain.CartLineItem, float64) {
	items := r.baseList(ctx, userID)
	r.backfiller.Fill(ctx, items)
	return items, domain.CartTotal(items)
}

func (r *Reconciler) baseList(ctx context.Context, userID string) []domain.CartLineItem {
	if live := r.cart.Items(); len(live) > 0 {
		return live
	}

	if userID != "" {
		remote, err := r.remote.GetCart(ctx, userID)
		if err != nil {
			r.logger.Warn("remote cart fetch failed, falling back to local snapshot",
				zap.String("user_id", userID), zap.Error(err))
		} else if len(remote) > 0 {
			return remote
		}
	}

	var stored []domain.CartLineItem
	found, err := storage.ReadJSON(ctx, r.storage, storage.KeyCart, r.logger, &stored)
	if err != nil {
		r.logger.Warn("cart snapshot read failed during reconciliation", zap.Error(err))
		return []domain.CartLineItem{}
	}
	if !found || len(stored) == 0 {
		return []domain.CartLineItem{}
	}
	return stored
}
