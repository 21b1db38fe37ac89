package reconcile

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/domain"
)

// ProductFetcher is the slice of the remote catalog the backfiller needs.
type ProductFetcher interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

// Backfiller fills in missing line-item images by fetching product details
// one id at a time. Lookups run in parallel with a bounded degree, and
// singleflight collapses concurrent lookups for the same product id so a
// batch of orders sharing a product costs one request.
type Backfiller struct {
	catalog  ProductFetcher
	logger   *zap.Logger
	parallel int
	sfg      singleflight.Group
}

func NewBackfiller(catalog ProductFetcher, logger *zap.Logger) *Backfiller {
	return &Backfiller{
		catalog:  catalog,
		logger:   logger,
		parallel: 4,
	}
}

// Fill mutates items in place, setting Image on every entry that lacks one
// and whose product record can be fetched. Each distinct product id costs
// at most one lookup per batch; failed lookups downgrade silently to no
// image and Fill itself never fails. The merge is a map update keyed by
// product id, so lookup completion order does not matter.
func (b *Backfiller) Fill(ctx context.Context, items []domain.CartLineItem) {
	missing := make(map[string]struct{})
	for i := range items {
		if items[i].Image.IsZero() && items[i].ID != "" {
			missing[items[i].ID] = struct{}{}
		}
	}
	if len(missing) == 0 {
		return
	}

	var mu sync.Mutex
	resolved := make(map[string]domain.ImageRef, len(missing))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.parallel)
	for id := range missing {
		id := id
		g.Go(func() error {
			if ref, ok := b.lookup(gctx, id); ok {
				mu.Lock()
				resolved[id] = ref
				mu.Unlock()
			}
			return nil // lookups never fail the batch
		})
	}
	_ = g.Wait()

	for i := range items {
		if !items[i].Image.IsZero() {
			continue
		}
		if ref, ok := resolved[items[i].ID]; ok {
			items[i].Image = ref
		}
	}
}

func (b *Backfiller) lookup(ctx context.Context, id string) (domain.ImageRef, bool) {
	v, err, _ := b.sfg.Do(id, func() (interface{}, error) {
		product, err := b.catalog.GetProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		return product.Image, nil
	})
	if err != nil {
		b.logger.Debug("image backfill lookup failed", zap.String("product_id", id), zap.Error(err))
		return domain.ImageRef{}, false
	}
	ref := v.(domain.ImageRef)
	return ref, !ref.IsZero()
}
