package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/cart"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/domain"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/storage"
)

type mockCatalog struct {
	m        sync.Mutex
	products map[string]domain.Product
	remote   []domain.CartLineItem
	err      error
	fetches  int
}

func (c *mockCatalog) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	c.m.Lock()
	defer c.m.Unlock()
	c.fetches++
	if c.err != nil {
		return nil, c.err
	}
	product, ok := c.products[id]
	if !ok {
		return nil, errors.New("product not found")
	}
	return &product, nil
}

func (c *mockCatalog) GetCart(context.Context, string) ([]domain.CartLineItem, error) {
	c.m.Lock()
	defer c.m.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return c.remote, nil
}

func (c *mockCatalog) fetchCount() int {
	c.m.Lock()
	defer c.m.Unlock()
	return c.fetches
}

func newTestReconciler(catalog *mockCatalog) (*Reconciler, *cart.Store, *storage.MemoryStore) {
	logger := zap.NewNop()
	mem := storage.NewMemoryStore()
	cartStore := cart.NewStore(mem, logger)
	r := New(cartStore, catalog, mem, NewBackfiller(catalog, logger), logger)
	return r, cartStore, mem
}

func img(value string) domain.ImageRef {
	return domain.ImageRef{Kind: domain.ImageURL, Value: value}
}

func TestDisplayCart_LiveCartWins(t *testing.T) {
	catalog := &mockCatalog{
		remote: []domain.CartLineItem{{ID: "9", Name: "Remote", Price: 1, Quantity: 1, Image: img("/r.png")}},
	}
	r, cartStore, _ := newTestReconciler(catalog)
	ctx := context.Background()

	cartStore.Add(ctx, domain.Product{ID: "1", Name: "Mouse", Price: 1000, Image: img("/m.png")})

	items, total := r.DisplayCart(ctx, "user1")
	require.Len(t, items, 1)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, 1000.0, total)
}

func TestDisplayCart_RemoteBeatsLocalSnapshot(t *testing.T) {
	catalog := &mockCatalog{
		remote: []domain.CartLineItem{{ID: "9", Name: "Remote", Price: 50, Quantity: 2, Image: img("/r.png")}},
	}
	r, _, mem := newTestReconciler(catalog)
	ctx := context.Background()

	// Non-empty local snapshot that must lose to the remote cart.
	snapshot := []domain.CartLineItem{{ID: "7", Name: "Local", Price: 10, Quantity: 1, Image: img("/l.png")}}
	require.NoError(t, storage.WriteJSON(ctx, mem, storage.KeyCart, snapshot))

	items, total := r.DisplayCart(ctx, "user1")
	require.Len(t, items, 1)
	assert.Equal(t, "9", items[0].ID)
	assert.Equal(t, 100.0, total)
}

func TestDisplayCart_NoUserFallsBackToSnapshot(t *testing.T) {
	catalog := &mockCatalog{
		remote: []domain.CartLineItem{{ID: "9", Name: "Remote", Price: 50, Quantity: 2, Image: img("/r.png")}},
	}
	r, _, mem := newTestReconciler(catalog)
	ctx := context.Background()

	snapshot := []domain.CartLineItem{{ID: "7", Name: "Local", Price: 10, Quantity: 3, Image: img("/l.png")}}
	require.NoError(t, storage.WriteJSON(ctx, mem, storage.KeyCart, snapshot))

	items, total := r.DisplayCart(ctx, "")
	require.Len(t, items, 1)
	assert.Equal(t, "7", items[0].ID)
	assert.Equal(t, 30.0, total)
}

func TestDisplayCart_RemoteFailureFallsBackToSnapshot(t *testing.T) {
	catalog := &mockCatalog{err: errors.New("baas down")}
	r, _, mem := newTestReconciler(catalog)
	ctx := context.Background()

	snapshot := []domain.CartLineItem{{ID: "7", Name: "Local", Price: 10, Quantity: 1, Image: img("/l.png")}}
	require.NoError(t, storage.WriteJSON(ctx, mem, storage.KeyCart, snapshot))

	items, _ := r.DisplayCart(ctx, "user1")
	require.Len(t, items, 1)
	assert.Equal(t, "7", items[0].ID)
}

func TestDisplayCart_AllSourcesEmpty(t *testing.T) {
	catalog := &mockCatalog{}
	r, _, _ := newTestReconciler(catalog)

	items, total := r.DisplayCart(context.Background(), "")
	assert.Empty(t, items)
	assert.Equal(t, 0.0, total)
}

func TestBackfill_FillsMissingImages(t *testing.T) {
	catalog := &mockCatalog{
		products: map[string]domain.Product{
			"1": {ID: "1", Image: img("/one.png")},
			"2": {ID: "2", Image: img("/two.png")},
		},
	}
	bf := NewBackfiller(catalog, zap.NewNop())

	items := []domain.CartLineItem{
		{ID: "1", Quantity: 1},
		{ID: "2", Quantity: 1},
		{ID: "3", Quantity: 1, Image: img("/already.png")},
	}
	bf.Fill(context.Background(), items)

	assert.Equal(t, "/one.png", items[0].Image.Value)
	assert.Equal(t, "/two.png", items[1].Image.Value)
	assert.Equal(t, "/already.png", items[2].Image.Value, "present images are not refetched")
	assert.Equal(t, 2, catalog.fetchCount())
}

func TestBackfill_LookupFailureDowngradesToNoImage(t *testing.T) {
	catalog := &mockCatalog{
		products: map[string]domain.Product{
			"1": {ID: "1", Image: img("/one.png")},
		},
	}
	bf := NewBackfiller(catalog, zap.NewNop())

	items := []domain.CartLineItem{
		{ID: "1", Quantity: 1},
		{ID: "missing", Quantity: 1},
	}
	bf.Fill(context.Background(), items)

	assert.Equal(t, "/one.png", items[0].Image.Value)
	assert.True(t, items[1].Image.IsZero(), "failed lookup leaves the item without an image")
}

func TestBackfill_SharedProductFetchedOnce(t *testing.T) {
	catalog := &mockCatalog{
		products: map[string]domain.Product{
			"1": {ID: "1", Image: img("/one.png")},
		},
	}
	bf := NewBackfiller(catalog, zap.NewNop())

	// Same product repeated across a batch, as when several orders share it.
	items := make([]domain.CartLineItem, 8)
	for i := range items {
		items[i] = domain.CartLineItem{ID: "1", Quantity: 1}
	}
	bf.Fill(context.Background(), items)

	for i := range items {
		assert.Equal(t, "/one.png", items[i].Image.Value)
	}
	assert.Equal(t, 1, catalog.fetchCount(), "a shared product id costs one lookup per batch")
}
