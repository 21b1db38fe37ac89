// Package orders is the durable store of completed orders. Orders are
// written once by checkout and never mutated or deleted afterwards.
package orders

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/cart"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/domain"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/reconcile"
	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/storage"
)

// dateLayout is the calendar-day heading shown to the user.
const dateLayout = "January 2, 2006"

type History struct {
	storage    storage.Store
	cart       *cart.Store
	backfiller *reconcile.Backfiller
	logger     *zap.Logger
}

func NewHistory(st storage.Store, c *cart.Store, bf *reconcile.Backfiller, logger *zap.Logger) *History {
	return &History{
		storage:    st,
		cart:       c,
		backfiller: bf,
		logger:     logger,
	}
}

func (h *History) key(userID string) string {
	return storage.UserKey(storage.KeyOrders, userID)
}

// load reads the stored order list, newest first. A corrupted or missing
// list reads as empty.
func (h *History) load(ctx context.Context, userID string) []domain.Order {
	var list []domain.Order
	found, err := storage.ReadJSON(ctx, h.storage, h.key(userID), h.logger, &list)
	if err != nil {
		h.logger.Warn("order history read failed", zap.Error(err))
		return nil
	}
	if !found {
		return nil
	}
	return list
}

// Append prepends order to the durable history, keeping newest first.
func (h *History) Append(ctx context.Context, userID string, order *domain.Order) error {
	list := h.load(ctx, userID)
	list = append([]domain.Order{*order}, list...)
	return storage.WriteJSON(ctx, h.storage, h.key(userID), list)
}

// Group is one calendar day of orders, newest order first.
type Group struct {
	Date   string         `json:"date"`
	Orders []domain.Order `json:"orders"`
}

// List returns the order history grouped by calendar day, most recent
// group first. Missing item images are backfilled best-effort, deduplicated
// across orders sharing a product.
func (h *History) List(ctx context.Context, userID string) []Group {
	list := h.load(ctx, userID)
	if len(list) == 0 {
		return []Group{}
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Date.After(list[j].Date)
	})

	if h.backfillAll(ctx, list) {
		h.writeBack(ctx, userID, list)
	}

	groups := make([]Group, 0)
	byDay := make(map[string]int)
	for _, order := range list {
		day := order.Date.Format(dateLayout)
		idx, ok := byDay[day]
		if !ok {
			groups = append(groups, Group{Date: day})
			idx = len(groups) - 1
			byDay[day] = idx
		}
		groups[idx].Orders = append(groups[idx].Orders, order)
	}
	return groups
}

// Get returns the order with the given id, nil when not found.
func (h *History) Get(ctx context.Context, userID, id string) *domain.Order {
	list := h.load(ctx, userID)
	for i := range list {
		if list[i].ID == id {
			if h.backfillAll(ctx, list[i:i+1]) {
				h.writeBack(ctx, userID, list)
			}
			order := list[i]
			return &order
		}
	}
	return nil
}

// BuyAgain re-adds every item of a historical order to the live cart,
// preserving quantities. Semantics are additive: quantities already in the
// cart for the same product are kept and the order's quantity is added on
// top.
func (h *History) BuyAgain(ctx context.Context, order *domain.Order) {
	for _, item := range order.Items {
		existing := h.cart.Quantity(item.ID)
		h.cart.Add(ctx, domain.Product{
			ID:    item.ID,
			Name:  item.Name,
			Price: item.Price,
			Image: item.Image,
		})
		if target := existing + item.Quantity; target > existing+1 {
			h.cart.UpdateQuantity(ctx, item.ID, target)
		}
	}
}

// backfillAll fills missing images across the given orders in one batch so
// a product shared by several orders is fetched once. It reports whether
// any image was filled in.
func (h *History) backfillAll(ctx context.Context, list []domain.Order) bool {
	var missing []domain.CartLineItem
	var where [][2]int // order index, item index
	for oi := range list {
		for ii := range list[oi].Items {
			if list[oi].Items[ii].Image.IsZero() {
				missing = append(missing, list[oi].Items[ii])
				where = append(where, [2]int{oi, ii})
			}
		}
	}
	if len(missing) == 0 {
		return false
	}

	h.backfiller.Fill(ctx, missing)
	changed := false
	for i, pos := range where {
		if missing[i].Image.IsZero() {
			continue
		}
		list[pos[0]].Items[pos[1]].Image = missing[i].Image
		changed = true
	}
	return changed
}

// writeBack persists filled-in images so the next read does not refetch
// them. Failures only cost a refetch later.
func (h *History) writeBack(ctx context.Context, userID string, list []domain.Order) {
	if err := storage.WriteJSON(ctx, h.storage, h.key(userID), list); err != nil {
		h.logger.Warn("order history image write-back failed", zap.Error(err))
	}
}
