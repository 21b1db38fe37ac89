package domain

// CartLineItem is one product entry in the cart with its own quantity.
// At most one line item exists per product ID; Quantity is always >= 1
// while the item is present.
type CartLineItem struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Quantity int      `json:"quantity"`
	Image    ImageRef `json:"image"`
}

// Subtotal is price times quantity for this line.
func (i CartLineItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// CartTotal sums price times quantity over the given items.
func CartTotal(items []CartLineItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

// CopyItems returns a deep copy of the given line items. Orders snapshot
// the cart through this so clearing the cart afterwards cannot reach back
// into the recorded order.
func CopyItems(items []CartLineItem) []CartLineItem {
	if items == nil {
		return nil
	}
	out := make([]CartLineItem, len(items))
	copy(out, items)
	return out
}
