package domain

// Product is the catalog record shape this client consumes. The remote
// catalog owns the full record; only the fields the cart and checkout need
// are mapped.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Image       ImageRef
}
