package domain

import "time"

type OrderStatus string

// Orders are only ever written on successful payment, so the status set has
// a single terminal value. A decline branch from the payment provider would
// add a FAILED value here.
const (
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

type PaymentMethod string

const (
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

// Valid reports whether m is one of the supported payment methods.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCard || m == PaymentMethodTransfer
}

// Shipping holds the delivery details captured in the first checkout step.
// All fields are required and immutable once an order is created.
type Shipping struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	Region  string `json:"region"`
}

// PaymentRecord keeps only what is safe to persist: the card's last four
// digits or the transfer reference. Never the full card number or CVV.
type PaymentRecord struct {
	CardLast4         string `json:"card_last4,omitempty"`
	TransferReference string `json:"transfer_reference,omitempty"`
}

// Order is the immutable record written on successful checkout. Items is a
// deep copy of the cart at confirmation time, not a live reference.
type Order struct {
	ID       string         `json:"id"`
	Date     time.Time      `json:"date"`
	Status   OrderStatus    `json:"status"`
	Items    []CartLineItem `json:"items"`
	Total    float64        `json:"total"`
	Shipping Shipping       `json:"shipping"`
	Method   PaymentMethod  `json:"method"`
	Payment  PaymentRecord  `json:"payment"`
}
